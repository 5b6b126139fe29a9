package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	v1 "dnspanel/api/v1"
	"dnspanel/internal/auth"
	"dnspanel/internal/cache"
	"dnspanel/internal/config"
	"dnspanel/internal/credentials"
	"dnspanel/internal/db"
	"dnspanel/internal/dns"
	"dnspanel/internal/dns/providers/cloudflare"
	"dnspanel/internal/history"
	"dnspanel/internal/mirror"
	"dnspanel/internal/mutation"
	"dnspanel/internal/ratelimit"
	"dnspanel/internal/ttlcache"
	"dnspanel/internal/zonesync"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
		os.Exit(1)
	}
	log.Println("✓ Configuration loaded")

	// 2. Initialize MySQL
	if err := db.InitMySQL(cfg.MySQL.DSN); err != nil {
		log.Fatalf("Failed to initialize MySQL: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Migrate {
		if err := db.Migrate(db.GetDB()); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
			os.Exit(1)
		}
		log.Println("✓ Migrations applied")
	}

	// 3. Initialize Redis
	if err := cache.InitRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
		os.Exit(1)
	}
	defer cache.Close()

	// 4. Initialize JWT signing
	auth.InitJWT(cfg.JWT.Secret)

	// 5. Build services
	providerTimeout := time.Duration(cfg.Cloudflare.TimeoutSec) * time.Second

	store := mirror.NewStore(db.GetDB())
	ttl := ttlcache.New(time.Duration(cfg.Cache.TTLMillis)*time.Millisecond, time.Now)
	histSvc := history.NewService(db.GetDB())
	baseLogger := logrus.NewEntry(logrus.StandardLogger())
	engine := zonesync.NewEngine(store, baseLogger)
	coordinator := mutation.NewCoordinator(store, histSvc, ttl, baseLogger)
	limiter := ratelimit.New(cache.Client, cfg.RateLimit.WindowSec, cfg.RateLimit.Max, baseLogger)

	credSvc := credentials.NewService(db.GetDB(), credentials.Verifier(func(email, apiToken string) dns.Provider {
		return cloudflare.New(email, apiToken, cloudflare.WithTimeout(providerTimeout))
	}))
	resolver := credentials.NewResolver(credSvc, cfg.Cloudflare.APIEmail, cfg.Cloudflare.APIToken, providerTimeout)

	// 6. Initialize Gin router
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	v1.SetupRouter(r, v1.Deps{
		DB:          db.GetDB(),
		Config:      cfg,
		Store:       store,
		Cache:       ttl,
		Engine:      engine,
		Coordinator: coordinator,
		Credentials: credSvc,
		Resolver:    resolver,
		History:     histSvc,
		Limiter:     limiter,
	})

	log.Printf("✓ Server starting on %s", cfg.HTTPAddr)

	// Start server
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
		os.Exit(1)
	}
}
