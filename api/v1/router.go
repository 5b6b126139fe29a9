package v1

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dnspanel/api/v1/auth"
	credhandler "dnspanel/api/v1/credentials"
	historyhandler "dnspanel/api/v1/history"
	"dnspanel/api/v1/middleware"
	"dnspanel/api/v1/records"
	"dnspanel/api/v1/zones"
	"dnspanel/internal/config"
	"dnspanel/internal/credentials"
	"dnspanel/internal/history"
	"dnspanel/internal/httpx"
	"dnspanel/internal/mirror"
	"dnspanel/internal/mutation"
	"dnspanel/internal/ratelimit"
	"dnspanel/internal/ttlcache"
	"dnspanel/internal/zonesync"
)

// Deps carries the constructed services the API layer serves
type Deps struct {
	DB          *gorm.DB
	Config      *config.Config
	Store       *mirror.Store
	Cache       *ttlcache.Cache
	Engine      *zonesync.Engine
	Coordinator *mutation.Coordinator
	Credentials *credentials.Service
	Resolver    *credentials.Resolver
	History     *history.Service
	Limiter     *ratelimit.Limiter
}

// SetupRouter sets up the API v1 routes
func SetupRouter(r *gin.Engine, deps Deps) {
	r.Use(middleware.CORS(deps.Config.CORSOrigin))

	v1 := r.Group("/api/v1")
	{
		// Public routes (no authentication required)
		v1.GET("/ping", pingHandler)

		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", auth.LoginHandler(deps.DB, deps.Config))
		}

		// Protected routes (authentication required, rate limited)
		protected := v1.Group("")
		protected.Use(middleware.AuthRequired(), middleware.RateLimit(deps.Limiter))
		{
			protected.GET("/me", auth.MeHandler)

			credsHandler := credhandler.NewHandler(deps.Credentials)
			credsGroup := protected.Group("/credentials")
			{
				credsGroup.GET("", credsHandler.List)
				credsGroup.POST("", credsHandler.Create)
				credsGroup.DELETE("/:id", credsHandler.Delete)
			}

			zonesHandler := zones.NewHandler(deps.Store, deps.Engine, deps.Resolver, deps.History, deps.Cache)
			recordsHandler := records.NewHandler(deps.Store, deps.Cache, deps.Coordinator, deps.Resolver)
			zonesGroup := protected.Group("/zones")
			{
				zonesGroup.GET("", zonesHandler.List)
				zonesGroup.POST("/sync", zonesHandler.SyncAll)
				zonesGroup.GET("/:id", zonesHandler.Get)
				zonesGroup.POST("/:id/sync", zonesHandler.SyncZone)
				zonesGroup.DELETE("/:id", zonesHandler.Delete)
				zonesGroup.GET("/:id/dns-records", recordsHandler.List)
			}

			// Live pass-through to the provider
			liveGroup := protected.Group("/cloudflare/zones/:id/dns-records")
			{
				liveGroup.GET("", recordsHandler.ListLive)
				liveGroup.POST("", recordsHandler.Create)
				liveGroup.GET("/:recordId", recordsHandler.Get)
				liveGroup.PUT("/:recordId", recordsHandler.Update)
				liveGroup.DELETE("/:recordId", recordsHandler.Delete)
			}

			protected.POST("/dns/records/batch", recordsHandler.Batch)

			historyHandler := historyhandler.NewHandler(deps.History)
			protected.GET("/history", historyHandler.List)
		}
	}
}

// pingHandler handles the ping request using unified response
func pingHandler(c *gin.Context) {
	httpx.OK(c, gin.H{
		"pong": true,
	})
}
