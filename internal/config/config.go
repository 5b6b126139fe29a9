package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
)

// Config holds all configuration
type Config struct {
	MySQL      MySQLConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Cloudflare CloudflareConfig
	Cache      CacheConfig
	RateLimit  RateLimitConfig
	Migrate    bool
	HTTPAddr   string
	CORSOrigin string
}

// MySQLConfig holds MySQL configuration
type MySQLConfig struct {
	DSN string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	ExpireMinutes int
	Issuer        string
}

// CloudflareConfig holds the process-wide fallback provider credential.
// Per-user credentials stored in the database take precedence.
type CloudflareConfig struct {
	APIToken   string
	APIEmail   string
	TimeoutSec int
}

// CacheConfig holds TTL cache configuration
type CacheConfig struct {
	TTLMillis int
}

// RateLimitConfig holds rate limiter configuration
type RateLimitConfig struct {
	WindowSec int
	Max       int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		MySQL: MySQLConfig{
			DSN: getEnv("MYSQL_DSN", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASS", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:        os.Getenv("JWT_SECRET"),
			ExpireMinutes: getEnvInt("JWT_EXPIRE_MINUTES", 1440),
			Issuer:        getEnv("JWT_ISSUER", "dnspanel"),
		},
		Cloudflare: CloudflareConfig{
			APIToken:   getEnv("CF_API_TOKEN", ""),
			APIEmail:   getEnv("CF_API_EMAIL", ""),
			TimeoutSec: getEnvInt("PROVIDER_TIMEOUT_SEC", 30),
		},
		Cache: CacheConfig{
			TTLMillis: getEnvInt("CACHE_TTL_MS", 60000),
		},
		RateLimit: RateLimitConfig{
			WindowSec: getEnvInt("RATE_LIMIT_WINDOW_SEC", 60),
			Max:       getEnvInt("RATE_LIMIT_MAX", 120),
		},
		Migrate:    getEnv("MIGRATE", "0") == "1",
		HTTPAddr:   getEnv("HTTP_ADDR", ":8080"),
		CORSOrigin: getEnv("CORS_ORIGIN", "*"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromINI loads configuration from INI file with environment variable override
func LoadFromINI(iniPath string) (*Config, error) {
	cfgFile, err := ini.Load(iniPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load INI file: %w", err)
	}

	// Priority: ENV > INI > default
	getValue := func(envKey, iniSection, iniKey, defaultValue string) string {
		if value := os.Getenv(envKey); value != "" {
			return value
		}
		if value := cfgFile.Section(iniSection).Key(iniKey).String(); value != "" {
			return value
		}
		return defaultValue
	}

	getValueInt := func(envKey, iniSection, iniKey string, defaultValue int) int {
		if value := os.Getenv(envKey); value != "" {
			if intValue, err := strconv.Atoi(value); err == nil {
				return intValue
			}
		}
		if cfgFile.Section(iniSection).HasKey(iniKey) {
			if value, err := cfgFile.Section(iniSection).Key(iniKey).Int(); err == nil {
				return value
			}
		}
		return defaultValue
	}

	getValueBool := func(envKey, iniSection, iniKey string, defaultValue bool) bool {
		if value := os.Getenv(envKey); value != "" {
			return value == "1" || value == "true"
		}
		if value, err := cfgFile.Section(iniSection).Key(iniKey).Bool(); err == nil {
			return value
		}
		return defaultValue
	}

	cfg := &Config{
		MySQL: MySQLConfig{
			DSN: getValue("MYSQL_DSN", "mysql", "dsn", ""),
		},
		Redis: RedisConfig{
			Addr:     getValue("REDIS_ADDR", "redis", "addr", "localhost:6379"),
			Password: getValue("REDIS_PASS", "redis", "pass", ""),
			DB:       getValueInt("REDIS_DB", "redis", "db", 0),
		},
		JWT: JWTConfig{
			Secret:        getValue("JWT_SECRET", "jwt", "secret", ""),
			ExpireMinutes: getValueInt("JWT_EXPIRE_MINUTES", "jwt", "expire_minutes", 1440),
			Issuer:        getValue("JWT_ISSUER", "jwt", "issuer", "dnspanel"),
		},
		Cloudflare: CloudflareConfig{
			APIToken:   getValue("CF_API_TOKEN", "cloudflare", "api_token", ""),
			APIEmail:   getValue("CF_API_EMAIL", "cloudflare", "api_email", ""),
			TimeoutSec: getValueInt("PROVIDER_TIMEOUT_SEC", "cloudflare", "timeout_sec", 30),
		},
		Cache: CacheConfig{
			TTLMillis: getValueInt("CACHE_TTL_MS", "cache", "ttl_ms", 60000),
		},
		RateLimit: RateLimitConfig{
			WindowSec: getValueInt("RATE_LIMIT_WINDOW_SEC", "rate_limit", "window_sec", 60),
			Max:       getValueInt("RATE_LIMIT_MAX", "rate_limit", "max", 120),
		},
		Migrate:    getValueBool("MIGRATE", "app", "migrate", false),
		HTTPAddr:   getValue("HTTP_ADDR", "http", "addr", ":8080"),
		CORSOrigin: getValue("CORS_ORIGIN", "http", "cors_origin", "*"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.MySQL.DSN == "" {
		return fmt.Errorf("MYSQL_DSN is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Cache.TTLMillis <= 0 {
		return fmt.Errorf("CACHE_TTL_MS must be positive")
	}
	if c.Cloudflare.TimeoutSec < 15 || c.Cloudflare.TimeoutSec > 45 {
		return fmt.Errorf("PROVIDER_TIMEOUT_SEC must be between 15 and 45")
	}
	if c.RateLimit.WindowSec <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW_SEC must be positive")
	}
	if c.RateLimit.Max <= 0 {
		return fmt.Errorf("RATE_LIMIT_MAX must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
