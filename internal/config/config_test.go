package config

import (
	"os"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	os.Setenv("MYSQL_DSN", "user:pass@tcp(localhost:3306)/test")
	os.Setenv("JWT_SECRET", "test-secret")
	t.Cleanup(func() {
		os.Unsetenv("MYSQL_DSN")
		os.Unsetenv("JWT_SECRET")
	})
}

func TestLoad(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.MySQL.DSN == "" {
		t.Error("MySQL DSN should not be empty")
	}

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("Expected HTTPAddr :8080, got %s", cfg.HTTPAddr)
	}

	if cfg.Cache.TTLMillis != 60000 {
		t.Errorf("Expected default cache TTL 60000ms, got %d", cfg.Cache.TTLMillis)
	}

	if cfg.RateLimit.WindowSec != 60 || cfg.RateLimit.Max != 120 {
		t.Errorf("Expected default rate limit 120/60s, got %d/%ds", cfg.RateLimit.Max, cfg.RateLimit.WindowSec)
	}
}

func TestLoad_MissingMySQLDSN(t *testing.T) {
	os.Unsetenv("MYSQL_DSN")
	os.Setenv("JWT_SECRET", "test-secret")
	defer os.Unsetenv("JWT_SECRET")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when MYSQL_DSN is missing")
	}
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	os.Setenv("MYSQL_DSN", "user:pass@tcp(localhost:3306)/test")
	os.Unsetenv("JWT_SECRET")
	defer os.Unsetenv("MYSQL_DSN")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when JWT_SECRET is missing")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	setRequiredEnv(t)
	os.Setenv("REDIS_ADDR", "redis.example.com:6379")
	os.Setenv("CACHE_TTL_MS", "5000")
	os.Setenv("RATE_LIMIT_MAX", "30")
	os.Setenv("CF_API_TOKEN", "cf-token")
	os.Setenv("PROVIDER_TIMEOUT_SEC", "20")

	defer func() {
		os.Unsetenv("REDIS_ADDR")
		os.Unsetenv("CACHE_TTL_MS")
		os.Unsetenv("RATE_LIMIT_MAX")
		os.Unsetenv("CF_API_TOKEN")
		os.Unsetenv("PROVIDER_TIMEOUT_SEC")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Redis.Addr != "redis.example.com:6379" {
		t.Errorf("Expected custom Redis addr, got %s", cfg.Redis.Addr)
	}

	if cfg.Cache.TTLMillis != 5000 {
		t.Errorf("Expected cache TTL 5000ms, got %d", cfg.Cache.TTLMillis)
	}

	if cfg.RateLimit.Max != 30 {
		t.Errorf("Expected rate limit max 30, got %d", cfg.RateLimit.Max)
	}

	if cfg.Cloudflare.APIToken != "cf-token" {
		t.Errorf("Expected CF token to be loaded, got %s", cfg.Cloudflare.APIToken)
	}

	if cfg.Cloudflare.TimeoutSec != 20 {
		t.Errorf("Expected provider timeout 20s, got %d", cfg.Cloudflare.TimeoutSec)
	}
}

func TestLoad_TimeoutOutOfRange(t *testing.T) {
	setRequiredEnv(t)
	os.Setenv("PROVIDER_TIMEOUT_SEC", "5")
	defer os.Unsetenv("PROVIDER_TIMEOUT_SEC")

	_, err := Load()
	if err == nil {
		t.Error("Expected error for provider timeout outside 15-45s")
	}
}

func TestLoad_RateLimitMustBePositive(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"zero window", "RATE_LIMIT_WINDOW_SEC", "0"},
		{"negative window", "RATE_LIMIT_WINDOW_SEC", "-1"},
		{"zero max", "RATE_LIMIT_MAX", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			os.Setenv(tt.key, tt.value)
			defer os.Unsetenv(tt.key)

			_, err := Load()
			if err == nil {
				t.Errorf("Expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}
