package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the allocation service configuration, loaded from the
// environment with sensible defaults for local development.
type Config struct {
	HTTP struct {
		Addr string
	}

	// Upstream booking server (source of truth for rooms and allocations)
	Upstream struct {
		BaseURL string
		Timeout time.Duration
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	Draft struct {
		// Parked drafts expire after this TTL; an expired draft means
		// starting the selection over, nothing authoritative is lost.
		TTL time.Duration
	}

	Events struct {
		Stream string
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.Upstream.BaseURL = getEnv("UPSTREAM_BASE_URL", "http://localhost:9000")
	cfg.Upstream.Timeout = getDuration("UPSTREAM_TIMEOUT", 10*time.Second)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getInt("REDIS_DB", 0)

	cfg.Draft.TTL = getDuration("DRAFT_TTL", 4*time.Hour)

	cfg.Events.Stream = getEnv("EVENT_STREAM", "allocation:events")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.Atoi(value); err == nil {
			return v
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if v, err := time.ParseDuration(value); err == nil && v > 0 {
			return v
		}
	}
	return defaultValue
}
