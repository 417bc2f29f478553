// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// RedisConfig provides settings for redis-backed components
// (replay-protection store, asynq queues).
type RedisConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
}

// SchedulerConfig provides settings for the asynq scheduler.
type SchedulerConfig interface {
	RedisConfig
	GetSnapshotQueueName() string
	GetSnapshotCron() string
}

// AttributionConfig provides defaults for the session-linking policy.
type AttributionConfig interface {
	GetDefaultTimeWindowDays() int
	GetDefaultSameCallWindowMinutes() int
}

// WebhookConfig provides settings for the conversion-ingestion webhook.
type WebhookConfig interface {
	RedisConfig
	GetReplayTTL() time.Duration
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                          string
	HTTPAddr                     string
	DatabaseURL                  string
	JWTAccessSecret              string
	RedisURL                     string
	RedisTLSInsecure             bool
	SnapshotQueueName            string
	SnapshotCron                 string
	ReplayTTL                    time.Duration
	DefaultTimeWindowDays        int
	DefaultSameCallWindowMinutes int
	CORSAllowAll                 bool
	CORSOrigins                  []string
	CORSAllowCreds               bool
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// RedisConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }

// SchedulerConfig implementation
func (c *Config) GetSnapshotQueueName() string { return c.SnapshotQueueName }
func (c *Config) GetSnapshotCron() string      { return c.SnapshotCron }

// AttributionConfig implementation
func (c *Config) GetDefaultTimeWindowDays() int        { return c.DefaultTimeWindowDays }
func (c *Config) GetDefaultSameCallWindowMinutes() int { return c.DefaultSameCallWindowMinutes }

// WebhookConfig implementation
func (c *Config) GetReplayTTL() time.Duration { return c.ReplayTTL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                          getEnv("APP_ENV", "development"),
		HTTPAddr:                     getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:                  getEnv("DATABASE_URL", ""),
		JWTAccessSecret:              getEnv("JWT_ACCESS_SECRET", ""),
		RedisURL:                     getEnv("REDIS_URL", ""),
		RedisTLSInsecure:             strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		SnapshotQueueName:            getEnv("SNAPSHOT_QUEUE", "snapshots"),
		SnapshotCron:                 getEnv("SNAPSHOT_CRON", "0 3 * * *"),
		ReplayTTL:                    mustDuration(getEnv("WEBHOOK_REPLAY_TTL", "24h")),
		DefaultTimeWindowDays:        mustInt(getEnv("ATTRIBUTION_TIME_WINDOW_DAYS", "14")),
		DefaultSameCallWindowMinutes: mustInt(getEnv("ATTRIBUTION_SAME_CALL_WINDOW_MINUTES", "30")),
		CORSAllowAll:                 corsAllowAll,
		CORSOrigins:                  corsOrigins,
		CORSAllowCreds:               strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.DefaultTimeWindowDays <= 0 || cfg.DefaultSameCallWindowMinutes <= 0 {
		return nil, fmt.Errorf("attribution window settings must be positive")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
