// Package config loads process configuration from environment variables.
//
// Every key has a default so the process can start with a bare
// environment; see the field comments for the exact variable name and
// default value.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all tunables recognized by the ingestion and serving
// backend. All fields are populated by FromEnv; nothing here mutates at
// runtime.
type Config struct {
	// Server
	Port    string // PORT, default "3001"
	NodeEnv string // NODE_ENV, default "development"
	BaseURL string // BASE_URL, default "http://localhost:3001"

	// Coordination store (Redis)
	RedisURL string // REDIS_URL, default "redis://localhost:6379"

	// Persistent store (Postgres)
	DatabaseURL      string // DATABASE_URL, default "postgres://localhost/ativeplay?sslmode=disable"
	DBMaxConnections int    // DB_MAX_CONNECTIONS, default 15

	// Parsing
	ParseCacheTTLMs int64 // PARSE_CACHE_TTL_MS, default 600000
	MaxM3USizeMB    int64 // MAX_M3U_SIZE_MB, default 500
	FetchTimeoutMs  int64 // FETCH_TIMEOUT_MS, default 300000
	MaxItemsPage    int   // MAX_ITEMS_PAGE, default 5000
	MaxRetries      int   // MAX_RETRIES, default 3

	// HLS proxy
	HLSProxyTimeoutMs int64 // HLS_PROXY_TIMEOUT_MS, default 15000

	// Sessions
	SessionTTLSeconds int64 // SESSION_TTL_SECONDS, default 900

	// Misc
	UserAgent string // USER_AGENT, default VLC UA (avoids origin blocks)
	AdminKey  string // ADMIN_KEY, default "" (admin routes disabled)

	// Observability (ambient, not named by the upstream spec)
	LogFormat string // LOG_FORMAT, "json" or "pretty", default "json"
	LogLevel  string // LOG_LEVEL, default "info"
	SentryDSN string // SENTRY_DSN, default "" (disabled)
}

// FromEnv loads Config from the process environment, falling back to
// defaults for any unset variable.
func FromEnv() Config {
	return Config{
		Port:    getEnv("PORT", "3001"),
		NodeEnv: getEnv("NODE_ENV", "development"),
		BaseURL: getEnv("BASE_URL", "http://localhost:3001"),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),

		DatabaseURL:      getEnv("DATABASE_URL", "postgres://localhost/ativeplay?sslmode=disable"),
		DBMaxConnections: getEnvInt("DB_MAX_CONNECTIONS", 15),

		ParseCacheTTLMs: getEnvInt64("PARSE_CACHE_TTL_MS", 600_000),
		MaxM3USizeMB:    getEnvInt64("MAX_M3U_SIZE_MB", 500),
		FetchTimeoutMs:  getEnvInt64("FETCH_TIMEOUT_MS", 300_000),
		MaxItemsPage:    getEnvInt("MAX_ITEMS_PAGE", 5000),
		MaxRetries:      getEnvInt("MAX_RETRIES", 3),

		HLSProxyTimeoutMs: getEnvInt64("HLS_PROXY_TIMEOUT_MS", 15_000),

		SessionTTLSeconds: getEnvInt64("SESSION_TTL_SECONDS", 900),

		UserAgent: getEnv("USER_AGENT", "VLC/3.0.20 LibVLC/3.0.20"),
		AdminKey:  getEnv("ADMIN_KEY", ""),

		LogFormat: getEnv("LOG_FORMAT", "json"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		SentryDSN: getEnv("SENTRY_DSN", ""),
	}
}

// FetchTimeout returns FetchTimeoutMs as a time.Duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMs) * time.Millisecond
}

// HLSProxyTimeout returns HLSProxyTimeoutMs as a time.Duration.
func (c Config) HLSProxyTimeout() time.Duration {
	return time.Duration(c.HLSProxyTimeoutMs) * time.Millisecond
}

// SessionTTL returns SessionTTLSeconds as a time.Duration.
func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvInt64(key string, fallback int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
