package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/chatgate/pkg/jwtx"
)

type Config struct {
	Secret    string        // Signing secret; generated (ephemeral) when empty
	AccessTTL time.Duration // Access token lifetime (default: 30m)
	Issuer    string        // Issuer claim for tokens (default: chatgate)

	StoreDriver  string // "memory" (default) or "sqlite"
	DatabaseFile string // Path to SQLite database file (sqlite driver only)
	PepperFile   string // Path to pepper file for password hashing (default: ./pepper)

	GlobalLimit int           // Service-wide admissions per window (default: 100)
	UserLimit   int           // Per-user admissions per window (default: 10)
	RateWindow  time.Duration // Admission window (default: 60s)

	SeedUsername string // Optional: create this user at startup if the store is empty
	SeedPassword string // Optional: seed user's password; generated when empty

	CORSOrigins []string // Allowed CORS origins (default: *)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8000)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		Secret:    os.Getenv("CHATGATE_SECRET"),
		AccessTTL: getEnvDurationOrDefault("CHATGATE_TOKEN_TTL", jwtx.DefaultAccessTokenTTL),
		Issuer:    getEnvOrDefault("CHATGATE_ISSUER", "chatgate"),

		StoreDriver:  getEnvOrDefault("CHATGATE_STORE", "memory"),
		DatabaseFile: getEnvOrDefault("CHATGATE_DATABASE_FILE", "chatgate.db"),
		PepperFile:   getEnvOrDefault("CHATGATE_PEPPER_FILE", "pepper"),

		GlobalLimit: getEnvIntOrDefault("CHATGATE_GLOBAL_LIMIT", 100),
		UserLimit:   getEnvIntOrDefault("CHATGATE_USER_LIMIT", 10),
		RateWindow:  getEnvDurationOrDefault("CHATGATE_RATE_WINDOW", time.Minute),

		SeedUsername: os.Getenv("CHATGATE_SEED_USER"),
		SeedPassword: os.Getenv("CHATGATE_SEED_PASSWORD"),

		CORSOrigins: splitCommaList(getEnvOrDefault("CORS_ORIGINS", "*")),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8000),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are treated as seconds.
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func splitCommaList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
