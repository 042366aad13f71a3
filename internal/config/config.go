package config

import (
	"os"
	"strconv"
	"time"
)

// Config aggregates runtime settings loaded from environment variables.
type Config struct {
	HTTPPort   string
	PGHost     string
	PGPort     string
	PGDatabase string
	PGUser     string
	PGPassword string
	PGSSL      bool

	JWTSecret string
	TokenTTL  time.Duration

	RedisURL string
	NATSURL  string
	NodeID   string

	LogLevel        string
	MaintenanceFlag string
}

// Load builds a Config from the environment with local-development defaults.
func Load() Config {
	ttl := 30 * 24 * time.Hour
	if raw := os.Getenv("JWT_TTL"); raw != "" {
		if days, err := strconv.Atoi(raw); err == nil {
			ttl = time.Duration(days) * 24 * time.Hour
		}
	}

	return Config{
		HTTPPort:   firstNonEmpty(os.Getenv("PORT"), "3000"),
		PGHost:     firstNonEmpty(os.Getenv("PG_HOST"), "localhost"),
		PGPort:     firstNonEmpty(os.Getenv("PG_PORT"), "5432"),
		PGDatabase: firstNonEmpty(os.Getenv("PG_DATABASE"), "vidstream"),
		PGUser:     firstNonEmpty(os.Getenv("PG_USER"), "vidstream_user"),
		PGPassword: os.Getenv("PG_PASSWORD"),
		PGSSL:      os.Getenv("PG_SSL") == "true",
		JWTSecret:  firstNonEmpty(os.Getenv("JWT_SECRET"), "your-secret-key-change-in-production"),
		TokenTTL:   ttl,
		RedisURL:   os.Getenv("REDIS_URL"),
		NATSURL:    os.Getenv("NATS_URL"),
		NodeID:     os.Getenv("NODE_ID"),
		LogLevel:   firstNonEmpty(os.Getenv("LOG_LEVEL"), "info"),

		MaintenanceFlag: firstNonEmpty(os.Getenv("MAINTENANCE_FLAG"), "maintenance.flag"),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
