// Package config loads process configuration from the environment with
// defaults suitable for local development.
package config

import (
	"os"
	"strings"
)

// Config carries every tunable the api and worker processes read at boot.
type Config struct {
	ServiceName string
	HTTPPort    string

	// PostgresDSN selects the durable store. When empty both processes fall
	// back to the in-memory store, which is the local development path.
	PostgresDSN string

	// RedisURL selects the shared idempotency and event dedup store. When
	// empty the in-memory store covers both concerns.
	RedisURL string

	// ArchiveDBPath is the sqlite file the archive exporter writes finished
	// transcripts to. When empty the exporter stays off.
	ArchiveDBPath string

	KafkaBrokers  []string
	ConsumerGroup string

	ResponderEnabled        bool
	ActivityConsumerEnabled bool
}

// Load reads the environment once and returns the resolved configuration.
func Load() Config {
	cfg := Config{
		ServiceName:             "discussion-engine",
		HTTPPort:                "8080",
		KafkaBrokers:            []string{"localhost:9092"},
		ConsumerGroup:           "discussion-engine-workers",
		ResponderEnabled:        false,
		ActivityConsumerEnabled: true,
	}

	if v := strings.TrimSpace(os.Getenv("SERVICE_NAME")); v != "" {
		cfg.ServiceName = v
	}
	if v := strings.TrimSpace(os.Getenv("HTTP_PORT")); v != "" {
		cfg.HTTPPort = v
	}
	cfg.PostgresDSN = strings.TrimSpace(os.Getenv("POSTGRES_DSN"))
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.ArchiveDBPath = strings.TrimSpace(os.Getenv("ARCHIVE_DB_PATH"))
	if v := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); v != "" {
		parts := strings.Split(v, ",")
		brokers := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				brokers = append(brokers, trimmed)
			}
		}
		if len(brokers) > 0 {
			cfg.KafkaBrokers = brokers
		}
	}
	if v := strings.TrimSpace(os.Getenv("CONSUMER_GROUP")); v != "" {
		cfg.ConsumerGroup = v
	}
	cfg.ResponderEnabled = envBool("RESPONDER_ENABLED", cfg.ResponderEnabled)
	cfg.ActivityConsumerEnabled = envBool("ACTIVITY_CONSUMER_ENABLED", cfg.ActivityConsumerEnabled)

	return cfg
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	switch strings.ToLower(raw) {
	case "1", "t", "true", "y", "yes", "on":
		return true
	case "0", "f", "false", "n", "no", "off":
		return false
	default:
		return fallback
	}
}
