package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string
	HTTPPort     string
	PostgresDSN  string
	KafkaBrokers []string

	OutboxRelayIntervalSeconds int

	EnableMembershipConsumer bool
	EnableOutboxRelay        bool
}

func Load() (Config, error) {
	// Missing .env is fine; real deployments inject the environment directly.
	_ = godotenv.Load()

	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "daotools"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	var brokers []string
	for _, value := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			brokers = append(brokers, value)
		}
	}
	if len(brokers) == 0 {
		brokers = []string{"localhost:9092"}
	}

	return Config{
		ServiceName:  service,
		HTTPPort:     port,
		PostgresDSN:  os.Getenv("POSTGRES_DSN"),
		KafkaBrokers: brokers,

		OutboxRelayIntervalSeconds: envInt("OUTBOX_RELAY_INTERVAL_SECONDS", 5),

		EnableMembershipConsumer: envBool("ENABLE_MEMBERSHIP_CONSUMER", true),
		EnableOutboxRelay:        envBool("ENABLE_OUTBOX_RELAY", true),
	}, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
