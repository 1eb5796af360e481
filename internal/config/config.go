package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Repository backends accepted by REPOSITORY_BACKEND.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Residents-per-station target used by recommendations when a request
	// does not name one.
	TargetRatio float64

	RepositoryBackend string
	RedisAddr         string
	RedisKey          string

	// Domain events are forwarded to Kafka only when enabled.
	KafkaEnabled     bool
	KafkaBrokers     []string
	KafkaEventsTopic string

	// Open data lookups are enabled when a base URL is set.
	OpenDataBaseURL   string
	OpenDataEnabled   bool
	OpenDataTimeout   time.Duration
	OpenDataCacheSize int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	openDataTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("OPENDATA_TIMEOUT", "5s"))
	if err != nil || openDataTimeout <= 0 {
		return nil, errors.New("invalid OPENDATA_TIMEOUT")
	}

	targetRatio, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("TARGET_RATIO", "2000"), 64)
	if err != nil || !(targetRatio > 0) || math.IsInf(targetRatio, 0) {
		return nil, errors.New("invalid TARGET_RATIO: must be a positive number")
	}

	kafkaEnabled, err := parseBool("KAFKA_ENABLED", false)
	if err != nil {
		return nil, err
	}

	openDataBaseURL := os.Getenv("OPENDATA_BASE_URL")

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		TargetRatio:     targetRatio,

		RepositoryBackend: sharedcfg.EnvOrDefault("REPOSITORY_BACKEND", BackendMemory),
		RedisAddr:         sharedcfg.EnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisKey:          sharedcfg.EnvOrDefault("REDIS_KEY", "ev_demand:areas"),

		KafkaEnabled:     kafkaEnabled,
		KafkaBrokers:     sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaEventsTopic: sharedcfg.EnvOrDefault("KAFKA_EVENTS_TOPIC", "demand-events"),

		OpenDataBaseURL:   openDataBaseURL,
		OpenDataEnabled:   openDataBaseURL != "",
		OpenDataTimeout:   openDataTimeout,
		OpenDataCacheSize: parseOpenDataCacheSize(),
	}

	switch cfg.RepositoryBackend {
	case BackendMemory:
	case BackendRedis:
		if cfg.RedisAddr == "" {
			return nil, errors.New("REDIS_ADDR is required for the redis backend")
		}
	default:
		return nil, fmt.Errorf("invalid REPOSITORY_BACKEND %q: must be %s or %s", cfg.RepositoryBackend, BackendMemory, BackendRedis)
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaEventsTopic == "" {
			return nil, errors.New("KAFKA_EVENTS_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseOpenDataCacheSize() int {
	if s := os.Getenv("OPENDATA_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
