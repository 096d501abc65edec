package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// DataDir holds catalog.json and the reference datasets it lists.
	DataDir string
	MaxRows int

	// GPlates rotation configuration.
	GPlatesEnabled   bool
	GPlatesURL       string
	GPlatesModel     string
	GPlatesTimeout   time.Duration
	GPlatesBatchSize int
	GPlatesCacheSize int
	GPlatesMaxAge    float64

	// Optional Kafka results publisher.
	KafkaEnabled      bool
	KafkaBrokers      []string
	KafkaResultsTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	gplatesTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("GPLATES_TIMEOUT", "10s"))
	if err != nil || gplatesTimeout <= 0 {
		return nil, errors.New("invalid GPLATES_TIMEOUT")
	}

	maxRows, err := positiveInt("MAX_ROWS", 10000)
	if err != nil {
		return nil, err
	}
	batchSize, err := positiveInt("GPLATES_BATCH_SIZE", 25)
	if err != nil {
		return nil, err
	}
	cacheSize, err := positiveInt("GPLATES_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	maxAge, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("GPLATES_MAX_AGE", "230"), 64)
	if err != nil || maxAge <= 0 {
		return nil, errors.New("invalid GPLATES_MAX_AGE")
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DataDir: sharedcfg.EnvOrDefault("DATA_DIR", "data"),
		MaxRows: maxRows,

		GPlatesEnabled:   os.Getenv("GPLATES_ENABLED") != "false",
		GPlatesURL:       sharedcfg.EnvOrDefault("GPLATES_URL", "https://gws.gplates.org"),
		GPlatesModel:     sharedcfg.EnvOrDefault("GPLATES_MODEL", "MULLER2016"),
		GPlatesTimeout:   gplatesTimeout,
		GPlatesBatchSize: batchSize,
		GPlatesCacheSize: cacheSize,
		GPlatesMaxAge:    maxAge,

		KafkaEnabled:      os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:      sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaResultsTopic: sharedcfg.EnvOrDefault("KAFKA_RESULTS_TOPIC", "paleotemp-results"),
	}

	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaResultsTopic == "" {
			return nil, errors.New("KAFKA_RESULTS_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

func positiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}
	return n, nil
}
