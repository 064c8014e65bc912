// Package config reads service settings from environment variables and
// validates them at startup.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hazewatch/hotspot-etl/internal/ml"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	Region          string
	MinConfidence   float64
	RefreshInterval time.Duration

	FIRMSBaseURL string
	FIRMSTimeout time.Duration // CSV feeds; 0 means no timeout
	VIIRSTimeout time.Duration

	OpenAQURL     string
	OpenAQEnabled bool

	KafkaBrokers       []string
	KafkaSinkTopic     string
	KafkaExportEnabled bool

	Forest ml.Config
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	refreshInterval, err := parseDuration("REFRESH_INTERVAL", "10m")
	if err != nil {
		return nil, err
	}
	viirsTimeout, err := parseDuration("VIIRS_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	// The MODIS CSVs are large; no timeout unless one is configured.
	firmsTimeout := time.Duration(0)
	if s := os.Getenv("FIRMS_TIMEOUT"); s != "" {
		firmsTimeout, err = time.ParseDuration(s)
		if err != nil || firmsTimeout <= 0 {
			return nil, errors.New("invalid FIRMS_TIMEOUT")
		}
	}

	minConfidence, err := parseFloat("MIN_CONFIDENCE", 50)
	if err != nil {
		return nil, err
	}

	forest := ml.DefaultConfig()
	if forest.Trees, err = parseInt("FOREST_TREES", forest.Trees); err != nil {
		return nil, err
	}
	if forest.MaxDepth, err = parseInt("FOREST_MAX_DEPTH", forest.MaxDepth); err != nil {
		return nil, err
	}
	seed, err := parseInt("FOREST_SEED", int(forest.Seed))
	if err != nil {
		return nil, err
	}
	forest.Seed = int64(seed)

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		Region:          envOrDefault("REGION", "indonesia"),
		MinConfidence:   minConfidence,
		RefreshInterval: refreshInterval,

		FIRMSBaseURL: envOrDefault("FIRMS_BASE_URL", "https://firms.modaps.eosdis.nasa.gov"),
		FIRMSTimeout: firmsTimeout,
		VIIRSTimeout: viirsTimeout,

		OpenAQURL:     envOrDefault("OPENAQ_URL", "https://api.openaq.org"),
		OpenAQEnabled: os.Getenv("OPENAQ_ENABLED") == "true",

		KafkaBrokers:       parseBrokers(envOrDefault("KAFKA_BROKERS", "")),
		KafkaSinkTopic:     envOrDefault("KAFKA_SINK_TOPIC", "scored-hotspots"),
		KafkaExportEnabled: os.Getenv("KAFKA_EXPORT_ENABLED") == "true",

		Forest: forest,
	}

	if cfg.MinConfidence < 0 || cfg.MinConfidence > 100 {
		return nil, errors.New("MIN_CONFIDENCE must be between 0 and 100")
	}
	if cfg.Forest.Trees <= 0 {
		return nil, errors.New("FOREST_TREES must be positive")
	}
	if cfg.Forest.MaxDepth <= 0 {
		return nil, errors.New("FOREST_MAX_DEPTH must be positive")
	}
	if cfg.KafkaExportEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_EXPORT_ENABLED is true but KAFKA_BROKERS is not set")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_EXPORT_ENABLED is true but KAFKA_SINK_TOPIC is not set")
		}
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseBrokers(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return f, nil
}
