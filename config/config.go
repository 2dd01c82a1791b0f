package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL string

	// HTTP configuration
	HTTPAddr        string
	SchedulerSecret string // shared secret for cron trigger endpoints

	// Processor configuration
	MaxBatchSize int // maximum candidates processed per run

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		HTTPAddr:        os.Getenv("HTTP_ADDR"),
		SchedulerSecret: os.Getenv("SCHEDULER_SECRET"),
		Environment:     os.Getenv("ENVIRONMENT"),

		// Processor settings with defaults
		MaxBatchSize: 500,
	}

	// Override defaults if environment variables are set
	if batch := os.Getenv("MAX_BATCH_SIZE"); batch != "" {
		if parsedBatch, err := strconv.Atoi(batch); err == nil && parsedBatch > 0 {
			config.MaxBatchSize = parsedBatch
		}
	}

	if config.HTTPAddr == "" {
		config.HTTPAddr = ":8080"
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.Environment == "production" && config.SchedulerSecret == "" {
			return nil, fmt.Errorf("SCHEDULER_SECRET is required in production")
		}
	}

	return config, nil
}
