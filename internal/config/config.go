package config

import (
	"os"
	"strconv"

	"numcmc/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Fill     FillConfig
	Report   ReportConfig
}

// DatabaseConfig holds chain-store connection settings
type DatabaseConfig struct {
	URL     string `validate:"required"`
	SSLMode string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string `validate:"required"`
	GinMode string
}

// FillConfig holds chain-streaming settings. BatchSize bounds memory, not
// correctness; Shards > 1 enables the sharded fill path.
type FillConfig struct {
	BatchSize int
	Shards    int
	MaxSteps  int64
}

// ReportConfig holds report output settings
type ReportConfig struct {
	ExcelFile string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL:     os.Getenv("DATABASE_URL"),
			SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
		Fill: FillConfig{
			BatchSize: getEnvIntOrDefault("BATCH_SIZE", 100000),
			Shards:    getEnvIntOrDefault("FILL_SHARDS", 1),
			MaxSteps:  int64(getEnvIntOrDefault("MAX_STEPS", 0)),
		},
		Report: ReportConfig{
			ExcelFile: getEnvOrDefault("EXCEL_FILE", "intervals.xlsx"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Database.URL == "" {
		return errors.ConfigInvalid("DATABASE_URL is required")
	}
	if config.Fill.BatchSize <= 0 {
		return errors.ConfigInvalid("BATCH_SIZE must be positive")
	}
	if config.Fill.Shards <= 0 {
		return errors.ConfigInvalid("FILL_SHARDS must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
