package config

import (
	"os"
	"strconv"

	"causalimpact/internal/errors"

	"github.com/go-playground/validator/v10"
)

// Config represents the complete application configuration
type Config struct {
	Analysis AnalysisConfig
	Data     DataConfig
	Log      LogConfig
}

// AnalysisConfig holds the defaults applied to every analysis request
type AnalysisConfig struct {
	Alpha       float64 `validate:"gte=0,lte=1"`
	NSims       int     `validate:"gt=0"`
	Seed        int64
	SimWorkers  int `validate:"gt=0"`
	Standardize bool
}

// DataConfig holds input file settings used by the CLI
type DataConfig struct {
	File        string
	Sheet       string `validate:"required"`
	IndexColumn string
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `validate:"omitempty,oneof=ERROR WARN INFO DEBUG TRACE"`
}

// Default values
const (
	DefaultAlpha      = 0.05
	DefaultNSims      = 1000
	DefaultSeed       = 42
	DefaultSimWorkers = 4
	DefaultSheet      = "Sheet1"
)

// DefaultAnalysisConfig returns the analysis defaults without reading the environment
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		Alpha:       DefaultAlpha,
		NSims:       DefaultNSims,
		Seed:        DefaultSeed,
		SimWorkers:  DefaultSimWorkers,
		Standardize: true,
	}
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Analysis: *loadAnalysisConfig(),
		Data:     *loadDataConfig(),
		Log:      *loadLogConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{
		Alpha:       getEnvFloatOrDefault("CAUSALIMPACT_ALPHA", DefaultAlpha),
		NSims:       getEnvIntOrDefault("CAUSALIMPACT_N_SIMS", DefaultNSims),
		Seed:        int64(getEnvIntOrDefault("CAUSALIMPACT_SEED", DefaultSeed)),
		SimWorkers:  getEnvIntOrDefault("CAUSALIMPACT_SIM_WORKERS", DefaultSimWorkers),
		Standardize: getEnvBoolOrDefault("CAUSALIMPACT_STANDARDIZE", true),
	}
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		File:        getEnvOrDefault("CAUSALIMPACT_DATA_FILE", ""),
		Sheet:       getEnvOrDefault("CAUSALIMPACT_SHEET", DefaultSheet),
		IndexColumn: getEnvOrDefault("CAUSALIMPACT_INDEX_COLUMN", ""),
	}
}

func loadLogConfig() *LogConfig {
	return &LogConfig{
		Level: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}
}

func validateConfig(config *Config) error {
	if err := validator.New().Struct(config); err != nil {
		return errors.ConfigInvalid(err.Error())
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

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
