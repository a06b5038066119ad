package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"statcalc/domain/stats"
	"statcalc/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Calc     CalcConfig
	Remote   RemoteConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver string
	URL    string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	UIPort  string
	GinMode string
}

// CalcConfig holds calculator defaults
type CalcConfig struct {
	DefaultLevel     stats.ConfidenceLevel
	StrictLevels     bool
	StrictParsing    bool
	BatchConcurrency int
	LogLevel         string
}

// RemoteConfig holds settings for remote observation sources
type RemoteConfig struct {
	Timeout time.Duration
}

const defaultSQLiteURL = "file:statcalc.db?_foreign_keys=on"

// Load reads configuration from environment variables and validates it.
// Binaries call godotenv.Load before this.
func Load() (*Config, error) {
	config := &Config{}

	dbConfig, err := loadDatabaseConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load database configuration")
	}
	config.Database = *dbConfig

	config.Server = *loadServerConfig()

	calcConfig, err := loadCalcConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load calculator configuration")
	}
	config.Calc = *calcConfig

	config.Remote = RemoteConfig{
		Timeout: getEnvDurationOrDefault("REMOTE_TIMEOUT", 10*time.Second),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDatabaseConfig() (*DatabaseConfig, error) {
	driver := strings.ToLower(getEnvOrDefault("DATABASE_DRIVER", "sqlite3"))
	url := os.Getenv("DATABASE_URL")

	switch driver {
	case "sqlite3", "sqlite":
		driver = "sqlite3"
		if url == "" {
			url = defaultSQLiteURL
		}
	case "postgres", "postgresql":
		driver = "postgres"
		if url == "" {
			return nil, errors.ConfigInvalid("DATABASE_URL is required for postgres")
		}
	default:
		return nil, errors.ConfigInvalid(fmt.Sprintf("unsupported DATABASE_DRIVER %q", driver))
	}

	return &DatabaseConfig{
		Driver: driver,
		URL:    url,
	}, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		UIPort:  getEnvOrDefault("UI_PORT", "8081"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadCalcConfig() (*CalcConfig, error) {
	level := stats.DefaultLevel
	if raw := os.Getenv("DEFAULT_LEVEL"); raw != "" {
		parsed, err := stats.ParseLevel(raw)
		if err != nil {
			return nil, errors.ConfigInvalid(fmt.Sprintf("DEFAULT_LEVEL: %v", err))
		}
		level = parsed
	}

	return &CalcConfig{
		DefaultLevel:     level,
		StrictLevels:     getEnvBoolOrDefault("STRICT_LEVELS", false),
		StrictParsing:    getEnvBoolOrDefault("STRICT_PARSING", false),
		BatchConcurrency: getEnvIntOrDefault("BATCH_CONCURRENCY", 4),
		LogLevel:         getEnvOrDefault("LOG_LEVEL", "INFO"),
	}, nil
}

func validateConfig(config *Config) error {
	if config.Database.URL == "" {
		return errors.ConfigInvalid("database URL is required")
	}
	if _, err := strconv.Atoi(config.Server.Port); err != nil {
		return errors.ConfigInvalid(fmt.Sprintf("PORT must be numeric, got %q", config.Server.Port))
	}
	if _, err := strconv.Atoi(config.Server.UIPort); err != nil {
		return errors.ConfigInvalid(fmt.Sprintf("UI_PORT must be numeric, got %q", config.Server.UIPort))
	}
	if config.Server.GinMode != "debug" && config.Server.GinMode != "release" && config.Server.GinMode != "test" {
		return errors.ConfigInvalid(fmt.Sprintf("GIN_MODE must be debug, release or test, got %q", config.Server.GinMode))
	}
	if config.Calc.BatchConcurrency < 1 {
		return errors.ConfigInvalid("BATCH_CONCURRENCY must be at least 1")
	}
	if config.Remote.Timeout <= 0 {
		return errors.ConfigInvalid("REMOTE_TIMEOUT must be positive")
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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
