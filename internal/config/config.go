package config

import (
	"os"
	"strconv"
	"strings"

	"alignbench/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Scoring   ScoringConfig
	Bootstrap BootstrapConfig
	Database  DatabaseConfig
	Server    ServerConfig
	Logging   LoggingConfig
}

// ScoringConfig holds the numeric knobs of the scoring engine
type ScoringConfig struct {
	PriorOdds float64
	JZSScale  float64
	Epsilon   float64
	Alpha     float64
}

// BootstrapConfig controls standard-error estimation by resampling
type BootstrapConfig struct {
	Iterations int
	Seed       int64
	Workers    int
}

// DatabaseConfig holds database connection settings. An empty URL disables persistence.
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// LoggingConfig selects the zap level and encoder
type LoggingConfig struct {
	Level  string
	Format string
}

// Enabled reports whether a database is configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// Default returns the configuration used when no environment overrides are set
func Default() *Config {
	return &Config{
		Scoring: ScoringConfig{
			PriorOdds: 1.0,
			JZSScale:  0.7071067811865476,
			Epsilon:   0.001,
			Alpha:     0.05,
		},
		Bootstrap: BootstrapConfig{
			Iterations: 0,
			Seed:       42,
			Workers:    4,
		},
		Server: ServerConfig{
			Port:    "8080",
			GinMode: "release",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	def := Default()
	config := &Config{
		Scoring: ScoringConfig{
			PriorOdds: getEnvFloatOrDefault("ALIGN_PRIOR_ODDS", def.Scoring.PriorOdds),
			JZSScale:  getEnvFloatOrDefault("ALIGN_JZS_SCALE", def.Scoring.JZSScale),
			Epsilon:   getEnvFloatOrDefault("ALIGN_EPSILON", def.Scoring.Epsilon),
			Alpha:     getEnvFloatOrDefault("ALIGN_ALPHA", def.Scoring.Alpha),
		},
		Bootstrap: BootstrapConfig{
			Iterations: getEnvIntOrDefault("ALIGN_BOOTSTRAP_ITERATIONS", def.Bootstrap.Iterations),
			Seed:       int64(getEnvIntOrDefault("ALIGN_BOOTSTRAP_SEED", int(def.Bootstrap.Seed))),
			Workers:    getEnvIntOrDefault("ALIGN_WORKERS", def.Bootstrap.Workers),
		},
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", def.Server.Port),
			GinMode: getEnvOrDefault("GIN_MODE", def.Server.GinMode),
		},
		Logging: LoggingConfig{
			Level:  strings.ToLower(getEnvOrDefault("LOG_LEVEL", def.Logging.Level)),
			Format: strings.ToLower(getEnvOrDefault("LOG_FORMAT", def.Logging.Format)),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Validate checks the numeric ranges the engine relies on
func (c *Config) Validate() error {
	if c.Scoring.PriorOdds <= 0 {
		return errors.ConfigInvalid("ALIGN_PRIOR_ODDS must be positive")
	}
	if c.Scoring.JZSScale <= 0 {
		return errors.ConfigInvalid("ALIGN_JZS_SCALE must be positive")
	}
	if c.Scoring.Epsilon <= 0 || c.Scoring.Epsilon >= 0.5 {
		return errors.ConfigInvalid("ALIGN_EPSILON must lie in (0, 0.5)")
	}
	if c.Scoring.Alpha <= 0 || c.Scoring.Alpha >= 1 {
		return errors.ConfigInvalid("ALIGN_ALPHA must lie in (0, 1)")
	}
	if c.Bootstrap.Iterations < 0 {
		return errors.ConfigInvalid("ALIGN_BOOTSTRAP_ITERATIONS cannot be negative")
	}
	if c.Bootstrap.Workers < 1 {
		return errors.ConfigInvalid("ALIGN_WORKERS must be at least 1")
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return errors.ConfigInvalid("LOG_FORMAT must be console or json")
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
