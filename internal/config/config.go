// Package config reads paulideck settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	LogLevel       string
	LogPretty      bool
	Workers        int
	PhaseTolerance float64
	Color          bool
}

// Load reads configuration from environment variables. Named env files must
// exist; without any, a .env in the working directory is loaded if present.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	cfg := &Config{
		LogLevel:       getEnvAs("LOG_LEVEL", "info", parseString),
		LogPretty:      getEnvAs("LOG_PRETTY", true, strconv.ParseBool),
		Workers:        getEnvAs("PAULIDECK_WORKERS", 1, strconv.Atoi),
		PhaseTolerance: getEnvAs("PAULIDECK_PHASE_TOLERANCE", 0.0, parseFloat),
		Color:          getEnvAs("PAULIDECK_COLOR", true, strconv.ParseBool),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("PAULIDECK_WORKERS must not be negative, got %d", c.Workers)
	}
	if c.PhaseTolerance < 0 {
		return fmt.Errorf("PAULIDECK_PHASE_TOLERANCE must not be negative, got %v", c.PhaseTolerance)
	}
	return nil
}

// getEnvAs parses key with parse. Unset, empty or malformed values give
// defaultValue.
func getEnvAs[T any](key string, defaultValue T, parse func(string) (T, error)) T {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := parse(raw)
	if err != nil {
		return defaultValue
	}
	return v
}

func parseString(s string) (string, error) { return s, nil }

func parseFloat(s string) (float64, error) { return strconv.ParseFloat(s, 64) }
