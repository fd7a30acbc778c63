package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// Config holds the tunables consumed by a sandbox. The zero value is not
// usable; start from NewDefaultConfig or FromEnv
type Config struct {
	// PoolWorkers is the fixed size of the worker pool servicing eager
	// deferred computations
	PoolWorkers int

	// NestingThreshold is the deferred nesting depth at which creation
	// falls back to inline execution
	NestingThreshold int

	// LogLevel is one of debug, info, warn, error
	LogLevel string
}

const (
	DefaultPoolWorkers      = 4
	DefaultNestingThreshold = 3
	DefaultLogLevel         = "info"

	MaxPoolWorkers      = 1024
	MaxNestingThreshold = 64
)

var (
	ErrInvalidPoolWorkers = errors.New(
		"pool workers must be between 1 and 1024",
	)
	ErrInvalidNestingThreshold = errors.New(
		"nesting threshold must be between 1 and 64",
	)
)

// NewDefaultConfig creates a configuration with the documented defaults
func NewDefaultConfig() *Config {
	return &Config{
		PoolWorkers:      DefaultPoolWorkers,
		NestingThreshold: DefaultNestingThreshold,
		LogLevel:         DefaultLogLevel,
	}
}

// FromEnv creates a configuration from the environment, falling back to the
// defaults for anything unset or unparsable
func FromEnv() *Config {
	cfg := NewDefaultConfig()
	cfg.PoolWorkers = envInt("DANA_POOL_WORKERS", cfg.PoolWorkers)
	cfg.NestingThreshold = envInt(
		"DANA_NESTING_THRESHOLD", cfg.NestingThreshold,
	)
	if lvl := os.Getenv("DANA_LOG_LEVEL"); lvl != "" {
		cfg.LogLevel = lvl
	}
	return cfg
}

// Validate checks the configuration for out-of-range settings
func (c *Config) Validate() error {
	if c.PoolWorkers < 1 || c.PoolWorkers > MaxPoolWorkers {
		return fmt.Errorf("%w: %d", ErrInvalidPoolWorkers, c.PoolWorkers)
	}
	if c.NestingThreshold < 1 || c.NestingThreshold > MaxNestingThreshold {
		return fmt.Errorf(
			"%w: %d", ErrInvalidNestingThreshold, c.NestingThreshold,
		)
	}
	return nil
}

func envInt(name string, defaultValue int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return val
}
