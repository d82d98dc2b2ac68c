package model

import (
	"runtime"
	"time"
)

// Config holds runtime configuration for the CLI surface.
// Evaluation semantics take no configuration: the engine is deterministic
// and config only affects diagnostics, concurrency, and caching.
type Config struct {
	Logging     LoggingConfig     `yaml:"logging" mapstructure:"logging"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// LoggingConfig controls opt-in diagnostic logging.
type LoggingConfig struct {
	// Level is empty by default: the library stays silent unless a level
	// is set here or via NORMGATE_LOG_LEVEL.
	Level string `yaml:"level" mapstructure:"level"`
}

// ConcurrencyConfig controls batch evaluation parallelism.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// CacheConfig controls judgment memoization.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// OutputConfig controls CLI output behavior.
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level: "",
		},
		Concurrency: ConcurrencyConfig{
			Workers: runtime.NumCPU(),
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     1 * time.Hour,
		},
		Output: OutputConfig{
			Verbose: false,
		},
	}
}
