// Package config handles configuration loading and defaults.
package config

import (
	"fmt"

	"github.com/tarefo/tarefo/internal/storage"
)

// Source says where a configuration value came from.
type Source string

const (
	SourceDefault  Source = "default"
	SourceUserFile Source = "user file"
	SourceProjFile Source = "project file"
	SourceEnv      Source = "environment"
	SourceFlag     Source = "flag"
)

// Default values.
const (
	DefaultDataDir   = "~/.tarefo"
	DefaultStorage   = storage.DriverFile
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Config holds the full configuration for tarefo.
type Config struct {
	// DataDir is where collections (and the sqlite database) live.
	DataDir string `toml:"data_dir"`

	// Storage selects the key-value backend: "file" or "sqlite".
	Storage string `toml:"storage"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`
}

// WithSources holds configuration along with where each field came from.
type WithSources struct {
	Config  *Config
	Sources map[string]Source
}

// configFields lists the configurable field names for source tracking.
func configFields() []string {
	return []string{
		"data_dir",
		"storage",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
	}
}

func setDefaults(cfg *Config) {
	cfg.DataDir = DefaultDataDir
	cfg.Storage = DefaultStorage
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.LogTimestamps = false
	cfg.LogCaller = false
}

// Validate checks the enumerated fields.
func (c *Config) Validate() error {
	switch c.Storage {
	case storage.DriverFile, storage.DriverSQLite:
	default:
		return fmt.Errorf("unknown storage driver %q (want %q or %q)", c.Storage, storage.DriverFile, storage.DriverSQLite)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}
