package config

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.tarefo/tarefo.toml or OS-specific config dir)
// 3. Project config file (tarefo.toml or .tarefo.toml in current directory)
// 4. Environment variables (TAREFO_*)
// 5. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	ws, err := LoadWithSources(fs, args)
	if err != nil {
		return nil, err
	}
	return ws.Config, nil
}

// LoadWithSources loads configuration and tracks the source of each value.
func LoadWithSources(fs *flag.FlagSet, args []string) (*WithSources, error) {
	cfg := &Config{}
	sources := make(map[string]Source)

	setDefaults(cfg)
	for _, field := range configFields() {
		sources[field] = SourceDefault
	}

	if userFile := findUserConfigFile(); userFile != "" {
		if err := loadConfigFile(cfg, userFile, sources, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", userFile, err)
		}
	}
	if projFile := findProjectConfigFile(); projFile != "" {
		if err := loadConfigFile(cfg, projFile, sources, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projFile, err)
		}
	}

	loadFromEnv(cfg, sources)

	if err := parseFlags(cfg, fs, args, sources); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	if err := finalize(cfg); err != nil {
		return nil, err
	}

	return &WithSources{Config: cfg, Sources: sources}, nil
}

// loadConfigFile merges a TOML file over the config, tracking which
// keys the file actually set.
func loadConfigFile(cfg *Config, path string, sources map[string]Source, source Source) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	for _, key := range meta.Keys() {
		name := key.String()
		if _, ok := sources[name]; ok {
			sources[name] = source
		}
	}
	return nil
}

// loadFromEnv overrides config from TAREFO_* environment variables.
func loadFromEnv(cfg *Config, sources map[string]Source) {
	if v := os.Getenv("TAREFO_DATA_DIR"); v != "" {
		cfg.DataDir = v
		sources["data_dir"] = SourceEnv
	}
	if v := os.Getenv("TAREFO_STORAGE"); v != "" {
		cfg.Storage = v
		sources["storage"] = SourceEnv
	}
	if v := os.Getenv("TAREFO_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
		sources["log_level"] = SourceEnv
	}
	if v := os.Getenv("TAREFO_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
		sources["log_format"] = SourceEnv
	}
	if v := os.Getenv("TAREFO_LOG_TIMESTAMPS"); v != "" {
		cfg.LogTimestamps = boolFromString(v)
		sources["log_timestamps"] = SourceEnv
	}
	if v := os.Getenv("TAREFO_LOG_CALLER"); v != "" {
		cfg.LogCaller = boolFromString(v)
		sources["log_caller"] = SourceEnv
	}
}

// parseFlags registers the shared flags on the flag set and parses the
// arguments. A nil flag set skips flag handling.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]Source) error {
	if fs == nil {
		return nil
	}

	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory holding the task collections")
	fs.StringVar(&cfg.Storage, "storage", cfg.Storage, "storage backend: file or sqlite")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error, fatal")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text, json, logfmt")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "include timestamps in log output")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "include caller information in log output")

	if err := fs.Parse(args); err != nil {
		return err
	}

	flagToField := map[string]string{
		"data-dir":       "data_dir",
		"storage":        "storage",
		"log-level":      "log_level",
		"log-format":     "log_format",
		"log-timestamps": "log_timestamps",
		"log-caller":     "log_caller",
	}
	fs.Visit(func(f *flag.Flag) {
		if field, ok := flagToField[f.Name]; ok {
			sources[field] = SourceFlag
		}
	})
	return nil
}

// finalize expands paths and validates the result.
func finalize(cfg *Config) error {
	cfg.DataDir = expandPath(cfg.DataDir)
	return cfg.Validate()
}

func boolFromString(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
