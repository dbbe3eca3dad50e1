// Package config loads pixel-ledger settings from YAML with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables that override the file.
const (
	EnvConfig           = "PIXEL_LEDGER_CONFIG"
	EnvLogLevel         = "PIXEL_LEDGER_LOG_LEVEL"
	EnvJournal          = "PIXEL_LEDGER_JOURNAL"
	EnvHistory          = "PIXEL_LEDGER_HISTORY"
	EnvSnapshotInterval = "PIXEL_LEDGER_SNAPSHOT_INTERVAL"
)

// History modes.
const (
	HistoryFull = "full"
	HistoryNull = "null"
)

// Config holds the full pixel-ledger configuration.
type Config struct {
	LogLevel         string       `yaml:"log_level"`
	Journal          string       `yaml:"journal"` // empty keeps history in memory only
	History          string       `yaml:"history"` // full | null
	SnapshotInterval int          `yaml:"snapshot_interval"`
	Render           RenderConfig `yaml:"render"`
}

// RenderConfig bounds PNG output.
type RenderConfig struct {
	Scale        int `yaml:"scale"`
	MaxDimension int `yaml:"max_dimension"`
}

// Defaults returns the configuration used when no file is given.
func Defaults() *Config {
	return &Config{
		LogLevel:         "info",
		History:          HistoryFull,
		SnapshotInterval: 1000,
		Render: RenderConfig{
			Scale:        1,
			MaxDimension: 4096,
		},
	}
}

// Load reads path over the defaults and applies environment overrides.
// An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvJournal); v != "" {
		c.Journal = v
	}
	if v := os.Getenv(EnvHistory); v != "" {
		c.History = v
	}
	if v := os.Getenv(EnvSnapshotInterval); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSnapshotInterval, err)
		}
		c.SnapshotInterval = n
	}
	return nil
}

// Validate checks that values are sane.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.History {
	case HistoryFull, HistoryNull:
	default:
		return fmt.Errorf("unsupported history %q (use full or null)", c.History)
	}
	if c.SnapshotInterval <= 0 {
		return fmt.Errorf("snapshot_interval must be > 0")
	}
	if c.Render.Scale <= 0 {
		return fmt.Errorf("render.scale must be > 0")
	}
	if c.Render.MaxDimension <= 0 {
		return fmt.Errorf("render.max_dimension must be > 0")
	}
	return nil
}

// Level returns the slog level for LogLevel. Call after Validate.
func (c *Config) Level() slog.Level {
	l, _ := ParseLevel(c.LogLevel)
	return l
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unsupported log_level %q", s)
}
