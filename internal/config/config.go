// Package config loads nomadpath settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds process-wide settings. CLI flags override these values.
type Config struct {
	DBPath        string        `env:"NOMADPATH_DB" envDefault:"nomadpath.db"`
	CharacterID   string        `env:"NOMADPATH_CHARACTER"`
	RulesPath     string        `env:"NOMADPATH_RULES"`
	DecayInterval time.Duration `env:"NOMADPATH_DECAY_INTERVAL" envDefault:"168h"`
	LogLevel      string        `env:"NOMADPATH_LOG_LEVEL" envDefault:"info"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses Config from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings no command could run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("config: NOMADPATH_DB must not be empty")
	}
	if c.DecayInterval <= 0 {
		return fmt.Errorf("config: NOMADPATH_DECAY_INTERVAL must be positive, got %s", c.DecayInterval)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Level returns the configured log level, info when unparsable.
func (c Config) Level() slog.Level {
	lvl, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// ParseLevel maps debug, info, warn and error (any case) to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: unknown log level %q", s)
	}
	return lvl, nil
}
