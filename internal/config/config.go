// Package config loads server settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/domain"
	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/opponent"
)

// Config holds the server settings. Zero fields are filled from Default.
type Config struct {
	Addr       string        `yaml:"addr"`
	LogLevel   string        `yaml:"log_level"`
	LogFormat  string        `yaml:"log_format"`
	Opponent   string        `yaml:"opponent"`
	HumanSide  string        `yaml:"human_side"`
	Heartbeat  time.Duration `yaml:"heartbeat"`
	SessionTTL time.Duration `yaml:"session_ttl"`
	// AllowedOrigin, if set, is the only browser origin that may open a
	// websocket. Empty keeps the same-origin check.
	AllowedOrigin string `yaml:"allowed_origin"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:       ":8080",
		LogLevel:   "info",
		LogFormat:  "json",
		Opponent:   string(opponent.KindRules),
		HumanSide:  "X",
		Heartbeat:  15 * time.Second,
		SessionTTL: 30 * time.Minute,
	}
}

// Load reads path and merges it over Default. An empty path yields the
// defaults; a missing file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	return Parse(raw)
}

// Parse decodes YAML bytes over Default and validates the result.
func Parse(raw []byte) (Config, error) {
	cfg := Default()
	if err := yaml.UnmarshalStrict(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("config: addr is required")
	}
	if _, err := opponent.ParseKind(c.Opponent); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, ok := domain.ParsePlayer(c.HumanSide); !ok {
		return fmt.Errorf("config: human_side must be X or O, got %q", c.HumanSide)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("config: log_format must be json or console, got %q", c.LogFormat)
	}
	if c.Heartbeat <= 0 {
		return errors.New("config: heartbeat must be positive")
	}
	if c.SessionTTL < 0 {
		return errors.New("config: session_ttl must not be negative")
	}
	return nil
}

// OpponentKind returns the validated opponent kind.
func (c Config) OpponentKind() opponent.Kind {
	k, _ := opponent.ParseKind(c.Opponent)
	return k
}

// Side returns the validated human side.
func (c Config) Side() domain.Player {
	p, _ := domain.ParsePlayer(c.HumanSide)
	return p
}
