// Vitrina - Localized Content Discovery Storefront
// Copyright 2026 Vitrina Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrina-app/vitrina

// Package config loads and validates the application configuration using a
// layered model: struct defaults, then an optional YAML file, then
// environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/vitrina-app/vitrina/internal/recommend"
)

// Config is the root application configuration.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Logging     LoggingConfig     `koanf:"logging"`
	Database    DatabaseConfig    `koanf:"database"`
	Preferences PreferencesConfig `koanf:"preferences"`
	Recommend   recommend.Config  `koanf:"recommend"`
	Panels      PanelsConfig      `koanf:"panels"`
	API         APIConfig         `koanf:"api"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
	// Environment mode: "development", "staging", "production".
	// Development seeds a demo catalog on first start.
	Environment string `koanf:"environment"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// DatabaseConfig holds DuckDB catalog settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	// Threads is the DuckDB thread count; 0 uses runtime.NumCPU().
	Threads int `koanf:"threads"`
}

// PreferencesConfig holds BadgerDB preference storage settings.
type PreferencesConfig struct {
	Path string `koanf:"path"`
	// InMemory runs Badger without a data directory, for tests and
	// ephemeral deployments.
	InMemory bool `koanf:"in_memory"`
}

// PanelsConfig holds lazy panel lifecycle settings.
type PanelsConfig struct {
	// SessionIdleTimeout is how long a session's panel controllers survive
	// without being touched before the janitor evicts them.
	SessionIdleTimeout time.Duration `koanf:"session_idle_timeout"`

	// JanitorInterval is how often idle sessions are swept.
	JanitorInterval time.Duration `koanf:"janitor_interval"`

	// ItemLimit caps how many rows one panel fetch loads.
	ItemLimit int `koanf:"item_limit"`
}

// APIConfig holds HTTP API settings.
type APIConfig struct {
	CORSOrigins       []string `koanf:"cors_origins"`
	RateLimitRequests int      `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by the config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Database: DatabaseConfig{
			Path:      "/data/vitrina.duckdb",
			MaxMemory: "1GB",
			Threads:   0,
		},
		Preferences: PreferencesConfig{
			Path:     "/data/preferences",
			InMemory: false,
		},
		Recommend: *recommend.DefaultConfig(),
		Panels: PanelsConfig{
			SessionIdleTimeout: 30 * time.Minute,
			JanitorInterval:    5 * time.Minute,
			ItemLimit:          20,
		},
		API: APIConfig{
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server timeout must be positive, got %v", c.Server.Timeout)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path must not be empty")
	}
	if !c.Preferences.InMemory && c.Preferences.Path == "" {
		return fmt.Errorf("preferences path must not be empty")
	}
	if c.Panels.SessionIdleTimeout <= 0 {
		return fmt.Errorf("panel session idle timeout must be positive, got %v", c.Panels.SessionIdleTimeout)
	}
	if c.Panels.JanitorInterval <= 0 {
		return fmt.Errorf("panel janitor interval must be positive, got %v", c.Panels.JanitorInterval)
	}
	if c.Panels.ItemLimit <= 0 {
		return fmt.Errorf("panel item limit must be positive, got %d", c.Panels.ItemLimit)
	}
	if c.API.RateLimitRequests <= 0 {
		return fmt.Errorf("rate limit requests must be positive, got %d", c.API.RateLimitRequests)
	}
	if err := c.Recommend.Validate(); err != nil {
		return fmt.Errorf("recommend config: %w", err)
	}
	return nil
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}
