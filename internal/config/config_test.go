// Vitrina - Localized Content Discovery Storefront
// Copyright 2026 Vitrina Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrina-app/vitrina

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if !cfg.IsDevelopment() {
		t.Error("default environment should be development")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port too low", func(c *Config) { c.Server.Port = 0 }},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }},
		{"zero timeout", func(c *Config) { c.Server.Timeout = 0 }},
		{"empty database path", func(c *Config) { c.Database.Path = "" }},
		{"empty preferences path", func(c *Config) { c.Preferences.Path = "" }},
		{"zero idle timeout", func(c *Config) { c.Panels.SessionIdleTimeout = 0 }},
		{"zero janitor interval", func(c *Config) { c.Panels.JanitorInterval = 0 }},
		{"zero panel limit", func(c *Config) { c.Panels.ItemLimit = 0 }},
		{"zero rate limit", func(c *Config) { c.API.RateLimitRequests = 0 }},
		{"bad recommend limits", func(c *Config) { c.Recommend.MaxLimit = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() accepted invalid config")
			}
		})
	}
}

func TestValidateAllowsInMemoryPreferencesWithoutPath(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Preferences.InMemory = true
	cfg.Preferences.Path = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestEnvTransform(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"VITRINA_SERVER_PORT", "server.port"},
		{"VITRINA_DATABASE_MAX_MEMORY", "database.max_memory"},
		{"VITRINA_RECOMMEND_DEFAULT_LIMIT", "recommend.default_limit"},
		{"VITRINA_PANELS_SESSION_IDLE_TIMEOUT", "panels.session_idle_timeout"},
		{"VITRINA_API_CORS_ORIGINS", "api.cors_origins"},
		{"VITRINA_BOGUS_KEY", ""},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.in); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadLayersEnvOverFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	yaml := []byte("server:\n  port: 9200\nrecommend:\n  default_limit: 4\n")
	if err := os.WriteFile(configPath, yaml, 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	t.Setenv(ConfigPathEnvVar, configPath)
	t.Setenv("VITRINA_SERVER_PORT", "9300")
	t.Setenv("VITRINA_API_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Env beats file, file beats defaults.
	if cfg.Server.Port != 9300 {
		t.Errorf("port = %d, want env override 9300", cfg.Server.Port)
	}
	if cfg.Recommend.DefaultLimit != 4 {
		t.Errorf("default_limit = %d, want file value 4", cfg.Recommend.DefaultLimit)
	}
	if len(cfg.API.CORSOrigins) != 2 || cfg.API.CORSOrigins[1] != "https://b.example" {
		t.Errorf("cors origins = %v, want two trimmed entries", cfg.API.CORSOrigins)
	}
	// Untouched sections keep defaults.
	if cfg.Panels.ItemLimit != 20 {
		t.Errorf("panel item limit = %d, want default 20", cfg.Panels.ItemLimit)
	}
}

func TestLoadRejectsInvalidFileValues(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("server:\n  port: -5\n"), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, configPath)

	if _, err := Load(); err == nil {
		t.Fatal("Load() accepted an invalid port")
	}
}
