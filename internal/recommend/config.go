// Vitrina - Localized Content Discovery Storefront
// Copyright 2026 Vitrina Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrina-app/vitrina

package recommend

import "fmt"

// Config holds the aggregator tunables.
type Config struct {
	// DefaultLimit is the result size when a request does not specify one.
	DefaultLimit int `koanf:"default_limit" json:"default_limit"`

	// MaxLimit caps the result size a request may ask for.
	MaxLimit int `koanf:"max_limit" json:"max_limit"`

	// MaxPerformers caps enriched sub-entities per candidate.
	MaxPerformers int `koanf:"max_performers" json:"max_performers"`

	// TrendingOverfetch is the extra-candidate margin the trending fallback
	// requests to compensate for dedup loss against earlier tiers.
	TrendingOverfetch int `koanf:"trending_overfetch" json:"trending_overfetch"`
}

// DefaultConfig returns the default aggregator configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultLimit:      8,
		MaxLimit:          50,
		MaxPerformers:     3,
		TrendingOverfetch: 5,
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.DefaultLimit <= 0 {
		return fmt.Errorf("default_limit must be positive, got %d", c.DefaultLimit)
	}
	if c.MaxLimit < c.DefaultLimit {
		return fmt.Errorf("max_limit %d must be >= default_limit %d", c.MaxLimit, c.DefaultLimit)
	}
	if c.MaxPerformers < 0 {
		return fmt.Errorf("max_performers must not be negative, got %d", c.MaxPerformers)
	}
	if c.TrendingOverfetch < 0 {
		return fmt.Errorf("trending_overfetch must not be negative, got %d", c.TrendingOverfetch)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
