// Storelens - E-Commerce Analytics and Forecasting
// Copyright 2026 The Storelens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storelens/storelens

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default configuration must validate: %v", err)
	}
	if cfg.Analytics.ForecastHorizonDays != 7 {
		t.Errorf("default forecast horizon = %d, want 7", cfg.Analytics.ForecastHorizonDays)
	}
	if cfg.Inventory.LowStockThreshold != 5 {
		t.Errorf("default low-stock threshold = %d, want 5", cfg.Inventory.LowStockThreshold)
	}
	if cfg.Analytics.BasketOrderLimit != 1000 {
		t.Errorf("default basket order limit = %d, want 1000", cfg.Analytics.BasketOrderLimit)
	}
}

func TestLoadLayering(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	yamlContent := []byte("server:\n  port: 9000\nanalytics:\n  forecast_horizon_days: 14\n")
	if err := os.WriteFile(configPath, yamlContent, 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	t.Setenv(ConfigPathEnvVar, configPath)
	// Env beats file: the port from YAML is overridden.
	t.Setenv("HTTP_PORT", "9100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 9100 {
		t.Errorf("server.port = %d, want 9100 (env over file)", cfg.Server.Port)
	}
	if cfg.Analytics.ForecastHorizonDays != 14 {
		t.Errorf("forecast horizon = %d, want 14 (file over defaults)", cfg.Analytics.ForecastHorizonDays)
	}
	// Untouched values keep their defaults.
	if cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("cache.ttl = %s, want default 5m", cfg.Cache.TTL)
	}
}

func TestLoadCORSOriginsFromEnv(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "https://shop.example.com, https://admin.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	want := []string{"https://shop.example.com", "https://admin.example.com"}
	if len(cfg.Security.CORSOrigins) != len(want) {
		t.Fatalf("cors_origins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
	for i, w := range want {
		if cfg.Security.CORSOrigins[i] != w {
			t.Errorf("cors_origins[%d] = %q, want %q", i, cfg.Security.CORSOrigins[i], w)
		}
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"negative timeout", func(c *Config) { c.Server.Timeout = -time.Second }},
		{"zero rate limit", func(c *Config) { c.Security.RateLimitReqs = 0 }},
		{"zero forecast horizon", func(c *Config) { c.Analytics.ForecastHorizonDays = 0 }},
		{"one day revenue lookback", func(c *Config) { c.Analytics.RevenueLookbackDays = 1 }},
		{"negative low stock threshold", func(c *Config) { c.Inventory.LowStockThreshold = -1 }},
		{"zero cache ttl", func(c *Config) { c.Cache.TTL = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() accepted an invalid configuration")
			}
		})
	}
}

func TestValidateAllowsDisabledRateLimit(t *testing.T) {
	cfg := defaultConfig()
	cfg.Security.RateLimitDisabled = true
	cfg.Security.RateLimitReqs = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled rate limiting should skip threshold checks: %v", err)
	}
}
