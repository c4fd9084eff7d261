// Storelens - E-Commerce Analytics and Forecasting
// Copyright 2026 The Storelens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storelens/storelens

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths lists where config files are searched, in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/storelens/config.yaml",
	"/etc/storelens/config.yml",
}

// envKeyMap routes environment variables to koanf config paths.
// Unmapped variables are dropped so random environment noise cannot
// leak into config.
var envKeyMap = map[string]string{
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",

	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"forecast_horizon_days":  "analytics.forecast_horizon_days",
	"revenue_lookback_days":  "analytics.revenue_lookback_days",
	"basket_order_limit":     "analytics.basket_order_limit",
	"basket_min_pair_count":  "analytics.basket_min_pair_count",
	"basket_min_confidence":  "analytics.basket_min_confidence",
	"basket_max_pairs":       "analytics.basket_max_pairs",
	"cart_recommend_limit":   "analytics.cart_recommend_limit",
	"inventory_history_days": "analytics.inventory_history_days",
	"dead_stock_days":        "analytics.dead_stock_days",
	"clv_lifespan_years":     "analytics.clv_lifespan_years",
	"funnel_window_days":     "analytics.funnel_window_days",

	"low_stock_threshold":     "inventory.low_stock_threshold",
	"inventory_scan_interval": "inventory.scan_interval",

	"cache_ttl": "cache.ttl",
}

// Load resolves configuration from layered sources:
//  1. Built-in defaults
//  2. Optional YAML config file
//  3. Environment variables (highest priority)
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	envMapper := func(key string) string { return envKeyMap[strings.ToLower(key)] }
	if err := k.Load(env.Provider("", ".", envMapper), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// CORS origins arrive as one comma-separated env value.
	if raw, ok := k.Get("security.cors_origins").(string); ok {
		if origins := splitCommaList(raw); len(origins) > 0 {
			if err := k.Set("security.cors_origins", origins); err != nil {
				return nil, fmt.Errorf("failed to set cors origins: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first readable config file path, or empty.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func splitCommaList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
