// Storelens - E-Commerce Analytics and Forecasting
// Copyright 2026 The Storelens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storelens/storelens

// Package config defines the application configuration and its layered
// loader. Configuration is resolved defaults-first, then an optional
// YAML file, then environment variables, so containers can override any
// setting without shipping a file.
package config

import (
	"fmt"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
	Analytics AnalyticsConfig `koanf:"analytics"`
	Inventory InventoryConfig `koanf:"inventory"`
	Cache     CacheConfig     `koanf:"cache"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
}

// DatabaseConfig configures the DuckDB store.
type DatabaseConfig struct {
	// Path is the DuckDB database file. Empty means in-memory, which is
	// what the tests use.
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	// Threads is the DuckDB thread count; 0 lets DuckDB decide.
	Threads int `koanf:"threads"`
}

// SecurityConfig holds rate limiting and CORS settings. Authentication
// is handled upstream of this service.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig configures the global zerolog logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// AnalyticsConfig tunes the reporting engine.
type AnalyticsConfig struct {
	// ForecastHorizonDays is how many future days the sales forecast
	// projects.
	ForecastHorizonDays int `koanf:"forecast_horizon_days"`
	// RevenueLookbackDays bounds the daily revenue history fed into the
	// forecast and trend computations.
	RevenueLookbackDays int `koanf:"revenue_lookback_days"`
	// BasketOrderLimit caps how many recent completed orders feed the
	// market-basket analysis.
	BasketOrderLimit int `koanf:"basket_order_limit"`
	// BasketMinPairCount and BasketMinConfidence filter association
	// pairs; BasketMaxPairs caps the bundle report.
	BasketMinPairCount   int     `koanf:"basket_min_pair_count"`
	BasketMinConfidence  float64 `koanf:"basket_min_confidence"`
	BasketMaxPairs       int     `koanf:"basket_max_pairs"`
	CartRecommendLimit   int     `koanf:"cart_recommend_limit"`
	InventoryHistoryDays int     `koanf:"inventory_history_days"`
	DeadStockDays        int     `koanf:"dead_stock_days"`
	// CLVLifespanYears is the lifespan multiplier for lifetime-value
	// estimates.
	CLVLifespanYears float64 `koanf:"clv_lifespan_years"`
	FunnelWindowDays int     `koanf:"funnel_window_days"`
}

// InventoryConfig configures stock monitoring.
type InventoryConfig struct {
	// LowStockThreshold is the global fallback used when a product does
	// not carry its own threshold.
	LowStockThreshold int `koanf:"low_stock_threshold"`
	// ScanInterval is how often the background scanner re-checks stock.
	ScanInterval time.Duration `koanf:"scan_interval"`
}

// CacheConfig configures the reports cache.
type CacheConfig struct {
	TTL time.Duration `koanf:"ttl"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8343,
			Timeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Path:      "/data/storelens.duckdb",
			MaxMemory: "1GB",
			Threads:   0,
		},
		Security: SecurityConfig{
			RateLimitReqs:   100,
			RateLimitWindow: 1 * time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Analytics: AnalyticsConfig{
			ForecastHorizonDays:  7,
			RevenueLookbackDays:  30,
			BasketOrderLimit:     1000,
			BasketMinPairCount:   2,
			BasketMinConfidence:  0.1,
			BasketMaxPairs:       10,
			CartRecommendLimit:   5,
			InventoryHistoryDays: 30,
			DeadStockDays:        90,
			CLVLifespanYears:     1,
			FunnelWindowDays:     30,
		},
		Inventory: InventoryConfig{
			LowStockThreshold: 5,
			ScanInterval:      15 * time.Minute,
		},
		Cache: CacheConfig{
			TTL: 5 * time.Minute,
		},
	}
}

// Validate checks the configuration for values that would break the
// service at runtime.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs <= 0 {
			return fmt.Errorf("security.rate_limit_reqs must be positive, got %d", c.Security.RateLimitReqs)
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("security.rate_limit_window must be positive, got %s", c.Security.RateLimitWindow)
		}
	}
	if c.Analytics.ForecastHorizonDays <= 0 {
		return fmt.Errorf("analytics.forecast_horizon_days must be positive, got %d", c.Analytics.ForecastHorizonDays)
	}
	if c.Analytics.RevenueLookbackDays < 2 {
		return fmt.Errorf("analytics.revenue_lookback_days must be at least 2, got %d", c.Analytics.RevenueLookbackDays)
	}
	if c.Analytics.BasketOrderLimit <= 0 {
		return fmt.Errorf("analytics.basket_order_limit must be positive, got %d", c.Analytics.BasketOrderLimit)
	}
	if c.Analytics.InventoryHistoryDays <= 0 {
		return fmt.Errorf("analytics.inventory_history_days must be positive, got %d", c.Analytics.InventoryHistoryDays)
	}
	if c.Analytics.DeadStockDays <= 0 {
		return fmt.Errorf("analytics.dead_stock_days must be positive, got %d", c.Analytics.DeadStockDays)
	}
	if c.Inventory.LowStockThreshold < 0 {
		return fmt.Errorf("inventory.low_stock_threshold must not be negative, got %d", c.Inventory.LowStockThreshold)
	}
	if c.Inventory.ScanInterval <= 0 {
		return fmt.Errorf("inventory.scan_interval must be positive, got %s", c.Inventory.ScanInterval)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %s", c.Cache.TTL)
	}
	return nil
}
