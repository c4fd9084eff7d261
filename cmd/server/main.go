// Storelens - E-Commerce Analytics and Forecasting
// Copyright 2026 The Storelens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storelens/storelens

// Package main is the entry point for the Storelens server.
//
// Storelens is a self-hosted analytics and forecasting engine for
// e-commerce stores. It ingests storefront traffic events and order
// data into DuckDB and serves sales forecasts, RFM customer
// segmentation, market-basket recommendations, cohort retention, and
// inventory risk reports over a REST API.
//
// Startup order:
//
//  1. Configuration: Koanf v2 layering (defaults, config.yaml, env)
//  2. Logging: global zerolog logger
//  3. Database: DuckDB storage with schema initialization
//  4. Services: report service (cached) and inventory service
//  5. Supervisor tree: HTTP server and low-stock scanner under suture
//
// The server shuts down gracefully on SIGINT and SIGTERM: in-flight
// requests get the configured drain timeout, then the scanner and the
// database are closed.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/storelens/storelens/internal/api"
	"github.com/storelens/storelens/internal/cache"
	"github.com/storelens/storelens/internal/config"
	"github.com/storelens/storelens/internal/database"
	"github.com/storelens/storelens/internal/inventory"
	"github.com/storelens/storelens/internal/logging"
	"github.com/storelens/storelens/internal/reports"
	"github.com/storelens/storelens/internal/supervisor"
	"github.com/storelens/storelens/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Int("port", cfg.Server.Port).
		Msg("Starting Storelens")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reportCache := cache.New(cfg.Cache.TTL)
	reportSvc := reports.NewService(db, reportCache, cfg.Analytics)
	inventorySvc := inventory.NewService(db, cfg.Inventory, reportSvc.InvalidateCache)

	handler := api.NewHandler(reportSvc, inventorySvc, db, db, cfg)
	router := api.NewRouter(handler, api.NewChiMiddleware(api.MiddlewareConfigFromSecurity(cfg.Security)))

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Supervisor events log through slog, bridged back into zerolog.
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddWorkerService(services.NewLowStockScannerService(inventorySvc, cfg.Inventory.ScanInterval))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Application stopped gracefully")
}
