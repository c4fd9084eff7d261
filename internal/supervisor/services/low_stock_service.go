// Storelens - E-Commerce Analytics and Forecasting
// Copyright 2026 The Storelens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storelens/storelens

package services

import (
	"context"
	"time"

	"github.com/storelens/storelens/internal/logging"
	"github.com/storelens/storelens/internal/models"
)

// StockChecker is the slice of the inventory service the scanner needs.
type StockChecker interface {
	LowStock(ctx context.Context) ([]models.LowStockProduct, error)
}

// LowStockScannerService periodically re-checks stock levels so the
// low-stock gauge and dashboard stay current even when no adjustments
// come through the API.
type LowStockScannerService struct {
	checker  StockChecker
	interval time.Duration
	name     string
}

// NewLowStockScannerService builds a scanner running at the given
// interval; non-positive intervals default to 15 minutes.
func NewLowStockScannerService(checker StockChecker, interval time.Duration) *LowStockScannerService {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &LowStockScannerService{
		checker:  checker,
		interval: interval,
		name:     "low-stock-scanner",
	}
}

// Serve implements suture.Service. Scan failures are logged and retried
// on the next tick rather than crashing the service.
func (s *LowStockScannerService) Serve(ctx context.Context) error {
	// Scan once at startup so the gauge is populated immediately.
	s.scan(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.scan(ctx)
		}
	}
}

func (s *LowStockScannerService) scan(ctx context.Context) {
	low, err := s.checker.LowStock(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("low stock scan failed")
		return
	}
	if len(low) > 0 {
		logging.Warn().Int("products", len(low)).Msg("products at or below low stock threshold")
	} else {
		logging.Debug().Msg("low stock scan clean")
	}
}

// String implements fmt.Stringer; suture uses it in event logs.
func (s *LowStockScannerService) String() string {
	return s.name
}
