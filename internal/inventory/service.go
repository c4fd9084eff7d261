// Storelens - E-Commerce Analytics and Forecasting
// Copyright 2026 The Storelens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storelens/storelens

// Package inventory manages stock levels: manual adjustments, low-stock
// detection, and the background scanner that keeps alerts current.
package inventory

import (
	"context"
	"fmt"

	"github.com/storelens/storelens/internal/config"
	"github.com/storelens/storelens/internal/database"
	"github.com/storelens/storelens/internal/logging"
	"github.com/storelens/storelens/internal/metrics"
	"github.com/storelens/storelens/internal/models"
)

// thresholdSettingKey is the store-wide low-stock threshold override,
// kept in the settings table so operators can change it at runtime.
const thresholdSettingKey = "low_stock_threshold"

// Store is the data access surface the inventory service needs.
// Satisfied by *database.DB.
type Store interface {
	Product(ctx context.Context, id string) (*database.Product, error)
	UpdateProductStock(ctx context.Context, id string, stock int) error
	LowStockProducts(ctx context.Context, globalThreshold int) ([]models.LowStockProduct, error)
	InsertNotification(ctx context.Context, n *models.Notification) error
	SettingInt(ctx context.Context, key string, fallback int) int
}

// Service adjusts stock and raises low-stock alerts.
type Service struct {
	store Store
	cfg   config.InventoryConfig

	// onChange runs after every successful stock write, letting the
	// report layer drop stale cached inventory reports.
	onChange func()
}

// NewService wires an inventory service over the given store. onChange
// may be nil.
func NewService(store Store, cfg config.InventoryConfig, onChange func()) *Service {
	return &Service{store: store, cfg: cfg, onChange: onChange}
}

// LowStock returns products at or below their low-stock threshold,
// using the runtime setting when present.
func (s *Service) LowStock(ctx context.Context) ([]models.LowStockProduct, error) {
	threshold := s.globalThreshold(ctx)
	low, err := s.store.LowStockProducts(ctx, threshold)
	if err != nil {
		return nil, err
	}
	metrics.LowStockProducts.Set(float64(len(low)))
	return low, nil
}

// AdjustStock applies a delta to a product's stock, flooring at zero,
// and raises a low-stock alert when the write crosses the product's
// threshold downward. Returns the updated product.
func (s *Service) AdjustStock(ctx context.Context, productID string, delta int) (*database.Product, error) {
	p, err := s.store.Product(ctx, productID)
	if err != nil {
		return nil, err
	}

	newStock := p.Stock + delta
	if newStock < 0 {
		newStock = 0
	}
	if err := s.store.UpdateProductStock(ctx, productID, newStock); err != nil {
		return nil, err
	}
	metrics.StockAdjustments.Inc()
	logging.Info().
		Str("product_id", productID).
		Int("delta", delta).
		Int("stock", newStock).
		Msg("stock adjusted")

	threshold := s.productThreshold(ctx, p)
	if newStock <= threshold && p.Stock > threshold {
		s.raiseAlert(ctx, p.Name, newStock)
	}

	p.Stock = newStock
	p.InStock = newStock > 0
	if s.onChange != nil {
		s.onChange()
	}
	return p, nil
}

func (s *Service) globalThreshold(ctx context.Context) int {
	return s.store.SettingInt(ctx, thresholdSettingKey, s.cfg.LowStockThreshold)
}

func (s *Service) productThreshold(ctx context.Context, p *database.Product) int {
	if p.LowStockThreshold > 0 {
		return p.LowStockThreshold
	}
	return s.globalThreshold(ctx)
}

func (s *Service) raiseAlert(ctx context.Context, name string, stock int) {
	metrics.LowStockAlerts.Inc()
	n := &models.Notification{
		Kind:  "warning",
		Title: "Low Stock Alert",
		Body:  fmt.Sprintf("%s is running low on stock (%d remaining).", name, stock),
	}
	if err := s.store.InsertNotification(ctx, n); err != nil {
		logging.Error().Err(err).Str("product", name).Msg("failed to persist low stock alert")
		return
	}
	logging.Warn().Str("product", name).Int("stock", stock).Msg("low stock alert raised")
}
