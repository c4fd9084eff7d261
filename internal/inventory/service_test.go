// Storelens - E-Commerce Analytics and Forecasting
// Copyright 2026 The Storelens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storelens/storelens

package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/storelens/storelens/internal/config"
	"github.com/storelens/storelens/internal/database"
	"github.com/storelens/storelens/internal/models"
)

type stubStore struct {
	products      map[string]*database.Product
	low           []models.LowStockProduct
	settings      map[string]int
	notifications []models.Notification
	stockWrites   map[string]int
}

func (s *stubStore) Product(_ context.Context, id string) (*database.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *stubStore) UpdateProductStock(_ context.Context, id string, stock int) error {
	if _, ok := s.products[id]; !ok {
		return database.ErrNotFound
	}
	if s.stockWrites == nil {
		s.stockWrites = make(map[string]int)
	}
	s.stockWrites[id] = stock
	s.products[id].Stock = stock
	return nil
}

func (s *stubStore) LowStockProducts(_ context.Context, _ int) ([]models.LowStockProduct, error) {
	return s.low, nil
}

func (s *stubStore) InsertNotification(_ context.Context, n *models.Notification) error {
	s.notifications = append(s.notifications, *n)
	return nil
}

func (s *stubStore) SettingInt(_ context.Context, key string, fallback int) int {
	if v, ok := s.settings[key]; ok {
		return v
	}
	return fallback
}

func newTestService(store *stubStore) *Service {
	return NewService(store, config.InventoryConfig{LowStockThreshold: 5}, nil)
}

func TestAdjustStock(t *testing.T) {
	tests := []struct {
		name      string
		stock     int
		delta     int
		wantStock int
	}{
		{"restock", 3, 10, 13},
		{"sale", 10, -4, 6},
		{"floors at zero", 3, -10, 0},
		{"zero delta", 7, 0, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &stubStore{products: map[string]*database.Product{
				"p1": {ID: "p1", Name: "Desk", Stock: tt.stock},
			}}
			svc := newTestService(store)

			p, err := svc.AdjustStock(context.Background(), "p1", tt.delta)
			if err != nil {
				t.Fatalf("AdjustStock: %v", err)
			}
			if p.Stock != tt.wantStock {
				t.Errorf("stock = %d, want %d", p.Stock, tt.wantStock)
			}
			if got := store.stockWrites["p1"]; got != tt.wantStock {
				t.Errorf("persisted stock = %d, want %d", got, tt.wantStock)
			}
			if p.InStock != (tt.wantStock > 0) {
				t.Errorf("inStock = %v with stock %d", p.InStock, tt.wantStock)
			}
		})
	}
}

func TestAdjustStockUnknownProduct(t *testing.T) {
	svc := newTestService(&stubStore{products: map[string]*database.Product{}})
	if _, err := svc.AdjustStock(context.Background(), "ghost", 1); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestAdjustStockAlertsOnDownwardCrossing(t *testing.T) {
	store := &stubStore{products: map[string]*database.Product{
		"p1": {ID: "p1", Name: "Desk", Stock: 8},
	}}
	svc := newTestService(store)
	ctx := context.Background()

	// 8 -> 4 crosses the threshold of 5.
	if _, err := svc.AdjustStock(ctx, "p1", -4); err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}
	if len(store.notifications) != 1 {
		t.Fatalf("got %d notifications, want 1", len(store.notifications))
	}
	n := store.notifications[0]
	if n.Title != "Low Stock Alert" || n.Kind != "warning" {
		t.Errorf("notification = %+v", n)
	}
	if want := "Desk is running low on stock (4 remaining)."; n.Body != want {
		t.Errorf("body = %q, want %q", n.Body, want)
	}

	// Already below threshold: a further decrease must not re-alert.
	if _, err := svc.AdjustStock(ctx, "p1", -1); err != nil {
		t.Fatalf("second AdjustStock: %v", err)
	}
	if len(store.notifications) != 1 {
		t.Errorf("got %d notifications after second adjust, want still 1", len(store.notifications))
	}
}

func TestAdjustStockUsesProductThreshold(t *testing.T) {
	store := &stubStore{products: map[string]*database.Product{
		"p1": {ID: "p1", Name: "Lamp", Stock: 12, LowStockThreshold: 10},
	}}
	svc := newTestService(store)

	if _, err := svc.AdjustStock(context.Background(), "p1", -3); err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}
	if len(store.notifications) != 1 {
		t.Errorf("per-product threshold 10 should alert at stock 9, got %d notifications", len(store.notifications))
	}
}

func TestAdjustStockUsesRuntimeSetting(t *testing.T) {
	store := &stubStore{
		products: map[string]*database.Product{"p1": {ID: "p1", Name: "Rug", Stock: 9}},
		settings: map[string]int{thresholdSettingKey: 8},
	}
	svc := newTestService(store)

	if _, err := svc.AdjustStock(context.Background(), "p1", -2); err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}
	if len(store.notifications) != 1 {
		t.Errorf("runtime threshold 8 should alert at stock 7, got %d notifications", len(store.notifications))
	}
}

func TestAdjustStockInvokesOnChange(t *testing.T) {
	store := &stubStore{products: map[string]*database.Product{
		"p1": {ID: "p1", Name: "Desk", Stock: 20},
	}}
	var invalidated bool
	svc := NewService(store, config.InventoryConfig{LowStockThreshold: 5}, func() { invalidated = true })

	if _, err := svc.AdjustStock(context.Background(), "p1", 1); err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}
	if !invalidated {
		t.Error("onChange hook not invoked after stock write")
	}
}

func TestLowStock(t *testing.T) {
	store := &stubStore{low: []models.LowStockProduct{
		{ProductID: "p1", Name: "Desk", Stock: 2, Threshold: 5},
	}}
	svc := newTestService(store)

	low, err := svc.LowStock(context.Background())
	if err != nil {
		t.Fatalf("LowStock: %v", err)
	}
	if len(low) != 1 || low[0].ProductID != "p1" {
		t.Errorf("low stock = %+v", low)
	}
}
