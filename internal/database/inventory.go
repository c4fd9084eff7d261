// Storelens - E-Commerce Analytics and Forecasting
// Copyright 2026 The Storelens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storelens/storelens

package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/storelens/storelens/internal/metrics"
	"github.com/storelens/storelens/internal/models"
)

// InventorySnapshots returns the current state of every product for
// risk and valuation analysis.
func (db *DB) InventorySnapshots(ctx context.Context) ([]models.InventorySnapshot, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, sku, stock, price, cost, low_stock_threshold, last_sold_at, created_at
		 FROM products`)
	metrics.RecordDBQuery("select", "products", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("inventory snapshots query: %w", err)
	}
	defer closeRows(rows)

	var snaps []models.InventorySnapshot
	for rows.Next() {
		var s models.InventorySnapshot
		var lastSold *time.Time
		if err := rows.Scan(&s.ProductID, &s.Name, &s.SKU, &s.Stock, &s.Price, &s.Cost,
			&s.LowStockMin, &lastSold, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan inventory snapshot: %w", err)
		}
		if lastSold != nil {
			s.LastSoldAt = *lastSold
		}
		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}

// ProductDetailsByIDs returns catalog summaries for the given product
// IDs, keyed by ID. Unknown IDs are simply absent from the result.
func (db *DB) ProductDetailsByIDs(ctx context.Context, ids []string) (map[string]models.ProductDetail, error) {
	details := make(map[string]models.ProductDetail)
	if len(ids) == 0 {
		return details, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, name, sku, price FROM products WHERE id IN (%s)`,
			strings.Join(placeholders, ", ")), args...)
	metrics.RecordDBQuery("select", "products", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("product details query: %w", err)
	}
	defer closeRows(rows)

	for rows.Next() {
		var d models.ProductDetail
		if err := rows.Scan(&d.ID, &d.Name, &d.SKU, &d.Price); err != nil {
			return nil, fmt.Errorf("scan product detail: %w", err)
		}
		details[d.ID] = d
	}
	return details, rows.Err()
}

// LowStockProducts returns products at or below their low-stock
// threshold. Products carrying their own threshold use it; the rest
// fall back to the store-wide value. The decision is made here rather
// than in SQL so per-product overrides always win.
func (db *DB) LowStockProducts(ctx context.Context, globalThreshold int) ([]models.LowStockProduct, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, sku, stock, low_stock_threshold
		 FROM products
		 WHERE stock <= GREATEST(low_stock_threshold, ?)
		 ORDER BY stock ASC`, globalThreshold)
	metrics.RecordDBQuery("select", "products", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("low stock query: %w", err)
	}
	defer closeRows(rows)

	var low []models.LowStockProduct
	for rows.Next() {
		var p models.LowStockProduct
		var own int
		if err := rows.Scan(&p.ProductID, &p.Name, &p.SKU, &p.Stock, &own); err != nil {
			return nil, fmt.Errorf("scan low stock product: %w", err)
		}
		p.Threshold = globalThreshold
		if own > 0 {
			p.Threshold = own
		}
		if p.Stock <= p.Threshold {
			low = append(low, p)
		}
	}
	return low, rows.Err()
}
