// Storelens - E-Commerce Analytics and Forecasting
// Copyright 2026 The Storelens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storelens/storelens

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/storelens/storelens/internal/logging"
	"github.com/storelens/storelens/internal/metrics"
	"github.com/storelens/storelens/internal/models"
)

// OrderStatusCompleted marks orders that count toward sales velocity and
// basket analysis.
const OrderStatusCompleted = "completed"

// OrderStatusCancelled marks orders excluded from sales activity.
const OrderStatusCancelled = "cancelled"

// rawLineItem is the persisted line-item shape. Historical rows keyed
// the product identifier as either "productId" or "id"; both are
// accepted and reconciled here so the engine only ever sees canonical
// records.
type rawLineItem struct {
	ProductID string  `json:"productId"`
	AltID     string  `json:"id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// decodeLineItems parses an order's persisted items payload into
// canonical line items. Items missing both identifier keys are dropped;
// a missing quantity defaults to 1.
func decodeLineItems(payload string) []models.LineItem {
	if payload == "" {
		return nil
	}
	var raw []rawLineItem
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		logging.Warn().Err(err).Msg("skipping undecodable order items payload")
		return nil
	}

	items := make([]models.LineItem, 0, len(raw))
	for _, r := range raw {
		id := r.ProductID
		if id == "" {
			id = r.AltID
		}
		if id == "" {
			continue
		}
		qty := r.Quantity
		if qty <= 0 {
			qty = 1
		}
		items = append(items, models.LineItem{
			ProductID: id,
			Name:      r.Name,
			Quantity:  qty,
			Price:     r.Price,
		})
	}
	return items
}

// DailyRevenue returns revenue summed per calendar day since the given
// time, oldest day first. All non-cancelled orders count toward revenue.
func (db *DB) DailyRevenue(ctx context.Context, since time.Time) ([]models.SalesPoint, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT CAST(created_at AS DATE) AS day, SUM(total) AS revenue
		 FROM orders
		 WHERE created_at >= ? AND status != ?
		 GROUP BY day
		 ORDER BY day ASC`,
		since, OrderStatusCancelled)
	metrics.RecordDBQuery("select", "orders", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("daily revenue query: %w", err)
	}
	defer closeRows(rows)

	var points []models.SalesPoint
	for rows.Next() {
		var p models.SalesPoint
		if err := rows.Scan(&p.Date, &p.Revenue); err != nil {
			return nil, fmt.Errorf("scan daily revenue: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// CustomerMetrics returns per-customer aggregates for every customer
// with at least one order. LastPurchaseDays is computed against now.
func (db *DB) CustomerMetrics(ctx context.Context, now time.Time) ([]models.CustomerMetric, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT u.id, u.email, COUNT(o.id) AS total_orders, SUM(o.total) AS total_spent, MAX(o.created_at) AS last_order
		 FROM users u
		 JOIN orders o ON o.user_id = u.id
		 WHERE u.role = 'user'
		 GROUP BY u.id, u.email`)
	metrics.RecordDBQuery("select", "orders", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("customer metrics query: %w", err)
	}
	defer closeRows(rows)

	var out []models.CustomerMetric
	for rows.Next() {
		var m models.CustomerMetric
		var lastOrder time.Time
		if err := rows.Scan(&m.CustomerID, &m.Email, &m.TotalOrders, &m.TotalSpent, &lastOrder); err != nil {
			return nil, fmt.Errorf("scan customer metrics: %w", err)
		}
		m.LastOrderDate = lastOrder
		m.LastPurchaseDays = int(now.Sub(lastOrder).Hours() / 24)
		if m.LastPurchaseDays < 0 {
			m.LastPurchaseDays = 0
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// CompletedOrders returns the most recent completed orders with their
// line items decoded, newest first.
func (db *DB) CompletedOrders(ctx context.Context, limit int) ([]models.OrderRecord, error) {
	if limit <= 0 {
		limit = 1000
	}
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, items FROM orders WHERE status = ? ORDER BY created_at DESC LIMIT ?`,
		OrderStatusCompleted, limit)
	metrics.RecordDBQuery("select", "orders", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("completed orders query: %w", err)
	}
	defer closeRows(rows)

	var orders []models.OrderRecord
	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("scan completed order: %w", err)
		}
		orders = append(orders, models.OrderRecord{
			OrderID: id,
			Items:   decodeLineItems(payload),
		})
	}
	return orders, rows.Err()
}

// UserAcquisitions returns every user with their account creation time,
// for cohort assignment.
func (db *DB) UserAcquisitions(ctx context.Context) ([]models.UserAcquisition, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, created_at FROM users WHERE role = 'user'`)
	metrics.RecordDBQuery("select", "users", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("user acquisitions query: %w", err)
	}
	defer closeRows(rows)

	var users []models.UserAcquisition
	for rows.Next() {
		var u models.UserAcquisition
		if err := rows.Scan(&u.UserID, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user acquisition: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// OrderActivity returns every order's user and timestamp, for retention
// tracking.
func (db *DB) OrderActivity(ctx context.Context) ([]models.CohortOrder, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT user_id, created_at FROM orders WHERE user_id IS NOT NULL AND user_id != ''`)
	metrics.RecordDBQuery("select", "orders", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("order activity query: %w", err)
	}
	defer closeRows(rows)

	var orders []models.CohortOrder
	for rows.Next() {
		var o models.CohortOrder
		if err := rows.Scan(&o.UserID, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order activity: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// UnitsSoldSince sums quantities sold per product across completed
// orders since the given time.
func (db *DB) UnitsSoldSince(ctx context.Context, since time.Time) (map[string]int, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT items FROM orders WHERE status = ? AND created_at >= ?`,
		OrderStatusCompleted, since)
	metrics.RecordDBQuery("select", "orders", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("units sold query: %w", err)
	}
	defer closeRows(rows)

	sold := make(map[string]int)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan units sold: %w", err)
		}
		for _, item := range decodeLineItems(payload) {
			sold[item.ProductID] += item.Quantity
		}
	}
	return sold, rows.Err()
}

// ActiveProductIDsSince returns the set of products appearing in any
// non-cancelled order since the given time.
func (db *DB) ActiveProductIDsSince(ctx context.Context, since time.Time) (map[string]struct{}, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT items FROM orders WHERE status != ? AND created_at >= ?`,
		OrderStatusCancelled, since)
	metrics.RecordDBQuery("select", "orders", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("active products query: %w", err)
	}
	defer closeRows(rows)

	active := make(map[string]struct{})
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan active products: %w", err)
		}
		for _, item := range decodeLineItems(payload) {
			active[item.ProductID] = struct{}{}
		}
	}
	return active, rows.Err()
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		logging.Warn().Err(err).Msg("failed to close result rows")
	}
}
