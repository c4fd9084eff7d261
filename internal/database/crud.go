// Storelens - E-Commerce Analytics and Forecasting
// Copyright 2026 The Storelens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storelens/storelens

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/storelens/storelens/internal/metrics"
	"github.com/storelens/storelens/internal/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// User is a stored customer account.
type User struct {
	ID        string
	Email     string
	Name      string
	Role      string
	CreatedAt time.Time
}

// Product is a stored catalog product.
type Product struct {
	ID                string
	Name              string
	SKU               string
	Price             float64
	Cost              float64
	Stock             int
	LowStockThreshold int
	InStock           bool
	LastSoldAt        sql.NullTime
	CreatedAt         time.Time
}

// Order is a stored order; Items is the raw JSON line-item payload.
type Order struct {
	ID        string
	UserID    string
	Status    string
	Total     float64
	Items     string
	CreatedAt time.Time
}

// InsertUser stores a customer account. A missing ID is generated.
func (db *DB) InsertUser(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = "user"
	}
	start := time.Now()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, name, role, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, u.Role, u.CreatedAt)
	metrics.RecordDBQuery("insert", "users", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// InsertProduct stores a catalog product. A missing ID is generated.
func (db *DB) InsertProduct(ctx context.Context, p *Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	start := time.Now()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO products (id, name, sku, price, cost, stock, low_stock_threshold, in_stock, last_sold_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.SKU, p.Price, p.Cost, p.Stock, p.LowStockThreshold, p.InStock, p.LastSoldAt, p.CreatedAt)
	metrics.RecordDBQuery("insert", "products", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// InsertOrder stores an order. Items are marshaled to the persisted
// JSON representation.
func (db *DB) InsertOrder(ctx context.Context, o *Order, items []models.LineItem) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if items != nil {
		encoded, err := json.Marshal(items)
		if err != nil {
			return fmt.Errorf("encode order items: %w", err)
		}
		o.Items = string(encoded)
	}
	if o.Items == "" {
		o.Items = "[]"
	}
	start := time.Now()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO orders (id, user_id, status, total, items, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		o.ID, o.UserID, o.Status, o.Total, o.Items, o.CreatedAt)
	metrics.RecordDBQuery("insert", "orders", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// InsertTrafficEvent stores a storefront traffic event. A missing ID
// and timestamp are filled in.
func (db *DB) InsertTrafficEvent(ctx context.Context, e *models.TrafficEvent) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	start := time.Now()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO traffic_logs (id, ip_address, path, event, metadata, referrer, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.IPAddress, e.Path, e.Event, e.Metadata, e.Referrer, e.CreatedAt)
	metrics.RecordDBQuery("insert", "traffic_logs", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("insert traffic event: %w", err)
	}
	return nil
}

// InsertNotification persists an operator alert.
func (db *DB) InsertNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	start := time.Now()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO notifications (id, kind, title, body, read, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID, n.Kind, n.Title, n.Body, n.Read, n.CreatedAt)
	metrics.RecordDBQuery("insert", "notifications", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// Product fetches one product by ID.
func (db *DB) Product(ctx context.Context, id string) (*Product, error) {
	start := time.Now()
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, name, sku, price, cost, stock, low_stock_threshold, in_stock, last_sold_at, created_at
		 FROM products WHERE id = ?`, id)

	var p Product
	var sku sql.NullString
	err := row.Scan(&p.ID, &p.Name, &sku, &p.Price, &p.Cost, &p.Stock,
		&p.LowStockThreshold, &p.InStock, &p.LastSoldAt, &p.CreatedAt)
	metrics.RecordDBQuery("select", "products", time.Since(start), err)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch product %s: %w", id, err)
	}
	p.SKU = sku.String
	return &p, nil
}

// UpdateProductStock sets a product's stock level and in-stock flag.
func (db *DB) UpdateProductStock(ctx context.Context, id string, stock int) error {
	start := time.Now()
	res, err := db.conn.ExecContext(ctx,
		`UPDATE products SET stock = ?, in_stock = ? WHERE id = ?`,
		stock, stock > 0, id)
	metrics.RecordDBQuery("update", "products", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("update product stock %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SettingInt reads an integer setting, returning fallback when the key
// is absent or unparseable.
func (db *DB) SettingInt(ctx context.Context, key string, fallback int) int {
	start := time.Now()
	row := db.conn.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key)
	var value string
	err := row.Scan(&value)
	metrics.RecordDBQuery("select", "settings", time.Since(start), err)
	if err != nil {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

// SetSetting upserts a settings key.
func (db *DB) SetSetting(ctx context.Context, key, value string) error {
	start := time.Now()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value)
	metrics.RecordDBQuery("upsert", "settings", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}
