// Storelens - E-Commerce Analytics and Forecasting
// Copyright 2026 The Storelens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storelens/storelens

package database

import (
	"context"
	"fmt"
)

// schemaStatements creates the transactional tables. Line items are
// persisted as a JSON string on the order row; historical rows may key
// the product identifier as either "productId" or "id", which the
// decoding layer reconciles.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id VARCHAR PRIMARY KEY,
		email VARCHAR NOT NULL,
		name VARCHAR,
		role VARCHAR DEFAULT 'user',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id VARCHAR PRIMARY KEY,
		name VARCHAR NOT NULL,
		sku VARCHAR,
		price DOUBLE NOT NULL,
		cost DOUBLE DEFAULT 0,
		stock INTEGER NOT NULL DEFAULT 0,
		low_stock_threshold INTEGER NOT NULL DEFAULT 0,
		in_stock BOOLEAN NOT NULL DEFAULT true,
		last_sold_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id VARCHAR PRIMARY KEY,
		user_id VARCHAR,
		status VARCHAR NOT NULL,
		total DOUBLE NOT NULL,
		items VARCHAR NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS traffic_logs (
		id VARCHAR PRIMARY KEY,
		ip_address VARCHAR NOT NULL,
		path VARCHAR,
		event VARCHAR NOT NULL,
		metadata VARCHAR,
		referrer VARCHAR,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS settings (
		key VARCHAR PRIMARY KEY,
		value VARCHAR NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id VARCHAR PRIMARY KEY,
		kind VARCHAR NOT NULL,
		title VARCHAR NOT NULL,
		body VARCHAR NOT NULL,
		read BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_created ON orders (created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders (status)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_user ON orders (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_traffic_created ON traffic_logs (created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_traffic_event ON traffic_logs (event)`,
}

func (db *DB) initSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}
