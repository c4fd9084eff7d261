// Storelens - E-Commerce Analytics and Forecasting
// Copyright 2026 The Storelens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storelens/storelens

package models

import (
	"time"
)

// SalesPoint is a single day of aggregated revenue, the input unit for
// sales forecasting. Date is the calendar day the revenue was earned;
// Revenue is the sum of completed order totals for that day.
type SalesPoint struct {
	Date    time.Time `json:"date"`
	Revenue float64   `json:"revenue"`
}

// CustomerMetric holds the per-customer aggregates that drive RFM
// segmentation. LastPurchaseDays is days since the most recent order,
// computed by the storage layer at query time.
type CustomerMetric struct {
	CustomerID       string    `json:"customerId"`
	Email            string    `json:"email,omitempty"`
	TotalOrders      int       `json:"totalOrders"`
	TotalSpent       float64   `json:"totalSpent"`
	LastPurchaseDays int       `json:"lastPurchaseDays"`
	LastOrderDate    time.Time `json:"lastOrderDate,omitempty"`
}

// SegmentedCustomer is a CustomerMetric annotated with its RFM scores
// and the segment label derived from them. RFMScore is the sum of the
// three dimension scores, always in [3,12].
type SegmentedCustomer struct {
	CustomerMetric
	RecencyScore   int    `json:"recencyScore"`
	FrequencyScore int    `json:"frequencyScore"`
	MonetaryScore  int    `json:"monetaryScore"`
	RFMScore       int    `json:"rfmScore"`
	Segment        string `json:"segment"`
}

// LineItem is one product line within an order. Quantity defaults to 1
// when the source record omitted it.
type LineItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name,omitempty"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price,omitempty"`
}

// OrderRecord is a completed order reduced to what basket analysis needs:
// which products were bought together.
type OrderRecord struct {
	OrderID string     `json:"orderId"`
	Items   []LineItem `json:"items"`
}

// UserAcquisition records when a user account was created, keyed for
// cohort assignment.
type UserAcquisition struct {
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// CohortOrder is the minimal order view used for retention tracking:
// who ordered and when.
type CohortOrder struct {
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// InventorySnapshot is the current state of one product's stock, joined
// with its recent sales velocity inputs.
type InventorySnapshot struct {
	ProductID   string    `json:"productId"`
	Name        string    `json:"name"`
	SKU         string    `json:"sku,omitempty"`
	Stock       int       `json:"stock"`
	Price       float64   `json:"price"`
	Cost        float64   `json:"cost,omitempty"`
	LastSoldAt  time.Time `json:"lastSoldAt,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	LowStockMin int       `json:"lowStockMin,omitempty"`
}

// TrafficEvent is one recorded page view or behavioral event from the
// storefront. Metadata is a raw JSON payload whose shape depends on the
// event; page_leave events carry duration_ms and website_exit events
// carry last_page.
type TrafficEvent struct {
	ID        string    `json:"id"`
	IPAddress string    `json:"ipAddress"`
	Path      string    `json:"path"`
	Event     string    `json:"event"`
	Metadata  string    `json:"metadata,omitempty"`
	Referrer  string    `json:"referrer,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Notification is an operator-facing alert row, written by the low-stock
// scanner and surfaced through the dashboard.
type Notification struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}
