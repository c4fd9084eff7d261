// Storelens - E-Commerce Analytics and Forecasting
// Copyright 2026 The Storelens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storelens/storelens

// Package reports composes the storage aggregates and the analytics
// engine into the report payloads served by the API, with per-report
// caching and instrumentation.
package reports

import (
	"context"
	"time"

	"github.com/storelens/storelens/internal/models"
)

// Store is the data access surface the report service needs. It is
// satisfied by *database.DB; tests substitute a stub.
type Store interface {
	DailyRevenue(ctx context.Context, since time.Time) ([]models.SalesPoint, error)
	CustomerMetrics(ctx context.Context, now time.Time) ([]models.CustomerMetric, error)
	CompletedOrders(ctx context.Context, limit int) ([]models.OrderRecord, error)
	UserAcquisitions(ctx context.Context) ([]models.UserAcquisition, error)
	OrderActivity(ctx context.Context) ([]models.CohortOrder, error)
	UnitsSoldSince(ctx context.Context, since time.Time) (map[string]int, error)
	ActiveProductIDsSince(ctx context.Context, since time.Time) (map[string]struct{}, error)
	InventorySnapshots(ctx context.Context) ([]models.InventorySnapshot, error)
	ProductDetailsByIDs(ctx context.Context, ids []string) (map[string]models.ProductDetail, error)

	TotalRequests(ctx context.Context, since time.Time) (int, error)
	UniqueVisitors(ctx context.Context, since time.Time) (int, error)
	AvgSessionDurationSeconds(ctx context.Context, since time.Time) (int, error)
	HourlyTraffic(ctx context.Context, now time.Time) ([]models.TrafficPoint, error)
	ActiveVisitorStats(ctx context.Context, now time.Time, window time.Duration) (active, inCheckout int, err error)
	TopPages(ctx context.Context, since time.Time, limit int) ([]models.PageCount, error)
	TopExitPages(ctx context.Context, since time.Time, limit int) ([]models.PageCount, error)
	FunnelCounts(ctx context.Context, since time.Time) ([]models.FunnelStep, error)
}
