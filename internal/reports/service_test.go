// Storelens - E-Commerce Analytics and Forecasting
// Copyright 2026 The Storelens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storelens/storelens

package reports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/storelens/storelens/internal/analytics"
	"github.com/storelens/storelens/internal/cache"
	"github.com/storelens/storelens/internal/config"
	"github.com/storelens/storelens/internal/models"
)

// stubStore returns canned aggregates and counts how often each query
// runs, so tests can assert cache behavior.
type stubStore struct {
	calls map[string]int

	revenue   []models.SalesPoint
	customers []models.CustomerMetric
	orders    []models.OrderRecord
	users     []models.UserAcquisition
	activity  []models.CohortOrder
	sold      map[string]int
	activeIDs map[string]struct{}
	snapshots []models.InventorySnapshot
	funnel    []models.FunnelStep
	catalog   map[string]models.ProductDetail

	err error
}

func (s *stubStore) count(name string) {
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[name]++
}

func (s *stubStore) DailyRevenue(_ context.Context, _ time.Time) ([]models.SalesPoint, error) {
	s.count("DailyRevenue")
	return s.revenue, s.err
}

func (s *stubStore) CustomerMetrics(_ context.Context, _ time.Time) ([]models.CustomerMetric, error) {
	s.count("CustomerMetrics")
	return s.customers, s.err
}

func (s *stubStore) CompletedOrders(_ context.Context, _ int) ([]models.OrderRecord, error) {
	s.count("CompletedOrders")
	return s.orders, s.err
}

func (s *stubStore) UserAcquisitions(_ context.Context) ([]models.UserAcquisition, error) {
	s.count("UserAcquisitions")
	return s.users, s.err
}

func (s *stubStore) OrderActivity(_ context.Context) ([]models.CohortOrder, error) {
	s.count("OrderActivity")
	return s.activity, s.err
}

func (s *stubStore) UnitsSoldSince(_ context.Context, _ time.Time) (map[string]int, error) {
	s.count("UnitsSoldSince")
	return s.sold, s.err
}

func (s *stubStore) ActiveProductIDsSince(_ context.Context, _ time.Time) (map[string]struct{}, error) {
	s.count("ActiveProductIDsSince")
	return s.activeIDs, s.err
}

func (s *stubStore) InventorySnapshots(_ context.Context) ([]models.InventorySnapshot, error) {
	s.count("InventorySnapshots")
	return s.snapshots, s.err
}

func (s *stubStore) ProductDetailsByIDs(_ context.Context, ids []string) (map[string]models.ProductDetail, error) {
	s.count("ProductDetailsByIDs")
	details := make(map[string]models.ProductDetail)
	for _, id := range ids {
		if d, ok := s.catalog[id]; ok {
			details[id] = d
		}
	}
	return details, s.err
}

func (s *stubStore) TotalRequests(_ context.Context, _ time.Time) (int, error) {
	s.count("TotalRequests")
	return 120, s.err
}

func (s *stubStore) UniqueVisitors(_ context.Context, _ time.Time) (int, error) {
	s.count("UniqueVisitors")
	return 40, s.err
}

func (s *stubStore) AvgSessionDurationSeconds(_ context.Context, _ time.Time) (int, error) {
	s.count("AvgSessionDurationSeconds")
	return 75, s.err
}

func (s *stubStore) HourlyTraffic(_ context.Context, _ time.Time) ([]models.TrafficPoint, error) {
	s.count("HourlyTraffic")
	return []models.TrafficPoint{{Label: "11:00", Count: 9}}, s.err
}

func (s *stubStore) ActiveVisitorStats(_ context.Context, _ time.Time, _ time.Duration) (int, int, error) {
	s.count("ActiveVisitorStats")
	return 6, 2, s.err
}

func (s *stubStore) TopPages(_ context.Context, _ time.Time, _ int) ([]models.PageCount, error) {
	s.count("TopPages")
	return []models.PageCount{{Path: "/", Count: 50}}, s.err
}

func (s *stubStore) TopExitPages(_ context.Context, _ time.Time, _ int) ([]models.PageCount, error) {
	s.count("TopExitPages")
	return []models.PageCount{{Path: "/cart", Count: 5}}, s.err
}

func (s *stubStore) FunnelCounts(_ context.Context, _ time.Time) ([]models.FunnelStep, error) {
	s.count("FunnelCounts")
	return s.funnel, s.err
}

func testAnalyticsConfig() config.AnalyticsConfig {
	return config.AnalyticsConfig{
		ForecastHorizonDays:  7,
		RevenueLookbackDays:  30,
		BasketOrderLimit:     1000,
		BasketMinPairCount:   2,
		BasketMinConfidence:  0.1,
		BasketMaxPairs:       10,
		CartRecommendLimit:   5,
		InventoryHistoryDays: 30,
		DeadStockDays:        90,
		CLVLifespanYears:     1,
		FunnelWindowDays:     30,
	}
}

func newTestService(store Store) *Service {
	svc := NewService(store, cache.New(time.Minute), testAnalyticsConfig())
	svc.now = func() time.Time {
		return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestDashboardStats(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC) }
	store := &stubStore{
		revenue: []models.SalesPoint{
			{Date: day(11), Revenue: 100},
			{Date: day(12), Revenue: 200},
			{Date: day(13), Revenue: 300},
			{Date: day(14), Revenue: 400},
		},
		customers: []models.CustomerMetric{
			{CustomerID: "u1", TotalOrders: 4, TotalSpent: 400, LastPurchaseDays: 3},
			{CustomerID: "u2", TotalOrders: 1, TotalSpent: 50, LastPurchaseDays: 90},
		},
	}
	svc := newTestService(store)

	stats, err := svc.DashboardStats(context.Background())
	if err != nil {
		t.Fatalf("DashboardStats: %v", err)
	}

	if stats.Overview.TotalRequests != 120 || stats.Overview.ActiveUsers != 6 || stats.Overview.UsersInCheckout != 2 {
		t.Errorf("overview = %+v", stats.Overview)
	}
	if len(stats.Forecast.Predicted) != 7 {
		t.Errorf("forecast length = %d, want 7", len(stats.Forecast.Predicted))
	}
	// 100,200,300,400 continues at 500.
	if got := stats.Forecast.Predicted[0].Predicted; got != 500 {
		t.Errorf("first predicted = %v, want 500", got)
	}
	if stats.Forecast.Trend.Trend != analytics.TrendUp {
		t.Errorf("trend = %q, want up", stats.Forecast.Trend.Trend)
	}
	if len(stats.CustomerIntelligence.Segments) != 2 {
		t.Errorf("segments = %d, want 2", len(stats.CustomerIntelligence.Segments))
	}
	// u1: 100 avg x 4 orders x 1y = 400; u2: 50 x 1 x 1 = 50; mean 225.
	if got := stats.CustomerIntelligence.AvgCLV; got != 225 {
		t.Errorf("avg CLV = %v, want 225", got)
	}
}

func TestDashboardStatsCached(t *testing.T) {
	store := &stubStore{}
	svc := newTestService(store)
	ctx := context.Background()

	if _, err := svc.DashboardStats(ctx); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := svc.DashboardStats(ctx); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if store.calls["TotalRequests"] != 1 {
		t.Errorf("TotalRequests ran %d times, want 1 (second call cached)", store.calls["TotalRequests"])
	}

	svc.InvalidateCache()
	if _, err := svc.DashboardStats(ctx); err != nil {
		t.Fatalf("post-invalidate call: %v", err)
	}
	if store.calls["TotalRequests"] != 2 {
		t.Errorf("TotalRequests ran %d times after invalidation, want 2", store.calls["TotalRequests"])
	}
}

func TestDashboardStatsPropagatesStoreErrors(t *testing.T) {
	store := &stubStore{err: errors.New("disk on fire")}
	svc := newTestService(store)

	if _, err := svc.DashboardStats(context.Background()); err == nil {
		t.Fatal("expected error from failing store")
	}
}

func TestBundleReport(t *testing.T) {
	orders := []models.OrderRecord{
		{OrderID: "o1", Items: []models.LineItem{{ProductID: "a"}, {ProductID: "b"}}},
		{OrderID: "o2", Items: []models.LineItem{{ProductID: "a"}, {ProductID: "b"}}},
		{OrderID: "o3", Items: []models.LineItem{{ProductID: "a"}, {ProductID: "c"}}},
	}
	svc := newTestService(&stubStore{
		orders: orders,
		catalog: map[string]models.ProductDetail{
			"a": {ID: "a", Name: "Desk", Price: 250},
			"b": {ID: "b", Name: "Lamp", Price: 40},
		},
	})

	bundles, err := svc.BundleReport(context.Background())
	if err != nil {
		t.Fatalf("BundleReport: %v", err)
	}
	if len(bundles) != 1 {
		t.Fatalf("got %d bundles, want 1", len(bundles))
	}
	if bundles[0].ProductA != "a" || bundles[0].ProductB != "b" || bundles[0].Frequency != 2 {
		t.Errorf("bundle = %+v", bundles[0])
	}
	if len(bundles[0].ProductDetails) != 2 {
		t.Fatalf("product details = %+v, want both products", bundles[0].ProductDetails)
	}
	if bundles[0].ProductDetails[0].Name != "Desk" || bundles[0].ProductDetails[1].Price != 40 {
		t.Errorf("product details = %+v", bundles[0].ProductDetails)
	}
}

func TestCartRecommendationsKeyedByCart(t *testing.T) {
	store := &stubStore{
		orders: []models.OrderRecord{
			{OrderID: "o1", Items: []models.LineItem{{ProductID: "a"}, {ProductID: "b"}}},
			{OrderID: "o2", Items: []models.LineItem{{ProductID: "c"}, {ProductID: "d"}}},
		},
		catalog: map[string]models.ProductDetail{
			"b": {ID: "b", Name: "Lamp", Price: 40},
		},
	}
	svc := newTestService(store)
	ctx := context.Background()

	recsA, err := svc.CartRecommendations(ctx, []string{"a"})
	if err != nil {
		t.Fatalf("CartRecommendations(a): %v", err)
	}
	if len(recsA) != 1 || recsA[0].ProductID != "b" {
		t.Errorf("recs for cart [a] = %+v, want [b]", recsA)
	}
	if recsA[0].Product == nil || recsA[0].Product.Name != "Lamp" {
		t.Errorf("recommendation detail = %+v, want Lamp", recsA[0].Product)
	}

	// A different cart must not hit the first cart's cache entry.
	recsC, err := svc.CartRecommendations(ctx, []string{"c"})
	if err != nil {
		t.Fatalf("CartRecommendations(c): %v", err)
	}
	if len(recsC) != 1 || recsC[0].ProductID != "d" {
		t.Errorf("recs for cart [c] = %+v, want [d]", recsC)
	}
	if store.calls["CompletedOrders"] != 2 {
		t.Errorf("CompletedOrders ran %d times, want 2 (distinct cache keys)", store.calls["CompletedOrders"])
	}
}

func TestFunnelDefaultsWindow(t *testing.T) {
	store := &stubStore{funnel: []models.FunnelStep{{Step: "Visitors", Count: 10}}}
	svc := newTestService(store)

	steps, err := svc.Funnel(context.Background(), 0)
	if err != nil {
		t.Fatalf("Funnel: %v", err)
	}
	if len(steps) != 1 || steps[0].Count != 10 {
		t.Errorf("steps = %+v", steps)
	}
}

func TestInventoryReports(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	store := &stubStore{
		snapshots: []models.InventorySnapshot{
			{ProductID: "p1", Name: "Desk", Stock: 50, Price: 100, Cost: 40, LastSoldAt: now.AddDate(0, 0, -2)},
			{ProductID: "p2", Name: "Lamp", Stock: 8, Price: 25, Cost: 10, LastSoldAt: now.AddDate(0, -6, 0)},
		},
		sold:      map[string]int{"p1": 100},
		activeIDs: map[string]struct{}{"p1": {}},
	}
	svc := newTestService(store)
	ctx := context.Background()

	preds, err := svc.InventoryRisk(ctx, 0)
	if err != nil {
		t.Fatalf("InventoryRisk: %v", err)
	}
	if len(preds) != 2 {
		t.Fatalf("got %d predictions, want 2", len(preds))
	}
	if preds[0].ProductID != "p1" || preds[0].DaysRemaining != 15 {
		t.Errorf("p1 prediction = %+v", preds[0])
	}

	dead, err := svc.DeadStockReport(ctx, 0)
	if err != nil {
		t.Fatalf("DeadStockReport: %v", err)
	}
	if len(dead) != 1 || dead[0].ProductID != "p2" {
		t.Errorf("dead stock = %+v", dead)
	}
	if dead[0].Value != 200 || dead[0].DaysInactive != 90 {
		t.Errorf("dead stock item = %+v", dead[0])
	}

	val, err := svc.Valuation(ctx)
	if err != nil {
		t.Fatalf("Valuation: %v", err)
	}
	if val.TotalRetail != 50*100+8*25 || val.TotalUnits != 58 || val.ProductCount != 2 {
		t.Errorf("valuation = %+v", val)
	}
}
