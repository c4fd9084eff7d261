// Storelens - E-Commerce Analytics and Forecasting
// Copyright 2026 The Storelens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storelens/storelens

package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/storelens/storelens/internal/analytics"
	"github.com/storelens/storelens/internal/cache"
	"github.com/storelens/storelens/internal/config"
	"github.com/storelens/storelens/internal/metrics"
	"github.com/storelens/storelens/internal/models"
)

// activeVisitorWindow bounds the "currently on the site" overview stats.
const activeVisitorWindow = 5 * time.Minute

const (
	topPagesLimit     = 10
	topExitPagesLimit = 5
)

// epochStart is the floor passed to time-bounded queries when a report
// covers all recorded history.
var epochStart = time.Unix(0, 0).UTC()

// Service builds the analytics reports from stored data. Results are
// cached per report with the configured TTL.
type Service struct {
	store Store
	cache *cache.Cache
	cfg   config.AnalyticsConfig
	now   func() time.Time
}

// NewService wires a report service over the given store.
func NewService(store Store, c *cache.Cache, cfg config.AnalyticsConfig) *Service {
	return &Service{
		store: store,
		cache: c,
		cfg:   cfg,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// cachedReport serves a report from cache when fresh, otherwise computes
// and stores it. Report durations and errors are always recorded.
func cachedReport[T any](ctx context.Context, s *Service, name string, params any, fn func(context.Context) (T, error)) (T, error) {
	key := cache.GenerateKey(name, params)
	if v, ok := s.cache.Get(key); ok {
		if result, ok := v.(T); ok {
			metrics.RecordCacheAccess("reports", true)
			return result, nil
		}
	}
	metrics.RecordCacheAccess("reports", false)

	start := time.Now()
	result, err := fn(ctx)
	metrics.RecordReport(name, time.Since(start), err)
	if err != nil {
		var zero T
		return zero, err
	}
	s.cache.Set(key, result)
	return result, nil
}

// DashboardStats assembles the combined dashboard payload: live traffic
// overview, hourly traffic, top pages, the revenue forecast, and
// customer intelligence.
func (s *Service) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	return cachedReport(ctx, s, "dashboard_stats", nil, s.buildDashboardStats)
}

func (s *Service) buildDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	now := s.now()

	totalRequests, err := s.store.TotalRequests(ctx, epochStart)
	if err != nil {
		return nil, fmt.Errorf("total requests: %w", err)
	}
	uniqueVisitors, err := s.store.UniqueVisitors(ctx, epochStart)
	if err != nil {
		return nil, fmt.Errorf("unique visitors: %w", err)
	}
	avgSession, err := s.store.AvgSessionDurationSeconds(ctx, epochStart)
	if err != nil {
		return nil, fmt.Errorf("session duration: %w", err)
	}
	active, inCheckout, err := s.store.ActiveVisitorStats(ctx, now, activeVisitorWindow)
	if err != nil {
		return nil, fmt.Errorf("active visitors: %w", err)
	}
	traffic, err := s.store.HourlyTraffic(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("hourly traffic: %w", err)
	}
	topPages, err := s.store.TopPages(ctx, epochStart, topPagesLimit)
	if err != nil {
		return nil, fmt.Errorf("top pages: %w", err)
	}
	topExits, err := s.store.TopExitPages(ctx, epochStart, topExitPagesLimit)
	if err != nil {
		return nil, fmt.Errorf("top exit pages: %w", err)
	}

	forecast, err := s.buildForecast(ctx, now)
	if err != nil {
		return nil, err
	}
	intelligence, err := s.buildCustomerIntelligence(ctx, now)
	if err != nil {
		return nil, err
	}

	return &models.DashboardStats{
		Overview: models.OverviewStats{
			TotalRequests:      totalRequests,
			UniqueVisitors:     uniqueVisitors,
			AvgSessionDuration: avgSession,
			ActiveUsers:        active,
			UsersInCheckout:    inCheckout,
		},
		Traffic:              traffic,
		TopPages:             topPages,
		TopExitPages:         topExits,
		Forecast:             *forecast,
		CustomerIntelligence: *intelligence,
	}, nil
}

func (s *Service) buildForecast(ctx context.Context, now time.Time) (*models.ForecastReport, error) {
	since := now.AddDate(0, 0, -s.cfg.RevenueLookbackDays)
	history, err := s.store.DailyRevenue(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("daily revenue: %w", err)
	}

	revenues := make([]float64, len(history))
	for i, p := range history {
		revenues[i] = p.Revenue
	}

	return &models.ForecastReport{
		Historical: history,
		Predicted:  analytics.ForecastSales(history, s.cfg.ForecastHorizonDays, now),
		Trend:      analytics.CalculateTrend(revenues),
	}, nil
}

func (s *Service) buildCustomerIntelligence(ctx context.Context, now time.Time) (*models.CustomerIntelligence, error) {
	customers, err := s.store.CustomerMetrics(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("customer metrics: %w", err)
	}

	var totalCLV float64
	for _, c := range customers {
		avgOrderValue := c.TotalSpent / float64(c.TotalOrders)
		totalCLV += analytics.PredictCLV(avgOrderValue, float64(c.TotalOrders), s.cfg.CLVLifespanYears)
	}
	avgCLV := 0.0
	if len(customers) > 0 {
		avgCLV = totalCLV / float64(len(customers))
	}

	return &models.CustomerIntelligence{
		Segments: analytics.SegmentCustomers(customers),
		AvgCLV:   avgCLV,
	}, nil
}

// CustomerSegments returns the RFM segmentation with the batch's average
// lifetime value.
func (s *Service) CustomerSegments(ctx context.Context) (*models.CustomerIntelligence, error) {
	return cachedReport(ctx, s, "customer_segments", nil, func(ctx context.Context) (*models.CustomerIntelligence, error) {
		return s.buildCustomerIntelligence(ctx, s.now())
	})
}

// CohortReport returns monthly acquisition cohorts with their retention
// curves.
func (s *Service) CohortReport(ctx context.Context) ([]models.CohortRetention, error) {
	return cachedReport(ctx, s, "cohorts", nil, func(ctx context.Context) ([]models.CohortRetention, error) {
		users, err := s.store.UserAcquisitions(ctx)
		if err != nil {
			return nil, fmt.Errorf("user acquisitions: %w", err)
		}
		orders, err := s.store.OrderActivity(ctx)
		if err != nil {
			return nil, fmt.Errorf("order activity: %w", err)
		}
		return analytics.CalculateCohorts(users, orders, s.now()), nil
	})
}

// Funnel returns unique-visitor counts per purchase funnel stage over
// the given number of days. A non-positive value uses the configured
// window.
func (s *Service) Funnel(ctx context.Context, days int) ([]models.FunnelStep, error) {
	if days <= 0 {
		days = s.cfg.FunnelWindowDays
	}
	return cachedReport(ctx, s, "funnel", days, func(ctx context.Context) ([]models.FunnelStep, error) {
		since := s.now().AddDate(0, 0, -days)
		return s.store.FunnelCounts(ctx, since)
	})
}

// BundleReport returns the strongest frequently-bought-together pairs
// from recent completed orders, each pair carrying catalog details for
// both products.
func (s *Service) BundleReport(ctx context.Context) ([]models.BundlePair, error) {
	return cachedReport(ctx, s, "bundles", nil, func(ctx context.Context) ([]models.BundlePair, error) {
		orders, err := s.store.CompletedOrders(ctx, s.cfg.BasketOrderLimit)
		if err != nil {
			return nil, fmt.Errorf("completed orders: %w", err)
		}
		pairs := analytics.BundleRecommendations(orders, s.basketConfig())

		ids := make([]string, 0, len(pairs)*2)
		for _, p := range pairs {
			ids = append(ids, p.ProductA, p.ProductB)
		}
		details, err := s.store.ProductDetailsByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("product details: %w", err)
		}
		for i, p := range pairs {
			pair := make([]models.ProductDetail, 0, 2)
			for _, id := range []string{p.ProductA, p.ProductB} {
				if d, ok := details[id]; ok {
					pair = append(pair, d)
				}
			}
			pairs[i].ProductDetails = pair
		}
		return pairs, nil
	})
}

// CartRecommendations suggests products frequently bought alongside the
// given cart contents, with catalog details for each suggestion.
func (s *Service) CartRecommendations(ctx context.Context, productIDs []string) ([]models.ProductRecommendation, error) {
	return cachedReport(ctx, s, "cart_recommendations", productIDs, func(ctx context.Context) ([]models.ProductRecommendation, error) {
		orders, err := s.store.CompletedOrders(ctx, s.cfg.BasketOrderLimit)
		if err != nil {
			return nil, fmt.Errorf("completed orders: %w", err)
		}
		recs := analytics.RecommendForProducts(orders, productIDs, s.cfg.CartRecommendLimit)

		ids := make([]string, 0, len(recs))
		for _, rec := range recs {
			ids = append(ids, rec.ProductID)
		}
		details, err := s.store.ProductDetailsByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("product details: %w", err)
		}
		for i, rec := range recs {
			if d, ok := details[rec.ProductID]; ok {
				detail := d
				recs[i].Product = &detail
			}
		}
		return recs, nil
	})
}

func (s *Service) basketConfig() analytics.BasketConfig {
	cfg := analytics.DefaultBasketConfig()
	if s.cfg.BasketMinPairCount > 0 {
		cfg.MinPairCount = s.cfg.BasketMinPairCount
	}
	if s.cfg.BasketMinConfidence > 0 {
		cfg.MinConfidence = s.cfg.BasketMinConfidence
	}
	if s.cfg.BasketMaxPairs > 0 {
		cfg.MaxPairs = s.cfg.BasketMaxPairs
	}
	return cfg
}

// InventoryRisk projects days-to-stockout per product from sales
// velocity over the given history window. A non-positive value uses the
// configured window.
func (s *Service) InventoryRisk(ctx context.Context, days int) ([]models.InventoryPrediction, error) {
	if days <= 0 {
		days = s.cfg.InventoryHistoryDays
	}
	return cachedReport(ctx, s, "inventory_risk", days, func(ctx context.Context) ([]models.InventoryPrediction, error) {
		items, err := s.store.InventorySnapshots(ctx)
		if err != nil {
			return nil, fmt.Errorf("inventory snapshots: %w", err)
		}
		sold, err := s.store.UnitsSoldSince(ctx, s.now().AddDate(0, 0, -days))
		if err != nil {
			return nil, fmt.Errorf("units sold: %w", err)
		}
		return analytics.InventoryPredictions(items, sold, days), nil
	})
}

// DeadStockReport lists products holding stock with no sales activity
// inside the lookback. A non-positive value uses the configured window.
func (s *Service) DeadStockReport(ctx context.Context, days int) ([]models.DeadStockItem, error) {
	if days <= 0 {
		days = s.cfg.DeadStockDays
	}
	return cachedReport(ctx, s, "dead_stock", days, func(ctx context.Context) ([]models.DeadStockItem, error) {
		items, err := s.store.InventorySnapshots(ctx)
		if err != nil {
			return nil, fmt.Errorf("inventory snapshots: %w", err)
		}
		active, err := s.store.ActiveProductIDsSince(ctx, s.now().AddDate(0, 0, -days))
		if err != nil {
			return nil, fmt.Errorf("active products: %w", err)
		}
		return analytics.DeadStock(items, active, days), nil
	})
}

// Valuation totals the retail and cost value of on-hand stock.
func (s *Service) Valuation(ctx context.Context) (models.InventoryValuation, error) {
	return cachedReport(ctx, s, "valuation", nil, func(ctx context.Context) (models.InventoryValuation, error) {
		items, err := s.store.InventorySnapshots(ctx)
		if err != nil {
			return models.InventoryValuation{}, fmt.Errorf("inventory snapshots: %w", err)
		}
		return analytics.InventoryValuation(items), nil
	})
}

// InvalidateCache drops all cached reports, forcing recomputation on the
// next request. Called after writes that change report inputs.
func (s *Service) InvalidateCache() {
	s.cache.Clear()
}
