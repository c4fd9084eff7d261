// Storelens - E-Commerce Analytics and Forecasting
// Copyright 2026 The Storelens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storelens/storelens

package models

import (
	"time"
)

// ForecastPoint is a single projected day of revenue. Date is a short
// human-readable label ("Jan 2") matching the dashboard's chart axis.
// IsForecast distinguishes projected points from realized history when
// the two are concatenated into one chart series.
type ForecastPoint struct {
	Date       string  `json:"date"`
	Predicted  float64 `json:"predicted"`
	IsForecast bool    `json:"isForecast"`
}

// TrendResult describes the direction and magnitude of change between the
// older and newer halves of a revenue series.
//
// Trend values: "up", "down", "stable". A series too short to compare
// reports "stable" with zero change.
type TrendResult struct {
	Trend         string  `json:"trend"`
	ChangePercent float64 `json:"changePercent"`
}

// ProductDetail is the catalog summary attached to recommendation
// payloads so the storefront can render them without extra lookups.
type ProductDetail struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	SKU   string  `json:"sku,omitempty"`
	Price float64 `json:"price"`
}

// BundlePair is a frequently co-purchased product pair with its
// association strength. ProductA and ProductB are in lexicographic order
// so the pair key is canonical regardless of purchase order. The engine
// emits bare IDs; the reports layer fills ProductDetails from the
// catalog.
type BundlePair struct {
	ProductA       string          `json:"productA"`
	ProductB       string          `json:"productB"`
	Frequency      int             `json:"frequency"`
	Confidence     float64         `json:"confidence"`
	ProductDetails []ProductDetail `json:"productDetails,omitempty"`
}

// ProductRecommendation is a cart-based suggestion: a product frequently
// bought alongside what the shopper already has. Product is filled by
// the reports layer; the engine emits bare IDs.
type ProductRecommendation struct {
	ProductID string         `json:"productId"`
	Frequency int            `json:"frequency"`
	Product   *ProductDetail `json:"product,omitempty"`
}

// CohortRetention is one acquisition-month cohort with its retention
// rates per month offset. Retention[i] is the percentage of the cohort
// that placed an order in the cohort month advanced by i calendar
// months; the slice stops at the current month.
type CohortRetention struct {
	Cohort    string    `json:"cohort"`
	Size      int       `json:"size"`
	Retention []float64 `json:"retention"`
}

// InventoryPrediction is the stockout outlook for one product.
//
// DaysRemaining is 999 when the product has no measured sales velocity,
// meaning no depletion is foreseeable from recent history.
type InventoryPrediction struct {
	ProductID     string  `json:"productId"`
	Name          string  `json:"name"`
	Stock         int     `json:"stock"`
	TotalSold     int     `json:"totalSold"`
	DailyVelocity float64 `json:"dailyVelocity"`
	DaysRemaining int     `json:"daysRemaining"`
	RiskLevel     string  `json:"riskLevel"`
}

// DeadStockItem is a product holding stock with no recent sales activity.
// DaysInactive echoes the lookback threshold the item was tested against.
type DeadStockItem struct {
	ProductID    string    `json:"productId"`
	Name         string    `json:"name"`
	Stock        int       `json:"stock"`
	Value        float64   `json:"value"`
	DaysInactive int       `json:"daysInactive"`
	LastSoldAt   time.Time `json:"lastSoldAt,omitempty"`
}

// InventoryValuation is the aggregate worth of on-hand stock.
type InventoryValuation struct {
	TotalRetail   float64 `json:"totalRetail"`
	TotalCost     float64 `json:"totalCost"`
	TotalUnits    int     `json:"totalUnits"`
	ProductCount  int     `json:"productCount"`
	PotentialGain float64 `json:"potentialGain"`
}

// LowStockProduct is a product at or below its low-stock threshold.
type LowStockProduct struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	SKU       string `json:"sku,omitempty"`
	Stock     int    `json:"stock"`
	Threshold int    `json:"threshold"`
}

// OverviewStats is the live site summary on the dashboard.
// AvgSessionDuration is in seconds; ActiveUsers counts distinct
// visitors seen in the last five minutes.
type OverviewStats struct {
	TotalRequests      int `json:"totalRequests"`
	UniqueVisitors     int `json:"uniqueVisitors"`
	AvgSessionDuration int `json:"avgSessionDuration"`
	ActiveUsers        int `json:"activeUsers"`
	UsersInCheckout    int `json:"usersInCheckout"`
}

// ForecastReport pairs realized daily revenue with its projection.
type ForecastReport struct {
	Historical []SalesPoint    `json:"historical"`
	Predicted  []ForecastPoint `json:"predicted"`
	Trend      TrendResult     `json:"trend"`
}

// CustomerIntelligence is the RFM segmentation plus the batch's average
// lifetime-value estimate.
type CustomerIntelligence struct {
	Segments []SegmentedCustomer `json:"segments"`
	AvgCLV   float64             `json:"avgCLV"`
}

// DashboardStats is the combined analytics payload behind the stats
// endpoint.
type DashboardStats struct {
	Overview             OverviewStats        `json:"overview"`
	Traffic              []TrafficPoint       `json:"traffic"`
	TopPages             []PageCount          `json:"topPages"`
	TopExitPages         []PageCount          `json:"topExitPages"`
	Forecast             ForecastReport       `json:"forecast"`
	CustomerIntelligence CustomerIntelligence `json:"customerIntelligence"`
}

// FunnelStep is one stage of the purchase funnel with its unique
// visitor count.
type FunnelStep struct {
	Step  string `json:"step"`
	Count int    `json:"count"`
}

// PageCount is a page path with its event count, for top-pages and
// top-exit-pages reporting.
type PageCount struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// TrafficPoint is one bucket of request counts; Label is an hour ("15:00")
// for the 24h dashboard series.
type TrafficPoint struct {
	Label string `json:"date"`
	Count int    `json:"count"`
}
