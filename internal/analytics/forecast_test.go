// Storelens - E-Commerce Analytics and Forecasting
// Copyright 2026 The Storelens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storelens/storelens

package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/storelens/storelens/internal/models"
)

func salesSeries(revenues ...float64) []models.SalesPoint {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]models.SalesPoint, len(revenues))
	for i, r := range revenues {
		points[i] = models.SalesPoint{Date: base.AddDate(0, 0, i), Revenue: r}
	}
	return points
}

func TestForecastSales(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		history   []models.SalesPoint
		horizon   int
		wantLen   int
		wantFirst float64
		wantLast  float64
	}{
		{
			name:      "perfectly linear series continues the line",
			history:   salesSeries(10, 20, 30, 40),
			horizon:   3,
			wantLen:   3,
			wantFirst: 50,
			wantLast:  70,
		},
		{
			name:      "flat series forecasts flat",
			history:   salesSeries(100, 100, 100, 100),
			horizon:   5,
			wantLen:   5,
			wantFirst: 100,
			wantLast:  100,
		},
		{
			name:      "steep decline clamps at zero",
			history:   salesSeries(100, 50, 0),
			horizon:   4,
			wantLen:   4,
			wantFirst: 0,
			wantLast:  0,
		},
		{
			name:    "single point cannot fit a line",
			history: salesSeries(42),
			horizon: 7,
			wantLen: 0,
		},
		{
			name:    "empty history",
			history: nil,
			horizon: 7,
			wantLen: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ForecastSales(tt.history, tt.horizon, now)
			if len(got) != tt.wantLen {
				t.Fatalf("ForecastSales() returned %d points, want %d", len(got), tt.wantLen)
			}
			if tt.wantLen == 0 {
				return
			}
			if math.Abs(got[0].Predicted-tt.wantFirst) > 1e-9 {
				t.Errorf("first predicted = %v, want %v", got[0].Predicted, tt.wantFirst)
			}
			if math.Abs(got[len(got)-1].Predicted-tt.wantLast) > 1e-9 {
				t.Errorf("last predicted = %v, want %v", got[len(got)-1].Predicted, tt.wantLast)
			}
			for i, p := range got {
				if !p.IsForecast {
					t.Errorf("point %d: IsForecast = false, want true", i)
				}
				if p.Predicted < 0 {
					t.Errorf("point %d: predicted %v is negative", i, p.Predicted)
				}
			}
		})
	}
}

func TestForecastSalesDates(t *testing.T) {
	now := time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC)
	got := ForecastSales(salesSeries(10, 20), 3, now)
	if len(got) != 3 {
		t.Fatalf("expected 3 points, got %d", len(got))
	}
	wantDates := []string{"Jan 31", "Feb 1", "Feb 2"}
	for i, want := range wantDates {
		if got[i].Date != want {
			t.Errorf("point %d date = %q, want %q", i, got[i].Date, want)
		}
	}
}

func TestForecastSalesIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	history := salesSeries(5, 9, 13, 11, 20)
	first := ForecastSales(history, 7, now)
	second := ForecastSales(history, 7, now)
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("point %d differs between calls: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestCalculateTrend(t *testing.T) {
	tests := []struct {
		name       string
		series     []float64
		wantTrend  string
		wantChange float64
	}{
		{
			name:       "strictly increasing reports up",
			series:     []float64{10, 20, 30, 40},
			wantTrend:  TrendUp,
			wantChange: (35.0 - 15.0) / 15.0 * 100,
		},
		{
			name:       "strictly decreasing reports down",
			series:     []float64{40, 30, 20, 10},
			wantTrend:  TrendDown,
			wantChange: (35.0 - 15.0) / 35.0 * 100,
		},
		{
			name:       "flat series is stable",
			series:     []float64{50, 50, 50, 50},
			wantTrend:  TrendStable,
			wantChange: 0,
		},
		{
			name:       "small change below threshold forced stable",
			series:     []float64{100, 100, 102, 102},
			wantTrend:  TrendStable,
			wantChange: 2,
		},
		{
			name:       "fewer than two points",
			series:     []float64{7},
			wantTrend:  TrendStable,
			wantChange: 0,
		},
		{
			name:       "zero baseline with growth",
			series:     []float64{0, 0, 10, 10},
			wantTrend:  TrendUp,
			wantChange: 100,
		},
		{
			name:       "all zero is stable",
			series:     []float64{0, 0, 0, 0},
			wantTrend:  TrendStable,
			wantChange: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateTrend(tt.series)
			if got.Trend != tt.wantTrend {
				t.Errorf("Trend = %q, want %q", got.Trend, tt.wantTrend)
			}
			if math.Abs(got.ChangePercent-tt.wantChange) > 1e-9 {
				t.Errorf("ChangePercent = %v, want %v", got.ChangePercent, tt.wantChange)
			}
		})
	}
}

func TestCalculateTrendOddLength(t *testing.T) {
	// Five points: first half is the shorter two, second half three.
	got := CalculateTrend([]float64{10, 10, 20, 20, 20})
	if got.Trend != TrendUp {
		t.Errorf("Trend = %q, want %q", got.Trend, TrendUp)
	}
	if math.Abs(got.ChangePercent-100) > 1e-9 {
		t.Errorf("ChangePercent = %v, want 100", got.ChangePercent)
	}
}

func TestPredictCLV(t *testing.T) {
	tests := []struct {
		name                       string
		avgOrder, frequency, years float64
		want                       float64
	}{
		{"typical customer", 50, 4, 3, 600},
		{"single year lifespan", 120.5, 2, 1, 241},
		{"zero frequency", 80, 0, 3, 0},
		{"zero order value", 0, 10, 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PredictCLV(tt.avgOrder, tt.frequency, tt.years)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("PredictCLV(%v, %v, %v) = %v, want %v",
					tt.avgOrder, tt.frequency, tt.years, got, tt.want)
			}
		})
	}
}
