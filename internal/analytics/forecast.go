// Storelens - E-Commerce Analytics and Forecasting
// Copyright 2026 The Storelens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storelens/storelens

// Package analytics implements the pure computational core of the
// reporting pipeline: sales forecasting, trend detection, RFM customer
// segmentation, lifetime-value estimation, market-basket association
// mining, cohort retention, and inventory depletion risk.
//
// Every function here is a stateless transform over fully materialized
// input slices. Nothing performs I/O, nothing retains state between
// calls, and all functions are safe for concurrent use. Insufficient or
// malformed input degrades to an empty or neutral result rather than an
// error; these are best-effort reporting aids, not transactional code.
package analytics

import (
	"time"

	"github.com/storelens/storelens/internal/models"
)

// ForecastSales fits an ordinary least-squares regression line to the
// supplied daily revenue history and extrapolates horizonDays future
// points. The independent variable is the point's position in the
// series, so the caller must supply points oldest-first with one point
// per day.
//
// Fewer than 2 historical points returns an empty slice since a line
// cannot be fit. Predictions are clamped at zero; revenue cannot go
// negative no matter how steep a downward trend the fit produces.
// Forecast dates start the day after now.
func ForecastSales(history []models.SalesPoint, horizonDays int, now time.Time) []models.ForecastPoint {
	if len(history) < 2 || horizonDays <= 0 {
		return []models.ForecastPoint{}
	}

	n := len(history)

	var xMean, yMean float64
	for i, p := range history {
		xMean += float64(i)
		yMean += p.Revenue
	}
	xMean /= float64(n)
	yMean /= float64(n)

	var numerator, denominator float64
	for i, p := range history {
		dx := float64(i) - xMean
		numerator += dx * (p.Revenue - yMean)
		denominator += dx * dx
	}

	slope := numerator / denominator
	intercept := yMean - slope*xMean

	forecast := make([]models.ForecastPoint, 0, horizonDays)
	for i := 0; i < horizonDays; i++ {
		x := float64(n + i)
		predicted := slope*x + intercept
		if predicted < 0 {
			predicted = 0
		}
		forecast = append(forecast, models.ForecastPoint{
			Date:       now.AddDate(0, 0, i+1).Format("Jan 2"),
			Predicted:  predicted,
			IsForecast: true,
		})
	}
	return forecast
}

// Trend directions reported by CalculateTrend.
const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendStable = "stable"
)

// stableThresholdPercent is the absolute percentage change below which a
// series is reported as stable regardless of sign.
const stableThresholdPercent = 5.0

// CalculateTrend compares the average of the older half of a series
// against the newer half and reports the direction and magnitude of
// change. For odd-length input the first half is the shorter one.
// Fewer than 2 points yields a stable result with zero change.
func CalculateTrend(series []float64) models.TrendResult {
	if len(series) < 2 {
		return models.TrendResult{Trend: TrendStable, ChangePercent: 0}
	}

	mid := len(series) / 2
	firstAvg := mean(series[:mid])
	secondAvg := mean(series[mid:])

	if firstAvg == 0 {
		if secondAvg == 0 {
			return models.TrendResult{Trend: TrendStable, ChangePercent: 0}
		}
		// Growth from nothing: direction is unambiguous but the
		// percentage is undefined, so report a full-scale change.
		direction := TrendUp
		if secondAvg < 0 {
			direction = TrendDown
		}
		return models.TrendResult{Trend: direction, ChangePercent: 100}
	}

	change := (secondAvg - firstAvg) / firstAvg * 100
	magnitude := change
	if magnitude < 0 {
		magnitude = -magnitude
	}

	if magnitude < stableThresholdPercent {
		return models.TrendResult{Trend: TrendStable, ChangePercent: magnitude}
	}
	direction := TrendUp
	if change < 0 {
		direction = TrendDown
	}
	return models.TrendResult{Trend: direction, ChangePercent: magnitude}
}

// PredictCLV projects customer lifetime value as the product of average
// order value, purchase frequency, and expected lifespan in years. The
// frequency unit is the caller's contract; the reports layer passes
// lifetime order count with a one-year lifespan.
func PredictCLV(avgOrderValue, purchaseFrequency, lifespanYears float64) float64 {
	return avgOrderValue * purchaseFrequency * lifespanYears
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
