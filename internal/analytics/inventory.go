// Storelens - E-Commerce Analytics and Forecasting
// Copyright 2026 The Storelens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storelens/storelens

package analytics

import (
	"math"
	"sort"

	"github.com/storelens/storelens/internal/models"
)

// NoDepletionSentinel is reported as DaysRemaining when a product has no
// measured sales velocity. It reads as "no depletion forecast possible"
// rather than infinity.
const NoDepletionSentinel = 999

// Inventory risk tiers by projected days until stockout.
const (
	RiskCritical = "critical" // 7 days or fewer
	RiskHigh     = "high"     // 14 days or fewer
	RiskMedium   = "medium"   // 30 days or fewer
	RiskLow      = "low"
)

// surfaceStockFloor: products with no recent sales are still surfaced
// when stock has fallen below this count, since a stale near-empty shelf
// is worth an operator's attention.
const surfaceStockFloor = 10

// InventoryPredictions estimates days until stockout for each product
// from its trailing sales velocity. sold maps product ID to total units
// sold over daysOfHistory.
//
// Products with neither recent sales nor stock below the surfacing floor
// are dropped as uninteresting. Results sort most-urgent first.
func InventoryPredictions(items []models.InventorySnapshot, sold map[string]int, daysOfHistory int) []models.InventoryPrediction {
	if daysOfHistory <= 0 {
		daysOfHistory = 30
	}

	predictions := make([]models.InventoryPrediction, 0, len(items))
	for _, item := range items {
		totalSold := sold[item.ProductID]
		if totalSold <= 0 && item.Stock >= surfaceStockFloor {
			continue
		}

		velocity := float64(totalSold) / float64(daysOfHistory)

		daysRemaining := NoDepletionSentinel
		if velocity > 0 {
			daysRemaining = int(math.Round(float64(item.Stock) / velocity))
		}

		predictions = append(predictions, models.InventoryPrediction{
			ProductID:     item.ProductID,
			Name:          item.Name,
			Stock:         item.Stock,
			TotalSold:     totalSold,
			DailyVelocity: math.Round(velocity*100) / 100,
			DaysRemaining: daysRemaining,
			RiskLevel:     riskLevel(daysRemaining),
		})
	}

	sort.Slice(predictions, func(i, j int) bool {
		if predictions[i].DaysRemaining != predictions[j].DaysRemaining {
			return predictions[i].DaysRemaining < predictions[j].DaysRemaining
		}
		return predictions[i].ProductID < predictions[j].ProductID
	})
	return predictions
}

func riskLevel(daysRemaining int) string {
	switch {
	case daysRemaining <= 7:
		return RiskCritical
	case daysRemaining <= 14:
		return RiskHigh
	case daysRemaining <= 30:
		return RiskMedium
	default:
		return RiskLow
	}
}

// DeadStock returns in-stock products whose identifier does not appear
// in the active-sales set for the lookback window. activeIDs holds every
// product sold in a non-cancelled order within daysThreshold days.
func DeadStock(items []models.InventorySnapshot, activeIDs map[string]struct{}, daysThreshold int) []models.DeadStockItem {
	dead := make([]models.DeadStockItem, 0)
	for _, item := range items {
		if item.Stock <= 0 {
			continue
		}
		if _, active := activeIDs[item.ProductID]; active {
			continue
		}
		dead = append(dead, models.DeadStockItem{
			ProductID:    item.ProductID,
			Name:         item.Name,
			Stock:        item.Stock,
			Value:        float64(item.Stock) * item.Price,
			DaysInactive: daysThreshold,
			LastSoldAt:   item.LastSoldAt,
		})
	}
	return dead
}

// InventoryValuation totals the worth of on-hand stock across all
// positive-stock products. PotentialGain is retail value minus cost for
// products that carry a unit cost; products without one contribute no
// cost or gain.
func InventoryValuation(items []models.InventorySnapshot) models.InventoryValuation {
	var v models.InventoryValuation
	for _, item := range items {
		if item.Stock <= 0 {
			continue
		}
		retail := float64(item.Stock) * item.Price
		v.TotalRetail += retail
		v.TotalUnits += item.Stock
		v.ProductCount++
		if item.Cost > 0 {
			cost := float64(item.Stock) * item.Cost
			v.TotalCost += cost
			v.PotentialGain += retail - cost
		}
	}
	return v
}
