// Storelens - E-Commerce Analytics and Forecasting
// Copyright 2026 The Storelens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storelens/storelens

package analytics

import (
	"sort"

	"github.com/storelens/storelens/internal/models"
)

// BasketConfig tunes the association-mining thresholds.
type BasketConfig struct {
	// MinPairCount is the minimum co-occurrence count for a pair to be
	// reported. Pairs seen fewer times are noise.
	MinPairCount int
	// MinConfidence is the exclusive lower bound on pair confidence.
	MinConfidence float64
	// MaxPairs caps the number of bundles returned.
	MaxPairs int
}

// DefaultBasketConfig returns the production thresholds: pairs must be
// seen at least twice with confidence above 0.1, top 10 reported.
func DefaultBasketConfig() BasketConfig {
	return BasketConfig{MinPairCount: 2, MinConfidence: 0.1, MaxPairs: 10}
}

type pairKey struct {
	a, b string
}

// BundleRecommendations mines product pairs that are frequently bought
// together across the supplied orders.
//
// Item identifiers are deduplicated within each order, so a product
// appearing on two lines of one order counts once for co-occurrence.
// Pair keys are canonicalized by sorting the two identifiers, making
// association counts symmetric. Confidence for a pair is its count
// divided by the larger of the two products' individual occurrence
// counts, a conservative measure that avoids inflating rare-item pairs.
// Survivors are ranked by raw frequency, ties broken by identifier for
// deterministic output.
func BundleRecommendations(orders []models.OrderRecord, cfg BasketConfig) []models.BundlePair {
	pairCounts := make(map[pairKey]int)
	productCounts := make(map[string]int)

	for _, order := range orders {
		ids := uniqueProductIDs(order.Items)
		for _, id := range ids {
			productCounts[id]++
		}
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				a, b := ids[i], ids[j]
				if b < a {
					a, b = b, a
				}
				pairCounts[pairKey{a, b}]++
			}
		}
	}

	bundles := make([]models.BundlePair, 0, len(pairCounts))
	for key, count := range pairCounts {
		if count < cfg.MinPairCount {
			continue
		}
		base := productCounts[key.a]
		if productCounts[key.b] > base {
			base = productCounts[key.b]
		}
		confidence := float64(count) / float64(base)
		if confidence <= cfg.MinConfidence {
			continue
		}
		bundles = append(bundles, models.BundlePair{
			ProductA:   key.a,
			ProductB:   key.b,
			Frequency:  count,
			Confidence: confidence,
		})
	}

	sort.Slice(bundles, func(i, j int) bool {
		if bundles[i].Frequency != bundles[j].Frequency {
			return bundles[i].Frequency > bundles[j].Frequency
		}
		if bundles[i].ProductA != bundles[j].ProductA {
			return bundles[i].ProductA < bundles[j].ProductA
		}
		return bundles[i].ProductB < bundles[j].ProductB
	})

	if cfg.MaxPairs > 0 && len(bundles) > cfg.MaxPairs {
		bundles = bundles[:cfg.MaxPairs]
	}
	return bundles
}

// RecommendForProducts suggests products frequently bought alongside the
// target set, typically the shopper's current cart. Every order that
// contains at least one target contributes its other products; targets
// themselves are never recommended. Results are the top limit products
// by co-occurrence count, ties broken by identifier.
func RecommendForProducts(orders []models.OrderRecord, targetIDs []string, limit int) []models.ProductRecommendation {
	if len(targetIDs) == 0 || limit <= 0 {
		return []models.ProductRecommendation{}
	}

	targets := make(map[string]struct{}, len(targetIDs))
	for _, id := range targetIDs {
		targets[id] = struct{}{}
	}

	counts := make(map[string]int)
	for _, order := range orders {
		ids := uniqueProductIDs(order.Items)
		containsTarget := false
		for _, id := range ids {
			if _, ok := targets[id]; ok {
				containsTarget = true
				break
			}
		}
		if !containsTarget {
			continue
		}
		for _, id := range ids {
			if _, ok := targets[id]; !ok {
				counts[id]++
			}
		}
	}

	recs := make([]models.ProductRecommendation, 0, len(counts))
	for id, count := range counts {
		recs = append(recs, models.ProductRecommendation{ProductID: id, Frequency: count})
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Frequency != recs[j].Frequency {
			return recs[i].Frequency > recs[j].Frequency
		}
		return recs[i].ProductID < recs[j].ProductID
	})

	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}

// uniqueProductIDs extracts the distinct product identifiers from an
// order's line items, preserving first-seen order. Items the storage
// layer could not resolve to an identifier are skipped.
func uniqueProductIDs(items []models.LineItem) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if item.ProductID == "" {
			continue
		}
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}
