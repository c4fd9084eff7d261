// Storelens - E-Commerce Analytics and Forecasting
// Copyright 2026 The Storelens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storelens/storelens

package analytics

import (
	"sort"

	"github.com/storelens/storelens/internal/models"
)

// RFM segment labels, evaluated first-match-wins against the (R,F,M)
// score tuple.
const (
	SegmentChampions = "Champions"
	SegmentLoyal     = "Loyal"
	SegmentNew       = "New"
	SegmentAtRisk    = "At Risk"
	SegmentLost      = "Lost"
	SegmentRegular   = "Regular"
)

// SegmentCustomers scores each customer 1-4 on recency, frequency, and
// monetary value by quartile rank within the supplied batch, then
// assigns a segment label from a fixed decision table.
//
// Scores are relative: the same customer can land in a different
// segment when the batch composition changes. That is a property of
// quartile ranking, not a defect. Recency is inverted (fewer days since
// last purchase scores higher); on all three dimensions 4 is best.
func SegmentCustomers(customers []models.CustomerMetric) []models.SegmentedCustomer {
	if len(customers) == 0 {
		return []models.SegmentedCustomer{}
	}

	n := len(customers)
	recencies := make([]int, n)
	frequencies := make([]int, n)
	monetaries := make([]float64, n)
	for i, c := range customers {
		recencies[i] = c.LastPurchaseDays
		frequencies[i] = c.TotalOrders
		monetaries[i] = c.TotalSpent
	}
	sort.Ints(recencies)
	sort.Ints(frequencies)
	sort.Float64s(monetaries)

	out := make([]models.SegmentedCustomer, 0, n)
	for _, c := range customers {
		// Smaller recency is better, so its quartile is inverted.
		r := 5 - quartileInt(recencies, c.LastPurchaseDays)
		f := quartileInt(frequencies, c.TotalOrders)
		m := quartileFloat(monetaries, c.TotalSpent)

		out = append(out, models.SegmentedCustomer{
			CustomerMetric: c,
			RecencyScore:   r,
			FrequencyScore: f,
			MonetaryScore:  m,
			RFMScore:       r + f + m,
			Segment:        segmentLabel(r, f, m),
		})
	}
	return out
}

// quartileInt buckets a value into quartiles 1-4 by its rank in the
// ascending-sorted batch. Ties share the rank of their first occurrence.
func quartileInt(sorted []int, value int) int {
	rank := sort.SearchInts(sorted, value)
	q := rank*4/len(sorted) + 1
	if q > 4 {
		q = 4
	}
	return q
}

func quartileFloat(sorted []float64, value float64) int {
	rank := sort.SearchFloat64s(sorted, value)
	q := rank*4/len(sorted) + 1
	if q > 4 {
		q = 4
	}
	return q
}

func segmentLabel(r, f, m int) string {
	switch {
	case r >= 4 && f >= 4 && m >= 4:
		return SegmentChampions
	case r >= 3 && f >= 3 && m >= 3:
		return SegmentLoyal
	case r >= 4 && f <= 2:
		return SegmentNew
	case r <= 2 && f >= 3:
		return SegmentAtRisk
	case r <= 2 && f <= 2:
		return SegmentLost
	default:
		return SegmentRegular
	}
}
