// Storelens - E-Commerce Analytics and Forecasting
// Copyright 2026 The Storelens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storelens/storelens

package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/storelens/storelens/internal/models"
)

// maxCohortOffset is the furthest month offset a retention curve reaches.
const maxCohortOffset = 12

const monthKeyLayout = "2006-01"

// CalculateCohorts groups users into cohorts by UTC acquisition month
// and computes each cohort's retention curve: the percentage of members
// who placed an order at month offsets 0 through 12.
//
// The curve stops early once the target month passes now; months that
// have not happened are never reported. Offset arithmetic anchors to day
// 02 of the cohort month so that adding calendar months cannot roll over
// at month boundaries. Percentages are rounded to the nearest integer.
// Cohorts are returned in chronological order.
func CalculateCohorts(users []models.UserAcquisition, orders []models.CohortOrder, now time.Time) []models.CohortRetention {
	cohorts := make(map[string]map[string]struct{})
	for _, u := range users {
		month := u.CreatedAt.UTC().Format(monthKeyLayout)
		if cohorts[month] == nil {
			cohorts[month] = make(map[string]struct{})
		}
		cohorts[month][u.UserID] = struct{}{}
	}

	userOrderMonths := make(map[string]map[string]struct{})
	for _, o := range orders {
		month := o.CreatedAt.UTC().Format(monthKeyLayout)
		if userOrderMonths[o.UserID] == nil {
			userOrderMonths[o.UserID] = make(map[string]struct{})
		}
		userOrderMonths[o.UserID][month] = struct{}{}
	}

	months := make([]string, 0, len(cohorts))
	for month := range cohorts {
		months = append(months, month)
	}
	sort.Strings(months)

	currentMonth := now.UTC().Format(monthKeyLayout)

	result := make([]models.CohortRetention, 0, len(months))
	for _, cohortMonth := range months {
		members := cohorts[cohortMonth]
		size := len(members)

		anchor, err := time.ParseInLocation(monthKeyLayout, cohortMonth, time.UTC)
		if err != nil {
			continue
		}
		// Day 02 keeps AddDate month arithmetic clear of rollover at
		// month boundaries.
		anchor = anchor.AddDate(0, 0, 1)

		retention := make([]float64, 0, maxCohortOffset+1)
		for i := 0; i <= maxCohortOffset; i++ {
			targetMonth := anchor.AddDate(0, i, 0).Format(monthKeyLayout)
			if targetMonth > currentMonth {
				break
			}

			active := 0
			for userID := range members {
				if _, ok := userOrderMonths[userID][targetMonth]; ok {
					active++
				}
			}

			pct := 0.0
			if size > 0 {
				pct = math.Round(float64(active) / float64(size) * 100)
			}
			retention = append(retention, pct)
		}

		result = append(result, models.CohortRetention{
			Cohort:    cohortMonth,
			Size:      size,
			Retention: retention,
		})
	}
	return result
}
