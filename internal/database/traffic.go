// Storelens - E-Commerce Analytics and Forecasting
// Copyright 2026 The Storelens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storelens/storelens

package database

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/goccy/go-json"

	"github.com/storelens/storelens/internal/metrics"
	"github.com/storelens/storelens/internal/models"
)

// TotalRequests counts all traffic events since the given time.
func (db *DB) TotalRequests(ctx context.Context, since time.Time) (int, error) {
	return db.countTraffic(ctx,
		`SELECT COUNT(*) FROM traffic_logs WHERE created_at >= ?`, since)
}

// UniqueVisitors counts distinct client addresses since the given time.
func (db *DB) UniqueVisitors(ctx context.Context, since time.Time) (int, error) {
	return db.countTraffic(ctx,
		`SELECT COUNT(DISTINCT ip_address) FROM traffic_logs WHERE created_at >= ?`, since)
}

func (db *DB) countTraffic(ctx context.Context, query string, args ...any) (int, error) {
	start := time.Now()
	var count int
	err := db.conn.QueryRowContext(ctx, query, args...).Scan(&count)
	metrics.RecordDBQuery("select", "traffic_logs", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("traffic count query: %w", err)
	}
	return count, nil
}

// AvgSessionDurationSeconds averages the duration reported by page_leave
// events since the given time, rounded to whole seconds. Events carry
// the duration in their metadata as duration_ms.
func (db *DB) AvgSessionDurationSeconds(ctx context.Context, since time.Time) (int, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT metadata FROM traffic_logs WHERE event = 'page_leave' AND created_at >= ?`, since)
	metrics.RecordDBQuery("select", "traffic_logs", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("session duration query: %w", err)
	}
	defer closeRows(rows)

	var total float64
	var count int
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return 0, fmt.Errorf("scan session duration: %w", err)
		}
		var meta struct {
			DurationMS float64 `json:"duration_ms"`
		}
		if payload == "" || json.Unmarshal([]byte(payload), &meta) != nil {
			continue
		}
		if meta.DurationMS > 0 {
			total += meta.DurationMS
			count++
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}
	return int(math.Round(total / float64(count) / 1000)), nil
}

// HourlyTraffic buckets the last 24 hours of events by hour of day.
// Labels use the "H:00" form, oldest hour first.
func (db *DB) HourlyTraffic(ctx context.Context, now time.Time) ([]models.TrafficPoint, error) {
	since := now.Add(-24 * time.Hour)
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT created_at FROM traffic_logs WHERE created_at >= ?`, since)
	metrics.RecordDBQuery("select", "traffic_logs", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("hourly traffic query: %w", err)
	}
	defer closeRows(rows)

	counts := make(map[int]int, 24)
	for rows.Next() {
		var at time.Time
		if err := rows.Scan(&at); err != nil {
			return nil, fmt.Errorf("scan hourly traffic: %w", err)
		}
		counts[at.UTC().Hour()]++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	points := make([]models.TrafficPoint, 0, 24)
	for i := 23; i >= 0; i-- {
		hour := now.UTC().Add(time.Duration(-i) * time.Hour).Hour()
		points = append(points, models.TrafficPoint{
			Label: fmt.Sprintf("%d:00", hour),
			Count: counts[hour],
		})
	}
	return points, nil
}

// ActiveVisitorStats returns the distinct visitors seen in the window
// before now, plus how many of them most recently stood on the checkout
// page.
func (db *DB) ActiveVisitorStats(ctx context.Context, now time.Time, window time.Duration) (active, inCheckout int, err error) {
	since := now.Add(-window)
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT ip_address, path FROM traffic_logs WHERE created_at >= ? ORDER BY created_at DESC`, since)
	metrics.RecordDBQuery("select", "traffic_logs", time.Since(start), err)
	if err != nil {
		return 0, 0, fmt.Errorf("active visitors query: %w", err)
	}
	defer closeRows(rows)

	// Rows arrive newest first, so the first path seen per visitor is
	// their current location.
	latest := make(map[string]string)
	for rows.Next() {
		var ip, path string
		if err := rows.Scan(&ip, &path); err != nil {
			return 0, 0, fmt.Errorf("scan active visitors: %w", err)
		}
		if _, seen := latest[ip]; !seen {
			latest[ip] = path
		}
	}
	if err := rows.Err(); err != nil {
		return 0, 0, err
	}

	for _, path := range latest {
		if path == "/checkout" {
			inCheckout++
		}
	}
	return len(latest), inCheckout, nil
}

// TopPages returns the most viewed pages since the given time.
func (db *DB) TopPages(ctx context.Context, since time.Time, limit int) ([]models.PageCount, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT path, COUNT(*) AS views
		 FROM traffic_logs
		 WHERE event = 'page_view' AND created_at >= ?
		 GROUP BY path
		 ORDER BY views DESC
		 LIMIT ?`, since, limit)
	metrics.RecordDBQuery("select", "traffic_logs", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("top pages query: %w", err)
	}
	defer closeRows(rows)

	var pages []models.PageCount
	for rows.Next() {
		var p models.PageCount
		if err := rows.Scan(&p.Path, &p.Count); err != nil {
			return nil, fmt.Errorf("scan top pages: %w", err)
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// TopExitPages returns the pages visitors most often left the site
// from, taken from website_exit event metadata.
func (db *DB) TopExitPages(ctx context.Context, since time.Time, limit int) ([]models.PageCount, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT metadata FROM traffic_logs WHERE event = 'website_exit' AND created_at >= ?`, since)
	metrics.RecordDBQuery("select", "traffic_logs", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("exit pages query: %w", err)
	}
	defer closeRows(rows)

	counts := make(map[string]int)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan exit pages: %w", err)
		}
		var meta struct {
			LastPage string `json:"last_page"`
		}
		if payload == "" || json.Unmarshal([]byte(payload), &meta) != nil {
			continue
		}
		if meta.LastPage != "" {
			counts[meta.LastPage]++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	pages := make([]models.PageCount, 0, len(counts))
	for path, count := range counts {
		pages = append(pages, models.PageCount{Path: path, Count: count})
	}
	sort.Slice(pages, func(i, j int) bool {
		if pages[i].Count != pages[j].Count {
			return pages[i].Count > pages[j].Count
		}
		return pages[i].Path < pages[j].Path
	})
	if len(pages) > limit {
		pages = pages[:limit]
	}
	return pages, nil
}

// FunnelCounts walks the purchase funnel since the given time, counting
// distinct visitors at each stage.
func (db *DB) FunnelCounts(ctx context.Context, since time.Time) ([]models.FunnelStep, error) {
	stages := []struct {
		step   string
		clause string
	}{
		{"Visitors", ""},
		{"Product View", "AND path LIKE '/product/%'"},
		{"Add to Cart", "AND event = 'add_to_cart'"},
		{"Checkout", "AND path = '/checkout'"},
		{"Purchase", "AND path = '/order-success'"},
	}

	steps := make([]models.FunnelStep, 0, len(stages))
	for _, stage := range stages {
		query := fmt.Sprintf(
			`SELECT COUNT(DISTINCT ip_address) FROM traffic_logs WHERE created_at >= ? %s`,
			stage.clause)
		count, err := db.countTraffic(ctx, query, since)
		if err != nil {
			return nil, fmt.Errorf("funnel stage %q: %w", stage.step, err)
		}
		steps = append(steps, models.FunnelStep{Step: stage.step, Count: count})
	}
	return steps, nil
}
