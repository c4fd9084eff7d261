// Storelens - E-Commerce Analytics and Forecasting
// Copyright 2026 The Storelens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storelens/storelens

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/storelens/storelens/internal/config"
	"github.com/storelens/storelens/internal/database"
	"github.com/storelens/storelens/internal/models"
)

type stubReports struct {
	err      error
	lastCart []string
}

func (s *stubReports) DashboardStats(context.Context) (*models.DashboardStats, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.DashboardStats{
		Overview: models.OverviewStats{TotalRequests: 42, UniqueVisitors: 7},
	}, nil
}

func (s *stubReports) CustomerSegments(context.Context) (*models.CustomerIntelligence, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.CustomerIntelligence{
		Segments: []models.SegmentedCustomer{{Segment: "Champions"}},
		AvgCLV:   120,
	}, nil
}

func (s *stubReports) CohortReport(context.Context) ([]models.CohortRetention, error) {
	return []models.CohortRetention{{Cohort: "2026-01", Size: 10, Retention: []float64{100, 40}}}, s.err
}

func (s *stubReports) Funnel(_ context.Context, days int) ([]models.FunnelStep, error) {
	return []models.FunnelStep{{Step: "Visitors", Count: days}}, s.err
}

func (s *stubReports) BundleReport(context.Context) ([]models.BundlePair, error) {
	return []models.BundlePair{{ProductA: "a", ProductB: "b", Frequency: 3, Confidence: 0.5}}, s.err
}

func (s *stubReports) CartRecommendations(_ context.Context, ids []string) ([]models.ProductRecommendation, error) {
	s.lastCart = ids
	return []models.ProductRecommendation{{ProductID: "b", Frequency: 2}}, s.err
}

func (s *stubReports) InventoryRisk(context.Context, int) ([]models.InventoryPrediction, error) {
	return []models.InventoryPrediction{{ProductID: "p1", RiskLevel: "critical"}}, s.err
}

func (s *stubReports) DeadStockReport(context.Context, int) ([]models.DeadStockItem, error) {
	return []models.DeadStockItem{{ProductID: "p2", Value: 200}}, s.err
}

func (s *stubReports) Valuation(context.Context) (models.InventoryValuation, error) {
	return models.InventoryValuation{TotalRetail: 5200}, s.err
}

type stubInventory struct {
	adjusted map[string]int
	lowErr   error
}

func (s *stubInventory) LowStock(context.Context) ([]models.LowStockProduct, error) {
	if s.lowErr != nil {
		return nil, s.lowErr
	}
	return []models.LowStockProduct{{ProductID: "p1", Stock: 2, Threshold: 5}}, nil
}

func (s *stubInventory) AdjustStock(_ context.Context, id string, delta int) (*database.Product, error) {
	if id == "ghost" {
		return nil, database.ErrNotFound
	}
	if s.adjusted == nil {
		s.adjusted = make(map[string]int)
	}
	s.adjusted[id] = delta
	return &database.Product{ID: id, Stock: 10 + delta, InStock: true}, nil
}

type stubPinger struct{ err error }

func (s *stubPinger) Ping(context.Context) error { return s.err }

type stubSink struct {
	events []models.TrafficEvent
	err    error
}

func (s *stubSink) InsertTrafficEvent(_ context.Context, e *models.TrafficEvent) error {
	if s.err != nil {
		return s.err
	}
	e.ID = "evt-1"
	s.events = append(s.events, *e)
	return nil
}

type testServer struct {
	reports   *stubReports
	inventory *stubInventory
	pinger    *stubPinger
	sink      *stubSink
	srv       *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		reports:   &stubReports{},
		inventory: &stubInventory{},
		pinger:    &stubPinger{},
		sink:      &stubSink{},
	}
	cfg := &config.Config{}
	handler := NewHandler(ts.reports, ts.inventory, ts.pinger, ts.sink, cfg)
	mw := NewChiMiddleware(&ChiMiddlewareConfig{
		CORSAllowedOrigins: []string{"*"},
		CORSAllowedMethods: []string{"GET", "POST", "OPTIONS"},
		RateLimitDisabled:  true,
	})
	ts.srv = httptest.NewServer(NewRouter(handler, mw).Setup())
	t.Cleanup(ts.srv.Close)
	return ts
}

func decodeEnvelope(t *testing.T, resp *http.Response) models.APIResponse {
	t.Helper()
	defer resp.Body.Close()
	var envelope models.APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return envelope
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/api/v1/health", "/api/v1/health/live", "/api/v1/health/ready"} {
		resp, err := http.Get(ts.srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		env := decodeEnvelope(t, resp)
		if resp.StatusCode != http.StatusOK || env.Status != "success" {
			t.Errorf("%s: status=%d envelope=%q", path, resp.StatusCode, env.Status)
		}
	}
}

func TestHealthReadyFailsWhenDBDown(t *testing.T) {
	ts := newTestServer(t)
	ts.pinger.err = errors.New("connection refused")

	resp, err := http.Get(ts.srv.URL + "/api/v1/health/ready")
	if err != nil {
		t.Fatalf("GET ready: %v", err)
	}
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
	if env.Error == nil || env.Error.Code != "NOT_READY" {
		t.Errorf("error = %+v, want NOT_READY", env.Error)
	}
}

func TestStats(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.srv.URL + "/api/v1/analytics/stats")
	if err != nil {
		t.Fatalf("GET stats: %v", err)
	}
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusOK || env.Status != "success" {
		t.Fatalf("status=%d envelope=%q", resp.StatusCode, env.Status)
	}
	if resp.Header.Get("ETag") == "" {
		t.Error("missing ETag header")
	}
}

func TestStatsReportFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.reports.err = errors.New("query failed")

	resp, err := http.Get(ts.srv.URL + "/api/v1/analytics/stats")
	if err != nil {
		t.Fatalf("GET stats: %v", err)
	}
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
	if env.Error == nil || env.Error.Code != "REPORT_FAILED" {
		t.Errorf("error = %+v", env.Error)
	}
}

func TestTrackEvent(t *testing.T) {
	ts := newTestServer(t)

	body := `{"path":"/product/desk","event":"page_view","metadata":{"ref":"email"}}`
	resp, err := http.Post(ts.srv.URL+"/api/v1/analytics/event", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST event: %v", err)
	}
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusOK || env.Status != "success" {
		t.Fatalf("status=%d envelope=%+v", resp.StatusCode, env)
	}
	if len(ts.sink.events) != 1 {
		t.Fatalf("got %d stored events, want 1", len(ts.sink.events))
	}
	stored := ts.sink.events[0]
	if stored.Path != "/product/desk" || stored.Event != "page_view" {
		t.Errorf("stored event = %+v", stored)
	}
	if stored.IPAddress == "" {
		t.Error("client IP not captured from connection")
	}
	if !strings.Contains(stored.Metadata, `"ref":"email"`) {
		t.Errorf("metadata = %q", stored.Metadata)
	}
}

func TestTrackEventValidation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing event", `{"path":"/"}`},
		{"missing path", `{"event":"page_view"}`},
		{"malformed json", `{"path":`},
		{"unknown field", `{"path":"/","event":"x","bogus":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.srv.URL+"/api/v1/analytics/event", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("POST event: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
	if len(ts.sink.events) != 0 {
		t.Errorf("invalid events were stored: %+v", ts.sink.events)
	}
}

func TestFunnelDaysValidation(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.srv.URL + "/api/v1/analytics/funnel?days=9999")
	if err != nil {
		t.Fatalf("GET funnel: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}

	resp, err = http.Get(ts.srv.URL + "/api/v1/analytics/funnel?days=7")
	if err != nil {
		t.Fatalf("GET funnel: %v", err)
	}
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusOK || env.Status != "success" {
		t.Errorf("status=%d envelope=%q", resp.StatusCode, env.Status)
	}
}

func TestCartRecommendations(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.srv.URL+"/api/v1/recommendations/cart", "application/json",
		strings.NewReader(`{"productIds":["a","b"]}`))
	if err != nil {
		t.Fatalf("POST cart: %v", err)
	}
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusOK || env.Status != "success" {
		t.Fatalf("status=%d envelope=%q", resp.StatusCode, env.Status)
	}
	if len(ts.reports.lastCart) != 2 || ts.reports.lastCart[0] != "a" {
		t.Errorf("cart passed to service = %v", ts.reports.lastCart)
	}

	// Empty cart fails validation.
	resp, err = http.Post(ts.srv.URL+"/api/v1/recommendations/cart", "application/json",
		strings.NewReader(`{"productIds":[]}`))
	if err != nil {
		t.Fatalf("POST empty cart: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty cart status = %d, want 400", resp.StatusCode)
	}
}

func TestAdjustStock(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.srv.URL+"/api/v1/inventory/p1/adjust", "application/json",
		strings.NewReader(`{"delta":-3}`))
	if err != nil {
		t.Fatalf("POST adjust: %v", err)
	}
	env := decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusOK || env.Status != "success" {
		t.Fatalf("status=%d envelope=%+v", resp.StatusCode, env)
	}
	if ts.inventory.adjusted["p1"] != -3 {
		t.Errorf("adjusted = %v", ts.inventory.adjusted)
	}

	resp, err = http.Post(ts.srv.URL+"/api/v1/inventory/ghost/adjust", "application/json",
		strings.NewReader(`{"delta":1}`))
	if err != nil {
		t.Fatalf("POST adjust ghost: %v", err)
	}
	env = decodeEnvelope(t, resp)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("ghost status = %d, want 404", resp.StatusCode)
	}
	if env.Error == nil || env.Error.Code != "NOT_FOUND" {
		t.Errorf("ghost error = %+v", env.Error)
	}

	// Zero delta fails validation.
	resp, err = http.Post(ts.srv.URL+"/api/v1/inventory/p1/adjust", "application/json",
		strings.NewReader(`{"delta":0}`))
	if err != nil {
		t.Fatalf("POST zero adjust: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("zero delta status = %d, want 400", resp.StatusCode)
	}
}

func TestInventoryReportEndpoints(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{
		"/api/v1/inventory/predictions",
		"/api/v1/inventory/dead-stock",
		"/api/v1/inventory/valuation",
		"/api/v1/inventory/low-stock",
		"/api/v1/recommendations/bundles",
		"/api/v1/analytics/customer-segments",
		"/api/v1/analytics/cohorts",
	} {
		resp, err := http.Get(ts.srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		env := decodeEnvelope(t, resp)
		if resp.StatusCode != http.StatusOK || env.Status != "success" {
			t.Errorf("%s: status=%d envelope=%q", path, resp.StatusCode, env.Status)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/plain") {
		t.Errorf("content type = %q", ct)
	}
}
