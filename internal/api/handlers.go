// Storelens - E-Commerce Analytics and Forecasting
// Copyright 2026 The Storelens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storelens/storelens

// Package api provides HTTP routing and handlers over the report and
// inventory services, using the Chi router.
package api

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/storelens/storelens/internal/config"
	"github.com/storelens/storelens/internal/logging"
	"github.com/storelens/storelens/internal/metrics"
	"github.com/storelens/storelens/internal/models"
)

// HealthPinger is the storage surface the health endpoints need.
type HealthPinger interface {
	Ping(ctx context.Context) error
}

// EventSink persists incoming traffic events.
type EventSink interface {
	InsertTrafficEvent(ctx context.Context, e *models.TrafficEvent) error
}

// Handler carries the dependencies for all API handlers. Methods are
// split across handlers.go (health, ingest), handlers_reports.go, and
// handlers_inventory.go.
type Handler struct {
	reports   ReportService
	inventory InventoryService
	pinger    HealthPinger
	events    EventSink
	config    *config.Config
	startTime time.Time
}

// NewHandler creates the API handler.
func NewHandler(reportsSvc ReportService, inventorySvc InventoryService, pinger HealthPinger, events EventSink, cfg *config.Config) *Handler {
	return &Handler{
		reports:   reportsSvc,
		inventory: inventorySvc,
		pinger:    pinger,
		events:    events,
		config:    cfg,
		startTime: time.Now(),
	}
}

// Health reports overall service health including database reachability.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	status := "healthy"
	dbStatus := "up"
	if err := h.pinger.Ping(r.Context()); err != nil {
		status = "degraded"
		dbStatus = "down"
	}
	metrics.AppUptime.Set(time.Since(h.startTime).Seconds())
	respondData(w, started, map[string]interface{}{
		"status":   status,
		"database": dbStatus,
		"uptime":   time.Since(h.startTime).Round(time.Second).String(),
	})
}

// HealthLive is the liveness probe: the process is up.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondData(w, time.Now(), map[string]string{"status": "alive"})
}

// HealthReady is the readiness probe: storage must answer.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if err := h.pinger.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "NOT_READY", "database unavailable", err)
		return
	}
	respondData(w, time.Now(), map[string]string{"status": "ready"})
}

// TrackEventRequest is the traffic ingest payload.
type TrackEventRequest struct {
	Path     string                 `json:"path" validate:"required,max=2048"`
	Event    string                 `json:"event" validate:"required,max=64"`
	Referrer string                 `json:"referrer" validate:"omitempty,max=2048"`
	Metadata map[string]interface{} `json:"metadata"`
}

// TrackEvent ingests one storefront traffic event. The client address
// comes from the connection, not the payload.
func (h *Handler) TrackEvent(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req TrackEventRequest
	if err := decodeJSONBody(r, &req); err != nil {
		metrics.EventsRejected.Inc()
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "malformed JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		metrics.EventsRejected.Inc()
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	metadata := ""
	if len(req.Metadata) > 0 {
		encoded, err := json.Marshal(req.Metadata)
		if err != nil {
			metrics.EventsRejected.Inc()
			respondError(w, http.StatusBadRequest, "INVALID_METADATA", "metadata is not encodable", err)
			return
		}
		metadata = string(encoded)
	}

	event := &models.TrafficEvent{
		IPAddress: clientIP(r),
		Path:      req.Path,
		Event:     req.Event,
		Referrer:  req.Referrer,
		Metadata:  metadata,
	}
	if err := h.events.InsertTrafficEvent(r.Context(), event); err != nil {
		respondError(w, http.StatusInternalServerError, "STORE_FAILED", "failed to record event", err)
		return
	}

	metrics.EventsIngested.WithLabelValues(req.Event).Inc()
	logging.Debug().
		Str("event", sanitizeLogValue(req.Event)).
		Str("path", sanitizeLogValue(req.Path)).
		Msg("traffic event recorded")
	respondData(w, started, map[string]string{"id": event.ID})
}

// clientIP returns the request's remote address without the port. The
// RealIP middleware has already resolved forwarded headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
