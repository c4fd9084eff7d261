// Storelens - E-Commerce Analytics and Forecasting
// Copyright 2026 The Storelens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storelens/storelens

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/storelens/storelens/internal/models"
)

// ReportService is the report surface the handlers need. Satisfied by
// *reports.Service; tests substitute a stub.
type ReportService interface {
	DashboardStats(ctx context.Context) (*models.DashboardStats, error)
	CustomerSegments(ctx context.Context) (*models.CustomerIntelligence, error)
	CohortReport(ctx context.Context) ([]models.CohortRetention, error)
	Funnel(ctx context.Context, days int) ([]models.FunnelStep, error)
	BundleReport(ctx context.Context) ([]models.BundlePair, error)
	CartRecommendations(ctx context.Context, productIDs []string) ([]models.ProductRecommendation, error)
	InventoryRisk(ctx context.Context, days int) ([]models.InventoryPrediction, error)
	DeadStockReport(ctx context.Context, days int) ([]models.DeadStockItem, error)
	Valuation(ctx context.Context) (models.InventoryValuation, error)
}

// Stats serves the combined dashboard payload.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	stats, err := h.reports.DashboardStats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "REPORT_FAILED", "failed to build dashboard stats", err)
		return
	}
	respondData(w, started, stats)
}

// CustomerSegments serves the RFM segmentation.
func (h *Handler) CustomerSegments(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	segments, err := h.reports.CustomerSegments(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "REPORT_FAILED", "failed to segment customers", err)
		return
	}
	respondData(w, started, segments)
}

// Cohorts serves monthly retention cohorts.
func (h *Handler) Cohorts(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	cohorts, err := h.reports.CohortReport(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "REPORT_FAILED", "failed to build cohorts", err)
		return
	}
	respondData(w, started, cohorts)
}

// Funnel serves purchase funnel stage counts. Accepts ?days=N.
func (h *Handler) Funnel(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	days := getIntParam(r, "days", 0)
	if days < 0 || days > 365 {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "days must be between 0 and 365", nil)
		return
	}
	steps, err := h.reports.Funnel(r.Context(), days)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "REPORT_FAILED", "failed to build funnel", err)
		return
	}
	respondData(w, started, steps)
}

// Bundles serves frequently-bought-together pairs.
func (h *Handler) Bundles(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	bundles, err := h.reports.BundleReport(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "REPORT_FAILED", "failed to build bundles", err)
		return
	}
	respondData(w, started, bundles)
}

// CartRecommendationsRequest is the cart suggestion payload.
type CartRecommendationsRequest struct {
	ProductIDs []string `json:"productIds" validate:"required,min=1,max=100,dive,required,max=128"`
}

// CartRecommendations suggests products for the posted cart contents.
func (h *Handler) CartRecommendations(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req CartRecommendationsRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "malformed JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	recs, err := h.reports.CartRecommendations(r.Context(), req.ProductIDs)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "REPORT_FAILED", "failed to build recommendations", err)
		return
	}
	respondData(w, started, recs)
}
