// Storelens - E-Commerce Analytics and Forecasting
// Copyright 2026 The Storelens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storelens/storelens

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/storelens/storelens/internal/database"
	"github.com/storelens/storelens/internal/models"
)

// InventoryService is the stock management surface the handlers need.
// Satisfied by *inventory.Service.
type InventoryService interface {
	LowStock(ctx context.Context) ([]models.LowStockProduct, error)
	AdjustStock(ctx context.Context, productID string, delta int) (*database.Product, error)
}

// InventoryPredictions serves days-to-stockout projections. Accepts
// ?days=N for the sales history window.
func (h *Handler) InventoryPredictions(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	days := getIntParam(r, "days", 0)
	if days < 0 || days > 365 {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "days must be between 0 and 365", nil)
		return
	}
	preds, err := h.reports.InventoryRisk(r.Context(), days)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "REPORT_FAILED", "failed to build inventory predictions", err)
		return
	}
	respondData(w, started, preds)
}

// DeadStock serves the slow-mover report. Accepts ?days=N for the
// inactivity lookback.
func (h *Handler) DeadStock(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	days := getIntParam(r, "days", 0)
	if days < 0 || days > 365 {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "days must be between 0 and 365", nil)
		return
	}
	dead, err := h.reports.DeadStockReport(r.Context(), days)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "REPORT_FAILED", "failed to build dead stock report", err)
		return
	}
	respondData(w, started, dead)
}

// Valuation serves the stock valuation totals.
func (h *Handler) Valuation(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	val, err := h.reports.Valuation(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "REPORT_FAILED", "failed to build valuation", err)
		return
	}
	respondData(w, started, val)
}

// LowStock serves products at or below their threshold.
func (h *Handler) LowStock(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	low, err := h.inventory.LowStock(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "REPORT_FAILED", "failed to list low stock products", err)
		return
	}
	respondData(w, started, low)
}

// AdjustStockRequest is the stock adjustment payload. Delta is negative
// for sales and shrinkage, positive for restocks.
type AdjustStockRequest struct {
	Delta int `json:"delta" validate:"required,ne=0,min=-100000,max=100000"`
}

// adjustStockResponse echoes the product's post-adjustment state.
type adjustStockResponse struct {
	ProductID string `json:"productId"`
	Stock     int    `json:"stock"`
	InStock   bool   `json:"inStock"`
}

// AdjustStock applies a stock delta to one product.
func (h *Handler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	productID := chi.URLParam(r, "id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "product id is required", nil)
		return
	}

	var req AdjustStockRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "malformed JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	p, err := h.inventory.AdjustStock(r.Context(), productID, req.Delta)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "ADJUST_FAILED", "failed to adjust stock", err)
		return
	}

	respondData(w, started, adjustStockResponse{
		ProductID: p.ID,
		Stock:     p.Stock,
		InStock:   p.InStock,
	})
}
