// Storelens - E-Commerce Analytics and Forecasting
// Copyright 2026 The Storelens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storelens/storelens

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/storelens/storelens/internal/middleware"
)

// Router wires handlers and middleware into the route tree.
type Router struct {
	handler *Handler
	mw      *ChiMiddleware
}

// NewRouter creates a router over the given handler and middleware
// factory.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	return &Router{handler: handler, mw: mw}
}

// Setup builds the full route tree.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	// CORS is global so OPTIONS preflights are answered everywhere.
	r.Use(router.mw.CORS())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api/v1/analytics", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)

		// The ingest endpoint gets a looser limit: storefront pages call
		// it on every view.
		r.With(router.mw.RateLimitIngest()).Post("/event", router.handler.TrackEvent)

		r.Group(func(r chi.Router) {
			r.Use(router.mw.RateLimit())
			r.Get("/stats", router.handler.Stats)
			r.Get("/customer-segments", router.handler.CustomerSegments)
			r.Get("/cohorts", router.handler.Cohorts)
			r.Get("/funnel", router.handler.Funnel)
		})
	})

	r.Route("/api/v1/recommendations", func(r chi.Router) {
		r.Use(router.mw.RateLimit())
		r.Use(middleware.PrometheusMetrics)

		r.Get("/bundles", router.handler.Bundles)
		r.Post("/cart", router.handler.CartRecommendations)
	})

	r.Route("/api/v1/inventory", func(r chi.Router) {
		r.Use(router.mw.RateLimit())
		r.Use(middleware.PrometheusMetrics)

		r.Get("/predictions", router.handler.InventoryPredictions)
		r.Get("/dead-stock", router.handler.DeadStock)
		r.Get("/valuation", router.handler.Valuation)
		r.Get("/low-stock", router.handler.LowStock)
		r.Post("/{id}/adjust", router.handler.AdjustStock)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
