// Vitrina - Localized Content Discovery Storefront
// Copyright 2026 Vitrina Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrina-app/vitrina

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vitrina-app/vitrina/internal/middleware"
)

// NewRouter builds the full HTTP route tree.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.cfg.API.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", "X-Session-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/api/v1/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByRealIP(h.cfg.API.RateLimitRequests, h.cfg.API.RateLimitWindow))
		r.Use(middleware.PrometheusMetrics)

		r.Post("/picks", h.Picks)
		r.Post("/views", h.RecordView)

		r.Route("/panels/{panel}", func(r chi.Router) {
			r.Get("/", h.PanelState)
			r.Post("/expand", h.ExpandPanel)
			r.Post("/collapse", h.CollapsePanel)
			r.Post("/retry", h.RetryPanel)
			r.Post("/key", h.SetPanelKey)
		})

		r.Route("/pages/{page}/sections", func(r chi.Router) {
			r.Get("/", h.ListSections)
			r.Post("/reorder", h.ReorderSections)
			r.Post("/reset", h.ResetSections)
			r.Post("/{section}/toggle", h.ToggleSection)
		})
	})

	return r
}
