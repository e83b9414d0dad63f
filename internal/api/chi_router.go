// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmood/internal/middleware"
)

// NewRouter builds the chi router for h.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewRouter(h *Handler, cfg MiddlewareConfig, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(CORS(cfg))

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders)
		r.Use(chimiddleware.Compress(5, "application/json"))

		r.Route("/experiments", func(r chi.Router) {
			r.Get("/", h.ListExperiments)
			r.Route("/{name}", func(r chi.Router) {
				r.Get("/", h.GetExperiment)
				r.Get("/significance", h.ExperimentSignificance)
				r.Get("/variants/{variant}", h.VariantMetrics)

				r.Group(func(r chi.Router) {
					r.Use(RateLimit(cfg))
					r.Post("/assignments", h.AssignVariant)
					r.Post("/events", h.TrackEvent)
				})
			})
		})

		r.With(RateLimit(cfg)).Post("/recommendations", h.Recommend)
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		NewResponseWriter(w, req).NotFound("route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		NewResponseWriter(w, req).Error(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})

	return r
}
