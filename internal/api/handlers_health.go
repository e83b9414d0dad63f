// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/reelmood/internal/logging"
)

// readinessTimeout bounds the database ping in HealthReady.
const readinessTimeout = 2 * time.Second

// HealthLive reports that the process is serving requests.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(HealthResponse{
		Status: "ok",
		Uptime: time.Since(h.startTime).Seconds(),
	})
}

// HealthReady reports whether the event store is reachable.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.health == nil {
		rw.ServiceUnavailable("database not configured")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	if err := h.health.Ping(ctx); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Readiness check failed")
		rw.ServiceUnavailable("database unavailable")
		return
	}

	rw.Success(HealthResponse{
		Status:   "ready",
		Database: "ok",
		Uptime:   time.Since(h.startTime).Seconds(),
	})
}
