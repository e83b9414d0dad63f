// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package api

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/reelmood/internal/experiment"
	"github.com/tomtom215/reelmood/internal/validation"
)

// ListExperiments handles GET /api/v1/experiments.
func (h *Handler) ListExperiments(w http.ResponseWriter, r *http.Request) {
	exps := h.experiments.Experiments()
	NewResponseWriter(w, r).SuccessList(exps, len(exps))
}

// GetExperiment handles GET /api/v1/experiments/{name}.
func (h *Handler) GetExperiment(w http.ResponseWriter, r *http.Request) {
	exp, ok := h.lookupExperiment(w, r)
	if !ok {
		return
	}
	NewResponseWriter(w, r).Success(exp)
}

// ExperimentSignificance handles GET /api/v1/experiments/{name}/significance.
func (h *Handler) ExperimentSignificance(w http.ResponseWriter, r *http.Request) {
	exp, ok := h.lookupExperiment(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.queryTimeout)
	defer cancel()

	result, err := h.reporter.Significance(ctx, exp.Name)
	if err != nil {
		NewResponseWriter(w, r).DatabaseError(err)
		return
	}
	NewResponseWriter(w, r).Success(result)
}

// VariantMetrics handles GET /api/v1/experiments/{name}/variants/{variant}.
func (h *Handler) VariantMetrics(w http.ResponseWriter, r *http.Request) {
	exp, ok := h.lookupExperiment(w, r)
	if !ok {
		return
	}

	variant := chi.URLParam(r, "variant")
	if !slices.Contains(exp.Variants, variant) {
		NewResponseWriter(w, r).NotFound("variant " + variant + " not found in experiment " + exp.Name)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.queryTimeout)
	defer cancel()

	vm, err := h.reporter.AllMetrics(ctx, exp.Name, variant)
	if err != nil {
		NewResponseWriter(w, r).DatabaseError(err)
		return
	}
	NewResponseWriter(w, r).Success(vm)
}

// AssignVariant handles POST /api/v1/experiments/{name}/assignments.
func (h *Handler) AssignVariant(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	name := chi.URLParam(r, "name")

	var req AssignRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rw.BadRequest("invalid request body: " + err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ValidationError(verr)
		return
	}

	variant, err := h.experiments.Assign(r.Context(), req.UserID, name)
	if err != nil {
		h.writeExperimentError(rw, name, err)
		return
	}
	rw.Success(AssignResponse{Experiment: name, UserID: req.UserID, Variant: variant})
}

// TrackEvent handles POST /api/v1/experiments/{name}/events. Delivery to
// the event store is asynchronous, so success is reported as 202.
func (h *Handler) TrackEvent(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	name := chi.URLParam(r, "name")

	var req TrackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rw.BadRequest("invalid request body: " + err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ValidationError(verr)
		return
	}

	value := 1.0
	if req.Value != nil {
		value = *req.Value
	}

	if err := h.experiments.Track(r.Context(), req.UserID, name, req.Event, value); err != nil {
		h.writeExperimentError(rw, name, err)
		return
	}
	rw.Accepted(TrackResponse{Experiment: name, UserID: req.UserID, Event: req.Event, Value: value})
}

func (h *Handler) lookupExperiment(w http.ResponseWriter, r *http.Request) (experiment.Experiment, bool) {
	name := chi.URLParam(r, "name")
	exp, ok := h.experiments.Experiment(name)
	if !ok {
		NewResponseWriter(w, r).NotFound("experiment " + name + " not found")
	}
	return exp, ok
}

func (h *Handler) writeExperimentError(rw *ResponseWriter, name string, err error) {
	if errors.Is(err, experiment.ErrExperimentNotFound) {
		rw.NotFound("experiment " + name + " not found")
		return
	}
	rw.DatabaseError(err)
}
