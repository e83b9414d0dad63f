// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package api

// AssignRequest is the body of POST /api/v1/experiments/{name}/assignments.
type AssignRequest struct {
	UserID string `json:"user_id" validate:"required,max=256"`
}

// AssignResponse is returned for an assignment.
type AssignResponse struct {
	Experiment string `json:"experiment"`
	UserID     string `json:"user_id"`
	Variant    string `json:"variant"`
}

// TrackRequest is the body of POST /api/v1/experiments/{name}/events.
// A missing Value is recorded as 1.
type TrackRequest struct {
	UserID string   `json:"user_id" validate:"required,max=256"`
	Event  string   `json:"event" validate:"required,identifier,max=128"`
	Value  *float64 `json:"value,omitempty"`
}

// TrackResponse acknowledges a tracked event.
type TrackResponse struct {
	Experiment string  `json:"experiment"`
	UserID     string  `json:"user_id"`
	Event      string  `json:"event"`
	Value      float64 `json:"value"`
}

// HealthResponse is returned by the health routes.
type HealthResponse struct {
	Status   string  `json:"status"`
	Database string  `json:"database,omitempty"`
	Uptime   float64 `json:"uptime_seconds"`
}
