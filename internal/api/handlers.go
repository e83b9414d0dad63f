// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reelmood/internal/experiment"
	"github.com/tomtom215/reelmood/internal/recommend"
)

// maxBodyBytes bounds request bodies. Recommendation requests carry the
// candidate catalog, so the limit is generous.
const maxBodyBytes = 8 << 20

// ExperimentService is the experiment manager as seen by the API.
type ExperimentService interface {
	Experiments() []experiment.Experiment
	Experiment(name string) (experiment.Experiment, bool)
	Assign(ctx context.Context, userID, experimentName string) (string, error)
	Track(ctx context.Context, userID, experimentName, eventName string, value float64) error
}

// ExperimentReporter computes experiment metrics.
type ExperimentReporter interface {
	Significance(ctx context.Context, experimentName string) (experiment.SignificanceResult, error)
	AllMetrics(ctx context.Context, experimentName, variant string) (experiment.VariantMetrics, error)
}

// Recommender ranks a catalog for a mood.
type Recommender interface {
	Recommend(ctx context.Context, req *recommend.Request) (*recommend.Response, error)
}

// HealthChecker reports storage readiness.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Handler serves the API routes.
type Handler struct {
	experiments  ExperimentService
	reporter     ExperimentReporter
	recommender  Recommender
	health       HealthChecker
	queryTimeout time.Duration
	startTime    time.Time
}

// HandlerDeps are the collaborators of a Handler.
type HandlerDeps struct {
	Experiments ExperimentService
	Reporter    ExperimentReporter
	Recommender Recommender
	Health      HealthChecker

	// QueryTimeout bounds analytics queries and recommendation requests.
	QueryTimeout time.Duration
}

// NewHandler creates a Handler.
func NewHandler(deps HandlerDeps) *Handler {
	timeout := deps.QueryTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Handler{
		experiments:  deps.Experiments,
		reporter:     deps.Reporter,
		recommender:  deps.Recommender,
		health:       deps.Health,
		queryTimeout: timeout,
		startTime:    time.Now(),
	}
}

// errEmptyBody is returned by decodeJSON for a request without a body.
var errEmptyBody = errors.New("request body is required")

// decodeJSON reads a bounded JSON body into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}
