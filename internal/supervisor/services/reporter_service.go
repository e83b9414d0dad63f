// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmood/internal/experiment"
	"github.com/tomtom215/reelmood/internal/metrics"
)

// ExperimentLister returns the registered experiments.
type ExperimentLister interface {
	Experiments() []experiment.Experiment
}

// SignificanceAnalyzer runs the chi-square test for one experiment.
type SignificanceAnalyzer interface {
	Significance(ctx context.Context, experimentName string) (experiment.SignificanceResult, error)
}

// ReporterService periodically tests every registered experiment for
// significance, exports the results as gauges and logs them.
type ReporterService struct {
	experiments  ExperimentLister
	analyzer     SignificanceAnalyzer
	counter      experiment.AssignmentCounter
	interval     time.Duration
	queryTimeout time.Duration
	logger       zerolog.Logger
}

// NewReporterService creates a reporter that runs every interval. A
// non-positive interval means five minutes.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewReporterService(experiments ExperimentLister, analyzer SignificanceAnalyzer, interval time.Duration, logger zerolog.Logger) *ReporterService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &ReporterService{
		experiments:  experiments,
		analyzer:     analyzer,
		interval:     interval,
		queryTimeout: 30 * time.Second,
		logger:       logger.With().Str("service", "significance-reporter").Logger(),
	}
}

// WithAssignmentCounter makes each report also export the number of stored
// assignments per experiment.
func (s *ReporterService) WithAssignmentCounter(counter experiment.AssignmentCounter) *ReporterService {
	s.counter = counter
	return s
}

// Serve implements suture.Service. The first report runs one interval
// after start, once the pipeline has had time to flush.
func (s *ReporterService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.interval).Msg("Significance reporter started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.ReportOnce(ctx)
		}
	}
}

// ReportOnce tests every experiment and returns how many were reported.
// Query failures are logged and skipped.
func (s *ReporterService) ReportOnce(ctx context.Context) int {
	reported := 0
	for _, exp := range s.experiments.Experiments() {
		if ctx.Err() != nil {
			break
		}
		if s.report(ctx, exp.Name) {
			reported++
		}
	}
	return reported
}

func (s *ReporterService) report(ctx context.Context, name string) bool {
	queryCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	result, err := s.analyzer.Significance(queryCtx, name)
	if err != nil {
		s.logger.Warn().Err(err).Str("experiment", name).Msg("Significance query failed")
		return false
	}

	metrics.RecordSignificance(name, result.ChiSquare, result.PValue, result.IsSignificant)

	stored := -1
	if s.counter != nil {
		n, err := s.counter.Count(queryCtx, name)
		if err != nil {
			s.logger.Warn().Err(err).Str("experiment", name).Msg("Assignment count failed")
		} else {
			stored = n
			metrics.RecordStoredAssignments(name, n)
		}
	}

	s.logger.Info().
		Str("experiment", name).
		Int("variants", len(result.Variants)).
		Float64("chi_square", result.ChiSquare).
		Float64("p_value", result.PValue).
		Bool("significant", result.IsSignificant).
		Int("stored_assignments", stored).
		Msg("Experiment significance")
	return true
}

// String implements fmt.Stringer for supervisor logs.
func (s *ReporterService) String() string {
	return "significance-reporter"
}
