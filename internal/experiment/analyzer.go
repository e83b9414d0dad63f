// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/reelmood/internal/metrics"
)

// MetricsStore is the read side of the experiment event store.
type MetricsStore interface {
	// CountAssignmentsAndConversions returns the number of assigned users and
	// how many of them have at least one conversion event.
	CountAssignmentsAndConversions(ctx context.Context, experimentName, variant string) (total, converted int64, err error)

	// AverageEventValues averages time_spent and interactions event values
	// and counts distinct users with events.
	AverageEventValues(ctx context.Context, experimentName, variant string) (EventAverages, error)

	// DistinctVariants lists the variants that have assignments or events.
	DistinctVariants(ctx context.Context, experimentName string) ([]string, error)
}

// EventAverages is the engagement summary of one variant. A nil average
// means there were no events of that kind.
type EventAverages struct {
	AvgTimeSpent    *float64 `json:"avg_time_spent"`
	AvgInteractions *float64 `json:"avg_interactions"`
	UniqueUsers     int64    `json:"unique_users"`
}

// VariantMetrics combines conversion and engagement for one variant.
type VariantMetrics struct {
	Variant        string        `json:"variant"`
	ConversionRate float64       `json:"conversion_rate"`
	Engagement     EventAverages `json:"engagement"`
}

// SignificanceResult is the outcome of a chi-square test over unique users
// per variant. Approximate is always true: the CDF is the closed form for
// even degrees of freedom.
type SignificanceResult struct {
	Experiment       string           `json:"experiment"`
	Variants         []VariantMetrics `json:"variants"`
	ChiSquare        float64          `json:"chi_square"`
	DegreesOfFreedom int              `json:"degrees_of_freedom"`
	PValue           float64          `json:"p_value"`
	IsSignificant    bool             `json:"is_significant"`
	Approximate      bool             `json:"approximate"`
}

// Analyzer computes experiment metrics from a MetricsStore.
type Analyzer struct {
	store  MetricsStore
	logger zerolog.Logger
}

// NewAnalyzer creates an Analyzer.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewAnalyzer(store MetricsStore, logger zerolog.Logger) *Analyzer {
	return &Analyzer{
		store:  store,
		logger: logger.With().Str("component", "experiment-analyzer").Logger(),
	}
}

// ConversionRate returns converted/total users for a variant, or 0 when the
// variant has no users.
func (a *Analyzer) ConversionRate(ctx context.Context, experimentName, variant string) (float64, error) {
	start := time.Now()
	total, converted, err := a.store.CountAssignmentsAndConversions(ctx, experimentName, variant)
	metrics.RecordAnalyticsQuery("conversion_rate", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("count conversions for %s/%s: %w", experimentName, variant, err)
	}

	if total == 0 {
		return 0, nil
	}
	return float64(converted) / float64(total), nil
}

// EngagementMetrics returns the store's event averages for a variant.
func (a *Analyzer) EngagementMetrics(ctx context.Context, experimentName, variant string) (EventAverages, error) {
	start := time.Now()
	avg, err := a.store.AverageEventValues(ctx, experimentName, variant)
	metrics.RecordAnalyticsQuery("engagement", time.Since(start), err)
	if err != nil {
		return EventAverages{}, fmt.Errorf("average events for %s/%s: %w", experimentName, variant, err)
	}
	return avg, nil
}

// AllMetrics runs the conversion and engagement queries concurrently.
func (a *Analyzer) AllMetrics(ctx context.Context, experimentName, variant string) (VariantMetrics, error) {
	result := VariantMetrics{Variant: variant}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rate, err := a.ConversionRate(gctx, experimentName, variant)
		result.ConversionRate = rate
		return err
	})
	g.Go(func() error {
		avg, err := a.EngagementMetrics(gctx, experimentName, variant)
		result.Engagement = avg
		return err
	})

	if err := g.Wait(); err != nil {
		return VariantMetrics{}, err
	}
	return result, nil
}

// Significance tests whether unique users are evenly spread across the
// experiment's variants. No variants, or no users, yields chi-square 0.
func (a *Analyzer) Significance(ctx context.Context, experimentName string) (SignificanceResult, error) {
	start := time.Now()
	variants, err := a.store.DistinctVariants(ctx, experimentName)
	metrics.RecordAnalyticsQuery("distinct_variants", time.Since(start), err)
	if err != nil {
		return SignificanceResult{}, fmt.Errorf("list variants for %s: %w", experimentName, err)
	}

	perVariant := make([]VariantMetrics, len(variants))
	g, gctx := errgroup.WithContext(ctx)
	for i, variant := range variants {
		g.Go(func() error {
			vm, err := a.AllMetrics(gctx, experimentName, variant)
			if err != nil {
				return err
			}
			perVariant[i] = vm
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SignificanceResult{}, err
	}

	observed := make([]float64, len(perVariant))
	for i := range perVariant {
		observed[i] = float64(perVariant[i].Engagement.UniqueUsers)
	}

	chi, _ := ChiSquare(observed)
	k := len(variants) - 1
	p := PValue(chi, k)

	result := SignificanceResult{
		Experiment:       experimentName,
		Variants:         perVariant,
		ChiSquare:        chi,
		DegreesOfFreedom: k,
		PValue:           p,
		IsSignificant:    p < SignificanceLevel,
		Approximate:      true,
	}

	a.logger.Debug().
		Str("experiment", experimentName).
		Int("variants", len(variants)).
		Float64("chi_square", chi).
		Float64("p_value", p).
		Bool("significant", result.IsSignificant).
		Msg("Significance computed")

	return result, nil
}
