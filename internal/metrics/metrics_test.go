// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordDBQuery(t *testing.T) {
	const longMsg = "this is a very long error message that exceeds fifty characters and should be truncated"

	tests := []struct {
		name      string
		operation string
		table     string
		err       error
	}{
		{"successful select", "SELECT", "experiment_events", nil},
		{"successful insert", "INSERT", "experiment_assignments", nil},
		{"failed query", "SELECT", "experiment_events", errors.New("connection refused")},
		{
			"long error is truncated",
			"INSERT",
			"experiment_events",
			errors.New(longMsg),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordDBQuery(tt.operation, tt.table, 5*time.Millisecond, tt.err)
		})
	}

	got := testutil.ToFloat64(DBQueryErrors.WithLabelValues("SELECT", "experiment_events", "connection refused"))
	if got < 1 {
		t.Errorf("expected error counter >= 1, got %v", got)
	}
	if testutil.ToFloat64(DBQueryErrors.WithLabelValues("INSERT", "experiment_events", longMsg[:50])) < 1 {
		t.Error("expected truncated error label to be recorded")
	}
}

func TestRecordAssignment(t *testing.T) {
	before := testutil.ToFloat64(ExperimentAssignments.WithLabelValues("hero-layout", "control"))
	RecordAssignment("hero-layout", "control")
	after := testutil.ToFloat64(ExperimentAssignments.WithLabelValues("hero-layout", "control"))

	if after-before != 1 {
		t.Errorf("expected assignment counter to grow by 1, grew by %v", after-before)
	}
}

func TestRecordEventTrackedAndDropped(t *testing.T) {
	before := testutil.ToFloat64(ExperimentEventsTracked.WithLabelValues("exp", "conversion"))
	RecordEventTracked("exp", "conversion")
	if testutil.ToFloat64(ExperimentEventsTracked.WithLabelValues("exp", "conversion"))-before != 1 {
		t.Error("tracked counter not incremented")
	}

	before = testutil.ToFloat64(ExperimentEventsDropped.WithLabelValues("queue_full"))
	RecordEventDropped("queue_full")
	if testutil.ToFloat64(ExperimentEventsDropped.WithLabelValues("queue_full"))-before != 1 {
		t.Error("dropped counter not incremented")
	}
}

func TestRecordSignificance(t *testing.T) {
	RecordSignificance("exp-sig", 10, 0.04, true)

	if got := testutil.ToFloat64(ExperimentChiSquare.WithLabelValues("exp-sig")); got != 10 {
		t.Errorf("chi-square gauge = %v, want 10", got)
	}
	if got := testutil.ToFloat64(ExperimentPValue.WithLabelValues("exp-sig")); got != 0.04 {
		t.Errorf("p-value gauge = %v, want 0.04", got)
	}
	if got := testutil.ToFloat64(ExperimentSignificant.WithLabelValues("exp-sig")); got != 1 {
		t.Errorf("significant gauge = %v, want 1", got)
	}

	RecordSignificance("exp-sig", 0, 1, false)
	if got := testutil.ToFloat64(ExperimentSignificant.WithLabelValues("exp-sig")); got != 0 {
		t.Errorf("significant gauge = %v, want 0", got)
	}
}

func TestRecordAnalyticsQuery(t *testing.T) {
	before := testutil.ToFloat64(AnalyticsQueryErrors.WithLabelValues("significance"))
	RecordAnalyticsQuery("significance", time.Millisecond, nil)
	RecordAnalyticsQuery("significance", time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(AnalyticsQueryErrors.WithLabelValues("significance")) - before; got != 1 {
		t.Errorf("expected one analytics error, got %v", got)
	}
}

func TestRecordPublish(t *testing.T) {
	okBefore := testutil.ToFloat64(EventsPublished.WithLabelValues("topic-a"))
	errBefore := testutil.ToFloat64(EventPublishErrors.WithLabelValues("topic-a"))

	RecordPublish("topic-a", nil)
	RecordPublish("topic-a", errors.New("nats down"))

	if testutil.ToFloat64(EventsPublished.WithLabelValues("topic-a"))-okBefore != 1 {
		t.Error("published counter not incremented")
	}
	if testutil.ToFloat64(EventPublishErrors.WithLabelValues("topic-a"))-errBefore != 1 {
		t.Error("publish error counter not incremented")
	}
}

func TestSetCircuitBreakerState(t *testing.T) {
	tests := []struct {
		to   string
		want float64
	}{
		{"open", 2},
		{"half-open", 1},
		{"closed", 0},
	}

	for _, tt := range tests {
		t.Run(tt.to, func(t *testing.T) {
			SetCircuitBreakerState("events", "closed", tt.to)
			if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("events")); got != tt.want {
				t.Errorf("state gauge = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecordMoodMetrics(t *testing.T) {
	before := testutil.ToFloat64(MoodClassifications.WithLabelValues("happy"))
	RecordMoodClassification("happy")
	if testutil.ToFloat64(MoodClassifications.WithLabelValues("happy"))-before != 1 {
		t.Error("mood counter not incremented")
	}

	hits := testutil.ToFloat64(MoodCacheHits)
	misses := testutil.ToFloat64(MoodCacheMisses)
	RecordMoodCache(true)
	RecordMoodCache(false)
	if testutil.ToFloat64(MoodCacheHits)-hits != 1 || testutil.ToFloat64(MoodCacheMisses)-misses != 1 {
		t.Error("mood cache counters not incremented")
	}
}

func TestRecordConsumeAndDedup(t *testing.T) {
	before := testutil.ToFloat64(EventsConsumed.WithLabelValues("experiment.events"))
	RecordConsume("experiment.events", 3)
	if testutil.ToFloat64(EventsConsumed.WithLabelValues("experiment.events"))-before != 3 {
		t.Error("consume counter not incremented by batch size")
	}

	dedup := testutil.ToFloat64(EventsDeduplicated)
	RecordDeduplicated()
	if testutil.ToFloat64(EventsDeduplicated)-dedup != 1 {
		t.Error("dedup counter not incremented")
	}
}

func TestRecordRecommendation(t *testing.T) {
	before := testutil.ToFloat64(RecommendationRequests.WithLabelValues("nostalgic"))
	RecordRecommendation("nostalgic", 12)
	if testutil.ToFloat64(RecommendationRequests.WithLabelValues("nostalgic"))-before != 1 {
		t.Error("recommendation counter not incremented")
	}
	if testutil.CollectAndCount(RecommendationCandidates) != 1 {
		t.Error("candidate histogram not collected")
	}
}
