// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// Experiment Metrics
	ExperimentAssignments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmood_experiment_assignments_total",
			Help: "New (non-sticky) variant assignments",
		},
		[]string{"experiment", "variant"},
	)

	ExperimentEventsTracked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmood_experiment_events_tracked_total",
			Help: "Experiment events handed to the event sink",
		},
		[]string{"experiment", "event"},
	)

	ExperimentEventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmood_experiment_events_dropped_total",
			Help: "Experiment events that never reached the event store",
		},
		[]string{"reason"}, // "sink_error", "publish_error", "malformed"
	)

	ExperimentsRegistered = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelmood_experiments_registered",
			Help: "Number of experiments currently registered",
		},
	)

	ExperimentStoredAssignments = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reelmood_experiment_stored_assignments",
			Help: "Sticky assignments held by the assignment store per experiment",
		},
		[]string{"experiment"},
	)

	ExperimentChiSquare = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reelmood_experiment_chi_square",
			Help: "Latest chi-square statistic over unique users per variant",
		},
		[]string{"experiment"},
	)

	ExperimentPValue = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reelmood_experiment_p_value",
			Help: "Latest approximate p-value per experiment",
		},
		[]string{"experiment"},
	)

	ExperimentSignificant = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reelmood_experiment_significant",
			Help: "1 when the latest significance report had p < 0.05",
		},
		[]string{"experiment"},
	)

	AnalyticsQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelmood_analytics_query_duration_seconds",
			Help:    "Duration of experiment analytics operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"operation"},
	)

	AnalyticsQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmood_analytics_query_errors_total",
			Help: "Failed experiment analytics operations",
		},
		[]string{"operation"},
	)

	// Event Pipeline Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmood_events_published_total",
			Help: "Messages published to the event transport",
		},
		[]string{"topic"},
	)

	EventPublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmood_event_publish_errors_total",
			Help: "Messages that failed to publish",
		},
		[]string{"topic"},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmood_events_consumed_total",
			Help: "Messages consumed and persisted by the router",
		},
		[]string{"topic"},
	)

	EventsDeduplicated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reelmood_events_deduplicated_total",
			Help: "Messages skipped because their ID was already processed",
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reelmood_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmood_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Mood Metrics
	MoodClassifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmood_mood_classifications_total",
			Help: "Mood classifications by resulting mood",
		},
		[]string{"mood"},
	)

	MoodCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reelmood_mood_cache_hits_total",
			Help: "Mood analyses served from cache",
		},
	)

	MoodCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reelmood_mood_cache_misses_total",
			Help: "Mood analyses computed by the text analyzer",
		},
	)

	// Recommendation Metrics
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmood_recommendation_requests_total",
			Help: "Recommendation requests by resolved mood",
		},
		[]string{"mood"},
	)

	RecommendationCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reelmood_recommendation_candidates",
			Help:    "Catalog items left after mood filtering",
			Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000},
		},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordAssignment records a fresh variant assignment.
func RecordAssignment(experiment, variant string) {
	ExperimentAssignments.WithLabelValues(experiment, variant).Inc()
}

// RecordEventTracked records an event accepted for delivery.
func RecordEventTracked(experiment, event string) {
	ExperimentEventsTracked.WithLabelValues(experiment, event).Inc()
}

// RecordEventDropped records an event lost before persistence.
func RecordEventDropped(reason string) {
	ExperimentEventsDropped.WithLabelValues(reason).Inc()
}

// RecordAnalyticsQuery records an analytics operation and its outcome.
func RecordAnalyticsQuery(operation string, duration time.Duration, err error) {
	AnalyticsQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		AnalyticsQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordSignificance exports the latest significance report for an experiment.
func RecordSignificance(experiment string, chiSquare, pValue float64, significant bool) {
	ExperimentChiSquare.WithLabelValues(experiment).Set(chiSquare)
	ExperimentPValue.WithLabelValues(experiment).Set(pValue)
	v := 0.0
	if significant {
		v = 1
	}
	ExperimentSignificant.WithLabelValues(experiment).Set(v)
}

// RecordStoredAssignments exports the assignment store size for an experiment.
func RecordStoredAssignments(experiment string, n int) {
	ExperimentStoredAssignments.WithLabelValues(experiment).Set(float64(n))
}

// RecordPublish records a publish attempt on topic.
func RecordPublish(topic string, err error) {
	if err != nil {
		EventPublishErrors.WithLabelValues(topic).Inc()
		return
	}
	EventsPublished.WithLabelValues(topic).Inc()
}

// RecordConsume records messages persisted from topic.
func RecordConsume(topic string, n int) {
	EventsConsumed.WithLabelValues(topic).Add(float64(n))
}

// RecordDeduplicated records a message skipped by the deduplicator.
func RecordDeduplicated() {
	EventsDeduplicated.Inc()
}

// SetCircuitBreakerState exports the numeric breaker state and counts the transition.
func SetCircuitBreakerState(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
}

func breakerStateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}

// RecordMoodClassification records the mood chosen for a text.
func RecordMoodClassification(mood string) {
	MoodClassifications.WithLabelValues(mood).Inc()
}

// RecordMoodCache records a mood cache lookup.
func RecordMoodCache(hit bool) {
	if hit {
		MoodCacheHits.Inc()
		return
	}
	MoodCacheMisses.Inc()
}

// RecordRecommendation records a served recommendation request.
func RecordRecommendation(mood string, candidates int) {
	RecommendationRequests.WithLabelValues(mood).Inc()
	RecommendationCandidates.Observe(float64(candidates))
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
