// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

/*
Package metrics provides Prometheus collectors for Reelmood.

Collectors are registered with the default registry through promauto and are
exposed at /metrics by the API server:

	curl http://localhost:8080/metrics

# Available Metrics

Database:
  - duckdb_query_duration_seconds (histogram; operation, table)
  - duckdb_query_errors_total (counter; operation, table, error_type)

Experiments:
  - reelmood_experiment_assignments_total (counter; experiment, variant)
  - reelmood_experiment_events_tracked_total (counter; experiment, event)
  - reelmood_experiment_events_dropped_total (counter; reason)
  - reelmood_experiments_registered (gauge)
  - reelmood_experiment_chi_square, reelmood_experiment_p_value and
    reelmood_experiment_significant (gauges; experiment), refreshed by the
    significance reporter

Analytics:
  - reelmood_analytics_query_duration_seconds (histogram; operation)
  - reelmood_analytics_query_errors_total (counter; operation)

Event pipeline:
  - reelmood_events_published_total, reelmood_event_publish_errors_total and
    reelmood_events_consumed_total (counters; topic)
  - reelmood_events_deduplicated_total (counter)
  - reelmood_circuit_breaker_state (gauge; name) where 0=closed, 1=half-open, 2=open
  - reelmood_circuit_breaker_transitions_total (counter; name, from, to)

Mood and recommendations:
  - reelmood_mood_classifications_total (counter; mood)
  - reelmood_mood_cache_hits_total, reelmood_mood_cache_misses_total
  - reelmood_recommendation_requests_total (counter; mood)
  - reelmood_recommendation_candidates (histogram)

HTTP:
  - api_requests_total (counter; method, endpoint, status_code)
  - api_request_duration_seconds (histogram; method, endpoint)

# Usage

Callers use the Record* helpers rather than the collectors directly:

	start := time.Now()
	rows, err := db.QueryContext(ctx, query)
	metrics.RecordDBQuery("select", "experiment_events", time.Since(start), err)
*/
package metrics
