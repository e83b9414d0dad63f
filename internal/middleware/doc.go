// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

/*
Package middleware provides chi-compatible HTTP middleware for the API.

Key Components:

  - RequestID: X-Request-ID propagation plus a logging correlation ID
  - PrometheusMetrics: request count and latency per route pattern
  - AccessLog: one zerolog line per request

The API router installs them in this order:

	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(logger))
	r.Use(middleware.PrometheusMetrics)

PrometheusMetrics labels requests with the chi route pattern
("/api/v1/experiments/{name}") rather than the raw path, which keeps label
cardinality bounded by the number of routes.
*/
package middleware
