// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

/*
Package api provides the HTTP surface of the Reelmood server.

Routes:

	GET  /health/live                                    process is up
	GET  /health/ready                                   DuckDB answers a ping
	GET  /metrics                                        Prometheus exposition
	GET  /api/v1/experiments                             registered experiments
	GET  /api/v1/experiments/{name}                      one experiment
	GET  /api/v1/experiments/{name}/significance         chi-square report
	GET  /api/v1/experiments/{name}/variants/{variant}   conversion and engagement
	POST /api/v1/experiments/{name}/assignments          sticky variant for a user
	POST /api/v1/experiments/{name}/events               track an event
	POST /api/v1/recommendations                         mood-aware ranking

Every /api/v1 response uses the APIResponse envelope. Write routes are rate
limited per client IP with go-chi/httprate; CORS is handled by go-chi/cors
and is closed unless origins are configured.
*/
package api
