// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

/*
Package main is the entry point for the Reelmood server.

Reelmood ranks media for a listener's mood and runs A/B experiments over
those recommendations. Users are assigned sticky variants, their events
flow through a watermill pipeline into DuckDB, and a chi-square test over
unique users per variant reports whether a variant wins.

# Startup

 1. Configuration: koanf v2, defaults < config.yaml < environment
 2. Logging: zerolog, JSON or console
 3. Database: DuckDB with migrations
 4. Assignment store: in memory or BadgerDB
 5. Event pipeline: sink, gochannel or NATS JetStream, router, batch appenders
 6. Experiment manager: configured and bootstrap experiments
 7. Recommender: lexicon sentiment, mood classifier, ranking engine
 8. HTTP API: chi router with request IDs, metrics, CORS and rate limits
 9. Supervisor tree: suture v4, see internal/supervisor

# Configuration

Common environment variables:

	LOG_LEVEL=info                  # trace, debug, info, warn, error
	LOG_FORMAT=json                 # json or console
	SERVER_ADDRESS=:8080
	DUCKDB_PATH=/data/reelmood.duckdb
	ASSIGNMENT_BACKEND=memory       # memory or badger
	ASSIGNMENT_BADGER_PATH=/data/assignments
	EVENTS_TRANSPORT=channel        # channel or nats
	NATS_URL=nats://127.0.0.1:4222
	RANDOM_SEED=0                   # 0 seeds from the clock
	BOOTSTRAP_EXPERIMENT=homepage
	BOOTSTRAP_VARIANTS=control,mood_first
	REPORTER_INTERVAL=5m

Experiments with weights are declared in config.yaml:

	experiments:
	  - name: homepage
	    variants: [control, mood_first]
	    weights: [0.8, 0.2]

# Shutdown

SIGINT or SIGTERM cancels the supervisor tree. The HTTP server drains
in-flight requests, the sink publishes what is queued, and the appenders
flush their buffers before the database is checkpointed and closed.
*/
package main
