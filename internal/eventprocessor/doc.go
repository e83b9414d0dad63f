// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

// Package eventprocessor carries tracked experiment events and new variant
// assignments from the experiment manager to the DuckDB event store.
//
//	experiment.Manager
//	      │ RecordEvent / RecordAssignment
//	      ▼
//	    Sink ── bounded queue + workers (drops when full)
//	      │
//	      ▼
//	  Publisher ── gobreaker circuit breaker
//	      │
//	      ▼
//	 watermill pub/sub (gochannel in-process, or NATS JetStream)
//	      │
//	      ▼
//	   Router ── Recoverer, Retry, message-ID deduplication
//	      │
//	      ▼
//	   Handler ── decodes payloads into the batching Appenders
//	      │
//	      ▼
//	database.DB.InsertEvents / InsertAssignments
//
// Delivery is at-most-once from the caller's point of view: Track never
// blocks on the pipeline and a full queue drops the event. Inserts are
// idempotent on event ID and on (experiment, user), so redelivery by the
// transport does not duplicate rows.
package eventprocessor
