// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

// Package database stores experiment analytics in DuckDB.
//
// # Tables
//
//   - experiment_events: one row per tracked event, keyed by event ID so that
//     redelivered batches from the event pipeline are skipped
//   - experiment_assignments: the first assignment of each user per
//     experiment, primary key (experiment_name, user_id)
//   - schema_migrations: applied versioned migrations
//
// # Reads
//
// DB implements experiment.MetricsStore:
//
//	db, err := database.New(&cfg.Database, logger)
//	analyzer := experiment.NewAnalyzer(db, logger)
//	result, err := analyzer.Significance(ctx, "row-layout")
//
// Every query without a context deadline gets a 30 second timeout, and every
// query is timed into duckdb_query_duration_seconds.
//
// # Migrations
//
// Migrations are append-only and applied in version order inside a
// transaction each. Never edit a migration that has shipped.
package database
