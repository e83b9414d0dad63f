// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package database

import (
	"context"
	"fmt"
	"time"
)

// Migration is one versioned schema change. Migrations are append-only.
type Migration struct {
	Version     int
	Name        string
	Description string
	SQL         []string
	AppliedAt   time.Time
}

const schemaMigrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	applied_at TIMESTAMP NOT NULL
)`

// migrations returns every schema migration in version order.
func migrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Name:        "create_experiment_events",
			Description: "Tracked experiment events, one row per event ID",
			SQL: []string{`CREATE TABLE IF NOT EXISTS experiment_events (
				id TEXT PRIMARY KEY,
				experiment_name TEXT NOT NULL,
				variant TEXT NOT NULL,
				user_id TEXT NOT NULL,
				event_name TEXT NOT NULL,
				value DOUBLE NOT NULL DEFAULT 1,
				"timestamp" TIMESTAMP NOT NULL
			)`},
		},
		{
			Version:     2,
			Name:        "create_experiment_assignments",
			Description: "First assignment of each user per experiment",
			SQL: []string{`CREATE TABLE IF NOT EXISTS experiment_assignments (
				experiment_name TEXT NOT NULL,
				variant TEXT NOT NULL,
				user_id TEXT NOT NULL,
				assigned_at TIMESTAMP NOT NULL,
				PRIMARY KEY (experiment_name, user_id)
			)`},
		},
		{
			Version:     3,
			Name:        "index_experiment_lookups",
			Description: "Indexes for per-variant metric queries",
			SQL: []string{
				`CREATE INDEX IF NOT EXISTS idx_events_experiment_variant ON experiment_events (experiment_name, variant, event_name)`,
				`CREATE INDEX IF NOT EXISTS idx_assignments_variant ON experiment_assignments (experiment_name, variant)`,
			},
		},
	}
}

// runMigrations applies migrations that are not yet recorded in schema_migrations.
func (db *DB) runMigrations() error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, schemaMigrationsTable); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := db.AppliedMigrations(ctx)
	if err != nil {
		return err
	}
	done := make(map[int]struct{}, len(applied))
	for i := range applied {
		done[applied[i].Version] = struct{}{}
	}

	newMigrations := 0
	for _, m := range migrations() {
		if _, ok := done[m.Version]; ok {
			continue
		}
		if db.cfg.SkipIndexes && m.Name == "index_experiment_lookups" {
			continue
		}
		if err := db.applyMigration(ctx, &m); err != nil {
			return err
		}
		newMigrations++
	}

	if newMigrations > 0 {
		db.logger.Info().Int("count", newMigrations).Msg("Applied schema migrations")
	}
	return nil
}

func (db *DB) applyMigration(ctx context.Context, m *Migration) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration v%d: %w", m.Version, err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				db.logger.Error().Err(rbErr).AnErr("original_error", err).Msg("Migration rollback failed")
			}
		}
	}()

	for _, stmt := range m.SQL {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute migration v%d (%s): %w", m.Version, m.Name, err)
		}
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name, description, applied_at) VALUES (?, ?, ?, ?)`,
		m.Version, m.Name, m.Description, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to record migration v%d: %w", m.Version, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration v%d: %w", m.Version, err)
	}
	return nil
}

// AppliedMigrations returns the recorded migrations in version order.
func (db *DB) AppliedMigrations(ctx context.Context) ([]Migration, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT version, name, description, applied_at FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer closeWithLog(rows, db.logger, "migration rows")

	var applied []Migration
	for rows.Next() {
		var m Migration
		if err := rows.Scan(&m.Version, &m.Name, &m.Description, &m.AppliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied = append(applied, m)
	}
	return applied, rows.Err()
}
