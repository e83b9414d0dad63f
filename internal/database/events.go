// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/reelmood/internal/experiment"
	"github.com/tomtom215/reelmood/internal/metrics"
)

const insertEventSQL = `INSERT INTO experiment_events
	(id, experiment_name, variant, user_id, event_name, value, "timestamp")
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO NOTHING`

const insertAssignmentSQL = `INSERT INTO experiment_assignments
	(experiment_name, variant, user_id, assigned_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (experiment_name, user_id) DO NOTHING`

// InsertEvents writes a batch of events in one transaction. Events whose ID
// already exists are skipped, so redelivered batches are harmless.
func (db *DB) InsertEvents(ctx context.Context, events []experiment.Event) (err error) {
	if len(events) == 0 {
		return nil
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("insert", "experiment_events", time.Since(start), err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				db.logger.Error().Err(rbErr).AnErr("original_error", err).Msg("Transaction rollback failed")
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, insertEventSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare event insert: %w", err)
	}
	defer closeWithLog(stmt, db.logger, "prepared statement")

	for i := range events {
		e := &events[i]
		if _, err = stmt.ExecContext(ctx,
			e.ID, e.ExperimentName, e.Variant, e.UserID, e.EventName, e.Value, e.Timestamp.UTC()); err != nil {
			return fmt.Errorf("failed to insert event %s: %w", e.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit events: %w", err)
	}
	return nil
}

// InsertAssignments writes assignments, keeping the first row per user and experiment.
func (db *DB) InsertAssignments(ctx context.Context, assignments []experiment.Assignment) (err error) {
	if len(assignments) == 0 {
		return nil
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("insert", "experiment_assignments", time.Since(start), err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				db.logger.Error().Err(rbErr).AnErr("original_error", err).Msg("Transaction rollback failed")
			}
		}
	}()

	for i := range assignments {
		a := &assignments[i]
		if _, err = tx.ExecContext(ctx, insertAssignmentSQL,
			a.ExperimentName, a.Variant, a.UserID, a.AssignedAt.UTC()); err != nil {
			return fmt.Errorf("failed to insert assignment %s/%s: %w", a.ExperimentName, a.UserID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit assignments: %w", err)
	}
	return nil
}

// InsertAssignment writes a single assignment.
func (db *DB) InsertAssignment(ctx context.Context, a experiment.Assignment) error {
	return db.InsertAssignments(ctx, []experiment.Assignment{a})
}

// RecordCounts returns the number of stored events and assignments.
func (db *DB) RecordCounts(ctx context.Context) (events, assignments int64, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	err = db.conn.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM experiment_events), (SELECT COUNT(*) FROM experiment_assignments)`).
		Scan(&events, &assignments)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count records: %w", err)
	}
	return events, assignments, nil
}
