// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/reelmood/internal/experiment"
	"github.com/tomtom215/reelmood/internal/metrics"
)

var _ experiment.MetricsStore = (*DB)(nil)

// CountAssignmentsAndConversions counts assigned users of a variant and how
// many of them have at least one conversion event in that variant.
func (db *DB) CountAssignmentsAndConversions(ctx context.Context, experimentName, variant string) (total, converted int64, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", "experiment_assignments", time.Since(start), err) }()

	query := `
		SELECT COUNT(DISTINCT a.user_id), COUNT(DISTINCT c.user_id)
		FROM experiment_assignments a
		LEFT JOIN (
			SELECT DISTINCT user_id
			FROM experiment_events
			WHERE experiment_name = ? AND variant = ? AND event_name = ?
		) c ON c.user_id = a.user_id
		WHERE a.experiment_name = ? AND a.variant = ?`

	err = db.conn.QueryRowContext(ctx, query,
		experimentName, variant, experiment.EventConversion, experimentName, variant).
		Scan(&total, &converted)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count conversions: %w", err)
	}
	return total, converted, nil
}

// AverageEventValues averages time_spent and interactions values for a
// variant and counts the distinct users with any event in it.
func (db *DB) AverageEventValues(ctx context.Context, experimentName, variant string) (avg experiment.EventAverages, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", "experiment_events", time.Since(start), err) }()

	query := `
		SELECT
			AVG(value) FILTER (WHERE event_name = ?),
			AVG(value) FILTER (WHERE event_name = ?),
			COUNT(DISTINCT user_id)
		FROM experiment_events
		WHERE experiment_name = ? AND variant = ?`

	var timeSpent, interactions sql.NullFloat64
	err = db.conn.QueryRowContext(ctx, query,
		experiment.EventTimeSpent, experiment.EventInteractions, experimentName, variant).
		Scan(&timeSpent, &interactions, &avg.UniqueUsers)
	if err != nil {
		return experiment.EventAverages{}, fmt.Errorf("failed to average events: %w", err)
	}

	if timeSpent.Valid {
		avg.AvgTimeSpent = &timeSpent.Float64
	}
	if interactions.Valid {
		avg.AvgInteractions = &interactions.Float64
	}
	return avg, nil
}

// DistinctVariants lists variants with assignments or events, sorted.
func (db *DB) DistinctVariants(ctx context.Context, experimentName string) (variants []string, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", "experiment_variants", time.Since(start), err) }()

	query := `
		SELECT variant FROM experiment_assignments WHERE experiment_name = ?
		UNION
		SELECT variant FROM experiment_events WHERE experiment_name = ?
		ORDER BY variant`

	rows, err := db.conn.QueryContext(ctx, query, experimentName, experimentName)
	if err != nil {
		return nil, fmt.Errorf("failed to query variants: %w", err)
	}
	defer closeWithLog(rows, db.logger, "variant rows")

	variants = []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate variants: %w", err)
	}
	return variants, nil
}
