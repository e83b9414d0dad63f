// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package experiment

import "context"

// EventSink receives tracked events. Manager.Track logs and counts sink
// errors without returning them.
type EventSink interface {
	RecordEvent(ctx context.Context, event Event) error
}

// AssignmentRecorder receives newly created assignments for analytics.
// Failures are logged and otherwise ignored.
type AssignmentRecorder interface {
	RecordAssignment(ctx context.Context, assignment Assignment) error
}
