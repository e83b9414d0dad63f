// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package eventprocessor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/reelmood/internal/experiment"
)

// memoryRecordStore implements RecordStore and FlushFunc for tests.
type memoryRecordStore struct {
	mu          sync.Mutex
	events      map[string]experiment.Event
	assignments map[string]experiment.Assignment
	batches     []int
	insertErr   error
}

func newMemoryRecordStore() *memoryRecordStore {
	return &memoryRecordStore{
		events:      make(map[string]experiment.Event),
		assignments: make(map[string]experiment.Assignment),
	}
}

func (m *memoryRecordStore) InsertEvents(_ context.Context, events []experiment.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	m.batches = append(m.batches, len(events))
	for _, e := range events {
		m.events[e.ID] = e
	}
	return nil
}

func (m *memoryRecordStore) InsertAssignments(_ context.Context, assignments []experiment.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	for _, a := range assignments {
		m.assignments[a.ExperimentName+"/"+a.UserID] = a
	}
	return nil
}

func (m *memoryRecordStore) setError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertErr = err
}

func (m *memoryRecordStore) eventCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func (m *memoryRecordStore) assignmentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.assignments)
}

func testEvent(id string) experiment.Event {
	return experiment.Event{
		ID:             id,
		ExperimentName: "homepage",
		Variant:        "control",
		UserID:         "user-" + id,
		EventName:      experiment.EventConversion,
		Value:          1,
		Timestamp:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestAppender_FlushesWhenBatchFull(t *testing.T) {
	t.Parallel()

	store := newMemoryRecordStore()
	app, err := NewAppender[experiment.Event]("events", store.InsertEvents,
		AppenderConfig{BatchSize: 3, FlushInterval: time.Hour}, zerolog.Nop())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, app.Append(ctx, testEvent("a"), testEvent("b")))
	assert.Equal(t, 0, store.eventCount())

	require.NoError(t, app.Append(ctx, testEvent("c")))
	require.Eventually(t, func() bool { return app.Stats().Flushed == 3 }, time.Second, 5*time.Millisecond)

	assert.Equal(t, 3, store.eventCount())
	assert.Equal(t, 0, app.Stats().Buffered)
}

func TestAppender_ServeFlushesOnInterval(t *testing.T) {
	t.Parallel()

	store := newMemoryRecordStore()
	app, err := NewAppender[experiment.Event]("events", store.InsertEvents,
		AppenderConfig{BatchSize: 100, FlushInterval: 10 * time.Millisecond}, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx) }()

	require.NoError(t, app.Append(ctx, testEvent("a")))
	require.Eventually(t, func() bool { return store.eventCount() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.ErrorIs(t, app.Append(context.Background(), testEvent("b")), ErrAppenderClosed)
}

func TestAppender_RetainsBatchOnError(t *testing.T) {
	t.Parallel()

	store := newMemoryRecordStore()
	store.setError(errors.New("disk full"))
	app, err := NewAppender[experiment.Event]("events", store.InsertEvents,
		AppenderConfig{BatchSize: 100, FlushInterval: time.Hour}, zerolog.Nop())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, app.Append(ctx, testEvent("a"), testEvent("b")))

	err = app.Flush(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 2, app.Stats().Buffered)
	assert.Equal(t, int64(1), app.Stats().FlushErrors)

	store.setError(nil)
	require.NoError(t, app.Append(ctx, testEvent("c")))
	require.NoError(t, app.Flush(ctx))
	assert.Equal(t, 3, store.eventCount())
	assert.Equal(t, 0, app.Stats().Buffered)
}

func TestAppender_CloseFlushesRemainder(t *testing.T) {
	t.Parallel()

	store := newMemoryRecordStore()
	app, err := NewAppender[experiment.Event]("events", store.InsertEvents,
		AppenderConfig{BatchSize: 100, FlushInterval: time.Hour}, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, app.Append(context.Background(), testEvent("a")))
	require.NoError(t, app.Close(context.Background()))
	assert.Equal(t, 1, store.eventCount())

	// Second close is a no-op.
	require.NoError(t, app.Close(context.Background()))
}

func TestNewAppender_InvalidConfig(t *testing.T) {
	t.Parallel()

	store := newMemoryRecordStore()

	_, err := NewAppender[experiment.Event]("events", nil, DefaultAppenderConfig(), zerolog.Nop())
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewAppender[experiment.Event]("events", store.InsertEvents,
		AppenderConfig{BatchSize: 0, FlushInterval: time.Second}, zerolog.Nop())
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewAppender[experiment.Event]("events", store.InsertEvents,
		AppenderConfig{BatchSize: 1, FlushInterval: 0}, zerolog.Nop())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
