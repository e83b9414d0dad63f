// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package eventprocessor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// FlushFunc persists one batch. It must be idempotent: a batch that failed
// is retried on the next flush together with newer records.
type FlushFunc[T any] func(ctx context.Context, batch []T) error

// AppenderStats is a snapshot of appender counters.
type AppenderStats struct {
	Buffered    int
	Flushed     int64
	FlushErrors int64
	LastFlush   time.Time
}

// Appender buffers records and writes them in batches, either when the
// buffer reaches BatchSize or every FlushInterval.
type Appender[T any] struct {
	name   string
	flush  FlushFunc[T]
	cfg    AppenderConfig
	logger zerolog.Logger

	mu     sync.Mutex
	buffer []T
	closed bool
	stats  AppenderStats

	// flushMu serializes flushes so batches are written in order.
	flushMu sync.Mutex
	wg      sync.WaitGroup
}

// NewAppender creates an Appender. Call Serve to start the flush ticker.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewAppender[T any](name string, flush FlushFunc[T], cfg AppenderConfig, logger zerolog.Logger) (*Appender[T], error) {
	if flush == nil {
		return nil, fmt.Errorf("%w: flush function is required", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Appender[T]{
		name:   name,
		flush:  flush,
		cfg:    cfg,
		logger: logger.With().Str("component", "appender").Str("appender", name).Logger(),
		buffer: make([]T, 0, cfg.BatchSize),
	}, nil
}

// Append adds records to the buffer and starts an asynchronous flush once
// the buffer is full.
func (a *Appender[T]) Append(_ context.Context, records ...T) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrAppenderClosed
	}
	a.buffer = append(a.buffer, records...)
	full := len(a.buffer) >= a.cfg.BatchSize
	a.mu.Unlock()

	if full {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := a.Flush(ctx); err != nil {
				a.logger.Error().Err(err).Msg("Batch flush failed")
			}
		}()
	}
	return nil
}

// Flush writes everything buffered. On error the records are put back in
// front of anything appended meanwhile.
func (a *Appender[T]) Flush(ctx context.Context) error {
	a.flushMu.Lock()
	defer a.flushMu.Unlock()

	a.mu.Lock()
	if len(a.buffer) == 0 {
		a.mu.Unlock()
		return nil
	}
	batch := a.buffer
	a.buffer = make([]T, 0, a.cfg.BatchSize)
	a.mu.Unlock()

	start := time.Now()
	err := a.flush(ctx, batch)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.buffer = append(batch, a.buffer...)
		a.stats.FlushErrors++
		return fmt.Errorf("flush %s: %w", a.name, err)
	}
	a.stats.Flushed += int64(len(batch))
	a.stats.LastFlush = time.Now()

	a.logger.Debug().
		Int("count", len(batch)).
		Dur("duration", time.Since(start)).
		Msg("Flushed batch")
	return nil
}

// Serve flushes on every FlushInterval until ctx is cancelled, then closes
// the appender with a final flush.
func (a *Appender[T]) Serve(ctx context.Context) error {
	ticker := time.NewTicker(a.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			closeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := a.Close(closeCtx); err != nil {
				a.logger.Error().Err(err).Msg("Final flush failed")
			}
			return ctx.Err()
		case <-ticker.C:
			if err := a.Flush(ctx); err != nil {
				a.logger.Warn().Err(err).Msg("Periodic flush failed, will retry")
			}
		}
	}
}

// Close rejects further appends, waits for in-flight flushes and writes
// what remains.
func (a *Appender[T]) Close(ctx context.Context) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()

	a.wg.Wait()
	return a.Flush(ctx)
}

// Stats returns a snapshot of the appender counters.
func (a *Appender[T]) Stats() AppenderStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.stats
	s.Buffered = len(a.buffer)
	return s
}

// String implements fmt.Stringer for supervisor logging.
func (a *Appender[T]) String() string {
	return "appender-" + a.name
}
