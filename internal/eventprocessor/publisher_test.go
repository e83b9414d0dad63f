// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package eventprocessor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyTransport is a message.Publisher that fails while err is set.
type flakyTransport struct {
	calls atomic.Int64
	err   error
}

func (f *flakyTransport) Publish(_ string, _ ...*message.Message) error {
	f.calls.Add(1)
	return f.err
}

func (f *flakyTransport) Close() error { return nil }

func TestNewPublisher_NilTransport(t *testing.T) {
	t.Parallel()

	_, err := NewPublisher(nil, DefaultCircuitBreakerConfig("test"), zerolog.Nop())
	assert.ErrorIs(t, err, ErrNilPublisher)
}

func TestPublisher_PublishSuccess(t *testing.T) {
	t.Parallel()

	transport := &flakyTransport{}
	pub, err := NewPublisher(transport, DefaultCircuitBreakerConfig("test-ok"), zerolog.Nop())
	require.NoError(t, err)

	msg := message.NewMessage("id-1", []byte(`{}`))
	require.NoError(t, pub.Publish(context.Background(), "topic", msg))
	assert.Equal(t, int64(1), transport.calls.Load())
	assert.Equal(t, gobreaker.StateClosed, pub.State())
}

func TestPublisher_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()

	transport := &flakyTransport{err: errors.New("connection refused")}
	cfg := CircuitBreakerConfig{
		Name:             "test-trip",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 3,
	}
	pub, err := NewPublisher(transport, cfg, zerolog.Nop())
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		err := pub.Publish(ctx, "topic", message.NewMessage("id", nil))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	}
	assert.Equal(t, gobreaker.StateOpen, pub.State())

	err = pub.Publish(ctx, "topic", message.NewMessage("id", nil))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int64(3), transport.calls.Load(), "open breaker short-circuits the transport")
}

func TestPublisher_Closed(t *testing.T) {
	t.Parallel()

	pub, err := NewPublisher(&flakyTransport{}, DefaultCircuitBreakerConfig("test-closed"), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, pub.Close())

	err = pub.Publish(context.Background(), "topic", message.NewMessage("id", nil))
	assert.ErrorIs(t, err, ErrPublisherClosed)
}
