// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/reelmood/internal/config"
	"github.com/tomtom215/reelmood/internal/logging"
	"github.com/tomtom215/reelmood/internal/supervisor"
)

func loadTestConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv(config.ConfigPathEnvVar, "")
	t.Setenv("DUCKDB_PATH", ":memory:")
	t.Setenv("DUCKDB_THREADS", "2")
	t.Setenv("SERVER_ADDRESS", "127.0.0.1:0")
	t.Setenv("EVENTS_FLUSH_INTERVAL", "20ms")
	t.Setenv("EVENTS_BATCH_SIZE", "10")
	t.Setenv("REPORTER_ENABLED", "false")
	t.Setenv("DISABLE_RATE_LIMIT", "true")
	t.Setenv("RANDOM_SEED", "7")
	t.Setenv("BOOTSTRAP_EXPERIMENT", "homepage")
	t.Setenv("BOOTSTRAP_VARIANTS", "control,mood_first")

	cfg, err := config.LoadWithKoanf()
	require.NoError(t, err)
	return cfg
}

func TestEventProcessorConfig(t *testing.T) {
	cfg := loadTestConfig(t)
	cfg.Events.DurableName = "recorder-a"
	cfg.Events.CloseTimeout = 0

	ep := eventProcessorConfig(&cfg.Events)
	require.NoError(t, ep.Validate())

	assert.Equal(t, cfg.Events.Transport, ep.Transport)
	assert.Equal(t, cfg.Events.Topic, ep.Topic)
	assert.Equal(t, cfg.Events.AssignmentTopic, ep.AssignmentTopic)
	assert.Equal(t, 10, ep.Appender.BatchSize)
	assert.Equal(t, 20*time.Millisecond, ep.Appender.FlushInterval)
	assert.Equal(t, cfg.Events.RetryCount, ep.Router.RetryMaxRetries)
	assert.Equal(t, cfg.Events.DeduplicationTTL, ep.Router.DeduplicationTTL)
	assert.Equal(t, cfg.Events.CircuitBreaker.FailureThreshold, ep.CircuitBreaker.FailureThreshold)
	assert.Equal(t, "recorder-a", ep.NATS.DurableName)
	// Zero keeps the pipeline default.
	assert.Equal(t, 30*time.Second, ep.Router.CloseTimeout)
}

func TestMiddlewareConfig(t *testing.T) {
	mc := middlewareConfig(&config.ServerConfig{
		CORSOrigins:       []string{"https://reelmood.example"},
		RateLimitRequests: 10,
		RateLimitWindow:   time.Second,
	})
	assert.Equal(t, []string{"https://reelmood.example"}, mc.CORSAllowedOrigins)
	assert.Equal(t, 10, mc.RateLimitRequests)
	assert.False(t, mc.RateLimitDisabled)
}

func TestOpenAssignmentStore(t *testing.T) {
	store, err := openAssignmentStore(&config.AssignmentsConfig{Backend: config.AssignmentBackendMemory})
	require.NoError(t, err)
	require.NotNil(t, store)

	store, err = openAssignmentStore(&config.AssignmentsConfig{
		Backend:    config.AssignmentBackendBadger,
		BadgerPath: t.TempDir(),
	})
	require.NoError(t, err)
	require.NoError(t, store.Put(context.Background(), "u1", "homepage", "control"))
	closer, ok := store.(interface{ Close() error })
	require.True(t, ok)
	require.NoError(t, closer.Close())
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func call(t *testing.T, h http.Handler, method, path, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

// TestAppEndToEnd runs the whole wiring under the supervisor: API writes go
// through the manager, the sink, the router and the appenders into DuckDB,
// and the significance endpoint reads them back.
func TestAppEndToEnd(t *testing.T) {
	cfg := loadTestConfig(t)

	a, err := newApp(cfg, zerolog.Nop())
	require.NoError(t, err)

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(zerolog.Nop()), supervisor.TreeConfig{
		ShutdownTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	a.addServices(tree)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)
	t.Cleanup(func() {
		cancel()
		<-errCh
		assert.NoError(t, a.Close(context.Background()))
	})

	code, env := call(t, a.handler, http.MethodGet, "/api/v1/experiments/homepage", "")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	const users = 6
	for i := range users {
		user := fmt.Sprintf("user-%d", i)
		code, _ = call(t, a.handler, http.MethodPost, "/api/v1/experiments/homepage/assignments",
			`{"user_id":"`+user+`"}`)
		require.Equal(t, http.StatusOK, code)

		if i%2 == 0 {
			code, _ = call(t, a.handler, http.MethodPost, "/api/v1/experiments/homepage/events",
				`{"user_id":"`+user+`","event":"conversion"}`)
			require.Equal(t, http.StatusAccepted, code)
		}
	}

	require.Eventually(t, func() bool {
		events, assignments, err := a.db.RecordCounts(context.Background())
		return err == nil && events == users/2 && assignments == users
	}, 10*time.Second, 20*time.Millisecond)

	code, env = call(t, a.handler, http.MethodGet, "/api/v1/experiments/homepage/significance", "")
	require.Equal(t, http.StatusOK, code)

	var result struct {
		Experiment string `json:"experiment"`
		Variants   []struct {
			Variant string `json:"variant"`
		} `json:"variants"`
		PValue float64 `json:"p_value"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "homepage", result.Experiment)
	assert.NotEmpty(t, result.Variants)
	assert.GreaterOrEqual(t, result.PValue, 0.0)
	assert.LessOrEqual(t, result.PValue, 1.0)

	code, _ = call(t, a.handler, http.MethodPost, "/api/v1/recommendations",
		`{"text":"calm and cozy tonight","items":[{"id":"m1","title":"Quiet Shore","genres":["documentary"],"description":"a gentle, quiet film"}]}`)
	assert.Equal(t, http.StatusOK, code)

	code, _ = call(t, a.handler, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusOK, code)
}

func TestNewAppClosesOnFailure(t *testing.T) {
	cfg := loadTestConfig(t)
	// The database opens, then the pipeline rejects the queue size.
	cfg.Events.QueueSize = 0

	a, err := newApp(cfg, zerolog.Nop())
	require.Error(t, err)
	assert.Nil(t, a)
}
