// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmood/internal/logging"
)

// probeService fails its first failures starts, then runs until canceled.
type probeService struct {
	name     string
	failures int32
	starts   atomic.Int32
	running  chan struct{}
}

func newProbe(name string, failures int32) *probeService {
	return &probeService{name: name, failures: failures, running: make(chan struct{})}
}

func (p *probeService) Serve(ctx context.Context) error {
	n := p.starts.Add(1)
	if n <= p.failures {
		return errors.New("probe failure")
	}
	if n == p.failures+1 {
		close(p.running)
	}
	<-ctx.Done()
	return ctx.Err()
}

func (p *probeService) String() string { return p.name }

func (p *probeService) waitRunning(t *testing.T) {
	t.Helper()
	select {
	case <-p.running:
	case <-time.After(2 * time.Second):
		t.Fatalf("%s never reached a running state (starts=%d)", p.name, p.starts.Load())
	}
}

func quietLogger() *slog.Logger {
	return logging.NewSlogLogger(zerolog.Nop())
}

func TestNewSupervisorTreeDefaults(t *testing.T) {
	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{})
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}
	if tree.Root() == nil {
		t.Fatal("Root() is nil")
	}
	if got, want := tree.Config(), DefaultTreeConfig(); got != want {
		t.Errorf("Config() = %+v, want %+v", got, want)
	}

	tree, _ = NewSupervisorTree(quietLogger(), TreeConfig{FailureThreshold: 2, ShutdownTimeout: time.Second})
	cfg := tree.Config()
	if cfg.FailureThreshold != 2 || cfg.ShutdownTimeout != time.Second {
		t.Errorf("explicit values overwritten: %+v", cfg)
	}
	if cfg.FailureDecay != 30 || cfg.FailureBackoff != 15*time.Second {
		t.Errorf("missing values not defaulted: %+v", cfg)
	}
}

func TestSupervisorTreeRunsEveryLayer(t *testing.T) {
	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})

	data := newProbe("appender", 0)
	messaging := newProbe("event-sink", 0)
	api := newProbe("http-server", 0)
	tree.AddDataService(data)
	tree.AddMessagingService(messaging)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	data.waitRunning(t)
	messaging.waitRunning(t)
	api.waitRunning(t)

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("ServeBackground error = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("tree did not stop")
	}

	report, err := tree.UnstoppedServiceReport()
	if err != nil {
		t.Fatalf("UnstoppedServiceReport() error = %v", err)
	}
	if len(report) != 0 {
		t.Errorf("unstopped services: %v", report)
	}
}

func TestSupervisorTreeRestartsFailingService(t *testing.T) {
	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})

	flaky := newProbe("event-router", 2)
	stable := newProbe("http-server", 0)
	tree.AddMessagingService(flaky)
	tree.AddAPIService(stable)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	flaky.waitRunning(t)
	stable.waitRunning(t)

	if n := flaky.starts.Load(); n != 3 {
		t.Errorf("flaky starts = %d, want 3", n)
	}
	if n := stable.starts.Load(); n != 1 {
		t.Errorf("stable starts = %d, want 1; failures leaked across layers", n)
	}

	cancel()
	<-errCh
}

func TestSupervisorTreeRemoveMessagingService(t *testing.T) {
	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})

	svc := newProbe("significance-reporter", 0)
	token := tree.AddMessagingService(svc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	svc.waitRunning(t)
	if err := tree.RemoveMessagingService(token); err != nil {
		t.Errorf("RemoveMessagingService() error = %v", err)
	}

	cancel()
	<-errCh
}
