// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmood/internal/api"
	"github.com/tomtom215/reelmood/internal/config"
	"github.com/tomtom215/reelmood/internal/database"
	"github.com/tomtom215/reelmood/internal/eventprocessor"
	"github.com/tomtom215/reelmood/internal/experiment"
	"github.com/tomtom215/reelmood/internal/mood"
	"github.com/tomtom215/reelmood/internal/recommend"
	"github.com/tomtom215/reelmood/internal/supervisor"
	"github.com/tomtom215/reelmood/internal/supervisor/services"
	"github.com/tomtom215/reelmood/internal/textanalysis"
)

// app holds every wired component. Long-running parts are started by
// addServices; everything else is ready once newApp returns.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger

	db          *database.DB
	assignments experiment.AssignmentStore
	pipeline    *eventprocessor.Pipeline
	manager     *experiment.Manager
	analyzer    *experiment.Analyzer
	recommender *recommend.Engine
	handler     http.Handler
}

// newApp opens storage, builds the event pipeline and registers the
// configured experiments. On error everything opened so far is closed.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func newApp(cfg *config.Config, logger zerolog.Logger) (a *app, err error) {
	a = &app{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			_ = a.Close(context.Background()) //nolint:errcheck // already failing
			a = nil
		}
	}()

	if a.db, err = database.New(&cfg.Database, logger); err != nil {
		return a, fmt.Errorf("database: %w", err)
	}

	if a.assignments, err = openAssignmentStore(&cfg.Assignments); err != nil {
		return a, fmt.Errorf("assignment store: %w", err)
	}

	epCfg := eventProcessorConfig(&cfg.Events)
	if a.pipeline, err = eventprocessor.NewPipeline(&epCfg, a.db, logger); err != nil {
		return a, fmt.Errorf("event pipeline: %w", err)
	}

	a.manager = experiment.NewManager(experiment.Options{
		AssignmentStore:    a.assignments,
		RandomSource:       experiment.NewRandomSource(cfg.Random.Seed),
		EventSink:          a.pipeline.Sink,
		AssignmentRecorder: a.pipeline.Sink,
		Logger:             logger,
	})
	if err = a.manager.RegisterDefinitions(cfg.ExperimentDefinitions()); err != nil {
		return a, fmt.Errorf("register experiments: %w", err)
	}

	a.analyzer = experiment.NewAnalyzer(a.db, logger)

	if a.recommender, err = newRecommender(cfg, logger); err != nil {
		return a, fmt.Errorf("recommender: %w", err)
	}

	h := api.NewHandler(api.HandlerDeps{
		Experiments:  a.manager,
		Reporter:     a.analyzer,
		Recommender:  a.recommender,
		Health:       a.db,
		QueryTimeout: cfg.Server.QueryTimeout,
	})
	a.handler = api.NewRouter(h, middlewareConfig(&cfg.Server), logger)
	return a, nil
}

// newRecommender wires text analysis, the memoizing mood classifier and
// the ranking engine.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func newRecommender(cfg *config.Config, logger zerolog.Logger) (*recommend.Engine, error) {
	classifier, err := mood.NewClassifier(textanalysis.New(nil), mood.Config{
		CacheSize: cfg.Mood.CacheSize,
		CacheTTL:  cfg.Mood.CacheTTL,
	}, logger)
	if err != nil {
		return nil, err
	}
	return recommend.NewEngine(&cfg.Recommend, classifier, logger)
}

// openAssignmentStore returns the sticky assignment store for cfg.Backend.
func openAssignmentStore(cfg *config.AssignmentsConfig) (experiment.AssignmentStore, error) {
	switch cfg.Backend {
	case config.AssignmentBackendBadger:
		store, err := experiment.OpenBadgerStore(cfg.BadgerPath)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return experiment.NewMemoryStore(), nil
	}
}

// eventProcessorConfig maps the events section onto pipeline settings.
// Values the file format does not expose keep their pipeline defaults.
func eventProcessorConfig(ev *config.EventsConfig) eventprocessor.Config {
	c := eventprocessor.DefaultConfig()
	c.Transport = ev.Transport
	c.NATSURL = ev.NATSURL
	c.Topic = ev.Topic
	c.AssignmentTopic = ev.AssignmentTopic
	c.QueueSize = ev.QueueSize
	c.Workers = ev.Workers
	c.PublishTimeout = ev.PublishTimeout

	c.Appender.BatchSize = ev.BatchSize
	c.Appender.FlushInterval = ev.FlushInterval

	c.Router.RetryMaxRetries = ev.RetryCount
	if ev.RetryInitialInterval > 0 {
		c.Router.RetryInitialInterval = ev.RetryInitialInterval
	}
	c.Router.DeduplicationTTL = ev.DeduplicationTTL
	if ev.CloseTimeout > 0 {
		c.Router.CloseTimeout = ev.CloseTimeout
		c.NATS.CloseTimeout = ev.CloseTimeout
	}

	c.CircuitBreaker.MaxRequests = ev.CircuitBreaker.MaxRequests
	c.CircuitBreaker.Interval = ev.CircuitBreaker.Interval
	c.CircuitBreaker.Timeout = ev.CircuitBreaker.Timeout
	c.CircuitBreaker.FailureThreshold = ev.CircuitBreaker.FailureThreshold

	if ev.DurableName != "" {
		c.NATS.DurableName = ev.DurableName
	}
	if ev.QueueGroup != "" {
		c.NATS.QueueGroup = ev.QueueGroup
	}
	return c
}

func middlewareConfig(s *config.ServerConfig) api.MiddlewareConfig {
	return api.MiddlewareConfig{
		CORSAllowedOrigins: s.CORSOrigins,
		RateLimitRequests:  s.RateLimitRequests,
		RateLimitWindow:    s.RateLimitWindow,
		RateLimitDisabled:  s.RateLimitDisabled,
	}
}

// addServices puts the long-running components under tree.
func (a *app) addServices(tree *supervisor.SupervisorTree) {
	tree.AddDataService(a.pipeline.EventAppender)
	tree.AddDataService(a.pipeline.AssignmentAppender)

	// A watermill router cannot be run twice.
	tree.AddMessagingService(services.NewOnceService(a.pipeline.Router, a.logger))
	tree.AddMessagingService(a.pipeline.Sink)
	if a.cfg.Reporter.Enabled {
		reporter := services.NewReporterService(a.manager, a.analyzer, a.cfg.Reporter.Interval, a.logger)
		if counter, ok := a.assignments.(experiment.AssignmentCounter); ok {
			reporter.WithAssignmentCounter(counter)
		}
		tree.AddMessagingService(reporter)
	}

	server := &http.Server{
		Addr:              a.cfg.Server.Address,
		Handler:           a.handler,
		ReadTimeout:       a.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: a.cfg.Server.ReadTimeout,
		WriteTimeout:      a.cfg.Server.WriteTimeout,
		IdleTimeout:       2 * time.Minute,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, a.cfg.Server.ShutdownTimeout))
}

// Close releases the pipeline, the assignment store and the database, in
// that order. It is safe on a partially built app.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	if a.pipeline != nil {
		errs = append(errs, a.pipeline.Close(ctx))
	}
	if c, ok := a.assignments.(interface{ Close() error }); ok {
		errs = append(errs, c.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
