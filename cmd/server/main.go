// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/reelmood/internal/config"
	"github.com/tomtom215/reelmood/internal/logging"
	"github.com/tomtom215/reelmood/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logger := logging.Logger()

	logger.Info().
		Str("db_path", cfg.Database.Path).
		Str("assignment_backend", cfg.Assignments.Backend).
		Str("events_transport", cfg.Events.Transport).
		Int("experiments", len(cfg.ExperimentDefinitions())).
		Msg("Starting Reelmood")

	a, err := newApp(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize")
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(logger), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		_ = a.Close(context.Background()) //nolint:errcheck // exiting anyway
		logger.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}
	a.addServices(tree)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info().Str("address", cfg.Server.Address).Msg("Starting supervisor tree")
	if err := <-tree.ServeBackground(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("Supervisor tree stopped with error")
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 { //nolint:errcheck // report only
		for _, svc := range unstopped {
			logger.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = a.Close(closeCtx)
	cancel()
	if err != nil {
		logger.Error().Err(err).Msg("Error during shutdown")
		stop()
		os.Exit(1) //nolint:gocritic // deferred stop already run
	}

	logger.Info().Msg("Reelmood stopped")
}
