// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

/*
Package supervisor runs Reelmood's long-lived services under suture v4.

The tree has three layers, each an independent suture.Supervisor:

	reelmood
	├── data-layer
	│   ├── appender-events
	│   └── appender-assignments
	├── messaging-layer
	│   ├── event-router
	│   ├── event-sink
	│   └── significance-reporter (if REPORTER_ENABLED)
	└── api-layer
	    └── http-server

A service that returns an error is restarted by its layer. Repeated
failures put the layer into backoff (TreeConfig.FailureThreshold,
FailureDecay, FailureBackoff). Canceling the context passed to Serve stops
every service, giving each TreeConfig.ShutdownTimeout to return.

Supervisor events are logged through sutureslog, bridged to zerolog by
logging.NewSlogLogger:

	tree, err := supervisor.NewSupervisorTree(
	    logging.NewSlogLogger(logging.Logger()),
	    supervisor.DefaultTreeConfig(),
	)
	tree.AddAPIService(services.NewHTTPServerService(server, 15*time.Second))
	errCh := tree.ServeBackground(ctx)

The wrappers that adapt components to suture.Service live in the services
subpackage.
*/
package supervisor
