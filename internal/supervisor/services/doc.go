// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

/*
Package services adapts Reelmood components to suture.Service.

  - HTTPServerService: ListenAndServe until cancel, then Shutdown with a timeout
  - OnceService: runs a service that cannot be restarted, such as the
    watermill router, and returns suture.ErrDoNotRestart on failure
  - ReporterService: periodic chi-square report for every experiment,
    exported as reelmood_experiment_* gauges

The event sink and batch appenders already implement suture.Service and
are added to the tree directly.
*/
package services
