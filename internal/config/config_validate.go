// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package config

import (
	"fmt"
	"net/url"

	"github.com/tomtom215/reelmood/internal/logging"
	"github.com/tomtom215/reelmood/internal/validation"
)

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	if err := c.validateLogging(); err != nil {
		return err
	}

	if err := c.validateAssignments(); err != nil {
		return err
	}

	if err := c.validateEvents(); err != nil {
		return err
	}

	if err := c.Recommend.Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}

	if err := c.validateExperiments(); err != nil {
		return err
	}

	return c.validateReporter()
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	return nil
}

func (c *Config) validateAssignments() error {
	// An empty Badger path runs Badger in memory, which is allowed but
	// loses assignments on restart.
	if c.Assignments.Backend == AssignmentBackendBadger && c.Assignments.BadgerPath == "" {
		logging.Warn().Msg("assignments.badger_path is empty; assignments will not survive a restart")
	}
	return nil
}

func (c *Config) validateEvents() error {
	if c.Events.Topic == c.Events.AssignmentTopic {
		return fmt.Errorf("events.topic and events.assignment_topic must differ, both are %q", c.Events.Topic)
	}
	if c.Events.Transport != TransportNATS {
		return nil
	}
	if c.Events.NATSURL == "" {
		return fmt.Errorf("NATS_URL is required when EVENTS_TRANSPORT=nats")
	}
	if err := validateNATSURL(c.Events.NATSURL); err != nil {
		return fmt.Errorf("NATS_URL is invalid: %w", err)
	}
	if c.Events.DurableName == "" {
		return fmt.Errorf("events.durable_name is required when EVENTS_TRANSPORT=nats")
	}
	return nil
}

// validateNATSURL accepts nats, tls, ws and wss URLs with a host.
func validateNATSURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}

	switch parsed.Scheme {
	case "nats", "tls", "ws", "wss":
	default:
		return fmt.Errorf("scheme must be nats, tls, ws, or wss, got: %s", parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("host is required (e.g., localhost:4222)")
	}
	return nil
}

// validateExperiments checks what struct tags cannot: weight counts and
// duplicate names across the configured and bootstrap experiments.
func (c *Config) validateExperiments() error {
	seen := make(map[string]struct{})
	for i, def := range c.ExperimentDefinitions() {
		if verr := validation.ValidateStruct(&def); verr != nil {
			return fmt.Errorf("experiment %d (%q): %w", i, def.Name, verr)
		}
		if len(def.Weights) > 0 && len(def.Weights) != len(def.Variants) {
			return fmt.Errorf("experiment %q: %d weights for %d variants", def.Name, len(def.Weights), len(def.Variants))
		}
		if _, dup := seen[def.Name]; dup {
			return fmt.Errorf("experiment %q is defined more than once", def.Name)
		}
		seen[def.Name] = struct{}{}
	}
	return nil
}

func (c *Config) validateReporter() error {
	if c.Reporter.Enabled && c.Reporter.Interval <= 0 {
		return fmt.Errorf("reporter.interval must be positive when the reporter is enabled")
	}
	return nil
}
