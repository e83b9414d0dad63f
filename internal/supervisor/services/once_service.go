// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

// OnceService runs a service that cannot be started a second time, such as
// a watermill router. When the inner service fails, the failure is logged
// and the supervisor is told not to restart it.
type OnceService struct {
	inner  suture.Service
	logger zerolog.Logger
}

// NewOnceService wraps inner.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewOnceService(inner suture.Service, logger zerolog.Logger) *OnceService {
	return &OnceService{
		inner:  inner,
		logger: logger.With().Str("service", fmt.Sprint(inner)).Logger(),
	}
}

// Serve implements suture.Service.
func (s *OnceService) Serve(ctx context.Context) error {
	err := s.inner.Serve(ctx)
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	s.logger.Error().Err(err).Msg("Service stopped and cannot be restarted")
	return suture.ErrDoNotRestart
}

// String reports the inner service's name.
func (s *OnceService) String() string {
	return fmt.Sprint(s.inner)
}
