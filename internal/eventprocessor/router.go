// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package eventprocessor

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/tomtom215/reelmood/internal/cache"
	"github.com/tomtom215/reelmood/internal/metrics"
)

// dedupCapacity bounds the message-ID deduplication cache.
const dedupCapacity = 10000

// lruDeduplicator implements middleware.ExpiringKeyRepository over the LRU.
type lruDeduplicator struct {
	cache *cache.LRU[struct{}]
}

func (d *lruDeduplicator) IsDuplicate(_ context.Context, key string) (bool, error) {
	dup := d.cache.IsDuplicate(key)
	if dup {
		metrics.RecordDeduplicated()
	}
	return dup, nil
}

// Router wraps the watermill router with recovery, retry and message-ID
// deduplication.
type Router struct {
	router *message.Router
	config RouterConfig
	dedup  *lruDeduplicator
}

// NewRouter creates a Router. Middleware runs outer to inner: Recoverer,
// Deduplicator (when DeduplicationTTL > 0), then Retry. Deduplication sits
// outside Retry so retries of one delivery are not mistaken for duplicates.
func NewRouter(cfg RouterConfig, logger watermill.LoggerAdapter) (*Router, error) {
	wmRouter, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: cfg.CloseTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	r := &Router{router: wmRouter, config: cfg}

	wmRouter.AddMiddleware(middleware.Recoverer)

	if cfg.DeduplicationTTL > 0 {
		r.dedup = &lruDeduplicator{cache: cache.NewLRU[struct{}](dedupCapacity, cfg.DeduplicationTTL)}
		dedup := middleware.Deduplicator{
			KeyFactory: func(msg *message.Message) (string, error) {
				return msg.UUID, nil
			},
			Repository: r.dedup,
		}
		wmRouter.AddMiddleware(dedup.Middleware)
	}

	retry := middleware.Retry{
		MaxRetries:      cfg.RetryMaxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     cfg.RetryMaxInterval,
		Multiplier:      cfg.RetryMultiplier,
		Logger:          logger,
	}
	wmRouter.AddMiddleware(retry.Middleware)

	return r, nil
}

// AddConsumerHandler registers a handler that produces no output messages.
func (r *Router) AddConsumerHandler(
	name string,
	topic string,
	subscriber message.Subscriber,
	handler message.NoPublishHandlerFunc,
) *message.Handler {
	return r.router.AddConsumerHandler(name, topic, subscriber, handler)
}

// Serve runs the router until ctx is cancelled.
func (r *Router) Serve(ctx context.Context) error {
	if err := r.router.Run(ctx); err != nil {
		return err
	}
	return ctx.Err()
}

// Running returns a channel closed once all handlers are subscribed.
func (r *Router) Running() <-chan struct{} {
	return r.router.Running()
}

// IsRunning reports whether the router is processing messages.
func (r *Router) IsRunning() bool {
	return r.router.IsRunning()
}

// Close stops the router, waiting up to CloseTimeout for handlers.
func (r *Router) Close() error {
	return r.router.Close()
}

// String implements fmt.Stringer for supervisor logging.
func (r *Router) String() string {
	return "event-router"
}
