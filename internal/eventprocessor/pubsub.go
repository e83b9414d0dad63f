// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package eventprocessor

import (
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"
)

// StreamName is the JetStream stream holding both experiment topics.
const StreamName = "REELMOOD_EXPERIMENTS"

// PubSub is a watermill publisher and subscriber over one transport.
type PubSub struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
}

// Close closes the publisher and then the subscriber.
func (p *PubSub) Close() error {
	pubErr := p.Publisher.Close()
	if p.Subscriber == nil {
		return pubErr
	}
	// gochannel uses one value for both sides; closing twice is a no-op.
	return errors.Join(pubErr, p.Subscriber.Close())
}

// NewPubSub builds the transport named by cfg.Transport.
func NewPubSub(cfg *Config, logger watermill.LoggerAdapter) (*PubSub, error) {
	switch cfg.Transport {
	case TransportChannel:
		return NewChannelPubSub(cfg.QueueSize, logger), nil
	case TransportNATS:
		return newNATSPubSub(cfg, logger)
	default:
		return nil, fmt.Errorf("%w: unknown transport %q", ErrInvalidConfig, cfg.Transport)
	}
}

// NewChannelPubSub returns an in-process pub/sub. Messages published while
// no subscriber is attached are discarded.
func NewChannelPubSub(buffer int, logger watermill.LoggerAdapter) *PubSub {
	ch := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: int64(buffer),
	}, logger)
	return &PubSub{Publisher: ch, Subscriber: ch}
}

func newNATSPubSub(cfg *Config, logger watermill.LoggerAdapter) (*PubSub, error) {
	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.NATS.MaxReconnects),
		natsgo.ReconnectWait(cfg.NATS.ReconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	if err := ensureStream(cfg, natsOpts); err != nil {
		return nil, err
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.NATSURL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: false,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create nats publisher: %w", err)
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              cfg.NATSURL,
		QueueGroupPrefix: cfg.NATS.QueueGroup,
		SubscribersCount: cfg.NATS.SubscribersCount,
		AckWaitTimeout:   cfg.NATS.AckWaitTimeout,
		CloseTimeout:     cfg.NATS.CloseTimeout,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: false,
			SubscribeOptions: []natsgo.SubOpt{
				natsgo.BindStream(StreamName),
				natsgo.MaxDeliver(cfg.NATS.MaxDeliver),
				natsgo.AckWait(cfg.NATS.AckWaitTimeout),
				natsgo.DeliverNew(),
			},
			DurablePrefix: cfg.NATS.DurableName,
		},
	}, logger)
	if err != nil {
		_ = pub.Close() //nolint:errcheck // best effort on construction failure
		return nil, fmt.Errorf("create nats subscriber: %w", err)
	}

	return &PubSub{Publisher: pub, Subscriber: sub}, nil
}

// ensureStream creates the JetStream stream for both topics if it is missing.
// Stream names cannot contain dots, so topics are bound to a fixed stream.
func ensureStream(cfg *Config, opts []natsgo.Option) error {
	nc, err := natsgo.Connect(cfg.NATSURL, opts...)
	if err != nil {
		return fmt.Errorf("connect to nats: %w", err)
	}
	defer nc.Close()

	js, err := nc.JetStream()
	if err != nil {
		return fmt.Errorf("open jetstream: %w", err)
	}

	if _, err := js.StreamInfo(StreamName); err == nil {
		return nil
	} else if !errors.Is(err, natsgo.ErrStreamNotFound) {
		return fmt.Errorf("stream info: %w", err)
	}

	_, err = js.AddStream(&natsgo.StreamConfig{
		Name:       StreamName,
		Subjects:   []string{cfg.Topic, cfg.AssignmentTopic},
		Storage:    natsgo.FileStorage,
		MaxAge:     7 * 24 * time.Hour,
		Duplicates: 2 * time.Minute,
	})
	if err != nil {
		return fmt.Errorf("create stream %s: %w", StreamName, err)
	}
	return nil
}
