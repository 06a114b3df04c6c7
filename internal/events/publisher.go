// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/tomtom215/sitecheck/internal/config"
	"github.com/tomtom215/sitecheck/internal/logging"
	"github.com/tomtom215/sitecheck/internal/metrics"
)

// DefaultTopic is used when no topic is configured.
const DefaultTopic = "sitecheck.attendance"

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("event publisher is closed")

// Publisher wraps a Watermill publisher for one topic.
type Publisher struct {
	publisher  message.Publisher
	subscriber message.Subscriber // nil unless the backend is in-process
	topic      string
	backend    string

	mu     sync.RWMutex
	closed bool
}

// NewChannelPublisher creates an in-process GoChannel publisher.
func NewChannelPublisher(topic string, logger watermill.LoggerAdapter) *Publisher {
	if logger == nil {
		logger = NewLoggerAdapter()
	}
	if topic == "" {
		topic = DefaultTopic
	}
	ch := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 256,
	}, logger)
	return &Publisher{publisher: ch, subscriber: ch, topic: topic, backend: "channel"}
}

// New builds the publisher selected by cfg. A disabled config returns nil, nil.
func New(cfg config.EventsConfig) (*Publisher, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	switch cfg.Backend {
	case "", "channel":
		return NewChannelPublisher(cfg.Topic, nil), nil
	case "nats":
		return NewNATSPublisher(cfg.NATSURL, cfg.Topic, nil)
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
}

// Topic returns the topic every event is published to.
func (p *Publisher) Topic() string { return p.topic }

// Backend returns channel or nats.
func (p *Publisher) Backend() string { return p.backend }

// Publish wraps payload in an Envelope and publishes it.
func (p *Publisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		metrics.RecordEventPublish(eventType, ErrClosed)
		return ErrClosed
	}

	env, err := NewEnvelope(eventType, payload)
	if err != nil {
		metrics.RecordEventPublish(eventType, err)
		return err
	}
	data, err := json.Marshal(env)
	if err != nil {
		metrics.RecordEventPublish(eventType, err)
		return fmt.Errorf("marshal envelope: %w", err)
	}

	msg := message.NewMessage(env.ID, data)
	msg.Metadata.Set(MetadataEventType, eventType)
	if rid := logging.RequestIDFromContext(ctx); rid != "" {
		msg.Metadata.Set("request_id", rid)
	}
	msg.SetContext(ctx)

	err = p.publisher.Publish(p.topic, msg)
	metrics.RecordEventPublish(eventType, err)
	if err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	return nil
}

// Subscribe returns the stream of published messages. Only the in-process
// backend supports it.
func (p *Publisher) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	if p.subscriber == nil {
		return nil, fmt.Errorf("%s backend does not support local subscriptions", p.backend)
	}
	return p.subscriber.Subscribe(ctx, p.topic)
}

// Close shuts down the underlying publisher.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.publisher.Close()
}
