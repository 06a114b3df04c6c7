// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

package alerts

import "context"

// MessageTypeAlert is the websocket message type carrying an alert.
const MessageTypeAlert = "security_alert"

// Broadcaster pushes typed JSON messages to connected dashboards.
type Broadcaster interface {
	BroadcastJSON(messageType string, data interface{})
}

// BroadcastNotifier forwards alerts to the live websocket feed.
type BroadcastNotifier struct {
	broadcaster Broadcaster
}

// NewBroadcastNotifier creates a notifier over b.
func NewBroadcastNotifier(b Broadcaster) *BroadcastNotifier {
	return &BroadcastNotifier{broadcaster: b}
}

func (n *BroadcastNotifier) Name() string  { return "broadcast" }
func (n *BroadcastNotifier) Enabled() bool { return n.broadcaster != nil }

// Send queues the alert for every connected client.
func (n *BroadcastNotifier) Send(_ context.Context, alert *Alert) error {
	n.broadcaster.BroadcastJSON(MessageTypeAlert, alert)
	return nil
}

// Publisher emits domain events to the message bus.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
}

// EventNotifier publishes alerts as domain events.
type EventNotifier struct {
	publisher Publisher
}

// NewEventNotifier creates a notifier over p.
func NewEventNotifier(p Publisher) *EventNotifier {
	return &EventNotifier{publisher: p}
}

func (n *EventNotifier) Name() string  { return "events" }
func (n *EventNotifier) Enabled() bool { return n.publisher != nil }

// Send publishes the alert.
func (n *EventNotifier) Send(ctx context.Context, alert *Alert) error {
	return n.publisher.Publish(ctx, MessageTypeAlert, alert)
}
