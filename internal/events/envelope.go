// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

package events

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Event types published by Sitecheck.
const (
	TypeCheckIn       = "attendance.check_in"
	TypeCheckOut      = "attendance.check_out"
	TypeSecurityAlert = "security_alert"
)

// Source identifies this service in every envelope.
const Source = "sitecheck"

// MetadataEventType is the message metadata key holding the event type.
const MetadataEventType = "event_type"

// Envelope is the wire format of a published event.
type Envelope struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Source     string          `json:"source"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

// NewEnvelope wraps payload in an envelope with a fresh id.
func NewEnvelope(eventType string, payload interface{}) (*Envelope, error) {
	if eventType == "" {
		return nil, fmt.Errorf("event type is required")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return &Envelope{
		ID:         uuid.New().String(),
		Type:       eventType,
		Source:     Source,
		OccurredAt: time.Now().UTC(),
		Payload:    data,
	}, nil
}

// DecodeEnvelope parses a message payload.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("decode envelope: missing type")
	}
	return &env, nil
}
