// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sitecheck/internal/config"
	"github.com/tomtom215/sitecheck/internal/logging"
)

func TestChannelPublisher_RoundTrip(t *testing.T) {
	pub := NewChannelPublisher("", nil)
	t.Cleanup(func() { _ = pub.Close() })

	if pub.Topic() != DefaultTopic || pub.Backend() != "channel" {
		t.Fatalf("topic/backend = %s/%s", pub.Topic(), pub.Backend())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	msgs, err := pub.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	reqCtx := logging.ContextWithRequestID(context.Background(), "req-1")
	payload := map[string]interface{}{"workerId": 7, "action": "check-in"}
	if err := pub.Publish(reqCtx, TypeCheckIn, payload); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case msg := <-msgs:
		msg.Ack()
		if got := msg.Metadata.Get(MetadataEventType); got != TypeCheckIn {
			t.Errorf("event_type = %q", got)
		}
		if got := msg.Metadata.Get("request_id"); got != "req-1" {
			t.Errorf("request_id = %q", got)
		}
		env, err := DecodeEnvelope(msg.Payload)
		if err != nil {
			t.Fatalf("DecodeEnvelope() error = %v", err)
		}
		if env.ID != msg.UUID || env.Source != Source || env.Type != TypeCheckIn {
			t.Errorf("envelope = %+v", env)
		}
		var body map[string]interface{}
		if err := json.Unmarshal(env.Payload, &body); err != nil || body["action"] != "check-in" {
			t.Errorf("payload = %s", env.Payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("message not delivered")
	}
}

func TestPublisher_Closed(t *testing.T) {
	pub := NewChannelPublisher("t", nil)
	if err := pub.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := pub.Publish(context.Background(), TypeCheckOut, nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Publish() after close = %v, want ErrClosed", err)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.EventsConfig
		wantNil bool
		wantErr bool
	}{
		{name: "disabled", cfg: config.EventsConfig{Backend: "channel"}, wantNil: true},
		{name: "channel", cfg: config.EventsConfig{Enabled: true, Backend: "channel", Topic: "x"}},
		{name: "default backend", cfg: config.EventsConfig{Enabled: true}},
		{name: "unknown backend", cfg: config.EventsConfig{Enabled: true, Backend: "kafka"}, wantNil: true, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if (pub == nil) != tt.wantNil {
				t.Fatalf("New() = %v, wantNil %v", pub, tt.wantNil)
			}
			if pub != nil {
				_ = pub.Close()
			}
		})
	}
}

func TestEnvelope(t *testing.T) {
	if _, err := NewEnvelope("", nil); err == nil {
		t.Error("NewEnvelope() without type should fail")
	}
	if _, err := NewEnvelope(TypeCheckIn, func() {}); err == nil {
		t.Error("NewEnvelope() with unmarshalable payload should fail")
	}
	if _, err := DecodeEnvelope([]byte(`{"id":"x"}`)); err == nil {
		t.Error("DecodeEnvelope() without type should fail")
	}
	if _, err := DecodeEnvelope([]byte(`not json`)); err == nil {
		t.Error("DecodeEnvelope() of garbage should fail")
	}
}
