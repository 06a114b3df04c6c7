// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

//go:build !nats

package events

import (
	"testing"

	"github.com/tomtom215/sitecheck/internal/config"
)

func TestNATSPublisher_Stub(t *testing.T) {
	if _, err := NewNATSPublisher("nats://localhost:4222", "", nil); err == nil {
		t.Error("stub NewNATSPublisher() should fail")
	}
	if _, err := New(config.EventsConfig{Enabled: true, Backend: "nats"}); err == nil {
		t.Error("New() with nats backend should fail without the nats tag")
	}
}
