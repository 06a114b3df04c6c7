// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

//go:build !nats

package events

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
)

// NewNATSPublisher returns an error unless built with -tags=nats.
func NewNATSPublisher(_, _ string, _ watermill.LoggerAdapter) (*Publisher, error) {
	return nil, fmt.Errorf("NATS publisher not available: build with -tags=nats")
}
