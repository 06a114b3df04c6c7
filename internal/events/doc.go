// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

// Package events publishes attendance and alert events on a Watermill bus.
//
// The default backend is an in-process GoChannel, which lets other
// components (and tests) subscribe without any broker. Building with
// -tags=nats adds a NATS JetStream backend for deployments that forward
// events to other services.
//
// Every message carries an Envelope as its JSON payload and the event type in
// the "event_type" metadata key.
package events
