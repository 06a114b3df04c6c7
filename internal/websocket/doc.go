// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

/*
Package websocket pushes live security alerts to connected admin dashboards.

A single Hub owns the set of connected clients and fans every broadcast out
to them. Each Client runs a read pump (answering ping messages and detecting
disconnects) and a write pump (delivering messages and keepalive pings).

	hub := websocket.NewHub()
	go hub.RunWithContext(ctx)
	hub.BroadcastJSON("security_alert", alert)

Broadcasts never block the caller. When the hub's queue or a client's send
buffer is full the message is dropped for that client and the slow client is
disconnected.
*/
package websocket
