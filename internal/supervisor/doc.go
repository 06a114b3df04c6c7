// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

/*
Package supervisor runs Sitecheck's long-lived services under a suture v4
supervisor tree.

	sitecheck (root)
	├── storage-layer    challenge store value-log GC, audit retention
	├── messaging-layer  WebSocket alert hub
	└── api-layer        HTTP server

A service that returns an error or panics is restarted by its layer with
backoff. Failures stay inside their layer, so a crashing alert hub does not
take down check-in handling.

Supervisor events are logged through sutureslog using the slog handler from
the logging package, so restarts appear in the same zerolog stream as the
rest of the process:

	tree, err := supervisor.NewSupervisorTree(slog.New(logging.NewSlogHandler()), supervisor.TreeConfig{})
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	err = tree.Serve(ctx)
*/
package supervisor
