// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

// Package testinfra provides container-backed infrastructure for integration tests.
//
// Everything here is behind the integration build tag:
//
//	go test -tags integration ./...
//
// Tests that need Redis start a disposable container:
//
//	func TestSomething(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    rc := testinfra.NewRedisContainer(t)
//	    client := redis.NewClient(&redis.Options{Addr: rc.Addr})
//	}
package testinfra
