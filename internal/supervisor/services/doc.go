// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

// Package services adapts Sitecheck components to suture.Service.
//
// Each wrapper depends on a small interface rather than the concrete type so
// the supervisor package never imports the component packages.
package services
