// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

/*
Package api exposes Sitecheck over HTTP using the chi router.

Public endpoints:

	POST /api/v1/checkin                       verify and record a check-in or check-out
	POST /api/v1/checkin/fingerprint/options   WebAuthn assertion options for a worker
	POST /api/v1/auth/login                    admin login, returns a JWT

Admin endpoints (JWT plus Casbin role policy):

	GET  /api/v1/alerts                        list alerts with filters
	GET  /api/v1/alerts/{id}
	POST /api/v1/alerts/{id}/read
	POST /api/v1/alerts/{id}/resolve
	GET  /api/v1/workers/{id}/attendance
	POST /api/v1/workers/{id}/face-embeddings
	POST /api/v1/workers/{id}/webauthn/register/begin
	POST /api/v1/workers/{id}/webauthn/register/finish
	GET  /api/v1/audit                         admin audit trail (admin role only)
	GET  /api/v1/ws                            live alert feed

Operational endpoints: GET /health/live, GET /health/ready, GET /metrics.

Every error response is a JSON object with an "error" message. Geofence
rejections add distanceMeters, geofenceRadius and verified so the worker can
move closer and retry.
*/
package api
