// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

/*
Package auth authenticates administrators of the Sitecheck admin API.

Administrators log in with a username and password checked against a bcrypt
hash from configuration, and receive an HS256-signed JWT. The Middleware
accepts the token from an "Authorization: Bearer" header or the "token"
cookie (browsers cannot set headers on WebSocket upgrades) and stores the
Claims in the request context for the authz package.

Worker check-in endpoints are not authenticated here. Workers prove their
identity with a biometric factor on every check-in.
*/
package auth
