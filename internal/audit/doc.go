// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

/*
Package audit records who did what through the admin API.

Alerts describe what happened at a check-in; audit events describe what an
administrator or supervisor did about it: logging in, triaging alerts and
enrolling worker biometrics. Events are written asynchronously through a
buffered channel so a slow store never delays the request that produced
them, and old events are pruned after the configured retention.

	logger := audit.NewLogger(audit.NewDuckDBStore(db), audit.Config{RetentionDays: 365})
	defer logger.Close()
	logger.Log(&audit.Event{Type: audit.EventAlertResolved, ...})
*/
package audit
