// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

package attendance

import (
	"time"

	"github.com/tomtom215/sitecheck/internal/models"
)

// Policy derives the attendance day and check-in status from wall-clock time.
//
// The day is the calendar date of the event in Location, so workers near a
// UTC day boundary pair their check-in and check-out on the same local day.
type Policy struct {
	Location  *time.Location
	LateAfter time.Duration // offset from local midnight; zero disables late marking
	Now       func() time.Time
}

// NewPolicy returns a policy for loc. A nil loc means time.Local.
func NewPolicy(loc *time.Location, lateAfter time.Duration) *Policy {
	if loc == nil {
		loc = time.Local
	}
	return &Policy{Location: loc, LateAfter: lateAfter, Now: time.Now}
}

// Day returns the attendance date of t as midnight UTC of its local calendar date.
// UTC midnight keeps the value stable through the DATE column round trip.
func (p *Policy) Day(t time.Time) time.Time {
	y, m, d := t.In(p.Location).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Status classifies a check-in time as present or late.
func (p *Policy) Status(checkIn time.Time) string {
	if p.LateAfter <= 0 {
		return models.StatusPresent
	}
	local := checkIn.In(p.Location)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, p.Location)
	if local.Sub(midnight) > p.LateAfter {
		return models.StatusLate
	}
	return models.StatusPresent
}

// CurrentTime returns the policy clock reading.
func (p *Policy) CurrentTime() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}
