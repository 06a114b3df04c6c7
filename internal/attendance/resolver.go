// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

// Package attendance decides whether a verified event is a check-in or a
// check-out and persists it so that each worker has at most one record per day.
package attendance

import (
	"errors"
	"math"
	"time"

	"github.com/tomtom215/sitecheck/internal/models"
)

// Action is the state transition applied by a verified event.
type Action string

const (
	ActionCheckIn  Action = "check-in"
	ActionCheckOut Action = "check-out"
)

// ErrAlreadyCheckedOut is returned for a third verified event on the same day.
// The existing record is left untouched.
var ErrAlreadyCheckedOut = errors.New("already checked out today")

// Resolve decides the transition from today's existing record (nil when none).
func Resolve(existing *models.AttendanceRecord) (Action, error) {
	switch {
	case existing == nil:
		return ActionCheckIn, nil
	case existing.CheckOutTime == nil:
		return ActionCheckOut, nil
	default:
		return "", ErrAlreadyCheckedOut
	}
}

// HoursWorked returns the elapsed hours between check-in and check-out, rounded to 2 decimals.
func HoursWorked(checkIn, checkOut time.Time) float64 {
	return math.Round(checkOut.Sub(checkIn).Hours()*100) / 100
}
