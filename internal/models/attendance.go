// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

package models

import "time"

// Attendance statuses.
const (
	StatusPresent = "present"
	StatusLate    = "late"
	StatusAbsent  = "absent"
)

// Attendance methods.
const (
	MethodFingerprint = "fingerprint"
	MethodFace        = "face"
)

// AttendanceRecord is a worker's attendance for one calendar day.
// At most one record exists per (WorkerID, WorkDate).
type AttendanceRecord struct {
	ID       int64     `json:"id"`
	WorkerID int64     `json:"workerId"`
	SiteID   int64     `json:"siteId"`
	WorkDate time.Time `json:"date"`

	CheckInTime  time.Time  `json:"checkInTime"`
	CheckOutTime *time.Time `json:"checkOutTime"`
	Status       string     `json:"status"`
	Location     string     `json:"location,omitempty"`

	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	DistanceMeters *float64 `json:"distanceMeters,omitempty"`
	GPSVerified    bool     `json:"gpsVerified"`

	Method         string   `json:"method"`
	MatchScore     *float64 `json:"matchScore"`
	CheckOutMethod string   `json:"checkOutMethod,omitempty"`
	CheckOutScore  *float64 `json:"checkOutScore,omitempty"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// CheckedOut reports whether the record has both timestamps.
func (r *AttendanceRecord) CheckedOut() bool {
	return r != nil && r.CheckOutTime != nil
}

// AttendanceFilter selects attendance history.
type AttendanceFilter struct {
	WorkerID int64
	SiteID   int64
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

// Roles used by the admin API.
const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
)
