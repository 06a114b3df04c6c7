// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

package alerts

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Severity indicates the severity level of an alert.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Type identifies what raised an alert.
type Type string

const (
	// TypeGPSOutsideGeofence is raised when a check-in is attempted outside the site fence.
	TypeGPSOutsideGeofence Type = "gps_outside_geofence"

	// TypeFaceRecognitionFailed is raised when a face descriptor does not match enrollment.
	TypeFaceRecognitionFailed Type = "face_recognition_failed"

	// TypeFingerprintFailed is raised when a WebAuthn assertion is rejected.
	TypeFingerprintFailed Type = "fingerprint_verification_failed"
)

// Alert is an append-only security or operational event. Only IsRead and
// ResolvedAt change after creation.
type Alert struct {
	ID         int64           `json:"id"`
	Type       Type            `json:"type"`
	Severity   Severity        `json:"severity"`
	WorkerID   *int64          `json:"worker_id,omitempty"`
	SiteID     *int64          `json:"site_id,omitempty"`
	Title      string          `json:"title"`
	Message    string          `json:"message"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	IsRead     bool            `json:"is_read"`
	ResolvedAt *time.Time      `json:"resolved_at,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Filter selects alerts for listing.
type Filter struct {
	Types      []Type
	Severities []Severity
	WorkerID   *int64
	SiteID     *int64
	IsRead     *bool
	Resolved   *bool
	StartDate  *time.Time
	EndDate    *time.Time

	OrderBy        string
	OrderDirection string
	Limit          int
	Offset         int
}

// GeofenceViolation describes a rejected out-of-fence attempt.
type GeofenceViolation struct {
	WorkerID       int64
	WorkerName     string
	SiteID         int64
	SiteName       string
	DistanceMeters float64
	RadiusMeters   float64
	Latitude       float64
	Longitude      float64
}

// NewGeofenceAlert builds the gps_outside_geofence alert for v.
func NewGeofenceAlert(v GeofenceViolation) *Alert {
	return &Alert{
		Type:     TypeGPSOutsideGeofence,
		Severity: SeverityHigh,
		WorkerID: idPtr(v.WorkerID),
		SiteID:   idPtr(v.SiteID),
		Title:    "Check-in outside geofence",
		Message: fmt.Sprintf("%s attempted to check in %.0fm from %s (allowed radius %.0fm)",
			nameOr(v.WorkerName, v.WorkerID), v.DistanceMeters, siteOr(v.SiteName, v.SiteID), v.RadiusMeters),
		Metadata: marshalMetadata(map[string]interface{}{
			"distance":  v.DistanceMeters,
			"radius":    v.RadiusMeters,
			"latitude":  v.Latitude,
			"longitude": v.Longitude,
		}),
	}
}

// VerificationFailure describes a rejected biometric attempt.
type VerificationFailure struct {
	WorkerID   int64
	WorkerName string
	SiteID     int64
	Severity   Severity
	Score      *float64
	Reason     string
}

// NewFaceFailureAlert builds the face_recognition_failed alert for f.
func NewFaceFailureAlert(f VerificationFailure) *Alert {
	sev := f.Severity
	if !sev.Valid() {
		sev = SeverityHigh
	}
	meta := map[string]interface{}{"reason": f.Reason}
	msg := fmt.Sprintf("Face verification failed for %s", nameOr(f.WorkerName, f.WorkerID))
	if f.Score != nil {
		meta["score"] = *f.Score
		msg = fmt.Sprintf("%s (similarity %.2f%%)", msg, *f.Score)
	}
	return &Alert{
		Type:     TypeFaceRecognitionFailed,
		Severity: sev,
		WorkerID: idPtr(f.WorkerID),
		SiteID:   idPtr(f.SiteID),
		Title:    "Face recognition failed",
		Message:  msg,
		Metadata: marshalMetadata(meta),
	}
}

// NewFingerprintFailureAlert builds the fingerprint_verification_failed alert for f.
func NewFingerprintFailureAlert(f VerificationFailure) *Alert {
	return &Alert{
		Type:     TypeFingerprintFailed,
		Severity: SeverityHigh,
		WorkerID: idPtr(f.WorkerID),
		SiteID:   idPtr(f.SiteID),
		Title:    "Fingerprint verification failed",
		Message:  fmt.Sprintf("Fingerprint verification failed for %s: %s", nameOr(f.WorkerName, f.WorkerID), f.Reason),
		Metadata: marshalMetadata(map[string]interface{}{"reason": f.Reason}),
	}
}

func marshalMetadata(m map[string]interface{}) json.RawMessage {
	b, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	return b
}

func idPtr(id int64) *int64 {
	if id <= 0 {
		return nil
	}
	return &id
}

func nameOr(name string, id int64) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("worker %d", id)
}

func siteOr(name string, id int64) string {
	if name != "" {
		return name
	}
	if id > 0 {
		return fmt.Sprintf("site %d", id)
	}
	return "the assigned site"
}
