// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

package audit

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// EventType categorizes audit events.
type EventType string

const (
	EventAuthSuccess EventType = "auth.success"
	EventAuthFailure EventType = "auth.failure"

	EventAlertRead     EventType = "alert.read"
	EventAlertResolved EventType = "alert.resolved"

	EventFaceEnrolled        EventType = "enrollment.face"
	EventCredentialEnrolled  EventType = "enrollment.webauthn"
	EventCredentialRejected  EventType = "enrollment.webauthn_rejected"
	EventRegistrationStarted EventType = "enrollment.webauthn_started"
)

// Severity is the importance of an audit event.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Outcome is the result of the audited action.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Event is one audited action. Events are immutable once saved.
type Event struct {
	ID          string          `json:"id"`
	Timestamp   time.Time       `json:"timestamp"`
	Type        EventType       `json:"type"`
	Severity    Severity        `json:"severity"`
	Outcome     Outcome         `json:"outcome"`
	Actor       Actor           `json:"actor"`
	Target      *Target         `json:"target,omitempty"`
	Source      Source          `json:"source"`
	Action      string          `json:"action"`
	Description string          `json:"description"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	RequestID   string          `json:"request_id,omitempty"`
}

// Actor is who performed the action.
type Actor struct {
	ID   string `json:"id"`
	Role string `json:"role,omitempty"`
}

// Target is what the action was performed on.
type Target struct {
	ID   string `json:"id"`
	Type string `json:"type"` // alert, worker
}

// Source is where the request came from.
type Source struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent,omitempty"`
}

// SourceFromRequest extracts the client address and user agent. RemoteAddr
// is expected to be normalized by chi's RealIP middleware.
func SourceFromRequest(r *http.Request) Source {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	ua := r.UserAgent()
	if len(ua) > 256 {
		ua = ua[:256]
	}
	return Source{IPAddress: strings.TrimSpace(ip), UserAgent: ua}
}

// QueryFilter selects audit events. Results are newest first.
type QueryFilter struct {
	Types     []EventType
	Outcomes  []Outcome
	ActorID   string
	TargetID  string
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int
	Offset    int
}

func mustJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("{}")
	}
	return data
}
