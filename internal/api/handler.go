// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-webauthn/webauthn/protocol"

	"github.com/tomtom215/sitecheck/internal/alerts"
	"github.com/tomtom215/sitecheck/internal/audit"
	"github.com/tomtom215/sitecheck/internal/auth"
	"github.com/tomtom215/sitecheck/internal/checkin"
	"github.com/tomtom215/sitecheck/internal/models"
	ws "github.com/tomtom215/sitecheck/internal/websocket"
)

// CheckinService runs check-ins.
type CheckinService interface {
	CheckIn(ctx context.Context, req checkin.Request) (*checkin.Response, error)
	BeginFingerprint(ctx context.Context, workerID int64) (*protocol.CredentialAssertion, error)
}

// AlertStore is the alert triage surface used by admin handlers.
type AlertStore interface {
	GetAlert(ctx context.Context, id int64) (*alerts.Alert, error)
	ListAlerts(ctx context.Context, filter alerts.Filter) ([]alerts.Alert, error)
	MarkRead(ctx context.Context, id int64) error
	Resolve(ctx context.Context, id int64) error
	CountUnread(ctx context.Context) (int, error)
}

// AttendanceReader lists attendance history.
type AttendanceReader interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error)
}

// Enrollment manages worker biometric enrollment.
type Enrollment interface {
	GetWorker(ctx context.Context, id int64) (*models.Worker, error)
	ListCredentials(ctx context.Context, userID int64) ([]models.WebAuthnCredential, error)
	AddCredential(ctx context.Context, c *models.WebAuthnCredential) error
	ListEmbeddings(ctx context.Context, workerID int64) ([]models.FaceEmbedding, error)
	AddEmbedding(ctx context.Context, e *models.FaceEmbedding) error
}

// Registrar runs WebAuthn credential registration ceremonies.
type Registrar interface {
	BeginRegistration(ctx context.Context, worker *models.Worker, existing []models.WebAuthnCredential) (*protocol.CredentialCreation, error)
	FinishRegistration(ctx context.Context, worker *models.Worker, response []byte) (*models.WebAuthnCredential, error)
}

// AuditLog records admin actions and serves the audit trail.
type AuditLog interface {
	LogLogin(r *http.Request, username, role string, ok bool)
	LogAction(r *http.Request, actor audit.Actor, eventType audit.EventType, target audit.Target, description string, metadata map[string]interface{})
	Query(ctx context.Context, filter audit.QueryFilter) ([]audit.Event, error)
}

// Pinger reports storage health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps wires a Handler. Only Checkin is required; routes whose dependency is
// nil answer 503.
type Deps struct {
	Checkin    CheckinService
	Alerts     AlertStore
	Attendance AttendanceReader
	Enrollment Enrollment
	Registrar  Registrar
	Audit      AuditLog
	Admin      *auth.AdminAuthenticator
	JWT        *auth.JWTManager
	Hub        *ws.Hub
	DB         Pinger

	// WebSocketOrigins lists origins allowed to open the alert feed. Empty
	// allows same-origin requests only.
	WebSocketOrigins []string
	// SecureCookies marks the login cookie Secure.
	SecureCookies bool
}

// Handler holds every HTTP handler.
type Handler struct {
	checkin    CheckinService
	alerts     AlertStore
	attendance AttendanceReader
	enrollment Enrollment
	registrar  Registrar
	audit      AuditLog
	admin      *auth.AdminAuthenticator
	jwt        *auth.JWTManager
	hub        *ws.Hub
	db         Pinger

	wsOrigins     []string
	secureCookies bool
	startTime     time.Time
}

// NewHandler creates a Handler.
func NewHandler(d Deps) *Handler {
	return &Handler{
		checkin:       d.Checkin,
		alerts:        d.Alerts,
		attendance:    d.Attendance,
		enrollment:    d.Enrollment,
		registrar:     d.Registrar,
		audit:         d.Audit,
		admin:         d.Admin,
		jwt:           d.JWT,
		hub:           d.Hub,
		db:            d.DB,
		wsOrigins:     d.WebSocketOrigins,
		secureCookies: d.SecureCookies,
		startTime:     time.Now(),
	}
}
