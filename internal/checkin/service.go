// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

// Package checkin is the unified check-in flow.
//
// One request runs Validate, LoadContext, Geofence, Biometric, Resolve+Persist
// and Respond in that order, stopping at the first failing stage. A geofence
// violation stops the request before any biometric work is done, and nothing
// is persisted unless every earlier stage passed.
package checkin

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/goccy/go-json"

	"github.com/tomtom215/sitecheck/internal/alerts"
	"github.com/tomtom215/sitecheck/internal/attendance"
	"github.com/tomtom215/sitecheck/internal/biometric"
	"github.com/tomtom215/sitecheck/internal/database"
	"github.com/tomtom215/sitecheck/internal/events"
	"github.com/tomtom215/sitecheck/internal/geofence"
	"github.com/tomtom215/sitecheck/internal/logging"
	"github.com/tomtom215/sitecheck/internal/metrics"
	"github.com/tomtom215/sitecheck/internal/models"
	"github.com/tomtom215/sitecheck/internal/validation"
)

// Directory loads the worker context for a check-in.
type Directory interface {
	GetWorker(ctx context.Context, id int64) (*models.Worker, error)
	GetSite(ctx context.Context, id int64) (*models.Site, error)
	ListCredentials(ctx context.Context, userID int64) ([]models.WebAuthnCredential, error)
}

// AlertSink receives alerts raised on rejected attempts. Emit must not block
// on delivery and must not fail the caller.
type AlertSink interface {
	Emit(ctx context.Context, alert *alerts.Alert)
}

// LoginChallenger issues WebAuthn assertion challenges.
type LoginChallenger interface {
	BeginLogin(ctx context.Context, worker *models.Worker, creds []models.WebAuthnCredential) (*protocol.CredentialAssertion, error)
}

// publishTimeout bounds how long a committed check-in waits on the event bus.
const publishTimeout = 2 * time.Second

// EventPublisher receives attendance events after a transition is persisted.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
}

// Request is a check-in attempt.
type Request struct {
	Method   string `json:"method" validate:"required,oneof=fingerprint face"`
	WorkerID int64  `json:"workerId" validate:"required,gt=0"`

	// Fingerprint
	Credential json.RawMessage `json:"credential,omitempty"`
	Challenge  string          `json:"challenge,omitempty" validate:"omitempty,max=512"`

	// Face
	FaceDescriptor []float64 `json:"faceDescriptor,omitempty" validate:"omitempty,max=4096,dive,finite"`

	Latitude  *float64 `json:"latitude,omitempty" validate:"omitempty,finite,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude,omitempty" validate:"omitempty,finite,gte=-180,lte=180"`
}

// Response is the result of an accepted check-in.
type Response struct {
	Success    bool           `json:"success"`
	Action     string         `json:"action"`
	Method     string         `json:"method"`
	Worker     WorkerInfo     `json:"worker"`
	GPS        GPSInfo        `json:"gps"`
	Attendance AttendanceInfo `json:"attendance"`
	Timestamp  time.Time      `json:"timestamp"`
}

// WorkerInfo identifies the worker and the site (group) they checked in at.
type WorkerInfo struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Group    string `json:"group"`
	Location string `json:"location"`
}

// GPSInfo reports the geofence evaluation.
type GPSInfo struct {
	Verified       bool     `json:"verified"`
	DistanceMeters *float64 `json:"distanceMeters"`
	GeofenceRadius float64  `json:"geofenceRadius"`
}

// AttendanceInfo is the day's record after the transition.
type AttendanceInfo struct {
	Date         string     `json:"date"`
	Status       string     `json:"status"`
	CheckInTime  time.Time  `json:"checkInTime"`
	CheckOutTime *time.Time `json:"checkOutTime"`
	HoursWorked  *float64   `json:"hoursWorked"`
	Method       string     `json:"method"`
	MatchScore   *float64   `json:"matchScore"`
}

// Deps wires a Service.
type Deps struct {
	Directory  Directory
	Geofence   *geofence.Evaluator
	Verifiers  *biometric.Registry
	Attendance attendance.Store
	Policy     *attendance.Policy
	Alerts     AlertSink
	Challenger LoginChallenger
	Events     EventPublisher

	// AlertOnFingerprintFailure raises fingerprint_verification_failed alerts.
	AlertOnFingerprintFailure bool
}

// Service runs check-ins.
type Service struct {
	dir        Directory
	fence      *geofence.Evaluator
	verifiers  *biometric.Registry
	store      attendance.Store
	policy     *attendance.Policy
	alerts     AlertSink
	challenger LoginChallenger
	events     EventPublisher

	alertFingerprint bool
}

// NewService creates the orchestrator.
func NewService(d Deps) *Service {
	fence := d.Geofence
	if fence == nil {
		fence = geofence.NewEvaluator(geofence.DefaultRadiusMeters)
	}
	policy := d.Policy
	if policy == nil {
		policy = attendance.NewPolicy(time.UTC, 0)
	}
	return &Service{
		dir:              d.Directory,
		fence:            fence,
		verifiers:        d.Verifiers,
		store:            d.Attendance,
		policy:           policy,
		alerts:           d.Alerts,
		challenger:       d.Challenger,
		events:           d.Events,
		alertFingerprint: d.AlertOnFingerprintFailure,
	}
}

// checkContext is what LoadContext produces.
type checkContext struct {
	worker *models.Worker
	site   *models.Site
}

// CheckIn verifies and records one attendance event.
func (s *Service) CheckIn(ctx context.Context, req Request) (resp *Response, err error) {
	start := time.Now()
	defer func() {
		outcome := ""
		if resp != nil {
			outcome = resp.Action
		} else {
			var ce *Error
			if errors.As(err, &ce) {
				outcome = string(ce.Kind)
			} else {
				outcome = string(KindStorage)
			}
		}
		metrics.RecordCheckin(methodLabel(req.Method), outcome, time.Since(start))
	}()

	if verr := validation.ValidateStruct(&req); verr != nil {
		ce := newError(KindValidation, http.StatusBadRequest, verr.Error(), verr)
		return nil, ce
	}
	ctx = logging.ContextWithWorkerID(ctx, req.WorkerID)

	cc, err := s.loadContext(ctx, req.WorkerID)
	if err != nil {
		return nil, err
	}

	fence := s.evaluateFence(ctx, cc, req)
	if fence.Violation() {
		return nil, s.rejectOutsideFence(ctx, cc, req, fence)
	}

	result, err := s.verify(ctx, cc, req)
	if err != nil {
		return nil, err
	}

	now := s.policy.CurrentTime()
	outcome, err := s.store.Record(ctx, s.buildEvent(cc, req, fence, result, now))
	if err != nil {
		ce := recordError(err)
		if ce.Kind == KindStorage {
			logging.CtxErr(ctx, err).Msg("Failed to record attendance")
		} else {
			logging.Ctx(ctx).Info().Str("method", req.Method).Msg("Check-in rejected, already checked out today")
		}
		return nil, ce
	}

	logging.Ctx(ctx).Info().
		Str("action", string(outcome.Action)).
		Str("method", req.Method).
		Bool("gps_verified", fence.Evaluated && fence.WithinFence).
		Msg("Attendance recorded")

	resp = buildResponse(cc, req, fence, outcome, now)
	s.publish(ctx, resp)
	return resp, nil
}

// publish announces a persisted transition. The record is already committed,
// so a bus failure is logged and never fails the check-in.
func (s *Service) publish(ctx context.Context, resp *Response) {
	if s.events == nil {
		return
	}
	eventType := events.TypeCheckIn
	if resp.Action == string(attendance.ActionCheckOut) {
		eventType = events.TypeCheckOut
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.events.Publish(pubCtx, eventType, resp); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("event_type", eventType).Msg("Failed to publish attendance event")
	}
}

func (s *Service) loadContext(ctx context.Context, workerID int64) (*checkContext, error) {
	worker, err := s.dir.GetWorker(ctx, workerID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, newError(KindWorkerNotFound, http.StatusNotFound, "worker not found", err)
	}
	if err != nil {
		logging.CtxErr(ctx, err).Msg("Failed to load worker")
		return nil, newError(KindStorage, http.StatusInternalServerError, "internal server error", err)
	}
	if !worker.IsActive {
		return nil, newError(KindWorkerInactive, http.StatusForbidden, "worker is inactive", nil)
	}

	cc := &checkContext{worker: worker}
	if worker.SiteID > 0 {
		site, err := s.dir.GetSite(ctx, worker.SiteID)
		if errors.Is(err, database.ErrNotFound) {
			return nil, newError(KindSiteNotFound, http.StatusNotFound, "assigned site not found", err)
		}
		if err != nil {
			logging.CtxErr(ctx, err).Int64("site_id", worker.SiteID).Msg("Failed to load site")
			return nil, newError(KindStorage, http.StatusInternalServerError, "internal server error", err)
		}
		cc.site = site
	}
	return cc, nil
}

func (s *Service) evaluateFence(ctx context.Context, cc *checkContext, req Request) geofence.Result {
	var anchor *geofence.Point
	var radius float64
	if cc.site != nil {
		anchor = geofence.NewPoint(cc.site.Latitude, cc.site.Longitude)
		radius = cc.site.GeofenceRadius
	}

	res := s.fence.Evaluate(geofence.NewPoint(req.Latitude, req.Longitude), anchor, radius)
	if res.Evaluated {
		metrics.RecordGeofence(res.DistanceMeters, res.WithinFence)
	} else {
		logging.Ctx(ctx).Debug().Bool("site_anchor", anchor != nil).Msg("Geofence skipped, coordinates missing")
	}
	return res
}

func (s *Service) rejectOutsideFence(ctx context.Context, cc *checkContext, req Request, fence geofence.Result) *Error {
	s.emit(ctx, alerts.NewGeofenceAlert(alerts.GeofenceViolation{
		WorkerID:       cc.worker.ID,
		WorkerName:     cc.worker.Name,
		SiteID:         cc.site.ID,
		SiteName:       cc.site.Name,
		DistanceMeters: fence.DistanceMeters,
		RadiusMeters:   fence.RadiusMeters,
		Latitude:       *req.Latitude,
		Longitude:      *req.Longitude,
	}))

	logging.Ctx(ctx).Warn().
		Float64("distance_meters", fence.DistanceMeters).
		Float64("radius_meters", fence.RadiusMeters).
		Msg("Check-in rejected outside geofence")

	ce := newError(KindGeofenceViolation, http.StatusForbidden, "you are outside the site geofence", nil)
	ce.Details = map[string]interface{}{
		"distanceMeters": fence.DistanceMeters,
		"geofenceRadius": fence.RadiusMeters,
		"verified":       false,
	}
	return ce
}

func (s *Service) verify(ctx context.Context, cc *checkContext, req Request) (biometric.Result, error) {
	method := biometric.Method(req.Method)
	result, err := s.verifiers.Verify(ctx, method, biometric.VerificationContext{
		Worker:         cc.worker,
		Site:           cc.site,
		Credential:     req.Credential,
		Challenge:      req.Challenge,
		FaceDescriptor: req.FaceDescriptor,
	})
	if err == nil && !result.Verified {
		err = biometric.ErrVerificationFailed
	}
	if err == nil {
		return result, nil
	}

	ce := verificationError(err)
	metrics.RecordVerificationFailure(req.Method, string(ce.Kind))
	if ce.Kind == KindStorage {
		logging.CtxErr(ctx, err).Str("method", req.Method).Msg("Biometric verification errored")
		return result, ce
	}

	logging.Ctx(ctx).Warn().Err(err).Str("method", req.Method).Str("reason", result.FailureReason).Msg("Biometric verification rejected")

	if ce.Kind == KindVerificationFailed {
		failure := alerts.VerificationFailure{
			WorkerID:   cc.worker.ID,
			WorkerName: cc.worker.Name,
			SiteID:     siteID(cc.site),
			Severity:   result.Severity,
			Score:      result.MatchScore,
			Reason:     result.FailureReason,
		}
		switch method {
		case biometric.MethodFace:
			s.emit(ctx, alerts.NewFaceFailureAlert(failure))
		case biometric.MethodFingerprint:
			if s.alertFingerprint {
				s.emit(ctx, alerts.NewFingerprintFailureAlert(failure))
			}
		}
	}
	return result, ce
}

func (s *Service) buildEvent(cc *checkContext, req Request, fence geofence.Result, result biometric.Result, now time.Time) attendance.Event {
	ev := attendance.Event{
		WorkerID:    cc.worker.ID,
		SiteID:      siteID(cc.site),
		At:          now,
		Day:         s.policy.Day(now),
		Status:      s.policy.Status(now),
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		GPSVerified: fence.Evaluated && fence.WithinFence,
		Method:      req.Method,
		MatchScore:  result.MatchScore,
	}
	if cc.site != nil {
		ev.Location = cc.site.Location
	}
	if fence.Evaluated {
		d := fence.DistanceMeters
		ev.DistanceMeters = &d
	}
	return ev
}

func buildResponse(cc *checkContext, req Request, fence geofence.Result, outcome *attendance.Outcome, now time.Time) *Response {
	rec := outcome.Record
	resp := &Response{
		Success: true,
		Action:  string(outcome.Action),
		Method:  req.Method,
		Worker: WorkerInfo{
			ID:   cc.worker.ID,
			Name: cc.worker.Name,
		},
		GPS: GPSInfo{
			Verified:       fence.Evaluated && fence.WithinFence,
			GeofenceRadius: fence.RadiusMeters,
		},
		Attendance: AttendanceInfo{
			Date:         rec.WorkDate.Format(time.DateOnly),
			Status:       rec.Status,
			CheckInTime:  rec.CheckInTime,
			CheckOutTime: rec.CheckOutTime,
			Method:       rec.Method,
			MatchScore:   rec.MatchScore,
		},
		Timestamp: now,
	}
	if cc.site != nil {
		resp.Worker.Group = cc.site.Name
		resp.Worker.Location = cc.site.Location
	}
	if fence.Evaluated {
		d := fence.DistanceMeters
		resp.GPS.DistanceMeters = &d
	}
	if outcome.Action == attendance.ActionCheckOut && rec.CheckOutTime != nil {
		h := attendance.HoursWorked(rec.CheckInTime, *rec.CheckOutTime)
		resp.Attendance.HoursWorked = &h
		resp.Attendance.Method = rec.CheckOutMethod
		resp.Attendance.MatchScore = rec.CheckOutScore
	}
	return resp
}

// BeginFingerprint issues the WebAuthn assertion options a worker's device
// must sign for a fingerprint check-in.
func (s *Service) BeginFingerprint(ctx context.Context, workerID int64) (*protocol.CredentialAssertion, error) {
	if workerID <= 0 {
		return nil, newError(KindValidation, http.StatusBadRequest, "workerId is required", nil)
	}
	if s.challenger == nil {
		return nil, newError(KindMethodNotEnabled, http.StatusForbidden, "fingerprint verification is not configured", nil)
	}
	ctx = logging.ContextWithWorkerID(ctx, workerID)

	cc, err := s.loadContext(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if !cc.worker.FingerprintEnabled {
		return nil, verificationError(biometric.ErrMethodNotEnabled)
	}

	creds, err := s.dir.ListCredentials(ctx, cc.worker.UserID)
	if err != nil {
		logging.CtxErr(ctx, err).Msg("Failed to load credentials")
		return nil, newError(KindStorage, http.StatusInternalServerError, "internal server error", err)
	}
	if len(creds) == 0 {
		return nil, verificationError(biometric.ErrNoCredentials)
	}

	assertion, err := s.challenger.BeginLogin(ctx, cc.worker, creds)
	if err != nil {
		logging.CtxErr(ctx, err).Msg("Failed to issue fingerprint challenge")
		return nil, newError(KindStorage, http.StatusInternalServerError, "internal server error", err)
	}
	return assertion, nil
}

func (s *Service) emit(ctx context.Context, alert *alerts.Alert) {
	if s.alerts == nil {
		return
	}
	s.alerts.Emit(ctx, alert)
}

// methodLabel keeps unvalidated input out of metric labels.
func methodLabel(method string) string {
	switch method {
	case models.MethodFingerprint, models.MethodFace:
		return method
	}
	return "invalid"
}

func siteID(site *models.Site) int64 {
	if site == nil {
		return 0
	}
	return site.ID
}
