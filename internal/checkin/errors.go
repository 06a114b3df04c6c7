// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

package checkin

import (
	"errors"
	"net/http"

	"github.com/tomtom215/sitecheck/internal/attendance"
	"github.com/tomtom215/sitecheck/internal/biometric"
)

// Kind classifies a rejected check-in.
type Kind string

const (
	KindValidation         Kind = "validation"
	KindWorkerNotFound     Kind = "worker_not_found"
	KindWorkerInactive     Kind = "worker_inactive"
	KindSiteNotFound       Kind = "site_not_found"
	KindGeofenceViolation  Kind = "geofence_violation"
	KindMethodNotEnabled   Kind = "method_not_enabled"
	KindNoEnrollment       Kind = "no_enrollment"
	KindNoCredentials      Kind = "no_credentials"
	KindCredentialNotFound Kind = "credential_not_found"
	KindMissingDescriptor  Kind = "missing_descriptor"
	KindMalformedAssertion Kind = "malformed_assertion"
	KindVerificationFailed Kind = "verification_failed"
	KindAlreadyCheckedOut  Kind = "already_checked_out"
	KindStorage            Kind = "storage"
)

// Error is a check-in failure with the HTTP status it maps to. Message is
// safe to show the caller; Err is for logs only.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error

	// Details carries caller-facing context such as geofence distance.
	Details map[string]interface{}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// StatusCode maps any error returned by Service to an HTTP status.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Status
	}
	return http.StatusInternalServerError
}

func newError(kind Kind, status int, message string, err error) *Error {
	return &Error{Kind: kind, Status: status, Message: message, Err: err}
}

// verificationError maps a strategy failure. Mismatches are reported without
// detail so the response cannot be used to probe the match threshold.
func verificationError(err error) *Error {
	switch {
	case errors.Is(err, biometric.ErrMethodNotEnabled):
		return newError(KindMethodNotEnabled, http.StatusForbidden, "verification method is not enabled for this worker", err)
	case errors.Is(err, biometric.ErrUnsupportedMethod):
		return newError(KindValidation, http.StatusBadRequest, "unsupported verification method", err)
	case errors.Is(err, biometric.ErrNoEnrollment):
		return newError(KindNoEnrollment, http.StatusNotFound, "no face enrollment found, please enroll first", err)
	case errors.Is(err, biometric.ErrNoCredentials):
		return newError(KindNoCredentials, http.StatusNotFound, "no fingerprint registered, please register a device first", err)
	case errors.Is(err, biometric.ErrCredentialNotFound):
		return newError(KindCredentialNotFound, http.StatusNotFound, "credential not registered for this worker", err)
	case errors.Is(err, biometric.ErrMissingDescriptor):
		return newError(KindMissingDescriptor, http.StatusBadRequest, "faceDescriptor is required", err)
	case errors.Is(err, biometric.ErrMalformedAssertion):
		return newError(KindMalformedAssertion, http.StatusBadRequest, "credential assertion is malformed", err)
	case errors.Is(err, biometric.ErrVerificationFailed), errors.Is(err, biometric.ErrChallengeNotFound):
		return newError(KindVerificationFailed, http.StatusUnauthorized, "verification failed", err)
	default:
		return newError(KindStorage, http.StatusInternalServerError, "internal server error", err)
	}
}

func recordError(err error) *Error {
	if errors.Is(err, attendance.ErrAlreadyCheckedOut) {
		return newError(KindAlreadyCheckedOut, http.StatusConflict, "already checked in and out today", err)
	}
	return newError(KindStorage, http.StatusInternalServerError, "internal server error", err)
}
