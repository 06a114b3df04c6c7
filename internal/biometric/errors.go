// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

package biometric

import "errors"

var (
	// ErrUnsupportedMethod is returned for a method with no registered strategy.
	ErrUnsupportedMethod = errors.New("unsupported verification method")

	// ErrMethodNotEnabled means the worker has not enabled the requested method.
	ErrMethodNotEnabled = errors.New("verification method not enabled for worker")

	// ErrNoCredentials means the worker's account has no registered authenticator.
	ErrNoCredentials = errors.New("no fingerprint credentials enrolled")

	// ErrCredentialNotFound means the presented authenticator is not registered to the worker.
	ErrCredentialNotFound = errors.New("credential not registered for worker")

	// ErrMalformedAssertion means the fingerprint assertion could not be parsed.
	ErrMalformedAssertion = errors.New("malformed credential assertion")

	// ErrMissingDescriptor means no usable face descriptor was supplied.
	ErrMissingDescriptor = errors.New("face descriptor is required")

	// ErrNoEnrollment means the worker has no enrolled face embeddings.
	ErrNoEnrollment = errors.New("no face enrollment found")

	// ErrVerificationFailed is a biometric mismatch or a rejected assertion.
	// Callers surface it without detail.
	ErrVerificationFailed = errors.New("biometric verification failed")

	// ErrChallengeNotFound means the challenge was never issued, has expired or was already used.
	ErrChallengeNotFound = errors.New("challenge not found or already used")
)
