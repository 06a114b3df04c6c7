// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

// Package biometric verifies that the person checking in is the claimed worker.
//
// Each method (fingerprint, face) is a Verifier strategy behind the same
// contract; new methods plug into a Registry without touching callers.
//
// Trust boundary: face liveness, anti-spoofing and detection confidence are
// enforced on the capture device. FaceVerifier assumes the descriptor it
// receives has already passed those gates and only compares embeddings.
package biometric

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sitecheck/internal/alerts"
	"github.com/tomtom215/sitecheck/internal/models"
)

// Method identifies a verification strategy.
type Method string

const (
	MethodFingerprint Method = models.MethodFingerprint
	MethodFace        Method = models.MethodFace
)

// VerificationContext carries everything a strategy may need for one attempt.
type VerificationContext struct {
	Worker *models.Worker
	Site   *models.Site

	// Fingerprint: the authenticator assertion as sent by the browser and the
	// challenge it answers.
	Credential json.RawMessage
	Challenge  string

	// Face: the live-captured descriptor.
	FaceDescriptor []float64
}

// Result is the outcome of a verification attempt. Failed attempts return a
// populated Result together with a non-nil error.
type Result struct {
	Verified      bool
	MatchScore    *float64
	FailureReason string
	// Severity is set on failures that warrant an alert.
	Severity alerts.Severity
	// CredentialID is the matched authenticator for fingerprint attempts.
	CredentialID []byte
}

// Verifier is one verification strategy.
type Verifier interface {
	Method() Method
	Verify(ctx context.Context, vc VerificationContext) (Result, error)
}

// Registry maps methods to strategies.
type Registry struct {
	verifiers map[Method]Verifier
}

// NewRegistry builds a registry from the given strategies.
func NewRegistry(verifiers ...Verifier) *Registry {
	r := &Registry{verifiers: make(map[Method]Verifier, len(verifiers))}
	for _, v := range verifiers {
		r.verifiers[v.Method()] = v
	}
	return r
}

// Verify dispatches to the strategy registered for method.
func (r *Registry) Verify(ctx context.Context, method Method, vc VerificationContext) (Result, error) {
	v, ok := r.verifiers[method]
	if !ok {
		return Result{FailureReason: "unsupported method"}, fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
	}
	return v.Verify(ctx, vc)
}

// Supports reports whether a strategy is registered for method.
func (r *Registry) Supports(method Method) bool {
	_, ok := r.verifiers[method]
	return ok
}

func score(v float64) *float64 {
	return &v
}
