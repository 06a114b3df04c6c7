// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

package biometric

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sitecheck/internal/alerts"
	"github.com/tomtom215/sitecheck/internal/models"
)

// CredentialStore loads and updates registered WebAuthn credentials.
type CredentialStore interface {
	ListCredentials(ctx context.Context, userID int64) ([]models.WebAuthnCredential, error)
	UpdateCounter(ctx context.Context, credentialID []byte, counter uint32) error
}

// AssertionInput is what the WebAuthn primitive needs to check one assertion.
type AssertionInput struct {
	Worker     *models.Worker
	Credential models.WebAuthnCredential
	Response   json.RawMessage
	Challenge  string
}

// AssertionOutput is the primitive's verdict on a valid assertion.
type AssertionOutput struct {
	NewCounter uint32
}

// AssertionVerifier checks signature, challenge, origin, RP ID and signature
// counter of an assertion. A counter that fails to advance past the stored
// value must be rejected here.
type AssertionVerifier interface {
	VerifyAssertion(ctx context.Context, in AssertionInput) (AssertionOutput, error)
}

// FingerprintVerifier verifies WebAuthn assertions from a worker's enrolled devices.
type FingerprintVerifier struct {
	creds      CredentialStore
	assertions AssertionVerifier
	matchScore float64
}

// NewFingerprintVerifier creates the fingerprint strategy. matchScore is the
// fixed confidence reported on success.
func NewFingerprintVerifier(creds CredentialStore, assertions AssertionVerifier, matchScore float64) *FingerprintVerifier {
	if matchScore <= 0 {
		matchScore = 95
	}
	return &FingerprintVerifier{creds: creds, assertions: assertions, matchScore: matchScore}
}

// Method implements Verifier.
func (f *FingerprintVerifier) Method() Method { return MethodFingerprint }

// Verify matches the presented credential to an enrolled one, delegates the
// cryptographic check, then stores the new signature counter.
func (f *FingerprintVerifier) Verify(ctx context.Context, vc VerificationContext) (Result, error) {
	if vc.Worker == nil || !vc.Worker.FingerprintEnabled {
		return Result{FailureReason: "fingerprint not enabled"}, ErrMethodNotEnabled
	}

	creds, err := f.creds.ListCredentials(ctx, vc.Worker.UserID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load credentials: %w", err)
	}
	if len(creds) == 0 {
		return Result{FailureReason: "no fingerprint enrolled"}, ErrNoCredentials
	}

	rawID, err := AssertionCredentialID(vc.Credential)
	if err != nil {
		return Result{FailureReason: "malformed credential"}, err
	}

	var stored *models.WebAuthnCredential
	for i := range creds {
		if bytes.Equal(creds[i].CredentialID, rawID) {
			stored = &creds[i]
			break
		}
	}
	if stored == nil {
		return Result{FailureReason: "credential not registered"}, ErrCredentialNotFound
	}

	out, err := f.assertions.VerifyAssertion(ctx, AssertionInput{
		Worker:     vc.Worker,
		Credential: *stored,
		Response:   vc.Credential,
		Challenge:  vc.Challenge,
	})
	if err != nil {
		res := Result{FailureReason: "fingerprint verification failed", Severity: alerts.SeverityHigh, CredentialID: rawID}
		if errors.Is(err, ErrMalformedAssertion) {
			return res, err
		}
		return res, fmt.Errorf("%w: %w", ErrVerificationFailed, err)
	}

	if err := f.creds.UpdateCounter(ctx, stored.CredentialID, out.NewCounter); err != nil {
		return Result{}, fmt.Errorf("failed to store signature counter: %w", err)
	}

	return Result{Verified: true, MatchScore: score(f.matchScore), CredentialID: rawID}, nil
}

// AssertionCredentialID extracts the credential id from a browser assertion,
// preferring rawId and falling back to id. Both are base64url.
func AssertionCredentialID(raw json.RawMessage) ([]byte, error) {
	if len(raw) == 0 {
		return nil, ErrMalformedAssertion
	}
	var envelope struct {
		ID    string `json:"id"`
		RawID string `json:"rawId"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedAssertion, err)
	}

	encoded := envelope.RawID
	if encoded == "" {
		encoded = envelope.ID
	}
	if encoded == "" {
		return nil, fmt.Errorf("%w: credential id missing", ErrMalformedAssertion)
	}

	id, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(encoded, "="))
	if err != nil {
		return nil, fmt.Errorf("%w: credential id is not base64url: %w", ErrMalformedAssertion, err)
	}
	return id, nil
}
