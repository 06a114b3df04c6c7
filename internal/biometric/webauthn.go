// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

package biometric

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/goccy/go-json"

	"github.com/tomtom215/sitecheck/internal/metrics"
	"github.com/tomtom215/sitecheck/internal/models"
)

// ErrCloneWarning is returned when an authenticator's signature counter did
// not advance, which indicates a replayed or cloned credential.
var ErrCloneWarning = errors.New("authenticator signature counter did not advance")

// WebAuthnConfig holds the relying party identity.
type WebAuthnConfig struct {
	RPID          string
	RPDisplayName string
	RPOrigins     []string
	ChallengeTTL  time.Duration
}

// WebAuthnService runs login and registration ceremonies with go-webauthn.
// It implements AssertionVerifier for FingerprintVerifier.
type WebAuthnService struct {
	wa         *webauthn.WebAuthn
	challenges ChallengeStore
	ttl        time.Duration
}

// NewWebAuthnService creates the relying party.
func NewWebAuthnService(cfg WebAuthnConfig, challenges ChallengeStore) (*WebAuthnService, error) {
	if cfg.ChallengeTTL <= 0 {
		cfg.ChallengeTTL = 2 * time.Minute
	}
	wa, err := webauthn.New(&webauthn.Config{
		RPID:          cfg.RPID,
		RPDisplayName: cfg.RPDisplayName,
		RPOrigins:     cfg.RPOrigins,
		Timeouts: webauthn.TimeoutsConfig{
			Login:        webauthn.TimeoutConfig{Enforce: true, Timeout: cfg.ChallengeTTL},
			Registration: webauthn.TimeoutConfig{Enforce: true, Timeout: cfg.ChallengeTTL},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("configure webauthn relying party: %w", err)
	}
	return &WebAuthnService{wa: wa, challenges: challenges, ttl: cfg.ChallengeTTL}, nil
}

// BeginLogin issues a one-time assertion challenge for the worker's credentials.
func (s *WebAuthnService) BeginLogin(ctx context.Context, worker *models.Worker, creds []models.WebAuthnCredential) (*protocol.CredentialAssertion, error) {
	if len(creds) == 0 {
		return nil, ErrNoCredentials
	}
	assertion, session, err := s.wa.BeginLogin(newWebAuthnUser(worker, creds))
	if err != nil {
		return nil, fmt.Errorf("begin webauthn login: %w", err)
	}
	if err := s.saveSession(ctx, loginChallengePrefix, session); err != nil {
		return nil, err
	}
	return assertion, nil
}

// VerifyAssertion implements AssertionVerifier. The challenge is consumed
// before validation, so a response can be checked at most once.
func (s *WebAuthnService) VerifyAssertion(ctx context.Context, in AssertionInput) (AssertionOutput, error) {
	parsed, err := protocol.ParseCredentialRequestResponseBody(bytes.NewReader(in.Response))
	if err != nil {
		return AssertionOutput{}, fmt.Errorf("%w: %w", ErrMalformedAssertion, err)
	}

	// The session is keyed by the signed client data challenge. A request
	// challenge that disagrees with it is rejected without consuming anything.
	challenge := parsed.Response.CollectedClientData.Challenge
	if in.Challenge != "" && in.Challenge != challenge {
		return AssertionOutput{}, fmt.Errorf("%w: challenge does not match client data", ErrVerificationFailed)
	}
	session, err := s.consumeSession(ctx, loginChallengePrefix, challenge)
	if err != nil {
		return AssertionOutput{}, err
	}

	user := newWebAuthnUser(in.Worker, []models.WebAuthnCredential{in.Credential})
	cred, err := s.wa.ValidateLogin(user, *session, parsed)
	if err != nil {
		return AssertionOutput{}, fmt.Errorf("validate assertion: %w", err)
	}
	if cred.Authenticator.CloneWarning {
		return AssertionOutput{}, ErrCloneWarning
	}
	return AssertionOutput{NewCounter: cred.Authenticator.SignCount}, nil
}

// BeginRegistration issues a creation challenge, excluding already registered authenticators.
func (s *WebAuthnService) BeginRegistration(ctx context.Context, worker *models.Worker, existing []models.WebAuthnCredential) (*protocol.CredentialCreation, error) {
	user := newWebAuthnUser(worker, existing)
	exclusions := make([]protocol.CredentialDescriptor, 0, len(existing))
	for _, c := range user.credentials {
		exclusions = append(exclusions, c.Descriptor())
	}

	creation, session, err := s.wa.BeginRegistration(user, webauthn.WithExclusions(exclusions))
	if err != nil {
		return nil, fmt.Errorf("begin webauthn registration: %w", err)
	}
	if err := s.saveSession(ctx, registrationChallengePrefix, session); err != nil {
		return nil, err
	}
	return creation, nil
}

// FinishRegistration validates an attestation and returns the credential to persist.
func (s *WebAuthnService) FinishRegistration(ctx context.Context, worker *models.Worker, response []byte) (*models.WebAuthnCredential, error) {
	parsed, err := protocol.ParseCredentialCreationResponseBody(bytes.NewReader(response))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedAssertion, err)
	}
	session, err := s.consumeSession(ctx, registrationChallengePrefix, parsed.Response.CollectedClientData.Challenge)
	if err != nil {
		return nil, err
	}

	cred, err := s.wa.CreateCredential(newWebAuthnUser(worker, nil), *session, parsed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVerificationFailed, err)
	}

	transports := make([]string, len(cred.Transport))
	for i, t := range cred.Transport {
		transports[i] = string(t)
	}
	return &models.WebAuthnCredential{
		UserID:          worker.UserID,
		CredentialID:    cred.ID,
		PublicKey:       cred.PublicKey,
		AttestationType: cred.AttestationType,
		AAGUID:          cred.Authenticator.AAGUID,
		Counter:         cred.Authenticator.SignCount,
		Transports:      transports,
		BackupEligible:  cred.Flags.BackupEligible,
		BackupState:     cred.Flags.BackupState,
	}, nil
}

func (s *WebAuthnService) saveSession(ctx context.Context, prefix string, session *webauthn.SessionData) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode webauthn session: %w", err)
	}
	err = s.challenges.Save(ctx, prefix+session.Challenge, data, s.ttl)
	metrics.RecordChallenge(challengeBackend(s.challenges), "save", err)
	if err != nil {
		return fmt.Errorf("store webauthn challenge: %w", err)
	}
	return nil
}

func (s *WebAuthnService) consumeSession(ctx context.Context, prefix, challenge string) (*webauthn.SessionData, error) {
	if challenge == "" {
		return nil, ErrChallengeNotFound
	}
	data, err := s.challenges.Consume(ctx, prefix+challenge)
	metrics.RecordChallenge(challengeBackend(s.challenges), "consume", err)
	if err != nil {
		return nil, err
	}
	var session webauthn.SessionData
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode webauthn session: %w", err)
	}
	return &session, nil
}

// webauthnUser adapts a worker to webauthn.User. The user handle is the
// worker's account id, so all of an account's devices share it.
type webauthnUser struct {
	id          []byte
	name        string
	credentials []webauthn.Credential
}

func newWebAuthnUser(worker *models.Worker, creds []models.WebAuthnCredential) *webauthnUser {
	u := &webauthnUser{
		id:          []byte(strconv.FormatInt(worker.UserID, 10)),
		name:        worker.Name,
		credentials: make([]webauthn.Credential, 0, len(creds)),
	}
	for _, c := range creds {
		u.credentials = append(u.credentials, toLibraryCredential(c))
	}
	return u
}

func (u *webauthnUser) WebAuthnID() []byte                         { return u.id }
func (u *webauthnUser) WebAuthnName() string                       { return u.name }
func (u *webauthnUser) WebAuthnDisplayName() string                { return u.name }
func (u *webauthnUser) WebAuthnIcon() string                       { return "" }
func (u *webauthnUser) WebAuthnCredentials() []webauthn.Credential { return u.credentials }

func toLibraryCredential(c models.WebAuthnCredential) webauthn.Credential {
	transports := make([]protocol.AuthenticatorTransport, len(c.Transports))
	for i, t := range c.Transports {
		transports[i] = protocol.AuthenticatorTransport(t)
	}
	return webauthn.Credential{
		ID:              c.CredentialID,
		PublicKey:       c.PublicKey,
		AttestationType: c.AttestationType,
		Transport:       transports,
		Flags: webauthn.CredentialFlags{
			BackupEligible: c.BackupEligible,
			BackupState:    c.BackupState,
		},
		Authenticator: webauthn.Authenticator{
			AAGUID:    c.AAGUID,
			SignCount: c.Counter,
		},
	}
}
