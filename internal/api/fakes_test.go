// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

package api

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/go-webauthn/webauthn/protocol"

	"github.com/tomtom215/sitecheck/internal/alerts"
	"github.com/tomtom215/sitecheck/internal/audit"
	"github.com/tomtom215/sitecheck/internal/checkin"
	"github.com/tomtom215/sitecheck/internal/database"
	"github.com/tomtom215/sitecheck/internal/models"
)

type fakeCheckin struct {
	resp *checkin.Response
	err  error
	got  checkin.Request

	options  *protocol.CredentialAssertion
	optionID int64
}

func (f *fakeCheckin) CheckIn(_ context.Context, req checkin.Request) (*checkin.Response, error) {
	f.got = req
	return f.resp, f.err
}

func (f *fakeCheckin) BeginFingerprint(_ context.Context, workerID int64) (*protocol.CredentialAssertion, error) {
	f.optionID = workerID
	if workerID <= 0 {
		return nil, &checkin.Error{Kind: checkin.KindValidation, Status: http.StatusBadRequest, Message: "workerId is required"}
	}
	return f.options, nil
}

type fakeAlerts struct {
	mu     sync.Mutex
	alerts map[int64]*alerts.Alert
	filter alerts.Filter
}

func newFakeAlerts(list ...alerts.Alert) *fakeAlerts {
	f := &fakeAlerts{alerts: make(map[int64]*alerts.Alert)}
	for i := range list {
		a := list[i]
		f.alerts[a.ID] = &a
	}
	return f
}

func (f *fakeAlerts) GetAlert(_ context.Context, id int64) (*alerts.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.alerts[id]
	if !ok {
		return nil, alerts.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAlerts) ListAlerts(_ context.Context, filter alerts.Filter) ([]alerts.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filter = filter
	var out []alerts.Alert
	for _, a := range f.alerts {
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeAlerts) MarkRead(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.alerts[id]
	if !ok {
		return alerts.ErrNotFound
	}
	a.IsRead = true
	return nil
}

func (f *fakeAlerts) Resolve(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.alerts[id]
	if !ok {
		return alerts.ErrNotFound
	}
	now := a.CreatedAt
	a.ResolvedAt = &now
	return nil
}

func (f *fakeAlerts) CountUnread(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, a := range f.alerts {
		if !a.IsRead {
			n++
		}
	}
	return n, nil
}

type fakeAttendance struct {
	records []models.AttendanceRecord
	filter  models.AttendanceFilter
}

func (f *fakeAttendance) List(_ context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	f.filter = filter
	return f.records, nil
}

type fakeEnrollment struct {
	workers    map[int64]*models.Worker
	creds      []models.WebAuthnCredential
	embeddings []models.FaceEmbedding
}

func (f *fakeEnrollment) GetWorker(_ context.Context, id int64) (*models.Worker, error) {
	w, ok := f.workers[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return w, nil
}

func (f *fakeEnrollment) ListCredentials(_ context.Context, userID int64) ([]models.WebAuthnCredential, error) {
	var out []models.WebAuthnCredential
	for _, c := range f.creds {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeEnrollment) AddCredential(_ context.Context, c *models.WebAuthnCredential) error {
	c.ID = int64(len(f.creds) + 1)
	f.creds = append(f.creds, *c)
	return nil
}

func (f *fakeEnrollment) ListEmbeddings(_ context.Context, workerID int64) ([]models.FaceEmbedding, error) {
	var out []models.FaceEmbedding
	for _, e := range f.embeddings {
		if e.WorkerID == workerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEnrollment) AddEmbedding(_ context.Context, e *models.FaceEmbedding) error {
	e.ID = int64(len(f.embeddings) + 1)
	f.embeddings = append(f.embeddings, *e)
	return nil
}

type fakeRegistrar struct {
	existing int
	finished []byte
	fail     bool
}

func (f *fakeRegistrar) BeginRegistration(_ context.Context, _ *models.Worker, existing []models.WebAuthnCredential) (*protocol.CredentialCreation, error) {
	f.existing = len(existing)
	return &protocol.CredentialCreation{}, nil
}

func (f *fakeRegistrar) FinishRegistration(_ context.Context, worker *models.Worker, response []byte) (*models.WebAuthnCredential, error) {
	if f.fail {
		return nil, errors.New("attestation rejected")
	}
	f.finished = response
	return &models.WebAuthnCredential{UserID: worker.UserID, CredentialID: []byte("new-device")}, nil
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type fakeAudit struct {
	mu     sync.Mutex
	events []audit.Event
	filter audit.QueryFilter
}

func (f *fakeAudit) LogLogin(_ *http.Request, username, role string, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event := audit.Event{Type: audit.EventAuthSuccess, Actor: audit.Actor{ID: username, Role: role}}
	if !ok {
		event.Type = audit.EventAuthFailure
	}
	f.events = append(f.events, event)
}

func (f *fakeAudit) LogAction(_ *http.Request, actor audit.Actor, eventType audit.EventType, target audit.Target, description string, _ map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, audit.Event{Type: eventType, Actor: actor, Target: &target, Description: description})
}

func (f *fakeAudit) Query(_ context.Context, filter audit.QueryFilter) ([]audit.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filter = filter
	return append([]audit.Event(nil), f.events...), nil
}

func (f *fakeAudit) types() []audit.EventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]audit.EventType, len(f.events))
	for i, e := range f.events {
		out[i] = e.Type
	}
	return out
}
