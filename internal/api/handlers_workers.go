// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/tomtom215/sitecheck/internal/audit"
	"github.com/tomtom215/sitecheck/internal/database"
	"github.com/tomtom215/sitecheck/internal/logging"
	"github.com/tomtom215/sitecheck/internal/models"
	"github.com/tomtom215/sitecheck/internal/validation"
)

type attendanceListResponse struct {
	Records []models.AttendanceRecord `json:"records"`
	Count   int                       `json:"count"`
	Limit   int                       `json:"limit"`
	Offset  int                       `json:"offset"`
}

// WorkerAttendance handles GET /api/v1/workers/{id}/attendance.
func (h *Handler) WorkerAttendance(w http.ResponseWriter, r *http.Request) {
	if h.attendance == nil {
		respondError(w, http.StatusServiceUnavailable, "attendance history is not available", nil)
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	filter, err := parseAttendanceFilter(id, r.URL.Query())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	records, err := h.attendance.List(r.Context(), filter)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if records == nil {
		records = []models.AttendanceRecord{}
	}
	respondJSON(w, http.StatusOK, attendanceListResponse{
		Records: records,
		Count:   len(records),
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	})
}

type faceEnrollmentRequest struct {
	Vector []float64 `json:"vector" validate:"required,min=1,max=4096,dive,finite"`
	Label  string    `json:"label" validate:"max=64"`
}

// AddFaceEmbedding handles POST /api/v1/workers/{id}/face-embeddings.
// Every embedding of a worker must share one dimension.
func (h *Handler) AddFaceEmbedding(w http.ResponseWriter, r *http.Request) {
	worker, ok := h.enrolledWorker(w, r)
	if !ok {
		return
	}
	var req faceEnrollmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondServiceError(w, r, verr)
		return
	}

	existing, err := h.enrollment.ListEmbeddings(r.Context(), worker.ID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if len(existing) > 0 && len(existing[0].Vector) != len(req.Vector) {
		respondError(w, http.StatusBadRequest,
			fmt.Sprintf("descriptor dimension %d does not match enrolled dimension %d", len(req.Vector), len(existing[0].Vector)),
			nil)
		return
	}

	embedding := &models.FaceEmbedding{WorkerID: worker.ID, Vector: req.Vector, Label: req.Label}
	if err := h.enrollment.AddEmbedding(r.Context(), embedding); err != nil {
		respondServiceError(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().
		Int64("worker_id", worker.ID).
		Int("dimension", len(req.Vector)).
		Msg("Face embedding enrolled")
	h.recordAction(r, audit.EventFaceEnrolled, audit.WorkerTarget(worker.ID), "Face embedding enrolled",
		map[string]interface{}{"dimension": len(req.Vector), "label": req.Label})
	respondJSON(w, http.StatusCreated, embedding)
}

// BeginWebAuthnRegistration handles POST /api/v1/workers/{id}/webauthn/register/begin.
func (h *Handler) BeginWebAuthnRegistration(w http.ResponseWriter, r *http.Request) {
	if h.registrar == nil {
		respondError(w, http.StatusServiceUnavailable, "fingerprint enrollment is not available", nil)
		return
	}
	worker, ok := h.enrolledWorker(w, r)
	if !ok {
		return
	}
	existing, err := h.enrollment.ListCredentials(r.Context(), worker.UserID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	options, err := h.registrar.BeginRegistration(r.Context(), worker, existing)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	h.recordAction(r, audit.EventRegistrationStarted, audit.WorkerTarget(worker.ID), "WebAuthn registration started", nil)
	respondJSON(w, http.StatusOK, options)
}

// FinishWebAuthnRegistration handles POST /api/v1/workers/{id}/webauthn/register/finish.
// The body is the raw attestation response from navigator.credentials.create.
func (h *Handler) FinishWebAuthnRegistration(w http.ResponseWriter, r *http.Request) {
	if h.registrar == nil {
		respondError(w, http.StatusServiceUnavailable, "fingerprint enrollment is not available", nil)
		return
	}
	worker, ok := h.enrolledWorker(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, "request body too large", nil)
		return
	}

	cred, err := h.registrar.FinishRegistration(r.Context(), worker, body)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Int64("worker_id", worker.ID).Msg("WebAuthn registration rejected")
		h.recordAction(r, audit.EventCredentialRejected, audit.WorkerTarget(worker.ID), "WebAuthn registration rejected",
			map[string]interface{}{"error": err.Error()})
		respondError(w, http.StatusBadRequest, "registration could not be verified", nil)
		return
	}
	if err := h.enrollment.AddCredential(r.Context(), cred); err != nil {
		respondServiceError(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().Int64("worker_id", worker.ID).Msg("WebAuthn credential enrolled")
	h.recordAction(r, audit.EventCredentialEnrolled, audit.WorkerTarget(worker.ID), "WebAuthn credential enrolled", nil)
	respondJSON(w, http.StatusCreated, cred)
}

// enrolledWorker resolves the {id} worker for enrollment routes.
func (h *Handler) enrolledWorker(w http.ResponseWriter, r *http.Request) (*models.Worker, bool) {
	if h.enrollment == nil {
		respondError(w, http.StatusServiceUnavailable, "enrollment is not available", nil)
		return nil, false
	}
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return nil, false
	}
	worker, err := h.enrollment.GetWorker(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, "worker not found", nil)
		return nil, false
	}
	if err != nil {
		respondServiceError(w, r, err)
		return nil, false
	}
	return worker, true
}
