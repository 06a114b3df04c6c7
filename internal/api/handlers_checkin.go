// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

package api

import (
	"net/http"

	"github.com/tomtom215/sitecheck/internal/checkin"
)

// CheckIn handles POST /api/v1/checkin.
func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req checkin.Request
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.checkin.CheckIn(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

type fingerprintOptionsRequest struct {
	WorkerID int64 `json:"workerId"`
}

// FingerprintOptions handles POST /api/v1/checkin/fingerprint/options. The
// returned publicKey options go to navigator.credentials.get; the signed
// result comes back as the credential of a fingerprint check-in.
func (h *Handler) FingerprintOptions(w http.ResponseWriter, r *http.Request) {
	var req fingerprintOptionsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	options, err := h.checkin.BeginFingerprint(r.Context(), req.WorkerID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, options)
}
