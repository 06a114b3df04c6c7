// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

package api

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sitecheck/internal/checkin"
	"github.com/tomtom215/sitecheck/internal/logging"
	"github.com/tomtom215/sitecheck/internal/validation"
)

// maxBodyBytes bounds request bodies. A 4096-float descriptor fits comfortably.
const maxBodyBytes = 1 << 20

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondError writes {"error": message} merged with details.
func respondError(w http.ResponseWriter, status int, message string, details map[string]interface{}) {
	body := make(map[string]interface{}, len(details)+1)
	for k, v := range details {
		body[k] = v
	}
	body["error"] = message
	respondJSON(w, status, body)
}

// respondServiceError maps orchestrator and validation errors to responses.
// Anything unrecognized becomes a generic 500.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ce *checkin.Error
	if errors.As(err, &ce) {
		if ce.Status >= http.StatusInternalServerError {
			logging.CtxErr(r.Context(), err).Str("kind", string(ce.Kind)).Msg("Request failed")
		}
		respondError(w, ce.Status, ce.Message, ce.Details)
		return
	}

	var ve *validation.RequestValidationError
	if errors.As(err, &ve) {
		respondError(w, http.StatusBadRequest, ve.Error(), map[string]interface{}{"fields": ve.Fields})
		return
	}

	logging.CtxErr(r.Context(), err).Msg("Request failed")
	respondError(w, http.StatusInternalServerError, "internal server error", nil)
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "request body too large", nil)
			return false
		}
		respondError(w, http.StatusBadRequest, "invalid JSON body", nil)
		return false
	}
	return true
}
