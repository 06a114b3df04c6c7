// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/tomtom215/sitecheck/internal/alerts"
	"github.com/tomtom215/sitecheck/internal/audit"
	"github.com/tomtom215/sitecheck/internal/logging"
)

type alertListResponse struct {
	Alerts []alerts.Alert `json:"alerts"`
	Count  int            `json:"count"`
	Unread int            `json:"unread"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// ListAlerts handles GET /api/v1/alerts.
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	if h.alerts == nil {
		respondError(w, http.StatusServiceUnavailable, "alerts are not available", nil)
		return
	}
	filter, err := parseAlertFilter(r.URL.Query())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	list, err := h.alerts.ListAlerts(r.Context(), filter)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	unread, err := h.alerts.CountUnread(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []alerts.Alert{}
	}
	respondJSON(w, http.StatusOK, alertListResponse{
		Alerts: list,
		Count:  len(list),
		Unread: unread,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// GetAlert handles GET /api/v1/alerts/{id}.
func (h *Handler) GetAlert(w http.ResponseWriter, r *http.Request) {
	if h.alerts == nil {
		respondError(w, http.StatusServiceUnavailable, "alerts are not available", nil)
		return
	}
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	alert, err := h.alerts.GetAlert(r.Context(), id)
	if errors.Is(err, alerts.ErrNotFound) {
		respondError(w, http.StatusNotFound, "alert not found", nil)
		return
	}
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, alert)
}

// MarkAlertRead handles POST /api/v1/alerts/{id}/read.
func (h *Handler) MarkAlertRead(w http.ResponseWriter, r *http.Request) {
	if h.alerts == nil {
		respondError(w, http.StatusServiceUnavailable, "alerts are not available", nil)
		return
	}
	h.triage(w, r, audit.EventAlertRead, h.alerts.MarkRead)
}

// ResolveAlert handles POST /api/v1/alerts/{id}/resolve.
func (h *Handler) ResolveAlert(w http.ResponseWriter, r *http.Request) {
	if h.alerts == nil {
		respondError(w, http.StatusServiceUnavailable, "alerts are not available", nil)
		return
	}
	h.triage(w, r, audit.EventAlertResolved, h.alerts.Resolve)
}

func (h *Handler) triage(w http.ResponseWriter, r *http.Request, action audit.EventType, apply func(ctx context.Context, id int64) error) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	err = apply(r.Context(), id)
	if errors.Is(err, alerts.ErrNotFound) {
		respondError(w, http.StatusNotFound, "alert not found", nil)
		return
	}
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	actor := actorFromRequest(r)
	logging.Ctx(r.Context()).Info().
		Int64("alert_id", id).
		Str("action", string(action)).
		Str("username", actor.ID).
		Msg("Alert triaged")
	h.recordAction(r, action, audit.AlertTarget(id), "Alert "+strings.TrimPrefix(string(action), "alert."), nil)

	alert, err := h.alerts.GetAlert(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, alert)
}
