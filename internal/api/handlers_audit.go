// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

package api

import (
	"net/http"

	"github.com/tomtom215/sitecheck/internal/audit"
	"github.com/tomtom215/sitecheck/internal/auth"
)

type auditListResponse struct {
	Events []audit.Event `json:"events"`
	Count  int           `json:"count"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// ListAudit handles GET /api/v1/audit.
func (h *Handler) ListAudit(w http.ResponseWriter, r *http.Request) {
	if h.audit == nil {
		respondError(w, http.StatusServiceUnavailable, "audit trail is not enabled", nil)
		return
	}
	filter, err := parseAuditFilter(r.URL.Query())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	events, err := h.audit.Query(r.Context(), filter)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	respondJSON(w, http.StatusOK, auditListResponse{
		Events: events,
		Count:  len(events),
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

func (h *Handler) recordAction(r *http.Request, eventType audit.EventType, target audit.Target, description string, metadata map[string]interface{}) {
	if h.audit == nil {
		return
	}
	h.audit.LogAction(r, actorFromRequest(r), eventType, target, description, metadata)
}

func actorFromRequest(r *http.Request) audit.Actor {
	if claims := auth.ClaimsFromContext(r.Context()); claims != nil {
		return audit.Actor{ID: claims.Username, Role: claims.Role}
	}
	return audit.Actor{ID: "anonymous"}
}
