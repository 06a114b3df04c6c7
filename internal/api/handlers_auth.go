// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/sitecheck/internal/auth"
	"github.com/tomtom215/sitecheck/internal/logging"
	"github.com/tomtom215/sitecheck/internal/validation"
)

type loginRequest struct {
	Username string `json:"username" validate:"required,max=128"`
	Password string `json:"password" validate:"required,max=256"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Login handles POST /api/v1/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if h.admin == nil || h.jwt == nil {
		respondError(w, http.StatusServiceUnavailable, "admin login is not configured", nil)
		return
	}

	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondServiceError(w, r, verr)
		return
	}

	role, err := h.admin.Authenticate(req.Username, req.Password)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Str("username", req.Username).Msg("Admin login failed")
		if h.audit != nil {
			h.audit.LogLogin(r, req.Username, "", false)
		}
		respondError(w, http.StatusUnauthorized, "invalid username or password", nil)
		return
	}

	token, expires, err := h.jwt.GenerateToken(req.Username, role)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookieName,
		Value:    token,
		Path:     "/api/v1",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
	logging.Ctx(r.Context()).Info().Str("username", req.Username).Str("role", role).Msg("Admin logged in")
	if h.audit != nil {
		h.audit.LogLogin(r, req.Username, role, true)
	}
	respondJSON(w, http.StatusOK, loginResponse{Token: token, Role: role, ExpiresAt: expires})
}
