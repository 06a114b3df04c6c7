// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/sitecheck/internal/auth"
	"github.com/tomtom215/sitecheck/internal/authz"
	"github.com/tomtom215/sitecheck/internal/middleware"
)

// Router assembles the HTTP surface.
type Router struct {
	handler       *Handler
	authn         *auth.Middleware
	authz         *authz.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router. authn and authz may be nil, in which case the
// admin routes are not mounted.
func NewRouter(handler *Handler, authn *auth.Middleware, authzMw *authz.Middleware, cfg *ChiMiddlewareConfig) *Router {
	return &Router{
		handler:       handler,
		authn:         authn,
		authz:         authzMw,
		chiMiddleware: NewChiMiddleware(cfg),
	}
}

// Setup builds the chi route tree.
func (router *Router) Setup() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(middleware.PrometheusMetrics)

	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitFor(RateLimitHealth))
		r.Get("/health/live", h.HealthLive)
		r.Get("/health/ready", h.HealthReady)
		r.Handle("/metrics", promhttp.Handler())
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders())

		r.Route("/checkin", func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitFor(RateLimitCheckin))
			r.Post("/", h.CheckIn)
			r.Post("/fingerprint/options", h.FingerprintOptions)
		})

		r.With(router.chiMiddleware.RateLimitFor(RateLimitLogin)).Post("/auth/login", h.Login)

		if router.authn == nil || router.authz == nil {
			return
		}

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Use(router.authn.Authenticate)
			r.Use(router.authz.Authorize)

			r.Get("/ws", h.WebSocket)

			r.Get("/alerts", h.ListAlerts)
			r.Get("/alerts/{id}", h.GetAlert)
			r.Post("/alerts/{id}/read", h.MarkAlertRead)
			r.Post("/alerts/{id}/resolve", h.ResolveAlert)

			r.Get("/workers/{id}/attendance", h.WorkerAttendance)
			r.Post("/workers/{id}/face-embeddings", h.AddFaceEmbedding)
			r.Post("/workers/{id}/webauthn/register/begin", h.BeginWebAuthnRegistration)
			r.Post("/workers/{id}/webauthn/register/finish", h.FinishWebAuthnRegistration)

			r.Get("/audit", h.ListAudit)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, "not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	})
	return r
}
