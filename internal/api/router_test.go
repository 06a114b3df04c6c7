// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/sitecheck/internal/audit"
	"github.com/tomtom215/sitecheck/internal/auth"
	"github.com/tomtom215/sitecheck/internal/authz"
	"github.com/tomtom215/sitecheck/internal/checkin"
	"github.com/tomtom215/sitecheck/internal/config"
	"github.com/tomtom215/sitecheck/internal/models"
)

const routerTestSecret = "router-test-secret-with-at-least-32-chars"

type routerFixture struct {
	handler http.Handler
	jwt     *auth.JWTManager
	alerts  *fakeAlerts
	enroll  *fakeEnrollment
	audit   *fakeAudit
}

func newRouterFixture(t *testing.T, cfg *ChiMiddlewareConfig) *routerFixture {
	t.Helper()
	jwtManager, err := auth.NewJWTManager(&config.SecurityConfig{JWTSecret: routerTestSecret, SessionTimeout: time.Hour})
	if err != nil {
		t.Fatal(err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	admin, err := auth.NewAdminAuthenticator("admin", string(hash))
	if err != nil {
		t.Fatal(err)
	}
	enforcer, err := authz.NewEnforcer("")
	if err != nil {
		t.Fatal(err)
	}

	f := &routerFixture{jwt: jwtManager, alerts: newFakeAlerts(sampleAlerts()...), enroll: newEnrollment(), audit: &fakeAudit{}}
	h := NewHandler(Deps{
		Checkin:    &fakeCheckin{resp: &checkin.Response{Success: true, Action: "check_in"}},
		Alerts:     f.alerts,
		Attendance: &fakeAttendance{},
		Enrollment: f.enroll,
		Registrar:  &fakeRegistrar{},
		Audit:      f.audit,
		Admin:      admin,
		JWT:        jwtManager,
		DB:         fakePinger{},
	})
	f.handler = NewRouter(h, auth.NewMiddleware(jwtManager), authz.NewMiddleware(enforcer), cfg).Setup()
	return f
}

func (f *routerFixture) token(t *testing.T, role string) string {
	t.Helper()
	token, _, err := f.jwt.GenerateToken(role+"-user", role)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func (f *routerFixture) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestRouter_PublicRoutes(t *testing.T) {
	f := newRouterFixture(t, nil)

	tests := []struct {
		method, path, body string
		status             int
	}{
		{http.MethodPost, "/api/v1/checkin", `{"method":"face","workerId":1}`, http.StatusOK},
		{http.MethodPost, "/api/v1/checkin/fingerprint/options", `{"workerId":1}`, http.StatusOK},
		{http.MethodGet, "/health/live", "", http.StatusOK},
		{http.MethodGet, "/health/ready", "", http.StatusOK},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodGet, "/api/v1/checkin", "", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/v1/nope", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := f.do(tt.method, tt.path, "", tt.body)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			if rec.Header().Get("X-Request-ID") == "" {
				t.Error("missing X-Request-ID")
			}
		})
	}
}

func TestRouter_SecurityHeaders(t *testing.T) {
	f := newRouterFixture(t, nil)
	rec := f.do(http.MethodPost, "/api/v1/checkin", "", `{"method":"face","workerId":1}`)
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" || rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Errorf("security headers missing: %v", rec.Header())
	}
}

func TestRouter_LoginFlow(t *testing.T) {
	f := newRouterFixture(t, nil)

	rec := f.do(http.MethodPost, "/api/v1/auth/login", "", `{"username":"admin","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password status = %d", rec.Code)
	}
	rec = f.do(http.MethodPost, "/api/v1/auth/login", "", `{"username":"admin"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing password status = %d", rec.Code)
	}

	rec = f.do(http.MethodPost, "/api/v1/auth/login", "", `{"username":"admin","password":"correct horse"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	token, _ := body["token"].(string)
	if token == "" || body["role"] != models.RoleAdmin {
		t.Fatalf("login body = %v", body)
	}

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.TokenCookieName {
			cookie = c
		}
	}
	if cookie == nil || !cookie.HttpOnly || cookie.Path != "/api/v1" {
		t.Fatalf("token cookie = %+v", cookie)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts", nil)
	req.AddCookie(cookie)
	out := httptest.NewRecorder()
	f.handler.ServeHTTP(out, req)
	if out.Code != http.StatusOK {
		t.Errorf("cookie-authenticated list status = %d", out.Code)
	}

	got := f.audit.types()
	if len(got) != 2 || got[0] != audit.EventAuthFailure || got[1] != audit.EventAuthSuccess {
		t.Errorf("audit events = %v, want failure then success", got)
	}
}

func TestRouter_LoginRateLimited(t *testing.T) {
	f := newRouterFixture(t, nil)
	var last int
	for i := 0; i < RateLimitLogin.Requests+1; i++ {
		last = f.do(http.MethodPost, "/api/v1/auth/login", "", `{"username":"admin","password":"wrong"}`).Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("status after %d attempts = %d, want 429", RateLimitLogin.Requests+1, last)
	}
}

func TestRouter_RateLimitDisabled(t *testing.T) {
	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitDisabled = true
	f := newRouterFixture(t, cfg)
	for i := 0; i < RateLimitLogin.Requests+3; i++ {
		if code := f.do(http.MethodPost, "/api/v1/auth/login", "", `{"username":"admin","password":"wrong"}`).Code; code != http.StatusUnauthorized {
			t.Fatalf("attempt %d status = %d", i, code)
		}
	}
}

func TestRouter_AdminAuthorization(t *testing.T) {
	f := newRouterFixture(t, nil)
	admin := f.token(t, models.RoleAdmin)
	supervisor := f.token(t, models.RoleSupervisor)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   string
		status int
	}{
		{"no token", http.MethodGet, "/api/v1/alerts", "", "", http.StatusUnauthorized},
		{"invalid token", http.MethodGet, "/api/v1/alerts", "garbage", "", http.StatusUnauthorized},
		{"supervisor lists alerts", http.MethodGet, "/api/v1/alerts", supervisor, "", http.StatusOK},
		{"supervisor reads alert", http.MethodGet, "/api/v1/alerts/1", supervisor, "", http.StatusOK},
		{"supervisor resolves", http.MethodPost, "/api/v1/alerts/1/resolve", supervisor, "", http.StatusOK},
		{"supervisor reads attendance", http.MethodGet, "/api/v1/workers/5/attendance", supervisor, "", http.StatusOK},
		{"supervisor cannot enroll face", http.MethodPost, "/api/v1/workers/5/face-embeddings", supervisor, `{"vector":[1,0]}`, http.StatusForbidden},
		{"supervisor cannot enroll fingerprint", http.MethodPost, "/api/v1/workers/5/webauthn/register/begin", supervisor, "", http.StatusForbidden},
		{"admin enrolls face", http.MethodPost, "/api/v1/workers/5/face-embeddings", admin, `{"vector":[1,0]}`, http.StatusCreated},
		{"admin begins registration", http.MethodPost, "/api/v1/workers/5/webauthn/register/begin", admin, "", http.StatusOK},
		{"supervisor cannot read audit", http.MethodGet, "/api/v1/audit", supervisor, "", http.StatusForbidden},
		{"admin reads audit", http.MethodGet, "/api/v1/audit", admin, "", http.StatusOK},
		{"admin missing worker", http.MethodPost, "/api/v1/workers/77/face-embeddings", admin, `{"vector":[1,0]}`, http.StatusNotFound},
		{"unknown role", http.MethodGet, "/api/v1/alerts", f.token(t, "guest"), "", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(tt.method, tt.path, tt.token, tt.body)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
		})
	}
}

func TestRouter_WithoutAdminStack(t *testing.T) {
	h := NewHandler(Deps{Checkin: &fakeCheckin{resp: &checkin.Response{Success: true}}})
	handler := NewRouter(h, nil, nil, nil).Setup()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("admin routes should not be mounted, status = %d", rec.Code)
	}
}
