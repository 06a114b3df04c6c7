// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

package authz

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/tomtom215/sitecheck/internal/auth"
)

func TestEnforcer_EmbeddedPolicy(t *testing.T) {
	e, err := NewEnforcer("")
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}

	tests := []struct {
		role, path, action string
		want               bool
	}{
		{"supervisor", "/api/v1/alerts", ActionRead, true},
		{"supervisor", "/api/v1/alerts/42", ActionRead, true},
		{"supervisor", "/api/v1/alerts/42/resolve", ActionWrite, true},
		{"supervisor", "/api/v1/workers/7/attendance", ActionRead, true},
		{"supervisor", "/api/v1/workers/7/face-embeddings", ActionWrite, false},
		{"supervisor", "/api/v1/alerts", ActionWrite, false},
		{"admin", "/api/v1/workers/7/face-embeddings", ActionWrite, true},
		{"admin", "/api/v1/alerts/42", ActionRead, true},
		{"worker", "/api/v1/alerts", ActionRead, false},
		{"", "/api/v1/alerts", ActionRead, false},
	}
	for _, tt := range tests {
		t.Run(tt.role+" "+tt.action+" "+tt.path, func(t *testing.T) {
			got, err := e.Enforce(tt.role, tt.path, tt.action)
			if err != nil {
				t.Fatalf("Enforce() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Enforce() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnforcer_PolicyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.csv")
	if err := os.WriteFile(path, []byte("p, auditor, /api/v1/alerts, read\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	e, err := NewEnforcer(path)
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	if ok, _ := e.Enforce("auditor", "/api/v1/alerts", ActionRead); !ok {
		t.Error("auditor should read alerts")
	}
	if ok, _ := e.Enforce("supervisor", "/api/v1/alerts", ActionRead); ok {
		t.Error("file policy should replace the embedded one")
	}

	if _, err := NewEnforcer(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("missing policy file should fail")
	}
}

func TestLoadEmbeddedPolicy_Malformed(t *testing.T) {
	e, err := NewEnforcer("")
	if err != nil {
		t.Fatal(err)
	}
	if err := loadEmbeddedPolicy(e.enforcer, "p, only-two"); err == nil {
		t.Error("malformed line should fail")
	}
}

func TestActionFor(t *testing.T) {
	for method, want := range map[string]string{
		http.MethodGet: ActionRead, http.MethodHead: ActionRead,
		http.MethodPost: ActionWrite, http.MethodDelete: ActionWrite,
	} {
		if got := ActionFor(method); got != want {
			t.Errorf("ActionFor(%s) = %s, want %s", method, got, want)
		}
	}
}

func TestMiddleware_Authorize(t *testing.T) {
	e, err := NewEnforcer("")
	if err != nil {
		t.Fatal(err)
	}
	h := NewMiddleware(e).Authorize(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		claims *auth.Claims
		method string
		path   string
		status int
	}{
		{"no claims", nil, http.MethodGet, "/api/v1/alerts", http.StatusForbidden},
		{"supervisor read", &auth.Claims{Role: "supervisor"}, http.MethodGet, "/api/v1/alerts", http.StatusOK},
		{"supervisor enroll", &auth.Claims{Role: "supervisor"}, http.MethodPost, "/api/v1/workers/1/face-embeddings", http.StatusForbidden},
		{"admin enroll", &auth.Claims{Role: "admin"}, http.MethodPost, "/api/v1/workers/1/face-embeddings", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.claims != nil {
				req = req.WithContext(auth.ContextWithClaims(req.Context(), tt.claims))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}
