// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

package auth

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/sitecheck/internal/models"
)

func testHash(t *testing.T, password string) string {
	t.Helper()
	// MinCost keeps the test fast; Authenticate accepts any cost.
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	return string(h)
}

func TestAdminAuthenticator(t *testing.T) {
	a, err := NewAdminAuthenticator("admin", testHash(t, "correct horse"))
	if err != nil {
		t.Fatalf("NewAdminAuthenticator() error = %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
		wantErr  bool
	}{
		{"valid", "admin", "correct horse", false},
		{"wrong password", "admin", "battery staple", true},
		{"wrong username", "root", "correct horse", true},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, err := a.Authenticate(tt.username, tt.password)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCredentials) {
					t.Errorf("Authenticate() error = %v, want ErrInvalidCredentials", err)
				}
				return
			}
			if err != nil || role != models.RoleAdmin {
				t.Errorf("Authenticate() = %q, %v", role, err)
			}
		})
	}
}

func TestNewAdminAuthenticator_Invalid(t *testing.T) {
	if _, err := NewAdminAuthenticator("", testHash(t, "password1")); err == nil {
		t.Error("empty username should fail")
	}
	if _, err := NewAdminAuthenticator("admin", "plaintext"); err == nil {
		t.Error("non-bcrypt hash should fail")
	}
}

func TestHashPassword(t *testing.T) {
	if _, err := HashPassword("short"); err == nil {
		t.Error("short password should fail")
	}
	h, err := HashPassword("long-enough-password")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(h), []byte("long-enough-password")) != nil {
		t.Error("hash does not verify")
	}
}
