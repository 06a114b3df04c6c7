// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Geofence.DefaultRadius != 100 {
		t.Errorf("Geofence.DefaultRadius = %v, want 100", cfg.Geofence.DefaultRadius)
	}
	if cfg.Biometric.FaceThreshold != 70 {
		t.Errorf("Biometric.FaceThreshold = %v, want 70", cfg.Biometric.FaceThreshold)
	}
	if cfg.Biometric.FaceCriticalBelow != 40 {
		t.Errorf("Biometric.FaceCriticalBelow = %v, want 40", cfg.Biometric.FaceCriticalBelow)
	}
	if cfg.Biometric.FingerprintScore != 95 {
		t.Errorf("Biometric.FingerprintScore = %v, want 95", cfg.Biometric.FingerprintScore)
	}
	if cfg.Challenge.Backend != "badger" {
		t.Errorf("Challenge.Backend = %q, want badger", cfg.Challenge.Backend)
	}
	if cfg.WebAuthn.ChallengeTTL != 2*time.Minute {
		t.Errorf("WebAuthn.ChallengeTTL = %v, want 2m", cfg.WebAuthn.ChallengeTTL)
	}
	if !cfg.Alerts.FingerprintAlerts {
		t.Error("Alerts.FingerprintAlerts should default to true")
	}
	if !cfg.Audit.Enabled || cfg.Audit.RetentionDays != 365 {
		t.Errorf("Audit = %+v, want enabled with 365 day retention", cfg.Audit)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$12$abcdefghijklmnopqrstuv")
	t.Setenv("WEBAUTHN_RP_ID", "attendance.example.com")
	t.Setenv("WEBAUTHN_RP_ORIGINS", "https://attendance.example.com, https://m.example.com")
	t.Setenv("FACE_MATCH_THRESHOLD", "75")
	t.Setenv("WEBAUTHN_CHALLENGE_TTL", "90s")
	t.Setenv("ATTENDANCE_TIMEZONE", "Asia/Jakarta")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.WebAuthn.RPID != "attendance.example.com" {
		t.Errorf("RPID = %q", cfg.WebAuthn.RPID)
	}
	if len(cfg.WebAuthn.RPOrigins) != 2 || cfg.WebAuthn.RPOrigins[1] != "https://m.example.com" {
		t.Errorf("RPOrigins = %v", cfg.WebAuthn.RPOrigins)
	}
	if cfg.Biometric.FaceThreshold != 75 {
		t.Errorf("FaceThreshold = %v, want 75", cfg.Biometric.FaceThreshold)
	}
	if cfg.WebAuthn.ChallengeTTL != 90*time.Second {
		t.Errorf("ChallengeTTL = %v, want 90s", cfg.WebAuthn.ChallengeTTL)
	}
	loc, err := cfg.Attendance.Location()
	if err != nil || loc.String() != "Asia/Jakarta" {
		t.Errorf("Location() = %v, %v", loc, err)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
security:
  jwt_secret: "` + testSecret + `"
  admin_password_hash: "$2a$12$abcdefghijklmnopqrstuv"
geofence:
  default_radius: 250
challenge:
  backend: memory
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Geofence.DefaultRadius != 250 {
		t.Errorf("DefaultRadius = %v, want 250", cfg.Geofence.DefaultRadius)
	}
	if cfg.Challenge.Backend != "memory" {
		t.Errorf("Challenge.Backend = %q, want memory", cfg.Challenge.Backend)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := defaultConfig()
		cfg.Security.JWTSecret = testSecret
		cfg.Security.AdminPasswordHash = "hash"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(*Config) {}, ""},
		{"short secret", func(c *Config) { c.Security.JWTSecret = "short" }, "JWT_SECRET"},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "HTTP_PORT"},
		{"unknown challenge backend", func(c *Config) { c.Challenge.Backend = "etcd" }, "CHALLENGE_BACKEND"},
		{"critical above threshold", func(c *Config) { c.Biometric.FaceCriticalBelow = 80 }, "FACE_CRITICAL_BELOW"},
		{"bad origin", func(c *Config) { c.WebAuthn.RPOrigins = []string{"ftp://x"} }, "WEBAUTHN_RP_ORIGINS"},
		{"bad timezone", func(c *Config) { c.Attendance.Timezone = "Mars/Olympus" }, "ATTENDANCE_TIMEZONE"},
		{"bad late_after", func(c *Config) { c.Attendance.LateAfter = "9am" }, "ATTENDANCE_LATE_AFTER"},
		{"webhook without url", func(c *Config) { c.Alerts.WebhookEnabled = true }, "ALERT_WEBHOOK_URL"},
		{"bad events backend", func(c *Config) { c.Events.Backend = "kafka" }, "EVENTS_BACKEND"},
		{"audit buffer", func(c *Config) { c.Audit.BufferSize = 0 }, "AUDIT_BUFFER_SIZE"},
		{"audit disabled skips checks", func(c *Config) { c.Audit.Enabled = false; c.Audit.BufferSize = 0 }, ""},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestLateAfterDuration(t *testing.T) {
	a := AttendanceConfig{LateAfter: "08:30"}
	if got := a.LateAfterDuration(); got != 8*time.Hour+30*time.Minute {
		t.Errorf("LateAfterDuration() = %v", got)
	}
}
