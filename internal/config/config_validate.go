// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Validate checks that required configuration is present and valid.
// All problems are reported together.
func (c *Config) Validate() error {
	return errors.Join(
		c.validateServer(),
		c.validateSecurity(),
		c.validateWebAuthn(),
		c.validateChallenge(),
		c.validateBiometric(),
		c.validateAttendance(),
		c.validateAlerts(),
		c.validateEvents(),
		c.validateAudit(),
		c.validateLogging(),
	)
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	if c.Security.AdminPasswordHash == "" {
		return fmt.Errorf("ADMIN_PASSWORD_HASH is required (bcrypt hash)")
	}
	if !c.Security.RateLimitDisabled && (c.Security.RateLimitReqs <= 0 || c.Security.RateLimitWindow <= 0) {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

func (c *Config) validateWebAuthn() error {
	if c.WebAuthn.RPID == "" {
		return fmt.Errorf("WEBAUTHN_RP_ID is required")
	}
	if len(c.WebAuthn.RPOrigins) == 0 {
		return fmt.Errorf("WEBAUTHN_RP_ORIGINS must list at least one origin")
	}
	for _, origin := range c.WebAuthn.RPOrigins {
		if err := validateHTTPURL(origin); err != nil {
			return fmt.Errorf("WEBAUTHN_RP_ORIGINS entry %q is invalid: %w", origin, err)
		}
	}
	if c.WebAuthn.ChallengeTTL <= 0 {
		return fmt.Errorf("WEBAUTHN_CHALLENGE_TTL must be positive")
	}
	return nil
}

func (c *Config) validateChallenge() error {
	switch c.Challenge.Backend {
	case "badger":
		if !c.Challenge.BadgerInMemory && c.Challenge.BadgerPath == "" {
			return fmt.Errorf("CHALLENGE_BADGER_PATH is required for the badger backend")
		}
	case "redis":
		if c.Challenge.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis backend")
		}
	case "memory":
	default:
		return fmt.Errorf("CHALLENGE_BACKEND must be badger, redis or memory, got %q", c.Challenge.Backend)
	}
	return nil
}

func (c *Config) validateBiometric() error {
	b := c.Biometric
	if b.FaceThreshold <= 0 || b.FaceThreshold > 100 {
		return fmt.Errorf("FACE_MATCH_THRESHOLD must be in (0, 100], got %v", b.FaceThreshold)
	}
	if b.FaceCriticalBelow < 0 || b.FaceCriticalBelow > b.FaceThreshold {
		return fmt.Errorf("FACE_CRITICAL_BELOW must be in [0, FACE_MATCH_THRESHOLD], got %v", b.FaceCriticalBelow)
	}
	if b.FingerprintScore <= 0 || b.FingerprintScore > 100 {
		return fmt.Errorf("FINGERPRINT_MATCH_SCORE must be in (0, 100], got %v", b.FingerprintScore)
	}
	if c.Geofence.DefaultRadius <= 0 {
		return fmt.Errorf("GEOFENCE_DEFAULT_RADIUS must be positive")
	}
	return nil
}

func (c *Config) validateAttendance() error {
	if _, err := c.Attendance.Location(); err != nil {
		return fmt.Errorf("ATTENDANCE_TIMEZONE is invalid: %w", err)
	}
	if _, err := time.Parse("15:04", c.Attendance.LateAfter); err != nil {
		return fmt.Errorf("ATTENDANCE_LATE_AFTER must be HH:MM, got %q", c.Attendance.LateAfter)
	}
	return nil
}

func (c *Config) validateAlerts() error {
	if !c.Alerts.WebhookEnabled {
		return nil
	}
	if err := validateHTTPURL(c.Alerts.WebhookURL); err != nil {
		return fmt.Errorf("ALERT_WEBHOOK_URL is invalid: %w", err)
	}
	return nil
}

func (c *Config) validateEvents() error {
	if !c.Events.Enabled {
		return nil
	}
	switch c.Events.Backend {
	case "channel":
	case "nats":
		if c.Events.NATSURL == "" {
			return fmt.Errorf("NATS_URL is required for the nats events backend")
		}
	default:
		return fmt.Errorf("EVENTS_BACKEND must be channel or nats, got %q", c.Events.Backend)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
}

// Location resolves the configured attendance timezone.
func (a AttendanceConfig) Location() (*time.Location, error) {
	if a.Timezone == "" || a.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(a.Timezone)
}

// LateAfterDuration returns LateAfter as an offset from midnight.
func (a AttendanceConfig) LateAfterDuration() time.Duration {
	t, err := time.Parse("15:04", a.LateAfter)
	if err != nil {
		return 0
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}

func (c *Config) validateAudit() error {
	if !c.Audit.Enabled {
		return nil
	}
	if c.Audit.RetentionDays < 0 {
		return fmt.Errorf("AUDIT_RETENTION_DAYS cannot be negative")
	}
	if c.Audit.BufferSize <= 0 {
		return fmt.Errorf("AUDIT_BUFFER_SIZE must be positive")
	}
	if c.Audit.PruneInterval <= 0 {
		return fmt.Errorf("AUDIT_PRUNE_INTERVAL must be positive")
	}
	return nil
}
