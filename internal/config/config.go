// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

// Package config loads Sitecheck configuration from defaults, an optional YAML
// file and environment variables (in that order of precedence) using koanf.
package config

import "time"

// Config holds all application configuration
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Security   SecurityConfig   `koanf:"security"`
	WebAuthn   WebAuthnConfig   `koanf:"webauthn"`
	Challenge  ChallengeConfig  `koanf:"challenge"`
	Biometric  BiometricConfig  `koanf:"biometric"`
	Geofence   GeofenceConfig   `koanf:"geofence"`
	Attendance AttendanceConfig `koanf:"attendance"`
	Alerts     AlertsConfig     `koanf:"alerts"`
	Events     EventsConfig     `koanf:"events"`
	Audit      AuditConfig      `koanf:"audit"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig holds DuckDB settings
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`
}

// SecurityConfig holds authentication, CORS and rate limiting settings
type SecurityConfig struct {
	JWTSecret         string        `koanf:"jwt_secret"`
	SessionTimeout    time.Duration `koanf:"session_timeout"`
	AdminUsername     string        `koanf:"admin_username"`
	AdminPasswordHash string        `koanf:"admin_password_hash"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	AuthzPolicyPath   string        `koanf:"authz_policy_path"`
}

// WebAuthnConfig holds relying party settings for fingerprint verification
type WebAuthnConfig struct {
	RPID          string        `koanf:"rp_id"`
	RPDisplayName string        `koanf:"rp_display_name"`
	RPOrigins     []string      `koanf:"rp_origins"`
	ChallengeTTL  time.Duration `koanf:"challenge_ttl"`
}

// ChallengeConfig selects where issued WebAuthn challenges are kept until consumed.
// Backend is one of badger, redis, memory.
type ChallengeConfig struct {
	Backend        string `koanf:"backend"`
	BadgerPath     string `koanf:"badger_path"`
	BadgerInMemory bool   `koanf:"badger_in_memory"`
	RedisAddr      string `koanf:"redis_addr"`
	RedisPassword  string `koanf:"redis_password"`
	RedisDB        int    `koanf:"redis_db"`
	RedisPrefix    string `koanf:"redis_prefix"`
}

// BiometricConfig holds match thresholds.
type BiometricConfig struct {
	FingerprintScore  float64 `koanf:"fingerprint_score"`
	FaceThreshold     float64 `koanf:"face_threshold"`
	FaceCriticalBelow float64 `koanf:"face_critical_below"`
}

// GeofenceConfig holds geofence defaults.
type GeofenceConfig struct {
	DefaultRadius float64 `koanf:"default_radius"`
}

// AttendanceConfig controls how the attendance day is derived.
type AttendanceConfig struct {
	// Timezone is an IANA zone name ("Local" uses the server zone).
	Timezone string `koanf:"timezone"`
	// LateAfter is a HH:MM wall-clock time; check-ins after it are marked late.
	LateAfter string `koanf:"late_after"`
}

// AlertsConfig holds alert fan-out settings.
type AlertsConfig struct {
	WebhookEnabled   bool          `koanf:"webhook_enabled"`
	WebhookURL       string        `koanf:"webhook_url"`
	WebhookTimeout   time.Duration `koanf:"webhook_timeout"`
	WebhookRateLimit float64       `koanf:"webhook_rate_limit"`
	BroadcastEnabled bool          `koanf:"broadcast_enabled"`
	NotifyTimeout    time.Duration `koanf:"notify_timeout"`
	// FingerprintAlerts raises an alert for rejected fingerprint assertions.
	FingerprintAlerts bool `koanf:"fingerprint_alerts"`
}

// EventsConfig selects the attendance event bus. Backend is channel or nats.
type EventsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Backend string `koanf:"backend"`
	NATSURL string `koanf:"nats_url"`
	Topic   string `koanf:"topic"`
}

// AuditConfig controls the admin audit trail.
type AuditConfig struct {
	Enabled       bool          `koanf:"enabled"`
	RetentionDays int           `koanf:"retention_days"`
	BufferSize    int           `koanf:"buffer_size"`
	PruneInterval time.Duration `koanf:"prune_interval"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}
