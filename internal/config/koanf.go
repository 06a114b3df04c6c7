// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/sitecheck/config.yaml",
	"/etc/sitecheck/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3857,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Path:      "/data/sitecheck.duckdb",
			MaxMemory: "1GB",
			Threads:   0,
		},
		Security: SecurityConfig{
			SessionTimeout:  12 * time.Hour,
			AdminUsername:   "admin",
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   60,
			RateLimitWindow: time.Minute,
		},
		WebAuthn: WebAuthnConfig{
			RPID:          "localhost",
			RPDisplayName: "Sitecheck",
			RPOrigins:     []string{"http://localhost:3857"},
			ChallengeTTL:  2 * time.Minute,
		},
		Challenge: ChallengeConfig{
			Backend:     "badger",
			BadgerPath:  "/data/challenges",
			RedisAddr:   "localhost:6379",
			RedisPrefix: "sitecheck:challenge:",
		},
		Biometric: BiometricConfig{
			FingerprintScore:  95,
			FaceThreshold:     70,
			FaceCriticalBelow: 40,
		},
		Geofence: GeofenceConfig{
			DefaultRadius: 100,
		},
		Attendance: AttendanceConfig{
			Timezone:  "Local",
			LateAfter: "09:00",
		},
		Alerts: AlertsConfig{
			WebhookTimeout:    5 * time.Second,
			WebhookRateLimit:  1,
			BroadcastEnabled:  true,
			NotifyTimeout:     10 * time.Second,
			FingerprintAlerts: true,
		},
		Events: EventsConfig{
			Enabled: true,
			Backend: "channel",
			NATSURL: "nats://127.0.0.1:4222",
			Topic:   "sitecheck.attendance",
		},
		Audit: AuditConfig{
			Enabled:       true,
			RetentionDays: 365,
			BufferSize:    1000,
			PruneInterval: 24 * time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// sliceConfigPaths are fields that arrive from the environment as comma-separated strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"webauthn.rp_origins",
}

// Load builds the configuration: defaults, then the YAML file (if any), then
// environment variables. The result is validated before it is returned.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// WEBAUTHN_RP_ID -> webauthn.rp_id
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unmapped variables are ignored so the process environment cannot pollute config.
var envMappings = map[string]string{
	"http_host":        "server.host",
	"http_port":        "server.port",
	"http_timeout":     "server.read_timeout",
	"shutdown_timeout": "server.shutdown_timeout",

	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	"jwt_secret":          "security.jwt_secret",
	"session_timeout":     "security.session_timeout",
	"admin_username":      "security.admin_username",
	"admin_password_hash": "security.admin_password_hash",
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_requests",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"authz_policy_path":   "security.authz_policy_path",

	"webauthn_rp_id":           "webauthn.rp_id",
	"webauthn_rp_display_name": "webauthn.rp_display_name",
	"webauthn_rp_origins":      "webauthn.rp_origins",
	"webauthn_challenge_ttl":   "webauthn.challenge_ttl",

	"challenge_backend":          "challenge.backend",
	"challenge_badger_path":      "challenge.badger_path",
	"challenge_badger_in_memory": "challenge.badger_in_memory",
	"redis_addr":                 "challenge.redis_addr",
	"redis_password":             "challenge.redis_password",
	"redis_db":                   "challenge.redis_db",

	"fingerprint_match_score": "biometric.fingerprint_score",
	"face_match_threshold":    "biometric.face_threshold",
	"face_critical_below":     "biometric.face_critical_below",

	"geofence_default_radius": "geofence.default_radius",

	"attendance_timezone":   "attendance.timezone",
	"attendance_late_after": "attendance.late_after",

	"alert_webhook_enabled":      "alerts.webhook_enabled",
	"alert_webhook_url":          "alerts.webhook_url",
	"alert_webhook_rate_limit":   "alerts.webhook_rate_limit",
	"alert_broadcast_enabled":    "alerts.broadcast_enabled",
	"alert_fingerprint_failures": "alerts.fingerprint_alerts",

	"events_enabled": "events.enabled",
	"events_backend": "events.backend",
	"nats_url":       "events.nats_url",
	"events_topic":   "events.topic",

	"audit_enabled":        "audit.enabled",
	"audit_retention_days": "audit.retention_days",
	"audit_buffer_size":    "audit.buffer_size",
	"audit_prune_interval": "audit.prune_interval",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
