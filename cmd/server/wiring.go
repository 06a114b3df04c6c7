// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/tomtom215/sitecheck/internal/alerts"
	"github.com/tomtom215/sitecheck/internal/audit"
	"github.com/tomtom215/sitecheck/internal/auth"
	"github.com/tomtom215/sitecheck/internal/authz"
	"github.com/tomtom215/sitecheck/internal/biometric"
	"github.com/tomtom215/sitecheck/internal/config"
	"github.com/tomtom215/sitecheck/internal/events"
	"github.com/tomtom215/sitecheck/internal/logging"
	ws "github.com/tomtom215/sitecheck/internal/websocket"
)

// initChallengeStore opens the configured WebAuthn challenge backend.
func initChallengeStore(ctx context.Context, cfg *config.ChallengeConfig) (biometric.ChallengeStore, error) {
	switch cfg.Backend {
	case "badger":
		store, err := biometric.OpenBadgerChallengeStore(cfg.BadgerPath, cfg.BadgerInMemory)
		if err != nil {
			return nil, err
		}
		logging.Info().Str("path", cfg.BadgerPath).Bool("in_memory", cfg.BadgerInMemory).Msg("Challenge store: badger")
		return store, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store := biometric.NewRedisChallengeStore(client, cfg.RedisPrefix)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
		}
		logging.Info().Str("addr", cfg.RedisAddr).Msg("Challenge store: redis")
		return store, nil

	case "memory":
		logging.Warn().Msg("Challenge store: memory, challenges are lost on restart and not shared between instances")
		return biometric.NewMemoryChallengeStore(), nil

	default:
		return nil, fmt.Errorf("unknown challenge backend %q", cfg.Backend)
	}
}

func closeChallengeStore(store biometric.ChallengeStore) {
	if c, ok := store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing challenge store")
		}
	}
}

// initEvents returns nil when the event bus is disabled.
func initEvents(cfg config.EventsConfig) (*events.Publisher, error) {
	pub, err := events.New(cfg)
	if err != nil {
		return nil, err
	}
	if pub != nil {
		logging.Info().Str("backend", pub.Backend()).Str("topic", pub.Topic()).Msg("Event bus enabled")
	}
	return pub, nil
}

// initAlertEmitter builds the emitter and attaches every enabled notifier.
func initAlertEmitter(cfg *config.Config, store alerts.Saver, hub *ws.Hub, publisher *events.Publisher) *alerts.Emitter {
	emitter := alerts.NewEmitter(store, cfg.Alerts.NotifyTimeout)

	if cfg.Alerts.BroadcastEnabled {
		emitter.AddNotifier(alerts.NewBroadcastNotifier(hub))
	}
	if cfg.Alerts.WebhookEnabled {
		emitter.AddNotifier(alerts.NewWebhookNotifier(alerts.WebhookConfig{
			WebhookURL:    cfg.Alerts.WebhookURL,
			Enabled:       true,
			Timeout:       cfg.Alerts.WebhookTimeout,
			RatePerSecond: cfg.Alerts.WebhookRateLimit,
		}))
		logging.Info().Msg("Alert webhook enabled")
	}
	if publisher != nil {
		emitter.AddNotifier(alerts.NewEventNotifier(publisher))
	}
	return emitter
}

// initAuth returns nil middleware when no admin account is configured, which
// leaves the admin routes unmounted.
func initAuth(cfg *config.SecurityConfig) (*auth.Middleware, *authz.Middleware, *auth.AdminAuthenticator, *auth.JWTManager, error) {
	if cfg.JWTSecret == "" || cfg.AdminUsername == "" || cfg.AdminPasswordHash == "" {
		logging.Warn().Msg("Admin API disabled: JWT_SECRET, ADMIN_USERNAME and ADMIN_PASSWORD_HASH are required")
		return nil, nil, nil, nil, nil
	}

	jwtManager, err := auth.NewJWTManager(cfg)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	admin, err := auth.NewAdminAuthenticator(cfg.AdminUsername, cfg.AdminPasswordHash)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	enforcer, err := authz.NewEnforcer(cfg.AuthzPolicyPath)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return auth.NewMiddleware(jwtManager), authz.NewMiddleware(enforcer), admin, jwtManager, nil
}

// initAudit returns nil when the audit trail is disabled.
func initAudit(ctx context.Context, cfg config.AuditConfig, db *sql.DB) (*audit.Logger, error) {
	if !cfg.Enabled {
		logging.Info().Msg("Audit trail disabled")
		return nil, nil
	}
	store := audit.NewDuckDBStore(db)
	if err := store.InitSchema(ctx); err != nil {
		return nil, err
	}
	logging.Info().Int("retention_days", cfg.RetentionDays).Msg("Audit trail enabled")
	return audit.NewLogger(store, audit.Config{
		RetentionDays: cfg.RetentionDays,
		BufferSize:    cfg.BufferSize,
	}), nil
}

func hasHTTPSOrigin(origins []string) bool {
	for _, o := range origins {
		if strings.HasPrefix(o, "https://") {
			return true
		}
	}
	return false
}
