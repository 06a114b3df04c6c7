// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

// Package main is the entry point for the Sitecheck server.
//
// Sitecheck verifies that a worker checking in is who they claim to be
// (WebAuthn fingerprint or face descriptor match) and where they claim to be
// (site geofence), then records the day's check-in or check-out and raises
// security alerts on rejected attempts.
//
// # Startup order
//
//  1. Configuration (koanf: defaults, config.yaml, environment)
//  2. DuckDB with directory, attendance and alert schemas
//  3. WebAuthn challenge store (badger, redis or memory)
//  4. Biometric verifiers, geofence evaluator, attendance policy
//  5. Alert emitter with WebSocket, webhook and event bus notifiers
//  6. Admin authentication, Casbin authorization and the audit trail
//  7. Supervisor tree running the HTTP server, alert hub, challenge GC and
//     audit retention
//
// # Build tags
//
//	go build ./cmd/server               # in-process event bus only
//	go build -tags nats ./cmd/server    # enable the NATS JetStream backend
//
// # Signals
//
// SIGINT and SIGTERM stop the supervisor tree. The HTTP server drains
// in-flight check-ins for server.shutdown_timeout, pending alert deliveries
// are awaited, then storage is closed.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/sitecheck/internal/alerts"
	"github.com/tomtom215/sitecheck/internal/api"
	"github.com/tomtom215/sitecheck/internal/attendance"
	"github.com/tomtom215/sitecheck/internal/biometric"
	"github.com/tomtom215/sitecheck/internal/checkin"
	"github.com/tomtom215/sitecheck/internal/config"
	"github.com/tomtom215/sitecheck/internal/database"
	"github.com/tomtom215/sitecheck/internal/geofence"
	"github.com/tomtom215/sitecheck/internal/logging"
	"github.com/tomtom215/sitecheck/internal/supervisor"
	"github.com/tomtom215/sitecheck/internal/supervisor/services"
	ws "github.com/tomtom215/sitecheck/internal/websocket"
)

//nolint:gocyclo // sequential setup
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("challenge_backend", cfg.Challenge.Backend).
		Str("timezone", cfg.Attendance.Timezone).
		Msg("Starting Sitecheck")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	attendanceStore := attendance.NewDuckDBStore(db.Conn())
	alertStore := alerts.NewDuckDBStore(db.Conn())
	if err := attendanceStore.InitSchema(ctx); err != nil {
		logging.Fatal().Err(err).Msg("Failed to create attendance schema")
	}
	if err := alertStore.InitSchema(ctx); err != nil {
		logging.Fatal().Err(err).Msg("Failed to create alerts schema")
	}
	logging.Info().Msg("Database initialized")

	challenges, err := initChallengeStore(ctx, &cfg.Challenge)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize challenge store")
	}
	defer closeChallengeStore(challenges)

	webauthnSvc, err := biometric.NewWebAuthnService(biometric.WebAuthnConfig{
		RPID:          cfg.WebAuthn.RPID,
		RPDisplayName: cfg.WebAuthn.RPDisplayName,
		RPOrigins:     cfg.WebAuthn.RPOrigins,
		ChallengeTTL:  cfg.WebAuthn.ChallengeTTL,
	}, challenges)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize WebAuthn")
	}

	loc, err := cfg.Attendance.Location()
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid attendance timezone")
	}

	hub := ws.NewHub()

	publisher, err := initEvents(cfg.Events)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize event bus")
	}
	if publisher != nil {
		defer func() {
			if err := publisher.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing event publisher")
			}
		}()
	}

	emitter := initAlertEmitter(cfg, alertStore, hub, publisher)

	deps := checkin.Deps{
		Directory: db,
		Geofence:  geofence.NewEvaluator(cfg.Geofence.DefaultRadius),
		Verifiers: biometric.NewRegistry(
			biometric.NewFingerprintVerifier(db, webauthnSvc, cfg.Biometric.FingerprintScore),
			biometric.NewFaceVerifier(db, biometric.FaceConfig{
				Threshold:     cfg.Biometric.FaceThreshold,
				CriticalBelow: cfg.Biometric.FaceCriticalBelow,
			}),
		),
		Attendance:                attendanceStore,
		Policy:                    attendance.NewPolicy(loc, cfg.Attendance.LateAfterDuration()),
		Alerts:                    emitter,
		Challenger:                webauthnSvc,
		AlertOnFingerprintFailure: cfg.Alerts.FingerprintAlerts,
	}
	// A nil *events.Publisher must not become a non-nil interface.
	if publisher != nil {
		deps.Events = publisher
	}
	checkinSvc := checkin.NewService(deps)

	authn, authzMw, admin, jwtManager, err := initAuth(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authentication")
	}

	auditLog, err := initAudit(ctx, cfg.Audit, db.Conn())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize audit trail")
	}
	if auditLog != nil {
		defer func() {
			if err := auditLog.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing audit logger")
			}
		}()
	}

	apiDeps := api.Deps{
		Checkin:          checkinSvc,
		Alerts:           alertStore,
		Attendance:       attendanceStore,
		Enrollment:       db,
		Registrar:        webauthnSvc,
		Admin:            admin,
		JWT:              jwtManager,
		Hub:              hub,
		DB:               db,
		WebSocketOrigins: cfg.Security.CORSOrigins,
		SecureCookies:    hasHTTPSOrigin(cfg.WebAuthn.RPOrigins),
	}
	if auditLog != nil {
		apiDeps.Audit = auditLog
	}
	handler := api.NewHandler(apiDeps)
	router := api.NewRouter(handler, authn, authzMw, &api.ChiMiddlewareConfig{
		CORSAllowedOrigins: cfg.Security.CORSOrigins,
		CORSMaxAge:         86400,
		RateLimitRequests:  cfg.Security.RateLimitReqs,
		RateLimitWindow:    cfg.Security.RateLimitWindow,
		RateLimitDisabled:  cfg.Security.RateLimitDisabled,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout + 5*time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}
	if gc, ok := challenges.(services.GarbageCollector); ok {
		tree.AddStorageService(services.NewValueLogGCService(gc, services.DefaultGCInterval))
	}
	if auditLog != nil {
		tree.AddStorageService(services.NewRetentionService(auditLog, cfg.Audit.PruneInterval))
	}
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
		cancel()
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	emitter.Wait()
	logging.Info().Msg("Sitecheck stopped")
}
