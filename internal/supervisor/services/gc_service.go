// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

package services

import (
	"context"
	"time"

	"github.com/tomtom215/sitecheck/internal/logging"
)

// DefaultGCInterval is how often the challenge store value log is collected.
const DefaultGCInterval = 5 * time.Minute

// GarbageCollector is satisfied by *biometric.BadgerChallengeStore.
type GarbageCollector interface {
	RunGC() error
}

// ValueLogGCService periodically reclaims badger value-log space. Every
// WebAuthn challenge is written once and deleted on consume or expiry, so
// without collection the log only grows.
type ValueLogGCService struct {
	gc       GarbageCollector
	interval time.Duration
	name     string
}

// NewValueLogGCService wraps gc. A non-positive interval uses DefaultGCInterval.
func NewValueLogGCService(gc GarbageCollector, interval time.Duration) *ValueLogGCService {
	if interval <= 0 {
		interval = DefaultGCInterval
	}
	return &ValueLogGCService{gc: gc, interval: interval, name: "challenge-gc"}
}

// Serve implements suture.Service. GC errors are logged and the loop keeps
// running, since a failed pass only delays reclamation.
func (s *ValueLogGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.gc.RunGC(); err != nil {
				logging.Warn().Err(err).Str("service", s.name).Msg("Value log GC failed")
			}
		}
	}
}

func (s *ValueLogGCService) String() string {
	return s.name
}
