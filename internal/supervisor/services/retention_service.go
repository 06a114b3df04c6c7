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

// DefaultRetentionInterval is how often expired audit events are pruned.
const DefaultRetentionInterval = 24 * time.Hour

// Pruner is satisfied by *audit.Logger.
type Pruner interface {
	Prune(ctx context.Context) (int64, error)
}

// RetentionService prunes once at start and then on every tick.
type RetentionService struct {
	pruner   Pruner
	interval time.Duration
	name     string
}

// NewRetentionService wraps p. A non-positive interval uses DefaultRetentionInterval.
func NewRetentionService(p Pruner, interval time.Duration) *RetentionService {
	if interval <= 0 {
		interval = DefaultRetentionInterval
	}
	return &RetentionService{pruner: p, interval: interval, name: "audit-retention"}
}

// Serve implements suture.Service.
func (s *RetentionService) Serve(ctx context.Context) error {
	s.prune(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.prune(ctx)
		}
	}
}

func (s *RetentionService) prune(ctx context.Context) {
	if _, err := s.pruner.Prune(ctx); err != nil && ctx.Err() == nil {
		logging.Warn().Err(err).Str("service", s.name).Msg("Audit retention pass failed")
	}
}

func (s *RetentionService) String() string {
	return s.name
}
