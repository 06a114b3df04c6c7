// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

// Package alerts records security alerts raised by the check-in flow and fans
// them out to notifiers.
//
// Emission is best-effort. Emit never returns an error and never blocks on a
// notifier: a failed save or a failed delivery is logged and counted, and the
// check-in that raised the alert proceeds with its own outcome.
package alerts

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/sitecheck/internal/logging"
	"github.com/tomtom215/sitecheck/internal/metrics"
)

// Notifier delivers an alert to an external channel.
type Notifier interface {
	// Send delivers an alert to the notification channel.
	Send(ctx context.Context, alert *Alert) error

	// Name returns the notifier name (e.g., "webhook", "broadcast").
	Name() string

	// Enabled returns whether this notifier is active.
	Enabled() bool
}

// Saver is the persistence half of Store used by the Emitter.
type Saver interface {
	SaveAlert(ctx context.Context, alert *Alert) error
}

// Emitter persists alerts and notifies subscribers.
type Emitter struct {
	store         Saver
	notifyTimeout time.Duration

	mu        sync.RWMutex
	notifiers []Notifier

	wg  sync.WaitGroup
	now func() time.Time
}

// NewEmitter creates an emitter. notifyTimeout bounds each notifier call;
// zero means 10 seconds.
func NewEmitter(store Saver, notifyTimeout time.Duration) *Emitter {
	if notifyTimeout <= 0 {
		notifyTimeout = 10 * time.Second
	}
	return &Emitter{
		store:         store,
		notifyTimeout: notifyTimeout,
		now:           time.Now,
	}
}

// AddNotifier registers a notifier.
func (e *Emitter) AddNotifier(n Notifier) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notifiers = append(e.notifiers, n)
}

// Emit records alert and dispatches it to enabled notifiers in the background.
func (e *Emitter) Emit(ctx context.Context, alert *Alert) {
	if alert == nil {
		return
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = e.now().UTC()
	}

	metrics.RecordAlert(string(alert.Type), string(alert.Severity))

	if e.store != nil {
		if err := e.save(ctx, alert); err != nil {
			metrics.RecordAlertFailure("store")
			logging.CtxErr(ctx, err).
				Str("alert_type", string(alert.Type)).
				Str("severity", string(alert.Severity)).
				Msg("Failed to persist alert")
		}
	}

	logging.Ctx(ctx).Warn().
		Int64("alert_id", alert.ID).
		Str("alert_type", string(alert.Type)).
		Str("severity", string(alert.Severity)).
		Msg(alert.Title)

	e.notify(ctx, alert)
}

// save shields the caller from a panicking store.
func (e *Emitter) save(ctx context.Context, alert *Alert) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("alert store panic: %v", r)
		}
	}()
	return e.store.SaveAlert(ctx, alert)
}

// notify sends the alert to all enabled notifiers. The request context is
// detached so a finished request does not cancel in-flight deliveries.
func (e *Emitter) notify(ctx context.Context, alert *Alert) {
	e.mu.RLock()
	notifiers := make([]Notifier, 0, len(e.notifiers))
	for _, n := range e.notifiers {
		if n.Enabled() {
			notifiers = append(notifiers, n)
		}
	}
	e.mu.RUnlock()

	base := context.WithoutCancel(ctx)
	for _, notifier := range notifiers {
		e.wg.Add(1)
		go func(n Notifier) {
			defer e.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					metrics.RecordAlertFailure(n.Name())
					logging.Ctx(base).Error().Interface("panic", r).Str("notifier", n.Name()).Msg("Alert notifier panicked")
				}
			}()

			sendCtx, cancel := context.WithTimeout(base, e.notifyTimeout)
			defer cancel()
			if err := n.Send(sendCtx, alert); err != nil {
				metrics.RecordAlertFailure(n.Name())
				logging.CtxErr(base, err).Str("notifier", n.Name()).Int64("alert_id", alert.ID).Msg("Failed to send alert")
			}
		}(notifier)
	}
}

// Wait blocks until in-flight notifications finish. Used on shutdown and in tests.
func (e *Emitter) Wait() {
	e.wg.Wait()
}
