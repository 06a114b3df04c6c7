// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

package audit

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/sitecheck/internal/logging"
)

// Config controls the audit logger.
type Config struct {
	// RetentionDays is how long events are kept. Zero keeps them forever.
	RetentionDays int
	// BufferSize is the number of events queued before new ones are dropped.
	BufferSize int
}

// Logger writes audit events asynchronously.
type Logger struct {
	store     Store
	retention int
	eventCh   chan *Event
	stopCh    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	now       func() time.Time
}

// NewLogger starts the background writer.
func NewLogger(store Store, cfg Config) *Logger {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1000
	}
	l := &Logger{
		store:     store,
		retention: cfg.RetentionDays,
		eventCh:   make(chan *Event, cfg.BufferSize),
		stopCh:    make(chan struct{}),
		now:       time.Now,
	}
	l.wg.Add(1)
	go l.asyncWriter()
	return l
}

func (l *Logger) asyncWriter() {
	defer l.wg.Done()
	for {
		select {
		case <-l.stopCh:
			// Drain what is already queued.
			for {
				select {
				case event := <-l.eventCh:
					l.write(event)
				default:
					return
				}
			}
		case event := <-l.eventCh:
			l.write(event)
		}
	}
}

func (l *Logger) write(event *Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.store.Save(ctx, event); err != nil {
		logging.Error().Err(err).Str("event_id", event.ID).Str("type", string(event.Type)).Msg("Failed to save audit event")
	}
}

// Log queues event. It never blocks; when the buffer is full the event is
// dropped and a warning is logged.
func (l *Logger) Log(event *Event) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = l.now().UTC()
	}
	select {
	case <-l.stopCh:
		logging.Warn().Str("type", string(event.Type)).Msg("Audit logger closed, dropping event")
		return
	default:
	}
	select {
	case l.eventCh <- event:
	default:
		logging.Warn().Str("event_id", event.ID).Str("type", string(event.Type)).Msg("Audit event buffer full, dropping event")
	}
}

// Close flushes queued events and stops the writer.
func (l *Logger) Close() error {
	l.closeOnce.Do(func() { close(l.stopCh) })
	l.wg.Wait()
	return nil
}

// Query reads stored events.
func (l *Logger) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	return l.store.Query(ctx, filter)
}

// Prune deletes events older than the retention window.
func (l *Logger) Prune(ctx context.Context) (int64, error) {
	if l.retention <= 0 {
		return 0, nil
	}
	cutoff := l.now().AddDate(0, 0, -l.retention)
	count, err := l.store.Delete(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		logging.Info().Int64("deleted", count).Time("older_than", cutoff).Msg("Pruned audit events")
	}
	return count, nil
}

// LogLogin records an admin login attempt.
func (l *Logger) LogLogin(r *http.Request, username, role string, ok bool) {
	event := &Event{
		Type:      EventAuthSuccess,
		Severity:  SeverityInfo,
		Outcome:   OutcomeSuccess,
		Actor:     Actor{ID: username, Role: role},
		Source:    SourceFromRequest(r),
		Action:    "login",
		RequestID: logging.RequestIDFromContext(r.Context()),
	}
	if ok {
		event.Description = "Admin login succeeded"
	} else {
		event.Type = EventAuthFailure
		event.Severity = SeverityWarning
		event.Outcome = OutcomeFailure
		event.Description = "Admin login failed"
	}
	l.Log(event)
}

// LogAction records a successful admin action on a target.
func (l *Logger) LogAction(r *http.Request, actor Actor, eventType EventType, target Target, description string, metadata map[string]interface{}) {
	event := &Event{
		Type:        eventType,
		Severity:    SeverityInfo,
		Outcome:     OutcomeSuccess,
		Actor:       actor,
		Target:      &target,
		Source:      SourceFromRequest(r),
		Action:      string(eventType),
		Description: description,
		RequestID:   logging.RequestIDFromContext(r.Context()),
	}
	if eventType == EventCredentialRejected {
		event.Severity = SeverityWarning
		event.Outcome = OutcomeFailure
	}
	if len(metadata) > 0 {
		event.Metadata = mustJSON(metadata)
	}
	l.Log(event)
}

// WorkerTarget names a worker as an audit target.
func WorkerTarget(id int64) Target {
	return Target{ID: strconv.FormatInt(id, 10), Type: "worker"}
}

// AlertTarget names an alert as an audit target.
func AlertTarget(id int64) Target {
	return Target{ID: strconv.FormatInt(id, 10), Type: "alert"}
}
