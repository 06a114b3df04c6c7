// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

package alerts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sitecheck/internal/logging"
	"github.com/tomtom215/sitecheck/internal/metrics"
)

// ErrNotFound is returned by triage operations on an unknown alert id.
var ErrNotFound = errors.New("alert not found")

// Store persists alerts.
type Store interface {
	SaveAlert(ctx context.Context, alert *Alert) error
	GetAlert(ctx context.Context, id int64) (*Alert, error)
	ListAlerts(ctx context.Context, filter Filter) ([]Alert, error)
	MarkRead(ctx context.Context, id int64) error
	Resolve(ctx context.Context, id int64) error
	CountUnread(ctx context.Context) (int, error)
}

// DuckDBStore implements Store using DuckDB.
type DuckDBStore struct {
	db *sql.DB
}

// NewDuckDBStore creates a new DuckDB-backed alert store.
func NewDuckDBStore(db *sql.DB) *DuckDBStore {
	return &DuckDBStore{db: db}
}

// InitSchema creates the alerts table.
func (s *DuckDBStore) InitSchema(ctx context.Context) error {
	queries := []string{
		`CREATE SEQUENCE IF NOT EXISTS alerts_id_seq START 1`,
		`CREATE TABLE IF NOT EXISTS alerts (
			id BIGINT PRIMARY KEY DEFAULT nextval('alerts_id_seq'),
			type TEXT NOT NULL,
			severity TEXT NOT NULL,
			worker_id BIGINT,
			site_id BIGINT,
			title TEXT NOT NULL,
			message TEXT NOT NULL,
			metadata TEXT,
			is_read BOOLEAN NOT NULL DEFAULT false,
			resolved_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_worker_id ON alerts(worker_id)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_type ON alerts(type)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_created_at ON alerts(created_at)`,
	}

	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute schema query: %w", err)
		}
	}
	return nil
}

const alertColumns = `id, type, severity, worker_id, site_id, title, message, metadata,
	is_read, resolved_at, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanAlertRow scans a single alert row with nullable fields handling.
func scanAlertRow(scanner rowScanner, alert *Alert) error {
	var workerID, siteID sql.NullInt64
	var metadata sql.NullString
	var resolvedAt sql.NullTime

	if err := scanner.Scan(
		&alert.ID,
		&alert.Type,
		&alert.Severity,
		&workerID,
		&siteID,
		&alert.Title,
		&alert.Message,
		&metadata,
		&alert.IsRead,
		&resolvedAt,
		&alert.CreatedAt,
	); err != nil {
		return err
	}

	if workerID.Valid {
		id := workerID.Int64
		alert.WorkerID = &id
	}
	if siteID.Valid {
		id := siteID.Int64
		alert.SiteID = &id
	}
	if metadata.Valid && metadata.String != "" {
		alert.Metadata = json.RawMessage(metadata.String)
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		alert.ResolvedAt = &t
	}
	return nil
}

// SaveAlert persists a new alert and sets its ID.
func (s *DuckDBStore) SaveAlert(ctx context.Context, alert *Alert) error {
	query := `INSERT INTO alerts
		(type, severity, worker_id, site_id, title, message, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`

	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}

	var metadata interface{}
	if len(alert.Metadata) > 0 {
		metadata = string(alert.Metadata)
	}

	start := time.Now()
	err := s.db.QueryRowContext(ctx, query,
		string(alert.Type),
		string(alert.Severity),
		nullInt(alert.WorkerID),
		nullInt(alert.SiteID),
		alert.Title,
		alert.Message,
		metadata,
		alert.CreatedAt.UTC(),
	).Scan(&alert.ID)
	metrics.RecordDBQuery("INSERT", "alerts", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	return nil
}

// GetAlert retrieves an alert by ID. A missing alert returns ErrNotFound.
func (s *DuckDBStore) GetAlert(ctx context.Context, id int64) (*Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE id = ?`

	alert := &Alert{}
	err := scanAlertRow(s.db.QueryRowContext(ctx, query, id), alert)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	return alert, nil
}

// ListAlerts retrieves alerts with optional filtering. User values are bound
// as parameters and ORDER BY columns come from validAlertOrderColumns.
func (s *DuckDBStore) ListAlerts(ctx context.Context, filter Filter) ([]Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE 1=1`
	query, args := applyAlertFilters(query, make([]interface{}, 0), filter)
	query = applyAlertOrdering(query, filter)
	query, args = applyAlertPagination(query, args, filter)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]Alert, 0)
	for rows.Next() {
		var alert Alert
		if err := scanAlertRow(rows, &alert); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

func applyAlertFilters(query string, args []interface{}, filter Filter) (string, []interface{}) {
	if len(filter.Types) > 0 {
		query += fmt.Sprintf(" AND type IN (%s)", buildPlaceholders(len(filter.Types)))
		for _, t := range filter.Types {
			args = append(args, string(t))
		}
	}

	if len(filter.Severities) > 0 {
		query += fmt.Sprintf(" AND severity IN (%s)", buildPlaceholders(len(filter.Severities)))
		for _, sev := range filter.Severities {
			args = append(args, string(sev))
		}
	}

	if filter.WorkerID != nil {
		query += " AND worker_id = ?"
		args = append(args, *filter.WorkerID)
	}

	if filter.SiteID != nil {
		query += " AND site_id = ?"
		args = append(args, *filter.SiteID)
	}

	if filter.IsRead != nil {
		query += " AND is_read = ?"
		args = append(args, *filter.IsRead)
	}

	if filter.Resolved != nil {
		if *filter.Resolved {
			query += " AND resolved_at IS NOT NULL"
		} else {
			query += " AND resolved_at IS NULL"
		}
	}

	if filter.StartDate != nil {
		query += " AND created_at >= ?"
		args = append(args, filter.StartDate.UTC())
	}

	if filter.EndDate != nil {
		query += " AND created_at <= ?"
		args = append(args, filter.EndDate.UTC())
	}

	return query, args
}

// validAlertOrderColumns is a whitelist of columns that can be used for ordering alerts.
var validAlertOrderColumns = map[string]bool{
	"id":          true,
	"type":        true,
	"severity":    true,
	"worker_id":   true,
	"site_id":     true,
	"is_read":     true,
	"resolved_at": true,
	"created_at":  true,
}

func applyAlertOrdering(query string, filter Filter) string {
	orderBy := "created_at"
	if filter.OrderBy != "" && validAlertOrderColumns[filter.OrderBy] {
		orderBy = filter.OrderBy
	}

	orderDir := "DESC"
	if filter.OrderDirection != "" {
		upperDir := strings.ToUpper(filter.OrderDirection)
		if upperDir == "ASC" || upperDir == "DESC" {
			orderDir = upperDir
		}
	}

	// id breaks ties between alerts created in the same instant
	return query + fmt.Sprintf(" ORDER BY %s %s, id %s", orderBy, orderDir, orderDir)
}

func applyAlertPagination(query string, args []interface{}, filter Filter) (string, []interface{}) {
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	} else {
		query += " LIMIT 100"
	}

	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	return query, args
}

func buildPlaceholders(count int) string {
	if count == 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", count), ", ")
}

// MarkRead flags an alert as read.
func (s *DuckDBStore) MarkRead(ctx context.Context, id int64) error {
	return s.updateOne(ctx, `UPDATE alerts SET is_read = true WHERE id = ? RETURNING id`, id)
}

// Resolve closes an alert. Resolving also marks it read; resolving twice keeps
// the first resolution time.
func (s *DuckDBStore) Resolve(ctx context.Context, id int64) error {
	return s.updateOne(ctx,
		`UPDATE alerts SET is_read = true, resolved_at = COALESCE(resolved_at, ?) WHERE id = ? RETURNING id`,
		time.Now().UTC(), id)
}

func (s *DuckDBStore) updateOne(ctx context.Context, query string, args ...interface{}) error {
	var id int64
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Alert triage update failed")
		return fmt.Errorf("failed to update alert: %w", err)
	}
	return nil
}

// CountUnread returns the number of unread alerts.
func (s *DuckDBStore) CountUnread(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM alerts WHERE is_read = false`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count alerts: %w", err)
	}
	return count, nil
}

func nullInt(p *int64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
