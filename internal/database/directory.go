// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/sitecheck/internal/models"
)

// GetWorker loads a worker by id. Returns ErrNotFound when absent.
func (db *DB) GetWorker(ctx context.Context, id int64) (*models.Worker, error) {
	query := `SELECT id, user_id, name, COALESCE(site_id, 0), fingerprint_enabled, face_enabled,
		is_active, created_at
		FROM workers WHERE id = ?`

	w := &models.Worker{}
	err := db.conn.QueryRowContext(ctx, query, id).Scan(
		&w.ID, &w.UserID, &w.Name, &w.SiteID, &w.FingerprintEnabled, &w.FaceEnabled,
		&w.IsActive, &w.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get worker %d: %w", id, err)
	}
	return w, nil
}

// SaveWorker inserts the worker when ID is zero, otherwise updates it in place.
func (db *DB) SaveWorker(ctx context.Context, w *models.Worker) error {
	var siteID interface{}
	if w.SiteID > 0 {
		siteID = w.SiteID
	}

	if w.ID == 0 {
		if w.CreatedAt.IsZero() {
			w.CreatedAt = time.Now().UTC()
		}
		query := `INSERT INTO workers
			(user_id, name, site_id, fingerprint_enabled, face_enabled, is_active, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			RETURNING id`
		err := db.conn.QueryRowContext(ctx, query,
			w.UserID, w.Name, siteID, w.FingerprintEnabled, w.FaceEnabled, w.IsActive, w.CreatedAt,
		).Scan(&w.ID)
		if err != nil {
			return fmt.Errorf("failed to insert worker: %w", err)
		}
		return nil
	}

	query := `UPDATE workers SET user_id = ?, name = ?, site_id = ?, fingerprint_enabled = ?,
		face_enabled = ?, is_active = ?
		WHERE id = ?`
	res, err := db.conn.ExecContext(ctx, query,
		w.UserID, w.Name, siteID, w.FingerprintEnabled, w.FaceEnabled, w.IsActive, w.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update worker %d: %w", w.ID, err)
	}
	return requireRow(res)
}

// GetSite loads a site by id. Returns ErrNotFound when absent.
func (db *DB) GetSite(ctx context.Context, id int64) (*models.Site, error) {
	query := `SELECT id, name, COALESCE(location, ''), latitude, longitude, geofence_radius, supervisor_id
		FROM sites WHERE id = ?`

	s := &models.Site{}
	var lat, lng sql.NullFloat64
	var supervisor sql.NullInt64
	err := db.conn.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.Location, &lat, &lng, &s.GeofenceRadius, &supervisor,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get site %d: %w", id, err)
	}
	// A half-configured anchor is treated as no anchor.
	if lat.Valid && lng.Valid {
		s.Latitude = &lat.Float64
		s.Longitude = &lng.Float64
	}
	if supervisor.Valid {
		s.SupervisorID = &supervisor.Int64
	}
	return s, nil
}

// SaveSite inserts the site when ID is zero, otherwise updates it in place.
func (db *DB) SaveSite(ctx context.Context, s *models.Site) error {
	if s.GeofenceRadius <= 0 {
		s.GeofenceRadius = 100
	}

	if s.ID == 0 {
		query := `INSERT INTO sites (name, location, latitude, longitude, geofence_radius, supervisor_id)
			VALUES (?, ?, ?, ?, ?, ?)
			RETURNING id`
		err := db.conn.QueryRowContext(ctx, query,
			s.Name, s.Location, nullFloat(s.Latitude), nullFloat(s.Longitude), s.GeofenceRadius, nullInt(s.SupervisorID),
		).Scan(&s.ID)
		if err != nil {
			return fmt.Errorf("failed to insert site: %w", err)
		}
		return nil
	}

	query := `UPDATE sites SET name = ?, location = ?, latitude = ?, longitude = ?,
		geofence_radius = ?, supervisor_id = ?
		WHERE id = ?`
	res, err := db.conn.ExecContext(ctx, query,
		s.Name, s.Location, nullFloat(s.Latitude), nullFloat(s.Longitude), s.GeofenceRadius, nullInt(s.SupervisorID), s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update site %d: %w", s.ID, err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// nullFloat and nullInt turn optional values into driver-friendly nils.
func nullFloat(p *float64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func nullInt(p *int64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
