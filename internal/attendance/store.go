// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/sitecheck/internal/logging"
	"github.com/tomtom215/sitecheck/internal/metrics"
	"github.com/tomtom215/sitecheck/internal/models"
)

// ErrWriteConflict is returned when a conditional write keeps losing to
// another writer for the same worker and day.
var ErrWriteConflict = errors.New("attendance write conflict")

// Event is a verified attendance event ready to be applied.
type Event struct {
	WorkerID int64
	SiteID   int64
	Location string
	At       time.Time
	Day      time.Time // from Policy.Day
	Status   string    // from Policy.Status, used on check-in only

	Latitude       *float64
	Longitude      *float64
	DistanceMeters *float64
	GPSVerified    bool

	Method     string
	MatchScore *float64
}

// Outcome is the applied transition and the record after it.
type Outcome struct {
	Action Action
	Record *models.AttendanceRecord
}

// Store persists attendance. Record must be atomic per (worker, day): two
// concurrent calls can never both produce a check-in.
type Store interface {
	Record(ctx context.Context, ev Event) (*Outcome, error)
	Get(ctx context.Context, workerID int64, day time.Time) (*models.AttendanceRecord, error)
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error)
}

// DuckDBStore implements Store on DuckDB.
type DuckDBStore struct {
	db *sql.DB

	// workerLocks serializes writes per worker. DuckDB's optimistic
	// concurrency would otherwise fail one of two concurrent writers to the
	// same row with a transaction conflict.
	workerLocks sync.Map
}

// NewDuckDBStore creates a store on an open connection. Call InitSchema before use.
func NewDuckDBStore(db *sql.DB) *DuckDBStore {
	return &DuckDBStore{db: db}
}

// InitSchema creates the attendance table and its per-day uniqueness constraint.
func (s *DuckDBStore) InitSchema(ctx context.Context) error {
	queries := []string{
		`CREATE SEQUENCE IF NOT EXISTS attendance_id_seq START 1`,
		`CREATE TABLE IF NOT EXISTS attendance (
			id BIGINT PRIMARY KEY DEFAULT nextval('attendance_id_seq'),
			worker_id BIGINT NOT NULL,
			site_id BIGINT,
			work_date DATE NOT NULL,
			check_in_time TIMESTAMP NOT NULL,
			check_out_time TIMESTAMP,
			status TEXT NOT NULL,
			location TEXT,
			latitude DOUBLE,
			longitude DOUBLE,
			distance_meters DOUBLE,
			gps_verified BOOLEAN NOT NULL DEFAULT false,
			method TEXT NOT NULL,
			match_score DOUBLE,
			check_out_method TEXT,
			check_out_score DOUBLE,
			updated_at TIMESTAMP NOT NULL,
			UNIQUE (worker_id, work_date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_attendance_work_date ON attendance(work_date)`,
		`CREATE INDEX IF NOT EXISTS idx_attendance_site_id ON attendance(site_id)`,
	}

	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute schema query: %w", err)
		}
	}
	return nil
}

const recordColumns = `id, worker_id, COALESCE(site_id, 0), work_date, check_in_time, check_out_time,
	status, COALESCE(location, ''), latitude, longitude, distance_meters, gps_verified,
	method, match_score, COALESCE(check_out_method, ''), check_out_score, updated_at`

// Record resolves and applies ev. The decision is taken from the current
// record and written with a conditional statement, so a lost race is
// detected by the write affecting no row rather than by a duplicate.
func (s *DuckDBStore) Record(ctx context.Context, ev Event) (*Outcome, error) {
	mu := s.lockFor(ev.WorkerID)
	mu.Lock()
	defer mu.Unlock()

	for attempt := 0; attempt < 3; attempt++ {
		existing, err := s.Get(ctx, ev.WorkerID, ev.Day)
		if err != nil {
			return nil, err
		}

		action, err := Resolve(existing)
		if err != nil {
			return nil, err
		}

		var rec *models.AttendanceRecord
		switch action {
		case ActionCheckIn:
			rec, err = s.insertCheckIn(ctx, ev)
		case ActionCheckOut:
			rec, err = s.updateCheckOut(ctx, existing.ID, ev)
		}
		if errors.Is(err, sql.ErrNoRows) {
			metrics.AttendanceWriteConflicts.Inc()
			logging.Ctx(ctx).Debug().Int("attempt", attempt).Msg("Attendance write lost a race, re-resolving")
			continue
		}
		if err != nil {
			return nil, err
		}
		return &Outcome{Action: action, Record: rec}, nil
	}
	return nil, ErrWriteConflict
}

// insertCheckIn creates the day's record. ON CONFLICT DO NOTHING returns no
// row when another writer created it first.
func (s *DuckDBStore) insertCheckIn(ctx context.Context, ev Event) (*models.AttendanceRecord, error) {
	query := `INSERT INTO attendance
		(worker_id, site_id, work_date, check_in_time, status, location, latitude, longitude,
		 distance_meters, gps_verified, method, match_score, updated_at)
		VALUES (?, ?, CAST(? AS DATE), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (worker_id, work_date) DO NOTHING
		RETURNING ` + recordColumns

	at := ev.At.UTC()
	rec, err := scanRecord(s.db.QueryRowContext(ctx, query,
		ev.WorkerID, nullID(ev.SiteID), ev.Day.Format(time.DateOnly), at, ev.Status, ev.Location,
		nullFloat(ev.Latitude), nullFloat(ev.Longitude), nullFloat(ev.DistanceMeters), ev.GPSVerified,
		ev.Method, nullFloat(ev.MatchScore), at,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to insert check-in: %w", err)
	}
	return rec, nil
}

// updateCheckOut closes the day's record. Check-in fields are preserved; the
// WHERE clause returns no row when the record was already closed.
func (s *DuckDBStore) updateCheckOut(ctx context.Context, id int64, ev Event) (*models.AttendanceRecord, error) {
	query := `UPDATE attendance SET
			check_out_time = ?, check_out_method = ?, check_out_score = ?, updated_at = ?
		WHERE id = ? AND check_out_time IS NULL
		RETURNING ` + recordColumns

	at := ev.At.UTC()
	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, at, ev.Method, nullFloat(ev.MatchScore), at, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to record check-out: %w", err)
	}
	return rec, nil
}

// Get returns the worker's record for day, or nil when there is none.
func (s *DuckDBStore) Get(ctx context.Context, workerID int64, day time.Time) (*models.AttendanceRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM attendance WHERE worker_id = ? AND work_date = CAST(? AS DATE)`

	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, workerID, day.Format(time.DateOnly)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}
	return rec, nil
}

// List returns attendance history, newest day first.
func (s *DuckDBStore) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM attendance WHERE 1=1`
	args := make([]interface{}, 0, 6)

	if filter.WorkerID > 0 {
		query += ` AND worker_id = ?`
		args = append(args, filter.WorkerID)
	}
	if filter.SiteID > 0 {
		query += ` AND site_id = ?`
		args = append(args, filter.SiteID)
	}
	if filter.From != nil {
		query += ` AND work_date >= CAST(? AS DATE)`
		args = append(args, filter.From.Format(time.DateOnly))
	}
	if filter.To != nil {
		query += ` AND work_date <= CAST(? AS DATE)`
		args = append(args, filter.To.Format(time.DateOnly))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	query += ` ORDER BY work_date DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, max(filter.Offset, 0))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	records := make([]models.AttendanceRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func (s *DuckDBStore) lockFor(workerID int64) *sync.Mutex {
	mu, _ := s.workerLocks.LoadOrStore(workerID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*models.AttendanceRecord, error) {
	rec := &models.AttendanceRecord{}
	var checkOut sql.NullTime
	var lat, lng, dist, score, outScore sql.NullFloat64

	err := row.Scan(
		&rec.ID, &rec.WorkerID, &rec.SiteID, &rec.WorkDate, &rec.CheckInTime, &checkOut,
		&rec.Status, &rec.Location, &lat, &lng, &dist, &rec.GPSVerified,
		&rec.Method, &score, &rec.CheckOutMethod, &outScore, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if checkOut.Valid {
		t := checkOut.Time
		rec.CheckOutTime = &t
	}
	rec.Latitude = floatPtr(lat)
	rec.Longitude = floatPtr(lng)
	rec.DistanceMeters = floatPtr(dist)
	rec.MatchScore = floatPtr(score)
	rec.CheckOutScore = floatPtr(outScore)
	return rec, nil
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	f := n.Float64
	return &f
}

func nullFloat(p *float64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func nullID(id int64) interface{} {
	if id <= 0 {
		return nil
	}
	return id
}
