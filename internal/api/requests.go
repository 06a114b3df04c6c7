// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/sitecheck/internal/alerts"
	"github.com/tomtom215/sitecheck/internal/audit"
	"github.com/tomtom215/sitecheck/internal/models"
)

const (
	defaultPageSize = 100
	maxPageSize     = 1000
)

// pathID parses the {id} URL parameter as a positive integer.
func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func parsePagination(q url.Values) (limit, offset int, err error) {
	limit = defaultPageSize
	if raw := q.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxPageSize {
			return 0, 0, fmt.Errorf("limit must be between 1 and %d", maxPageSize)
		}
	}
	if raw := q.Get("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("offset must be a non-negative integer")
		}
	}
	return limit, offset, nil
}

// parseTime accepts RFC3339 timestamps or YYYY-MM-DD dates.
func parseTime(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q", raw)
	}
	return &t, nil
}

func parseOptionalID(raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("invalid id %q", raw)
	}
	return &id, nil
}

func parseOptionalBool(raw string) (*bool, error) {
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid boolean %q", raw)
	}
	return &b, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseAlertFilter reads type, severity, worker_id, site_id, is_read,
// resolved, start_date, end_date, order_by, order, limit and offset.
func parseAlertFilter(q url.Values) (alerts.Filter, error) {
	var f alerts.Filter
	var err error

	for _, t := range splitList(q.Get("type")) {
		f.Types = append(f.Types, alerts.Type(t))
	}
	for _, s := range splitList(q.Get("severity")) {
		sev := alerts.Severity(s)
		if !sev.Valid() {
			return f, fmt.Errorf("invalid severity %q", s)
		}
		f.Severities = append(f.Severities, sev)
	}
	if f.WorkerID, err = parseOptionalID(q.Get("worker_id")); err != nil {
		return f, err
	}
	if f.SiteID, err = parseOptionalID(q.Get("site_id")); err != nil {
		return f, err
	}
	if f.IsRead, err = parseOptionalBool(q.Get("is_read")); err != nil {
		return f, err
	}
	if f.Resolved, err = parseOptionalBool(q.Get("resolved")); err != nil {
		return f, err
	}
	if f.StartDate, err = parseTime(q.Get("start_date")); err != nil {
		return f, err
	}
	if f.EndDate, err = parseTime(q.Get("end_date")); err != nil {
		return f, err
	}
	f.OrderBy = q.Get("order_by")
	f.OrderDirection = q.Get("order")
	f.Limit, f.Offset, err = parsePagination(q)
	return f, err
}

// parseAttendanceFilter reads from, to, limit and offset for one worker.
func parseAttendanceFilter(workerID int64, q url.Values) (models.AttendanceFilter, error) {
	f := models.AttendanceFilter{WorkerID: workerID}
	var err error
	if f.From, err = parseTime(q.Get("from")); err != nil {
		return f, err
	}
	if f.To, err = parseTime(q.Get("to")); err != nil {
		return f, err
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return f, fmt.Errorf("to must not be before from")
	}
	f.Limit, f.Offset, err = parsePagination(q)
	return f, err
}

// parseAuditFilter reads type, outcome, actor, target, start_date, end_date,
// limit and offset.
func parseAuditFilter(q url.Values) (audit.QueryFilter, error) {
	var f audit.QueryFilter
	var err error
	for _, t := range splitList(q.Get("type")) {
		f.Types = append(f.Types, audit.EventType(t))
	}
	for _, o := range splitList(q.Get("outcome")) {
		outcome := audit.Outcome(o)
		if outcome != audit.OutcomeSuccess && outcome != audit.OutcomeFailure {
			return f, fmt.Errorf("invalid outcome %q", o)
		}
		f.Outcomes = append(f.Outcomes, outcome)
	}
	f.ActorID = q.Get("actor")
	f.TargetID = q.Get("target")
	if f.StartTime, err = parseTime(q.Get("start_date")); err != nil {
		return f, err
	}
	if f.EndTime, err = parseTime(q.Get("end_date")); err != nil {
		return f, err
	}
	f.Limit, f.Offset, err = parsePagination(q)
	return f, err
}
