// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		table     string
		err       error
	}{
		{name: "successful insert", operation: "INSERT", table: "attendance"},
		{name: "failed update", operation: "UPDATE", table: "attendance", err: errors.New("conflict")},
		{
			name:      "long error is truncated",
			operation: "SELECT",
			table:     "alerts",
			err:       errors.New("this is a very long error message that exceeds fifty characters and should be truncated"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordDBQuery(tt.operation, tt.table, 5*time.Millisecond, tt.err)
		})
	}

	long := "this is a very long error message that exceeds fifty characters and should be truncated"[:50]
	if got := testutil.ToFloat64(DBQueryErrors.WithLabelValues("SELECT", "alerts", long)); got < 1 {
		t.Errorf("truncated error label count = %v, want >= 1", got)
	}
}

func TestRecordCheckin(t *testing.T) {
	before := testutil.ToFloat64(CheckinsTotal.WithLabelValues("face", "check-in"))
	RecordCheckin("face", "check-in", 12*time.Millisecond)
	after := testutil.ToFloat64(CheckinsTotal.WithLabelValues("face", "check-in"))
	if after-before != 1 {
		t.Errorf("check-in counter delta = %v, want 1", after-before)
	}

	before = testutil.ToFloat64(CheckinsTotal.WithLabelValues("unknown", "validation"))
	RecordCheckin("", "validation", time.Millisecond)
	if got := testutil.ToFloat64(CheckinsTotal.WithLabelValues("unknown", "validation")) - before; got != 1 {
		t.Errorf("empty method should be recorded as unknown, delta = %v", got)
	}
}

// histogramSnapshot reads the sample count and sum of a histogram.
func histogramSnapshot(t *testing.T, h prometheus.Histogram) (uint64, float64) {
	t.Helper()
	var m io_prometheus_client.Metric
	if err := h.Write(&m); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return m.GetHistogram().GetSampleCount(), m.GetHistogram().GetSampleSum()
}

func TestRecordGeofence(t *testing.T) {
	before := testutil.ToFloat64(GeofenceViolations)
	countBefore, sumBefore := histogramSnapshot(t, GeofenceDistance)

	RecordGeofence(42, true)
	RecordGeofence(150, false)

	if got := testutil.ToFloat64(GeofenceViolations) - before; got != 1 {
		t.Errorf("violations delta = %v, want 1", got)
	}
	count, sum := histogramSnapshot(t, GeofenceDistance)
	if count-countBefore != 2 || sum-sumBefore != 192 {
		t.Errorf("distance histogram delta = %d samples, %v sum", count-countBefore, sum-sumBefore)
	}
}

func TestRecordAlertAndFailure(t *testing.T) {
	before := testutil.ToFloat64(AlertsEmitted.WithLabelValues("gps_outside_geofence", "high"))
	RecordAlert("gps_outside_geofence", "high")
	if got := testutil.ToFloat64(AlertsEmitted.WithLabelValues("gps_outside_geofence", "high")) - before; got != 1 {
		t.Errorf("alerts delta = %v, want 1", got)
	}

	before = testutil.ToFloat64(AlertEmissionFailures.WithLabelValues("store"))
	RecordAlertFailure("store")
	if got := testutil.ToFloat64(AlertEmissionFailures.WithLabelValues("store")) - before; got != 1 {
		t.Errorf("failure delta = %v, want 1", got)
	}
}

func TestRecordChallengeAndEvents(t *testing.T) {
	RecordChallenge("memory", "consume", nil)
	RecordChallenge("memory", "consume", errors.New("missing"))
	if got := testutil.ToFloat64(ChallengeOperations.WithLabelValues("memory", "consume", "failure")); got < 1 {
		t.Errorf("challenge failure count = %v", got)
	}

	RecordEventPublish("sitecheck.alerts", nil)
	if got := testutil.ToFloat64(EventsPublished.WithLabelValues("sitecheck.alerts", "success")); got < 1 {
		t.Errorf("published count = %v", got)
	}
}

func TestRecordCircuitBreakerState(t *testing.T) {
	tests := []struct {
		state string
		want  float64
	}{
		{"closed", 0},
		{"half-open", 1},
		{"open", 2},
	}
	for _, tt := range tests {
		RecordCircuitBreakerState("alert-webhook", tt.state)
		if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("alert-webhook")); got != tt.want {
			t.Errorf("state %s = %v, want %v", tt.state, got, tt.want)
		}
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	TrackActiveRequest(true)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests) - before; got != 1 {
		t.Errorf("active delta = %v, want 1", got)
	}
}
