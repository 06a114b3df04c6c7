// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

// Package metrics exposes Prometheus instrumentation for Sitecheck.
//
// All collectors are registered with the default registry through promauto
// and served by the /metrics endpoint:
//
//	curl http://localhost:3857/metrics
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Check-in Metrics
	CheckinsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitecheck_checkins_total",
			Help: "Total number of check-in requests by method and outcome",
		},
		[]string{"method", "outcome"}, // outcome: check-in, check-out, or a rejection kind
	)

	CheckinDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sitecheck_checkin_duration_seconds",
			Help:    "End-to-end check-in processing time in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method"},
	)

	VerificationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitecheck_verification_failures_total",
			Help: "Total number of failed biometric verifications",
		},
		[]string{"method", "reason"},
	)

	GeofenceDistance = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sitecheck_geofence_distance_meters",
			Help:    "Distance between reported position and site anchor",
			Buckets: []float64{10, 25, 50, 100, 150, 250, 500, 1000, 5000, 25000},
		},
	)

	GeofenceViolations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sitecheck_geofence_violations_total",
			Help: "Total number of check-ins rejected for being outside the geofence",
		},
	)

	AttendanceWriteConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sitecheck_attendance_write_conflicts_total",
			Help: "Total number of conditional attendance writes that lost a race and were re-resolved",
		},
	)

	// Challenge Metrics
	ChallengeOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitecheck_challenge_operations_total",
			Help: "WebAuthn challenge store operations",
		},
		[]string{"backend", "operation", "result"},
	)

	// Alert Metrics
	AlertsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitecheck_alerts_emitted_total",
			Help: "Total number of security alerts emitted",
		},
		[]string{"type", "severity"},
	)

	AlertEmissionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitecheck_alert_emission_failures_total",
			Help: "Total number of alert persistence or notification failures",
		},
		[]string{"stage"}, // store, or the notifier name
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Event Publishing Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitecheck_events_published_total",
			Help: "Total number of domain events published",
		},
		[]string{"topic", "result"},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordCheckin records the outcome of one check-in request.
func RecordCheckin(method, outcome string, duration time.Duration) {
	if method == "" {
		method = "unknown"
	}
	CheckinsTotal.WithLabelValues(method, outcome).Inc()
	CheckinDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordVerificationFailure counts a rejected biometric attempt.
func RecordVerificationFailure(method, reason string) {
	VerificationFailures.WithLabelValues(method, reason).Inc()
}

// RecordGeofence observes an evaluated distance and counts violations.
func RecordGeofence(distanceMeters float64, within bool) {
	GeofenceDistance.Observe(distanceMeters)
	if !within {
		GeofenceViolations.Inc()
	}
}

// RecordChallenge counts a challenge store operation.
func RecordChallenge(backend, operation string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	ChallengeOperations.WithLabelValues(backend, operation, result).Inc()
}

// RecordAlert counts an emitted alert.
func RecordAlert(alertType, severity string) {
	AlertsEmitted.WithLabelValues(alertType, severity).Inc()
}

// RecordAlertFailure counts a failed persistence or notification step.
func RecordAlertFailure(stage string) {
	AlertEmissionFailures.WithLabelValues(stage).Inc()
}

// RecordEventPublish counts a published (or failed) domain event.
func RecordEventPublish(topic string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	EventsPublished.WithLabelValues(topic, result).Inc()
}

// RecordCircuitBreakerState maps a breaker state name to the gauge value.
func RecordCircuitBreakerState(name, state string) {
	var v float64
	switch state {
	case "half-open":
		v = 1
	case "open":
		v = 2
	}
	CircuitBreakerState.WithLabelValues(name).Set(v)
}
