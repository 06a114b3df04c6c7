// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

// Package geofence decides whether a reported worker position lies inside a
// worksite's circular fence.
//
// A site without a GPS anchor, or a request without a position, cannot be
// evaluated. That outcome is reported as not evaluated rather than as a
// violation: a site with no anchor configured cannot reject anyone on
// geofence grounds.
package geofence

import "math"

// EarthRadiusMeters is the mean Earth radius used by the haversine formula.
const EarthRadiusMeters = 6371000.0

// DefaultRadiusMeters applies when a site has no usable radius configured.
const DefaultRadiusMeters = 100.0

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewPoint returns a point when both coordinates are present, nil otherwise.
func NewPoint(lat, lng *float64) *Point {
	if lat == nil || lng == nil {
		return nil
	}
	return &Point{Latitude: *lat, Longitude: *lng}
}

// Result is the outcome of a fence evaluation.
type Result struct {
	// Evaluated is false when either coordinate pair was absent.
	Evaluated bool `json:"evaluated"`
	// DistanceMeters is rounded to 2 decimals. Zero when not evaluated.
	DistanceMeters float64 `json:"distanceMeters"`
	WithinFence    bool    `json:"withinFence"`
	RadiusMeters   float64 `json:"radiusMeters"`
}

// Violation reports whether the result must block the check-in.
func (r Result) Violation() bool {
	return r.Evaluated && !r.WithinFence
}

// Evaluator compares positions against site fences.
type Evaluator struct {
	defaultRadius float64
}

// NewEvaluator creates an evaluator. A non-positive defaultRadius falls back to DefaultRadiusMeters.
func NewEvaluator(defaultRadius float64) *Evaluator {
	if defaultRadius <= 0 {
		defaultRadius = DefaultRadiusMeters
	}
	return &Evaluator{defaultRadius: defaultRadius}
}

// Evaluate measures the distance from worker to site and checks it against radiusMeters.
// The fence boundary is inclusive.
func (e *Evaluator) Evaluate(worker, site *Point, radiusMeters float64) Result {
	if radiusMeters <= 0 {
		radiusMeters = e.defaultRadius
	}
	if worker == nil || site == nil {
		return Result{RadiusMeters: radiusMeters}
	}

	d := Distance(*worker, *site)
	return Result{
		Evaluated:      true,
		DistanceMeters: roundTo2Decimals(d),
		WithinFence:    d <= radiusMeters,
		RadiusMeters:   radiusMeters,
	}
}

// Distance returns the great-circle distance in meters between a and b.
func Distance(a, b Point) float64 {
	lat1 := a.Latitude * math.Pi / 180.0
	lat2 := b.Latitude * math.Pi / 180.0
	dLat := lat2 - lat1
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180.0

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// Float error can push h marginally outside [0,1] for antipodal points.
	h = math.Min(1, math.Max(0, h))

	return EarthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func roundTo2Decimals(f float64) float64 {
	return math.Round(f*100) / 100
}
