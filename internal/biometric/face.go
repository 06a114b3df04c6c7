// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

package biometric

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/tomtom215/sitecheck/internal/alerts"
	"github.com/tomtom215/sitecheck/internal/models"
)

// EmbeddingStore loads enrolled face embeddings.
type EmbeddingStore interface {
	ListEmbeddings(ctx context.Context, workerID int64) ([]models.FaceEmbedding, error)
}

// FaceConfig holds the face match thresholds, on the 0-100 score scale.
type FaceConfig struct {
	Threshold     float64 // accept at or above
	CriticalBelow float64 // failures below are critical, others high
}

// FaceVerifier compares a live descriptor with the worker's enrolled embeddings.
type FaceVerifier struct {
	store EmbeddingStore
	cfg   FaceConfig
}

// NewFaceVerifier creates the face strategy.
func NewFaceVerifier(store EmbeddingStore, cfg FaceConfig) *FaceVerifier {
	if cfg.Threshold <= 0 {
		cfg.Threshold = 70
	}
	if cfg.CriticalBelow <= 0 {
		cfg.CriticalBelow = 40
	}
	return &FaceVerifier{store: store, cfg: cfg}
}

// Method implements Verifier.
func (f *FaceVerifier) Method() Method { return MethodFace }

// Verify scores the descriptor against every enrolled embedding; the best match wins.
func (f *FaceVerifier) Verify(ctx context.Context, vc VerificationContext) (Result, error) {
	if vc.Worker == nil || !vc.Worker.FaceEnabled {
		return Result{FailureReason: "face recognition not enabled"}, ErrMethodNotEnabled
	}
	if !usableVector(vc.FaceDescriptor) {
		return Result{FailureReason: "face descriptor missing"}, ErrMissingDescriptor
	}

	embeddings, err := f.store.ListEmbeddings(ctx, vc.Worker.ID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load face embeddings: %w", err)
	}
	if len(embeddings) == 0 {
		return Result{FailureReason: "no face enrollment"}, ErrNoEnrollment
	}

	best := -1.0
	for _, e := range embeddings {
		if sim := CosineSimilarity(vc.FaceDescriptor, e.Vector); sim > best {
			best = sim
		}
	}
	s := SimilarityScore(best)

	if s >= f.cfg.Threshold {
		return Result{Verified: true, MatchScore: score(s)}, nil
	}

	severity := alerts.SeverityHigh
	if s < f.cfg.CriticalBelow {
		severity = alerts.SeverityCritical
	}
	return Result{
		MatchScore:    score(s),
		FailureReason: "face did not match",
		Severity:      severity,
	}, ErrVerificationFailed
}

// CosineSimilarity returns dot(a,b)/(|a||b|). It is 0 when the lengths differ,
// either vector is empty, or either norm is 0. Each vector is reduced to unit
// length first, so finite inputs of any magnitude stay in [-1, 1].
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	ua, ub := unitVector(a), unitVector(b)
	if ua == nil || ub == nil {
		return 0
	}
	sim := floats.Dot(ua, ub)
	if math.IsNaN(sim) {
		return 0
	}
	// Clamp float error so identical vectors never exceed 1.
	return math.Max(-1, math.Min(1, sim))
}

// unitVector returns a unit-length copy of v, or nil for a zero or non-finite
// vector. Dividing by the largest component first keeps the norm from
// overflowing or underflowing.
func unitVector(v []float64) []float64 {
	if !usableVector(v) {
		return nil
	}
	var maxAbs float64
	for _, x := range v {
		maxAbs = math.Max(maxAbs, math.Abs(x))
	}
	if maxAbs == 0 {
		return nil
	}
	u := make([]float64, len(v))
	for i, x := range v {
		u[i] = x / maxAbs
	}
	floats.Scale(1/floats.Norm(u, 2), u)
	return u
}

// SimilarityScore converts a cosine similarity to the 0-100 scale, rounded to 2 decimals.
func SimilarityScore(similarity float64) float64 {
	return math.Round(similarity*100*100) / 100
}

func usableVector(v []float64) bool {
	if len(v) == 0 {
		return false
	}
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
