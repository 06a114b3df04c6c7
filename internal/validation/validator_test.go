// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

package validation

import (
	"math"
	"strings"
	"testing"
)

type sample struct {
	Method    string    `json:"method" validate:"required,oneof=fingerprint face"`
	WorkerID  int64     `json:"workerId" validate:"required,gt=0"`
	Latitude  *float64  `json:"latitude" validate:"omitempty,latitude"`
	Embedding []float64 `json:"embedding" validate:"omitempty,min=2,dive,finite"`
}

func TestValidateStruct(t *testing.T) {
	lat := 12.5
	badLat := 120.0

	tests := []struct {
		name      string
		in        sample
		wantField string
	}{
		{"valid", sample{Method: "face", WorkerID: 1, Latitude: &lat, Embedding: []float64{0.1, 0.2}}, ""},
		{"missing method", sample{WorkerID: 1}, "method"},
		{"unknown method", sample{Method: "qr", WorkerID: 1}, "method"},
		{"zero worker", sample{Method: "face"}, "workerId"},
		{"latitude out of range", sample{Method: "face", WorkerID: 1, Latitude: &badLat}, "latitude"},
		{"short embedding", sample{Method: "face", WorkerID: 1, Embedding: []float64{1}}, "embedding"},
		{"nan in embedding", sample{Method: "face", WorkerID: 1, Embedding: []float64{1, math.NaN()}}, "embedding[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.in)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error")
			}
			if err.Fields[0].Field != tt.wantField {
				t.Errorf("field = %q, want %q (%v)", err.Fields[0].Field, tt.wantField, err)
			}
		})
	}
}

func TestRequestValidationError_Message(t *testing.T) {
	err := ValidateStruct(sample{})
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "method is required") || !strings.Contains(msg, "workerId is required") {
		t.Errorf("Error() = %q", msg)
	}
}
