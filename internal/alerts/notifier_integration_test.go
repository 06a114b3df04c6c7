// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

//go:build integration

package alerts

import (
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sitecheck/internal/testinfra"
)

func TestEmitter_WebhookDelivery_Integration(t *testing.T) {
	hook := testinfra.NewMockWebhookServer(t)

	e := NewEmitter(setupTestStore(t), time.Second)
	e.AddNotifier(NewWebhookNotifier(WebhookConfig{WebhookURL: hook.URL(), Enabled: true, RatePerSecond: 100}))

	score := 35.0
	e.Emit(context.Background(), NewFaceFailureAlert(VerificationFailure{
		WorkerID: 4, SiteID: 2, Severity: SeverityCritical, Score: &score,
	}))
	e.Wait()

	if !hook.WaitForCaptures(1, 2*time.Second) {
		t.Fatal("webhook was not called")
	}
	var payload WebhookPayload
	if err := json.Unmarshal(hook.Captures()[0].Body, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Alert == nil || payload.Alert.ID == 0 {
		t.Fatalf("payload alert should carry the persisted id: %+v", payload.Alert)
	}
	if payload.Alert.Severity != SeverityCritical {
		t.Errorf("severity = %s, want critical", payload.Alert.Severity)
	}
}
