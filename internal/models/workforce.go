// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

/*
workforce.go - Workers, worksites and biometric enrollment

Key Structures:
  - Worker: a person assigned to one site, with per-method enrollment flags
  - Site: a worksite (group) with an optional GPS anchor and fence radius
  - WebAuthnCredential: a public-key credential registered by a worker's device
  - FaceEmbedding: one enrolled face descriptor, immutable once stored

Persistence lives in internal/database. Workers are never hard-deleted;
IsActive=false takes them out of check-in.
*/

package models

import "time"

// Worker is a field worker assigned to a site.
type Worker struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"userId"`
	Name   string `json:"name"`
	SiteID int64  `json:"siteId"`

	FingerprintEnabled bool `json:"fingerprintEnabled"`
	FaceEnabled        bool `json:"faceEnabled"`
	IsActive           bool `json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
}

// Site is a worksite. Latitude and Longitude are both set or both nil.
type Site struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Location       string   `json:"location"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	GeofenceRadius float64  `json:"geofenceRadius"`
	SupervisorID   *int64   `json:"supervisorId,omitempty"`
}

// HasAnchor reports whether the site has a GPS anchor configured.
func (s *Site) HasAnchor() bool {
	return s != nil && s.Latitude != nil && s.Longitude != nil
}

// WebAuthnCredential is a registered authenticator for a user account.
// Counter is the only field that changes after registration.
type WebAuthnCredential struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"userId"`
	CredentialID    []byte     `json:"credentialId"`
	PublicKey       []byte     `json:"-"`
	AttestationType string     `json:"attestationType"`
	AAGUID          []byte     `json:"aaguid,omitempty"`
	Counter         uint32     `json:"counter"`
	Transports      []string   `json:"transports,omitempty"`
	BackupEligible  bool       `json:"backupEligible"`
	BackupState     bool       `json:"backupState"`
	CreatedAt       time.Time  `json:"createdAt"`
	LastUsedAt      *time.Time `json:"lastUsedAt,omitempty"`
}

// FaceEmbedding is one enrolled face descriptor for a worker.
type FaceEmbedding struct {
	ID        int64     `json:"id"`
	WorkerID  int64     `json:"workerId"`
	Vector    []float64 `json:"vector"`
	Label     string    `json:"label,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
