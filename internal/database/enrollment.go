// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sitecheck/internal/models"
)

// ListCredentials returns every WebAuthn credential registered for a user account.
func (db *DB) ListCredentials(ctx context.Context, userID int64) ([]models.WebAuthnCredential, error) {
	query := `SELECT id, user_id, credential_id, public_key, COALESCE(attestation_type, ''), aaguid,
		sign_count, COALESCE(transports, ''), backup_eligible, backup_state, created_at, last_used_at
		FROM webauthn_credentials WHERE user_id = ? ORDER BY id`

	rows, err := db.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query credentials: %w", err)
	}
	defer rows.Close()

	var creds []models.WebAuthnCredential
	for rows.Next() {
		var c models.WebAuthnCredential
		var signCount int64
		var transports string
		var lastUsed sql.NullTime
		if err := rows.Scan(&c.ID, &c.UserID, &c.CredentialID, &c.PublicKey, &c.AttestationType, &c.AAGUID,
			&signCount, &transports, &c.BackupEligible, &c.BackupState, &c.CreatedAt, &lastUsed); err != nil {
			return nil, fmt.Errorf("failed to scan credential: %w", err)
		}
		c.Counter = uint32(signCount) //nolint:gosec // stored from a uint32
		if transports != "" {
			c.Transports = strings.Split(transports, ",")
		}
		if lastUsed.Valid {
			c.LastUsedAt = &lastUsed.Time
		}
		creds = append(creds, c)
	}
	return creds, rows.Err()
}

// AddCredential registers a new credential.
func (db *DB) AddCredential(ctx context.Context, c *models.WebAuthnCredential) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO webauthn_credentials
		(user_id, credential_id, public_key, attestation_type, aaguid, sign_count, transports,
		 backup_eligible, backup_state, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`
	err := db.conn.QueryRowContext(ctx, query,
		c.UserID, c.CredentialID, c.PublicKey, c.AttestationType, c.AAGUID, int64(c.Counter),
		strings.Join(c.Transports, ","), c.BackupEligible, c.BackupState, c.CreatedAt,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("failed to insert credential: %w", err)
	}
	return nil
}

// UpdateCounter stores the authenticator signature counter after a successful assertion.
func (db *DB) UpdateCounter(ctx context.Context, credentialID []byte, counter uint32) error {
	query := `UPDATE webauthn_credentials SET sign_count = ?, last_used_at = ? WHERE credential_id = ?`
	res, err := db.conn.ExecContext(ctx, query, int64(counter), time.Now().UTC(), credentialID)
	if err != nil {
		return fmt.Errorf("failed to update credential counter: %w", err)
	}
	return requireRow(res)
}

// ListEmbeddings returns every enrolled face embedding for a worker, oldest first.
func (db *DB) ListEmbeddings(ctx context.Context, workerID int64) ([]models.FaceEmbedding, error) {
	query := `SELECT id, worker_id, vector, COALESCE(label, ''), created_at
		FROM face_embeddings WHERE worker_id = ? ORDER BY id`

	rows, err := db.conn.QueryContext(ctx, query, workerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query embeddings: %w", err)
	}
	defer rows.Close()

	var embeddings []models.FaceEmbedding
	for rows.Next() {
		var e models.FaceEmbedding
		var raw string
		if err := rows.Scan(&e.ID, &e.WorkerID, &raw, &e.Label, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan embedding: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &e.Vector); err != nil {
			return nil, fmt.Errorf("embedding %d is not a numeric vector: %w", e.ID, err)
		}
		embeddings = append(embeddings, e)
	}
	return embeddings, rows.Err()
}

// AddEmbedding appends an embedding. Existing embeddings are never edited.
func (db *DB) AddEmbedding(ctx context.Context, e *models.FaceEmbedding) error {
	raw, err := json.Marshal(e.Vector)
	if err != nil {
		return fmt.Errorf("failed to encode embedding: %w", err)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO face_embeddings (worker_id, vector, label, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id`
	if err := db.conn.QueryRowContext(ctx, query, e.WorkerID, string(raw), e.Label, e.CreatedAt).Scan(&e.ID); err != nil {
		return fmt.Errorf("failed to insert embedding: %w", err)
	}
	return nil
}
