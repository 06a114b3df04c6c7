// Sitecheck - Workforce Attendance Verification and Geofenced Check-in
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitecheck

package database

import (
	"context"
	"fmt"
)

// DuckDB has no LastInsertId for sequences, so ids come back through RETURNING.
var directorySchema = []string{
	`CREATE SEQUENCE IF NOT EXISTS sites_id_seq START 1`,
	`CREATE SEQUENCE IF NOT EXISTS workers_id_seq START 1`,
	`CREATE SEQUENCE IF NOT EXISTS webauthn_credentials_id_seq START 1`,
	`CREATE SEQUENCE IF NOT EXISTS face_embeddings_id_seq START 1`,

	`CREATE TABLE IF NOT EXISTS sites (
		id BIGINT PRIMARY KEY DEFAULT nextval('sites_id_seq'),
		name TEXT NOT NULL,
		location TEXT,
		latitude DOUBLE,
		longitude DOUBLE,
		geofence_radius DOUBLE NOT NULL DEFAULT 100,
		supervisor_id BIGINT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS workers (
		id BIGINT PRIMARY KEY DEFAULT nextval('workers_id_seq'),
		user_id BIGINT NOT NULL,
		name TEXT NOT NULL,
		site_id BIGINT,
		fingerprint_enabled BOOLEAN NOT NULL DEFAULT false,
		face_enabled BOOLEAN NOT NULL DEFAULT false,
		is_active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS webauthn_credentials (
		id BIGINT PRIMARY KEY DEFAULT nextval('webauthn_credentials_id_seq'),
		user_id BIGINT NOT NULL,
		credential_id BLOB NOT NULL UNIQUE,
		public_key BLOB NOT NULL,
		attestation_type TEXT,
		aaguid BLOB,
		sign_count BIGINT NOT NULL DEFAULT 0,
		transports TEXT,
		backup_eligible BOOLEAN NOT NULL DEFAULT false,
		backup_state BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		last_used_at TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS face_embeddings (
		id BIGINT PRIMARY KEY DEFAULT nextval('face_embeddings_id_seq'),
		worker_id BIGINT NOT NULL,
		vector TEXT NOT NULL,
		label TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE INDEX IF NOT EXISTS idx_workers_site_id ON workers(site_id)`,
	`CREATE INDEX IF NOT EXISTS idx_credentials_user_id ON webauthn_credentials(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_embeddings_worker_id ON face_embeddings(worker_id)`,
}

func (db *DB) initSchema(ctx context.Context) error {
	for _, query := range directorySchema {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute schema query: %w", err)
		}
	}
	return nil
}
