// Vitrina - Localized Content Discovery Storefront
// Copyright 2026 Vitrina Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrina-app/vitrina

package database

import "fmt"

// schemaStatements creates the catalog tables. Statements are idempotent so
// startup can run them unconditionally.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS items (
		id BIGINT PRIMARY KEY,
		title VARCHAR NOT NULL,
		image_url VARCHAR NOT NULL DEFAULT '',
		popularity DOUBLE NOT NULL DEFAULT 0,
		trending_score DOUBLE NOT NULL DEFAULT 0,
		weekly_rank INTEGER NOT NULL DEFAULT 0,
		discount_percent INTEGER NOT NULL DEFAULT 0,
		sale_starts_at TIMESTAMP,
		sale_ends_at TIMESTAMP,
		released_at TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS performers (
		id BIGINT PRIMARY KEY,
		name VARCHAR NOT NULL,
		image_url VARCHAR NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS item_performers (
		item_id BIGINT NOT NULL,
		performer_id BIGINT NOT NULL,
		billing INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (item_id, performer_id)
	)`,
	`CREATE TABLE IF NOT EXISTS item_views (
		session_id VARCHAR NOT NULL,
		item_id BIGINT NOT NULL,
		viewed_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_item_performers_performer ON item_performers (performer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_item_views_session ON item_views (session_id, viewed_at)`,
}

// initSchema creates all catalog tables and indexes.
func (db *DB) initSchema() error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	db.logger.Debug().Msg("catalog schema initialized")
	return nil
}
