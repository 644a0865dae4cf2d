// Vitrina - Localized Content Discovery Storefront
// Copyright 2026 Vitrina Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrina-app/vitrina

package database

import (
	"context"
	"fmt"
)

// SeedDemoCatalog populates a small demo catalog when the items table is
// empty. Used by development builds so the storefront has content to show
// before a real catalog import runs.
func (db *DB) SeedDemoCatalog(ctx context.Context) error {
	var count int64
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM items`).Scan(&count); err != nil {
		return fmt.Errorf("counting items: %w", err)
	}
	if count > 0 {
		return nil
	}

	statements := []string{
		`INSERT INTO items (id, title, image_url, popularity, trending_score, weekly_rank, discount_percent, sale_starts_at, sale_ends_at) VALUES
			(10, 'Midnight Harbor', '/img/10.jpg', 9.1, 0.0, 1, 0, NULL, NULL),
			(11, 'Paper Lanterns', '/img/11.jpg', 8.4, 2.1, 0, 30, CURRENT_TIMESTAMP - INTERVAL 1 DAY, CURRENT_TIMESTAMP + INTERVAL 6 DAY),
			(12, 'The Long Thaw', '/img/12.jpg', 7.9, 0.0, 2, 0, NULL, NULL),
			(20, 'Glass Orchard', '/img/20.jpg', 6.5, 8.8, 0, 0, NULL, NULL),
			(21, 'Silver Static', '/img/21.jpg', 6.1, 7.2, 3, 50, CURRENT_TIMESTAMP - INTERVAL 2 DAY, CURRENT_TIMESTAMP + INTERVAL 5 DAY),
			(22, 'Ember Coast', '/img/22.jpg', 5.8, 6.4, 0, 0, NULL, NULL),
			(30, 'Quiet Machines', '/img/30.jpg', 5.2, 3.3, 0, 15, CURRENT_TIMESTAMP - INTERVAL 3 DAY, CURRENT_TIMESTAMP + INTERVAL 4 DAY)`,
		`INSERT INTO performers (id, name, image_url) VALUES
			(7, 'Mira Voss', '/img/p7.jpg'),
			(8, 'Keir Aldana', '/img/p8.jpg'),
			(9, 'Tova Lindqvist', '/img/p9.jpg')`,
		`INSERT INTO item_performers (item_id, performer_id, billing) VALUES
			(10, 7, 0), (11, 7, 0), (12, 7, 1),
			(12, 8, 0), (20, 8, 0), (21, 8, 1),
			(21, 9, 0), (22, 9, 0), (30, 9, 0)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("seeding demo catalog: %w", err)
		}
	}

	db.logger.Info().Msg("seeded demo catalog")
	return nil
}
