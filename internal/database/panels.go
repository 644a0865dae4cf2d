// Vitrina - Localized Content Discovery Storefront
// Copyright 2026 Vitrina Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrina-app/vitrina

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/vitrina-app/vitrina/internal/metrics"
)

// Item is a storefront list entry as the panel queries return it.
type Item struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	ImageURL        string    `json:"image_url"`
	DiscountPercent int       `json:"discount_percent,omitempty"`
	WeeklyRank      int       `json:"weekly_rank,omitempty"`
	TrendingScore   float64   `json:"trending_score,omitempty"`
	ViewedAt        time.Time `json:"viewed_at,omitempty"`
}

// TrendPoint is one entry in the trend summary panel.
type TrendPoint struct {
	ItemID        int64   `json:"item_id"`
	Title         string  `json:"title"`
	TrendingScore float64 `json:"trending_score"`
	ViewCount     int64   `json:"view_count"`
}

// RecordView stores one item view for a session. Views feed the recently
// viewed panel and the history tier signals.
func (db *DB) RecordView(ctx context.Context, sessionID string, itemID int64) error {
	start := time.Now()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO item_views (session_id, item_id, viewed_at) VALUES (?, ?, CURRENT_TIMESTAMP)`,
		sessionID, itemID)
	metrics.RecordCatalogQuery("record_view", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("recording item view: %w", err)
	}
	return nil
}

// RecentlyViewedItems returns a session's most recently viewed items, newest
// first, one row per item.
func (db *DB) RecentlyViewedItems(ctx context.Context, sessionID string, limit int) ([]Item, error) {
	if limit <= 0 {
		return []Item{}, nil
	}

	query := `
		SELECT i.id, i.title, i.image_url, v.last_viewed
		FROM (
			SELECT item_id, max(viewed_at) AS last_viewed
			FROM item_views
			WHERE session_id = ?
			GROUP BY item_id
		) v
		JOIN items i ON i.id = v.item_id
		ORDER BY v.last_viewed DESC
		LIMIT ?`

	return db.itemQuery(ctx, "recently_viewed", query, func(it *Item) []any {
		return []any{&it.ID, &it.Title, &it.ImageURL, &it.ViewedAt}
	}, sessionID, limit)
}

// SaleItems returns items currently inside their discount window, deepest
// discount first.
func (db *DB) SaleItems(ctx context.Context, limit int) ([]Item, error) {
	if limit <= 0 {
		return []Item{}, nil
	}

	query := `
		SELECT id, title, image_url, discount_percent
		FROM items
		WHERE discount_percent > 0
		  AND (sale_starts_at IS NULL OR sale_starts_at <= CURRENT_TIMESTAMP)
		  AND (sale_ends_at IS NULL OR sale_ends_at > CURRENT_TIMESTAMP)
		ORDER BY discount_percent DESC, popularity DESC
		LIMIT ?`

	return db.itemQuery(ctx, "sale_items", query, func(it *Item) []any {
		return []any{&it.ID, &it.Title, &it.ImageURL, &it.DiscountPercent}
	}, limit)
}

// WeeklyHighlights returns the editorially ranked picks of the week in rank
// order. An item with rank zero is not part of the current selection.
func (db *DB) WeeklyHighlights(ctx context.Context, limit int) ([]Item, error) {
	if limit <= 0 {
		return []Item{}, nil
	}

	query := `
		SELECT id, title, image_url, weekly_rank
		FROM items
		WHERE weekly_rank > 0
		ORDER BY weekly_rank ASC
		LIMIT ?`

	return db.itemQuery(ctx, "weekly_highlights", query, func(it *Item) []any {
		return []any{&it.ID, &it.Title, &it.ImageURL, &it.WeeklyRank}
	}, limit)
}

// TrendSummary returns the top trending items together with their total view
// counts, for the trend analysis panel.
func (db *DB) TrendSummary(ctx context.Context, limit int) ([]TrendPoint, error) {
	if limit <= 0 {
		return []TrendPoint{}, nil
	}

	query := `
		SELECT i.id, i.title, i.trending_score, count(v.item_id) AS views
		FROM items i
		LEFT JOIN item_views v ON v.item_id = i.id
		WHERE i.trending_score > 0
		GROUP BY i.id, i.title, i.trending_score
		ORDER BY i.trending_score DESC
		LIMIT ?`

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, limit)
	metrics.RecordCatalogQuery("trend_summary", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("trend summary query: %w", err)
	}
	defer rows.Close()

	points := make([]TrendPoint, 0, limit)
	for rows.Next() {
		var p TrendPoint
		if err := rows.Scan(&p.ItemID, &p.Title, &p.TrendingScore, &p.ViewCount); err != nil {
			return nil, fmt.Errorf("scanning trend point: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating trend points: %w", err)
	}
	return points, nil
}

// RecentItemIDs returns the distinct item ids a session viewed most recently,
// newest first. Used to build the recommendation signals.
func (db *DB) RecentItemIDs(ctx context.Context, sessionID string, limit int) ([]int64, error) {
	if limit <= 0 {
		return []int64{}, nil
	}

	query := `
		SELECT item_id
		FROM item_views
		WHERE session_id = ?
		GROUP BY item_id
		ORDER BY max(viewed_at) DESC
		LIMIT ?`

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, sessionID, limit)
	metrics.RecordCatalogQuery("recent_item_ids", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("recent item ids query: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0, limit)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning recent item id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating recent item ids: %w", err)
	}
	return ids, nil
}

// itemQuery runs one panel list query with the given scan layout.
func (db *DB) itemQuery(ctx context.Context, name, query string, dest func(*Item) []any, args ...any) ([]Item, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.RecordCatalogQuery(name, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("%s query: %w", name, err)
	}
	defer rows.Close()

	items := make([]Item, 0, 16)
	for rows.Next() {
		var it Item
		if err := rows.Scan(dest(&it)...); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", name, err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s rows: %w", name, err)
	}
	return items, nil
}
