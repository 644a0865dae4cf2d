// Vitrina - Localized Content Discovery Storefront
// Copyright 2026 Vitrina Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrina-app/vitrina

package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vitrina-app/vitrina/internal/metrics"
	"github.com/vitrina-app/vitrina/internal/recommend"
)

// FavoriteCandidates returns items featuring any of the given performers,
// most popular first. Each item appears once; the detail names the
// top-billed matching performer.
func (db *DB) FavoriteCandidates(ctx context.Context, performerIDs []int64, limit int) ([]recommend.Candidate, error) {
	if len(performerIDs) == 0 || limit <= 0 {
		return []recommend.Candidate{}, nil
	}

	query := fmt.Sprintf(`
		SELECT i.id, i.title, i.image_url, i.popularity, p.name
		FROM items i
		JOIN item_performers ip ON ip.item_id = i.id
		JOIN performers p ON p.id = ip.performer_id
		WHERE ip.performer_id IN (%s)
		QUALIFY row_number() OVER (PARTITION BY i.id ORDER BY ip.billing) = 1
		ORDER BY i.popularity DESC
		LIMIT ?`, placeholders(len(performerIDs)))

	args := idArgs(performerIDs)
	args = append(args, limit)

	return db.candidateQuery(ctx, "favorite_candidates", func() ([]recommend.Candidate, error) {
		rows, err := db.conn.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("favorite candidates query: %w", err)
		}
		defer rows.Close()

		candidates := make([]recommend.Candidate, 0, limit)
		for rows.Next() {
			var c recommend.Candidate
			if err := rows.Scan(&c.ID, &c.Title, &c.ImageURL, &c.RankingKey, &c.ReasonDetail); err != nil {
				return nil, fmt.Errorf("scanning favorite candidate: %w", err)
			}
			c.Reason = recommend.ReasonFavorite
			candidates = append(candidates, c)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterating favorite candidates: %w", err)
		}
		return candidates, nil
	})
}

// SimilarCandidates returns items that share at least one performer with the
// recently viewed items, excluding those items themselves.
func (db *DB) SimilarCandidates(ctx context.Context, recentItemIDs []int64, limit int) ([]recommend.Candidate, error) {
	if len(recentItemIDs) == 0 || limit <= 0 {
		return []recommend.Candidate{}, nil
	}

	in := placeholders(len(recentItemIDs))
	query := fmt.Sprintf(`
		SELECT i.id, i.title, i.image_url, i.popularity
		FROM items i
		JOIN item_performers ip ON ip.item_id = i.id
		WHERE ip.performer_id IN (
			SELECT performer_id FROM item_performers WHERE item_id IN (%s)
		)
		AND i.id NOT IN (%s)
		GROUP BY i.id, i.title, i.image_url, i.popularity
		ORDER BY i.popularity DESC
		LIMIT ?`, in, in)

	args := idArgs(recentItemIDs)
	args = append(args, idArgs(recentItemIDs)...)
	args = append(args, limit)

	return db.candidateQuery(ctx, "similar_candidates", func() ([]recommend.Candidate, error) {
		rows, err := db.conn.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("similar candidates query: %w", err)
		}
		defer rows.Close()

		candidates := make([]recommend.Candidate, 0, limit)
		for rows.Next() {
			var c recommend.Candidate
			if err := rows.Scan(&c.ID, &c.Title, &c.ImageURL, &c.RankingKey); err != nil {
				return nil, fmt.Errorf("scanning similar candidate: %w", err)
			}
			c.Reason = recommend.ReasonHistory
			candidates = append(candidates, c)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterating similar candidates: %w", err)
		}
		return candidates, nil
	})
}

// TrendingCandidates returns the globally hottest items by trending score.
func (db *DB) TrendingCandidates(ctx context.Context, limit int) ([]recommend.Candidate, error) {
	if limit <= 0 {
		return []recommend.Candidate{}, nil
	}

	query := `
		SELECT id, title, image_url, trending_score
		FROM items
		WHERE trending_score > 0
		ORDER BY trending_score DESC
		LIMIT ?`

	return db.candidateQuery(ctx, "trending_candidates", func() ([]recommend.Candidate, error) {
		rows, err := db.conn.QueryContext(ctx, query, limit)
		if err != nil {
			return nil, fmt.Errorf("trending candidates query: %w", err)
		}
		defer rows.Close()

		candidates := make([]recommend.Candidate, 0, limit)
		for rows.Next() {
			var c recommend.Candidate
			if err := rows.Scan(&c.ID, &c.Title, &c.ImageURL, &c.RankingKey); err != nil {
				return nil, fmt.Errorf("scanning trending candidate: %w", err)
			}
			c.Reason = recommend.ReasonTrending
			candidates = append(candidates, c)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterating trending candidates: %w", err)
		}
		return candidates, nil
	})
}

// BatchLookupPerformers loads the performer credits for all given items in a
// single query, ordered by billing within each item.
func (db *DB) BatchLookupPerformers(ctx context.Context, itemIDs []int64) ([]recommend.PerformerRow, error) {
	if len(itemIDs) == 0 {
		return []recommend.PerformerRow{}, nil
	}

	query := fmt.Sprintf(`
		SELECT ip.item_id, p.id, p.name, p.image_url
		FROM item_performers ip
		JOIN performers p ON p.id = ip.performer_id
		WHERE ip.item_id IN (%s)
		ORDER BY ip.item_id, ip.billing`, placeholders(len(itemIDs)))

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, idArgs(itemIDs)...)
	metrics.RecordCatalogQuery("batch_performers", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("batch performer lookup: %w", err)
	}
	defer rows.Close()

	out := make([]recommend.PerformerRow, 0, len(itemIDs)*2)
	for rows.Next() {
		var r recommend.PerformerRow
		if err := rows.Scan(&r.ItemID, &r.Performer.ID, &r.Performer.Name, &r.Performer.ImageURL); err != nil {
			return nil, fmt.Errorf("scanning performer row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating performer rows: %w", err)
	}
	return out, nil
}

// candidateQuery runs a candidate-source query through the circuit breaker
// and records latency and errors.
func (db *DB) candidateQuery(ctx context.Context, name string, fn func() ([]recommend.Candidate, error)) ([]recommend.Candidate, error) {
	start := time.Now()
	candidates, err := db.breaker.Execute(func() ([]recommend.Candidate, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return fn()
	})
	metrics.RecordCatalogQuery(name, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return candidates, nil
}

// placeholders builds a "?, ?, ..." list for IN clauses.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// idArgs widens int64 ids into query arguments.
func idArgs(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
