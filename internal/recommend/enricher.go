// Vitrina - Localized Content Discovery Storefront
// Copyright 2026 Vitrina Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrina-app/vitrina

package recommend

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/vitrina-app/vitrina/internal/metrics"
)

// BatchEnricher attaches performer sub-entities to candidates in one batched
// lookup per aggregation, never one lookup per candidate.
type BatchEnricher struct {
	lookup PerformerLookup
	logger zerolog.Logger
}

// NewBatchEnricher creates an enricher over the given lookup capability.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBatchEnricher(lookup PerformerLookup, logger zerolog.Logger) *BatchEnricher {
	return &BatchEnricher{
		lookup: lookup,
		logger: logger.With().Str("component", "enricher").Logger(),
	}
}

// Enrich mutates candidates in place, attaching up to maxPerCandidate
// performers each. Candidates without rows keep an empty slice, never nil,
// so callers never special-case missing enrichment.
//
// Enrichment is best-effort: a failed lookup leaves every candidate with an
// empty performer list and is logged, never returned.
func (e *BatchEnricher) Enrich(ctx context.Context, candidates []Candidate, maxPerCandidate int) {
	if len(candidates) == 0 {
		return
	}

	for i := range candidates {
		if candidates[i].Performers == nil {
			candidates[i].Performers = []Performer{}
		}
	}

	if maxPerCandidate <= 0 {
		return
	}

	ids := make([]int64, 0, len(candidates))
	for i := range candidates {
		ids = append(ids, candidates[i].ID)
	}

	metrics.EnrichmentBatches.Inc()
	rows, err := e.lookup.BatchLookupPerformers(ctx, ids)
	if err != nil {
		metrics.EnrichmentFailures.Inc()
		e.logger.Warn().
			Err(err).
			Int("candidates", len(candidates)).
			Msg("batch performer lookup failed, returning candidates unenriched")
		return
	}

	grouped := groupPerformers(rows, maxPerCandidate)
	for i := range candidates {
		if performers, ok := grouped[candidates[i].ID]; ok {
			candidates[i].Performers = performers
		}
	}
}

// groupPerformers groups lookup rows by owning item, truncating each group to
// maxPer in first-seen order.
func groupPerformers(rows []PerformerRow, maxPer int) map[int64][]Performer {
	grouped := make(map[int64][]Performer)
	for _, row := range rows {
		if len(grouped[row.ItemID]) >= maxPer {
			continue
		}
		grouped[row.ItemID] = append(grouped[row.ItemID], row.Performer)
	}
	return grouped
}
