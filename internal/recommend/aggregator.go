// Vitrina - Localized Content Discovery Storefront
// Copyright 2026 Vitrina Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrina-app/vitrina

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/vitrina-app/vitrina/internal/metrics"
)

// ErrAllTiersFailed is returned when every eligible tier's fetch failed and
// no candidates could be produced at all.
var ErrAllTiersFailed = errors.New("recommend: all tier sources failed")

// Aggregator runs an ordered tier cascade with shared dedup. It is safe for
// concurrent use; all per-request state lives on the stack.
type Aggregator struct {
	config   *Config
	tiers    []Tier
	enricher *BatchEnricher
	logger   zerolog.Logger
}

// NewAggregator creates an aggregator over the given ordered tiers.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewAggregator(cfg *Config, logger zerolog.Logger, tiers ...Tier) (*Aggregator, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if len(tiers) == 0 {
		return nil, fmt.Errorf("at least one tier required")
	}

	return &Aggregator{
		config: cfg,
		tiers:  tiers,
		logger: logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// SetEnricher sets the batch enricher applied to aggregation results.
// Without an enricher candidates keep their empty performer lists.
func (a *Aggregator) SetEnricher(e *BatchEnricher) {
	a.enricher = e
}

// Config returns a copy of the aggregator configuration.
func (a *Aggregator) Config() *Config {
	return a.config.Clone()
}

// Aggregate runs the tier cascade and returns at most limit candidates.
//
// Tiers run in strict order: a later tier's fetch is never issued before the
// previous tier's candidates are merged, because the slot count it receives
// depends on that merge. Once the limit is reached remaining tiers are skipped
// entirely, fetch functions uninvoked.
func (a *Aggregator) Aggregate(ctx context.Context, signals Signals, limit int) (*Result, error) {
	start := time.Now()

	limit = a.clampLimit(limit)
	logger := a.logger.With().
		Int("limit", limit).
		Int("favorites", len(signals.FavoriteIDs)).
		Int("recent", len(signals.RecentIDs)).
		Logger()

	seen := make(map[int64]struct{}, limit)
	result := make([]Candidate, 0, limit)
	tiersUsed := make([]string, 0, len(a.tiers))

	eligible := 0
	failed := 0

	for _, tier := range a.tiers {
		if len(result) >= limit {
			break
		}
		if !tier.Eligible(signals) {
			continue
		}
		eligible++

		remaining := limit - len(result)
		candidates, err := tier.Fetch(ctx, signals, remaining+tier.Overfetch())
		if err != nil {
			failed++
			metrics.TierFetchFailures.WithLabelValues(tier.Name()).Inc()
			logger.Warn().
				Str("tier", tier.Name()).
				Err(err).
				Msg("tier fetch failed, continuing cascade")
			continue
		}

		added := mergeTier(&result, seen, candidates, limit)
		if added > 0 {
			tiersUsed = append(tiersUsed, tier.Name())
		}

		logger.Debug().
			Str("tier", tier.Name()).
			Int("fetched", len(candidates)).
			Int("added", added).
			Msg("tier merged")
	}

	if eligible > 0 && failed == eligible {
		return nil, ErrAllTiersFailed
	}

	a.enrich(ctx, result)

	metrics.AggregationDuration.Observe(time.Since(start).Seconds())
	logger.Debug().
		Int("candidates", len(result)).
		Int("tier_failures", failed).
		Int64("latency_ms", time.Since(start).Milliseconds()).
		Msg("aggregation complete")

	return &Result{
		Candidates:   result,
		TiersUsed:    tiersUsed,
		TierFailures: failed,
	}, nil
}

// clampLimit applies the default and the configured ceiling.
func (a *Aggregator) clampLimit(limit int) int {
	if limit <= 0 {
		limit = a.config.DefaultLimit
	}
	if limit > a.config.MaxLimit {
		limit = a.config.MaxLimit
	}
	return limit
}

// mergeTier sorts one tier's candidates by ranking key descending (stable, so
// ties keep source order) and appends the unseen ones until the limit is hit.
// Returns the number of candidates appended.
func mergeTier(result *[]Candidate, seen map[int64]struct{}, candidates []Candidate, limit int) int {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].RankingKey > candidates[j].RankingKey
	})

	added := 0
	for _, c := range candidates {
		if len(*result) >= limit {
			break
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		if c.Performers == nil {
			c.Performers = []Performer{}
		}
		*result = append(*result, c)
		added++
	}
	return added
}

// enrich attaches performers to the result, best-effort.
func (a *Aggregator) enrich(ctx context.Context, candidates []Candidate) {
	if a.enricher == nil || len(candidates) == 0 {
		return
	}
	a.enricher.Enrich(ctx, candidates, a.config.MaxPerformers)
}
