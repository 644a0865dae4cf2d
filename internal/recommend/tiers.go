// Vitrina - Localized Content Discovery Storefront
// Copyright 2026 Vitrina Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrina-app/vitrina

package recommend

import "context"

// FavoriteTier surfaces items featuring a favorited performer.
// Highest-trust tier: an explicit user signal.
type FavoriteTier struct {
	source CandidateSource
}

// NewFavoriteTier creates the favorite-performer tier.
func NewFavoriteTier(source CandidateSource) *FavoriteTier {
	return &FavoriteTier{source: source}
}

// Name implements Tier.
func (t *FavoriteTier) Name() string { return "favorite" }

// Eligible reports whether the user has any favorited performers.
func (t *FavoriteTier) Eligible(signals Signals) bool {
	return len(signals.FavoriteIDs) > 0
}

// Fetch implements Tier.
func (t *FavoriteTier) Fetch(ctx context.Context, signals Signals, want int) ([]Candidate, error) {
	return t.source.FavoriteCandidates(ctx, signals.FavoriteIDs, want)
}

// Overfetch implements Tier.
func (t *FavoriteTier) Overfetch() int { return 0 }

// HistoryTier surfaces items similar to recently viewed ones, inferred via
// shared performers.
type HistoryTier struct {
	source CandidateSource
}

// NewHistoryTier creates the viewing-history tier.
func NewHistoryTier(source CandidateSource) *HistoryTier {
	return &HistoryTier{source: source}
}

// Name implements Tier.
func (t *HistoryTier) Name() string { return "history" }

// Eligible reports whether the user has any recently viewed items.
func (t *HistoryTier) Eligible(signals Signals) bool {
	return len(signals.RecentIDs) > 0
}

// Fetch implements Tier.
func (t *HistoryTier) Fetch(ctx context.Context, signals Signals, want int) ([]Candidate, error) {
	return t.source.SimilarCandidates(ctx, signals.RecentIDs, want)
}

// Overfetch implements Tier.
func (t *HistoryTier) Overfetch() int { return 0 }

// TrendingTier is the always-eligible fallback. It is the only tier with an
// overfetch margin: running last, it absorbs all dedup loss against the
// earlier tiers.
type TrendingTier struct {
	source    CandidateSource
	overfetch int
}

// NewTrendingTier creates the trending fallback tier with the given
// overfetch margin.
func NewTrendingTier(source CandidateSource, overfetch int) *TrendingTier {
	if overfetch < 0 {
		overfetch = 0
	}
	return &TrendingTier{source: source, overfetch: overfetch}
}

// Name implements Tier.
func (t *TrendingTier) Name() string { return "trending" }

// Eligible always returns true; trending needs no user signal.
func (t *TrendingTier) Eligible(Signals) bool { return true }

// Fetch implements Tier.
func (t *TrendingTier) Fetch(ctx context.Context, _ Signals, want int) ([]Candidate, error) {
	return t.source.TrendingCandidates(ctx, want)
}

// Overfetch implements Tier.
func (t *TrendingTier) Overfetch() int { return t.overfetch }
