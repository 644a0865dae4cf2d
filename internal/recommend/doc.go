// Vitrina - Localized Content Discovery Storefront
// Copyright 2026 Vitrina Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrina-app/vitrina

// Package recommend implements the tiered candidate aggregator behind the
// personalized picks panel.
//
// # Architecture
//
// The aggregator runs an ordered cascade of candidate-producing tiers against a
// shared dedup set until the requested result size is filled:
//
//   - Favorite tier: items on sale featuring a favorited performer
//   - History tier: items sharing a performer with recently viewed items
//   - Trending tier: generic fallback, always eligible
//
// Tier order encodes trust: an explicit favorite match outranks an inferred
// similarity match, which outranks generic trending, regardless of ranking
// keys. Ranking keys (discount percent) only order candidates within a tier.
//
// # Failure Model
//
// One broken signal source must not blank the whole panel. A tier whose fetch
// fails is treated as producing zero candidates and the cascade continues; the
// aggregation itself fails only when every eligible tier failed. Enrichment is
// best-effort on top of that: a failed performer lookup leaves candidates with
// empty performer lists and is never surfaced to the caller.
//
// # Usage
//
//	agg, err := recommend.NewAggregator(cfg, logger,
//	    recommend.NewFavoriteTier(src),
//	    recommend.NewHistoryTier(src),
//	    recommend.NewTrendingTier(src, cfg.TrendingOverfetch),
//	)
//	agg.SetEnricher(recommend.NewBatchEnricher(lookup, logger))
//
//	result, err := agg.Aggregate(ctx, recommend.Signals{
//	    FavoriteIDs: favorites,
//	    RecentIDs:   recent,
//	}, 8)
//
// # Thread Safety
//
// The aggregator holds no per-request state and is safe for concurrent use.
// Each call recomputes from the data source; there is no result cache.
package recommend
