// Vitrina - Localized Content Discovery Storefront
// Copyright 2026 Vitrina Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrina-app/vitrina

package recommend

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
)

// Reason classifies why a candidate was surfaced.
type Reason int

const (
	// ReasonFavorite indicates a direct match on a favorited performer.
	ReasonFavorite Reason = iota
	// ReasonHistory indicates similarity to a recently viewed item.
	ReasonHistory
	// ReasonTrending indicates the generic trending fallback.
	ReasonTrending
)

// String returns the wire name for the reason.
func (r Reason) String() string {
	switch r {
	case ReasonFavorite:
		return "favorite_match"
	case ReasonHistory:
		return "history_match"
	case ReasonTrending:
		return "trending_fallback"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the reason as its wire name.
func (r Reason) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", r.String())), nil
}

// UnmarshalJSON decodes a wire name back into a reason.
func (r *Reason) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "favorite_match":
		*r = ReasonFavorite
	case "history_match":
		*r = ReasonHistory
	case "trending_fallback":
		*r = ReasonTrending
	default:
		return fmt.Errorf("unknown reason %q", name)
	}
	return nil
}

// Performer is a sub-entity attached to a candidate during enrichment.
type Performer struct {
	// ID is the performer identifier.
	ID int64 `json:"id"`

	// Name is the performer display name.
	Name string `json:"name"`

	// ImageURL is the performer thumbnail, if any.
	ImageURL string `json:"image_url,omitempty"`
}

// Candidate is a recommendable item surfaced by a tier.
//
// A candidate is created fresh inside a tier's query step and discarded after
// the response is serialized; nothing here is persisted.
type Candidate struct {
	// ID is the item identifier, unique within one aggregation result.
	ID int64 `json:"id"`

	// Title is the item display title.
	Title string `json:"title"`

	// ImageURL is the item thumbnail, if any.
	ImageURL string `json:"image_url,omitempty"`

	// RankingKey orders candidates within a tier, higher is better. The
	// semantics are per source: popularity for signal-driven tiers,
	// trending score for the fallback.
	RankingKey float64 `json:"ranking_key"`

	// Reason classifies the tier that produced the candidate.
	Reason Reason `json:"reason"`

	// ReasonDetail carries optional display context, e.g. the matched
	// performer name for a favorite match.
	ReasonDetail string `json:"reason_detail,omitempty"`

	// Performers holds up to Config.MaxPerformers enriched sub-entities.
	// Always an empty slice until enrichment runs, never nil.
	Performers []Performer `json:"performers"`
}

// Signals is the weak-signal bag an aggregation request carries.
type Signals struct {
	// FavoriteIDs are the user's favorited performer IDs.
	FavoriteIDs []int64 `json:"favorite_ids"`

	// RecentIDs are recently viewed item IDs, most recent first.
	RecentIDs []int64 `json:"recent_ids"`
}

// Tier is one cascading priority stage.
//
// A tier is never invoked when it is ineligible for the given signals or when
// no result slots remain; the aggregator enforces both.
type Tier interface {
	// Name returns the tier identifier (e.g. "favorite", "trending").
	Name() string

	// Eligible reports whether the tier can produce candidates for the
	// given signals.
	Eligible(signals Signals) bool

	// Fetch returns up to want candidates. The want count already includes
	// the tier's overfetch margin.
	Fetch(ctx context.Context, signals Signals, want int) ([]Candidate, error)

	// Overfetch is the number of extra candidates to request beyond the
	// remaining slots, compensating for dedup loss against earlier tiers.
	// Zero for all tiers except the trending fallback.
	Overfetch() int
}

// Result is an ordered aggregation outcome: at most limit candidates, no
// duplicate IDs, tier order preserved, descending ranking key within a tier.
type Result struct {
	// Candidates is the ordered, enriched output.
	Candidates []Candidate `json:"candidates"`

	// TiersUsed lists the tiers that contributed at least one candidate.
	TiersUsed []string `json:"tiers_used"`

	// TierFailures counts tier fetches that failed and were skipped.
	TierFailures int `json:"tier_failures,omitempty"`
}

// CandidateSource is the batched query capability tiers are built on.
// Implemented by the database layer; treated as a black box here.
type CandidateSource interface {
	// FavoriteCandidates returns items featuring any of the given
	// performers, ranked by popularity.
	FavoriteCandidates(ctx context.Context, performerIDs []int64, limit int) ([]Candidate, error)

	// SimilarCandidates returns items sharing a performer with any of the
	// given recently viewed items, excluding those items.
	SimilarCandidates(ctx context.Context, recentItemIDs []int64, limit int) ([]Candidate, error)

	// TrendingCandidates returns globally trending items.
	TrendingCandidates(ctx context.Context, limit int) ([]Candidate, error)
}

// PerformerRow is one row of a batched performer lookup.
type PerformerRow struct {
	// ItemID is the owning item.
	ItemID int64

	// Performer is the attached sub-entity.
	Performer Performer
}

// PerformerLookup is the batched sub-entity lookup capability.
type PerformerLookup interface {
	// BatchLookupPerformers returns performer rows for all given items in
	// one call, grouped order: item id, then billing order.
	BatchLookupPerformers(ctx context.Context, itemIDs []int64) ([]PerformerRow, error)
}
