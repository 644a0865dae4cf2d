// Vitrina - Localized Content Discovery Storefront
// Copyright 2026 Vitrina Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrina-app/vitrina

// Package panel implements the lazy section controller every accordion-style
// storefront panel reuses: recently viewed, sales, personalized picks, weekly
// highlights, trend analysis.
//
// # State Machine
//
//	Idle -> Loading -> Ready | Suppressed | Errored
//	Errored -> Retrying -> Ready | Suppressed | Errored
//
// A controller stays Idle until its first expansion, fetches exactly once per
// expansion trigger, and retains fetched data for its lifetime: re-collapsing
// and re-expanding does not refetch. Ready and Errored re-enter Loading only
// through an explicit retry or a changed input key, never automatically.
//
// # Cancellation
//
// Each fetch holds a generation token. Starting a new fetch (retry, key
// change) increments the generation and cancels the prior fetch's context; a
// stale fetch's resolution, success or failure, is compared against the
// current generation and discarded without transitioning state.
//
// # Suppression vs. Error
//
// A successful fetch with zero items suppresses the panel (the caller renders
// nothing); a failed fetch shows a retry affordance. The two are distinct
// terminal states and are never conflated: a real failure is never silently
// hidden, and a legitimately empty personalization result never shows an
// error.
//
// Controllers are fully independent: no shared state, no global fetch queue,
// no cross-panel ordering. The Hub is only a per-session registry with idle
// eviction.
package panel
