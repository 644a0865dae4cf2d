// Vitrina - Localized Content Discovery Storefront
// Copyright 2026 Vitrina Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrina-app/vitrina

package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestEnrichAttachesAndCaps(t *testing.T) {
	t.Parallel()

	src := &mockSource{
		rows: []PerformerRow{
			{ItemID: 1, Performer: Performer{ID: 100, Name: "A"}},
			{ItemID: 1, Performer: Performer{ID: 101, Name: "B"}},
			{ItemID: 1, Performer: Performer{ID: 102, Name: "C"}},
			{ItemID: 1, Performer: Performer{ID: 103, Name: "D"}},
			{ItemID: 2, Performer: Performer{ID: 104, Name: "E"}},
		},
	}
	e := NewBatchEnricher(src, zerolog.Nop())

	candidates := []Candidate{{ID: 1}, {ID: 2}, {ID: 3}}
	e.Enrich(context.Background(), candidates, 3)

	if src.lookupCalls != 1 {
		t.Fatalf("lookup calls = %d, want 1", src.lookupCalls)
	}
	if got := len(candidates[0].Performers); got != 3 {
		t.Errorf("candidate 1 performers = %d, want capped at 3", got)
	}
	// First-seen order survives truncation.
	if candidates[0].Performers[0].Name != "A" || candidates[0].Performers[2].Name != "C" {
		t.Errorf("candidate 1 performers out of order: %v", candidates[0].Performers)
	}
	if got := len(candidates[1].Performers); got != 1 {
		t.Errorf("candidate 2 performers = %d, want 1", got)
	}
	if candidates[2].Performers == nil || len(candidates[2].Performers) != 0 {
		t.Errorf("candidate 3 performers = %#v, want empty non-nil slice", candidates[2].Performers)
	}
}

func TestEnrichLookupFailureLeavesEmptyLists(t *testing.T) {
	t.Parallel()

	src := &mockSource{lookupErr: errors.New("lookup down")}
	e := NewBatchEnricher(src, zerolog.Nop())

	candidates := []Candidate{{ID: 1}, {ID: 2}}
	e.Enrich(context.Background(), candidates, 3)

	for i := range candidates {
		if candidates[i].Performers == nil || len(candidates[i].Performers) != 0 {
			t.Errorf("candidate %d performers = %#v, want empty non-nil slice", candidates[i].ID, candidates[i].Performers)
		}
	}
}

func TestEnrichZeroCapSkipsLookup(t *testing.T) {
	t.Parallel()

	src := &mockSource{}
	e := NewBatchEnricher(src, zerolog.Nop())

	candidates := []Candidate{{ID: 1}}
	e.Enrich(context.Background(), candidates, 0)

	if src.lookupCalls != 0 {
		t.Errorf("lookup calls = %d, want 0 when cap is zero", src.lookupCalls)
	}
	if candidates[0].Performers == nil {
		t.Error("performers should be initialized to an empty slice")
	}
}

func TestEnrichNoCandidates(t *testing.T) {
	t.Parallel()

	src := &mockSource{}
	e := NewBatchEnricher(src, zerolog.Nop())
	e.Enrich(context.Background(), nil, 3)

	if src.lookupCalls != 0 {
		t.Errorf("lookup calls = %d, want 0 for empty input", src.lookupCalls)
	}
}
