// Vitrina - Localized Content Discovery Storefront
// Copyright 2026 Vitrina Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrina-app/vitrina

package preferences

import "testing"

func sectionIDs(sections []SectionPreference) []string {
	ids := make([]string, len(sections))
	for i, s := range sections {
		ids[i] = s.ID
	}
	return ids
}

func assertSectionIDs(t *testing.T, got []SectionPreference, want []string) {
	t.Helper()
	gotIDs := sectionIDs(got)
	if len(gotIDs) != len(want) {
		t.Fatalf("section ids = %v, want %v", gotIDs, want)
	}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("section ids = %v, want %v", gotIDs, want)
		}
	}
}

func TestMergeEmptyPersisted(t *testing.T) {
	t.Parallel()

	defaults := DefaultSchemas()[PageHome]
	merged := Merge(nil, defaults)

	assertSectionIDs(t, merged, []string{
		SectionRecentlyViewed, SectionSales, SectionPersonalPicks,
		SectionWeeklyHighlights, SectionTrendAnalysis,
	})
	if merged[4].Visible {
		t.Error("trend_analysis defaults to hidden")
	}
}

func TestMergePersistedDrivesVisibilityAndOrder(t *testing.T) {
	t.Parallel()

	defaults := []SectionPreference{
		{ID: "a", Label: "label.a", Visible: true, Order: 0},
		{ID: "b", Label: "label.b", Visible: true, Order: 1},
		{ID: "c", Label: "label.c", Visible: true, Order: 2},
	}
	persisted := []StoredSection{
		{ID: "c", Visible: false, Order: 0},
		{ID: "a", Visible: true, Order: 1},
		{ID: "b", Visible: true, Order: 2},
	}

	merged := Merge(persisted, defaults)
	assertSectionIDs(t, merged, []string{"c", "a", "b"})

	if merged[0].Visible {
		t.Error("persisted visibility for c was not applied")
	}
	// Labels always come from the schema, never from storage.
	if merged[0].Label != "label.c" {
		t.Errorf("label = %q, want schema label", merged[0].Label)
	}
}

func TestMergeDropsStaleAndAppendsNew(t *testing.T) {
	t.Parallel()

	defaults := []SectionPreference{
		{ID: "a", Label: "label.a", Visible: true, Order: 0},
		{ID: "new", Label: "label.new", Visible: true, Order: 1},
	}
	persisted := []StoredSection{
		{ID: "a", Visible: false, Order: 0},
		{ID: "removed", Visible: true, Order: 1},
	}

	merged := Merge(persisted, defaults)
	assertSectionIDs(t, merged, []string{"a", "new"})
	if merged[0].Visible {
		t.Error("persisted visibility for a was not applied")
	}
}

func TestMergeKeepsSparseOrders(t *testing.T) {
	t.Parallel()

	defaults := []SectionPreference{
		{ID: "a", Label: "label.a", Visible: true, Order: 0},
		{ID: "b", Label: "label.b", Visible: true, Order: 1},
	}
	// Orders from an older, larger schema: sparse after the middle sections
	// were removed.
	persisted := []StoredSection{
		{ID: "b", Visible: true, Order: 2},
		{ID: "a", Visible: true, Order: 7},
	}

	merged := Merge(persisted, defaults)
	assertSectionIDs(t, merged, []string{"b", "a"})

	// Merge does not renormalize; Reorder does.
	if merged[0].Order != 2 || merged[1].Order != 7 {
		t.Errorf("orders = [%d %d], want sparse [2 7] preserved", merged[0].Order, merged[1].Order)
	}
}

func TestMergeTieKeepsSchemaOrder(t *testing.T) {
	t.Parallel()

	defaults := []SectionPreference{
		{ID: "a", Label: "label.a", Visible: true, Order: 0},
		{ID: "b", Label: "label.b", Visible: true, Order: 0},
	}

	merged := Merge(nil, defaults)
	// Equal orders: stable sort keeps schema declaration order.
	assertSectionIDs(t, merged, []string{"a", "b"})
}

func TestMergeIsPure(t *testing.T) {
	t.Parallel()

	defaults := []SectionPreference{
		{ID: "a", Label: "label.a", Visible: true, Order: 5},
	}
	persisted := []StoredSection{{ID: "a", Visible: false, Order: 0}}

	_ = Merge(persisted, defaults)

	if defaults[0].Order != 5 || !defaults[0].Visible {
		t.Error("Merge modified its defaults input")
	}
	if persisted[0].Order != 0 || persisted[0].Visible {
		t.Error("Merge modified its persisted input")
	}
}
