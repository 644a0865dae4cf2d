// Vitrina - Localized Content Discovery Storefront
// Copyright 2026 Vitrina Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrina-app/vitrina

// Package preferences persists each page's ordered, visibility-flagged
// section layout and reconciles it with the evolving default schema.
//
// The default schema is the source of truth for which sections exist and
// what they are called; persisted state only contributes per-section
// visibility and ordering. Labels are never stored, so translated or renamed
// labels update without migration.
package preferences

import "sort"

// SectionPreference is one section row of a page layout.
type SectionPreference struct {
	// ID is the stable section key, e.g. "sales".
	ID string `json:"id"`

	// Label is the display label, always taken from the current schema.
	Label string `json:"label"`

	// Visible controls whether the section renders.
	Visible bool `json:"visible"`

	// Order is the section's position. Dense after a reorder; possibly
	// sparse right after a merge against a changed schema.
	Order int `json:"order"`
}

// StoredSection is the persisted shape: label excluded by design.
type StoredSection struct {
	ID      string `json:"id"`
	Visible bool   `json:"visible"`
	Order   int    `json:"order"`
}

// Merge reconciles a persisted layout with the current default schema.
//
// For each default (in schema order): a persisted entry with the same id
// contributes its visible and order values under the default's label; a
// default with no persisted entry is taken verbatim (new section since last
// visit). Persisted ids absent from the defaults are dropped silently
// (removed sections). The result is sorted by surviving order values
// ascending, which may be sparse; Reorder renormalizes, Merge does not.
//
// Merge is pure: neither input is modified.
func Merge(persisted []StoredSection, defaults []SectionPreference) []SectionPreference {
	byID := make(map[string]StoredSection, len(persisted))
	for _, s := range persisted {
		byID[s.ID] = s
	}

	merged := make([]SectionPreference, 0, len(defaults))
	for _, def := range defaults {
		section := def
		if stored, ok := byID[def.ID]; ok {
			section.Visible = stored.Visible
			section.Order = stored.Order
		}
		merged = append(merged, section)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Order < merged[j].Order
	})
	return merged
}

// ToStored strips sections down to their persisted shape.
func ToStored(sections []SectionPreference) []StoredSection {
	stored := make([]StoredSection, 0, len(sections))
	for _, s := range sections {
		stored = append(stored, StoredSection{ID: s.ID, Visible: s.Visible, Order: s.Order})
	}
	return stored
}
