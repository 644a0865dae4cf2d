// Vitrina - Localized Content Discovery Storefront
// Copyright 2026 Vitrina Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrina-app/vitrina

package preferences

// Well-known section and page identifiers.
const (
	PageHome = "home"

	SectionRecentlyViewed   = "recently_viewed"
	SectionSales            = "sales"
	SectionPersonalPicks    = "personal_picks"
	SectionWeeklyHighlights = "weekly_highlights"
	SectionTrendAnalysis    = "trend_analysis"
)

// DefaultSchemas returns the default section layout per page. Labels here are
// translation keys resolved by the UI layer.
func DefaultSchemas() map[string][]SectionPreference {
	return map[string][]SectionPreference{
		PageHome: {
			{ID: SectionRecentlyViewed, Label: "section.recently_viewed", Visible: true, Order: 0},
			{ID: SectionSales, Label: "section.sales", Visible: true, Order: 1},
			{ID: SectionPersonalPicks, Label: "section.personal_picks", Visible: true, Order: 2},
			{ID: SectionWeeklyHighlights, Label: "section.weekly_highlights", Visible: true, Order: 3},
			{ID: SectionTrendAnalysis, Label: "section.trend_analysis", Visible: false, Order: 4},
		},
	}
}
