// Vitrina - Localized Content Discovery Storefront
// Copyright 2026 Vitrina Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrina-app/vitrina

// Package database provides the DuckDB-backed catalog store.
//
// It implements the candidate-source and performer-lookup contracts consumed
// by the recommendation engine, plus the plain list queries that back the
// storefront panels (recently viewed, sales, weekly highlights, trend
// summary). Candidate queries run behind a circuit breaker so a degraded
// catalog surfaces as individual tier failures instead of cascading timeouts.
package database
