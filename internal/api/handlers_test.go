// Vitrina - Localized Content Discovery Storefront
// Copyright 2026 Vitrina Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrina-app/vitrina

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/vitrina-app/vitrina/internal/config"
	"github.com/vitrina-app/vitrina/internal/database"
	"github.com/vitrina-app/vitrina/internal/panel"
	"github.com/vitrina-app/vitrina/internal/preferences"
	"github.com/vitrina-app/vitrina/internal/recommend"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{
			Host:        "127.0.0.1",
			Port:        8080,
			Timeout:     5 * time.Second,
			Environment: "development",
		},
		Database: config.DatabaseConfig{
			Path:      filepath.Join(t.TempDir(), "api_test.duckdb"),
			MaxMemory: "256MB",
			Threads:   1,
		},
		Preferences: config.PreferencesConfig{InMemory: true},
		Recommend:   *recommend.DefaultConfig(),
		Panels: config.PanelsConfig{
			SessionIdleTimeout: time.Hour,
			JanitorInterval:    time.Hour,
			ItemLimit:          20,
		},
		API: config.APIConfig{
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 1000,
			RateLimitWindow:   time.Minute,
		},
	}
}

// newTestServer stands up the full route tree over seeded stores.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := testConfig(t)
	logger := zerolog.Nop()

	prefDB, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		t.Fatalf("opening badger: %v", err)
	}
	t.Cleanup(func() { _ = prefDB.Close() })
	prefs := preferences.NewStore(prefDB, preferences.DefaultSchemas(), logger)

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.SeedDemoCatalog(context.Background()); err != nil {
		t.Fatalf("seeding: %v", err)
	}

	agg, err := recommend.NewAggregator(&cfg.Recommend, logger,
		recommend.NewFavoriteTier(db),
		recommend.NewHistoryTier(db),
		recommend.NewTrendingTier(db, cfg.Recommend.TrendingOverfetch),
	)
	if err != nil {
		t.Fatalf("building aggregator: %v", err)
	}
	agg.SetEnricher(recommend.NewBatchEnricher(db, logger))

	hub := panel.NewHub(cfg.Panels.SessionIdleTimeout, logger)
	hub.Register(preferences.SectionSales, func(string) panel.FetchFunc {
		return func(ctx context.Context) (panel.Payload, error) {
			items, err := db.SaleItems(ctx, cfg.Panels.ItemLimit)
			if err != nil {
				return panel.Payload{}, err
			}
			return panel.Payload{Items: items, Count: len(items)}, nil
		}
	})
	hub.Register(preferences.SectionRecentlyViewed, func(sessionID string) panel.FetchFunc {
		return func(ctx context.Context) (panel.Payload, error) {
			items, err := db.RecentlyViewedItems(ctx, sessionID, cfg.Panels.ItemLimit)
			if err != nil {
				return panel.Payload{}, err
			}
			return panel.Payload{Items: items, Count: len(items)}, nil
		}
	})

	srv := httptest.NewServer(NewRouter(NewHandler(cfg, db, agg, prefs, hub, logger)))
	t.Cleanup(srv.Close)
	return srv
}

// doJSON sends a request with a fixed session ID and decodes the envelope.
func doJSON(t *testing.T, srv *httptest.Server, method, path string, body any) (*http.Response, APIResponse) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request: %v", err)
		}
	}
	req, err := http.NewRequestWithContext(context.Background(), method, srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Session-ID", "test-session")

	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var envelope APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding envelope: %v", err)
	}
	return resp, envelope
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	resp, envelope := doJSON(t, srv, http.MethodGet, "/api/v1/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if envelope.Status != "success" {
		t.Errorf("envelope status = %q, want success", envelope.Status)
	}
}

func TestPicksEndpoint(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	resp, envelope := doJSON(t, srv, http.MethodPost, "/api/v1/picks",
		PicksRequest{FavoriteIDs: []int64{7}, Limit: 5})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	raw, _ := json.Marshal(envelope.Data)
	var result recommend.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("decoding result: %v", err)
	}

	if len(result.Candidates) != 5 {
		t.Fatalf("got %d candidates, want 5", len(result.Candidates))
	}
	// Favorite matches first (items 10, 11, 12 feature performer 7), then
	// trending fills the rest.
	want := []int64{10, 11, 12, 20, 21}
	for i, c := range result.Candidates {
		if c.ID != want[i] {
			t.Fatalf("candidate %d = %d, want %d", i, c.ID, want[i])
		}
	}
	if len(result.Candidates[0].Performers) == 0 {
		t.Error("candidates were not enriched with performers")
	}
}

func TestPicksValidation(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	resp, envelope := doJSON(t, srv, http.MethodPost, "/api/v1/picks",
		PicksRequest{Limit: 500})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if envelope.Error == nil || envelope.Error.Code != CodeValidationError {
		t.Errorf("error = %#v, want %s", envelope.Error, CodeValidationError)
	}
}

func TestRecordViewEndpoint(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	resp, _ := doJSON(t, srv, http.MethodPost, "/api/v1/views", RecordViewRequest{ItemID: 20})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}

	resp, _ = doJSON(t, srv, http.MethodPost, "/api/v1/views", RecordViewRequest{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d for missing item_id, want 400", resp.StatusCode)
	}
}

// expandAndAwait expands a panel and polls its state until it settles.
func expandAndAwait(t *testing.T, srv *httptest.Server, panelKey string) panel.Snapshot {
	t.Helper()

	resp, _ := doJSON(t, srv, http.MethodPost, "/api/v1/panels/"+panelKey+"/expand", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expand status = %d, want 200", resp.StatusCode)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		_, envelope := doJSON(t, srv, http.MethodGet, "/api/v1/panels/"+panelKey+"/", nil)
		raw, _ := json.Marshal(envelope.Data)
		var snap panel.Snapshot
		if err := json.Unmarshal(raw, &snap); err != nil {
			t.Fatalf("decoding snapshot: %v", err)
		}
		if snap.State != "loading" && snap.State != "retrying" && snap.State != "idle" {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("panel never settled")
	return panel.Snapshot{}
}

func TestPanelExpandLifecycle(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	snap := expandAndAwait(t, srv, preferences.SectionSales)
	if snap.State != "ready" {
		t.Fatalf("state = %q, want ready", snap.State)
	}
	if snap.Data == nil || snap.Data.Count != 3 {
		t.Fatalf("data = %#v, want 3 sale items", snap.Data)
	}
}

func TestPanelSuppressionOnEmptyContent(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	// The session has no recorded views, so the panel suppresses itself.
	snap := expandAndAwait(t, srv, preferences.SectionRecentlyViewed)
	if snap.State != "suppressed" {
		t.Fatalf("state = %q, want suppressed", snap.State)
	}
}

func TestPanelUnknownKey(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	resp, envelope := doJSON(t, srv, http.MethodPost, "/api/v1/panels/bogus/expand", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if envelope.Error == nil || envelope.Error.Code != CodeNotFound {
		t.Errorf("error = %#v, want %s", envelope.Error, CodeNotFound)
	}
}

func TestPanelRetryRequiresErrorState(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	snap := expandAndAwait(t, srv, preferences.SectionSales)
	if snap.State != "ready" {
		t.Fatalf("state = %q, want ready", snap.State)
	}

	resp, _ := doJSON(t, srv, http.MethodPost, "/api/v1/panels/"+preferences.SectionSales+"/retry", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("retry status = %d, want 409", resp.StatusCode)
	}
}

func decodeSections(t *testing.T, envelope APIResponse) []preferences.SectionPreference {
	t.Helper()
	raw, _ := json.Marshal(envelope.Data)
	var sections []preferences.SectionPreference
	if err := json.Unmarshal(raw, &sections); err != nil {
		t.Fatalf("decoding sections: %v", err)
	}
	return sections
}

func TestSectionPreferenceFlow(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	base := "/api/v1/pages/home/sections"

	resp, envelope := doJSON(t, srv, http.MethodGet, base+"/", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d, want 200", resp.StatusCode)
	}
	sections := decodeSections(t, envelope)
	if len(sections) != 5 {
		t.Fatalf("got %d sections, want 5", len(sections))
	}

	// Toggle sales off.
	resp, envelope = doJSON(t, srv, http.MethodPost, base+"/sales/toggle", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("toggle status = %d, want 200", resp.StatusCode)
	}
	for _, s := range decodeSections(t, envelope) {
		if s.ID == "sales" && s.Visible {
			t.Error("sales still visible after toggle")
		}
	}

	// Move the last section to the front.
	resp, envelope = doJSON(t, srv, http.MethodPost, base+"/reorder", ReorderSectionsRequest{From: 4, To: 0})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reorder status = %d, want 200", resp.StatusCode)
	}
	sections = decodeSections(t, envelope)
	if sections[0].ID != "trend_analysis" {
		t.Errorf("first section = %q, want trend_analysis", sections[0].ID)
	}

	// Reset restores the schema defaults.
	resp, envelope = doJSON(t, srv, http.MethodPost, base+"/reset", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reset status = %d, want 200", resp.StatusCode)
	}
	sections = decodeSections(t, envelope)
	if sections[0].ID != "recently_viewed" {
		t.Errorf("first section after reset = %q, want recently_viewed", sections[0].ID)
	}

	// Unknown page and section surface as 404.
	resp, _ = doJSON(t, srv, http.MethodGet, "/api/v1/pages/nope/sections/", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown page status = %d, want 404", resp.StatusCode)
	}
	resp, _ = doJSON(t, srv, http.MethodPost, base+"/bogus/toggle", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown section status = %d, want 404", resp.StatusCode)
	}
}
