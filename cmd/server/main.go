// Vitrina - Localized Content Discovery Storefront
// Copyright 2026 Vitrina Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrina-app/vitrina

// Package main is the entry point for the Vitrina storefront server.
//
// The server initializes components in the following order:
//
//  1. Configuration: layered loading via Koanf v2 (defaults, YAML, env)
//  2. Logging: structured zerolog output
//  3. Preference storage: BadgerDB for per-session section layouts
//  4. Catalog: DuckDB with demo seeding in development mode
//  5. Recommendation engine: tier cascade with batch performer enrichment
//  6. Panel hub: per-session lazy section controllers with idle eviction
//  7. HTTP server: Chi-routed REST API with Prometheus metrics
//
// Graceful shutdown on SIGINT/SIGTERM stops accepting connections, waits for
// in-flight requests, then closes the stores.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/vitrina-app/vitrina/internal/api"
	"github.com/vitrina-app/vitrina/internal/config"
	"github.com/vitrina-app/vitrina/internal/database"
	"github.com/vitrina-app/vitrina/internal/logging"
	"github.com/vitrina-app/vitrina/internal/panel"
	"github.com/vitrina-app/vitrina/internal/preferences"
	"github.com/vitrina-app/vitrina/internal/recommend"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Format = cfg.Logging.Format
	logCfg.Caller = cfg.Logging.Caller
	logging.Init(logCfg)
	logger := logging.Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Preference storage.
	prefDB, err := openPreferenceDB(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open preference store")
	}
	defer closeQuietly(prefDB.Close, "preference store")

	prefs := preferences.NewStore(prefDB, preferences.DefaultSchemas(), logger)

	// Catalog.
	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open catalog database")
	}
	defer closeQuietly(db.Close, "catalog database")

	if cfg.IsDevelopment() {
		if err := db.SeedDemoCatalog(ctx); err != nil {
			logging.Warn().Err(err).Msg("Demo catalog seeding failed")
		}
	}

	// Recommendation engine.
	agg, err := buildAggregator(cfg, db, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build recommendation engine")
	}

	// Panel hub with per-session controllers.
	hub := panel.NewHub(cfg.Panels.SessionIdleTimeout, logger)
	registerPanels(hub, cfg, db, prefs, agg)
	hub.StartJanitor(ctx, cfg.Panels.JanitorInterval)

	handler := api.NewHandler(cfg, db, agg, prefs, hub, logger)
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(handler),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	serverErrCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server starting")
		serverErrCh <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("HTTP server error")
		}
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Warn().Err(err).Msg("HTTP server shutdown incomplete")
	}

	logging.Info().Msg("Application stopped gracefully")
}

// openPreferenceDB opens BadgerDB for section layouts, in memory when
// configured.
func openPreferenceDB(cfg *config.Config) (*badger.DB, error) {
	opts := badger.DefaultOptions(cfg.Preferences.Path).WithLogger(nil)
	if cfg.Preferences.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger at %s: %w", cfg.Preferences.Path, err)
	}
	return db, nil
}

// buildAggregator wires the tier cascade and performer enrichment over the
// catalog store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func buildAggregator(cfg *config.Config, db *database.DB, logger zerolog.Logger) (*recommend.Aggregator, error) {
	agg, err := recommend.NewAggregator(&cfg.Recommend, logger,
		recommend.NewFavoriteTier(db),
		recommend.NewHistoryTier(db),
		recommend.NewTrendingTier(db, cfg.Recommend.TrendingOverfetch),
	)
	if err != nil {
		return nil, fmt.Errorf("building aggregator: %w", err)
	}
	agg.SetEnricher(recommend.NewBatchEnricher(db, logger))
	return agg, nil
}

// registerPanels declares the lazily loaded storefront sections. Each
// builder closes over one session id; hidden sections resolve to empty
// payloads without touching the catalog.
func registerPanels(hub *panel.Hub, cfg *config.Config, db *database.DB, prefs *preferences.Store, agg *recommend.Aggregator) {
	limit := cfg.Panels.ItemLimit
	page := preferences.PageHome

	visibleOr := func(sessionID, sectionID string, fetch panel.FetchFunc) panel.FetchFunc {
		return func(ctx context.Context) (panel.Payload, error) {
			if !prefs.Visible(sessionID, page, sectionID) {
				return panel.Payload{Items: []struct{}{}, Count: 0}, nil
			}
			return fetch(ctx)
		}
	}

	hub.Register(preferences.SectionRecentlyViewed, func(sessionID string) panel.FetchFunc {
		return visibleOr(sessionID, preferences.SectionRecentlyViewed, func(ctx context.Context) (panel.Payload, error) {
			items, err := db.RecentlyViewedItems(ctx, sessionID, limit)
			if err != nil {
				return panel.Payload{}, err
			}
			return panel.Payload{Items: items, Count: len(items)}, nil
		})
	})

	hub.Register(preferences.SectionSales, func(sessionID string) panel.FetchFunc {
		return visibleOr(sessionID, preferences.SectionSales, func(ctx context.Context) (panel.Payload, error) {
			items, err := db.SaleItems(ctx, limit)
			if err != nil {
				return panel.Payload{}, err
			}
			return panel.Payload{Items: items, Count: len(items)}, nil
		})
	})

	hub.Register(preferences.SectionPersonalPicks, func(sessionID string) panel.FetchFunc {
		return visibleOr(sessionID, preferences.SectionPersonalPicks, func(ctx context.Context) (panel.Payload, error) {
			recent, err := db.RecentItemIDs(ctx, sessionID, limit)
			if err != nil {
				return panel.Payload{}, err
			}
			result, err := agg.Aggregate(ctx, recommend.Signals{RecentIDs: recent}, limit)
			if err != nil {
				return panel.Payload{}, err
			}
			return panel.Payload{Items: result.Candidates, Count: len(result.Candidates)}, nil
		})
	})

	hub.Register(preferences.SectionWeeklyHighlights, func(sessionID string) panel.FetchFunc {
		return visibleOr(sessionID, preferences.SectionWeeklyHighlights, func(ctx context.Context) (panel.Payload, error) {
			items, err := db.WeeklyHighlights(ctx, limit)
			if err != nil {
				return panel.Payload{}, err
			}
			return panel.Payload{Items: items, Count: len(items)}, nil
		})
	})

	hub.Register(preferences.SectionTrendAnalysis, func(sessionID string) panel.FetchFunc {
		return visibleOr(sessionID, preferences.SectionTrendAnalysis, func(ctx context.Context) (panel.Payload, error) {
			points, err := db.TrendSummary(ctx, limit)
			if err != nil {
				return panel.Payload{}, err
			}
			return panel.Payload{Items: points, Count: len(points)}, nil
		})
	})
}

func closeQuietly(closeFn func() error, name string) {
	if err := closeFn(); err != nil {
		logging.Warn().Err(err).Str("component", name).Msg("Close failed")
	}
}
