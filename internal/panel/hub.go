// Vitrina - Localized Content Discovery Storefront
// Copyright 2026 Vitrina Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrina-app/vitrina

package panel

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrUnknownPanel is returned for a panel key with no registered fetch.
var ErrUnknownPanel = errors.New("panel: unknown panel key")

// FetchBuilder constructs the fetch function for one (session, panel) pair.
// The session ID lets panel loads carry per-user signals (viewing history).
type FetchBuilder func(sessionID string) FetchFunc

// Hub is a per-session controller registry. Controllers are created lazily on
// first access and evicted after a session goes idle; eviction is the
// server-side equivalent of panel unmount and cancels in-flight fetches.
type Hub struct {
	mu       sync.Mutex
	builders map[string]FetchBuilder
	sessions map[string]*sessionEntry
	maxIdle  time.Duration
	logger   zerolog.Logger
}

// sessionEntry tracks one session's controllers and last activity.
type sessionEntry struct {
	controllers map[string]*Controller
	lastSeen    time.Time
}

// NewHub creates an empty hub. Sessions idle longer than maxIdle are evicted
// by the janitor.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHub(maxIdle time.Duration, logger zerolog.Logger) *Hub {
	return &Hub{
		builders: make(map[string]FetchBuilder),
		sessions: make(map[string]*sessionEntry),
		maxIdle:  maxIdle,
		logger:   logger.With().Str("component", "panel_hub").Logger(),
	}
}

// Register binds a panel key to its fetch builder.
func (h *Hub) Register(panelKey string, builder FetchBuilder) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.builders[panelKey] = builder
	h.logger.Info().Str("panel", panelKey).Msg("registered panel")
}

// Controller returns the controller for (sessionID, panelKey), creating it on
// first access.
func (h *Hub) Controller(sessionID, panelKey string) (*Controller, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	builder, ok := h.builders[panelKey]
	if !ok {
		return nil, ErrUnknownPanel
	}

	entry, ok := h.sessions[sessionID]
	if !ok {
		entry = &sessionEntry{controllers: make(map[string]*Controller)}
		h.sessions[sessionID] = entry
	}
	entry.lastSeen = time.Now()

	ctrl, ok := entry.controllers[panelKey]
	if !ok {
		ctrl = NewController(panelKey, "", builder(sessionID), h.logger)
		entry.controllers[panelKey] = ctrl
	}
	return ctrl, nil
}

// EvictSession tears down all controllers of one session.
func (h *Hub) EvictSession(sessionID string) {
	h.mu.Lock()
	entry, ok := h.sessions[sessionID]
	if ok {
		delete(h.sessions, sessionID)
	}
	h.mu.Unlock()

	if !ok {
		return
	}
	for _, ctrl := range entry.controllers {
		ctrl.Close()
	}
	h.logger.Debug().Str("session", sessionID).Msg("session evicted")
}

// StartJanitor runs periodic idle-session eviction until ctx is done.
func (h *Hub) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.evictIdle()
			}
		}
	}()
}

// evictIdle evicts every session idle longer than maxIdle.
func (h *Hub) evictIdle() {
	cutoff := time.Now().Add(-h.maxIdle)

	h.mu.Lock()
	var stale []string
	for id, entry := range h.sessions {
		if entry.lastSeen.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	h.mu.Unlock()

	for _, id := range stale {
		h.EvictSession(id)
	}
}

// Panels returns the registered panel keys.
func (h *Hub) Panels() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	keys := make([]string, 0, len(h.builders))
	for k := range h.builders {
		keys = append(keys, k)
	}
	return keys
}
