// Vitrina - Localized Content Discovery Storefront
// Copyright 2026 Vitrina Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrina-app/vitrina

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vitrina-app/vitrina/internal/config"
	"github.com/vitrina-app/vitrina/internal/database"
	"github.com/vitrina-app/vitrina/internal/logging"
	"github.com/vitrina-app/vitrina/internal/panel"
	"github.com/vitrina-app/vitrina/internal/preferences"
	"github.com/vitrina-app/vitrina/internal/recommend"
)

// sessionCookie carries the anonymous storefront session across requests.
const sessionCookie = "vitrina_session"

// recentSignalLimit caps how many recorded views feed the history tier when
// the client does not send its own recent ids.
const recentSignalLimit = 20

// Handler implements all HTTP endpoints.
type Handler struct {
	cfg      *config.Config
	db       *database.DB
	agg      *recommend.Aggregator
	prefs    *preferences.Store
	hub      *panel.Hub
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewHandler wires the endpoint dependencies together.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandler(cfg *config.Config, db *database.DB, agg *recommend.Aggregator, prefs *preferences.Store, hub *panel.Hub, logger zerolog.Logger) *Handler {
	return &Handler{
		cfg:      cfg,
		db:       db,
		agg:      agg,
		prefs:    prefs,
		hub:      hub,
		validate: validator.New(),
		logger:   logger.With().Str("component", "api").Logger(),
	}
}

// sessionID resolves the storefront session: X-Session-ID header first, then
// the session cookie, otherwise a fresh id is minted and set as a cookie.
func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request) string {
	if id := r.Header.Get("X-Session-ID"); id != "" {
		return id
	}
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}

	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// Health reports liveness of the service and its catalog store.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok", "database": "ok"}
	code := http.StatusOK
	if err := h.db.Health(r.Context()); err != nil {
		status["status"] = "degraded"
		status["database"] = err.Error()
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, r, code, status, 0)
}

// Picks returns personalized recommendations for the session.
//
// POST /api/v1/picks
func (h *Handler) Picks(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)

	var req PicksRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, CodeValidationError, err.Error())
		return
	}

	signals := recommend.Signals{
		FavoriteIDs: req.FavoriteIDs,
		RecentIDs:   req.RecentIDs,
	}

	// Top up history signals from recorded views when the client sent none.
	if len(signals.RecentIDs) == 0 {
		recent, err := h.db.RecentItemIDs(r.Context(), sessionID, recentSignalLimit)
		if err != nil {
			logger := logging.Ctx(r.Context())
			logger.Warn().Err(err).Msg("loading recent views failed, continuing without")
		} else {
			signals.RecentIDs = recent
		}
	}

	start := time.Now()
	result, err := h.agg.Aggregate(r.Context(), signals, req.Limit)
	if err != nil {
		if errors.Is(err, recommend.ErrAllTiersFailed) {
			writeError(w, r, http.StatusServiceUnavailable, CodeUnavailable, "recommendations temporarily unavailable")
			return
		}
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).Msg("aggregation failed")
		writeError(w, r, http.StatusInternalServerError, CodeInternalError, "internal error")
		return
	}

	writeJSON(w, r, http.StatusOK, result, time.Since(start))
}

// RecordView stores one item view for the session.
//
// POST /api/v1/views
func (h *Handler) RecordView(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)

	var req RecordViewRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, CodeValidationError, err.Error())
		return
	}

	if err := h.db.RecordView(r.Context(), sessionID, req.ItemID); err != nil {
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).Int64("item_id", req.ItemID).Msg("recording view failed")
		writeError(w, r, http.StatusInternalServerError, CodeInternalError, "internal error")
		return
	}

	writeJSON(w, r, http.StatusAccepted, map[string]int64{"item_id": req.ItemID}, 0)
}

// panelController resolves the session's controller for the panel named in
// the route, writing the error response itself on failure.
func (h *Handler) panelController(w http.ResponseWriter, r *http.Request) (*panel.Controller, bool) {
	sessionID := h.sessionID(w, r)
	panelKey := chi.URLParam(r, "panel")

	ctrl, err := h.hub.Controller(sessionID, panelKey)
	if err != nil {
		if errors.Is(err, panel.ErrUnknownPanel) {
			writeError(w, r, http.StatusNotFound, CodeNotFound, "unknown panel: "+panelKey)
			return nil, false
		}
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).Str("panel", panelKey).Msg("resolving panel controller failed")
		writeError(w, r, http.StatusInternalServerError, CodeInternalError, "internal error")
		return nil, false
	}
	return ctrl, true
}

// ExpandPanel opens a panel, triggering its first fetch if it has none yet.
//
// POST /api/v1/panels/{panel}/expand
func (h *Handler) ExpandPanel(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.panelController(w, r)
	if !ok {
		return
	}
	ctrl.Expand(r.Context())
	writeJSON(w, r, http.StatusOK, ctrl.Snapshot(), 0)
}

// CollapsePanel hides a panel without discarding its loaded content.
//
// POST /api/v1/panels/{panel}/collapse
func (h *Handler) CollapsePanel(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.panelController(w, r)
	if !ok {
		return
	}
	ctrl.Collapse()
	writeJSON(w, r, http.StatusOK, ctrl.Snapshot(), 0)
}

// RetryPanel re-runs a failed panel fetch.
//
// POST /api/v1/panels/{panel}/retry
func (h *Handler) RetryPanel(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.panelController(w, r)
	if !ok {
		return
	}
	if err := ctrl.Retry(r.Context()); err != nil {
		writeError(w, r, http.StatusConflict, CodeValidationError, "panel is not in an error state")
		return
	}
	writeJSON(w, r, http.StatusOK, ctrl.Snapshot(), 0)
}

// SetPanelKey changes the panel's input key, discarding loaded content. An
// expanded panel refetches immediately.
//
// POST /api/v1/panels/{panel}/key
func (h *Handler) SetPanelKey(w http.ResponseWriter, r *http.Request) {
	var req SetPanelKeyRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, CodeValidationError, err.Error())
		return
	}

	ctrl, ok := h.panelController(w, r)
	if !ok {
		return
	}
	ctrl.SetKey(r.Context(), req.Key)
	writeJSON(w, r, http.StatusOK, ctrl.Snapshot(), 0)
}

// PanelState returns the panel's current snapshot. Clients poll this after
// expand until the state leaves "loading".
//
// GET /api/v1/panels/{panel}
func (h *Handler) PanelState(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.panelController(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, ctrl.Snapshot(), 0)
}

// ListSections returns the merged section layout for a page.
//
// GET /api/v1/pages/{page}/sections
func (h *Handler) ListSections(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)
	pageID := chi.URLParam(r, "page")

	sections, err := h.prefs.Sections(sessionID, pageID)
	if err != nil {
		h.writePreferenceError(w, r, err, pageID)
		return
	}
	writeJSON(w, r, http.StatusOK, sections, 0)
}

// ToggleSection flips one section's visibility.
//
// POST /api/v1/pages/{page}/sections/{section}/toggle
func (h *Handler) ToggleSection(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)
	pageID := chi.URLParam(r, "page")
	sectionID := chi.URLParam(r, "section")

	if err := h.prefs.Toggle(sessionID, pageID, sectionID); err != nil {
		h.writePreferenceError(w, r, err, pageID)
		return
	}
	h.respondSections(w, r, sessionID, pageID)
}

// ReorderSections moves a section to a new position.
//
// POST /api/v1/pages/{page}/sections/reorder
func (h *Handler) ReorderSections(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)
	pageID := chi.URLParam(r, "page")

	var req ReorderSectionsRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, CodeValidationError, err.Error())
		return
	}

	if err := h.prefs.Reorder(sessionID, pageID, req.From, req.To); err != nil {
		h.writePreferenceError(w, r, err, pageID)
		return
	}
	h.respondSections(w, r, sessionID, pageID)
}

// ResetSections restores the page's default layout.
//
// POST /api/v1/pages/{page}/sections/reset
func (h *Handler) ResetSections(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)
	pageID := chi.URLParam(r, "page")

	if err := h.prefs.Reset(sessionID, pageID); err != nil {
		h.writePreferenceError(w, r, err, pageID)
		return
	}
	h.respondSections(w, r, sessionID, pageID)
}

// respondSections writes the page's current layout after a mutation.
func (h *Handler) respondSections(w http.ResponseWriter, r *http.Request, sessionID, pageID string) {
	sections, err := h.prefs.Sections(sessionID, pageID)
	if err != nil {
		h.writePreferenceError(w, r, err, pageID)
		return
	}
	writeJSON(w, r, http.StatusOK, sections, 0)
}

// writePreferenceError maps preference store errors onto HTTP responses.
func (h *Handler) writePreferenceError(w http.ResponseWriter, r *http.Request, err error, pageID string) {
	switch {
	case errors.Is(err, preferences.ErrUnknownPage):
		writeError(w, r, http.StatusNotFound, CodeNotFound, "unknown page: "+pageID)
	case errors.Is(err, preferences.ErrUnknownSection):
		writeError(w, r, http.StatusNotFound, CodeNotFound, err.Error())
	default:
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).Str("page", pageID).Msg("preference operation failed")
		writeError(w, r, http.StatusInternalServerError, CodeInternalError, "internal error")
	}
}
