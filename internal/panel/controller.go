// Vitrina - Localized Content Discovery Storefront
// Copyright 2026 Vitrina Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrina-app/vitrina

package panel

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vitrina-app/vitrina/internal/metrics"
)

// State is the render-facing controller state.
type State int

const (
	// StateIdle means the panel has never been expanded; nothing fetched.
	StateIdle State = iota
	// StateLoading means a fetch is in flight after an expansion.
	StateLoading
	// StateRetrying is a render-visible substate of loading entered from
	// Errored: the UI disables the retry button and shows a spinner on it.
	StateRetrying
	// StateReady means the last fetch succeeded with at least one item.
	StateReady
	// StateSuppressed means the last fetch succeeded with zero items; the
	// caller renders nothing.
	StateSuppressed
	// StateErrored means the last fetch failed; the UI offers retry.
	StateErrored
)

// String returns the wire name for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateRetrying:
		return "retrying"
	case StateReady:
		return "ready"
	case StateSuppressed:
		return "suppressed"
	case StateErrored:
		return "error"
	default:
		return "unknown"
	}
}

// Payload is the fetched content of one panel.
type Payload struct {
	// Items is the render payload; shape varies per panel kind.
	Items any `json:"items"`

	// Count is the number of items; zero triggers suppression.
	Count int `json:"count"`
}

// FetchFunc loads a panel's content. Implementations wrap the tier aggregator
// for the picks panel and plain batch loads for the others.
type FetchFunc func(ctx context.Context) (Payload, error)

// Snapshot is an immutable view of controller state handed to observers and
// serialized for the UI.
type Snapshot struct {
	// Panel is the panel key.
	Panel string `json:"panel"`

	// State is the current render state.
	State string `json:"state"`

	// Attempts counts fetches including retries.
	Attempts int `json:"attempts"`

	// Data is the fetched payload, present only in the ready state.
	Data *Payload `json:"data,omitempty"`

	// Error is a short user-facing message, present only in the error state.
	Error string `json:"error,omitempty"`
}

// Errors returned by controller operations.
var (
	// ErrClosed is returned by operations on a torn-down controller.
	ErrClosed = errors.New("panel: controller closed")

	// ErrNotErrored is returned by Retry outside the error state.
	ErrNotErrored = errors.New("panel: retry is only valid from the error state")
)

// Controller is the per-panel lazy fetch state machine. Safe for concurrent
// use, though the driving model is UI-event sequential; the mutex exists for
// the fetch completion goroutine.
type Controller struct {
	mu sync.Mutex

	panel string
	key   string
	fetch FetchFunc

	state    State
	data     Payload
	errMsg   string
	attempts int
	expanded bool // has been expanded at least once for the current key
	open     bool // current visual open/closed position, no fetch semantics

	// generation invalidates in-flight fetches: a resolution whose
	// generation no longer matches is stale and discarded.
	generation uint64
	cancel     context.CancelFunc

	observers []func(Snapshot)
	closed    bool

	logger zerolog.Logger
}

// NewController creates an idle controller for one panel.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewController(panelKey, inputKey string, fetch FetchFunc, logger zerolog.Logger) *Controller {
	return &Controller{
		panel:  panelKey,
		key:    inputKey,
		fetch:  fetch,
		state:  StateIdle,
		logger: logger.With().Str("component", "panel").Str("panel", panelKey).Logger(),
	}
}

// OnChange registers an observer invoked after every state transition.
// Observers run outside the controller lock, in registration order.
func (c *Controller) OnChange(fn func(Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// Expand opens the panel. The first expansion, or an expansion from the error
// state, starts a fetch; re-expanding an already fetched panel does not.
func (c *Controller) Expand(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.open = true

	refetch := !c.expanded || c.state == StateErrored
	if !refetch {
		c.mu.Unlock()
		return nil
	}

	c.expanded = true
	snapshot := c.startFetchLocked(ctx, StateLoading, "expand")
	c.mu.Unlock()

	c.notify(snapshot)
	return nil
}

// Collapse closes the panel visually. Fetched data and state are retained;
// freshness is once per mount.
func (c *Controller) Collapse() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
}

// Retry re-issues the fetch after a failure. Valid only from the error state.
func (c *Controller) Retry(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state != StateErrored {
		c.mu.Unlock()
		return ErrNotErrored
	}

	snapshot := c.startFetchLocked(ctx, StateRetrying, "retry")
	c.mu.Unlock()

	c.notify(snapshot)
	return nil
}

// SetKey replaces the panel's input key (e.g. the viewed-items list changed).
// A changed key cancels any in-flight fetch, drops held data and refetches if
// the panel had been expanded; an unchanged key is a no-op.
func (c *Controller) SetKey(ctx context.Context, key string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if key == c.key {
		c.mu.Unlock()
		return nil
	}

	c.key = key
	c.data = Payload{}
	c.errMsg = ""

	if !c.expanded {
		c.mu.Unlock()
		return nil
	}

	snapshot := c.startFetchLocked(ctx, StateLoading, "key_change")
	c.mu.Unlock()

	c.notify(snapshot)
	return nil
}

// Close tears the controller down, cancelling any in-flight fetch. The
// controller is unusable afterward.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.generation++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Snapshot returns the current render-facing view.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// startFetchLocked cancels any prior fetch, bumps the generation and launches
// a new fetch goroutine. Must be called with mu held; returns the snapshot to
// publish after unlocking.
func (c *Controller) startFetchLocked(ctx context.Context, state State, trigger string) Snapshot {
	if c.cancel != nil {
		c.cancel()
		metrics.PanelFetchCancellations.Inc()
	}

	c.generation++
	generation := c.generation
	c.state = state
	c.attempts++

	// The fetch outlives the triggering UI event: detach from the event's
	// cancelation while keeping its values (request ID for logging).
	fetchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.cancel = cancel

	metrics.PanelFetches.WithLabelValues(c.panel, trigger).Inc()
	c.logger.Debug().
		Str("trigger", trigger).
		Int("attempt", c.attempts).
		Msg("panel fetch started")

	go c.runFetch(fetchCtx, generation)

	return c.snapshotLocked()
}

// runFetch executes the fetch and applies its outcome unless superseded.
func (c *Controller) runFetch(ctx context.Context, generation uint64) {
	payload, err := c.fetch(ctx)

	c.mu.Lock()
	if c.closed || generation != c.generation {
		c.mu.Unlock()
		metrics.PanelStaleResults.Inc()
		c.logger.Debug().Msg("stale panel fetch discarded")
		return
	}

	c.cancel = nil
	switch {
	case err != nil:
		c.state = StateErrored
		c.errMsg = "content temporarily unavailable"
		c.logger.Warn().Err(err).Msg("panel fetch failed")
	case payload.Count == 0:
		c.state = StateSuppressed
		c.data = Payload{}
	default:
		c.state = StateReady
		c.data = payload
		c.errMsg = ""
	}
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snapshot)
}

// snapshotLocked builds a Snapshot. Must be called with mu held.
func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		Panel:    c.panel,
		State:    c.state.String(),
		Attempts: c.attempts,
	}
	switch c.state {
	case StateReady:
		data := c.data
		s.Data = &data
	case StateErrored:
		s.Error = c.errMsg
	}
	return s
}

// notify invokes observers outside the lock.
func (c *Controller) notify(snapshot Snapshot) {
	c.mu.Lock()
	observers := make([]func(Snapshot), len(c.observers))
	copy(observers, c.observers)
	c.mu.Unlock()

	for _, fn := range observers {
		fn(snapshot)
	}
}
