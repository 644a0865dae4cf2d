// Vitrina - Localized Content Discovery Storefront
// Copyright 2026 Vitrina Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrina-app/vitrina

package preferences

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/vitrina-app/vitrina/internal/metrics"
)

// sectionsKeyPrefix namespaces page layouts in BadgerDB.
const sectionsKeyPrefix = "sections:"

// ErrUnknownSection is returned when toggling a section id the page's schema
// does not contain.
var ErrUnknownSection = errors.New("preferences: unknown section id")

// ErrUnknownPage is returned for a page id with no default schema.
var ErrUnknownPage = errors.New("preferences: unknown page id")

// Store holds merged section layouts keyed by (session, page), backed by
// BadgerDB.
//
// In-memory state is authoritative for the session. Every mutation performs a
// full read-modify-write of the whole list and re-persists fire-and-forget: a
// storage failure is logged and counted, never propagated. Last writer wins
// across concurrent writers of the same layout, acceptable for single-user
// preference data.
type Store struct {
	mu      sync.Mutex
	db      *badger.DB
	schemas map[string][]SectionPreference
	layouts map[string][]SectionPreference // keyed by storageKey(session, page)
	logger  zerolog.Logger
}

// NewStore creates a preference store over the given BadgerDB handle.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewStore(db *badger.DB, schemas map[string][]SectionPreference, logger zerolog.Logger) *Store {
	return &Store{
		db:      db,
		schemas: schemas,
		layouts: make(map[string][]SectionPreference),
		logger:  logger.With().Str("component", "preferences").Logger(),
	}
}

// storageKey builds the badger key for one session's page layout.
func storageKey(sessionID, pageID string) string {
	return sectionsKeyPrefix + sessionID + ":" + pageID
}

// Load hydrates a layout: persisted triples merged against the current
// default schema for the page. The merged list is cached in memory and reused
// by subsequent operations. A read failure falls back to the defaults.
func (s *Store) Load(sessionID, pageID string) ([]SectionPreference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(sessionID, pageID)
}

// Sections returns the current layout, loading it if needed.
func (s *Store) Sections(sessionID, pageID string) ([]SectionPreference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentCopyLocked(sessionID, pageID)
}

// Toggle flips one section's visibility and re-persists the full list.
func (s *Store) Toggle(sessionID, pageID, sectionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sections, err := s.currentLocked(sessionID, pageID)
	if err != nil {
		return err
	}

	for i := range sections {
		if sections[i].ID == sectionID {
			sections[i].Visible = !sections[i].Visible
			s.persistLocked(sessionID, pageID)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownSection, sectionID)
}

// Reorder moves the section at from to position to, then renumbers every
// section's order to its array index (dense, 0-based). Out-of-range indices
// are a programmer error and treated as a no-op.
func (s *Store) Reorder(sessionID, pageID string, from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sections, err := s.currentLocked(sessionID, pageID)
	if err != nil {
		return err
	}

	n := len(sections)
	if from < 0 || from >= n || to < 0 || to >= n {
		s.logger.Warn().
			Str("page", pageID).
			Int("from", from).
			Int("to", to).
			Msg("reorder indices out of range, ignoring")
		return nil
	}

	moved := sections[from]
	sections = append(sections[:from], sections[from+1:]...)
	sections = append(sections[:to], append([]SectionPreference{moved}, sections[to:]...)...)
	for i := range sections {
		sections[i].Order = i
	}

	s.layouts[storageKey(sessionID, pageID)] = sections
	s.persistLocked(sessionID, pageID)
	return nil
}

// Reset replaces the layout wholesale with the default schema and persists
// immediately.
func (s *Store) Reset(sessionID, pageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	defaults, ok := s.schemas[pageID]
	if !ok {
		return ErrUnknownPage
	}

	sections := make([]SectionPreference, len(defaults))
	copy(sections, defaults)
	s.layouts[storageKey(sessionID, pageID)] = sections
	s.persistLocked(sessionID, pageID)
	return nil
}

// Visible reports whether a section currently renders. Unknown sections are
// not visible.
func (s *Store) Visible(sessionID, pageID, sectionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sections, err := s.currentLocked(sessionID, pageID)
	if err != nil {
		return false
	}
	for _, section := range sections {
		if section.ID == sectionID {
			return section.Visible
		}
	}
	return false
}

// loadLocked reads, merges and caches one layout. Must be called with mu held.
func (s *Store) loadLocked(sessionID, pageID string) ([]SectionPreference, error) {
	defaults, ok := s.schemas[pageID]
	if !ok {
		return nil, ErrUnknownPage
	}

	persisted, err := s.readPersisted(sessionID, pageID)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("page", pageID).
			Msg("reading persisted layout failed, using defaults")
		persisted = nil
	}

	merged := Merge(persisted, defaults)
	s.layouts[storageKey(sessionID, pageID)] = merged

	out := make([]SectionPreference, len(merged))
	copy(out, merged)
	return out, nil
}

// currentLocked returns the live (not copied) layout, loading it if needed.
// Must be called with mu held.
func (s *Store) currentLocked(sessionID, pageID string) ([]SectionPreference, error) {
	key := storageKey(sessionID, pageID)
	if _, ok := s.layouts[key]; !ok {
		if _, err := s.loadLocked(sessionID, pageID); err != nil {
			return nil, err
		}
	}
	return s.layouts[key], nil
}

// currentCopyLocked returns a defensive copy of the current layout.
// Must be called with mu held.
func (s *Store) currentCopyLocked(sessionID, pageID string) ([]SectionPreference, error) {
	sections, err := s.currentLocked(sessionID, pageID)
	if err != nil {
		return nil, err
	}
	out := make([]SectionPreference, len(sections))
	copy(out, sections)
	return out, nil
}

// readPersisted loads the stored triples for a layout. A missing key is an
// empty layout, not an error.
func (s *Store) readPersisted(sessionID, pageID string) ([]StoredSection, error) {
	var persisted []StoredSection

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(storageKey(sessionID, pageID)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get layout: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &persisted)
		})
	})
	if err != nil {
		return nil, err
	}
	return persisted, nil
}

// persistLocked writes the full current layout, fire-and-forget. Write
// failures are logged and counted; in-memory state stands regardless.
// Must be called with mu held.
func (s *Store) persistLocked(sessionID, pageID string) {
	data, err := json.Marshal(ToStored(s.layouts[storageKey(sessionID, pageID)]))
	if err != nil {
		metrics.PreferencePersistFailures.Inc()
		s.logger.Error().Err(err).Str("page", pageID).Msg("marshal layout failed")
		return
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(storageKey(sessionID, pageID)), data)
	})
	if err != nil {
		metrics.PreferencePersistFailures.Inc()
		s.logger.Warn().
			Err(err).
			Str("page", pageID).
			Msg("persisting layout failed, in-memory state stands")
	}
}
