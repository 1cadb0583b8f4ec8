// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package directory maintains the sidebar's view of the session list.
//
// The list is server-authoritative: Refresh replaces it wholesale (no
// incremental diffing) and re-derives the active marker. Filtering
// hides entries without removing them, so clearing the filter restores
// the full directory without another fetch.
package directory

import (
	"strings"
	"sync"

	"github.com/anichat/anichat-tui/internal/model"
)

// searcher is the slice of the message store the filter needs: which
// loaded sessions contain a term. Only currently-loaded messages are
// searched; this is not a cross-session full-text search.
type searcher interface {
	SessionContains(sessionID, lowerTerm string) bool
}

// =============================================================================
// ENTRY
// =============================================================================

// Entry is one sidebar row.
type Entry struct {
	Session model.Session
	Active  bool
	Hidden  bool
}

// =============================================================================
// DIRECTORY
// =============================================================================

// Directory is the sidebar state. At most one entry is active at a
// time, and it is always the one whose id equals the controller's
// current chat id (when that id is present in the list at all).
type Directory struct {
	mu      sync.RWMutex
	entries []Entry
	filter  string
}

// New creates an empty directory.
func New() *Directory {
	return &Directory{}
}

// =============================================================================
// SYNCHRONIZATION
// =============================================================================

// Refresh replaces the directory wholesale with the fetched session
// list and marks the entry matching currentID active. The standing
// filter term is re-applied against the new list.
func (d *Directory) Refresh(sessions []model.Session, currentID string, s searcher) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.entries = make([]Entry, len(sessions))
	for i, sess := range sessions {
		d.entries[i] = Entry{
			Session: sess,
			Active:  currentID != "" && sess.ID == currentID,
		}
	}
	d.applyFilterLocked(s)
}

// SetActive clears the active flag from every entry and sets it on the
// entry matching id. An unknown id simply leaves no entry active.
func (d *Directory) SetActive(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.entries {
		d.entries[i].Active = id != "" && d.entries[i].Session.ID == id
	}
}

// =============================================================================
// FILTERING
// =============================================================================

// Filter hides entries whose title and loaded messages both lack the
// term, case-insensitively. An empty term shows everything.
func (d *Directory) Filter(term string, s searcher) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.filter = term
	d.applyFilterLocked(s)
}

// FilterTerm returns the standing filter term.
func (d *Directory) FilterTerm() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.filter
}

func (d *Directory) applyFilterLocked(s searcher) {
	term := strings.ToLower(d.filter)
	for i := range d.entries {
		if term == "" {
			d.entries[i].Hidden = false
			continue
		}
		e := &d.entries[i]
		titleMatch := strings.Contains(strings.ToLower(e.Session.DisplayTitle()), term)
		contentMatch := s != nil && s.SessionContains(e.Session.ID, term)
		e.Hidden = !titleMatch && !contentMatch
	}
}

// =============================================================================
// ACCESS
// =============================================================================

// Entries returns a snapshot of every entry, hidden ones included.
func (d *Directory) Entries() []Entry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]Entry(nil), d.entries...)
}

// Visible returns the entries the sidebar should render, in server
// order.
func (d *Directory) Visible() []Entry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []Entry
	for _, e := range d.entries {
		if !e.Hidden {
			out = append(out, e)
		}
	}
	return out
}

// Get returns the entry for a session id.
func (d *Directory) Get(id string) (Entry, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, e := range d.entries {
		if e.Session.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Len returns the total number of entries, hidden ones included.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

// IsEmpty reports whether the directory has no sessions at all; the
// sidebar shows a placeholder instead of an empty list.
func (d *Directory) IsEmpty() bool {
	return d.Len() == 0
}

// ActiveID returns the id of the active entry, or "" when none is
// marked.
func (d *Directory) ActiveID() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, e := range d.entries {
		if e.Active {
			return e.Session.ID
		}
	}
	return ""
}
