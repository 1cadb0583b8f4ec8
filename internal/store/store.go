// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store is the in-memory view of conversation messages.
//
// Messages are held in an explicit session-id to entry-list mapping
// rather than being tagged into the rendered output, so the directory
// filter can search loaded sessions without touching the UI layer.
// Only the active session's list is rendered; the others persist for
// as long as the process has loaded them.
package store

import (
	"strings"
	"sync"

	"github.com/anichat/anichat-tui/internal/model"
)

// =============================================================================
// STORE
// =============================================================================

// Store holds the ordered message lists, keyed by session id. The
// empty session id ("") is a valid key: it holds messages composed
// before the backend has assigned a session (the fresh-session case).
type Store struct {
	mu       sync.RWMutex
	bySess   map[string][]*model.Message
	activeID string

	// maxPerSession trims the oldest entries of a session past the
	// cap. Zero means unbounded.
	maxPerSession int
}

// New creates an empty store.
func New() *Store {
	return &Store{bySess: make(map[string][]*model.Message)}
}

// NewWithCap creates a store that keeps at most maxPerSession entries
// per session (0 = unbounded).
func NewWithCap(maxPerSession int) *Store {
	s := New()
	s.maxPerSession = maxPerSession
	return s
}

// =============================================================================
// ACTIVE SESSION
// =============================================================================

// SetActiveSession switches which session new appends are tagged with
// and which list Messages returns.
func (s *Store) SetActiveSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = id
}

// ActiveSession returns the session id new appends are tagged with.
func (s *Store) ActiveSession() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// AdoptSession retags the active session's messages under a new id.
// Used when the backend assigns a real id to a fresh session whose
// optimistic messages were tagged with the empty id.
func (s *Store) AdoptSession(newID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if newID == s.activeID {
		return
	}
	msgs := s.bySess[s.activeID]
	delete(s.bySess, s.activeID)
	for _, m := range msgs {
		m.SessionID = newID
	}
	if len(msgs) > 0 {
		s.bySess[newID] = append(s.bySess[newID], msgs...)
	}
	s.activeID = newID
}

// =============================================================================
// MUTATION
// =============================================================================

// Append creates a message tagged with the active session and places
// it at the end of the visible sequence, returning its local ref.
func (s *Store) Append(content string, sender model.Sender) *model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := model.NewMessage(s.activeID, sender, content)
	s.bySess[s.activeID] = append(s.bySess[s.activeID], msg)
	s.trimLocked(s.activeID)
	return msg
}

// Clear removes every entry of the active session.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bySess, s.activeID)
}

// ClearAll drops every session's entries.
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bySess = make(map[string][]*model.Message)
}

// RemoveLocal removes a single entry by ref without contacting the
// backend. Returns false when the ref is unknown.
func (s *Store) RemoveLocal(ref string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, msgs := range s.bySess {
		for i, m := range msgs {
			if m.Ref == ref {
				s.bySess[id] = append(msgs[:i:i], msgs[i+1:]...)
				return true
			}
		}
	}
	return false
}

// ReplaceContent swaps an entry's content in place. Returns false
// when the ref is unknown.
func (s *Store) ReplaceContent(ref, newContent string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m := s.findLocked(ref); m != nil {
		m.Content = newContent
		return true
	}
	return false
}

// =============================================================================
// ACCESS
// =============================================================================

// Messages returns the active session's entries in insertion order.
// The returned slice is a copy; the messages themselves are shared.
func (s *Store) Messages() []*model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*model.Message(nil), s.bySess[s.activeID]...)
}

// MessagesFor returns the entries of an arbitrary loaded session.
func (s *Store) MessagesFor(sessionID string) []*model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*model.Message(nil), s.bySess[sessionID]...)
}

// Get returns an entry by ref, or nil.
func (s *Store) Get(ref string) *model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findLocked(ref)
}

// Len returns the number of entries in the active session.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bySess[s.activeID])
}

// Preceding returns the entry immediately before ref in the active
// session's sequence, or nil when ref is first or unknown. Regenerate
// uses this to find the user message a bot reply answered.
func (s *Store) Preceding(ref string) *model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.bySess[s.activeID]
	for i, m := range msgs {
		if m.Ref == ref {
			if i == 0 {
				return nil
			}
			return msgs[i-1]
		}
	}
	return nil
}

// SessionContains reports whether any message of the given session
// contains the lower-cased term. Matching is case-insensitive over raw
// content; the directory filter lower-cases the term once.
func (s *Store) SessionContains(sessionID, lowerTerm string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.bySess[sessionID] {
		if strings.Contains(strings.ToLower(m.Content), lowerTerm) {
			return true
		}
	}
	return false
}

// =============================================================================
// INTERNAL
// =============================================================================

func (s *Store) findLocked(ref string) *model.Message {
	for _, msgs := range s.bySess {
		for _, m := range msgs {
			if m.Ref == ref {
				return m
			}
		}
	}
	return nil
}

func (s *Store) trimLocked(id string) {
	if s.maxPerSession <= 0 {
		return
	}
	if msgs := s.bySess[id]; len(msgs) > s.maxPerSession {
		s.bySess[id] = append([]*model.Message(nil), msgs[len(msgs)-s.maxPerSession:]...)
	}
}
