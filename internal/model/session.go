// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// SESSION TYPE
// =============================================================================

// Session is a persisted conversation thread as reported by the
// backend session list. The id is opaque and server-assigned; Title
// may be empty until the backend assigns one after the first exchange.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayTitle returns the title shown in the sidebar: the assigned
// title when present, otherwise the creation time as a short
// localized date ("Jan 2, 03:04 PM").
func (s *Session) DisplayTitle() string {
	if s.Title != "" {
		return s.Title
	}
	if s.CreatedAt.IsZero() {
		return "Untitled chat"
	}
	return s.CreatedAt.Local().Format("Jan 2, 03:04 PM")
}

// HasTitle reports whether the backend has assigned a title yet.
func (s *Session) HasTitle() bool {
	return s.Title != ""
}
