// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/anichat/anichat-tui/internal/model"
)

// =============================================================================
// WIRE ID NORMALIZATION
// =============================================================================

// wireID decodes a session id that may arrive as a JSON number or a
// JSON string. Either way it normalizes to the canonical string form
// used everywhere in the client, so 7 and "7" are the same session.
type wireID string

func (w *wireID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*w = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*w = wireID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*w = wireID(n.String())
	return nil
}

func (w wireID) String() string {
	return string(w)
}

// =============================================================================
// WIRE TIMESTAMPS
// =============================================================================

// createdAtLayouts are the timestamp shapes the backend has been seen
// emitting (Python isoformat with and without fractional seconds or
// zone, plus RFC 3339 for good measure).
var createdAtLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseCreatedAt parses a created_at value, returning the zero time
// when the value is empty or unrecognized. A missing timestamp only
// degrades the sidebar fallback title, so it is not an error.
func parseCreatedAt(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// =============================================================================
// REQUEST / RESPONSE TYPES
// =============================================================================

// chatRequest is the body for POST /chat. The session context is
// implied server-side; only the message travels.
type chatRequest struct {
	Message string `json:"message"`
}

// newChatResponse is the body of POST /new_chat.
type newChatResponse struct {
	Success   bool   `json:"success"`
	NewChatID wireID `json:"new_chat_id"`
	Message   string `json:"message,omitempty"`
}

// chatResponse is the body of POST /chat.
type chatResponse struct {
	Response       string `json:"response"`
	CurrentChatID  wireID `json:"current_chat_id"`
	RefreshHistory bool   `json:"refresh_history"`
}

// wireSession is one entry of GET /get_chat_sessions.
type wireSession struct {
	ID        wireID `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
}

func (s wireSession) toModel() model.Session {
	return model.Session{
		ID:        s.ID.String(),
		Title:     s.Title,
		CreatedAt: parseCreatedAt(s.CreatedAt),
	}
}

// sessionsResponse is the body of GET /get_chat_sessions.
type sessionsResponse struct {
	Sessions []wireSession `json:"sessions"`
}

// wireMessage is one transcript entry of GET /load_chat/{id}.
type wireMessage struct {
	Content string `json:"content"`
	Sender  string `json:"sender"`
}

// loadChatResponse is the body of GET /load_chat/{id}.
type loadChatResponse struct {
	Success       bool          `json:"success"`
	CurrentChatID wireID        `json:"current_chat_id"`
	Messages      []wireMessage `json:"messages"`
	Message       string        `json:"message,omitempty"`
}

// deleteChatResponse is the body of DELETE /delete_chat/{id}.
type deleteChatResponse struct {
	Success          bool   `json:"success"`
	NewCurrentChatID wireID `json:"new_current_chat_id"`
	Message          string `json:"message,omitempty"`
}

// =============================================================================
// RESULT TYPES
// =============================================================================

// SendResult is the outcome of a successful Send.
type SendResult struct {
	// Reply is the bot's response text.
	Reply string
	// CurrentChatID is the session the backend attributed the exchange
	// to. The caller adopts it when it differs from its own notion.
	CurrentChatID string
	// RefreshHistory advises the caller to re-fetch the session list
	// (a title was just assigned).
	RefreshHistory bool
}

// TranscriptMessage is one message of a loaded session, in server
// order.
type TranscriptMessage struct {
	Content string
	Sender  model.Sender
}

// LoadResult is the outcome of a successful LoadChat.
type LoadResult struct {
	CurrentChatID string
	Messages      []TranscriptMessage
}
