// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// SENDER TYPE
// =============================================================================

// Sender identifies which side of the conversation produced a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// String returns the wire representation of the sender.
func (s Sender) String() string {
	return string(s)
}

// DisplayName returns a human-readable name for the sender.
func (s Sender) DisplayName() string {
	switch s {
	case SenderUser:
		return "You"
	case SenderBot:
		return "AniChat"
	default:
		return string(s)
	}
}

// Valid reports whether the sender is one of the two known values.
func (s Sender) Valid() bool {
	return s == SenderUser || s == SenderBot
}

// ParseSender maps a wire sender string onto a Sender, defaulting
// anything unrecognized to SenderBot so a lenient backend cannot make
// the client render a message with no role.
func ParseSender(raw string) Sender {
	if raw == string(SenderUser) {
		return SenderUser
	}
	return SenderBot
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single rendered entry in the conversation window.
//
// Ref is a locally generated opaque reference used for in-place
// operations (edit, local delete, regenerate). It never leaves the
// client; the backend has no notion of per-message identity on this
// surface.
type Message struct {
	Ref       string    `json:"ref"`
	SessionID string    `json:"session_id"`
	Sender    Sender    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message tagged with its owning session.
func NewMessage(sessionID string, sender Sender, content string) *Message {
	return &Message{
		Ref:       uuid.NewString(),
		SessionID: sessionID,
		Sender:    sender,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// IsUser reports whether the message was sent by the user.
func (m *Message) IsUser() bool {
	return m.Sender == SenderUser
}

// Preview returns a rune-safe truncated preview of the content.
func (m *Message) Preview(maxRunes int) string {
	runes := []rune(m.Content)
	if len(runes) <= maxRunes {
		return m.Content
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}

// IsEmpty reports whether the message has no content.
func (m *Message) IsEmpty() bool {
	return len(m.Content) == 0
}
