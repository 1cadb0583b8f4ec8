// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"testing"
	"time"
)

// =============================================================================
// SENDER TESTS
// =============================================================================

func TestParseSender(t *testing.T) {
	tests := []struct {
		raw  string
		want Sender
	}{
		{"user", SenderUser},
		{"bot", SenderBot},
		{"assistant", SenderBot}, // unknown senders render as the bot side
		{"", SenderBot},
	}

	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			if got := ParseSender(tc.raw); got != tc.want {
				t.Errorf("ParseSender(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestSender_DisplayName(t *testing.T) {
	if SenderUser.DisplayName() != "You" {
		t.Errorf("SenderUser.DisplayName() = %q", SenderUser.DisplayName())
	}
	if SenderBot.DisplayName() != "AniChat" {
		t.Errorf("SenderBot.DisplayName() = %q", SenderBot.DisplayName())
	}
}

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewMessage_TagsSession(t *testing.T) {
	msg := NewMessage("42", SenderUser, "hello")

	if msg.SessionID != "42" {
		t.Errorf("SessionID = %q, want %q", msg.SessionID, "42")
	}
	if msg.Ref == "" {
		t.Error("Ref should be generated")
	}
	if !msg.IsUser() {
		t.Error("IsUser() should be true for a user message")
	}

	other := NewMessage("42", SenderUser, "hello")
	if other.Ref == msg.Ref {
		t.Error("two messages should not share a Ref")
	}
}

func TestMessage_Preview(t *testing.T) {
	tests := []struct {
		name    string
		content string
		max     int
		want    string
	}{
		{"short content untouched", "hi", 10, "hi"},
		{"long content truncated", "hello world", 8, "hello..."},
		{"unicode safe", "こんにちは世界", 5, "こん..."},
		{"tiny budget", "hello", 2, "he"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			msg := NewMessage("1", SenderBot, tc.content)
			if got := msg.Preview(tc.max); got != tc.want {
				t.Errorf("Preview(%d) = %q, want %q", tc.max, got, tc.want)
			}
		})
	}
}

// =============================================================================
// SESSION TESTS
// =============================================================================

func TestSession_DisplayTitle(t *testing.T) {
	created := time.Date(2025, time.March, 7, 14, 30, 0, 0, time.Local)

	tests := []struct {
		name    string
		session Session
		want    string
	}{
		{
			name:    "title wins when present",
			session: Session{ID: "1", Title: "Trip Planning", CreatedAt: created},
			want:    "Trip Planning",
		},
		{
			name:    "timestamp fallback",
			session: Session{ID: "2", CreatedAt: created},
			want:    "Mar 7, 02:30 PM",
		},
		{
			name:    "zero time fallback",
			session: Session{ID: "3"},
			want:    "Untitled chat",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.session.DisplayTitle(); got != tc.want {
				t.Errorf("DisplayTitle() = %q, want %q", got, tc.want)
			}
		})
	}
}
