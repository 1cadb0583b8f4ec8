// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat screen for the TUI.
//
// This file defines the Bubble Tea message types used by the screen.
// Every controller operation runs in a command goroutine and reports
// back with one of these; the update loop owns all state transitions.
package chat

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/anichat/anichat-tui/internal/controller"
)

// =============================================================================
// OPERATION RESULTS
// =============================================================================

// newChatDoneMsg reports a NewChat operation.
type newChatDoneMsg struct {
	Err error
}

// sendDoneMsg reports a Send operation.
type sendDoneMsg struct {
	Outcome controller.SendOutcome
	Err     error
}

// loadDoneMsg reports a Load operation.
type loadDoneMsg struct {
	SessionID string
	Outcome   controller.LoadOutcome
	Err       error
}

// deleteDoneMsg reports a Delete operation.
type deleteDoneMsg struct {
	Title   string
	Outcome controller.DeleteOutcome
	Err     error
}

// regenDoneMsg reports a Regenerate operation.
type regenDoneMsg struct {
	Ref     string
	Outcome controller.RegenOutcome
	Err     error
}

// directoryDoneMsg reports a standalone directory refresh.
type directoryDoneMsg struct {
	Err error
}

// reachDoneMsg reports the startup reachability probe.
type reachDoneMsg struct {
	Err error
}

// =============================================================================
// CONFIG
// =============================================================================

// configReloadedMsg delivers a hot-reloaded configuration.
type configReloadedMsg struct {
	SidebarWidth int
	Theme        string
}

// ConfigReloaded builds the message the config watcher sends into the
// running program.
func ConfigReloaded(sidebarWidth int, theme string) tea.Msg {
	return configReloadedMsg{SidebarWidth: sidebarWidth, Theme: theme}
}

// =============================================================================
// STATUS LINE
// =============================================================================

// clearStatusMsg expires a transient status line message.
type clearStatusMsg struct {
	Seq int
}
