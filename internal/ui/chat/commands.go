// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// statusTTL is how long a transient status line message stays visible.
const statusTTL = 4 * time.Second

// =============================================================================
// CONTROLLER COMMANDS
// =============================================================================

func (m Model) checkReachableCmd() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		return reachDoneMsg{Err: ctrl.CheckReachable(context.Background())}
	}
}

func (m Model) refreshDirectoryCmd() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		return directoryDoneMsg{Err: ctrl.RefreshDirectory(context.Background())}
	}
}

func (m Model) newChatCmd() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		return newChatDoneMsg{Err: ctrl.NewChat(context.Background())}
	}
}

func (m Model) sendCmd(text string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		out, err := ctrl.Send(context.Background(), text)
		return sendDoneMsg{Outcome: out, Err: err}
	}
}

func (m Model) loadCmd(sessionID string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		out, err := ctrl.Load(context.Background(), sessionID)
		return loadDoneMsg{SessionID: sessionID, Outcome: out, Err: err}
	}
}

func (m Model) deleteCmd(sessionID, title string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		out, err := ctrl.Delete(context.Background(), sessionID)
		return deleteDoneMsg{Title: title, Outcome: out, Err: err}
	}
}

func (m Model) regenerateCmd(botRef string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		out, err := ctrl.Regenerate(context.Background(), botRef)
		return regenDoneMsg{Ref: botRef, Outcome: out, Err: err}
	}
}

// =============================================================================
// STATUS LINE
// =============================================================================

// setStatus replaces the status line and returns the command that
// expires it.
func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.status = text
	m.statusErr = isErr
	m.statusSeq++
	seq := m.statusSeq
	return tea.Tick(statusTTL, func(time.Time) tea.Msg {
		return clearStatusMsg{Seq: seq}
	})
}
