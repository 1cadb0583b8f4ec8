// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/anichat/anichat-tui/internal/controller"
	"github.com/anichat/anichat-tui/internal/ui/styles"
)

// Update is the message loop for the chat screen.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.refreshViewport()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		if m.busy() || m.regenRef != "" {
			// Redraw so optimistic appends and the typing indicator
			// show up while the operation is still in flight.
			m.refreshViewport()
			return m, cmd
		}
		return m, nil

	case clearStatusMsg:
		if msg.Seq == m.statusSeq {
			m.status = ""
			m.statusErr = false
		}
		return m, nil

	case configReloadedMsg:
		if msg.SidebarWidth > 0 {
			m.sidebarWidth = msg.SidebarWidth
			m.resize(m.width, m.height)
		}
		if msg.Theme != "" {
			styles.ApplyTheme(msg.Theme)
		}
		m.refreshViewport()
		return m, m.setStatus("Configuration reloaded", false)

	case reachDoneMsg:
		if msg.Err != nil {
			return m, m.setStatus(
				fmt.Sprintf("Cannot reach %s: connection failed", m.cfg.Server.URL), true)
		}
		return m, nil

	case directoryDoneMsg:
		m.clampSidebarCursor()
		if msg.Err != nil {
			return m, m.setStatus("Could not fetch chat list", true)
		}
		return m, nil

	case newChatDoneMsg:
		m.refreshViewport()
		m.clampSidebarCursor()
		if msg.Err != nil {
			return m, m.reportOpError("Could not start a new chat", msg.Err)
		}
		m.follow = true
		m.viewport.GotoBottom()
		m.autoCloseSidebar()
		m.focus = focusInput
		m.input.Focus()
		return m, m.setStatus("Started a new chat", false)

	case sendDoneMsg:
		m.refreshViewport()
		m.follow = true
		m.viewport.GotoBottom()
		if msg.Err != nil {
			return m, m.reportOpError("Could not send", msg.Err)
		}
		m.clampSidebarCursor()
		return m, nil

	case loadDoneMsg:
		if msg.Err != nil {
			return m, m.reportOpError("Could not open chat", msg.Err)
		}
		if msg.Outcome.NoOp {
			return m, nil
		}
		m.refreshViewport()
		m.follow = true
		m.viewport.GotoBottom()
		m.autoCloseSidebar()
		m.focus = focusInput
		m.input.Focus()
		return m, nil

	case deleteDoneMsg:
		if msg.Err != nil {
			return m, m.reportOpError("Could not delete chat", msg.Err)
		}
		m.refreshViewport()
		m.clampSidebarCursor()
		m.follow = true
		m.viewport.GotoBottom()
		m.focus = focusInput
		m.input.Focus()
		return m, m.setStatus(fmt.Sprintf("Deleted %q", msg.Title), false)

	case regenDoneMsg:
		m.regenRef = ""
		m.refreshViewport()
		if msg.Err != nil {
			return m, m.reportOpError("Could not regenerate", msg.Err)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Cursor blink and other component housekeeping.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.search, cmd = m.search.Update(msg)
	cmds = append(cmds, cmd)
	m.edit, cmd = m.edit.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// reportOpError turns a controller error into a status line message.
func (m *Model) reportOpError(prefix string, err error) tea.Cmd {
	if errors.Is(err, controller.ErrBusy) {
		return m.setStatus("Still working on the last request...", true)
	}
	if errors.Is(err, controller.ErrNoPrecedingUser) {
		return m.setStatus("Only bot replies to your messages can be regenerated", true)
	}
	return m.setStatus(prefix+": connection failed", true)
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}

	if m.overlay != overlayNone {
		return m.handleOverlayKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.overlay = overlayHelp
		return m, nil

	case key.Matches(msg, m.keys.NewChat):
		return m.requestNewChat()

	case key.Matches(msg, m.keys.ToggleSidebar):
		m.sidebarOpen = !m.sidebarOpen
		if !m.sidebarOpen && m.focus == focusSidebar {
			m.focus = focusInput
			m.input.Focus()
		}
		m.resize(m.width, m.height)
		m.refreshViewport()
		return m, nil

	case key.Matches(msg, m.keys.CycleFocus):
		return m.cycleFocus()
	}

	switch m.focus {
	case focusSidebar:
		return m.handleSidebarKey(msg)
	case focusMessages:
		return m.handleMessagesKey(msg)
	default:
		return m.handleInputKey(msg)
	}
}

func (m Model) cycleFocus() (tea.Model, tea.Cmd) {
	if m.focus == focusInput && m.sidebarOpen {
		m.focus = focusSidebar
		m.input.Blur()
		m.clampSidebarCursor()
		return m, nil
	}
	m.focus = focusInput
	m.searching = false
	m.search.Blur()
	m.input.Focus()
	return m, textinput.Blink
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Send):
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		if m.busy() {
			return m, m.setStatus("Still working on the last request...", true)
		}
		m.input.Reset()
		m.follow = true
		return m, tea.Batch(m.sendCmd(text), m.spin.Tick)

	case key.Matches(msg, m.keys.Messages):
		msgs := m.ctrl.Store().Messages()
		if len(msgs) == 0 {
			return m, nil
		}
		m.focus = focusMessages
		m.input.Blur()
		m.msgCursor = len(msgs) - 1
		m.refreshViewport()
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.follow = false
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		if m.viewport.AtBottom() {
			m.follow = true
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleMessagesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	msgs := m.ctrl.Store().Messages()
	if len(msgs) == 0 {
		m.focus = focusInput
		m.input.Focus()
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Messages), key.Matches(msg, m.keys.Select):
		m.focus = focusInput
		m.input.Focus()
		m.refreshViewport()
		return m, nil

	case key.Matches(msg, m.keys.LineUp):
		if m.msgCursor > 0 {
			m.msgCursor--
		}
		m.follow = false
		m.refreshViewport()
		return m, nil

	case key.Matches(msg, m.keys.LineDown):
		if m.msgCursor < len(msgs)-1 {
			m.msgCursor++
		}
		if m.msgCursor == len(msgs)-1 {
			m.follow = true
		}
		m.refreshViewport()
		return m, nil

	case key.Matches(msg, m.keys.Edit):
		target := msgs[m.msgCursor]
		m.overlay = overlayEdit
		m.editRef = target.Ref
		m.edit.SetValue(target.Content)
		m.edit.CursorEnd()
		m.edit.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Delete):
		target := msgs[m.msgCursor]
		m.ctrl.DeleteMessage(target.Ref)
		if n := m.ctrl.Store().Len(); m.msgCursor >= n && n > 0 {
			m.msgCursor = n - 1
		}
		if m.ctrl.Store().Len() == 0 {
			m.focus = focusInput
			m.input.Focus()
		}
		m.refreshViewport()
		return m, nil

	case key.Matches(msg, m.keys.Regenerate):
		target := msgs[m.msgCursor]
		if m.busy() {
			return m, m.setStatus("Still working on the last request...", true)
		}
		m.regenRef = target.Ref
		return m, tea.Batch(m.regenerateCmd(target.Ref), m.spin.Tick)
	}
	return m, nil
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKey(msg)
	}

	visible := m.ctrl.Directory().Visible()

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.sidebarCursor > 0 {
			m.sidebarCursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.sidebarCursor < len(visible)-1 {
			m.sidebarCursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		if len(visible) == 0 {
			return m, nil
		}
		if m.busy() {
			return m, m.setStatus("Still working on the last request...", true)
		}
		entry := visible[m.sidebarCursor]
		return m, tea.Batch(m.loadCmd(entry.Session.ID), m.spin.Tick)

	case key.Matches(msg, m.keys.Delete):
		if len(visible) == 0 {
			return m, nil
		}
		entry := visible[m.sidebarCursor]
		m.overlay = overlayConfirmDelete
		m.deleteID = entry.Session.ID
		m.deleteTtl = entry.Session.DisplayTitle()
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.Reset()
		m.ctrl.Search("")
		m.clampSidebarCursor()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	// The filter narrows as the term is typed, like the sidebar search
	// box in any chat app.
	m.ctrl.Search(m.search.Value())
	m.clampSidebarCursor()
	return m, cmd
}

// =============================================================================
// OVERLAYS
// =============================================================================

func (m Model) requestNewChat() (tea.Model, tea.Cmd) {
	if m.busy() {
		return m, m.setStatus("Still working on the last request...", true)
	}
	if m.cfg.UI.ConfirmNewChat && m.ctrl.Store().Len() > 0 {
		m.overlay = overlayConfirmNew
		return m, nil
	}
	return m, tea.Batch(m.newChatCmd(), m.spin.Tick)
}

func (m Model) handleOverlayKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.overlay {
	case overlayHelp:
		m.overlay = overlayNone
		return m, nil

	case overlayConfirmNew:
		switch {
		case key.Matches(msg, m.keys.Confirm):
			m.overlay = overlayNone
			return m, tea.Batch(m.newChatCmd(), m.spin.Tick)
		case key.Matches(msg, m.keys.Cancel):
			m.overlay = overlayNone
		}
		return m, nil

	case overlayConfirmDelete:
		switch {
		case key.Matches(msg, m.keys.Confirm):
			m.overlay = overlayNone
			id, title := m.deleteID, m.deleteTtl
			m.deleteID, m.deleteTtl = "", ""
			return m, tea.Batch(m.deleteCmd(id, title), m.spin.Tick)
		case key.Matches(msg, m.keys.Cancel):
			m.overlay = overlayNone
			m.deleteID, m.deleteTtl = "", ""
		}
		return m, nil

	case overlayEdit:
		switch msg.String() {
		case "enter":
			m.overlay = overlayNone
			text := strings.TrimSpace(m.edit.Value())
			if text != "" {
				m.ctrl.EditMessage(m.editRef, text)
			}
			m.editRef = ""
			m.edit.Blur()
			m.refreshViewport()
			return m, nil
		case "esc":
			m.overlay = overlayNone
			m.editRef = ""
			m.edit.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.edit, cmd = m.edit.Update(msg)
		return m, cmd
	}
	return m, nil
}

// =============================================================================
// LAYOUT
// =============================================================================

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	// header (1) + input frame (3) + status (1)
	bodyHeight := height - 5
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	bodyWidth := width
	if m.sidebarOpen {
		bodyWidth -= m.sidebarWidth
	}
	if bodyWidth < 10 {
		bodyWidth = 10
	}

	if !m.ready {
		m.viewport = viewport.New(bodyWidth, bodyHeight)
		m.ready = true
	} else {
		m.viewport.Width = bodyWidth
		m.viewport.Height = bodyHeight
	}
	m.input.Width = width - 6
	m.search.Width = m.sidebarWidth - 6
	m.edit.Width = width - 12
}

// autoCloseSidebar collapses the sidebar after a session switch when
// the terminal is too narrow to keep both panes useful.
func (m *Model) autoCloseSidebar() {
	if m.sidebarOpen && m.width < 80 {
		m.sidebarOpen = false
		m.resize(m.width, m.height)
	}
}

func (m *Model) clampSidebarCursor() {
	n := len(m.ctrl.Directory().Visible())
	if n == 0 {
		m.sidebarCursor = 0
		return
	}
	if m.sidebarCursor >= n {
		m.sidebarCursor = n - 1
	}
	if m.sidebarCursor < 0 {
		m.sidebarCursor = 0
	}
}

// refreshViewport rebuilds the conversation pane from the store.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.conversationContent())
	if m.follow {
		m.viewport.GotoBottom()
	}
}
