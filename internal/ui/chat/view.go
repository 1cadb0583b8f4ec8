// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/anichat/anichat-tui/internal/util"
)

// View renders the chat screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Starting..."
	}

	body := m.viewport.View()
	if m.sidebarOpen {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), body)
	}

	screen := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderInput(),
		m.renderStatus(),
	)

	if m.overlay != overlayNone {
		return m.renderOverlay(screen)
	}
	return screen
}

// =============================================================================
// HEADER, INPUT, STATUS
// =============================================================================

func (m Model) renderHeader() string {
	title := "Untitled chat"
	if e, ok := m.ctrl.Directory().Get(m.ctrl.CurrentChatID()); ok {
		title = e.Session.DisplayTitle()
	}
	left := m.theme.SidebarTitle.Render("AniChat")
	mid := m.theme.Message.Render("  " + util.TruncateWidth(title, m.width/2))
	right := m.theme.Help.Render(m.cfg.Server.URL)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(mid) - lipgloss.Width(right)
	if gap < 1 {
		return util.TruncateWidth(left+mid, m.width)
	}
	return left + mid + strings.Repeat(" ", gap) + right
}

func (m Model) renderInput() string {
	frame := m.theme.InputFrame.Width(m.width - 2)
	if m.focus != focusInput {
		return frame.Faint(true).Render(m.input.View())
	}
	return frame.Render(m.input.View())
}

func (m Model) renderStatus() string {
	if m.status != "" {
		if m.statusErr {
			return m.theme.StatusErr.Render(" " + m.status)
		}
		return m.theme.StatusBar.Render(" " + m.status)
	}

	var hint string
	switch m.focus {
	case focusSidebar:
		if m.searching {
			hint = "type to filter · enter keep · esc clear"
		} else {
			hint = "↑/↓ choose · enter open · d delete · / search · tab back"
		}
	case focusMessages:
		hint = "↑/↓ choose · e edit · d remove · r regenerate · esc back"
	default:
		hint = "enter send · esc messages · ctrl+n new · ctrl+b sidebar · ctrl+g help"
	}
	return m.theme.Help.Render(" " + hint)
}

// =============================================================================
// CONVERSATION
// =============================================================================

// conversationContent renders the message window. Each message gets a
// sender label line followed by its markdown-styled body.
func (m Model) conversationContent() string {
	msgs := m.ctrl.Store().Messages()
	width := m.viewport.Width - 2
	if width < 10 {
		width = 10
	}

	var b strings.Builder
	if len(msgs) == 0 && !m.busy() {
		b.WriteString("\n")
		b.WriteString(m.theme.InlineNote.Render("  Say hi to start a conversation."))
		b.WriteString("\n")
	}

	selecting := m.focus == focusMessages
	for i, msg := range msgs {
		label := m.theme.BotLabel.Render("Ani")
		if msg.IsUser() {
			label = m.theme.UserLabel.Render("You")
		}
		cursor := "  "
		if selecting && i == m.msgCursor {
			cursor = m.theme.SidebarCursor.Render("> ")
		}
		b.WriteString(cursor + label + m.theme.Help.Render(
			"  "+msg.Timestamp.Local().Format("3:04 PM")))
		b.WriteString("\n")

		body := m.md.Render(msg.Content)
		if msg.Ref == m.regenRef {
			body = m.spin.View() + m.theme.Typing.Render(" regenerating...")
		}
		b.WriteString(indentWrap(m.theme.Message.Width(width).Render(body), "  "))
		b.WriteString("\n\n")
	}

	if m.busy() && m.regenRef == "" {
		b.WriteString("  " + m.theme.BotLabel.Render("Ani"))
		b.WriteString("\n")
		b.WriteString("  " + m.spin.View() + m.theme.Typing.Render(" typing..."))
		b.WriteString("\n")
	}
	return b.String()
}

// indentWrap prefixes every line of an already-wrapped block.
func indentWrap(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = prefix + lines[i]
	}
	return strings.Join(lines, "\n")
}

// =============================================================================
// SIDEBAR
// =============================================================================

func (m Model) renderSidebar() string {
	inner := m.sidebarWidth - 3
	if inner < 8 {
		inner = 8
	}

	var b strings.Builder
	b.WriteString(m.theme.SidebarTitle.Render("Chats"))
	b.WriteString("\n")

	if m.searching || m.search.Value() != "" {
		b.WriteString(m.theme.SidebarFilter.Render(m.search.View()))
		b.WriteString("\n")
	}

	visible := m.ctrl.Directory().Visible()
	if len(visible) == 0 {
		if m.ctrl.Directory().FilterTerm() != "" {
			b.WriteString(m.theme.SidebarEmpty.Render("No matches"))
		} else {
			b.WriteString(m.theme.SidebarEmpty.Render("No chats yet"))
		}
	}

	focused := m.focus == focusSidebar && !m.searching
	for i, e := range visible {
		title := util.TruncateWidth(e.Session.DisplayTitle(), inner-2)
		line := m.theme.SidebarItem.Render(title)
		if e.Active {
			line = m.theme.SidebarActive.Render(title)
		}
		prefix := "  "
		if focused && i == m.sidebarCursor {
			prefix = m.theme.SidebarCursor.Render("> ")
		}
		b.WriteString(prefix + line)
		b.WriteString("\n")
	}

	height := m.viewport.Height
	return m.theme.SidebarBorder.
		Width(m.sidebarWidth - 2).
		Height(height).
		MaxHeight(height).
		Render(b.String())
}

// =============================================================================
// OVERLAYS
// =============================================================================

func (m Model) renderOverlay(base string) string {
	var box string
	switch m.overlay {
	case overlayConfirmNew:
		box = m.theme.OverlayBox.Render(lipgloss.JoinVertical(lipgloss.Left,
			m.theme.OverlayTitle.Render("Start a new chat?"),
			"",
			m.theme.Message.Render("The current conversation stays in your history."),
			"",
			m.theme.Help.Render("y confirm · n cancel"),
		))

	case overlayConfirmDelete:
		box = m.theme.OverlayBox.Render(lipgloss.JoinVertical(lipgloss.Left,
			m.theme.OverlayDanger.Render("Delete this chat?"),
			"",
			m.theme.Message.Render(fmt.Sprintf("%q will be gone for good.",
				util.TruncateWidth(m.deleteTtl, 40))),
			"",
			m.theme.Help.Render("y delete · n cancel"),
		))

	case overlayEdit:
		box = m.theme.OverlayBox.Render(lipgloss.JoinVertical(lipgloss.Left,
			m.theme.OverlayTitle.Render("Edit message"),
			"",
			m.edit.View(),
			"",
			m.theme.Help.Render("enter save · esc cancel"),
		))

	case overlayHelp:
		box = m.theme.OverlayBox.Render(lipgloss.JoinVertical(lipgloss.Left,
			m.theme.OverlayTitle.Render("Keys"),
			"",
			m.helpBody(),
			"",
			m.theme.Help.Render("any key to close"),
		))

	default:
		return base
	}

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) helpBody() string {
	rows := []struct{ k, v string }{
		{"enter", "send message"},
		{"ctrl+n", "new chat"},
		{"ctrl+b", "toggle sidebar"},
		{"tab", "switch between input and sidebar"},
		{"esc", "select messages (e edit, d remove, r regenerate)"},
		{"/", "search chats (sidebar)"},
		{"pgup/pgdn", "scroll conversation"},
		{"ctrl+c", "quit"},
	}
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(m.theme.SidebarActive.Render(util.PadRight(r.k, 10)))
		b.WriteString(m.theme.Message.Render(r.v))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

