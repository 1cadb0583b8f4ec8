// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// THEME
// =============================================================================

// Theme bundles the styles the chat screen renders with.
type Theme struct {
	// Conversation
	UserLabel  lipgloss.Style
	BotLabel   lipgloss.Style
	Message    lipgloss.Style
	CodeSpan   lipgloss.Style
	Typing     lipgloss.Style
	InlineNote lipgloss.Style

	// Sidebar
	SidebarBorder  lipgloss.Style
	SidebarTitle   lipgloss.Style
	SidebarItem    lipgloss.Style
	SidebarActive  lipgloss.Style
	SidebarCursor  lipgloss.Style
	SidebarEmpty   lipgloss.Style
	SidebarFilter  lipgloss.Style

	// Chrome
	StatusBar  lipgloss.Style
	StatusErr  lipgloss.Style
	InputFrame lipgloss.Style
	Help       lipgloss.Style

	// Overlays
	OverlayBox    lipgloss.Style
	OverlayTitle  lipgloss.Style
	OverlayDanger lipgloss.Style
}

// DefaultTheme builds the standard theme.
func DefaultTheme() *Theme {
	return &Theme{
		UserLabel:  lipgloss.NewStyle().Foreground(Teal).Bold(true),
		BotLabel:   lipgloss.NewStyle().Foreground(Indigo).Bold(true),
		Message:    lipgloss.NewStyle().Foreground(TextPrimary),
		CodeSpan:   lipgloss.NewStyle().Background(CodeBg).Foreground(TextPrimary),
		Typing:     lipgloss.NewStyle().Foreground(TextMuted).Italic(true),
		InlineNote: lipgloss.NewStyle().Foreground(TextMuted).Italic(true),

		SidebarBorder: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(Overlay),
		SidebarTitle:  lipgloss.NewStyle().Foreground(TextSecondary).Bold(true),
		SidebarItem:   lipgloss.NewStyle().Foreground(TextSecondary),
		SidebarActive: lipgloss.NewStyle().Foreground(Indigo).Bold(true),
		SidebarCursor: lipgloss.NewStyle().Background(SurfaceBright),
		SidebarEmpty:  lipgloss.NewStyle().Foreground(TextMuted).Italic(true),
		SidebarFilter: lipgloss.NewStyle().Foreground(Amber),

		StatusBar: lipgloss.NewStyle().Foreground(TextMuted),
		StatusErr: lipgloss.NewStyle().Foreground(Rose),
		InputFrame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Overlay),
		Help: lipgloss.NewStyle().Foreground(TextMuted),

		OverlayBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Indigo).
			Padding(1, 2),
		OverlayTitle:  lipgloss.NewStyle().Bold(true).Foreground(TextPrimary),
		OverlayDanger: lipgloss.NewStyle().Bold(true).Foreground(Rose),
	}
}
