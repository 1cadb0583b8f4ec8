// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/anichat/anichat-tui/internal/config"
	"github.com/anichat/anichat-tui/internal/controller"
	"github.com/anichat/anichat-tui/internal/markdown"
	"github.com/anichat/anichat-tui/internal/ui/styles"
)

// =============================================================================
// FOCUS AND OVERLAYS
// =============================================================================

// focusArea identifies which pane receives key input.
type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
	focusMessages
)

// overlayKind identifies the active modal overlay, if any.
type overlayKind int

const (
	overlayNone overlayKind = iota
	overlayConfirmNew
	overlayConfirmDelete
	overlayEdit
	overlayHelp
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the chat screen. It owns the rendered window, the session
// sidebar, the composer, and the modal overlays; all backend work is
// delegated to the controller through commands.
type Model struct {
	cfg   *config.Config
	keys  KeyMap
	theme *styles.Theme
	md    *markdown.Renderer

	ctrl *controller.Controller

	viewport viewport.Model
	input    textinput.Model
	search   textinput.Model
	edit     textinput.Model
	spin     spinner.Model

	width  int
	height int
	ready  bool

	focus         focusArea
	sidebarOpen   bool
	sidebarWidth  int
	sidebarCursor int
	searching     bool

	// msgCursor indexes into the rendered message slice when the
	// conversation pane has focus.
	msgCursor int

	overlay   overlayKind
	deleteID  string
	deleteTtl string
	editRef   string

	// regenRef marks the message whose content is being regenerated;
	// the view shows a spinner in its place until the swap lands.
	regenRef string

	status    string
	statusErr bool
	statusSeq int

	// follow keeps the viewport pinned to the newest message until the
	// user scrolls away.
	follow bool

	quitting bool
}

// New builds the chat screen around an initialized controller.
func New(cfg *config.Config, ctrl *controller.Controller, theme *styles.Theme) Model {
	in := textinput.New()
	in.Placeholder = "Type a message..."
	in.Prompt = "> "
	in.CharLimit = 4000
	in.Focus()

	se := textinput.New()
	se.Placeholder = "Search chats..."
	se.Prompt = "/ "
	se.CharLimit = 200

	ed := textinput.New()
	ed.Prompt = "> "
	ed.CharLimit = 4000

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Typing

	return Model{
		cfg:          cfg,
		keys:         DefaultKeyMap(),
		theme:        theme,
		md:           markdown.NewRenderer(theme.CodeSpan),
		ctrl:         ctrl,
		input:        in,
		search:       se,
		edit:         ed,
		spin:         sp,
		sidebarOpen:  cfg.UI.SidebarOpen,
		sidebarWidth: cfg.UI.SidebarWidth,
		follow:       true,
	}
}

// Init probes the backend and fetches the session directory.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.checkReachableCmd(),
		m.refreshDirectoryCmd(),
	)
}

// busy reports whether a controller operation is in flight.
func (m Model) busy() bool {
	return m.ctrl.Busy()
}
