// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Plain-terminal chat mode.
//
// Handles "anichat chat": a readline loop against the same controller
// the TUI uses, for terminals where a full-screen interface is
// unwanted.
//
// Interactive commands (during chat):
//   /new            Start a new chat
//   /sessions       List chats
//   /load <id>      Open a chat
//   /delete <id>    Delete a chat
//   /search <term>  Filter the chat list (empty term clears)
//   /help, /h       Show available commands
//   /quit, /q       Exit
//   Ctrl+D          Exit
package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/anichat/anichat-tui/internal/api"
	"github.com/anichat/anichat-tui/internal/config"
	"github.com/anichat/anichat-tui/internal/controller"
	"github.com/anichat/anichat-tui/internal/directory"
	"github.com/anichat/anichat-tui/internal/markdown"
	"github.com/anichat/anichat-tui/internal/store"
	"github.com/anichat/anichat-tui/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Indigo).
			Bold(true)

	botStyle = lipgloss.NewStyle().
			Foreground(styles.Teal).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose)

	activeStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// lineReader wraps liner with a persisted history file.
type lineReader struct {
	line        *liner.State
	historyFile string
}

func newLineReader() *lineReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	r := &lineReader{
		line:        line,
		historyFile: filepath.Join(config.Dir(), "chat_history"),
	}
	if f, err := os.Open(r.historyFile); err == nil {
		r.line.ReadHistory(f)
		f.Close()
	}
	return r
}

// read reads a line, recording non-empty input in the history.
func (r *lineReader) read(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

func (r *lineReader) close() {
	if err := os.MkdirAll(config.Dir(), 0o700); err == nil {
		if f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
			r.line.WriteHistory(f)
			f.Close()
		}
	}
	r.line.Close()
}

// =============================================================================
// SESSION SETUP
// =============================================================================

// chatSession holds the state for a plain-terminal chat run.
type chatSession struct {
	cfg   *config.Config
	ctrl  *controller.Controller
	md    *markdown.Renderer
	input *lineReader
	quiet bool

	startTime time.Time
	exchanges int
}

// BuildController wires the client, store, and directory from config.
func BuildController(cfg *config.Config) *controller.Controller {
	client := api.NewClientWithConfig(&api.ClientConfig{
		BaseURL:        cfg.Server.URL,
		Timeout:        time.Duration(cfg.Server.TimeoutSecs) * time.Second,
		RequestsPerSec: cfg.Server.RequestsPerSec,
	})
	st := store.NewWithCap(cfg.UI.MaxMessagesPerSession)
	return controller.New(client, st, directory.New())
}

func loadConfig(args Args) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if args.ServerURL != "" {
		cfg.Server.URL = args.ServerURL
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	if args.Debug {
		cfg.Debug.Enabled = true
	}
	return cfg, nil
}

// =============================================================================
// CHAT MODE
// =============================================================================

// RunChat runs the plain-terminal chat loop.
func RunChat(args Args) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	ctrl := BuildController(cfg)
	if cfg.Debug.Enabled {
		ctrl.Logf = log.Printf
	}

	session := &chatSession{
		cfg:       cfg,
		ctrl:      ctrl,
		md:        markdown.NewRenderer(lipgloss.NewStyle().Foreground(styles.Amber)),
		input:     newLineReader(),
		quiet:     args.Quiet,
		startTime: time.Now(),
	}
	defer session.input.close()

	ctx := context.Background()

	if err := session.ctrl.CheckReachable(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(
			fmt.Sprintf("Cannot reach %s. Is the backend running?", cfg.Server.URL)))
		return err
	}
	if err := session.ctrl.RefreshDirectory(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Warning: could not fetch the chat list"))
	}

	if !session.quiet {
		fmt.Println(botStyle.Render("AniChat") + infoStyle.Render("  "+cfg.Server.URL))
		fmt.Println(infoStyle.Render("Type a message, /help for commands, /quit to exit."))
		fmt.Println()
	}

	for {
		input, err := session.input.read(promptStyle.Render("you> "))
		if err != nil {
			// Ctrl+C on the prompt or EOF (Ctrl+D): exit cleanly.
			fmt.Println()
			session.printExitSummary()
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			keepGoing, err := session.handleSlashCommand(ctx, input)
			if err != nil {
				fmt.Fprintln(os.Stderr, errorStyle.Render("[Error] ")+err.Error())
			}
			if !keepGoing {
				session.printExitSummary()
				return nil
			}
			continue
		}

		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			session.printExitSummary()
			return nil
		}

		session.sendMessage(ctx, input)
	}
}

// sendMessage posts one exchange and prints the reply.
func (s *chatSession) sendMessage(ctx context.Context, text string) {
	out, err := s.ctrl.Send(ctx, text)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("[Error] ")+err.Error())
		return
	}

	reply := ""
	if m := s.ctrl.Store().Get(out.BotRef); m != nil {
		reply = m.Content
	}

	fmt.Println()
	if IsStdoutTTY() && ColorEnabled() {
		fmt.Println(botStyle.Render("ani> ") + s.md.Render(reply))
	} else {
		fmt.Println("ani> " + markdown.PlainText(reply))
	}
	fmt.Println()

	if out.Degraded {
		fmt.Fprintln(os.Stderr, infoStyle.Render("(the backend did not answer; the reply above is a local notice)"))
	} else {
		s.exchanges++
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

func (s *chatSession) handleSlashCommand(ctx context.Context, input string) (bool, error) {
	fields := strings.Fields(input)
	cmd := strings.ToLower(fields[0])
	arg := strings.TrimSpace(strings.TrimPrefix(input, fields[0]))

	switch cmd {
	case "/quit", "/q", "/exit":
		return false, nil

	case "/help", "/h":
		s.printHelp()
		return true, nil

	case "/new", "/n":
		if err := s.ctrl.NewChat(ctx); err != nil {
			return true, err
		}
		fmt.Println(infoStyle.Render("Started a new chat."))
		return true, nil

	case "/sessions", "/list", "/ls":
		s.printSessions()
		return true, nil

	case "/load", "/open":
		if arg == "" {
			return true, fmt.Errorf("usage: /load <id>")
		}
		out, err := s.ctrl.Load(ctx, arg)
		if err != nil {
			return true, err
		}
		if out.NoOp {
			fmt.Println(infoStyle.Render("Already in that chat."))
			return true, nil
		}
		s.printTranscript()
		return true, nil

	case "/delete", "/rm":
		if arg == "" {
			return true, fmt.Errorf("usage: /delete <id>")
		}
		out, err := s.ctrl.Delete(ctx, arg)
		if err != nil {
			return true, err
		}
		fmt.Println(infoStyle.Render(fmt.Sprintf(
			"Deleted. Now in chat %s.", out.NewCurrentChatID)))
		return true, nil

	case "/search", "/find":
		s.ctrl.Search(arg)
		s.printSessions()
		return true, nil

	default:
		return true, fmt.Errorf("unknown command %s (try /help)", cmd)
	}
}

func (s *chatSession) printHelp() {
	rows := [][2]string{
		{"/new", "start a new chat"},
		{"/sessions", "list chats"},
		{"/load <id>", "open a chat"},
		{"/delete <id>", "delete a chat"},
		{"/search <term>", "filter the chat list (empty clears)"},
		{"/quit", "exit"},
	}
	for _, r := range rows {
		fmt.Printf("  %-16s %s\n", r[0], infoStyle.Render(r[1]))
	}
}

func (s *chatSession) printSessions() {
	visible := s.ctrl.Directory().Visible()
	if len(visible) == 0 {
		if s.ctrl.Directory().FilterTerm() != "" {
			fmt.Println(infoStyle.Render("No chats match."))
		} else {
			fmt.Println(infoStyle.Render("No chats yet."))
		}
		return
	}
	for _, e := range visible {
		marker := "  "
		line := fmt.Sprintf("%-8s %s", e.Session.ID, e.Session.DisplayTitle())
		if e.Active {
			marker = activeStyle.Render("* ")
			line = activeStyle.Render(line)
		}
		fmt.Println(marker + line)
	}
}

func (s *chatSession) printTranscript() {
	for _, m := range s.ctrl.Store().Messages() {
		label := botStyle.Render("ani> ")
		body := s.md.Render(m.Content)
		if m.IsUser() {
			label = promptStyle.Render("you> ")
			body = m.Content
		}
		fmt.Println(label + body)
	}
}

func (s *chatSession) printExitSummary() {
	if s.quiet {
		return
	}
	elapsed := time.Since(s.startTime).Round(time.Second)
	fmt.Println(infoStyle.Render(fmt.Sprintf(
		"%d exchanges in %s. Bye!", s.exchanges, elapsed)))
}

// =============================================================================
// SESSIONS COMMAND
// =============================================================================

// RunSessions prints the session list and exits.
func RunSessions(args Args) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	ctrl := BuildController(cfg)

	if err := ctrl.RefreshDirectory(context.Background()); err != nil {
		return fmt.Errorf("could not fetch the chat list: %w", err)
	}
	for _, e := range ctrl.Directory().Entries() {
		fmt.Printf("%-8s %s\n", e.Session.ID, e.Session.DisplayTitle())
	}
	return nil
}
