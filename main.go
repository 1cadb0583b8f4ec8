// anichat - a terminal client for the AniChat backend.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/anichat/anichat-tui/internal/cli"
	"github.com/anichat/anichat-tui/internal/config"
	"github.com/anichat/anichat-tui/internal/ui/chat"
	"github.com/anichat/anichat-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		if err := runTUI(args); err != nil {
			fmt.Fprintf(os.Stderr, "anichat: %v\n", err)
			os.Exit(1)
		}
	case cli.CmdChat:
		if err := cli.RunChat(args); err != nil {
			os.Exit(1)
		}
	case cli.CmdSessions:
		if err := cli.RunSessions(args); err != nil {
			fmt.Fprintf(os.Stderr, "anichat: %v\n", err)
			os.Exit(1)
		}
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.Usage()
	}
}

func runTUI(args cli.Args) error {
	if !cli.IsTTY() {
		return fmt.Errorf("standard input is not a terminal (try \"anichat chat\" for pipe-friendly mode)")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if args.ServerURL != "" {
		cfg.Server.URL = args.ServerURL
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if args.Debug {
		cfg.Debug.Enabled = true
	}

	if cfg.Debug.Enabled {
		f, err := tea.LogToFile(cfg.DebugLogPath(), "anichat")
		if err == nil {
			defer f.Close()
		}
	} else {
		// Bubble Tea owns the terminal; stray log output would tear
		// the screen.
		log.SetOutput(io.Discard)
	}

	styles.ApplyTheme(cfg.UI.Theme)

	ctrl := cli.BuildController(cfg)
	if cfg.Debug.Enabled {
		ctrl.Logf = log.Printf
	}
	m := chat.New(cfg, ctrl, styles.DefaultTheme())

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// Hot-reload: push config edits into the running program.
	watcher, err := config.Watch(config.Path(), func(next *config.Config) {
		p.Send(chat.ConfigReloaded(next.UI.SidebarWidth, next.UI.Theme))
	})
	if err == nil {
		defer watcher.Close()
	}

	_, err = p.Run()
	return err
}
