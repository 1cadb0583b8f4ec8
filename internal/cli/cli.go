// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdChat
	CmdSessions
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	ServerURL string // --server overrides the configured backend URL
	Quiet     bool
	Debug     bool

	// Raw args remaining after flag parsing
	Raw []string
}

const usageText = `anichat - terminal client for the AniChat backend

Usage:
  anichat                    Start the full-screen interface (default)
  anichat chat               Plain readline chat mode
  anichat sessions           List chat sessions and exit
  anichat version            Show version
  anichat help               Show this help

Flags:
  --server URL    Backend base URL (overrides config and ANICHAT_SERVER_URL)
  --debug         Write a debug log to the config directory
  -q, --quiet     Minimal output in chat mode

Chat mode commands:
  /new            Start a new chat
  /sessions       List chats
  /load <id>      Open a chat
  /delete <id>    Delete a chat
  /search <term>  Filter the chat list
  /quit           Exit

Configuration lives at ~/.anichat/config.toml.
`

// Usage prints the top-level help text.
func Usage() {
	fmt.Print(usageText)
}

// PrintVersion prints build information.
func PrintVersion() {
	fmt.Printf("anichat version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	return parseArgs(os.Args[1:])
}

func parseArgs(argv []string) (Command, Args) {
	var args Args
	var remaining []string

	for i := 0; i < len(argv); i++ {
		a := argv[i]
		switch {
		case a == "--server":
			if i+1 < len(argv) {
				i++
				args.ServerURL = argv[i]
			}
		case strings.HasPrefix(a, "--server="):
			args.ServerURL = strings.TrimPrefix(a, "--server=")
		case a == "--debug":
			args.Debug = true
		case a == "-q" || a == "--quiet":
			args.Quiet = true
		case a == "-h" || a == "--help":
			return CmdHelp, args
		case a == "-v" || a == "--version":
			return CmdVersion, args
		default:
			remaining = append(remaining, a)
		}
	}

	if len(remaining) == 0 {
		return CmdTUI, args
	}

	cmd := strings.ToLower(remaining[0])
	args.Raw = remaining[1:]

	switch cmd {
	case "tui":
		return CmdTUI, args
	case "chat", "repl":
		return CmdChat, args
	case "session", "sessions", "list":
		return CmdSessions, args
	case "version":
		return CmdVersion, args
	case "help":
		return CmdHelp, args
	default:
		fmt.Fprintf(os.Stderr, "anichat: unknown command %q\n\n", remaining[0])
		return CmdHelp, args
	}
}
