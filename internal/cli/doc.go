// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the plain-terminal
// chat mode for anichat.
//
// # Key Types
//
//   - Command: Enumeration of top-level commands
//   - Args: Parsed command-line arguments
//
// # Usage
//
//	cmd, args := cli.Parse()
//	switch cmd {
//	case cli.CmdTUI:
//	    // start the full-screen interface
//	case cli.CmdChat:
//	    return cli.RunChat(args)
//	}
//
// The chat mode is a readline-style loop for terminals (or scripts)
// where the full-screen interface is unwanted. It drives the same
// controller as the TUI, so session semantics are identical.
package cli
