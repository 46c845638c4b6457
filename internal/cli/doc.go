// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line interface parsing and execution for parley.
//
// The package covers everything that is not the full-screen TUI: one-shot
// queries, the line-mode chat REPL, and the management commands for keys,
// saved conversations, providers, and configuration.
//
// # Key Types
//
//   - Command: Enumeration of all available CLI commands
//   - Args: Parsed command-line arguments with global and command-specific flags
//   - ArgParser: Unified flag/positional parsing shared by subcommand handlers
//
// # Usage
//
// Parse and execute commands:
//
//	cmd, args := cli.Parse()
//	switch cmd {
//	case cli.CmdAsk:
//	    err = cli.HandleAsk(args)
//	case cli.CmdChat:
//	    err = cli.HandleChat(args)
//	// ... other commands
//	}
//
// # Commands Overview
//
//   - ask: Single question, answer printed to stdout
//   - chat: Interactive line-mode chat session
//   - keys: API key management (list, set, rm)
//   - sessions: Saved conversation management (list, show, export, rm)
//   - providers: Provider and model listing with key status
//   - config: Configuration management (show, get, set, path)
//
// Running the binary with no command starts the TUI; that path lives in
// package main, not here.
//
// SECURITY: No command in this package ever prints an API key. Key status
// is shown as a length plus SHA-256 fingerprint mask, and key entry goes
// through a hidden terminal prompt.
package cli
