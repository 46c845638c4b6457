// parley - A multi-provider LLM chat for the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/parley/internal/cli"
	"github.com/jeranaias/parley/internal/config"
	"github.com/jeranaias/parley/internal/credential"
	"github.com/jeranaias/parley/internal/flow"
	"github.com/jeranaias/parley/internal/provider"
	"github.com/jeranaias/parley/internal/session"
	"github.com/jeranaias/parley/internal/storage"
	"github.com/jeranaias/parley/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdAsk:
		cli.HandleErrorAndExit(cli.HandleAsk(args))
	case cli.CmdChat:
		cli.HandleErrorAndExit(cli.HandleChat(args))
	case cli.CmdKeys:
		cli.HandleErrorAndExit(cli.HandleKeys(args))
	case cli.CmdSessions:
		cli.HandleErrorAndExit(cli.HandleSessions(args))
	case cli.CmdProviders:
		cli.HandleErrorAndExit(cli.HandleProviders(args))
	case cli.CmdConfig:
		cli.HandleErrorAndExit(cli.HandleConfig(args))
	case cli.CmdVersion:
		cli.HandleErrorAndExit(cli.HandleVersion(args))
	case cli.CmdHelp:
		cli.HandleErrorAndExit(cli.HandleHelp())
	default:
		runTUI(args)
	}
}

// runTUI starts the full-screen chat interface.
func runTUI(args cli.Args) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		cfg = config.Default()
	}

	credsPath, err := cfg.CredentialsPath()
	if err != nil {
		cli.HandleErrorAndExit(err)
	}
	creds := credential.NewStore(credsPath)

	// History is best effort: a broken database disables persistence
	// for the run but never blocks the chat.
	var store *storage.Store
	if cfg.History.Enabled {
		historyPath, err := cfg.HistoryPath()
		if err == nil {
			store, err = storage.Open(historyPath)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (history off)\n", err)
			store = nil
		}
	}

	factory := provider.NewFactory()
	fl := flow.New(factory, creds)
	manager := session.NewManager(factory, fl, store)

	pcfg, modelName, err := cli.ResolveSelection(cfg, args)
	if err != nil {
		cli.HandleErrorAndExit(err)
	}

	sess, err := manager.Create(pcfg.Name, modelName)
	if err != nil {
		cli.HandleErrorAndExit(err)
	}

	prompt := cfg.SystemPrompt
	if args.System != "" {
		prompt = args.System
	}
	if prompt != "" {
		if err := sess.SetSystemPrompt(prompt); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	streaming := cfg.Chat.Stream
	if args.StreamSet {
		streaming = args.Stream
	}
	sess.SetStreaming(streaming)

	m := chat.New(manager, creds, cfg, Version)

	p := tea.NewProgram(m, tea.WithAltScreen())
	m.SetProgram(p)

	// Pick up key edits made in another terminal while the TUI runs.
	if cfg.Credentials.Watch {
		watcher, err := credential.NewWatcher(creds, func() {
			p.Send(chat.CredentialsReloadedMsg{})
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: credential watch unavailable: %v\n", err)
		} else if err := watcher.Watch(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: credential watch unavailable: %v\n", err)
		} else {
			defer watcher.Close()
		}
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running parley: %v\n", err)
		os.Exit(1)
	}

	if err := manager.SaveDirty(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not save session: %v\n", err)
	}
	if store != nil {
		store.Close()
	}
}
