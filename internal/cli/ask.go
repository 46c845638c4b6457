// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question command for parley.
//
// "parley ask" runs a single turn and prints the reply: rendered
// markdown on a terminal, plain text when piped, raw fragments with
// --stream. One-shot turns are not written to history.

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/parley/internal/flow"
	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/provider"
)

// markdownRenderer renders assistant replies on a terminal. A nil
// renderer falls back to plain text.
var markdownRenderer *glamour.TermRenderer

func init() {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err == nil {
		markdownRenderer = r
	}
}

// displayResponse prints an assistant reply. Markdown rendering only
// happens on a TTY; piped output stays byte-clean for scripts.
func displayResponse(content string) {
	if markdownRenderer != nil && IsStdoutTTY() {
		if rendered, err := markdownRenderer.Render(content); err == nil {
			fmt.Print(rendered)
			return
		}
	}
	fmt.Println(content)
}

// HandleAsk handles the "ask" command.
func HandleAsk(args Args) error {
	if strings.TrimSpace(args.Query) == "" {
		return fmt.Errorf("no question given\nUsage: parley ask \"your question\"")
	}

	cfg := loadConfigOrDefault()
	creds, err := openCredentials(cfg)
	if err != nil {
		return err
	}

	pcfg, modelName, err := ResolveSelection(cfg, args)
	if err != nil {
		return err
	}

	conv := model.NewConversation(pcfg.Name, modelName)
	conv.SystemPrompt = cfg.SystemPrompt
	if args.System != "" {
		conv.SystemPrompt = args.System
	}

	// Streaming is opt-in for ask: the default collects the full reply
	// so it can be rendered as markdown.
	streaming := args.StreamSet && args.Stream

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		cancel()
	}()

	fl := flow.New(provider.NewFactory(), creds)
	start := time.Now()

	opts := flow.Options{Stream: streaming}
	if streaming {
		opts.OnFragment = func(fragment string) {
			fmt.Print(fragment)
		}
	}

	_, err = fl.Run(ctx, conv, args.Query, opts)
	if err != nil {
		// Terminate the partial stream line before the error report.
		if streaming && errors.Is(err, flow.ErrCancelled) {
			fmt.Println()
		}
		return err
	}

	reply := conv.LastAssistantMessage()
	if reply == nil {
		return fmt.Errorf("no reply received")
	}

	if streaming {
		fmt.Println()
	} else {
		displayResponse(reply.Content)
	}

	if !args.Quiet && IsStderrTTY() {
		elapsed := time.Since(start)
		fmt.Fprintln(os.Stderr, DimStyle.Render(fmt.Sprintf(
			"%s · ~%d tokens · %s",
			modelName, reply.EstimateTokens(), formatDurationShort(elapsed))))
	}

	return nil
}
