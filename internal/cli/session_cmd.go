// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// session_cmd.go - Saved conversation management for parley.
//
// Command: sessions
//
// Subcommands:
//   list [query]               List saved conversations, newest first
//   show <id|#>                Print a conversation transcript
//   export <id|#> [--format]   Export as markdown or JSON to stdout
//   rm <id|#> --confirm        Delete a conversation
//
// Conversations are addressed either by their full ID or by the 1-based
// index shown in "sessions list".

package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/storage"
	"github.com/jeranaias/parley/internal/util"
)

// HandleSessions handles the "sessions" command and its subcommands.
func HandleSessions(args Args) error {
	cfg := loadConfigOrDefault()
	store, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	switch args.Subcommand {
	case "", "list", "ls":
		return handleSessionsList(store, args)
	case "show", "view":
		return handleSessionsShow(store, args.SessionID)
	case "export":
		return handleSessionsExport(store, args.SessionID, args.Format)
	case "rm", "remove", "delete":
		return handleSessionsRemove(store, args.SessionID, args.Confirm)
	default:
		return fmt.Errorf("unknown sessions subcommand: %s (try: list, show, export, rm)", args.Subcommand)
	}
}

// handleSessionsList prints saved conversations, optionally filtered.
func handleSessionsList(store *storage.Store, args Args) error {
	var (
		metas []model.ConversationMeta
		err   error
	)
	if args.Query != "" {
		metas, err = store.Search(args.Query)
	} else {
		metas, err = store.List()
	}
	if err != nil {
		return err
	}

	if args.JSON {
		return outputJSON(metas)
	}

	if len(metas) == 0 {
		if args.Query != "" {
			fmt.Printf("No conversations match %q.\n", args.Query)
		} else {
			fmt.Println("No saved conversations yet. Chat turns are saved automatically.")
		}
		return nil
	}

	fmt.Println()
	fmt.Println(TitleStyle.Render("Saved Conversations"))
	fmt.Println(RenderSeparator())
	fmt.Printf("%-4s %-32s %-14s %-6s %s\n", "#", "Title", "Model", "Msgs", "Updated")
	for i, meta := range metas {
		// UNICODE: rune-aware truncation keeps multi-byte titles intact.
		title := util.TruncateRunes(meta.Title, 30)
		fmt.Printf("%-4d %-32s %-14s %-6d %s\n",
			i+1, title, util.TruncateRunes(meta.Model, 14),
			meta.MessageCount, formatTimeAgo(meta.UpdatedAt))
	}
	fmt.Println()
	fmt.Println(DimStyle.Render("Show one with: parley sessions show <#>"))
	return nil
}

// handleSessionsShow prints the full transcript of one conversation.
func handleSessionsShow(store *storage.Store, target string) error {
	conv, err := loadByIDOrIndex(store, target)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(TitleStyle.Render(conv.Title))
	fmt.Println(RenderSeparator())
	fmt.Println(DimStyle.Render(fmt.Sprintf("%s · %s · %d messages · started %s",
		conv.Provider, conv.Model, len(conv.Messages), formatTimeAgo(conv.CreatedAt))))
	if conv.SystemPrompt != "" {
		fmt.Println(DimStyle.Render("system: " + util.TruncateRunes(conv.SystemPrompt, 70)))
	}

	for _, msg := range conv.Messages {
		fmt.Println()
		fmt.Printf("%s %s\n", formatRole(msg.Role),
			DimStyle.Render(msg.Timestamp.Format("2006-01-02 15:04")))
		fmt.Println(msg.Content)
	}
	fmt.Println()
	return nil
}

// handleSessionsExport writes a conversation to stdout in the requested
// format. Output is plain so it can be redirected to a file.
func handleSessionsExport(store *storage.Store, target, format string) error {
	conv, err := loadByIDOrIndex(store, target)
	if err != nil {
		return err
	}

	switch strings.ToLower(format) {
	case "md", "markdown":
		fmt.Print(storage.ExportMarkdown(conv))
	case "json":
		data, err := storage.ExportJSON(conv)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		os.Stdout.Write(data)
		fmt.Println()
	default:
		return fmt.Errorf("unknown export format: %s (use md or json)", format)
	}
	return nil
}

// handleSessionsRemove deletes a conversation, gated on --confirm.
func handleSessionsRemove(store *storage.Store, target string, confirm bool) error {
	conv, err := loadByIDOrIndex(store, target)
	if err != nil {
		return err
	}

	if !confirm {
		fmt.Printf("%s This permanently deletes %q (%d messages).\n",
			WarningStyle.Render("[!]"), conv.Title, len(conv.Messages))
		fmt.Println("Re-run with --confirm to proceed.")
		return nil
	}

	if err := store.Delete(conv.ID); err != nil {
		return err
	}
	fmt.Printf("%s Deleted %q.\n", SuccessStyle.Render("[OK]"), conv.Title)
	return nil
}

// loadByIDOrIndex resolves a conversation by full ID or by the 1-based
// index from "sessions list".
func loadByIDOrIndex(store *storage.Store, target string) (*model.Conversation, error) {
	if target == "" {
		return nil, fmt.Errorf("missing session ID (see: parley sessions list)")
	}

	if idx, err := strconv.Atoi(target); err == nil {
		metas, err := store.List()
		if err != nil {
			return nil, err
		}
		if idx < 1 || idx > len(metas) {
			return nil, fmt.Errorf("%w: index %d out of range (1-%d)",
				storage.ErrSessionNotFound, idx, len(metas))
		}
		return store.Load(metas[idx-1].ID)
	}

	return store.Load(target)
}

// formatRole renders a role label for transcript output.
func formatRole(role model.Role) string {
	switch role {
	case model.RoleUser:
		return TitleStyle.Render("[you]")
	case model.RoleAssistant:
		return HighlightStyle.Render("[assistant]")
	case model.RoleSystem:
		return WarningStyle.Render("[system]")
	case model.RoleError:
		return ErrorStyle.Render("[error]")
	default:
		return fmt.Sprintf("[%s]", role)
	}
}
