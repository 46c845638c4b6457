// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive line-mode chat for parley.
//
// "parley chat" is the REPL alternative to the TUI: liner-backed input
// with history, slash commands for session control, and Ctrl+C to stop
// a reply without leaving the session.

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/jeranaias/parley/internal/config"
	"github.com/jeranaias/parley/internal/credential"
	"github.com/jeranaias/parley/internal/flow"
	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/provider"
	"github.com/jeranaias/parley/internal/session"
	"github.com/jeranaias/parley/internal/ui/styles"
	"github.com/jeranaias/parley/internal/util"
)

// =============================================================================
// CHAT STYLES
// =============================================================================

var (
	chatPromptStyle  = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	chatWelcomeStyle = lipgloss.NewStyle().Foreground(styles.Purple).Bold(true)
	chatInfoStyle    = lipgloss.NewStyle().Foreground(styles.TextSecondary)
	chatCommandStyle = lipgloss.NewStyle().Foreground(styles.Emerald)
)

// =============================================================================
// LINE EDITOR
// =============================================================================

// ChatCLI wraps liner with persistent input history.
type ChatCLI struct {
	line        *liner.State
	historyPath string
}

// NewChatCLI creates the line editor and loads prior input history.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	historyPath := ""
	if dir, err := config.ConfigDir(); err == nil {
		historyPath = filepath.Join(dir, "chat_history")
	}

	c := &ChatCLI{line: line, historyPath: historyPath}
	c.LoadHistory()
	return c
}

// LoadHistory reads saved input history if present.
func (c *ChatCLI) LoadHistory() {
	if c.historyPath == "" {
		return
	}
	if f, err := os.Open(c.historyPath); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads one line with the given prompt. Non-blank lines are
// appended to history.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory writes input history to disk.
// SECURITY: 0600, same as every other file under the config dir.
func (c *ChatCLI) SaveHistory() {
	if c.historyPath == "" {
		return
	}
	f, err := os.OpenFile(c.historyPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// CHAT SESSION STATE
// =============================================================================

// chatState carries everything the REPL needs between turns.
type chatState struct {
	cfg     *config.Config
	creds   *credential.Store
	manager *session.Manager
	sess    *session.ChatSession
	quiet   bool

	queries    int
	tokensUsed int
	started    time.Time
}

// =============================================================================
// CHAT COMMAND HANDLER
// =============================================================================

// HandleChat handles the "chat" command: a line-mode REPL against the
// active provider.
func HandleChat(args Args) error {
	cfg := loadConfigOrDefault()
	creds, err := openCredentials(cfg)
	if err != nil {
		return err
	}

	factory := provider.NewFactory()
	fl := flow.New(factory, creds)

	// History is best-effort for the REPL: a broken store means no
	// persistence, not no chat.
	store, storeErr := openHistoryIfEnabled(cfg)
	if storeErr != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: "+storeErr.Error()+" (history off)"))
	}
	if store != nil {
		defer store.Close()
	}

	manager := session.NewManager(factory, fl, store)

	pcfg, modelName, err := ResolveSelection(cfg, args)
	if err != nil {
		return err
	}

	sess, err := manager.Create(pcfg.Name, modelName)
	if err != nil {
		return err
	}

	systemPrompt := cfg.SystemPrompt
	if args.System != "" {
		systemPrompt = args.System
	}
	if systemPrompt != "" {
		sess.SetSystemPrompt(systemPrompt)
	}

	streaming := cfg.Chat.Stream
	if args.StreamSet {
		streaming = args.Stream
	}
	sess.SetStreaming(streaming)

	st := &chatState{
		cfg:     cfg,
		creds:   creds,
		manager: manager,
		sess:    sess,
		quiet:   args.Quiet,
		started: time.Now(),
	}

	inputCLI := NewChatCLI()
	defer inputCLI.Close()

	// Ctrl+C during generation stops the reply. At the prompt, liner
	// owns the terminal and reports ErrPromptAborted instead.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		for range sigCh {
			sess.CancelTurn()
		}
	}()

	printWelcome(st, store != nil)

	for {
		input, err := inputCLI.ReadInput(chatPromptStyle.Render("you> "))
		if err != nil {
			// Ctrl+C or Ctrl+D at the prompt ends the session.
			fmt.Println()
			break
		}

		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}

		if strings.EqualFold(trimmed, "exit") || strings.EqualFold(trimmed, "quit") {
			break
		}

		if strings.HasPrefix(trimmed, "/") {
			quit, err := handleSlashCommand(trimmed, st)
			if err != nil {
				DisplayError(err)
			}
			if quit {
				break
			}
			continue
		}

		processTurn(st, trimmed)
	}

	if err := manager.SaveDirty(); err != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: history save failed: "+err.Error()))
	}

	printExitSummary(st)
	return nil
}

// =============================================================================
// TURN PROCESSING
// =============================================================================

// processTurn runs one user turn. Errors are displayed, never fatal:
// a failed turn leaves an error entry in the conversation and the REPL
// moves on.
func processTurn(st *chatState, input string) {
	streaming := st.sess.Streaming()

	var frag func(string)
	if streaming {
		frag = func(fragment string) {
			fmt.Print(fragment)
		}
	}

	start := time.Now()
	err := st.sess.Submit(context.Background(), input, frag)
	if err != nil {
		if errors.Is(err, flow.ErrCancelled) {
			fmt.Println()
			fmt.Println(WarningStyle.Render("[Stopped]"))
			return
		}
		if streaming {
			fmt.Println()
		}
		DisplayError(err)
		if errors.Is(err, provider.ErrMissingCredential) {
			name, _ := st.sess.Selection()
			fmt.Println(DimStyle.Render("Hint: parley keys set " + strings.ToLower(name)))
		}
		return
	}

	reply := st.sess.Conversation().LastAssistantMessage()
	if reply == nil {
		return
	}

	if streaming {
		fmt.Println()
	} else {
		displayResponse(reply.Content)
	}

	st.queries++
	st.tokensUsed += reply.EstimateTokens()

	if !st.quiet && IsStderrTTY() {
		fmt.Fprintln(os.Stderr, DimStyle.Render(fmt.Sprintf(
			"~%d tokens · %s", reply.EstimateTokens(), formatDurationShort(time.Since(start)))))
	}

	if err := st.manager.SaveDirty(); err != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: history save failed: "+err.Error()))
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand dispatches a /command line. Returns true when the
// REPL should exit.
func handleSlashCommand(input string, st *chatState) (bool, error) {
	fields := strings.Fields(input)
	command := strings.ToLower(fields[0])

	switch command {
	case "/help", "/h", "/?":
		printChatHelp()

	case "/provider", "/p":
		if len(fields) < 2 {
			printProviderList(st)
			return false, nil
		}
		return false, switchProvider(st, fields[1])

	case "/model", "/m":
		if len(fields) < 2 {
			printModelList(st)
			return false, nil
		}
		return false, switchModel(st, fields[1])

	case "/stream":
		if len(fields) < 2 {
			fmt.Println(chatInfoStyle.Render("Streaming is " + onOff(st.sess.Streaming())))
			return false, nil
		}
		on, err := ParseBoolString(fields[1])
		if err != nil {
			return false, err
		}
		st.sess.SetStreaming(on)
		fmt.Println(chatInfoStyle.Render("Streaming " + onOff(on)))

	case "/system":
		rest := strings.TrimSpace(strings.TrimPrefix(input, fields[0]))
		if rest == "" {
			current := st.sess.Conversation().SystemPrompt
			if current == "" {
				current = "(none)"
			}
			fmt.Println(chatInfoStyle.Render("System prompt: ") + current)
			return false, nil
		}
		if err := st.sess.SetSystemPrompt(rest); err != nil {
			return false, err
		}
		fmt.Println(chatInfoStyle.Render("System prompt updated."))

	case "/clear":
		if err := st.sess.Clear(); err != nil {
			return false, err
		}
		fmt.Println(chatInfoStyle.Render("Conversation cleared."))

	case "/history":
		query := strings.TrimSpace(strings.TrimPrefix(input, fields[0]))
		return false, printStoredConversations(st, query)

	case "/status":
		printChatStatus(st)

	case "/quit", "/exit", "/q":
		return true, nil

	default:
		return false, fmt.Errorf("unknown command: %s (try /help)", command)
	}

	return false, nil
}

// switchProvider folds case, switches, and nudges about a missing key.
func switchProvider(st *chatState, name string) error {
	pcfg, err := resolveProviderArg(name)
	if err != nil {
		return err
	}
	if err := st.sess.SwitchProvider(pcfg.Name); err != nil {
		return err
	}

	_, modelName := st.sess.Selection()
	fmt.Println(chatInfoStyle.Render(fmt.Sprintf("Provider: %s · %s", pcfg.Name, modelName)))

	if _, ok := st.creds.Get(pcfg.CredentialKey); !ok {
		fmt.Println(WarningStyle.Render(fmt.Sprintf(
			"No %s set. Run: parley keys set %s", pcfg.CredentialKey, strings.ToLower(pcfg.Name))))
	}
	return nil
}

// switchModel switches within the active provider. Model ids are exact.
func switchModel(st *chatState, name string) error {
	if err := st.sess.SwitchModel(name); err != nil {
		return err
	}
	_, modelName := st.sess.Selection()
	fmt.Println(chatInfoStyle.Render("Model: " + modelName))
	return nil
}

// printProviderList shows all providers with key status.
func printProviderList(st *chatState) {
	active, _ := st.sess.Selection()
	fmt.Println()
	for _, pcfg := range provider.List() {
		marker := "  "
		if pcfg.Name == active {
			marker = chatCommandStyle.Render("> ")
		}
		keyNote := ""
		if _, ok := st.creds.Get(pcfg.CredentialKey); !ok {
			keyNote = DimStyle.Render("  (no key)")
		}
		fmt.Printf("%s%-12s %d models%s\n", marker, pcfg.Name, len(pcfg.Models), keyNote)
	}
	fmt.Println()
	fmt.Println(DimStyle.Render("Switch with /provider <name>"))
}

// printModelList shows the active provider's models.
func printModelList(st *chatState) {
	providerName, activeModel := st.sess.Selection()
	pcfg, err := provider.Get(providerName)
	if err != nil {
		DisplayError(err)
		return
	}

	fmt.Println()
	for i, m := range pcfg.Models {
		marker := "  "
		if m == activeModel {
			marker = chatCommandStyle.Render("> ")
		}
		note := ""
		if i == 0 {
			note = DimStyle.Render("  (default)")
		}
		fmt.Printf("%s%s%s\n", marker, m, note)
	}
	fmt.Println()
	fmt.Println(DimStyle.Render("Switch with /model <name>"))
}

// printStoredConversations lists saved conversations, newest first.
func printStoredConversations(st *chatState, query string) error {
	var (
		metas []model.ConversationMeta
		err   error
	)
	if query != "" {
		metas, err = st.manager.SearchStored(query)
	} else {
		metas, err = st.manager.Stored()
	}
	if err != nil {
		return err
	}

	if len(metas) == 0 {
		fmt.Println(chatInfoStyle.Render("No saved conversations."))
		return nil
	}

	fmt.Println()
	fmt.Printf("%-4s %-32s %-14s %-6s %s\n", "#", "Title", "Model", "Msgs", "Updated")
	fmt.Println(SeparatorStyle.Render(strings.Repeat("─", 72)))
	for i, meta := range metas {
		title := meta.Title
		if title == "" {
			title = "Untitled"
		}
		// UNICODE: rune-aware truncation keeps multi-byte titles intact
		title = util.TruncateRunes(title, 30)
		fmt.Printf("%-4d %-32s %-14s %-6d %s\n",
			i+1, title, util.TruncateRunes(meta.Model, 12), meta.MessageCount, formatTimeAgo(meta.UpdatedAt))
	}
	fmt.Println()
	fmt.Println(DimStyle.Render("Resume from the TUI session picker (Ctrl+R) or export with: parley sessions export <#>"))
	return nil
}

// =============================================================================
// DISPLAY
// =============================================================================

// printWelcome shows the session banner.
func printWelcome(st *chatState, historyOn bool) {
	providerName, modelName := st.sess.Selection()

	fmt.Println()
	fmt.Println(chatWelcomeStyle.Render("parley chat"))
	fmt.Println(SeparatorStyle.Render(strings.Repeat("─", 30)))
	fmt.Printf("%s %s\n", chatInfoStyle.Render("Provider: "), providerName)
	fmt.Printf("%s %s\n", chatInfoStyle.Render("Model:    "), modelName)
	fmt.Printf("%s %s\n", chatInfoStyle.Render("Streaming:"), onOff(st.sess.Streaming()))
	fmt.Printf("%s %s\n", chatInfoStyle.Render("History:  "), onOff(historyOn))

	pcfg, err := provider.Get(providerName)
	if err == nil {
		if _, ok := st.creds.Get(pcfg.CredentialKey); !ok {
			fmt.Println()
			fmt.Println(WarningStyle.Render(fmt.Sprintf(
				"No %s set. Run: parley keys set %s", pcfg.CredentialKey, strings.ToLower(pcfg.Name))))
		}
	}

	fmt.Println()
	fmt.Println(DimStyle.Render("Type /help for commands, /quit to exit."))
	fmt.Println()
}

// printChatHelp lists REPL commands.
func printChatHelp() {
	fmt.Println()
	fmt.Println(chatWelcomeStyle.Render("Commands"))
	fmt.Println(SeparatorStyle.Render(strings.Repeat("─", 30)))

	commands := [][2]string{
		{"/provider [name]", "Show providers or switch"},
		{"/model [name]", "Show models or switch"},
		{"/stream [on|off]", "Show or toggle streaming"},
		{"/system [prompt]", "Show or set the system prompt"},
		{"/clear", "Clear the conversation"},
		{"/history [query]", "List saved conversations"},
		{"/status", "Show session status"},
		{"/help", "Show this help"},
		{"/quit", "Exit"},
	}
	for _, cmd := range commands {
		fmt.Printf("  %s %s\n", chatCommandStyle.Render(fmt.Sprintf("%-18s", cmd[0])), cmd[1])
	}
	fmt.Println()
}

// printChatStatus shows the live session state.
func printChatStatus(st *chatState) {
	providerName, modelName := st.sess.Selection()
	conv := st.sess.Conversation()

	systemPrompt := conv.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = "(none)"
	}

	fmt.Println()
	fmt.Printf("%s %s\n", chatInfoStyle.Render("Provider: "), providerName)
	fmt.Printf("%s %s\n", chatInfoStyle.Render("Model:    "), modelName)
	fmt.Printf("%s %s\n", chatInfoStyle.Render("Streaming:"), onOff(st.sess.Streaming()))
	fmt.Printf("%s %d\n", chatInfoStyle.Render("Messages: "), len(conv.Messages))
	fmt.Printf("%s %s\n", chatInfoStyle.Render("System:   "), util.TruncateRunes(systemPrompt, 60))
	fmt.Println()
}

// printExitSummary prints usage stats for the session.
func printExitSummary(st *chatState) {
	if st.queries == 0 {
		fmt.Println("Goodbye!")
		return
	}

	fmt.Println()
	fmt.Println(chatInfoStyle.Render("Session summary"))
	fmt.Printf("  Queries:  %d\n", st.queries)
	fmt.Printf("  Tokens:   ~%d\n", st.tokensUsed)
	fmt.Printf("  Duration: %s\n", formatDurationShort(time.Since(st.started)))
	fmt.Println()
	fmt.Println("Goodbye!")
}

// onOff renders a boolean as on/off.
func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
