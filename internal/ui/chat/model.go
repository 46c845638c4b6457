// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/parley/internal/config"
	"github.com/jeranaias/parley/internal/credential"
	"github.com/jeranaias/parley/internal/flow"
	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/provider"
	"github.com/jeranaias/parley/internal/session"
	"github.com/jeranaias/parley/internal/ui/components"
	"github.com/jeranaias/parley/internal/ui/styles"
)

// inputCharLimit caps a single message. Large pastes still fit; the
// counter in the input area warns as it fills.
const inputCharLimit = 4000

// Picker identifiers, echoed back in PickerSelectedMsg.
const (
	pickerProviders = "provider"
	pickerModels    = "model"
	pickerSessions  = "session"
)

// =============================================================================
// PROGRAM HANDLE
// =============================================================================

// programHandle lets turn goroutines reach program.Send after
// tea.NewProgram has copied the model value. Main sets it once before
// Run; every copy of the Model shares the same handle.
type programHandle struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

func (h *programHandle) emit(msg tea.Msg) {
	h.mu.Lock()
	send := h.send
	h.mu.Unlock()
	if send != nil {
		send(msg)
	}
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the interactive chat screen. One
// Model drives one terminal; sessions behind it come and go through the
// manager.
type Model struct {
	manager *session.Manager
	creds   *credential.Store
	cfg     *config.Config
	theme   *styles.Theme
	keys    KeyMap
	version string

	handle *programHandle

	width  int
	height int
	ready  bool

	viewport  viewport.Model
	input     textinput.Model
	list      *components.MessageList
	status    *components.StatusBar
	spin      components.Spinner
	welcome   components.Welcome
	providers *components.Picker
	models    *components.Picker
	sessions  *components.Picker
	keyPrompt *components.KeyPrompt

	showWelcome bool
	showHelp    bool
	quitting    bool

	// notice is a transient line above the input, cleared on the next
	// keypress. Used for outcomes that deserve a word but not a bubble.
	notice    string
	noticeErr bool

	// Live turn state. The flow goroutine owns the conversation between
	// submit and TurnDoneMsg, so the view renders transcript (the
	// quiescent snapshot taken at submit) plus the two UI-owned bubbles.
	turnSeq      int
	turnLive     bool
	transcript   []*model.Message
	pendingUser  *model.Message
	pendingReply *model.Message
	buffer       *StreamBuffer
	turnStart    time.Time
	firstFrag    time.Time

	markdown      components.MarkdownRenderer
	markdownWidth int
}

// New constructs the chat screen around the manager's sessions. The
// caller is expected to have opened or resumed a session already;
// without one the screen still runs but submits go nowhere.
func New(manager *session.Manager, creds *credential.Store, cfg *config.Config, version string) Model {
	theme := styles.NewTheme(cfg.UI.Theme)

	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "Type a message..."
	input.CharLimit = inputCharLimit
	input.Focus()

	m := Model{
		manager:   manager,
		creds:     creds,
		cfg:       cfg,
		theme:     theme,
		keys:      DefaultKeyMap(),
		version:   version,
		handle:    &programHandle{},
		input:     input,
		list:      components.NewMessageList(theme),
		status:    components.NewStatusBar(theme),
		spin:      components.NewThinkingSpinner(),
		welcome:   components.NewWelcome(theme),
		providers: components.NewPicker(pickerProviders, "Switch Provider", theme),
		models:    components.NewPicker(pickerModels, "Switch Model", theme),
		sessions:  components.NewPicker(pickerSessions, "Resume Session", theme),
		keyPrompt: components.NewKeyPrompt(theme),
		buffer:    NewStreamBuffer(),

		showWelcome: true,
	}

	m.list.ShowStats = cfg.UI.ShowStats
	m.list.ShowTimestamps = !cfg.UI.CompactMode
	m.welcome.SetVersion(version)
	m.welcome.SetHistoryOn(cfg.History.Enabled)
	m.syncChrome()
	return m
}

// SetProgram wires the turn goroutines to the event loop. Call after
// tea.NewProgram and before Run.
func (m Model) SetProgram(p *tea.Program) {
	m.handle.mu.Lock()
	m.handle.send = p.Send
	m.handle.mu.Unlock()
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// =============================================================================
// UPDATE
// =============================================================================

// Update routes messages to the focused surface.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)

	case StreamFragmentMsg:
		return m.handleFragment(msg)
	case StreamTickMsg:
		return m.handleStreamTick()
	case TurnDoneMsg:
		return m.handleTurnDone(msg)

	case components.PickerSelectedMsg:
		return m.handlePickerSelected(msg)
	case components.PickerDismissedMsg:
		return m, m.input.Focus()
	case components.KeyPromptSubmittedMsg:
		return m.handleKeySubmitted(msg)
	case components.KeyPromptDismissedMsg:
		return m, m.input.Focus()

	case CredentialsReloadedMsg:
		m.syncChrome()
		m.setNotice("Credentials reloaded", false)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleResize recomputes the fixed layout. The viewport gets whatever
// the header, input area, and status line leave over.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	chatHeight := msg.Height - headerHeight - inputAreaHeight - statusBarHeight
	if chatHeight < 3 {
		chatHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(msg.Width, chatHeight)
		m.ready = true
	} else {
		m.viewport.Width = msg.Width
		m.viewport.Height = chatHeight
	}

	inputWidth := msg.Width - 6
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.input.Width = inputWidth

	m.list.SetWidth(msg.Width - 4)
	m.status.SetWidth(msg.Width)
	m.theme.SetSize(msg.Width, msg.Height)
	m.welcome.SetSize(msg.Width, msg.Height)
	m.providers.SetSize(msg.Width, msg.Height)
	m.models.SetSize(msg.Width, msg.Height)
	m.sessions.SetSize(msg.Width, msg.Height)
	m.keyPrompt.SetSize(msg.Width, msg.Height)

	m.rebuildMarkdown()
	m.refreshViewport()
	m.viewport.GotoBottom()
	return m, nil
}

// handleKey dispatches one keypress. Overlays swallow keys first; the
// welcome screen goes away on anything; the rest is global chords with
// printable runes falling through to the input field.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m.quit()
	}

	m.notice = ""
	m.noticeErr = false

	if m.keyPrompt.Visible() {
		return m, m.keyPrompt.Update(msg)
	}
	if m.providers.Visible() {
		return m, m.providers.Update(msg)
	}
	if m.models.Visible() {
		return m, m.models.Update(msg)
	}
	if m.sessions.Visible() {
		return m, m.sessions.Update(msg)
	}
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.showWelcome {
		m.showWelcome = false
		// Fall through so chords work straight from the welcome screen
		// and the first typed rune lands in the input.
	}

	switch {
	case key.Matches(msg, m.keys.Cancel):
		if m.turnLive {
			if sess := m.manager.Active(); sess != nil {
				sess.CancelTurn()
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Send):
		return m.submit()

	case key.Matches(msg, m.keys.Providers):
		return m, m.openProviderPicker()

	case key.Matches(msg, m.keys.Models):
		return m, m.openModelPicker()

	case key.Matches(msg, m.keys.SetKey):
		return m, m.openKeyPrompt()

	case key.Matches(msg, m.keys.Sessions):
		return m, m.openSessionPicker()

	case key.Matches(msg, m.keys.NewSession):
		return m.newSession()

	case key.Matches(msg, m.keys.Stream):
		m.toggleStreaming()
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		m.clearConversation()
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.ScrollUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keys.ScrollDown):
		m.viewport.ViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// quit cancels any live turn and persists what it safely can. A live
// turn's conversation is owned by its goroutine, so it is not saved;
// history keeps the state from the previous turn.
func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.turnLive {
		if sess := m.manager.Active(); sess != nil {
			sess.CancelTurn()
		}
	} else {
		m.persist()
	}
	m.quitting = true
	return m, tea.Quit
}

// =============================================================================
// TURN LIFECYCLE
// =============================================================================

// submit starts a turn on its own goroutine. The model keeps rendering
// from a snapshot plus two UI-owned bubbles until TurnDoneMsg arrives.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.turnLive {
		return m, nil
	}
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	sess := m.manager.Active()
	if sess == nil {
		m.setNotice("No open session. Ctrl+N starts one.", true)
		return m, nil
	}

	m.input.Reset()

	conv := sess.Conversation()
	m.transcript = append([]*model.Message(nil), conv.Messages...)
	m.pendingUser = model.NewUserMessage(text)
	m.pendingReply = model.NewAssistantMessage()
	m.buffer.Reset()

	m.turnSeq++
	m.turnLive = true
	m.turnStart = time.Now()
	m.firstFrag = time.Time{}
	m.status.SetStatus(components.StatusGenerating)
	spinCmd := m.spin.Start()

	seq := m.turnSeq
	handle := m.handle
	go func() {
		err := sess.Submit(context.Background(), text, func(fragment string) {
			handle.emit(StreamFragmentMsg{Seq: seq, Fragment: fragment})
		})
		handle.emit(TurnDoneMsg{Seq: seq, Err: err})
	}()

	m.refreshViewport()
	m.viewport.GotoBottom()
	return m, tea.Batch(spinCmd, streamTickCmd())
}

// handleFragment buffers one fragment. Rendering waits for the tick.
func (m Model) handleFragment(msg StreamFragmentMsg) (tea.Model, tea.Cmd) {
	if !m.turnLive || msg.Seq != m.turnSeq {
		return m, nil
	}
	if m.firstFrag.IsZero() {
		m.firstFrag = time.Now()
	}
	m.buffer.Write(msg.Fragment)
	return m, nil
}

// handleStreamTick drains the buffer into the streaming bubble and
// reschedules itself while the turn lives.
func (m Model) handleStreamTick() (tea.Model, tea.Cmd) {
	if !m.turnLive {
		return m, nil
	}
	if chunk, ok := m.buffer.Flush(); ok {
		m.pendingReply.AppendFragment(chunk)
		wasBottom := m.viewport.AtBottom()
		m.refreshViewport()
		if wasBottom {
			m.viewport.GotoBottom()
		}
	}
	return m, streamTickCmd()
}

// handleTurnDone swaps the snapshot out for the real conversation, which
// is quiescent again and already holds the turn outcome.
func (m Model) handleTurnDone(msg TurnDoneMsg) (tea.Model, tea.Cmd) {
	if msg.Seq != m.turnSeq {
		return m, nil
	}

	m.turnLive = false
	m.spin.Stop()
	m.buffer.ForceFlush()
	m.transcript = nil
	m.pendingUser = nil
	m.pendingReply = nil

	sess := m.manager.Active()
	if sess == nil {
		return m, nil
	}

	switch {
	case msg.Err == nil:
		m.status.SetStatus(components.StatusReady)
		m.attachStats(sess.Conversation())
	case errors.Is(msg.Err, flow.ErrCancelled):
		m.status.SetStatus(components.StatusReady)
		m.setNotice("Stopped", false)
	default:
		m.status.SetStatus(components.StatusError)
	}

	m.syncChrome()
	m.persist()
	m.refreshViewport()
	m.viewport.GotoBottom()
	return m, m.input.Focus()
}

// attachStats decorates the completed reply with turn timing. The flow
// reports none of this; the screen is the only place that knows when the
// turn started and when the first fragment landed.
func (m *Model) attachStats(conv *model.Conversation) {
	last := conv.LastAssistantMessage()
	if last == nil || last.Stats != nil {
		return
	}

	total := time.Since(m.turnStart)
	stats := &model.Statistics{
		CompletionTokens: last.EstimateTokens(),
		TotalDuration:    total,
	}
	for _, msg := range conv.Messages {
		if msg == last {
			continue
		}
		if msg.Role == model.RoleUser || msg.Role == model.RoleAssistant {
			stats.PromptTokens += msg.EstimateTokens()
		}
	}

	generating := total
	if !m.firstFrag.IsZero() {
		stats.TimeToFirstToken = m.firstFrag.Sub(m.turnStart)
		generating = time.Since(m.firstFrag)
	}
	if secs := generating.Seconds(); secs > 0 && stats.CompletionTokens > 0 {
		stats.TokensPerSecond = float64(stats.CompletionTokens) / secs
	}

	last.Stats = stats
	m.status.SetRate(stats.TokensPerSecond)
}

// =============================================================================
// PICKERS AND PROMPTS
// =============================================================================

func (m *Model) openProviderPicker() tea.Cmd {
	activeProvider := ""
	if sess := m.manager.Active(); sess != nil {
		activeProvider, _ = sess.Selection()
	}

	configs := provider.List()
	items := make([]components.PickerItem, 0, len(configs))
	for _, cfg := range configs {
		detail := fmt.Sprintf("%d models", len(cfg.Models))
		if _, ok := m.creds.Get(cfg.CredentialKey); !ok {
			detail += ", no key"
		}
		items = append(items, components.PickerItem{
			ID:     cfg.Name,
			Label:  cfg.Name,
			Detail: detail,
			Active: cfg.Name == activeProvider,
		})
	}
	m.providers.SetItems(items)
	m.input.Blur()
	return m.providers.Show()
}

func (m *Model) openModelPicker() tea.Cmd {
	sess := m.manager.Active()
	if sess == nil {
		m.setNotice("No open session. Ctrl+N starts one.", true)
		return nil
	}
	providerName, activeModel := sess.Selection()
	cfg, err := provider.Get(providerName)
	if err != nil {
		m.setNotice(err.Error(), true)
		return nil
	}

	items := make([]components.PickerItem, 0, len(cfg.Models))
	for i, name := range cfg.Models {
		detail := ""
		if i == 0 {
			detail = "default"
		}
		items = append(items, components.PickerItem{
			ID:     name,
			Label:  name,
			Detail: detail,
			Active: name == activeModel,
		})
	}
	m.models.SetItems(items)
	m.input.Blur()
	return m.models.Show()
}

func (m *Model) openSessionPicker() tea.Cmd {
	metas, err := m.manager.Stored()
	if err != nil {
		m.setNotice(err.Error(), true)
		return nil
	}
	if len(metas) == 0 {
		m.setNotice("No stored sessions yet", false)
		return nil
	}

	activeID := ""
	if sess := m.manager.Active(); sess != nil {
		activeID = sess.ID()
	}

	items := make([]components.PickerItem, 0, len(metas))
	for _, meta := range metas {
		title := meta.Title
		if title == "" {
			title = "Untitled"
		}
		detail := fmt.Sprintf("%s, %d messages", meta.Provider, meta.MessageCount)
		items = append(items, components.PickerItem{
			ID:     meta.ID,
			Label:  title,
			Detail: detail,
			Active: meta.ID == activeID,
		})
	}
	m.sessions.SetItems(items)
	m.input.Blur()
	return m.sessions.Show()
}

func (m *Model) openKeyPrompt() tea.Cmd {
	providerName := m.cfg.DefaultProvider
	if sess := m.manager.Active(); sess != nil {
		providerName, _ = sess.Selection()
	}
	cfg, err := provider.Get(providerName)
	if err != nil {
		m.setNotice(err.Error(), true)
		return nil
	}
	m.input.Blur()
	return m.keyPrompt.Show(cfg.Name, cfg.CredentialKey)
}

func (m Model) handlePickerSelected(msg components.PickerSelectedMsg) (tea.Model, tea.Cmd) {
	switch msg.Picker {
	case pickerProviders:
		return m.selectProvider(msg.Item.ID)
	case pickerModels:
		return m.selectModel(msg.Item.ID)
	case pickerSessions:
		return m.resumeSession(msg.Item.ID)
	}
	return m, m.input.Focus()
}

// selectProvider switches the active session over and opens the key
// prompt right away when the new provider has no credential yet.
func (m Model) selectProvider(name string) (tea.Model, tea.Cmd) {
	sess := m.manager.Active()
	if sess == nil {
		return m, m.input.Focus()
	}
	if err := sess.SwitchProvider(name); err != nil {
		m.setNotice(err.Error(), true)
		return m, m.input.Focus()
	}
	m.syncChrome()
	m.refreshViewport()

	cfg, err := provider.Get(name)
	if err == nil {
		if _, ok := m.creds.Get(cfg.CredentialKey); !ok {
			return m, m.keyPrompt.Show(cfg.Name, cfg.CredentialKey)
		}
	}
	return m, m.input.Focus()
}

func (m Model) selectModel(name string) (tea.Model, tea.Cmd) {
	sess := m.manager.Active()
	if sess == nil {
		return m, m.input.Focus()
	}
	if err := sess.SwitchModel(name); err != nil {
		m.setNotice(err.Error(), true)
		return m, m.input.Focus()
	}
	m.syncChrome()
	return m, m.input.Focus()
}

func (m Model) resumeSession(id string) (tea.Model, tea.Cmd) {
	if _, err := m.manager.Resume(id); err != nil {
		m.setNotice(err.Error(), true)
		return m, m.input.Focus()
	}
	m.showWelcome = false
	m.syncChrome()
	m.refreshViewport()
	m.viewport.GotoBottom()
	return m, m.input.Focus()
}

// handleKeySubmitted stores the credential. The notice echoes only the
// fingerprint; the secret is gone from the UI the moment it is saved.
func (m Model) handleKeySubmitted(msg components.KeyPromptSubmittedMsg) (tea.Model, tea.Cmd) {
	if err := m.creds.Set(msg.CredentialKey, msg.Secret); err != nil {
		m.setNotice("Could not save key: "+err.Error(), true)
		return m, m.input.Focus()
	}
	m.setNotice(fmt.Sprintf("%s saved (%s)", msg.CredentialKey, credential.Fingerprint(msg.Secret)), false)
	m.syncChrome()
	return m, m.input.Focus()
}

// =============================================================================
// SESSION ACTIONS
// =============================================================================

func (m Model) newSession() (tea.Model, tea.Cmd) {
	if m.turnLive {
		m.setNotice("Stop the reply first (Esc)", true)
		return m, nil
	}
	m.persist()

	providerName := m.cfg.DefaultProvider
	modelName := m.cfg.DefaultModel
	if sess := m.manager.Active(); sess != nil {
		providerName, modelName = sess.Selection()
	}

	sess, err := m.manager.Create(providerName, modelName)
	if err != nil {
		m.setNotice(err.Error(), true)
		return m, nil
	}
	if m.cfg.SystemPrompt != "" {
		_ = sess.SetSystemPrompt(m.cfg.SystemPrompt)
	}
	sess.SetStreaming(m.cfg.Chat.Stream)

	m.status.SetStatus(components.StatusReady)
	m.setNotice("New session", false)
	m.syncChrome()
	m.refreshViewport()
	return m, nil
}

func (m *Model) toggleStreaming() {
	sess := m.manager.Active()
	if sess == nil {
		return
	}
	sess.SetStreaming(!sess.Streaming())
	m.status.SetStreaming(sess.Streaming())
	if sess.Streaming() {
		m.setNotice("Streaming on", false)
	} else {
		m.setNotice("Streaming off", false)
	}
}

func (m *Model) clearConversation() {
	if m.turnLive {
		m.setNotice("Stop the reply first (Esc)", true)
		return
	}
	sess := m.manager.Active()
	if sess == nil {
		return
	}
	if err := sess.Clear(); err != nil {
		m.setNotice(err.Error(), true)
		return
	}
	m.status.SetStatus(components.StatusReady)
	m.setNotice("Conversation cleared", false)
	m.syncChrome()
	m.refreshViewport()
}

// persist saves dirty sessions when history is on. Never called while a
// turn is live; the flow goroutine owns the conversation then.
func (m *Model) persist() {
	if m.turnLive {
		return
	}
	if err := m.manager.SaveDirty(); err != nil {
		m.setNotice("History save failed: "+err.Error(), true)
	}
}

// =============================================================================
// SHARED STATE SYNC
// =============================================================================

// syncChrome refreshes everything derived from the active session: the
// status bar, the welcome panel, and the token gauge.
func (m *Model) syncChrome() {
	sess := m.manager.Active()
	if sess == nil {
		m.status.SetSelection("", "")
		m.welcome.SetSelection("", "")
		m.welcome.SetKeySet(false)
		return
	}

	providerName, modelName := sess.Selection()
	m.status.SetSelection(providerName, modelName)
	m.status.SetStreaming(sess.Streaming())
	m.welcome.SetSelection(providerName, modelName)

	keySet := false
	if cfg, err := provider.Get(providerName); err == nil {
		_, keySet = m.creds.Get(cfg.CredentialKey)
	}
	m.welcome.SetKeySet(keySet)

	m.status.SetTokenUsage(conversationTokens(sess.Conversation()), components.DefaultContextTokens)
}

// refreshViewport rebuilds the transcript view. During a live turn the
// snapshot plus the UI-owned bubbles stand in for the conversation.
func (m *Model) refreshViewport() {
	var messages []*model.Message
	if m.turnLive {
		messages = make([]*model.Message, 0, len(m.transcript)+2)
		messages = append(messages, m.transcript...)
		messages = append(messages, m.pendingUser, m.pendingReply)
	} else if sess := m.manager.Active(); sess != nil {
		messages = sess.Conversation().Messages
	}

	m.list.Markdown = m.markdown
	m.list.SetMessages(messages)
	m.viewport.SetContent(m.list.View())
}

// rebuildMarkdown recreates the glamour renderer when the wrap width
// changes. Glamour setup is not cheap, so resizes to the same width are
// a no-op.
func (m *Model) rebuildMarkdown() {
	if !m.cfg.UI.Markdown {
		m.markdown = nil
		return
	}

	width := m.width - 10
	if m.cfg.UI.WordWrap > 0 && m.cfg.UI.WordWrap < width {
		width = m.cfg.UI.WordWrap
	}
	if width < 20 {
		width = 20
	}
	if width == m.markdownWidth && m.markdown != nil {
		return
	}

	style := glamour.WithStandardStyle("dark")
	switch m.cfg.UI.Theme {
	case "light":
		style = glamour.WithStandardStyle("light")
	case "auto":
		style = glamour.WithAutoStyle()
	}

	renderer, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width), glamour.WithEmoji())
	if err != nil {
		m.markdown = nil
		return
	}
	m.markdownWidth = width
	m.markdown = func(content string) string {
		out, err := renderer.Render(content)
		if err != nil {
			return content
		}
		return out
	}
}

func (m *Model) setNotice(text string, isErr bool) {
	m.notice = text
	m.noticeErr = isErr
}

// conversationTokens estimates the wire payload for the context gauge.
// Error and system messages never go to the provider, so they do not
// count.
func conversationTokens(conv *model.Conversation) int {
	total := 0
	for _, msg := range conv.Messages {
		switch msg.Role {
		case model.RoleUser, model.RoleAssistant:
			total += msg.EstimateTokens()
		}
	}
	return total
}
