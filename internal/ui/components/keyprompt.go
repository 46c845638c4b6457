// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/parley/internal/ui/styles"
)

// =============================================================================
// API KEY ENTRY OVERLAY
// =============================================================================

// KeyPromptSubmittedMsg carries a freshly entered API key. The receiver
// hands the secret to the credential store and drops it.
type KeyPromptSubmittedMsg struct {
	Provider      string
	CredentialKey string
	Secret        string
}

// KeyPromptDismissedMsg is emitted when key entry is cancelled.
type KeyPromptDismissedMsg struct{}

// KeyPrompt is the masked API key entry overlay.
// SECURITY: The input echoes '*' per character; the typed secret is
// never rendered and the field is reset on submit and on cancel.
type KeyPrompt struct {
	input textinput.Model

	provider      string
	credentialKey string
	errText       string

	width  int
	height int

	visible bool

	theme *styles.Theme
}

// NewKeyPrompt creates the key entry overlay.
func NewKeyPrompt(theme *styles.Theme) *KeyPrompt {
	ti := textinput.New()
	ti.Placeholder = "Paste your API key"
	ti.Prompt = "> "
	ti.CharLimit = 256
	ti.Width = 50
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '*'
	ti.PromptStyle = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.TextPrimary)
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true)

	return &KeyPrompt{
		input: ti,
		theme: theme,
	}
}

// Show opens the overlay for the given provider.
func (k *KeyPrompt) Show(provider, credentialKey string) tea.Cmd {
	k.provider = provider
	k.credentialKey = credentialKey
	k.errText = ""
	k.input.Reset()
	k.visible = true
	return k.input.Focus()
}

// Hide closes the overlay and clears the typed value.
func (k *KeyPrompt) Hide() {
	k.visible = false
	k.errText = ""
	k.input.Reset()
	k.input.Blur()
}

// Visible reports whether the overlay is open.
func (k *KeyPrompt) Visible() bool {
	return k.visible
}

// Provider returns the provider the prompt is collecting a key for.
func (k *KeyPrompt) Provider() string {
	return k.provider
}

// SetSize updates the available dimensions.
func (k *KeyPrompt) SetSize(width, height int) {
	k.width = width
	k.height = height
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Update handles messages while the prompt is open.
func (k *KeyPrompt) Update(msg tea.Msg) tea.Cmd {
	if !k.visible {
		return nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			k.Hide()
			return func() tea.Msg { return KeyPromptDismissedMsg{} }

		case "enter":
			secret := strings.TrimSpace(k.input.Value())
			if secret == "" {
				k.errText = "Key cannot be empty"
				return nil
			}
			result := KeyPromptSubmittedMsg{
				Provider:      k.provider,
				CredentialKey: k.credentialKey,
				Secret:        secret,
			}
			k.Hide()
			return func() tea.Msg { return result }
		}
	}

	var cmd tea.Cmd
	k.input, cmd = k.input.Update(msg)
	if k.input.Value() != "" {
		k.errText = ""
	}
	return cmd
}

// View renders the key entry overlay.
func (k *KeyPrompt) View() string {
	if !k.visible {
		return ""
	}

	boxWidth := 60
	if k.width > 0 && k.width < boxWidth+10 {
		boxWidth = k.width - 10
	}
	if boxWidth < 40 {
		boxWidth = 40
	}

	headerStyle := lipgloss.NewStyle().
		Foreground(styles.Purple).
		Bold(true).
		Padding(0, 1)
	header := headerStyle.Render("Set API Key")

	targetStyle := lipgloss.NewStyle().
		Foreground(styles.TextSecondary)
	keyStyle := lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Bold(true)
	target := targetStyle.Render("Provider: ") + keyStyle.Render(k.provider) +
		targetStyle.Render("  (") + targetStyle.Render(k.credentialKey) + targetStyle.Render(")")

	sepStyle := lipgloss.NewStyle().
		Foreground(styles.Overlay)
	separator := sepStyle.Render(strings.Repeat("-", boxWidth-4))

	k.input.Width = boxWidth - 6
	inputView := k.input.View()

	parts := []string{header, target, separator, inputView}

	if k.errText != "" {
		errStyle := lipgloss.NewStyle().
			Foreground(styles.ErrorHighContrast).
			Bold(true)
		parts = append(parts, errStyle.Render(styles.StatusIndicators.Error+" "+k.errText))
	}

	helpStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Padding(1, 0, 0, 0)
	parts = append(parts, helpStyle.Render("Enter save | Esc cancel"))

	content := lipgloss.JoinVertical(lipgloss.Left, parts...)

	boxStyle := lipgloss.NewStyle().
		Background(styles.Surface).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Amber).
		Padding(1, 2).
		Width(boxWidth)

	box := boxStyle.Render(content)

	if k.width > 0 && k.height > 0 {
		return lipgloss.Place(
			k.width, k.height,
			lipgloss.Center, lipgloss.Center,
			box,
			lipgloss.WithWhitespaceChars(" "),
		)
	}

	return box
}
