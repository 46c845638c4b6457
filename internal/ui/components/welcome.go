// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/parley/internal/ui/styles"
)

// =============================================================================
// WELCOME SCREEN MODEL
// =============================================================================

// Welcome is the welcome screen shown before the first message.
type Welcome struct {
	version   string
	provider  string
	modelName string
	keySet    bool
	historyOn bool

	width  int
	height int

	theme *styles.Theme
}

// NewWelcome creates a new welcome screen.
func NewWelcome(theme *styles.Theme) Welcome {
	return Welcome{
		version:   "dev",
		keySet:    true,
		historyOn: true,
		theme:     theme,
	}
}

// SetVersion sets the version string.
func (w *Welcome) SetVersion(version string) {
	w.version = version
}

// SetSelection sets the active provider and model.
func (w *Welcome) SetSelection(provider, model string) {
	w.provider = provider
	w.modelName = model
}

// SetKeySet records whether the active provider has a credential.
func (w *Welcome) SetKeySet(set bool) {
	w.keySet = set
}

// SetHistoryOn records whether session persistence is enabled.
func (w *Welcome) SetHistoryOn(on bool) {
	w.historyOn = on
}

// SetSize updates the dimensions.
func (w *Welcome) SetSize(width, height int) {
	w.width = width
	w.height = height
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the welcome screen.
func (w Welcome) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (w Welcome) Update(msg tea.Msg) (Welcome, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.height = msg.Height
	}
	return w, nil
}

// View renders the welcome screen.
// Responsive: adapts to terminal size, minimum 80x24 supported.
func (w Welcome) View() string {
	width := w.width
	if width == 0 {
		width = 80
	}
	height := w.height
	if height == 0 {
		height = 24
	}

	// Calculate box width - responsive to terminal width
	boxWidth := 62
	if width < 70 {
		boxWidth = width - 8
	}
	if boxWidth < 40 {
		boxWidth = 40
	}
	if boxWidth > width-4 {
		boxWidth = width - 4
	}

	horizontalPadding := 4
	verticalPadding := 1
	if width < 70 {
		horizontalPadding = 2
	}

	// Box overhead: 2 (border top/bottom) + 2*verticalPadding
	boxOverhead := 2 + 2*verticalPadding
	availableContentLines := height - boxOverhead

	// Build the content based on available space.
	// Logo: 5 lines. Version: 1. Info: 3-5 lines. Press key: 1.
	var content string
	var contentLines int

	if availableContentLines >= 17 {
		// Full layout with double newlines
		content = w.renderLogo()
		content += "\n\n" + w.renderVersion()
		content += "\n\n" + w.renderInfo()
		content += "\n\n" + w.renderPressKey()
		contentLines = 5 + 2 + 1 + 2 + 3 + 2 + 1
	} else if availableContentLines >= 13 {
		// Compact: single newlines between sections
		content = w.renderLogo()
		content += "\n" + w.renderVersion()
		content += "\n" + w.renderInfo()
		content += "\n" + w.renderPressKey()
		contentLines = 5 + 1 + 1 + 1 + 3 + 1 + 1
	} else if availableContentLines >= 9 {
		// Very compact: compact logo, minimal spacing
		content = w.renderLogoCompact()
		content += "\n" + w.renderVersion()
		content += "\n" + w.renderInfo()
		content += "\n" + w.renderPressKey()
		contentLines = 3 + 1 + 1 + 1 + 3 + 1 + 1
	} else {
		// Ultra compact: minimal content
		content = w.renderLogoCompact()
		content += "\n" + w.renderInfoCompact()
		content += "\n" + w.renderPressKey()
		contentLines = 3 + 1 + 1 + 1 + 1
	}

	// If still too tight, remove vertical padding
	if contentLines+boxOverhead > height {
		verticalPadding = 0
	}

	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(styles.Purple).
		Padding(verticalPadding, horizontalPadding).
		Width(boxWidth).
		Align(lipgloss.Center).
		Render(content)

	boxHeight := lipgloss.Height(box)

	// Align top when the box would overflow so nothing is cut off above
	if boxHeight >= height {
		return lipgloss.Place(
			width, height,
			lipgloss.Center, lipgloss.Top,
			box,
		)
	}
	return lipgloss.Place(
		width, height,
		lipgloss.Center, lipgloss.Center,
		box,
	)
}

// =============================================================================
// RENDER HELPERS
// =============================================================================

// renderLogo renders the ASCII art logo (5 lines).
// Responsive: falls back to the compact logo for narrow terminals.
func (w Welcome) renderLogo() string {
	logoStyle := lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Bold(true)

	// Full ASCII art is ~44 chars wide, needs ~48 with box padding
	if w.width >= 60 {
		logo := ` ____      _     ____   _      _____ __   __
|  _ \    / \   |  _ \ | |    | ____|\ \ / /
| |_) |  / _ \  | |_) || |    |  _|   \ V /
|  __/  / ___ \ |  _ < | |___ | |___   | |
|_|    /_/   \_\|_| \_\|_____||_____|  |_|`
		return logoStyle.Render(logo)
	}

	return w.renderLogoCompact()
}

// renderLogoCompact renders a compact text-based logo (3 lines).
func (w Welcome) renderLogoCompact() string {
	logoStyle := lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Bold(true)

	if w.width >= 40 {
		return logoStyle.Render(`+--------------------+
|       parley       |
+--------------------+`)
	}

	// Simple text logo for very narrow terminals
	return logoStyle.Render("parley")
}

// renderVersion renders the version subtitle.
func (w Welcome) renderVersion() string {
	return lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true).
		Render("Multi-Provider LLM Chat v" + w.version)
}

// renderInfo renders provider, model, and history lines, plus a warning
// when the active provider has no credential yet.
func (w Welcome) renderInfo() string {
	labelStyle := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Width(10)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Bold(true)

	historyText := "off"
	historyStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)
	if w.historyOn {
		historyText = "on"
		historyStyle = lipgloss.NewStyle().Foreground(styles.Emerald)
	}

	lines := []string{
		labelStyle.Render("Provider:") + " " + valueStyle.Render(w.provider),
		labelStyle.Render("Model:") + " " + valueStyle.Render(w.modelName),
		labelStyle.Render("History:") + " " + historyStyle.Render(historyText),
	}

	if !w.keySet {
		warning := lipgloss.NewStyle().
			Foreground(styles.WarningHighContrast).
			Bold(true).
			Render(styles.StatusIndicators.Warning + " No API key for " + w.provider + " - press ^K to add one")
		lines = append(lines, "", warning)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderInfoCompact renders a single-line summary.
func (w Welcome) renderInfoCompact() string {
	valueStyle := lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Bold(true)

	return valueStyle.Render(w.provider) + " | " + w.modelName
}

// renderPressKey renders the "press any key" prompt.
func (w Welcome) renderPressKey() string {
	return lipgloss.NewStyle().
		Foreground(styles.Purple).
		Render("Press any key to start chatting...")
}

// =============================================================================
// KEYBOARD SHORTCUT HELP
// =============================================================================

// KeyboardShortcuts returns a formatted list of keyboard shortcuts for
// the help overlay.
func KeyboardShortcuts() string {
	keyStyle := lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Bold(true).
		Width(12)

	descStyle := lipgloss.NewStyle().
		Foreground(styles.TextSecondary)

	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send message"},
		{"Esc", "Stop generating / close overlay"},
		{"Ctrl+P", "Switch provider"},
		{"Ctrl+O", "Switch model"},
		{"Ctrl+K", "Set API key"},
		{"Ctrl+R", "Resume a session"},
		{"Ctrl+N", "New session"},
		{"Ctrl+S", "Toggle streaming"},
		{"Ctrl+L", "Clear conversation"},
		{"Ctrl+G", "Toggle this help"},
		{"PgUp/PgDn", "Scroll messages"},
		{"Ctrl+C", "Quit"},
	}

	lines := make([]string, len(shortcuts))
	for i, s := range shortcuts {
		lines[i] = keyStyle.Render(s.key) + descStyle.Render(s.desc)
	}

	titleStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		Bold(true)

	return titleStyle.Render("Keyboard Shortcuts") + "\n" +
		lipgloss.JoinVertical(lipgloss.Left, lines...)
}
