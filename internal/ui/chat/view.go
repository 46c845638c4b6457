// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/parley/internal/ui/components"
	"github.com/jeranaias/parley/internal/ui/styles"
)

// Fixed row budgets for the chrome around the viewport. Every render
// forces these heights so the layout cannot shift while streaming.
const (
	headerHeight    = 2
	inputAreaHeight = 3
	statusBarHeight = 1
)

// View renders the whole screen. Overlays take the screen over entirely
// rather than compositing; a terminal has no z-axis worth fighting for.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "\n  Loading..."
	}

	if m.keyPrompt.Visible() {
		return m.renderOverlay(m.keyPrompt.View())
	}
	if m.providers.Visible() {
		return m.renderOverlay(m.providers.View())
	}
	if m.models.Visible() {
		return m.renderOverlay(m.models.View())
	}
	if m.sessions.Visible() {
		return m.renderOverlay(m.sessions.View())
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.showWelcome {
		return m.welcome.View()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderInputArea(),
		m.status.View(),
	)
}

// renderHeader is the one line title bar plus a separator row.
func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().
		Foreground(styles.Purple).
		Bold(true).
		Render("parley")

	selection := ""
	if sess := m.manager.Active(); sess != nil {
		providerName, modelName := sess.Selection()
		selection = lipgloss.NewStyle().
			Foreground(styles.TextSecondary).
			Render(providerName + " / " + modelName)
	}

	spin := ""
	if m.spin.IsActive() {
		spin = "  " + m.spin.View()
	}

	bar := lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(title + "  " + selection + spin)

	return lipgloss.NewStyle().
		Height(headerHeight).
		MaxHeight(headerHeight).
		Render(bar + "\n")
}

// renderInputArea is the input field plus a meta line carrying the
// transient notice on the left and the character counter on the right.
func (m Model) renderInputArea() string {
	field := m.input.View()
	meta := m.renderMetaLine()

	return lipgloss.NewStyle().
		Height(inputAreaHeight).
		MaxHeight(inputAreaHeight).
		Render("\n" + field + "\n" + meta)
}

func (m Model) renderMetaLine() string {
	counter := m.renderCharCount()

	notice := ""
	if m.notice != "" {
		color := styles.TextMuted
		if m.noticeErr {
			color = styles.Rose
		}
		notice = lipgloss.NewStyle().Foreground(color).Render(m.notice)
	}

	gap := m.width - lipgloss.Width(notice) - lipgloss.Width(counter) - 2
	if gap < 1 {
		gap = 1
	}
	line := " " + notice + lipgloss.NewStyle().Width(gap).Render("") + counter
	return lipgloss.NewStyle().MaxHeight(1).Render(line)
}

// renderCharCount colors the counter as the message approaches the
// input limit: muted, then amber past three quarters, then rose past
// ninety percent.
func (m Model) renderCharCount() string {
	count := len([]rune(m.input.Value()))
	if count == 0 {
		return ""
	}

	color := styles.TextMuted
	switch {
	case count >= inputCharLimit*90/100:
		color = styles.Rose
	case count >= inputCharLimit*75/100:
		color = styles.Amber
	}
	return lipgloss.NewStyle().
		Foreground(color).
		Render(fmt.Sprintf("%d/%d", count, inputCharLimit))
}

// renderHelp replaces the screen with the shortcut reference.
func (m Model) renderHelp() string {
	body := components.KeyboardShortcuts()

	hint := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true).
		Render("Press any key to close")

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Purple).
		Padding(1, 3).
		Render(body + "\n\n" + hint)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// renderOverlay centers a modal component on an otherwise blank screen.
func (m Model) renderOverlay(overlay string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, overlay)
}
