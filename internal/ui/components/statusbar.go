// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/parley/internal/ui/styles"
	"github.com/jeranaias/parley/internal/util"
)

// DefaultContextTokens is the nominal context window used for the usage
// bar when no better figure is known. Providers differ; the bar is an
// estimate, not a contract.
const DefaultContextTokens = 128000

// providerColors maps provider names to their accent color.
var providerColors = map[string]lipgloss.AdaptiveColor{
	"Google":     styles.Cyan,
	"OpenAI":     styles.Emerald,
	"Anthropic":  styles.Amber,
	"Groq":       styles.Purple,
	"OpenRouter": styles.Rose,
}

// =============================================================================
// STATUS BAR COMPONENT - Bottom status bar
// =============================================================================

// Status represents the current application status
type Status int

const (
	StatusReady Status = iota
	StatusGenerating
	StatusError
	StatusIdle
)

// String returns the display string for the status
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusGenerating:
		return "Generating..."
	case StatusError:
		return "Error"
	case StatusIdle:
		return "Idle"
	default:
		return "Unknown"
	}
}

// Icon returns an icon for the status
// ACCESSIBILITY: Uses distinct shapes alongside colors for colorblind users
func (s Status) Icon() string {
	switch s {
	case StatusReady:
		return styles.StatusIndicators.Success
	case StatusGenerating:
		return "~"
	case StatusError:
		return styles.StatusIndicators.Error
	case StatusIdle:
		return "-"
	default:
		return "?"
	}
}

// StatusBar is the bottom status bar: active selection on the left,
// context usage in the center, status and shortcuts on the right.
type StatusBar struct {
	Provider      string  // Active provider name
	Model         string  // Active model
	Streaming     bool    // Whether replies stream
	TokenCount    int     // Estimated tokens in the conversation
	MaxTokens     int     // Nominal context window for the usage bar
	Rate          float64 // Tokens/sec of the last reply, 0 when unknown
	Status        Status  // Current status
	Width         int     // Available width
	ShowShortcuts bool    // Show keyboard shortcut hints
	theme         *styles.Theme
}

// NewStatusBar creates a new StatusBar component
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Streaming:     true,
		MaxTokens:     DefaultContextTokens,
		Status:        StatusReady,
		Width:         80,
		ShowShortcuts: true,
		theme:         theme,
	}
}

// SetWidth updates the status bar width
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetSelection updates the provider/model display
func (s *StatusBar) SetSelection(provider, model string) {
	s.Provider = provider
	s.Model = model
}

// SetStreaming updates the stream state display
func (s *StatusBar) SetStreaming(on bool) {
	s.Streaming = on
}

// SetTokenUsage updates the token count display
func (s *StatusBar) SetTokenUsage(used, max int) {
	s.TokenCount = used
	if max > 0 {
		s.MaxTokens = max
	}
}

// SetRate updates the tokens-per-second display
func (s *StatusBar) SetRate(rate float64) {
	s.Rate = rate
}

// SetStatus updates the current status
func (s *StatusBar) SetStatus(status Status) {
	s.Status = status
}

// View renders the status bar
func (s *StatusBar) View() string {
	// Choose layout based on width
	if s.Width < 60 {
		return s.viewNarrow()
	}
	if s.Width < 100 {
		return s.viewMedium()
	}
	return s.viewWide()
}

// viewNarrow renders a compact status bar for narrow terminals
// Format: [G|~] ContextBar StatusIcon
func (s *StatusBar) viewNarrow() string {
	parts := []string{}

	// Provider initial only
	if s.Provider != "" {
		initial := string([]rune(s.Provider)[0])
		parts = append(parts, s.getProviderStyle().Render(initial))
	}

	parts = append(parts, s.renderStreamMarker())

	modeSection := "[" + strings.Join(parts, "|") + "]"

	// Context bar (smaller)
	contextBar := s.renderContextBarSmall()

	// Status
	statusText := s.getStatusStyle().Render(s.Status.Icon())

	separator := lipgloss.NewStyle().Foreground(styles.Overlay).Render(" ")

	result := modeSection + separator + contextBar + separator + statusText

	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		Foreground(styles.TextSecondary).
		Width(s.Width).
		Render(result)
}

// viewMedium renders a medium-width status bar
// Format: Provider | model | ~ stream | Ctx: ContextBar | Status
func (s *StatusBar) viewMedium() string {
	separator := lipgloss.NewStyle().
		Foreground(styles.Overlay).
		Render(" | ")

	parts := []string{}

	if s.Provider != "" {
		parts = append(parts, s.getProviderStyle().Render(s.Provider))
	}

	// Model (truncated if needed)
	if s.Model != "" {
		modelStyle := lipgloss.NewStyle().Foreground(styles.TextSecondary)
		parts = append(parts, modelStyle.Render(util.TruncateRunes(s.Model, 18)))
	}

	parts = append(parts, s.renderStreamBadge())

	// Context bar with label
	contextLabel := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Render("Ctx:")
	parts = append(parts, contextLabel+" "+s.renderContextBar())

	// Status
	parts = append(parts, s.getStatusStyle().Render(s.Status.String()))

	result := strings.Join(parts, separator)

	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		Foreground(styles.TextSecondary).
		Padding(0, 1).
		Width(s.Width).
		Render(result)
}

// viewWide renders a full-featured status bar for wide terminals
// Format: Provider | model | ~ stream | 1,234 tok | 42.7 tok/s   Ctx: [####------] ...   Status ^P Esc
func (s *StatusBar) viewWide() string {
	// Left section: selection and throughput
	leftParts := []string{}

	if s.Provider != "" {
		leftParts = append(leftParts, s.getProviderStyle().Render(s.Provider))
	}

	if s.Model != "" {
		modelStyle := lipgloss.NewStyle().Foreground(styles.TextSecondary)
		leftParts = append(leftParts, modelStyle.Render(s.Model))
	}

	leftParts = append(leftParts, s.renderStreamBadge())

	tokenStr := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Render(fmtNumber(s.TokenCount) + " tok")
	leftParts = append(leftParts, tokenStr)

	if s.Rate > 0 {
		rateStr := lipgloss.NewStyle().
			Foreground(styles.Emerald).
			Render(fmtRate(s.Rate) + " tok/s")
		leftParts = append(leftParts, rateStr)
	}

	leftSep := lipgloss.NewStyle().Foreground(styles.Overlay).Render(" | ")
	leftSection := strings.Join(leftParts, leftSep)

	// Center section: context usage
	contextLabel := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Render("Ctx: ")
	centerSection := contextLabel + s.renderContextBar() + " " + s.renderContextPercent()

	// Right section: status and shortcuts
	rightParts := []string{s.getStatusStyle().Render(s.Status.String())}
	if s.ShowShortcuts {
		rightParts = append(rightParts, s.renderShortcuts())
	}
	rightSection := strings.Join(rightParts, " ")

	// Calculate spacing
	leftWidth := lipgloss.Width(leftSection)
	centerWidth := lipgloss.Width(centerSection)
	rightWidth := lipgloss.Width(rightSection)
	totalContent := leftWidth + centerWidth + rightWidth

	spacing := s.Width - totalContent - 4 // Account for padding
	if spacing < 4 {
		spacing = 4
	}

	leftSpace := strings.Repeat(" ", spacing/2)
	rightSpace := strings.Repeat(" ", spacing-spacing/2)

	result := leftSection + leftSpace + centerSection + rightSpace + rightSection

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(styles.Overlay).
		Background(styles.SurfaceDim).
		Foreground(styles.TextSecondary).
		Padding(0, 1).
		Width(s.Width).
		Render(result)
}

// ==========================================================================
// HELPER RENDER METHODS
// ==========================================================================

// renderStreamMarker renders the one-character stream state for narrow view
func (s *StatusBar) renderStreamMarker() string {
	if s.Streaming {
		return lipgloss.NewStyle().Foreground(styles.Cyan).Render("~")
	}
	return lipgloss.NewStyle().Foreground(styles.TextMuted).Render("=")
}

// renderStreamBadge renders the stream state with a label
func (s *StatusBar) renderStreamBadge() string {
	if s.Streaming {
		return lipgloss.NewStyle().Foreground(styles.Cyan).Render("~ stream")
	}
	return lipgloss.NewStyle().Foreground(styles.TextMuted).Render("= full")
}

// renderContextBar renders the context usage bar
// Format: [##########] (10 blocks)
func (s *StatusBar) renderContextBar() string {
	percent := s.contextPercent()

	filled := int(percent / 10)
	if filled > 10 {
		filled = 10
	}
	empty := 10 - filled

	filledStyle := lipgloss.NewStyle().Foreground(s.barColor(percent))
	emptyStyle := lipgloss.NewStyle().Foreground(styles.Overlay)

	filledPart := filledStyle.Render(strings.Repeat("#", filled))
	emptyPart := emptyStyle.Render(strings.Repeat("-", empty))

	return "[" + filledPart + emptyPart + "]"
}

// renderContextBarSmall renders a smaller context bar for narrow view
// Format: ####-- (6 blocks)
func (s *StatusBar) renderContextBarSmall() string {
	percent := s.contextPercent()

	filled := int(percent / 100 * 6)
	if filled > 6 {
		filled = 6
	}
	empty := 6 - filled

	filledStyle := lipgloss.NewStyle().Foreground(s.barColor(percent))
	emptyStyle := lipgloss.NewStyle().Foreground(styles.Overlay)

	return filledStyle.Render(strings.Repeat("#", filled)) +
		emptyStyle.Render(strings.Repeat("-", empty))
}

// renderContextPercent renders the context percentage with token counts
func (s *StatusBar) renderContextPercent() string {
	percent := s.contextPercent()

	color := styles.TextMuted
	if percent >= 90 {
		color = styles.Rose
	} else if percent >= 75 {
		color = styles.Amber
	}

	percentStyle := lipgloss.NewStyle().Foreground(color)

	// Format: 2,048/128,000 (1.6%)
	return percentStyle.Render(
		fmtNumber(s.TokenCount) + "/" + fmtNumber(s.MaxTokens) +
			" (" + fmtPercent(percent) + ")",
	)
}

// renderShortcuts renders keyboard shortcut hints
func (s *StatusBar) renderShortcuts() string {
	keyStyle := lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted)

	shortcuts := []string{
		keyStyle.Render("^P") + descStyle.Render("provider"),
		keyStyle.Render("Esc") + descStyle.Render("stop"),
	}

	return strings.Join(shortcuts, " ")
}

// contextPercent returns the usage percentage of the nominal window
func (s *StatusBar) contextPercent() float64 {
	if s.MaxTokens <= 0 {
		return 0
	}
	return float64(s.TokenCount) / float64(s.MaxTokens) * 100
}

// barColor picks the bar color for a usage percentage
func (s *StatusBar) barColor(percent float64) lipgloss.AdaptiveColor {
	if percent >= 90 {
		return styles.Rose
	}
	if percent >= 75 {
		return styles.Amber
	}
	if percent >= 50 {
		return styles.Emerald
	}
	return styles.Cyan
}

// getProviderStyle returns the accent style for the active provider
func (s *StatusBar) getProviderStyle() lipgloss.Style {
	if color, ok := providerColors[s.Provider]; ok {
		return lipgloss.NewStyle().Foreground(color).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(styles.TextSecondary)
}

// getStatusStyle returns the style for the current status
// ACCESSIBILITY: Uses high contrast colors with bold for colorblind users
func (s *StatusBar) getStatusStyle() lipgloss.Style {
	switch s.Status {
	case StatusReady:
		return lipgloss.NewStyle().Foreground(styles.SuccessHighContrast).Bold(true)
	case StatusGenerating:
		return lipgloss.NewStyle().Foreground(styles.InfoHighContrast).Bold(true)
	case StatusError:
		return lipgloss.NewStyle().Foreground(styles.ErrorHighContrast).Bold(true)
	case StatusIdle:
		return lipgloss.NewStyle().Foreground(styles.TextMuted)
	default:
		return lipgloss.NewStyle().Foreground(styles.TextMuted)
	}
}
