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
// PICKER OVERLAY
// =============================================================================

// PickerItem is one selectable row.
type PickerItem struct {
	ID     string // Stable identifier handed back on selection
	Label  string // Primary text
	Detail string // Dimmed secondary text
	Active bool   // Marks the currently active choice
}

// PickerSelectedMsg is emitted when the user confirms a selection.
type PickerSelectedMsg struct {
	Picker string // Picker id, set at construction
	Item   PickerItem
}

// PickerDismissedMsg is emitted when the picker closes without a
// selection.
type PickerDismissedMsg struct {
	Picker string
}

// Picker is a filterable selection overlay used for providers, models,
// and stored sessions.
type Picker struct {
	id    string
	title string

	input    textinput.Model
	items    []PickerItem
	filtered []int // Indexes into items matching the filter

	selected int
	maxItems int

	width  int
	height int

	visible bool

	theme *styles.Theme
}

// NewPicker creates a picker overlay. The id comes back in the messages
// the picker emits so one parent can own several pickers.
func NewPicker(id, title string, theme *styles.Theme) *Picker {
	ti := textinput.New()
	ti.Placeholder = "Type to filter..."
	ti.Prompt = "> "
	ti.CharLimit = 100
	ti.Width = 50
	ti.PromptStyle = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.TextPrimary)
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true)

	return &Picker{
		id:       id,
		title:    title,
		input:    ti,
		maxItems: 10,
		theme:    theme,
	}
}

// SetItems replaces the rows and resets filter and selection. The row
// marked Active starts selected.
func (p *Picker) SetItems(items []PickerItem) {
	p.items = items
	p.input.SetValue("")
	p.updateFiltered()

	p.selected = 0
	for i, idx := range p.filtered {
		if p.items[idx].Active {
			p.selected = i
			break
		}
	}
}

// SetSize updates the available dimensions.
func (p *Picker) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// Show opens the overlay and focuses the filter input.
func (p *Picker) Show() tea.Cmd {
	p.visible = true
	return p.input.Focus()
}

// Hide closes the overlay.
func (p *Picker) Hide() {
	p.visible = false
	p.input.Blur()
}

// Visible reports whether the overlay is open.
func (p *Picker) Visible() bool {
	return p.visible
}

// Selected returns the highlighted item, if any.
func (p *Picker) Selected() (PickerItem, bool) {
	if p.selected < 0 || p.selected >= len(p.filtered) {
		return PickerItem{}, false
	}
	return p.items[p.filtered[p.selected]], true
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Update handles messages while the picker is open.
func (p *Picker) Update(msg tea.Msg) tea.Cmd {
	if !p.visible {
		return nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			p.Hide()
			id := p.id
			return func() tea.Msg { return PickerDismissedMsg{Picker: id} }

		case "enter":
			item, ok := p.Selected()
			if !ok {
				return nil
			}
			p.Hide()
			id := p.id
			return func() tea.Msg { return PickerSelectedMsg{Picker: id, Item: item} }

		case "up", "ctrl+p":
			if len(p.filtered) == 0 {
				return nil
			}
			p.selected--
			if p.selected < 0 {
				p.selected = len(p.filtered) - 1
			}
			return nil

		case "down", "ctrl+n", "tab":
			if len(p.filtered) == 0 {
				return nil
			}
			p.selected++
			if p.selected >= len(p.filtered) {
				p.selected = 0
			}
			return nil
		}
	}

	previousValue := p.input.Value()
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)

	if p.input.Value() != previousValue {
		p.updateFiltered()
		p.selected = 0
	}

	return cmd
}

// View renders the picker overlay.
func (p *Picker) View() string {
	if !p.visible {
		return ""
	}

	boxWidth := 60
	if p.width > 0 && p.width < boxWidth+10 {
		boxWidth = p.width - 10
	}
	if boxWidth < 40 {
		boxWidth = 40
	}

	headerStyle := lipgloss.NewStyle().
		Foreground(styles.Purple).
		Bold(true).
		Padding(0, 1)
	header := headerStyle.Render(p.title)

	sepStyle := lipgloss.NewStyle().
		Foreground(styles.Overlay)
	separator := sepStyle.Render(strings.Repeat("-", boxWidth-4))

	p.input.Width = boxWidth - 6
	inputView := p.input.View()

	var listItems []string
	for i, idx := range p.filtered {
		if i >= p.maxItems {
			remaining := len(p.filtered) - p.maxItems
			if remaining > 0 {
				moreStyle := lipgloss.NewStyle().
					Foreground(styles.TextMuted).
					Italic(true)
				listItems = append(listItems, moreStyle.Render("  ... "+toStr(remaining)+" more"))
			}
			break
		}
		listItems = append(listItems, p.renderItem(p.items[idx], i == p.selected, boxWidth-6))
	}

	list := strings.Join(listItems, "\n")

	if len(p.filtered) == 0 {
		noMatchStyle := lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Italic(true).
			Padding(1, 0)
		list = noMatchStyle.Render("Nothing matches")
	}

	helpStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Padding(1, 0, 0, 0)
	help := helpStyle.Render("Up/Down navigate | Enter select | Esc close")

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		separator,
		inputView,
		separator,
		list,
		help,
	)

	boxStyle := lipgloss.NewStyle().
		Background(styles.Surface).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Purple).
		Padding(1, 2).
		Width(boxWidth)

	box := boxStyle.Render(content)

	if p.width > 0 && p.height > 0 {
		return lipgloss.Place(
			p.width, p.height,
			lipgloss.Center, lipgloss.Center,
			box,
			lipgloss.WithWhitespaceChars(" "),
		)
	}

	return box
}

// =============================================================================
// INTERNAL METHODS
// =============================================================================

// renderItem renders a single picker row.
func (p *Picker) renderItem(item PickerItem, selected bool, width int) string {
	indicator := "  "
	if selected {
		indicator = "> "
	}

	labelStyle := lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Bold(true)
	detailStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted)

	activeIndicator := ""
	if item.Active {
		activeIndicator = lipgloss.NewStyle().
			Foreground(styles.Emerald).
			Render(" " + styles.StatusIndicators.Active)
	}

	label := labelStyle.Render(item.Label)

	usedWidth := lipgloss.Width(indicator) + lipgloss.Width(label) + lipgloss.Width(activeIndicator) + 2
	detailWidth := width - usedWidth
	if detailWidth < 10 {
		detailWidth = 10
	}

	detail := ""
	if item.Detail != "" {
		detail = "  " + detailStyle.Render(truncateDetail(item.Detail, detailWidth))
	}

	row := indicator + label + activeIndicator + detail

	if selected {
		return lipgloss.NewStyle().
			Background(styles.Purple).
			Foreground(styles.TextInverse).
			Width(width).
			Render(row)
	}
	return row
}

// updateFiltered recomputes the visible rows for the current filter.
// Case-insensitive substring match on label and detail.
func (p *Picker) updateFiltered() {
	query := strings.ToLower(strings.TrimSpace(p.input.Value()))

	p.filtered = p.filtered[:0]
	for i, item := range p.items {
		if query == "" ||
			strings.Contains(strings.ToLower(item.Label), query) ||
			strings.Contains(strings.ToLower(item.Detail), query) {
			p.filtered = append(p.filtered, i)
		}
	}
}

// truncateDetail trims detail text to fit, rune-safe.
func truncateDetail(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
