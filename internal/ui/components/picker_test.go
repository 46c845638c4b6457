// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func testPickerItems() []PickerItem {
	return []PickerItem{
		{ID: "google", Label: "Google", Detail: "gemini-3-pro"},
		{ID: "openai", Label: "OpenAI", Detail: "gpt-5.2"},
		{ID: "anthropic", Label: "Anthropic", Detail: "claude-opus-4.5", Active: true},
	}
}

func typeRunes(p *Picker, s string) {
	for _, r := range s {
		p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// =============================================================================
// PICKER TESTS
// =============================================================================

func TestNewPicker(t *testing.T) {
	p := NewPicker("provider", "Select Provider", nil)

	if p.id != "provider" {
		t.Errorf("NewPicker() id = %q, want %q", p.id, "provider")
	}
	if p.title != "Select Provider" {
		t.Errorf("NewPicker() title = %q, want %q", p.title, "Select Provider")
	}
	if p.Visible() {
		t.Error("NewPicker() should not be visible initially")
	}
	if p.maxItems != 10 {
		t.Errorf("NewPicker() maxItems = %d, want 10", p.maxItems)
	}
}

func TestPickerSetItemsSelectsActive(t *testing.T) {
	p := NewPicker("provider", "Select Provider", nil)
	p.SetItems(testPickerItems())

	if len(p.filtered) != 3 {
		t.Fatalf("SetItems() filtered = %d rows, want 3", len(p.filtered))
	}

	item, ok := p.Selected()
	if !ok {
		t.Fatal("Selected() should return an item after SetItems()")
	}
	if item.ID != "anthropic" {
		t.Errorf("Selected() = %q, want active row %q", item.ID, "anthropic")
	}
}

func TestPickerSetItemsDefaultsToFirst(t *testing.T) {
	p := NewPicker("model", "Select Model", nil)
	p.SetItems([]PickerItem{
		{ID: "a", Label: "alpha"},
		{ID: "b", Label: "beta"},
	})

	item, ok := p.Selected()
	if !ok {
		t.Fatal("Selected() should return an item")
	}
	if item.ID != "a" {
		t.Errorf("Selected() = %q, want first row %q", item.ID, "a")
	}
}

func TestPickerShowHide(t *testing.T) {
	p := NewPicker("provider", "Select Provider", nil)

	cmd := p.Show()
	if !p.Visible() {
		t.Error("Show() should make picker visible")
	}
	if cmd == nil {
		t.Error("Show() should return the input focus command")
	}

	p.Hide()
	if p.Visible() {
		t.Error("Hide() should make picker invisible")
	}
}

func TestPickerUpdateIgnoredWhenHidden(t *testing.T) {
	p := NewPicker("provider", "Select Provider", nil)
	p.SetItems(testPickerItems())

	cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("Update() should return nil when picker is hidden")
	}
}

func TestPickerFilter(t *testing.T) {
	p := NewPicker("provider", "Select Provider", nil)
	p.SetItems(testPickerItems())
	p.Show()

	typeRunes(p, "open")

	if len(p.filtered) != 1 {
		t.Fatalf("filter %q matched %d rows, want 1", "open", len(p.filtered))
	}
	item, ok := p.Selected()
	if !ok || item.ID != "openai" {
		t.Errorf("Selected() after filter = %v, want openai", item.ID)
	}
}

func TestPickerFilterMatchesDetail(t *testing.T) {
	p := NewPicker("provider", "Select Provider", nil)
	p.SetItems(testPickerItems())
	p.Show()

	typeRunes(p, "claude")

	item, ok := p.Selected()
	if !ok || item.ID != "anthropic" {
		t.Errorf("detail filter should match anthropic, got %v", item.ID)
	}
}

func TestPickerFilterNoMatch(t *testing.T) {
	p := NewPicker("provider", "Select Provider", nil)
	p.SetItems(testPickerItems())
	p.Show()

	typeRunes(p, "zzz")

	if len(p.filtered) != 0 {
		t.Errorf("filter %q matched %d rows, want 0", "zzz", len(p.filtered))
	}
	if _, ok := p.Selected(); ok {
		t.Error("Selected() should report no item when nothing matches")
	}
	if view := p.View(); !strings.Contains(view, "Nothing matches") {
		t.Error("View() should show the empty state when nothing matches")
	}

	if cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("enter with no match should not emit a selection")
	}
}

func TestPickerNavigationWraps(t *testing.T) {
	p := NewPicker("model", "Select Model", nil)
	p.SetItems([]PickerItem{
		{ID: "a", Label: "alpha"},
		{ID: "b", Label: "beta"},
		{ID: "c", Label: "gamma"},
	})
	p.Show()

	p.Update(tea.KeyMsg{Type: tea.KeyUp})
	if item, _ := p.Selected(); item.ID != "c" {
		t.Errorf("up from first row should wrap to last, got %q", item.ID)
	}

	p.Update(tea.KeyMsg{Type: tea.KeyDown})
	if item, _ := p.Selected(); item.ID != "a" {
		t.Errorf("down from last row should wrap to first, got %q", item.ID)
	}

	p.Update(tea.KeyMsg{Type: tea.KeyDown})
	if item, _ := p.Selected(); item.ID != "b" {
		t.Errorf("down should advance to second row, got %q", item.ID)
	}
}

func TestPickerEnterEmitsSelection(t *testing.T) {
	p := NewPicker("provider", "Select Provider", nil)
	p.SetItems(testPickerItems())
	p.Show()

	cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should return a command")
	}

	msg, ok := cmd().(PickerSelectedMsg)
	if !ok {
		t.Fatalf("command returned %T, want PickerSelectedMsg", cmd())
	}
	if msg.Picker != "provider" {
		t.Errorf("PickerSelectedMsg.Picker = %q, want %q", msg.Picker, "provider")
	}
	if msg.Item.ID != "anthropic" {
		t.Errorf("PickerSelectedMsg.Item.ID = %q, want %q", msg.Item.ID, "anthropic")
	}
	if p.Visible() {
		t.Error("picker should hide after selection")
	}
}

func TestPickerEscEmitsDismissed(t *testing.T) {
	p := NewPicker("session", "Resume Session", nil)
	p.SetItems(testPickerItems())
	p.Show()

	cmd := p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("esc should return a command")
	}

	msg, ok := cmd().(PickerDismissedMsg)
	if !ok {
		t.Fatalf("command returned %T, want PickerDismissedMsg", cmd())
	}
	if msg.Picker != "session" {
		t.Errorf("PickerDismissedMsg.Picker = %q, want %q", msg.Picker, "session")
	}
	if p.Visible() {
		t.Error("picker should hide after esc")
	}
}

func TestPickerViewHiddenIsEmpty(t *testing.T) {
	p := NewPicker("provider", "Select Provider", nil)
	p.SetItems(testPickerItems())

	if view := p.View(); view != "" {
		t.Errorf("View() when hidden = %q, want empty string", view)
	}
}

func TestPickerViewShowsRows(t *testing.T) {
	p := NewPicker("provider", "Select Provider", nil)
	p.SetItems(testPickerItems())
	p.Show()

	view := p.View()
	if !strings.Contains(view, "Select Provider") {
		t.Error("View() should contain the title")
	}
	for _, label := range []string{"Google", "OpenAI", "Anthropic"} {
		if !strings.Contains(view, label) {
			t.Errorf("View() should contain row label %q", label)
		}
	}
}

func TestPickerViewCapsRows(t *testing.T) {
	items := make([]PickerItem, 14)
	for i := range items {
		items[i] = PickerItem{ID: toStr(i), Label: "model-" + toStr(i)}
	}

	p := NewPicker("model", "Select Model", nil)
	p.SetItems(items)
	p.Show()

	view := p.View()
	if !strings.Contains(view, "... 4 more") {
		t.Error("View() should show the overflow count for rows past the cap")
	}
	if strings.Contains(view, "model-13") {
		t.Error("View() should not render rows past the cap")
	}
}

func TestTruncateDetail(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"fits", "short", 10, "short"},
		{"exact", "exactly10!", 10, "exactly10!"},
		{"truncated", "this is a long detail line", 10, "this is..."},
		{"tiny max", "abcdef", 2, "ab"},
		{"unicode", "日本語のテキストです", 5, "日本..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateDetail(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("truncateDetail(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}
