// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func typeKeyRunes(k *KeyPrompt, s string) {
	for _, r := range s {
		k.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// =============================================================================
// KEY PROMPT TESTS
// =============================================================================

func TestNewKeyPrompt(t *testing.T) {
	k := NewKeyPrompt(nil)

	if k.Visible() {
		t.Error("NewKeyPrompt() should not be visible initially")
	}
	if k.input.EchoMode != textinput.EchoPassword {
		t.Error("NewKeyPrompt() input must mask typed characters")
	}
	if k.input.EchoCharacter != '*' {
		t.Errorf("NewKeyPrompt() EchoCharacter = %q, want '*'", k.input.EchoCharacter)
	}
}

func TestKeyPromptShow(t *testing.T) {
	k := NewKeyPrompt(nil)

	cmd := k.Show("OpenAI", "OPENAI_API_KEY")
	if !k.Visible() {
		t.Error("Show() should make prompt visible")
	}
	if cmd == nil {
		t.Error("Show() should return the input focus command")
	}
	if k.Provider() != "OpenAI" {
		t.Errorf("Provider() = %q, want %q", k.Provider(), "OpenAI")
	}

	view := k.View()
	if !strings.Contains(view, "OpenAI") {
		t.Error("View() should name the provider")
	}
	if !strings.Contains(view, "OPENAI_API_KEY") {
		t.Error("View() should name the credential key")
	}
}

func TestKeyPromptEmptySubmit(t *testing.T) {
	k := NewKeyPrompt(nil)
	k.Show("Google", "GEMINI_API_KEY")

	cmd := k.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("empty submit should not emit a message")
	}
	if !k.Visible() {
		t.Error("prompt should stay open after an empty submit")
	}
	if !strings.Contains(k.View(), "Key cannot be empty") {
		t.Error("View() should show the empty key error")
	}

	typeKeyRunes(k, "x")
	if strings.Contains(k.View(), "Key cannot be empty") {
		t.Error("typing should clear the error")
	}
}

func TestKeyPromptSubmit(t *testing.T) {
	k := NewKeyPrompt(nil)
	k.Show("Anthropic", "ANTHROPIC_API_KEY")
	typeKeyRunes(k, "sk-ant-test123")

	cmd := k.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("submit should return a command")
	}

	msg, ok := cmd().(KeyPromptSubmittedMsg)
	if !ok {
		t.Fatalf("command returned %T, want KeyPromptSubmittedMsg", cmd())
	}
	if msg.Provider != "Anthropic" {
		t.Errorf("Provider = %q, want %q", msg.Provider, "Anthropic")
	}
	if msg.CredentialKey != "ANTHROPIC_API_KEY" {
		t.Errorf("CredentialKey = %q, want %q", msg.CredentialKey, "ANTHROPIC_API_KEY")
	}
	if msg.Secret != "sk-ant-test123" {
		t.Errorf("Secret = %q, want typed value", msg.Secret)
	}

	if k.Visible() {
		t.Error("prompt should hide after submit")
	}
	if k.input.Value() != "" {
		t.Error("input should be cleared after submit")
	}
}

func TestKeyPromptTrimsSecret(t *testing.T) {
	k := NewKeyPrompt(nil)
	k.Show("Groq", "GROQ_API_KEY")
	k.input.SetValue("  gsk_test  ")

	cmd := k.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("submit should return a command")
	}

	msg := cmd().(KeyPromptSubmittedMsg)
	if msg.Secret != "gsk_test" {
		t.Errorf("Secret = %q, want surrounding whitespace trimmed", msg.Secret)
	}
}

func TestKeyPromptEsc(t *testing.T) {
	k := NewKeyPrompt(nil)
	k.Show("OpenRouter", "OPENROUTER_API_KEY")
	typeKeyRunes(k, "sk-or-abc")

	cmd := k.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("esc should return a command")
	}
	if _, ok := cmd().(KeyPromptDismissedMsg); !ok {
		t.Fatalf("command returned %T, want KeyPromptDismissedMsg", cmd())
	}

	if k.Visible() {
		t.Error("prompt should hide after esc")
	}
	if k.input.Value() != "" {
		t.Error("cancel must clear the typed secret")
	}
}

func TestKeyPromptUpdateIgnoredWhenHidden(t *testing.T) {
	k := NewKeyPrompt(nil)

	if cmd := k.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("Update() should return nil when prompt is hidden")
	}
}

// The rendered overlay must never expose the typed secret.
func TestKeyPromptSecretNeverRendered(t *testing.T) {
	const secret = "sk-live-supersecret42"

	k := NewKeyPrompt(nil)
	k.Show("OpenAI", "OPENAI_API_KEY")
	typeKeyRunes(k, secret)

	view := k.View()
	if strings.Contains(view, secret) {
		t.Fatal("View() must not contain the plaintext secret")
	}
	if !strings.Contains(view, strings.Repeat("*", len(secret))) {
		t.Error("View() should echo one mask character per typed character")
	}
}
