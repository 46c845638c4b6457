// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
)

func TestNewConversation(t *testing.T) {
	conv := NewConversation("Google", "gemini-3-pro")

	if conv.ID == "" {
		t.Error("ID not assigned")
	}
	if conv.Title != DefaultTitle {
		t.Errorf("Title = %q, want %q", conv.Title, DefaultTitle)
	}
	if conv.Provider != "Google" || conv.Model != "gemini-3-pro" {
		t.Errorf("Selection = %s/%s", conv.Provider, conv.Model)
	}
	if len(conv.Messages) != 0 {
		t.Errorf("New conversation has %d messages", len(conv.Messages))
	}
}

func TestConversation_AddMessageUpdatesTimestamp(t *testing.T) {
	conv := NewConversation("Google", "gemini-3-pro")
	before := conv.UpdatedAt

	conv.AddMessage(NewUserMessage("hello"))

	if len(conv.Messages) != 1 {
		t.Fatalf("Messages = %d, want 1", len(conv.Messages))
	}
	if conv.UpdatedAt.Before(before) {
		t.Error("UpdatedAt not refreshed")
	}
}

func TestConversation_TitleFromFirstUserMessage(t *testing.T) {
	conv := NewConversation("OpenAI", "gpt-5")

	conv.AddMessage(NewSystemMessage("You are helpful."))
	if conv.Title != DefaultTitle {
		t.Errorf("System message set title: %q", conv.Title)
	}

	conv.AddMessage(NewUserMessage("Explain the borrow checker to me please, in detail"))
	if conv.Title == DefaultTitle {
		t.Fatal("First user message did not set title")
	}
	if got := len([]rune(conv.Title)); got > 40 {
		t.Errorf("Title length = %d, want <= 40", got)
	}
	if !strings.HasSuffix(conv.Title, "...") {
		t.Errorf("Long title %q should end with ellipsis", conv.Title)
	}

	// Later user messages do not retitle.
	titled := conv.Title
	conv.AddMessage(NewUserMessage("another question"))
	if conv.Title != titled {
		t.Errorf("Title changed on second user message: %q", conv.Title)
	}
}

func TestConversation_ShortTitleKeptWhole(t *testing.T) {
	conv := NewConversation("Groq", "llama-3.3-70b-versatile")
	conv.AddMessage(NewUserMessage("hi"))

	if conv.Title != "hi" {
		t.Errorf("Title = %q, want %q", conv.Title, "hi")
	}
}

func TestConversation_Clear(t *testing.T) {
	conv := NewConversation("Anthropic", "claude-opus-4.5")
	conv.AddMessage(NewUserMessage("hello"))
	conv.AddMessage(NewCompleteAssistantMessage("hi there"))
	conv.LastError = "previous failure"

	conv.Clear()

	if len(conv.Messages) != 0 {
		t.Errorf("Messages = %d after Clear, want 0", len(conv.Messages))
	}
	if conv.Title != DefaultTitle {
		t.Errorf("Title = %q after Clear, want %q", conv.Title, DefaultTitle)
	}
	if conv.LastError != "" {
		t.Errorf("LastError = %q after Clear", conv.LastError)
	}
	if conv.Provider != "Anthropic" || conv.Model != "claude-opus-4.5" {
		t.Error("Clear must keep the provider/model selection")
	}
}

func TestConversation_LastMessageHelpers(t *testing.T) {
	conv := NewConversation("Google", "gemini-3-flash")
	if conv.LastMessage() != nil {
		t.Error("LastMessage of empty conversation should be nil")
	}
	if conv.LastAssistantMessage() != nil {
		t.Error("LastAssistantMessage of empty conversation should be nil")
	}

	conv.AddMessage(NewUserMessage("q1"))
	conv.AddMessage(NewCompleteAssistantMessage("a1"))
	conv.AddMessage(NewUserMessage("q2"))

	if got := conv.LastMessage().Content; got != "q2" {
		t.Errorf("LastMessage = %q, want %q", got, "q2")
	}
	if got := conv.LastAssistantMessage().Content; got != "a1" {
		t.Errorf("LastAssistantMessage = %q, want %q", got, "a1")
	}
}

func TestConversation_Clone(t *testing.T) {
	conv := NewConversation("Google", "gemini-3-pro")
	conv.AddMessage(NewUserMessage("original"))

	clone := conv.Clone()
	clone.Messages[0].Content = "mutated"
	clone.AddMessage(NewUserMessage("extra"))

	if conv.Messages[0].Content != "original" {
		t.Error("Clone shares message storage with the original")
	}
	if len(conv.Messages) != 1 {
		t.Errorf("Original grew to %d messages", len(conv.Messages))
	}
}

func TestConversation_Meta(t *testing.T) {
	conv := NewConversation("Groq", "qwen-qwq-32b")
	conv.AddMessage(NewUserMessage("hello"))
	conv.AddMessage(NewCompleteAssistantMessage("hi"))

	meta := conv.Meta()
	if meta.ID != conv.ID || meta.Title != conv.Title {
		t.Error("Meta identity fields mismatch")
	}
	if meta.MessageCount != 2 {
		t.Errorf("MessageCount = %d, want 2", meta.MessageCount)
	}
	if meta.Provider != "Groq" || meta.Model != "qwen-qwq-32b" {
		t.Error("Meta selection fields mismatch")
	}
}
