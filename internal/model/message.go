// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/jeranaias/parley/internal/util"
)

// =============================================================================
// ROLES
// =============================================================================

// Role identifies the author of a message.
type Role string

const (
	// RoleUser is a message typed by the user.
	RoleUser Role = "user"

	// RoleAssistant is a reply produced by a provider model.
	RoleAssistant Role = "assistant"

	// RoleSystem is the system prompt steering the model.
	RoleSystem Role = "system"

	// RoleError records a failed turn. Error messages live in the history
	// like any other message but are never sent upstream.
	RoleError Role = "error"
)

// DisplayName returns the label shown for this role in the UI.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	case RoleError:
		return "Error"
	default:
		return string(r)
	}
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem, RoleError:
		return true
	}
	return false
}

// =============================================================================
// STATISTICS
// =============================================================================

// Statistics captures per-reply generation metrics, filled in when a
// streamed assistant message is finalized.
type Statistics struct {
	PromptTokens     int           `json:"prompt_tokens,omitempty"`
	CompletionTokens int           `json:"completion_tokens,omitempty"`
	TimeToFirstToken time.Duration `json:"time_to_first_token,omitempty"`
	TotalDuration    time.Duration `json:"total_duration,omitempty"`
	TokensPerSecond  float64       `json:"tokens_per_second,omitempty"`
}

// =============================================================================
// MESSAGE
// =============================================================================

// Message is one entry in a conversation. Messages are immutable once
// finalized; a streaming assistant message assembles its content through
// AppendFragment until FinalizeStream is called.
type Message struct {
	ID        string      `json:"id"`
	Role      Role        `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
	Stats     *Statistics `json:"stats,omitempty"`

	// IsStreaming marks an assistant message still being assembled.
	IsStreaming bool `json:"-"`

	streamContent strings.Builder
}

// NewUserMessage creates a finalized user message.
func NewUserMessage(content string) *Message {
	return &Message{
		ID:        generateMessageID(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewAssistantMessage creates an assistant message in streaming state.
// Callers append fragments as they arrive and finalize when the reply is
// complete.
func NewAssistantMessage() *Message {
	return &Message{
		ID:          generateMessageID(),
		Role:        RoleAssistant,
		Timestamp:   time.Now(),
		IsStreaming: true,
	}
}

// NewCompleteAssistantMessage creates a finalized assistant message with
// its full content, for non-streaming replies and restored history.
func NewCompleteAssistantMessage(content string) *Message {
	return &Message{
		ID:        generateMessageID(),
		Role:      RoleAssistant,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewSystemMessage creates a finalized system message.
func NewSystemMessage(content string) *Message {
	return &Message{
		ID:        generateMessageID(),
		Role:      RoleSystem,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewErrorMessage creates a finalized error message carrying the reason a
// turn failed.
func NewErrorMessage(reason string) *Message {
	return &Message{
		ID:        generateMessageID(),
		Role:      RoleError,
		Content:   reason,
		Timestamp: time.Now(),
	}
}

// AppendFragment adds an incremental piece of a streamed reply. No-op on
// finalized messages.
func (m *Message) AppendFragment(fragment string) {
	if !m.IsStreaming {
		return
	}
	m.streamContent.WriteString(fragment)
}

// FinalizeStream completes a streaming message: accumulated fragments
// become the content and stats, if any, are attached.
func (m *Message) FinalizeStream(stats *Statistics) {
	if !m.IsStreaming {
		return
	}
	m.Content = m.streamContent.String()
	m.streamContent.Reset()
	m.IsStreaming = false
	m.Stats = stats
}

// DisplayContent returns what the UI should render right now: the partial
// stream for an in-flight message, the final content otherwise.
func (m *Message) DisplayContent() string {
	if m.IsStreaming {
		return m.streamContent.String()
	}
	return m.Content
}

// Preview returns the first maxLen characters of the content, rune-safe,
// with newlines flattened. Used for titles and list rows.
func (m *Message) Preview(maxLen int) string {
	content := strings.ReplaceAll(m.DisplayContent(), "\n", " ")
	return util.TruncateRunes(content, maxLen)
}

// EstimateTokens gives a rough token count for the content, good enough
// for context-size displays.
func (m *Message) EstimateTokens() int {
	return (len(m.DisplayContent()) + 3) / 4
}

// generateMessageID returns a random id like "msg_a1b2c3d4e5f6a7b8".
func generateMessageID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "msg_" + hex.EncodeToString([]byte(time.Now().Format("150405.000")))
	}
	return "msg_" + hex.EncodeToString(b)
}
