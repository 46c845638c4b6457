// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// CONVERSATION
// =============================================================================

// DefaultTitle is the title of a conversation before the first user
// message names it.
const DefaultTitle = "New Chat"

// titleLen is how many characters of the first user message become the
// conversation title.
const titleLen = 40

// maxMessages bounds the in-memory history; the oldest non-system
// messages are pruned past it.
const maxMessages = 1000

// Conversation holds the ordered message history of one chat session
// together with its active provider/model selection.
//
// During a turn the flow package is the only writer. Provider and Model
// must stay valid against the provider registry; the session layer
// guarantees that on every switch.
type Conversation struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Messages  []*Message `json:"messages"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Provider and Model are the active selection for the next turn.
	Provider string `json:"provider"`
	Model    string `json:"model"`

	// SystemPrompt steers the model; empty means none.
	SystemPrompt string `json:"system_prompt,omitempty"`

	// LastError holds the reason of the most recent failed turn, cleared
	// on the next successful one.
	LastError string `json:"-"`
}

// NewConversation creates an empty conversation for the given selection.
func NewConversation(provider, model string) *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        uuid.NewString(),
		Title:     DefaultTitle,
		Messages:  make([]*Message, 0, 16),
		CreatedAt: now,
		UpdatedAt: now,
		Provider:  provider,
		Model:     model,
	}
}

// AddMessage appends a message, refreshes UpdatedAt, and titles the
// conversation from the first user message.
func (c *Conversation) AddMessage(msg *Message) {
	if msg == nil {
		return
	}
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()
	c.updateTitle()
	c.prune()
}

// LastMessage returns the most recent message, or nil when empty.
func (c *Conversation) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// LastAssistantMessage returns the most recent assistant message, or nil.
func (c *Conversation) LastAssistantMessage() *Message {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleAssistant {
			return c.Messages[i]
		}
	}
	return nil
}

// Clear empties the history and the error state while keeping the
// provider/model selection and system prompt.
func (c *Conversation) Clear() {
	c.Messages = c.Messages[:0]
	c.Title = DefaultTitle
	c.LastError = ""
	c.UpdatedAt = time.Now()
}

// Clone returns a deep copy, used when a snapshot must outlive the live
// conversation (exports, persistence).
func (c *Conversation) Clone() *Conversation {
	clone := *c
	clone.Messages = make([]*Message, len(c.Messages))
	for i, msg := range c.Messages {
		m := *msg
		clone.Messages[i] = &m
	}
	return &clone
}

// updateTitle derives the title from the first user message the first
// time one appears.
func (c *Conversation) updateTitle() {
	if c.Title != DefaultTitle {
		return
	}
	for _, msg := range c.Messages {
		if msg.Role == RoleUser {
			if title := msg.Preview(titleLen); title != "" {
				c.Title = title
			}
			return
		}
	}
}

// prune drops the oldest non-system messages once the cap is exceeded.
func (c *Conversation) prune() {
	if len(c.Messages) <= maxMessages {
		return
	}
	overflow := len(c.Messages) - maxMessages
	kept := make([]*Message, 0, maxMessages)
	for _, msg := range c.Messages {
		if overflow > 0 && msg.Role != RoleSystem {
			overflow--
			continue
		}
		kept = append(kept, msg)
	}
	c.Messages = kept
}

// =============================================================================
// METADATA
// =============================================================================

// ConversationMeta is the list-row view of a conversation.
type ConversationMeta struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Meta returns the metadata snapshot for list displays.
func (c *Conversation) Meta() ConversationMeta {
	return ConversationMeta{
		ID:           c.ID,
		Title:        c.Title,
		Provider:     c.Provider,
		Model:        c.Model,
		MessageCount: len(c.Messages),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}
