// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"time"
)

// Generation constants shared by all backends.
const (
	// DefaultTemperature is the sampling temperature for every request.
	DefaultTemperature = 0.7

	// DefaultMaxTokens is the completion cap for APIs that require one.
	DefaultMaxTokens = 4096

	// DefaultTimeout is the timeout for non-streaming API requests.
	DefaultTimeout = 120 * time.Second
)

// Message roles on the wire.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ChatMessage is a single message in the request payload.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UserMessage creates a user message.
func UserMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleUser, Content: content}
}

// AssistantMessage creates an assistant message.
func AssistantMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleAssistant, Content: content}
}

// SystemMessage creates a system message.
func SystemMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleSystem, Content: content}
}

// SendOptions controls delivery for a single Send call.
type SendOptions struct {
	// Stream selects incremental delivery. When true, OnFragment is
	// invoked for each piece of text as it arrives.
	Stream bool

	// OnFragment receives reply fragments during a streaming send.
	// Ignored when Stream is false. May be nil.
	OnFragment func(fragment string)
}

// emit forwards a fragment to the caller's sink if one is set.
func (o SendOptions) emit(fragment string) {
	if o.OnFragment != nil && fragment != "" {
		o.OnFragment(fragment)
	}
}

// Client sends one conversation to a provider and returns the reply.
//
// The returned string is always the complete reply: for streaming sends it
// is the concatenation of every fragment delivered through OnFragment.
// Cancel the context to abort an in-flight call.
type Client interface {
	Send(ctx context.Context, messages []ChatMessage, opts SendOptions) (string, error)
}
