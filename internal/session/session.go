// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jeranaias/parley/internal/flow"
	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/provider"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrTurnActive is returned when an operation would race a turn that
	// is still generating.
	ErrTurnActive = errors.New("a turn is already in progress")

	// ErrSessionNotFound is returned when no open session has the given id.
	ErrSessionNotFound = errors.New("session not found")
)

// =============================================================================
// CHAT SESSION
// =============================================================================

// ChatSession owns one conversation and runs turns against it.
//
// The flow is the only conversation writer while a turn is active, so
// every mutating operation here takes the lock and refuses to run
// mid-turn.
type ChatSession struct {
	mu      sync.Mutex
	conv    *model.Conversation
	factory *provider.Factory
	flow    *flow.Flow

	stream     bool
	turnActive bool
	cancelTurn context.CancelFunc
	dirty      bool
}

// newChatSession wraps an existing conversation. Callers validate the
// provider/model selection first.
func newChatSession(factory *provider.Factory, fl *flow.Flow, conv *model.Conversation) *ChatSession {
	return &ChatSession{
		conv:    conv,
		factory: factory,
		flow:    fl,
		stream:  true,
	}
}

// ID returns the session id.
func (s *ChatSession) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.ID
}

// Conversation returns the live conversation. Read-only for callers; a
// running turn is the only writer.
func (s *ChatSession) Conversation() *model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv
}

// Meta returns the list-row snapshot of the conversation.
func (s *ChatSession) Meta() model.ConversationMeta {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.Meta()
}

// Selection returns the active provider and model.
func (s *ChatSession) Selection() (providerName, modelName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.Provider, s.conv.Model
}

// =============================================================================
// TURNS
// =============================================================================

// Submit runs one turn with the given input. Exactly one turn runs at a
// time; concurrent calls get ErrTurnActive. The conversation is updated
// in place by the flow (user message, then assistant or error message).
func (s *ChatSession) Submit(ctx context.Context, input string, onFragment func(string)) error {
	s.mu.Lock()
	if s.turnActive {
		s.mu.Unlock()
		return ErrTurnActive
	}
	s.turnActive = true
	runCtx, cancel := context.WithCancel(ctx)
	s.cancelTurn = cancel
	conv := s.conv
	opts := flow.Options{Stream: s.stream, OnFragment: onFragment}
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		s.turnActive = false
		s.cancelTurn = nil
		s.dirty = true
		s.mu.Unlock()
	}()

	_, err := s.flow.Run(runCtx, conv, input, opts)
	return err
}

// CancelTurn aborts the in-flight turn, if any. The turn finishes as
// cancelled through the normal flow path.
func (s *ChatSession) CancelTurn() {
	s.mu.Lock()
	cancel := s.cancelTurn
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// TurnActive reports whether a turn is generating right now.
func (s *ChatSession) TurnActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turnActive
}

// =============================================================================
// SELECTION
// =============================================================================

// SwitchProvider changes the active provider. The model always resets to
// the new provider's first listed model; keeping the old model would
// leave a selection the new provider cannot serve. History is kept.
func (s *ChatSession) SwitchProvider(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.turnActive {
		return ErrTurnActive
	}

	cfg, err := s.factory.Get(name)
	if err != nil {
		return err
	}
	s.conv.Provider = cfg.Name
	s.conv.Model = cfg.DefaultModel()
	s.dirty = true
	return nil
}

// SwitchModel changes the active model within the active provider.
func (s *ChatSession) SwitchModel(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.turnActive {
		return ErrTurnActive
	}

	cfg, err := s.factory.Get(s.conv.Provider)
	if err != nil {
		return err
	}
	if !cfg.HasModel(name) {
		return fmt.Errorf("%w: %s does not serve %s", provider.ErrUnknownModel, cfg.Name, name)
	}
	s.conv.Model = name
	s.dirty = true
	return nil
}

// SetSystemPrompt replaces the system prompt for subsequent turns.
func (s *ChatSession) SetSystemPrompt(prompt string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.turnActive {
		return ErrTurnActive
	}
	s.conv.SystemPrompt = prompt
	s.dirty = true
	return nil
}

// SetStreaming toggles fragment delivery for subsequent turns.
func (s *ChatSession) SetStreaming(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stream = on
}

// Streaming reports whether turns stream.
func (s *ChatSession) Streaming() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stream
}

// Clear empties the history while keeping the selection and system
// prompt.
func (s *ChatSession) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.turnActive {
		return ErrTurnActive
	}
	s.conv.Clear()
	s.dirty = true
	return nil
}

// =============================================================================
// DIRTY TRACKING
// =============================================================================

// IsDirty reports whether the session changed since the last save.
func (s *ChatSession) IsDirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// markClean records that the current state has been persisted.
func (s *ChatSession) markClean() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = false
}
