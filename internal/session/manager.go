// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"fmt"
	"sort"

	"github.com/jeranaias/parley/internal/flow"
	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/provider"
	"github.com/jeranaias/parley/internal/storage"
)

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager tracks open chat sessions and the active one, and bridges
// them to the history store when one is attached.
type Manager struct {
	factory *provider.Factory
	flow    *flow.Flow
	store   *storage.Store // nil disables persistence

	sessions map[string]*ChatSession
	activeID string
}

// NewManager creates a session manager. store may be nil when history
// persistence is disabled.
func NewManager(factory *provider.Factory, fl *flow.Flow, store *storage.Store) *Manager {
	return &Manager{
		factory:  factory,
		flow:     fl,
		store:    store,
		sessions: make(map[string]*ChatSession),
	}
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Create opens a new session for the given selection and makes it
// active. An empty modelName selects the provider's first listed model.
func (m *Manager) Create(providerName, modelName string) (*ChatSession, error) {
	cfg, err := m.factory.Get(providerName)
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = cfg.DefaultModel()
	} else if !cfg.HasModel(modelName) {
		return nil, fmt.Errorf("%w: %s does not serve %s", provider.ErrUnknownModel, cfg.Name, modelName)
	}

	conv := model.NewConversation(cfg.Name, modelName)
	sess := newChatSession(m.factory, m.flow, conv)
	m.sessions[conv.ID] = sess
	m.activeID = conv.ID
	return sess, nil
}

// Get returns an open session by id.
func (m *Manager) Get(id string) (*ChatSession, error) {
	sess, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// Active returns the active session, or nil when none is open.
func (m *Manager) Active() *ChatSession {
	if m.activeID == "" {
		return nil
	}
	return m.sessions[m.activeID]
}

// SetActive switches the active session.
func (m *Manager) SetActive(id string) error {
	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	m.activeID = id
	return nil
}

// List returns metadata for all open sessions, most recently updated
// first.
func (m *Manager) List() []model.ConversationMeta {
	metas := make([]model.ConversationMeta, 0, len(m.sessions))
	for _, sess := range m.sessions {
		metas = append(metas, sess.Meta())
	}
	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.After(metas[j].UpdatedAt)
	})
	return metas
}

// Delete closes a session and removes its stored copy. Deleting the
// active session promotes the most recently updated survivor.
func (m *Manager) Delete(id string) error {
	_, open := m.sessions[id]
	if open {
		delete(m.sessions, id)
	}

	stored := false
	if m.store != nil {
		if err := m.store.Delete(id); err == nil {
			stored = true
		}
	}
	if !open && !stored {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	if m.activeID == id {
		m.activeID = ""
		if metas := m.List(); len(metas) > 0 {
			m.activeID = metas[0].ID
		}
	}
	return nil
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// Save persists one open session to the history store.
func (m *Manager) Save(id string) error {
	if m.store == nil {
		return nil
	}
	sess, err := m.Get(id)
	if err != nil {
		return err
	}
	if err := m.store.Save(sess.Conversation()); err != nil {
		return err
	}
	sess.markClean()
	return nil
}

// SaveDirty persists every open session that changed since its last
// save. Called on shutdown and after turns.
func (m *Manager) SaveDirty() error {
	if m.store == nil {
		return nil
	}
	var firstErr error
	for id, sess := range m.sessions {
		if !sess.IsDirty() {
			continue
		}
		if err := m.Save(id); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Resume loads a stored session, opens it, and makes it active.
func (m *Manager) Resume(id string) (*ChatSession, error) {
	if sess, ok := m.sessions[id]; ok {
		m.activeID = id
		return sess, nil
	}
	if m.store == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	conv, err := m.store.Load(id)
	if err != nil {
		return nil, err
	}
	sess := newChatSession(m.factory, m.flow, conv)
	m.sessions[conv.ID] = sess
	m.activeID = conv.ID
	return sess, nil
}

// Stored returns metadata for persisted sessions, most recent first.
func (m *Manager) Stored() ([]model.ConversationMeta, error) {
	if m.store == nil {
		return []model.ConversationMeta{}, nil
	}
	return m.store.List()
}

// SearchStored finds persisted sessions by title or message content.
func (m *Manager) SearchStored(query string) ([]model.ConversationMeta, error) {
	if m.store == nil {
		return []model.ConversationMeta{}, nil
	}
	return m.store.Search(query)
}
