// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/parley/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrSessionNotFound is returned when no stored session has the given id.
	ErrSessionNotFound = errors.New("session not found")
)

// =============================================================================
// SCHEMA
// =============================================================================

// SchemaVersion tracks the database schema version for migrations.
const SchemaVersion = 1

const schema = `
-- Metadata table for schema version
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

-- Sessions table: one row per conversation
CREATE TABLE IF NOT EXISTS chat_sessions (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    provider TEXT NOT NULL,
    model TEXT NOT NULL,
    system_prompt TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,  -- Unix milliseconds
    updated_at INTEGER NOT NULL   -- Unix milliseconds
);

CREATE INDEX IF NOT EXISTS idx_sessions_updated ON chat_sessions(updated_at);

-- Messages table: ordered history per session
CREATE TABLE IF NOT EXISTS chat_messages (
    session_id TEXT NOT NULL,
    seq INTEGER NOT NULL,
    msg_id TEXT NOT NULL,
    role TEXT NOT NULL,           -- user, assistant, system, error
    content TEXT NOT NULL,
    created_at INTEGER NOT NULL,  -- Unix milliseconds
    prompt_tokens INTEGER NOT NULL DEFAULT 0,
    completion_tokens INTEGER NOT NULL DEFAULT 0,
    duration_ms INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (session_id, seq),
    FOREIGN KEY(session_id) REFERENCES chat_sessions(id) ON DELETE CASCADE
);
`

const initMetadata = `
INSERT OR IGNORE INTO metadata (key, value) VALUES ('schema_version', '1');
`

// =============================================================================
// HISTORY STORE
// =============================================================================

// Store persists chat sessions to a SQLite database.
type Store struct {
	db   *sql.DB
	path string

	// MaxSessions limits stored sessions (0 = unlimited). The oldest
	// sessions past the limit are pruned on save.
	MaxSessions int
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON", // Enable cascade delete of messages
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	store := &Store{
		db:          db,
		path:        path,
		MaxSessions: 100,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the database schema.
func (s *Store) initSchema() error {
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	_, err := s.db.Exec(initMetadata)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// =============================================================================
// SAVE
// =============================================================================

// Save persists a conversation, replacing any previous snapshot of the
// same session. In-flight streaming messages are skipped; only finalized
// content is stored.
func (s *Store) Save(conv *model.Conversation) error {
	if conv == nil {
		return errors.New("conversation cannot be nil")
	}
	if conv.ID == "" {
		return errors.New("conversation has no id")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO chat_sessions (id, title, provider, model, system_prompt, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			provider = excluded.provider,
			model = excluded.model,
			system_prompt = excluded.system_prompt,
			updated_at = excluded.updated_at`,
		conv.ID, conv.Title, conv.Provider, conv.Model, conv.SystemPrompt,
		conv.CreatedAt.UnixMilli(), conv.UpdatedAt.UnixMilli())
	if err != nil {
		return err
	}

	if _, err := tx.Exec("DELETE FROM chat_messages WHERE session_id = ?", conv.ID); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO chat_messages
			(session_id, seq, msg_id, role, content, created_at, prompt_tokens, completion_tokens, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	seq := 0
	for _, msg := range conv.Messages {
		if msg.IsStreaming {
			continue
		}
		var promptTokens, completionTokens int
		var durationMs int64
		if msg.Stats != nil {
			promptTokens = msg.Stats.PromptTokens
			completionTokens = msg.Stats.CompletionTokens
			durationMs = msg.Stats.TotalDuration.Milliseconds()
		}
		if _, err := stmt.Exec(
			conv.ID, seq, msg.ID, string(msg.Role), msg.Content,
			msg.Timestamp.UnixMilli(), promptTokens, completionTokens, durationMs,
		); err != nil {
			return err
		}
		seq++
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	if s.MaxSessions > 0 {
		s.enforceLimit()
	}
	return nil
}

// enforceLimit prunes the oldest sessions past MaxSessions. Messages go
// with them via cascade delete.
func (s *Store) enforceLimit() {
	s.db.Exec(`
		DELETE FROM chat_sessions WHERE id IN (
			SELECT id FROM chat_sessions
			ORDER BY updated_at DESC
			LIMIT -1 OFFSET ?
		)`, s.MaxSessions)
}

// =============================================================================
// LOAD
// =============================================================================

// Load retrieves a stored session by id.
func (s *Store) Load(id string) (*model.Conversation, error) {
	row := s.db.QueryRow(`
		SELECT id, title, provider, model, system_prompt, created_at, updated_at
		FROM chat_sessions WHERE id = ?`, id)

	var conv model.Conversation
	var createdAt, updatedAt int64
	err := row.Scan(&conv.ID, &conv.Title, &conv.Provider, &conv.Model,
		&conv.SystemPrompt, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	conv.CreatedAt = time.UnixMilli(createdAt)
	conv.UpdatedAt = time.UnixMilli(updatedAt)

	rows, err := s.db.Query(`
		SELECT msg_id, role, content, created_at, prompt_tokens, completion_tokens, duration_ms
		FROM chat_messages WHERE session_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var msg model.Message
		var role string
		var ts, durationMs int64
		var promptTokens, completionTokens int
		if err := rows.Scan(&msg.ID, &role, &msg.Content, &ts,
			&promptTokens, &completionTokens, &durationMs); err != nil {
			return nil, err
		}
		msg.Role = model.Role(role)
		msg.Timestamp = time.UnixMilli(ts)
		if promptTokens > 0 || completionTokens > 0 || durationMs > 0 {
			msg.Stats = &model.Statistics{
				PromptTokens:     promptTokens,
				CompletionTokens: completionTokens,
				TotalDuration:    time.Duration(durationMs) * time.Millisecond,
			}
		}
		conv.Messages = append(conv.Messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &conv, nil
}

// =============================================================================
// LIST
// =============================================================================

// List returns metadata for all stored sessions, most recent first.
func (s *Store) List() ([]model.ConversationMeta, error) {
	rows, err := s.db.Query(`
		SELECT s.id, s.title, s.provider, s.model, s.created_at, s.updated_at,
			(SELECT COUNT(*) FROM chat_messages m WHERE m.session_id = s.id)
		FROM chat_sessions s
		ORDER BY s.updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMetas(rows)
}

// Search finds sessions whose title or any message content contains the
// query, case-insensitive, most recent first.
func (s *Store) Search(query string) ([]model.ConversationMeta, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List()
	}
	pattern := "%" + strings.ToLower(query) + "%"

	rows, err := s.db.Query(`
		SELECT s.id, s.title, s.provider, s.model, s.created_at, s.updated_at,
			(SELECT COUNT(*) FROM chat_messages m WHERE m.session_id = s.id)
		FROM chat_sessions s
		WHERE lower(s.title) LIKE ?
			OR EXISTS (
				SELECT 1 FROM chat_messages m
				WHERE m.session_id = s.id AND lower(m.content) LIKE ?
			)
		ORDER BY s.updated_at DESC`, pattern, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMetas(rows)
}

func scanMetas(rows *sql.Rows) ([]model.ConversationMeta, error) {
	metas := []model.ConversationMeta{}
	for rows.Next() {
		var meta model.ConversationMeta
		var createdAt, updatedAt int64
		if err := rows.Scan(&meta.ID, &meta.Title, &meta.Provider, &meta.Model,
			&createdAt, &updatedAt, &meta.MessageCount); err != nil {
			return nil, err
		}
		meta.CreatedAt = time.UnixMilli(createdAt)
		meta.UpdatedAt = time.UnixMilli(updatedAt)
		metas = append(metas, meta)
	}
	return metas, rows.Err()
}

// =============================================================================
// DELETE
// =============================================================================

// Delete removes a stored session and its messages.
func (s *Store) Delete(id string) error {
	res, err := s.db.Exec("DELETE FROM chat_sessions WHERE id = ?", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return nil
}

// Clear removes all stored sessions.
func (s *Store) Clear() error {
	_, err := s.db.Exec("DELETE FROM chat_sessions")
	return err
}
