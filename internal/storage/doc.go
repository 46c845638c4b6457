// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists chat sessions to a local SQLite database.
//
// One database file holds every session: a chat_sessions row per
// conversation and ordered chat_messages rows for its history. Saves
// replace a session's messages wholesale inside a transaction, so a
// stored session is always a consistent snapshot.
//
// The store also provides listing (most recent first), content search,
// and Markdown/JSON export of stored sessions.
package storage
