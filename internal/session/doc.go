// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session manages live chat sessions.
//
// A ChatSession owns one conversation and serializes turns against it:
// Submit rejects overlapping calls with ErrTurnActive, and selection
// changes (provider, model, system prompt) are refused while a turn is
// in flight. Switching provider always resets the model to the new
// provider's first listed model; the conversation history is kept.
//
// The Manager tracks every open session, the active one, and glues
// sessions to the history store for persistence and resume.
package session
