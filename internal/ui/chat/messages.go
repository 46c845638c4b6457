// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import "time"

// =============================================================================
// TURN MESSAGES
// =============================================================================
//
// A running turn lives on its own goroutine and reaches the event loop
// only through program.Send. It never touches the Model directly; these
// messages are the whole interface.

// StreamFragmentMsg carries one reply fragment from the turn goroutine.
// Seq names the turn it belongs to so fragments from a cancelled turn
// that race the cancellation are dropped instead of bleeding into the
// next reply.
type StreamFragmentMsg struct {
	Seq      int
	Fragment string
}

// TurnDoneMsg signals that the turn goroutine returned. Err carries the
// flow error verbatim; by the time this arrives the conversation already
// holds the outcome as either a complete assistant message or an error
// message, so the handler re-reads it rather than reconstructing state
// from fragments.
type TurnDoneMsg struct {
	Seq int
	Err error
}

// StreamTickMsg drives batched flushes of buffered fragments to the
// viewport while a turn is live.
type StreamTickMsg time.Time

// CredentialsReloadedMsg reports that the credential file changed on
// disk and the store picked up the new values. Sent by the file watcher
// wired up in main.
type CredentialsReloadedMsg struct{}
