// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat implements the interactive terminal chat screen.

The screen is a single Bubble Tea model wrapping a session manager. One
session is active at a time; pickers switch the provider, the model
within it, and the stored session being resumed, and a masked prompt
captures API keys without ever echoing them.

## Turn handling

Submitting input starts the turn on its own goroutine, which reports
back to the event loop exclusively through program.Send:

	StreamFragmentMsg   one reply fragment, buffered until the next tick
	StreamTickMsg       drains the buffer at a capped repaint rate
	TurnDoneMsg         the turn returned; the conversation is final

While the turn runs, the conversation belongs to that goroutine. The
model therefore renders a snapshot taken at submit time plus two bubbles
only the UI knows about: the echoed user message and the accumulating
reply. When TurnDoneMsg lands the snapshot is dropped and the real
conversation, which now contains the outcome, takes over. Nothing is
shared, so nothing needs locking.

Esc cancels the live turn through the session, which owns the context
the provider call runs under.

## Wiring

	m := chat.New(manager, creds, cfg, version)
	p := tea.NewProgram(m, tea.WithAltScreen())
	m.SetProgram(p)
	_, err := p.Run()

SetProgram must come before Run; turn goroutines are inert without it.
*/
package chat
