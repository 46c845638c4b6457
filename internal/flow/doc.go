// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package flow runs one conversation turn as an explicit state machine.
//
// A turn moves Validate -> Generate -> Done, detouring through Error on
// any failure. Validation failures never reach the network, generation is
// all-or-nothing (the assistant message is appended only from a complete
// reply), and a failed turn is terminal: retry means a new user turn.
package flow
