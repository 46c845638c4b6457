// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model defines the core chat data types: message roles, messages
// (including streaming assembly), and the conversation that owns them.
//
// Everything here is plain data with small methods. Mutation of a live
// conversation during a turn belongs to the flow package; the UI and CLI
// layers only read these types.
package model
