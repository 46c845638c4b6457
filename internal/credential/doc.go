// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package credential resolves and stores provider API keys.
//
// Lookup order is session scope, then the durable env file, then the
// process environment; first hit wins. Writes land in the session scope
// immediately so a key entered mid-session works the same turn even when
// the durable write fails.
//
// SECURITY: Secret values are never logged or displayed after entry.
// Display sites use Mask, which shows only the length and a SHA-256
// fingerprint.
package credential
