// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package provider defines the provider registry, the client factory, and
// the wire-level backends for each supported LLM API.
//
// The registry is a static ordered table: adding a provider means adding a
// row and registering a build function, never adding a branch. Three wire
// backends cover the five providers: openai-compatible (OpenAI, Groq,
// OpenRouter), anthropic, and gemini. All backends satisfy the same
// single-operation Client interface, so everything above this package is
// provider-agnostic.
package provider
