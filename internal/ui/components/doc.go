// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the visual UI components for the parley TUI.

Each component is a small, self-contained piece built on Bubble Tea and
Lip Gloss, styled through the shared styles package.

# Display Components

StatusBar (statusbar.go) - Bottom bar with provider, model, stream state,
token usage, and generation status.
MessageBubble (message.go) - Styled bubbles for user, assistant, system,
and error messages.
CodeBlock (codeblock.go) - Syntax-highlighted code blocks using Chroma.
Welcome (welcome.go) - First-run welcome screen.

# Overlays

Picker (picker.go) - Filterable selection list for providers, models,
and stored sessions.
KeyPrompt (keyprompt.go) - Masked API key entry; the typed secret is
never rendered.

# Progress

Spinner (spinner.go) - Animated waiting indicator shown while a reply
is generating.

# Theme Integration

Components take a *styles.Theme at construction:

	theme := styles.NewTheme("dark")
	bar := components.NewStatusBar(theme)
	bar.SetSelection("Google", "gemini-3-pro")
	view := bar.View()

Interactive components follow the Bubble Tea Update/View shape and
report results to the parent model through typed messages
(PickerSelectedMsg, KeyPromptSubmittedMsg).
*/
package components
