// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import "fmt"

// Config describes one provider: its display name, the environment key
// that holds its credential, and the models it serves in preference order.
type Config struct {
	Name          string
	CredentialKey string
	Models        []string
}

// DefaultModel returns the first model in the provider's list.
func (c Config) DefaultModel() string {
	if len(c.Models) == 0 {
		return ""
	}
	return c.Models[0]
}

// HasModel reports whether the provider lists the given model.
func (c Config) HasModel(model string) bool {
	for _, m := range c.Models {
		if m == model {
			return true
		}
	}
	return false
}

// registry is the static provider table. Order is presentation order.
var registry = []Config{
	{
		Name:          "Google",
		CredentialKey: "GEMINI_API_KEY",
		Models: []string{
			"gemini-3-pro",
			"gemini-3-flash",
			"gemini-2.5-pro",
			"gemini-2.5-flash",
			"gemini-2.5-flash-lite",
			"gemini-2.0-flash",
		},
	},
	{
		Name:          "OpenAI",
		CredentialKey: "OPENAI_API_KEY",
		Models: []string{
			"gpt-5.2",
			"gpt-5",
			"gpt-5-mini",
			"o3",
			"o3-mini",
			"o1",
			"gpt-4o",
		},
	},
	{
		Name:          "Anthropic",
		CredentialKey: "ANTHROPIC_API_KEY",
		Models: []string{
			"claude-opus-4.5",
			"claude-sonnet-4.5",
			"claude-haiku-4.5",
			"claude-opus-4",
			"claude-sonnet-4",
			"claude-3.5-sonnet-20241022",
		},
	},
	{
		Name:          "Groq",
		CredentialKey: "GROQ_API_KEY",
		Models: []string{
			"llama-4-maverick-17b-128e-instruct",
			"llama-4-scout-17b-16e-instruct",
			"llama-3.3-70b-versatile",
			"llama-3.3-70b-specdec",
			"deepseek-r1-distill-llama-70b",
			"qwen-qwq-32b",
			"mixtral-8x7b-32768",
		},
	},
	{
		Name:          "OpenRouter",
		CredentialKey: "OPENROUTER_API_KEY",
		Models: []string{
			"google/gemini-3-pro",
			"openai/gpt-5.2",
			"anthropic/claude-opus-4.5",
			"anthropic/claude-sonnet-4.5",
			"meta-llama/llama-4-maverick",
			"deepseek/deepseek-v3",
			"xai/grok-code-fast-1",
			"qwen/qwen-2.5-coder-32b-instruct",
			"mistralai/devstral-2",
		},
	},
}

// Get returns the configuration for the named provider.
func Get(name string) (Config, error) {
	for _, cfg := range registry {
		if cfg.Name == name {
			return cfg, nil
		}
	}
	return Config{}, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
}

// List returns all provider configurations in presentation order.
// The returned slice is a copy; callers may not mutate the registry.
func List() []Config {
	out := make([]Config, len(registry))
	copy(out, registry)
	return out
}

// Names returns the provider names in presentation order.
func Names() []string {
	names := make([]string, len(registry))
	for i, cfg := range registry {
		names[i] = cfg.Name
	}
	return names
}
