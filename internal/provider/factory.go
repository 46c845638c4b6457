// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"fmt"
	"strings"
	"sync"
)

// BuildFunc constructs a Client for one provider. The factory hands it the
// provider's registry row, the validated model, the credential, and the
// session's system prompt.
type BuildFunc func(cfg Config, model, credential, systemPrompt string) Client

// Factory builds provider clients through a flat dispatch table.
//
// Provider dispatch is data, not control flow: every provider is a registry
// row plus one entry in the backends map. Adding a provider means calling
// Register, never adding a branch.
type Factory struct {
	mu       sync.RWMutex
	configs  []Config
	backends map[string]BuildFunc
}

// NewFactory creates a factory seeded with the static registry and the
// built-in wire backends.
func NewFactory() *Factory {
	return &Factory{
		configs: List(),
		backends: map[string]BuildFunc{
			"Google":     buildGemini,
			"OpenAI":     buildOpenAICompat(openAIBaseURL, nil),
			"Anthropic":  buildAnthropic,
			"Groq":       buildOpenAICompat(groqBaseURL, nil),
			"OpenRouter": buildOpenAICompat(openRouterBaseURL, openRouterHeaders()),
		},
	}
}

// Register adds a provider to this factory, or replaces it if the name is
// already present. Used by tests to stub backends.
func (f *Factory) Register(cfg Config, fn BuildFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, existing := range f.configs {
		if existing.Name == cfg.Name {
			f.configs[i] = cfg
			f.backends[cfg.Name] = fn
			return
		}
	}
	f.configs = append(f.configs, cfg)
	f.backends[cfg.Name] = fn
}

// Get returns the configuration for the named provider as this factory
// knows it, including any registered test providers.
func (f *Factory) Get(name string) (Config, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, cfg := range f.configs {
		if cfg.Name == name {
			return cfg, nil
		}
	}
	return Config{}, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
}

// List returns this factory's provider configurations in order.
func (f *Factory) List() []Config {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]Config, len(f.configs))
	copy(out, f.configs)
	return out
}

// Validate checks provider, model, and credential without building a
// client. Checks run in that order and the first failure wins.
func (f *Factory) Validate(providerName, model, credential string) error {
	cfg, err := f.Get(providerName)
	if err != nil {
		return err
	}
	if !cfg.HasModel(model) {
		return fmt.Errorf("%w: %s (provider %s)", ErrUnknownModel, model, providerName)
	}
	if strings.TrimSpace(credential) == "" {
		return fmt.Errorf("%w: set %s for %s", ErrMissingCredential, cfg.CredentialKey, providerName)
	}
	return nil
}

// Build validates the selection and constructs a client for it.
func (f *Factory) Build(providerName, model, credential, systemPrompt string) (Client, error) {
	if err := f.Validate(providerName, model, credential); err != nil {
		return nil, err
	}

	f.mu.RLock()
	var cfg Config
	for _, c := range f.configs {
		if c.Name == providerName {
			cfg = c
			break
		}
	}
	fn, ok := f.backends[providerName]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: no backend for %s", ErrUnknownProvider, providerName)
	}

	return fn(cfg, model, strings.TrimSpace(credential), systemPrompt), nil
}
