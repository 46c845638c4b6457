// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// helpers.go - Shared helper functions used across CLI commands.

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jeranaias/parley/internal/config"
	"github.com/jeranaias/parley/internal/credential"
	"github.com/jeranaias/parley/internal/provider"
	"github.com/jeranaias/parley/internal/storage"
)

// loadConfigOrDefault loads the configuration, falling back to defaults
// with a stderr warning when the file is broken. CLI commands keep
// working on a bad config file; only "config set" refuses to.
func loadConfigOrDefault() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		return config.Default()
	}
	return cfg
}

// openCredentials builds the credential store from the configured path.
func openCredentials(cfg *config.Config) (*credential.Store, error) {
	path, err := cfg.CredentialsPath()
	if err != nil {
		return nil, fmt.Errorf("resolve credentials path: %w", err)
	}
	return credential.NewStore(path), nil
}

// openHistory opens the history store. Returns an error when history is
// disabled so callers produce one consistent message.
func openHistory(cfg *config.Config) (*storage.Store, error) {
	if !cfg.History.Enabled {
		return nil, fmt.Errorf("history is disabled (set history.enabled = true in %s)", configPathForDisplay())
	}
	path, err := cfg.HistoryPath()
	if err != nil {
		return nil, fmt.Errorf("resolve history path: %w", err)
	}
	store, err := storage.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	return store, nil
}

// openHistoryIfEnabled opens the history store, or (nil, nil) when
// history is disabled. Callers that can run without persistence use
// this instead of openHistory.
func openHistoryIfEnabled(cfg *config.Config) (*storage.Store, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}
	return openHistory(cfg)
}

// configPathForDisplay returns the config file path or a placeholder.
func configPathForDisplay() string {
	path, err := config.ConfigPath()
	if err != nil {
		return "~/.parley/config.toml"
	}
	return path
}

// resolveProviderArg matches a provider name case-insensitively against
// the registry. The registry itself is exact-match; the CLI is where
// "anthropic" becomes "Anthropic".
func resolveProviderArg(name string) (provider.Config, error) {
	for _, cfg := range provider.List() {
		if strings.EqualFold(cfg.Name, name) {
			return cfg, nil
		}
	}
	return provider.Config{}, fmt.Errorf("unknown provider %q (have: %s)",
		name, strings.Join(provider.Names(), ", "))
}

// ResolveSelection picks the provider and model for a turn from flags
// and config. Provider names fold case; models stay exact because the
// registry lists them exactly as the APIs expect them.
func ResolveSelection(cfg *config.Config, args Args) (provider.Config, string, error) {
	name := cfg.DefaultProvider
	if args.Provider != "" {
		name = args.Provider
	}

	pcfg, err := resolveProviderArg(name)
	if err != nil {
		return provider.Config{}, "", err
	}

	modelName := args.Model
	if modelName == "" {
		// The configured default model only applies to the configured
		// default provider; any other provider starts on its first model.
		if strings.EqualFold(cfg.DefaultProvider, pcfg.Name) {
			modelName = cfg.ResolveModel()
		}
		if modelName == "" {
			modelName = pcfg.DefaultModel()
		}
	}

	if !pcfg.HasModel(modelName) {
		return provider.Config{}, "", fmt.Errorf("%w: %s does not serve %q (models: %s)",
			provider.ErrUnknownModel, pcfg.Name, modelName, strings.Join(pcfg.Models, ", "))
	}

	return pcfg, modelName, nil
}

// outputJSON outputs data as indented JSON on stdout.
func outputJSON(data interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// formatDurationShort formats a short duration string.
func formatDurationShort(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}

// formatTimeAgo formats a time as a relative duration.
func formatTimeAgo(t time.Time) string {
	duration := time.Since(t)

	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		mins := int(duration.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case duration < 24*time.Hour:
		hours := int(duration.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case duration < 7*24*time.Hour:
		days := int(duration.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	case duration < 30*24*time.Hour:
		weeks := int(duration.Hours() / 24 / 7)
		if weeks == 1 {
			return "1 week ago"
		}
		return fmt.Sprintf("%d weeks ago", weeks)
	default:
		months := int(duration.Hours() / 24 / 30)
		if months == 1 {
			return "1 month ago"
		}
		return fmt.Sprintf("%d months ago", months)
	}
}
