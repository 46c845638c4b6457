// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// keys_cmd.go - API key management for parley.
//
// Command: keys [subcommand]
//
// Subcommands:
//   list (default)      List providers and key status
//   set <provider|KEY>  Prompt for a key and store it
//   rm <provider|KEY>   Remove a stored key
//
// Examples:
//   parley keys                     List key status for all providers
//   parley keys set anthropic       Prompt for ANTHROPIC_API_KEY (hidden)
//   parley keys set GROQ_API_KEY    Address the env key directly
//   parley keys rm openai           Remove the stored OpenAI key
//
// SECURITY: Secrets are read through a hidden terminal prompt and are
// never echoed back. Status output shows only length and a SHA-256
// fingerprint.

package cli

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/jeranaias/parley/internal/credential"
	"github.com/jeranaias/parley/internal/provider"
)

// HandleKeys handles the "keys" command.
func HandleKeys(args Args) error {
	cfg := loadConfigOrDefault()
	creds, err := openCredentials(cfg)
	if err != nil {
		return err
	}

	switch args.Subcommand {
	case "", "list", "ls":
		return handleKeysList(creds, args.JSON)
	case "set", "add":
		return handleKeysSet(creds, args.ConfigKey)
	case "rm", "remove", "unset":
		return handleKeysRemove(creds, args.ConfigKey)
	default:
		return fmt.Errorf("unknown keys subcommand: %s\nUsage: parley keys [list|set|rm]", args.Subcommand)
	}
}

// keyStatus is the JSON shape for one provider's key state.
type keyStatus struct {
	Provider      string `json:"provider"`
	CredentialKey string `json:"credential_key"`
	Set           bool   `json:"set"`
	Fingerprint   string `json:"fingerprint,omitempty"`
}

// handleKeysList shows key status for every provider.
func handleKeysList(creds *credential.Store, jsonMode bool) error {
	if jsonMode {
		statuses := make([]keyStatus, 0, len(provider.List()))
		for _, pcfg := range provider.List() {
			status := keyStatus{Provider: pcfg.Name, CredentialKey: pcfg.CredentialKey}
			if secret, ok := creds.Get(pcfg.CredentialKey); ok {
				status.Set = true
				status.Fingerprint = credential.Fingerprint(secret)
			}
			statuses = append(statuses, status)
		}
		return outputJSON(statuses)
	}

	fmt.Println()
	fmt.Println(TitleStyle.Render("API Keys"))
	fmt.Println(RenderSeparator())
	fmt.Println()
	fmt.Printf("%-12s %-22s %s\n", "Provider", "Environment key", "Status")
	fmt.Println(SeparatorStyle.Render(strings.Repeat("-", 72)))

	for _, pcfg := range provider.List() {
		display := DimStyle.Render("[not set]")
		if secret, ok := creds.Get(pcfg.CredentialKey); ok {
			display = SuccessStyle.Render(credential.Mask(secret))
		}
		fmt.Printf("%-12s %-22s %s\n", pcfg.Name, pcfg.CredentialKey, display)
	}

	fmt.Println()
	fmt.Printf("Stored in: %s\n", DimStyle.Render(creds.Path()))
	fmt.Println(DimStyle.Render("Environment variables are used when no stored key exists."))
	fmt.Println()
	return nil
}

// handleKeysSet prompts for a secret and stores it.
func handleKeysSet(creds *credential.Store, target string) error {
	if target == "" {
		return fmt.Errorf("provider or key name required\nUsage: parley keys set <provider>")
	}

	key, providerName, err := resolveCredentialKey(target)
	if err != nil {
		return err
	}

	if err := RequiresTTY("enter an API key"); err != nil {
		return err
	}

	fmt.Printf("Enter %s for %s (input hidden): ", key, providerName)
	secretBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("read key: %w", err)
	}

	secret := strings.TrimSpace(string(secretBytes))
	if secret == "" {
		return fmt.Errorf("no key entered")
	}

	if err := creds.Set(key, secret); err != nil {
		return err
	}

	// SECURITY: echo the fingerprint, never the secret.
	fmt.Printf("%s %s saved (%s)\n",
		SuccessStyle.Render("[OK]"), key, credential.Fingerprint(secret))
	return nil
}

// handleKeysRemove deletes a stored secret.
func handleKeysRemove(creds *credential.Store, target string) error {
	if target == "" {
		return fmt.Errorf("provider or key name required\nUsage: parley keys rm <provider>")
	}

	key, _, err := resolveCredentialKey(target)
	if err != nil {
		return err
	}

	// Keys() covers the stored scopes only; a value inherited from the
	// process environment is not ours to remove.
	stored := false
	for _, k := range creds.Keys() {
		if k == key {
			stored = true
			break
		}
	}
	if !stored {
		if _, ok := creds.Get(key); ok {
			return fmt.Errorf("%s comes from the environment; unset the variable instead", key)
		}
		return fmt.Errorf("%s is not set", key)
	}

	if err := creds.Unset(key); err != nil {
		return err
	}

	fmt.Printf("%s %s removed\n", SuccessStyle.Render("[OK]"), key)
	return nil
}

// resolveCredentialKey maps a provider name or environment key name to
// the registry's credential key. Both fold case.
func resolveCredentialKey(target string) (key, providerName string, err error) {
	for _, pcfg := range provider.List() {
		if strings.EqualFold(pcfg.Name, target) || strings.EqualFold(pcfg.CredentialKey, target) {
			return pcfg.CredentialKey, pcfg.Name, nil
		}
	}
	return "", "", fmt.Errorf("unknown provider or key %q (have: %s)",
		target, strings.Join(provider.Names(), ", "))
}
