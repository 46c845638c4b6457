// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// providers_cmd.go - Provider and model listing for parley.
//
// Command: providers
//
// Examples:
//   parley providers          List providers, models, and key status
//   parley providers --json   Same, machine-readable

package cli

import (
	"fmt"
	"strings"

	"github.com/jeranaias/parley/internal/credential"
	"github.com/jeranaias/parley/internal/provider"
)

// providerInfo is the JSON shape for one provider.
type providerInfo struct {
	Name          string   `json:"name"`
	CredentialKey string   `json:"credential_key"`
	KeySet        bool     `json:"key_set"`
	DefaultModel  string   `json:"default_model"`
	Models        []string `json:"models"`
}

// HandleProviders handles the "providers" command.
func HandleProviders(args Args) error {
	cfg := loadConfigOrDefault()
	creds, err := openCredentials(cfg)
	if err != nil {
		return err
	}

	if args.JSON {
		infos := make([]providerInfo, 0, len(provider.List()))
		for _, pcfg := range provider.List() {
			_, keySet := creds.Get(pcfg.CredentialKey)
			infos = append(infos, providerInfo{
				Name:          pcfg.Name,
				CredentialKey: pcfg.CredentialKey,
				KeySet:        keySet,
				DefaultModel:  pcfg.DefaultModel(),
				Models:        pcfg.Models,
			})
		}
		return outputJSON(infos)
	}

	return printProvidersText(cfg.DefaultProvider, creds)
}

// printProvidersText renders the provider table for humans.
func printProvidersText(defaultProvider string, creds *credential.Store) error {
	fmt.Println()
	fmt.Println(TitleStyle.Render("Providers"))
	fmt.Println(RenderSeparator())

	for _, pcfg := range provider.List() {
		fmt.Println()

		header := SectionStyle.Render(pcfg.Name)
		if strings.EqualFold(pcfg.Name, defaultProvider) {
			header += DimStyle.Render("  (default)")
		}
		fmt.Println(header)

		if secret, ok := creds.Get(pcfg.CredentialKey); ok {
			fmt.Printf("  %s %s\n",
				SuccessStyle.Render("[OK]"),
				fmt.Sprintf("%s set (%s)", pcfg.CredentialKey, credential.Fingerprint(secret)))
		} else {
			fmt.Printf("  %s %s\n",
				WarningStyle.Render("[!]"),
				fmt.Sprintf("no key · parley keys set %s", strings.ToLower(pcfg.Name)))
		}

		for i, m := range pcfg.Models {
			note := ""
			if i == 0 {
				note = DimStyle.Render("  (default)")
			}
			fmt.Printf("    - %s%s\n", m, note)
		}
	}

	fmt.Println()
	return nil
}
