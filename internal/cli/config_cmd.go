// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration inspection and editing for parley.
//
// Command: config
//
// Subcommands:
//   show               Print the effective configuration
//   get <key>          Print one value (dot notation, e.g. ui.theme)
//   set <key> <value>  Change a value and write the config file
//   path               Print the config file location
//
// "show" prints the effective configuration, which includes environment
// overrides. "set" edits the file on disk only; environment variables
// still win on the next load.

package cli

import (
	"fmt"

	"github.com/jeranaias/parley/internal/config"
)

// HandleConfig handles the "config" command and its subcommands.
func HandleConfig(args Args) error {
	switch args.Subcommand {
	case "", "show", "list":
		return handleConfigShow(args.JSON)
	case "get":
		return handleConfigGet(args.ConfigKey)
	case "set":
		return handleConfigSet(args.ConfigKey, args.ConfigVal)
	case "path":
		fmt.Println(configPathForDisplay())
		return nil
	default:
		return fmt.Errorf("unknown config subcommand: %s (try: show, get, set, path)", args.Subcommand)
	}
}

// handleConfigShow prints every known key with its effective value.
func handleConfigShow(asJSON bool) error {
	cfg := loadConfigOrDefault()

	if asJSON {
		out := make(map[string]interface{}, len(config.GetAllKeys()))
		for _, key := range config.GetAllKeys() {
			value, err := cfg.Get(key)
			if err != nil {
				continue
			}
			out[key] = value
		}
		return outputJSON(out)
	}

	fmt.Println()
	fmt.Println(TitleStyle.Render("Configuration"))
	fmt.Println(RenderSeparator())

	section := ""
	for _, key := range config.GetAllKeys() {
		if s := sectionOf(key); s != section {
			section = s
			fmt.Println()
			fmt.Println(SectionStyle.Render("[" + section + "]"))
		}
		value, err := cfg.Get(key)
		if err != nil {
			continue
		}
		fmt.Printf("  %s %v\n", LabelStyle.Render(key), value)
	}

	fmt.Println()
	fmt.Println(DimStyle.Render("Config file: " + configPathForDisplay()))
	return nil
}

// sectionOf groups dot-notation keys for display. Top-level keys fall
// under "general".
func sectionOf(key string) string {
	for i := 0; i < len(key); i++ {
		if key[i] == '.' {
			return key[:i]
		}
	}
	return "general"
}

// handleConfigGet prints a single value.
func handleConfigGet(key string) error {
	if key == "" {
		return fmt.Errorf("missing key (usage: parley config get <key>)")
	}

	cfg := loadConfigOrDefault()
	value, err := cfg.Get(key)
	if err != nil {
		return asConfigError(fmt.Errorf("%v (known keys: parley config show)", err))
	}
	fmt.Printf("%v\n", value)
	return nil
}

// handleConfigSet changes one value and persists the file. The loaded
// config is validated before saving so a bad value never lands on disk.
func handleConfigSet(key, value string) error {
	if key == "" || value == "" {
		return fmt.Errorf("usage: parley config set <key> <value>")
	}

	// Strict load here: silently falling back to defaults would make
	// "set" discard every other customization in a broken file.
	cfg, err := config.Load()
	if err != nil {
		return asConfigError(err)
	}

	if err := cfg.Set(key, value); err != nil {
		return asConfigError(err)
	}
	if err := cfg.Validate(); err != nil {
		return asConfigError(err)
	}
	if err := config.Save(cfg); err != nil {
		return asConfigError(err)
	}

	fmt.Printf("%s %s = %s\n", SuccessStyle.Render("[OK]"), key, value)
	return nil
}
