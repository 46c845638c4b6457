// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package credential

import (
	"strings"
)

// parseEnvFile extracts KEY=VALUE pairs from env file content.
// Blank lines and #-comments are ignored. Later duplicates win.
func parseEnvFile(data []byte) map[string]string {
	out := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		key, value, ok := strings.Cut(trimmed, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		out[key] = strings.TrimSpace(value)
	}
	return out
}

// upsertEnvLine replaces the line defining key, or appends one. Every
// other line - comments, blanks, keys owned by other tools - passes
// through byte-for-byte.
func upsertEnvLine(data []byte, key, value string) []byte {
	entry := key + "=" + value

	content := string(data)
	trailingNewline := content == "" || strings.HasSuffix(content, "\n")
	lines := strings.Split(content, "\n")

	replaced := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		existing, _, ok := strings.Cut(trimmed, "=")
		if !ok {
			continue
		}
		if strings.TrimSpace(existing) == key {
			lines[i] = entry
			replaced = true
		}
	}

	if !replaced {
		// Append, keeping a single trailing newline.
		for len(lines) > 0 && lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}
		lines = append(lines, entry)
		trailingNewline = true
	}

	out := strings.Join(lines, "\n")
	if trailingNewline && !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return []byte(out)
}
