// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.DefaultProvider != "Google" {
		t.Errorf("DefaultProvider = %q, want Google", cfg.DefaultProvider)
	}
	if cfg.DefaultModel != "" {
		t.Errorf("DefaultModel = %q, want empty (provider's first model)", cfg.DefaultModel)
	}
	if cfg.SystemPrompt != "You are a helpful and friendly AI assistant." {
		t.Errorf("SystemPrompt = %q", cfg.SystemPrompt)
	}
	if !cfg.Chat.Stream {
		t.Error("Chat.Stream should default to true")
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("UI.Theme = %q, want dark", cfg.UI.Theme)
	}
	if cfg.UI.WordWrap != 80 {
		t.Errorf("UI.WordWrap = %d, want 80", cfg.UI.WordWrap)
	}
	if !cfg.History.Enabled {
		t.Error("History.Enabled should default to true")
	}
}

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should validate, got: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid default",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.DefaultProvider = "Frontier" },
			wantErr: "default_provider",
		},
		{
			name: "model not served by provider",
			mutate: func(c *Config) {
				c.DefaultProvider = "Groq"
				c.DefaultModel = "gpt-5"
			},
			wantErr: "default_model",
		},
		{
			name: "model served by provider",
			mutate: func(c *Config) {
				c.DefaultProvider = "OpenAI"
				c.DefaultModel = "gpt-5"
			},
			wantErr: "",
		},
		{
			name:    "invalid theme",
			mutate:  func(c *Config) { c.UI.Theme = "neon" },
			wantErr: "ui.theme",
		},
		{
			name:    "word wrap too small",
			mutate:  func(c *Config) { c.UI.WordWrap = 5 },
			wantErr: "ui.word_wrap",
		},
		{
			name:    "word wrap too large",
			mutate:  func(c *Config) { c.UI.WordWrap = 10000 },
			wantErr: "ui.word_wrap",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention field %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestResolveModel(t *testing.T) {
	cfg := Default()
	if got := cfg.ResolveModel(); got != "gemini-3-pro" {
		t.Errorf("ResolveModel() = %q, want gemini-3-pro (Google's first model)", got)
	}

	cfg.DefaultProvider = "Groq"
	if got := cfg.ResolveModel(); got != "llama-4-maverick-17b-128e-instruct" {
		t.Errorf("ResolveModel() = %q, want Groq's first model", got)
	}

	cfg.DefaultModel = "llama-3.3-70b-versatile"
	if got := cfg.ResolveModel(); got != "llama-3.3-70b-versatile" {
		t.Errorf("ResolveModel() = %q, want explicit model to win", got)
	}
}

func TestSaveAndLoadTOML(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	cfg := Default()
	cfg.DefaultProvider = "Anthropic"
	cfg.DefaultModel = "claude-sonnet-4.5"
	cfg.UI.Theme = "light"
	cfg.UI.WordWrap = 100
	cfg.Chat.Stream = false

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	loaded := Default()
	if err := LoadTOML(loaded, path); err != nil {
		t.Fatalf("LoadTOML failed: %v", err)
	}

	if loaded.DefaultProvider != "Anthropic" {
		t.Errorf("DefaultProvider = %q, want Anthropic", loaded.DefaultProvider)
	}
	if loaded.DefaultModel != "claude-sonnet-4.5" {
		t.Errorf("DefaultModel = %q", loaded.DefaultModel)
	}
	if loaded.UI.Theme != "light" {
		t.Errorf("UI.Theme = %q, want light", loaded.UI.Theme)
	}
	if loaded.UI.WordWrap != 100 {
		t.Errorf("UI.WordWrap = %d, want 100", loaded.UI.WordWrap)
	}
	if loaded.Chat.Stream {
		t.Error("Chat.Stream should round-trip as false")
	}
}

func TestSaveTOMLWritesHeader(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	if err := SaveTOML(Default(), path); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !strings.HasPrefix(string(data), "# parley configuration file") {
		t.Error("saved config should start with the header comment")
	}
}

func TestSaveTOMLFilePermissions(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	if err := SaveTOML(Default(), path); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file permissions = %o, want 0600", perm)
	}
}

func TestLoadTOMLFixesInsecurePermissions(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	if err := os.WriteFile(path, []byte("default_provider = \"OpenAI\"\n"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		t.Fatalf("LoadTOML failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("permissions after load = %o, want 0600", perm)
	}
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	// Only override one field; everything else should keep defaults.
	content := `default_provider = "OpenAI"`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.DefaultProvider != "OpenAI" {
		t.Errorf("DefaultProvider = %q, want OpenAI", cfg.DefaultProvider)
	}
	if !cfg.Chat.Stream {
		t.Error("Chat.Stream should keep its true default")
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("UI.Theme = %q, want default dark", cfg.UI.Theme)
	}
	if cfg.SystemPrompt == "" {
		t.Error("SystemPrompt should keep its default")
	}
}

func TestLoadFromPathRejectsInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	content := `default_provider = "NotAProvider"`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if _, err := LoadFromPath(path); err == nil {
		t.Fatal("expected validation error for unknown provider")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("PARLEY_PROVIDER", "Groq")
	t.Setenv("PARLEY_MODEL", "llama-3.3-70b-versatile")
	t.Setenv("PARLEY_SYSTEM_PROMPT", "Answer briefly.")
	t.Setenv("PARLEY_NO_STREAM", "1")
	t.Setenv("PARLEY_THEME", "light")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.DefaultProvider != "Groq" {
		t.Errorf("DefaultProvider = %q, want Groq", cfg.DefaultProvider)
	}
	if cfg.DefaultModel != "llama-3.3-70b-versatile" {
		t.Errorf("DefaultModel = %q", cfg.DefaultModel)
	}
	if cfg.SystemPrompt != "Answer briefly." {
		t.Errorf("SystemPrompt = %q", cfg.SystemPrompt)
	}
	if cfg.Chat.Stream {
		t.Error("PARLEY_NO_STREAM=1 should disable streaming")
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("UI.Theme = %q, want light", cfg.UI.Theme)
	}
}

func TestEnvOverridesIgnoreEmpty(t *testing.T) {
	t.Setenv("PARLEY_PROVIDER", "")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.DefaultProvider != "Google" {
		t.Errorf("empty env var should not override, got %q", cfg.DefaultProvider)
	}
}

func TestGetSet(t *testing.T) {
	cfg := Default()

	// Get top-level field
	val, err := cfg.Get("default_provider")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if val != "Google" {
		t.Errorf("Get(default_provider) = %v, want Google", val)
	}

	// Get nested field
	val, err = cfg.Get("ui.theme")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if val != "dark" {
		t.Errorf("Get(ui.theme) = %v, want dark", val)
	}

	// Set string field
	if err := cfg.Set("ui.theme", "light"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("UI.Theme = %q after Set, want light", cfg.UI.Theme)
	}

	// Set int field from string (CLI values arrive as strings)
	if err := cfg.Set("ui.word_wrap", "120"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if cfg.UI.WordWrap != 120 {
		t.Errorf("UI.WordWrap = %d after Set, want 120", cfg.UI.WordWrap)
	}

	// Set bool field from string
	if err := cfg.Set("chat.stream", "false"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if cfg.Chat.Stream {
		t.Error("Chat.Stream should be false after Set")
	}
	if err := cfg.Set("chat.stream", "true"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !cfg.Chat.Stream {
		t.Error("Chat.Stream should be true after Set")
	}
}

func TestGetSetUnknownField(t *testing.T) {
	cfg := Default()

	if _, err := cfg.Get("nonexistent"); err == nil {
		t.Error("Get of unknown field should fail")
	}
	if _, err := cfg.Get("ui.nonexistent"); err == nil {
		t.Error("Get of unknown nested field should fail")
	}
	if err := cfg.Set("nonexistent", "x"); err == nil {
		t.Error("Set of unknown field should fail")
	}
}

func TestGetAllKeysResolve(t *testing.T) {
	cfg := Default()
	for _, key := range GetAllKeys() {
		if _, err := cfg.Get(key); err != nil {
			t.Errorf("Get(%q) failed: %v", key, err)
		}
	}
}

func TestNormalizeFieldName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"theme", "Theme"},
		{"word_wrap", "WordWrap"},
		{"word-wrap", "WordWrap"},
		{"default_provider", "DefaultProvider"},
		{"show_stats", "ShowStats"},
	}
	for _, tt := range tests {
		if got := normalizeFieldName(tt.in); got != tt.want {
			t.Errorf("normalizeFieldName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConfigDirOverride(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("PARLEY_CONFIG_DIR", tmpDir)

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir failed: %v", err)
	}
	if dir != tmpDir {
		t.Errorf("ConfigDir() = %q, want %q", dir, tmpDir)
	}

	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath failed: %v", err)
	}
	if path != filepath.Join(tmpDir, "config.toml") {
		t.Errorf("ConfigPath() = %q", path)
	}
}

func TestPathHelpers(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("PARLEY_CONFIG_DIR", tmpDir)

	cfg := Default()

	credPath, err := cfg.CredentialsPath()
	if err != nil {
		t.Fatalf("CredentialsPath failed: %v", err)
	}
	if credPath != filepath.Join(tmpDir, "credentials.env") {
		t.Errorf("CredentialsPath() = %q", credPath)
	}

	histPath, err := cfg.HistoryPath()
	if err != nil {
		t.Fatalf("HistoryPath failed: %v", err)
	}
	if histPath != filepath.Join(tmpDir, "history.db") {
		t.Errorf("HistoryPath() = %q", histPath)
	}

	// Explicit paths win over the config dir.
	cfg.Credentials.Path = "/custom/creds.env"
	cfg.History.Path = "/custom/history.db"

	credPath, _ = cfg.CredentialsPath()
	if credPath != "/custom/creds.env" {
		t.Errorf("explicit CredentialsPath not honored: %q", credPath)
	}
	histPath, _ = cfg.HistoryPath()
	if histPath != "/custom/history.db" {
		t.Errorf("explicit HistoryPath not honored: %q", histPath)
	}
}

func TestGlobalSingleton(t *testing.T) {
	ResetGlobalForTesting()
	t.Cleanup(ResetGlobalForTesting)

	tmpDir := t.TempDir()
	t.Setenv("PARLEY_CONFIG_DIR", tmpDir)

	cfg1 := Global()
	cfg2 := Global()
	if cfg1 != cfg2 {
		t.Error("Global() should return the same instance")
	}

	custom := Default()
	custom.UI.Theme = "light"
	SetGlobal(custom)
	if Global().UI.Theme != "light" {
		t.Error("SetGlobal should replace the global instance")
	}
}

func TestClone(t *testing.T) {
	cfg := Default()
	clone := cfg.Clone()

	clone.DefaultProvider = "OpenAI"
	clone.UI.Theme = "light"

	if cfg.DefaultProvider != "Google" {
		t.Error("mutating clone should not affect original")
	}
	if cfg.UI.Theme != "dark" {
		t.Error("mutating clone UI should not affect original")
	}
}
