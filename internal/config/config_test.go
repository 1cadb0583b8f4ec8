// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFrom_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Server.URL != "http://127.0.0.1:5000" {
		t.Errorf("Server.URL = %q, want default", cfg.Server.URL)
	}
	if cfg.Server.TimeoutSecs != 30 {
		t.Errorf("TimeoutSecs = %d, want 30", cfg.Server.TimeoutSecs)
	}
	if !cfg.UI.ConfirmNewChat {
		t.Error("ConfirmNewChat should default to true")
	}
}

func TestLoadFrom_ParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
url = "https://chat.example.com/"
timeout_secs = 60

[ui]
sidebar_width = 40
theme = "dark"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	// Trailing slash is trimmed during validation.
	if cfg.Server.URL != "https://chat.example.com" {
		t.Errorf("Server.URL = %q", cfg.Server.URL)
	}
	if cfg.Server.TimeoutSecs != 60 {
		t.Errorf("TimeoutSecs = %d, want 60", cfg.Server.TimeoutSecs)
	}
	if cfg.UI.SidebarWidth != 40 {
		t.Errorf("SidebarWidth = %d, want 40", cfg.UI.SidebarWidth)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("Theme = %q, want dark", cfg.UI.Theme)
	}
}

func TestLoadFrom_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server]\nurl = \"http://file.example\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ANICHAT_SERVER_URL", "http://env.example")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Server.URL != "http://env.example" {
		t.Errorf("Server.URL = %q, want the env override", cfg.Server.URL)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults pass", func(c *Config) {}, false},
		{"bad scheme", func(c *Config) { c.Server.URL = "ftp://x" }, true},
		{"not a url", func(c *Config) { c.Server.URL = "not a url" }, true},
		{"unknown theme", func(c *Config) { c.UI.Theme = "solarized" }, true},
		{"empty theme coerced", func(c *Config) { c.UI.Theme = "" }, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestValidate_Clamps(t *testing.T) {
	cfg := Default()
	cfg.Server.TimeoutSecs = 10000
	cfg.UI.SidebarWidth = 5
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Server.TimeoutSecs != 300 {
		t.Errorf("TimeoutSecs = %d, want clamped 300", cfg.Server.TimeoutSecs)
	}
	if cfg.UI.SidebarWidth != 20 {
		t.Errorf("SidebarWidth = %d, want clamped 20", cfg.UI.SidebarWidth)
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.UI.SidebarWidth = 44
	cfg.Debug.Enabled = true
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if loaded.UI.SidebarWidth != 44 {
		t.Errorf("SidebarWidth = %d, want 44", loaded.UI.SidebarWidth)
	}
	if !loaded.Debug.Enabled {
		t.Error("Debug.Enabled should survive a round trip")
	}
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[ui]\nsidebar_width = 30\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	changed := make(chan *Config, 1)
	w, err := Watch(path, func(c *Config) {
		select {
		case changed <- c:
		default:
		}
	})
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("[ui]\nsidebar_width = 42\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-changed:
		if cfg.UI.SidebarWidth != 42 {
			t.Errorf("SidebarWidth = %d, want 42", cfg.UI.SidebarWidth)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not deliver the reloaded config")
	}
}
