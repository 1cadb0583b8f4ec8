// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for the
// AniChat client.
//
// Configuration is TOML with sensible defaults and environment
// variable overrides. File location: ~/.anichat/config.toml.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/anichat/anichat-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete client configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	UI     UIConfig     `toml:"ui"`
	Debug  DebugConfig  `toml:"debug"`
}

// ServerConfig describes how to reach the chat backend.
type ServerConfig struct {
	// URL is the backend base URL.
	URL string `toml:"url"`
	// TimeoutSecs bounds every request. The backend calls an LLM on
	// send, so the default is generous. Clamped to 1..300.
	TimeoutSecs int `toml:"timeout_secs"`
	// RequestsPerSec is the politeness limit in front of the backend.
	RequestsPerSec float64 `toml:"requests_per_sec"`
}

// UIConfig holds presentation options.
type UIConfig struct {
	// SidebarWidth is the sidebar width in terminal cells. Clamped to
	// 20..60.
	SidebarWidth int `toml:"sidebar_width"`
	// SidebarOpen controls whether the sidebar starts visible.
	SidebarOpen bool `toml:"sidebar_open"`
	// Theme selects the palette: "auto", "dark", or "light".
	Theme string `toml:"theme"`
	// MaxMessagesPerSession caps the in-memory transcript per session;
	// the oldest entries are trimmed past it (0 = unbounded).
	MaxMessagesPerSession int `toml:"max_messages_per_session"`
	// ConfirmNewChat prompts before abandoning a non-empty window for
	// a new chat.
	ConfirmNewChat bool `toml:"confirm_new_chat"`
}

// DebugConfig controls the diagnostic log.
type DebugConfig struct {
	// Enabled turns on the debug log file.
	Enabled bool `toml:"enabled"`
	// LogPath overrides the default ~/.anichat/debug.log.
	LogPath string `toml:"log_path"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			URL:            "http://127.0.0.1:5000",
			TimeoutSecs:    30,
			RequestsPerSec: 5,
		},
		UI: UIConfig{
			SidebarWidth:   32,
			SidebarOpen:    true,
			Theme:          "auto",
			ConfirmNewChat: true,
		},
	}
}

// Dir returns the configuration directory (~/.anichat).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".anichat"
	}
	return filepath.Join(home, ".anichat")
}

// Path returns the configuration file path.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// DebugLogPath returns the debug log path, honoring the override.
func (c *Config) DebugLogPath() string {
	if c.Debug.LogPath != "" {
		return c.Debug.LogPath
	}
	return filepath.Join(Dir(), "debug.log")
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the config file, applies environment overrides, and
// validates. A missing file is not an error; defaults apply.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads a specific config file path.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// No file: defaults plus env.
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv applies environment variable overrides. Environment wins
// over the file; flags (handled by the caller) win over both.
func (c *Config) applyEnv() {
	if v := os.Getenv("ANICHAT_SERVER_URL"); v != "" {
		c.Server.URL = v
	}
	if v := os.Getenv("ANICHAT_TIMEOUT_SECS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.Server.TimeoutSecs = secs
		}
	}
	if v := os.Getenv("ANICHAT_DEBUG"); v != "" {
		c.Debug.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks field values and clamps numeric ranges.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid server url %q", c.Server.URL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server url must be http or https, got %q", u.Scheme)
	}
	// Trailing slashes would double up when paths are appended.
	c.Server.URL = strings.TrimRight(c.Server.URL, "/")

	if c.Server.TimeoutSecs < 1 {
		c.Server.TimeoutSecs = 1
	}
	if c.Server.TimeoutSecs > 300 {
		c.Server.TimeoutSecs = 300
	}
	if c.Server.RequestsPerSec <= 0 {
		c.Server.RequestsPerSec = 5
	}

	if c.UI.SidebarWidth < 20 {
		c.UI.SidebarWidth = 20
	}
	if c.UI.SidebarWidth > 60 {
		c.UI.SidebarWidth = 60
	}
	switch c.UI.Theme {
	case "auto", "dark", "light":
	case "":
		c.UI.Theme = "auto"
	default:
		return fmt.Errorf("invalid theme %q (want auto, dark, or light)", c.UI.Theme)
	}
	if c.UI.MaxMessagesPerSession < 0 {
		c.UI.MaxMessagesPerSession = 0
	}
	return nil
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the config atomically to the default path.
func (c *Config) Save() error {
	return c.SaveTo(Path())
}

// SaveTo writes the config atomically to a specific path.
func (c *Config) SaveTo(path string) error {
	var b strings.Builder
	b.WriteString("# AniChat client configuration\n\n")
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return util.AtomicWriteFile(path, []byte(b.String()), 0o600)
}
