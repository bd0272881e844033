// Package config handles packsync's own settings file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
)

// DefaultDebounce is the watch delay used when none is configured.
const DefaultDebounce = 300 * time.Millisecond

// Config represents the packsync configuration.
type Config struct {
	// SourceRoot is the pack repository (the folder holding opencode/packs.json).
	SourceRoot string `toml:"source_root"`

	// DefaultScope is used when --scope is not given: "global" or "repo".
	DefaultScope string `toml:"default_scope"`

	// UI controls optional CLI theming preferences.
	UI UIConfig `toml:"ui"`

	// Watch tunes the watch command.
	Watch WatchConfig `toml:"watch"`
}

// UIConfig represents optional CLI theming preferences.
type UIConfig struct {
	// Accent is an ANSI color code ("0" to "255") or hex color ("#RRGGBB").
	Accent string `toml:"accent"`

	// CodeTheme sets the Glamour/Chroma theme used by `show`.
	CodeTheme string `toml:"code_theme"`
}

// WatchConfig tunes the source watcher.
type WatchConfig struct {
	// DebounceMS delays a re-sync until the source has been quiet this long.
	DebounceMS int `toml:"debounce_ms"`
}

// Debounce returns the configured watch delay.
func (w WatchConfig) Debounce() time.Duration {
	if w.DebounceMS <= 0 {
		return DefaultDebounce
	}
	return time.Duration(w.DebounceMS) * time.Millisecond
}

// ResolveConfigPath resolves the effective config path from an optional override.
func ResolveConfigPath(explicitConfigPath string) string {
	if strings.TrimSpace(explicitConfigPath) != "" {
		return explicitConfigPath
	}
	return DefaultPath()
}

// DefaultPath returns <XDG config home>/packsync/config.toml.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "packsync", "config.toml")
}

// LoadFrom loads the configuration at path.
// Returns a default config if the file doesn't exist.
func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Config{}, nil
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.SourceRoot = strings.TrimSpace(cfg.SourceRoot)
	cfg.DefaultScope = strings.TrimSpace(cfg.DefaultScope)
	return &cfg, nil
}

// ResolveSourceRoot picks the pack repository: the flag value, the
// configured source_root, the root recorded by the target's last sync, then
// cwd.
func (c *Config) ResolveSourceRoot(flagValue, recorded, cwd string) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v
	}
	if c != nil && c.SourceRoot != "" {
		return c.SourceRoot
	}
	if v := strings.TrimSpace(recorded); v != "" {
		return v
	}
	return cwd
}

// ResolveScope picks the scope name: the flag value, then default_scope,
// then "global".
func (c *Config) ResolveScope(flagValue string) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v
	}
	if c != nil && c.DefaultScope != "" {
		return c.DefaultScope
	}
	return "global"
}

const defaultConfigTemplate = `# packsync configuration

# Pack repository containing opencode/packs.json.
# source_root = "~/code/ccconfigs"

# Scope used when --scope is omitted: "global" or "repo".
# default_scope = "global"

# Optional UI accent color for headers in terminal output.
# Supports ANSI color codes (0-255) or hex (#RRGGBB).
# [ui]
# accent = "39"
# code_theme = "monokai"

# [watch]
# debounce_ms = 300
`

// CreateDefault writes a commented template to path if nothing exists there.
func CreateDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0o644); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}
	return true, nil
}
