package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ccconfigs/packsync/internal/fsops"
)

type persistedConfig struct {
	SourceRoot   *string              `toml:"source_root,omitempty"`
	DefaultScope *string              `toml:"default_scope,omitempty"`
	UI           *persistedUISettings `toml:"ui,omitempty"`
	Watch        *persistedWatch      `toml:"watch,omitempty"`
}

type persistedUISettings struct {
	Accent    *string `toml:"accent,omitempty"`
	CodeTheme *string `toml:"code_theme,omitempty"`
}

type persistedWatch struct {
	DebounceMS int `toml:"debounce_ms"`
}

func nonEmptyPtr(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// SaveTo writes cfg to path atomically. Empty settings are omitted.
func SaveTo(path string, cfg *Config) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("config path is required")
	}
	if cfg == nil {
		cfg = &Config{}
	}

	out := persistedConfig{
		SourceRoot:   nonEmptyPtr(cfg.SourceRoot),
		DefaultScope: nonEmptyPtr(cfg.DefaultScope),
	}
	accent := nonEmptyPtr(cfg.UI.Accent)
	codeTheme := nonEmptyPtr(cfg.UI.CodeTheme)
	if accent != nil || codeTheme != nil {
		out.UI = &persistedUISettings{Accent: accent, CodeTheme: codeTheme}
	}
	if cfg.Watch.DebounceMS > 0 {
		out.Watch = &persistedWatch{DebounceMS: cfg.Watch.DebounceMS}
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(out); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := fsops.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}
