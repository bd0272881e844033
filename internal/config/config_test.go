package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadFromMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SourceRoot != "" || cfg.DefaultScope != "" {
		t.Errorf("expected empty config, got %+v", cfg)
	}
	if cfg.Watch.Debounce() != DefaultDebounce {
		t.Errorf("expected default debounce, got %v", cfg.Watch.Debounce())
	}
}

func TestLoadFrom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `source_root = " /src/ccconfigs "
default_scope = "repo"

[ui]
accent = "39"
code_theme = "dracula"

[watch]
debounce_ms = 50
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SourceRoot != "/src/ccconfigs" {
		t.Errorf("SourceRoot = %q", cfg.SourceRoot)
	}
	if cfg.DefaultScope != "repo" {
		t.Errorf("DefaultScope = %q", cfg.DefaultScope)
	}
	if cfg.UI.Accent != "39" || cfg.UI.CodeTheme != "dracula" {
		t.Errorf("UI = %+v", cfg.UI)
	}
	if cfg.Watch.Debounce() != 50*time.Millisecond {
		t.Errorf("Debounce() = %v", cfg.Watch.Debounce())
	}
}

func TestLoadFromInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("source_root = ["), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestResolvePrecedence(t *testing.T) {
	cfg := &Config{SourceRoot: "/configured", DefaultScope: "repo"}

	if got := cfg.ResolveSourceRoot("/flag", "/recorded", "/cwd"); got != "/flag" {
		t.Errorf("flag source root = %q", got)
	}
	if got := cfg.ResolveSourceRoot("", "/recorded", "/cwd"); got != "/configured" {
		t.Errorf("configured source root = %q", got)
	}
	if got := (&Config{}).ResolveSourceRoot("", "/recorded", "/cwd"); got != "/recorded" {
		t.Errorf("recorded source root = %q", got)
	}
	if got := (&Config{}).ResolveSourceRoot("", " ", "/cwd"); got != "/cwd" {
		t.Errorf("default source root = %q", got)
	}
	if got := cfg.ResolveScope(""); got != "repo" {
		t.Errorf("configured scope = %q", got)
	}
	if got := (*Config)(nil).ResolveScope(""); got != "global" {
		t.Errorf("default scope = %q", got)
	}
}

func TestCreateDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "packsync", "config.toml")

	created, err := CreateDefault(path)
	if err != nil || !created {
		t.Fatalf("CreateDefault() = %v, %v", created, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read config: %v", err)
	}
	if !strings.Contains(string(data), "source_root") {
		t.Errorf("template missing source_root:\n%s", data)
	}
	if _, err := LoadFrom(path); err != nil {
		t.Errorf("template does not parse: %v", err)
	}

	created, err = CreateDefault(path)
	if err != nil || created {
		t.Fatalf("second CreateDefault() = %v, %v", created, err)
	}
}

func TestResolveConfigPath(t *testing.T) {
	if got := ResolveConfigPath("/tmp/x.toml"); got != "/tmp/x.toml" {
		t.Errorf("explicit path = %q", got)
	}
	if got := ResolveConfigPath(" "); got != DefaultPath() {
		t.Errorf("default path = %q", got)
	}
	if !strings.HasSuffix(DefaultPath(), filepath.Join("packsync", "config.toml")) {
		t.Errorf("DefaultPath() = %q", DefaultPath())
	}
}
