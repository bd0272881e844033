package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := &Config{
		SourceRoot:   "/src/ccconfigs",
		DefaultScope: "repo",
		UI:           UIConfig{Accent: "#ff8800"},
		Watch:        WatchConfig{DebounceMS: 120},
	}
	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip = %+v, want %+v", loaded, cfg)
	}
}

func TestSaveToOmitsEmptySettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := SaveTo(path, &Config{SourceRoot: "/src"}); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read config: %v", err)
	}
	for _, unwanted := range []string{"default_scope", "[ui]", "[watch]"} {
		if strings.Contains(string(data), unwanted) {
			t.Errorf("expected %q to be omitted:\n%s", unwanted, data)
		}
	}
}

func TestSaveToRequiresPath(t *testing.T) {
	if err := SaveTo(" ", &Config{}); err == nil {
		t.Fatal("expected error for empty path")
	}
}
