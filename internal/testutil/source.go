// Package testutil provides fixtures for sync tests: pack source trees and
// assertions on reconciled targets.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// TestSource is a temporary pack source root.
type TestSource struct {
	Path  string
	t     testing.TB
	packs map[string]map[string]any
	files map[string]string
}

// NewTestSource creates a source root builder.
// Call Build() to write it to disk.
func NewTestSource(t testing.TB) *TestSource {
	t.Helper()
	return &TestSource{
		t:     t,
		packs: make(map[string]map[string]any),
		files: make(map[string]string),
	}
}

// WithPack registers a pack descriptor in opencode/packs.json.
func (s *TestSource) WithPack(name string, descriptor map[string]any) *TestSource {
	s.packs[name] = descriptor
	return s
}

// WithFile adds a file relative to the source root.
func (s *TestSource) WithFile(path string, content ...string) *TestSource {
	s.files[path] = strings.Join(content, "\n") + "\n"
	return s
}

// Build writes the registry and every configured file.
func (s *TestSource) Build() *TestSource {
	s.t.Helper()
	s.Path = s.t.TempDir()

	registry := map[string]any{"version": 1, "plugins": s.packs}
	data, err := json.MarshalIndent(registry, "", "  ")
	if err != nil {
		s.t.Fatalf("marshal registry: %v", err)
	}
	s.Write("opencode/packs.json", string(data)+"\n")

	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		s.Write(p, s.files[p])
	}
	return s
}

// Write writes content to a path relative to the source root, creating
// parent directories.
func (s *TestSource) Write(relPath, content string) {
	s.t.Helper()
	WriteFile(s.t, filepath.Join(s.Path, filepath.FromSlash(relPath)), content)
}

// Abs returns the absolute path of relPath under the source root.
func (s *TestSource) Abs(relPath string) string {
	return filepath.Join(s.Path, filepath.FromSlash(relPath))
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// EssentialsSource builds the reference fixture: one pack "essentials" with
// a command, an agent, a skill, an MCP server and an instruction file.
func EssentialsSource(t testing.TB) *TestSource {
	t.Helper()
	return NewTestSource(t).
		WithPack("essentials", map[string]any{
			"description":  "Everyday commands and reviewers",
			"commands":     "essentials/commands",
			"agents":       "essentials/agents",
			"skills":       "essentials/skills",
			"mcp":          "essentials/.mcp.json",
			"instructions": []string{"config/CLAUDE.md"},
		}).
		WithFile("config/CLAUDE.md", "Global instructions").
		WithFile("essentials/commands/plan.md",
			"---", "description: Plan implementation", "---", "", "Task: $ARGS").
		WithFile("essentials/agents/reviewer.md",
			"---",
			"name: reviewer",
			"description: Reviews code",
			"model: claude-haiku-4-5",
			"color: red",
			"---",
			"",
			"Review changes.",
		).
		WithFile("essentials/skills/debugging/SKILL.md",
			"---", "name: debugging", "description: Debug issues", "---", "", "# Debugging").
		WithFile("essentials/.mcp.json", `{
  "mcpServers": {
    "context7": {
      "type": "sse",
      "url": "${MCP_PROXY_HOST}/servers/context7/sse",
      "headers": {
        "Authorization": "Basic ${MCP_PROXY_AUTH}"
      }
    }
  }
}`).
		Build()
}
