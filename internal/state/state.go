// Package state persists the record of what a sync generated for a target.
// The record is the only source of truth for ownership: cleanup removes
// what it lists and never infers ownership from the files on disk.
package state

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ccconfigs/packsync/internal/fsops"
	"github.com/ccconfigs/packsync/internal/jsonc"
	"github.com/ccconfigs/packsync/internal/packs"
)

// FileName is the state file stored inside the target config directory.
const FileName = ".ccconfigs-opencode-state.json"

// Generated lists the artifact names a sync produced, per category.
type Generated struct {
	Commands []string `json:"commands"`
	Agents   []string `json:"agents"`
	Skills   []string `json:"skills"`
	MCP      []string `json:"mcp"`
	// Instructions holds absolute instruction file paths.
	Instructions []string `json:"instructions"`
}

// Any reports whether any artifact is recorded.
func (g Generated) Any() bool {
	return len(g.Commands) > 0 ||
		len(g.Agents) > 0 ||
		len(g.Skills) > 0 ||
		len(g.MCP) > 0 ||
		len(g.Instructions) > 0
}

// State is the managed state record.
type State struct {
	SourceRoot string    `json:"sourceRoot"`
	Plugins    []string  `json:"plugins"`
	Generated  Generated `json:"generated"`
}

// Read loads the state at path. It returns false when the file is missing
// or cannot be understood; a damaged record is treated as no record.
func Read(path string) (*State, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	st, err := Decode(data)
	if err != nil {
		return nil, false
	}
	return st, true
}

// Decode parses a state document. Comments and trailing commas are
// tolerated. The document must carry a plugins list and a generated object.
func Decode(data []byte) (*State, error) {
	doc, err := jsonc.Parse(data)
	if err != nil {
		return nil, err
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("state is not an object")
	}
	if _, ok := obj["plugins"].([]any); !ok {
		return nil, fmt.Errorf("state has no plugins list")
	}
	if !jsonc.IsObject(obj["generated"]) {
		return nil, fmt.Errorf("state has no generated record")
	}

	normalized, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	var st State
	if err := json.Unmarshal(normalized, &st); err != nil {
		return nil, err
	}
	st.normalize()
	return &st, nil
}

func (s *State) normalize() {
	s.Plugins = packs.NormalizeSelection(s.Plugins)
	g := &s.Generated
	for _, list := range []*[]string{&g.Commands, &g.Agents, &g.Skills, &g.MCP, &g.Instructions} {
		if *list == nil {
			*list = []string{}
		}
	}
}

// Encode renders st as 2-space indented JSON with a trailing newline.
// Equal states always encode to identical bytes.
func Encode(st *State) ([]byte, error) {
	normalized := *st
	normalized.normalize()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(normalized); err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return buf.Bytes(), nil
}

// Write stores st at path atomically, creating the parent directory.
func Write(path string, st *State) error {
	data, err := Encode(st)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	if err := fsops.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write state %s: %w", path, err)
	}
	return nil
}

// Remove deletes the state file. A missing file is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove state %s: %w", path, err)
	}
	return nil
}

// Path returns the state file path inside configDir.
func Path(configDir string) string {
	return filepath.Join(configDir, FileName)
}
