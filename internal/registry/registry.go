// Package registry loads the plugin pack registry that describes which
// commands, agents, skills, MCP servers and instruction files each pack
// contributes.
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/ccconfigs/packsync/internal/jsonc"
)

// Dir is the registry folder relative to the source root.
const Dir = "opencode"

// FileNames are the registry files tried in order.
var FileNames = []string{"packs.json", "packs.yaml", "packs.yml"}

//go:embed schema.json
var schemaJSON []byte

// Pack describes the assets one plugin pack contributes. Paths are relative
// to the source root.
type Pack struct {
	Description  string   `json:"description,omitempty"`
	Commands     string   `json:"commands,omitempty"`
	Agents       string   `json:"agents,omitempty"`
	Skills       string   `json:"skills,omitempty"`
	MCP          string   `json:"mcp,omitempty"`
	Instructions []string `json:"instructions,omitempty"`
	// Ignore holds doublestar patterns, relative to the commands/agents
	// folder, for markdown files that are not assets (READMEs, drafts).
	Ignore []string `json:"ignore,omitempty"`
}

// Registry maps pack names to their descriptors.
type Registry struct {
	Version float64         `json:"version"`
	Plugins map[string]Pack `json:"plugins"`

	// Path is the file the registry was loaded from.
	Path string `json:"-"`
}

// InvalidRegistryError reports a registry that is missing or does not match
// the registry schema.
type InvalidRegistryError struct {
	Path     string
	Problems []string
	Err      error
}

func (e *InvalidRegistryError) Error() string {
	var b strings.Builder
	b.WriteString("invalid plugin registry: ")
	b.WriteString(e.Path)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if len(e.Problems) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Problems, "; "))
	}
	return b.String()
}

func (e *InvalidRegistryError) Unwrap() error { return e.Err }

// Locate returns the registry path under sourceRoot, preferring packs.json.
// When no file exists the packs.json path is returned.
func Locate(sourceRoot string) string {
	dir := filepath.Join(sourceRoot, Dir)
	for _, name := range FileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return filepath.Join(dir, FileNames[0])
}

// Load reads and validates the registry under sourceRoot.
func Load(sourceRoot string) (*Registry, error) {
	return LoadFile(Locate(sourceRoot))
}

// LoadFile reads and validates a registry file. Files ending in .yaml/.yml
// are decoded as YAML, everything else as JSONC.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &InvalidRegistryError{Path: path, Problems: []string{"file not found"}}
		}
		return nil, fmt.Errorf("read registry %s: %w", path, err)
	}

	doc, err := decode(path, data)
	if err != nil {
		return nil, &InvalidRegistryError{Path: path, Err: err}
	}

	if problems, err := validate(doc); err != nil {
		return nil, fmt.Errorf("validate registry %s: %w", path, err)
	} else if len(problems) > 0 {
		return nil, &InvalidRegistryError{Path: path, Problems: problems}
	}

	normalized, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode registry %s: %w", path, err)
	}
	var reg Registry
	if err := json.Unmarshal(normalized, &reg); err != nil {
		return nil, &InvalidRegistryError{Path: path, Err: err}
	}
	if reg.Plugins == nil {
		reg.Plugins = map[string]Pack{}
	}
	reg.Path = path
	return &reg, nil
}

func decode(path string, data []byte) (any, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		if doc == nil {
			doc = map[string]any{}
		}
		return doc, nil
	default:
		return jsonc.Parse(data)
	}
}

func validate(doc any) ([]string, error) {
	schema := gojsonschema.NewBytesLoader(schemaJSON)
	result, err := gojsonschema.Validate(schema, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, err
	}
	if result.Valid() {
		return nil, nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		problems = append(problems, re.String())
	}
	sort.Strings(problems)
	return problems, nil
}

// Names returns the pack names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.Plugins))
	for name := range r.Plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the descriptor for name.
func (r *Registry) Lookup(name string) (Pack, bool) {
	pack, ok := r.Plugins[name]
	return pack, ok
}
