// Package configmerge rewrites the keys packsync owns in an OpenCode config
// (mcp and instructions) and leaves every other key as the user wrote it.
package configmerge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ccconfigs/packsync/internal/jsonc"
	"github.com/ccconfigs/packsync/internal/state"
)

const (
	// DefaultSchema is set when the config has no $schema.
	DefaultSchema = "https://opencode.ai/config.json"

	KeySchema       = "$schema"
	KeyMCP          = "mcp"
	KeyInstructions = "instructions"
)

// Load reads the config at path. A missing file is an empty config and a
// non-object document is treated the same way.
func Load(path string) (map[string]any, error) {
	return jsonc.ReadObject(path)
}

// Merge returns a copy of current where MCP servers and instruction paths
// recorded in previous are replaced by the desired ones. previous may be nil.
func Merge(current map[string]any, previous *state.State, desiredMCP map[string]any, desiredInstructions []string) map[string]any {
	merged := make(map[string]any, len(current)+2)
	for k, v := range current {
		merged[k] = v
	}

	if isBlank(merged[KeySchema]) {
		merged[KeySchema] = DefaultSchema
	}

	var owned state.Generated
	if previous != nil {
		owned = previous.Generated
	}

	servers := map[string]any{}
	if existing, ok := merged[KeyMCP].(map[string]any); ok {
		for name, server := range existing {
			servers[name] = server
		}
	}
	for _, name := range owned.MCP {
		delete(servers, name)
	}
	for name, server := range desiredMCP {
		servers[name] = server
	}
	if len(servers) > 0 {
		merged[KeyMCP] = servers
	} else {
		delete(merged, KeyMCP)
	}

	ownedInstructions := make(map[string]bool, len(owned.Instructions))
	for _, p := range owned.Instructions {
		ownedInstructions[p] = true
	}
	instructions := map[string]bool{}
	if existing, ok := merged[KeyInstructions].([]any); ok {
		for _, entry := range existing {
			if p, ok := entry.(string); ok && !ownedInstructions[p] {
				instructions[p] = true
			}
		}
	}
	for _, p := range desiredInstructions {
		instructions[p] = true
	}
	if len(instructions) > 0 {
		sorted := make([]string, 0, len(instructions))
		for p := range instructions {
			sorted = append(sorted, p)
		}
		sort.Strings(sorted)
		list := make([]any, len(sorted))
		for i, p := range sorted {
			list[i] = p
		}
		merged[KeyInstructions] = list
	} else {
		delete(merged, KeyInstructions)
	}

	return merged
}

// isBlank mirrors a falsy $schema: absent, null, empty or false.
func isBlank(v any) bool {
	switch s := v.(type) {
	case nil:
		return true
	case string:
		return s == ""
	case bool:
		return !s
	}
	return false
}

// Encode renders config as 2-space indented JSON with object keys sorted at
// every level and a trailing newline.
func Encode(config map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(config); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// Owned reports which MCP servers and instructions recorded in st are
// currently present in config.
func Owned(config map[string]any, st *state.State) (servers, instructions []string) {
	if st == nil {
		return nil, nil
	}
	if existing, ok := config[KeyMCP].(map[string]any); ok {
		for _, name := range st.Generated.MCP {
			if _, ok := existing[name]; ok {
				servers = append(servers, name)
			}
		}
	}
	present := map[string]bool{}
	if list, ok := config[KeyInstructions].([]any); ok {
		for _, entry := range list {
			if p, ok := entry.(string); ok {
				present[p] = true
			}
		}
	}
	for _, p := range st.Generated.Instructions {
		if present[p] {
			instructions = append(instructions, p)
		}
	}
	return servers, instructions
}
