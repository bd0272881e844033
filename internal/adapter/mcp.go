package adapter

import "regexp"

var claudeEnvRef = regexp.MustCompile(`\$\{([A-Z0-9_]+)\}`)

// ConvertEnvSyntax rewrites Claude ${VAR} references to OpenCode {env:VAR}.
func ConvertEnvSyntax(value string) string {
	return claudeEnvRef.ReplaceAllString(value, "{env:${1}}")
}

func convertStrings(v any) any {
	switch t := v.(type) {
	case string:
		return ConvertEnvSyntax(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = convertStrings(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = convertStrings(item)
		}
		return out
	default:
		return v
	}
}

var transportTypes = map[string]string{
	"sse":   "remote",
	"stdio": "local",
}

// AdaptMCPConfig converts a Claude .mcp.json document ({"mcpServers": {...}})
// into the OpenCode "mcp" map. Entries that are not objects are skipped.
func AdaptMCPConfig(doc any) map[string]any {
	out := map[string]any{}

	root, ok := doc.(map[string]any)
	if !ok {
		return out
	}
	servers, ok := root["mcpServers"].(map[string]any)
	if !ok {
		return out
	}

	for name, raw := range servers {
		server, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		converted := convertStrings(server).(map[string]any)
		if kind, ok := converted["type"].(string); ok {
			if mapped, ok := transportTypes[kind]; ok {
				converted["type"] = mapped
			}
		}
		out[name] = converted
	}
	return out
}
