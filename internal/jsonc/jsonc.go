// Package jsonc decodes JSON documents that may contain comments and
// trailing commas, the dialect OpenCode and most editor configs accept.
package jsonc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
)

// Parse decodes a JSONC document into generic Go values.
// Numbers are kept as json.Number so re-encoding does not alter them.
// Blank input decodes to an empty object.
func Parse(data []byte) (any, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return map[string]any{}, nil
	}

	// Standardize rewrites its argument in place.
	buf := append([]byte(nil), trimmed...)
	standard, err := hujson.Standardize(buf)
	if err != nil {
		return nil, fmt.Errorf("parse jsonc: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(standard))
	dec.UseNumber()

	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return out, nil
}

// ParseObject decodes a JSONC document and returns it when it is an object.
// Any other top-level value yields an empty map.
func ParseObject(data []byte) (map[string]any, error) {
	v, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if obj, ok := v.(map[string]any); ok {
		return obj, nil
	}
	return map[string]any{}, nil
}

// ReadObject reads and decodes the object stored at path.
// A missing file yields an empty map.
func ReadObject(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	obj, err := ParseObject(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return obj, nil
}

// IsObject reports whether v is a decoded JSON object.
func IsObject(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}
