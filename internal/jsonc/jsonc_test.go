package jsonc

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestParseObjectWithCommentsAndTrailingCommas(t *testing.T) {
	src := `{
  // comment
  "theme": "opencode",
  "mcp": {
    "context7": {
      "type": "remote", /* inline */
    },
  },
}`

	obj, err := ParseObject([]byte(src))
	if err != nil {
		t.Fatalf("ParseObject() error = %v", err)
	}
	if obj["theme"] != "opencode" {
		t.Fatalf("theme = %v, want opencode", obj["theme"])
	}
	mcp, ok := obj["mcp"].(map[string]any)
	if !ok {
		t.Fatalf("mcp = %T, want object", obj["mcp"])
	}
	if _, ok := mcp["context7"]; !ok {
		t.Fatalf("mcp.context7 missing: %v", mcp)
	}
}

func TestParseKeepsCommentMarkersInsideStrings(t *testing.T) {
	obj, err := ParseObject([]byte(`{"url": "https://example.com/a//b", "glob": "/* not a comment */"}`))
	if err != nil {
		t.Fatalf("ParseObject() error = %v", err)
	}
	if obj["url"] != "https://example.com/a//b" {
		t.Fatalf("url = %v", obj["url"])
	}
	if obj["glob"] != "/* not a comment */" {
		t.Fatalf("glob = %v", obj["glob"])
	}
}

func TestParseBlankInputIsEmptyObject(t *testing.T) {
	obj, err := ParseObject([]byte("  \n\t"))
	if err != nil {
		t.Fatalf("ParseObject() error = %v", err)
	}
	if len(obj) != 0 {
		t.Fatalf("ParseObject() = %v, want empty", obj)
	}
}

func TestParseObjectNonObjectTopLevel(t *testing.T) {
	obj, err := ParseObject([]byte(`[1, 2, 3]`))
	if err != nil {
		t.Fatalf("ParseObject() error = %v", err)
	}
	if len(obj) != 0 {
		t.Fatalf("ParseObject() = %v, want empty", obj)
	}
}

func TestParsePreservesNumbers(t *testing.T) {
	obj, err := ParseObject([]byte(`{"timeout": 1.50, "port": 8080}`))
	if err != nil {
		t.Fatalf("ParseObject() error = %v", err)
	}
	if n, ok := obj["timeout"].(json.Number); !ok || n.String() != "1.50" {
		t.Fatalf("timeout = %#v, want json.Number(1.50)", obj["timeout"])
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := Parse([]byte(`{"a": `)); err == nil {
		t.Fatal("expected error for truncated document")
	}
}

func TestReadObjectMissingFile(t *testing.T) {
	obj, err := ReadObject(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("ReadObject() error = %v", err)
	}
	if len(obj) != 0 {
		t.Fatalf("ReadObject() = %v, want empty", obj)
	}
}

func TestReadObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{\"a\": true,}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	obj, err := ReadObject(path)
	if err != nil {
		t.Fatalf("ReadObject() error = %v", err)
	}
	if obj["a"] != true {
		t.Fatalf("a = %v, want true", obj["a"])
	}
}
