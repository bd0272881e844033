// Package adapter translates Claude plugin assets (command and agent
// markdown, .mcp.json server definitions) into the shapes OpenCode expects.
package adapter

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Field is a single frontmatter key/value pair.
type Field struct {
	Key   string
	Value string
}

// Frontmatter is an ordered list of fields. Order is preserved on output so
// generated files are stable.
type Frontmatter []Field

// Get returns the value for key, or "" when absent.
func (f Frontmatter) Get(key string) string {
	for _, field := range f {
		if field.Key == key {
			return field.Value
		}
	}
	return ""
}

// Map returns the fields as a map.
func (f Frontmatter) Map() map[string]string {
	out := make(map[string]string, len(f))
	for _, field := range f {
		out[field.Key] = field.Value
	}
	return out
}

func (f *Frontmatter) set(key, value string) {
	for i := range *f {
		if (*f)[i].Key == key {
			(*f)[i].Value = value
			return
		}
	}
	*f = append(*f, Field{Key: key, Value: value})
}

// Parsed is a markdown document split into frontmatter and body.
type Parsed struct {
	Fields         Frontmatter
	Body           string
	HasFrontmatter bool
}

// ParseFrontmatter splits a markdown document into its leading frontmatter
// block and body. Only scalar values are kept; nested YAML values are ignored.
// A block that is not valid YAML is read line by line as "key: value".
func ParseFrontmatter(markdown string) Parsed {
	normalized := normalizeNewlines(markdown)
	if !strings.HasPrefix(normalized, "---\n") {
		return Parsed{Body: normalized}
	}

	lines := strings.Split(normalized, "\n")
	closing := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			closing = i
			break
		}
	}
	if closing == -1 {
		return Parsed{Body: normalized}
	}

	block := lines[1:closing]
	byLine := parseLineFields(block)
	fields, ok := parseYAMLFields(strings.Join(block, "\n"), byLine)
	if !ok {
		fields = byLine
	}

	return Parsed{
		Fields:         fields,
		Body:           strings.Join(lines[closing+1:], "\n"),
		HasFrontmatter: true,
	}
}

// parseYAMLFields decodes the block as a YAML mapping. byLine supplies the
// literal text for values YAML reads as a comment, e.g. "color: #ff0000".
func parseYAMLFields(raw string, byLine Frontmatter) (Frontmatter, bool) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, false
	}
	if len(doc.Content) == 0 {
		return Frontmatter{}, true
	}
	mapping := doc.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil, false
	}

	var fields Frontmatter
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key, value := mapping.Content[i], mapping.Content[i+1]
		if key.Kind != yaml.ScalarNode || value.Kind != yaml.ScalarNode {
			continue
		}
		name := strings.TrimSpace(key.Value)
		if name == "" {
			continue
		}
		if value.Tag == "!!null" {
			literal := byLine.Get(name)
			if !strings.HasPrefix(literal, "#") {
				literal = ""
			}
			fields.set(name, literal)
			continue
		}
		fields.set(name, strings.TrimSpace(value.Value))
	}
	return fields, true
}

func parseLineFields(lines []string) Frontmatter {
	var fields Frontmatter
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		key, value, ok := strings.Cut(trimmed, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		fields.set(key, stripQuotes(strings.TrimSpace(value)))
	}
	return fields
}

func stripQuotes(value string) string {
	if len(value) >= 2 {
		if (value[0] == '"' && value[len(value)-1] == '"') || (value[0] == '\'' && value[len(value)-1] == '\'') {
			return value[1 : len(value)-1]
		}
	}
	return value
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

var (
	numericValue = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	bareValue    = regexp.MustCompile(`^[a-zA-Z0-9_./\-]+$`)
)

func serializeValue(value string) string {
	if value == "true" || value == "false" || numericValue.MatchString(value) || bareValue.MatchString(value) {
		return value
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(value)
	return strings.TrimSuffix(buf.String(), "\n")
}

// FormatFrontmatter renders fields as a frontmatter block. Empty values are
// dropped; when nothing remains the result is "".
func FormatFrontmatter(fields Frontmatter) string {
	var b strings.Builder
	for _, field := range fields {
		if field.Value == "" {
			continue
		}
		if b.Len() == 0 {
			b.WriteString("---\n")
		}
		b.WriteString(field.Key)
		b.WriteString(": ")
		b.WriteString(serializeValue(field.Value))
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return ""
	}
	b.WriteString("---\n")
	return b.String()
}
