package adapter

import (
	"strings"
	"testing"
)

func lines(parts ...string) string {
	return strings.Join(parts, "\n")
}

func TestParseFrontmatter(t *testing.T) {
	src := lines(
		"---",
		"description: Example command",
		"model: claude-haiku-4-5",
		"---",
		"",
		"Body content",
	)

	parsed := ParseFrontmatter(src)
	if !parsed.HasFrontmatter {
		t.Fatal("HasFrontmatter = false, want true")
	}
	if got := parsed.Fields.Get("description"); got != "Example command" {
		t.Fatalf("description = %q", got)
	}
	if got := parsed.Fields.Get("model"); got != "claude-haiku-4-5" {
		t.Fatalf("model = %q", got)
	}
	if strings.TrimSpace(parsed.Body) != "Body content" {
		t.Fatalf("body = %q", parsed.Body)
	}
}

func TestParseFrontmatterFallsBackToLineParsing(t *testing.T) {
	src := lines(
		"---",
		"description: Plan: break work into steps",
		"color: '#ff0000'",
		"---",
		"body",
	)

	parsed := ParseFrontmatter(src)
	if got := parsed.Fields.Get("description"); got != "Plan: break work into steps" {
		t.Fatalf("description = %q", got)
	}
	if got := parsed.Fields.Get("color"); got != "#ff0000" {
		t.Fatalf("color = %q", got)
	}
}

func TestParseFrontmatterKeepsUnquotedHexColor(t *testing.T) {
	parsed := ParseFrontmatter(lines("---", "name: x", "color: #00ff00", "---", "body"))
	if got := parsed.Fields.Get("color"); got != "#00ff00" {
		t.Fatalf("color = %q, want #00ff00", got)
	}
}

func TestParseFrontmatterWithoutBlock(t *testing.T) {
	for _, src := range []string{"plain body", "---\nunterminated: true\n"} {
		parsed := ParseFrontmatter(src)
		if parsed.HasFrontmatter {
			t.Fatalf("HasFrontmatter = true for %q", src)
		}
		if parsed.Body != src {
			t.Fatalf("body = %q, want %q", parsed.Body, src)
		}
	}
}

func TestParseFrontmatterNormalizesCRLF(t *testing.T) {
	parsed := ParseFrontmatter("---\r\ndescription: x\r\n---\r\nbody\r\n")
	if parsed.Fields.Get("description") != "x" {
		t.Fatalf("description = %q", parsed.Fields.Get("description"))
	}
	if parsed.Body != "body\n" {
		t.Fatalf("body = %q", parsed.Body)
	}
}

func TestAdaptCommandMarkdown(t *testing.T) {
	src := lines(
		"---",
		"description: Plan implementation",
		"---",
		"",
		"Task: $ARGS",
		`Context: "${{{ARGS}}}"`,
	)

	adapted := AdaptCommandMarkdown(src, "fallback")
	if got := adapted.Frontmatter.Get("description"); got != "Plan implementation" {
		t.Fatalf("description = %q", got)
	}
	if !strings.Contains(adapted.Markdown, "Task: $ARGUMENTS") {
		t.Fatalf("markdown missing $ARGUMENTS:\n%s", adapted.Markdown)
	}
	if !strings.Contains(adapted.Markdown, `Context: "$ARGUMENTS"`) {
		t.Fatalf("markdown missing templated context:\n%s", adapted.Markdown)
	}
	if strings.Contains(adapted.Markdown, "$ARGS\n") || strings.Contains(adapted.Markdown, "{{{") {
		t.Fatalf("markdown still has Claude placeholders:\n%s", adapted.Markdown)
	}

	want := "---\ndescription: \"Plan implementation\"\n---\nTask: $ARGUMENTS\nContext: \"$ARGUMENTS\"\n"
	if adapted.Markdown != want {
		t.Fatalf("markdown =\n%q\nwant\n%q", adapted.Markdown, want)
	}
}

func TestAdaptCommandMarkdownFallbackDescription(t *testing.T) {
	adapted := AdaptCommandMarkdown("Do the thing", "plan command")
	if got := adapted.Frontmatter.Get("description"); got != "plan command" {
		t.Fatalf("description = %q", got)
	}

	adapted = AdaptCommandMarkdown("# Release checklist\n\nSteps", "release command")
	if got := adapted.Frontmatter.Get("description"); got != "Release checklist" {
		t.Fatalf("description = %q, want heading text", got)
	}
}

func TestAdaptCommandMarkdownKeepsOptionalFields(t *testing.T) {
	src := lines("---", "description: d", "agent: build", "model: claude-sonnet-4-5", "subtask: true", "---", "body")
	adapted := AdaptCommandMarkdown(src, "fallback")

	if adapted.Frontmatter.Get("agent") != "build" {
		t.Fatalf("agent = %q", adapted.Frontmatter.Get("agent"))
	}
	if adapted.Frontmatter.Get("model") != "anthropic/claude-sonnet-4-5" {
		t.Fatalf("model = %q", adapted.Frontmatter.Get("model"))
	}
	if adapted.Frontmatter.Get("subtask") != "true" {
		t.Fatalf("subtask = %q", adapted.Frontmatter.Get("subtask"))
	}
}

func TestAdaptAgentMarkdown(t *testing.T) {
	src := lines(
		"---",
		"name: research-breadth",
		"description: Broad survey agent",
		"model: claude-haiku-4-5",
		"color: blue",
		"---",
		"",
		"You are a specialist.",
	)

	adapted := AdaptAgentMarkdown(src, "fallback")
	if adapted.Frontmatter.Get("mode") != "subagent" {
		t.Fatalf("mode = %q", adapted.Frontmatter.Get("mode"))
	}
	if adapted.Frontmatter.Get("model") != "anthropic/claude-haiku-4-5" {
		t.Fatalf("model = %q", adapted.Frontmatter.Get("model"))
	}
	if adapted.Frontmatter.Get("color") != "info" {
		t.Fatalf("color = %q", adapted.Frontmatter.Get("color"))
	}
	for _, want := range []string{"mode: subagent", "color: info", "You are a specialist.\n"} {
		if !strings.Contains(adapted.Markdown, want) {
			t.Fatalf("markdown missing %q:\n%s", want, adapted.Markdown)
		}
	}
	if strings.Contains(adapted.Markdown, "name:") {
		t.Fatalf("agent name should not be copied into output:\n%s", adapted.Markdown)
	}
}

func TestAdaptAgentMarkdownDropsInvalidColor(t *testing.T) {
	src := lines("---", "description: Generic reviewer", "color: bright-red-neon", "---", "", "Review code carefully.")

	adapted := AdaptAgentMarkdown(src, "fallback")
	if got := adapted.Frontmatter.Get("color"); got != "" {
		t.Fatalf("color = %q, want dropped", got)
	}
	if strings.Contains(adapted.Markdown, "bright-red-neon") {
		t.Fatalf("markdown kept invalid color:\n%s", adapted.Markdown)
	}
}

func TestAdaptAgentMarkdownKeepsExplicitMode(t *testing.T) {
	adapted := AdaptAgentMarkdown(lines("---", "mode: primary", "temperature: 0.20", "hidden: true", "---", "x"), "fallback")
	if adapted.Frontmatter.Get("mode") != "primary" {
		t.Fatalf("mode = %q", adapted.Frontmatter.Get("mode"))
	}
	if adapted.Frontmatter.Get("temperature") != "0.20" {
		t.Fatalf("temperature = %q", adapted.Frontmatter.Get("temperature"))
	}
	if adapted.Frontmatter.Get("hidden") != "true" {
		t.Fatalf("hidden = %q", adapted.Frontmatter.Get("hidden"))
	}
}

func TestNormalizeAgentColor(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"red", "error", true},
		{"yellow", "warning", true},
		{"blue", "info", true},
		{" Accent ", "accent", true},
		{"#ABC", "#abc", true},
		{"#12345", "", false},
		{"ultraviolet", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeAgentColor(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("NormalizeAgentColor(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestToOpenCodeModelID(t *testing.T) {
	tests := map[string]string{
		"":                           "",
		"inherit":                    "inherit",
		"claude-opus-4-1":            "anthropic/claude-opus-4-1",
		"openai/gpt-5":               "openai/gpt-5",
		"anthropic/claude-haiku-4-5": "anthropic/claude-haiku-4-5",
		"gpt-4o":                     "gpt-4o",
	}
	for in, want := range tests {
		if got := ToOpenCodeModelID(in); got != want {
			t.Errorf("ToOpenCodeModelID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatFrontmatterQuoting(t *testing.T) {
	got := FormatFrontmatter(Frontmatter{
		{Key: "description", Value: "Review <diff> & fix"},
		{Key: "mode", Value: "subagent"},
		{Key: "temperature", Value: "-0.5"},
		{Key: "empty", Value: ""},
	})
	want := "---\ndescription: \"Review <diff> & fix\"\nmode: subagent\ntemperature: -0.5\n---\n"
	if got != want {
		t.Fatalf("FormatFrontmatter() =\n%q\nwant\n%q", got, want)
	}
	if FormatFrontmatter(Frontmatter{{Key: "a", Value: ""}}) != "" {
		t.Fatal("expected empty output when every value is empty")
	}
}

func TestConvertEnvSyntax(t *testing.T) {
	got := ConvertEnvSyntax("${MCP_PROXY_HOST}/servers/context7/sse")
	if got != "{env:MCP_PROXY_HOST}/servers/context7/sse" {
		t.Fatalf("ConvertEnvSyntax() = %q", got)
	}
	if got := ConvertEnvSyntax("${lower}"); got != "${lower}" {
		t.Fatalf("lowercase refs should be left alone, got %q", got)
	}
}

func TestAdaptMCPConfig(t *testing.T) {
	src := map[string]any{
		"mcpServers": map[string]any{
			"context7": map[string]any{
				"type": "sse",
				"url":  "${MCP_PROXY_HOST}/servers/context7/sse",
				"headers": map[string]any{
					"Authorization": "Basic ${MCP_PROXY_AUTH}",
				},
			},
			"local": map[string]any{
				"type":    "stdio",
				"command": []any{"npx", "${TOOL}"},
			},
			"broken": "not an object",
		},
	}

	adapted := AdaptMCPConfig(src)
	if _, ok := adapted["broken"]; ok {
		t.Fatal("non-object server should be skipped")
	}

	context7 := adapted["context7"].(map[string]any)
	if context7["type"] != "remote" {
		t.Fatalf("type = %v, want remote", context7["type"])
	}
	if context7["url"] != "{env:MCP_PROXY_HOST}/servers/context7/sse" {
		t.Fatalf("url = %v", context7["url"])
	}
	headers := context7["headers"].(map[string]any)
	if headers["Authorization"] != "Basic {env:MCP_PROXY_AUTH}" {
		t.Fatalf("Authorization = %v", headers["Authorization"])
	}

	local := adapted["local"].(map[string]any)
	if local["type"] != "local" {
		t.Fatalf("type = %v, want local", local["type"])
	}
	if cmd := local["command"].([]any); cmd[1] != "{env:TOOL}" {
		t.Fatalf("command = %v", cmd)
	}
}

func TestAdaptMCPConfigIgnoresOtherShapes(t *testing.T) {
	for _, doc := range []any{nil, "x", map[string]any{}, map[string]any{"mcpServers": []any{}}} {
		if got := AdaptMCPConfig(doc); len(got) != 0 {
			t.Fatalf("AdaptMCPConfig(%v) = %v, want empty", doc, got)
		}
	}
}
