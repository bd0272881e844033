package adapter

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Adapted is a converted markdown document and the frontmatter written to it.
type Adapted struct {
	Markdown    string
	Frontmatter Frontmatter
}

var argsPlaceholder = regexp.MustCompile(`\$ARGS\b`)

// NormalizeCommandTemplate rewrites Claude argument placeholders to the
// OpenCode $ARGUMENTS form.
func NormalizeCommandTemplate(template string) string {
	template = strings.ReplaceAll(template, "${{{ARGS}}}", "$ARGUMENTS")
	return argsPlaceholder.ReplaceAllString(template, "$$ARGUMENTS")
}

// ToOpenCodeModelID maps bare Claude model ids onto the anthropic provider.
// Provider-qualified ids and "inherit" pass through.
func ToOpenCodeModelID(model string) string {
	if model == "" || model == "inherit" || strings.Contains(model, "/") {
		return model
	}
	if strings.HasPrefix(model, "claude-") {
		return "anthropic/" + model
	}
	return model
}

var themeColors = map[string]bool{
	"primary":   true,
	"secondary": true,
	"accent":    true,
	"success":   true,
	"warning":   true,
	"error":     true,
	"info":      true,
}

var colorAliases = map[string]string{
	"red":     "error",
	"yellow":  "warning",
	"orange":  "warning",
	"amber":   "warning",
	"blue":    "info",
	"cyan":    "info",
	"teal":    "info",
	"green":   "success",
	"lime":    "success",
	"purple":  "accent",
	"pink":    "accent",
	"magenta": "accent",
	"gray":    "secondary",
	"grey":    "secondary",
}

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// NormalizeAgentColor maps a Claude agent colour onto an OpenCode theme
// colour or hex value. It returns false when the colour cannot be expressed.
func NormalizeAgentColor(color string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(color))
	if normalized == "" {
		return "", false
	}
	if hexColor.MatchString(normalized) || themeColors[normalized] {
		return normalized, true
	}
	alias, ok := colorAliases[normalized]
	return alias, ok
}

// AdaptCommandMarkdown converts a Claude command into an OpenCode command.
func AdaptCommandMarkdown(markdown, fallbackDescription string) Adapted {
	parsed := ParseFrontmatter(markdown)

	out := Frontmatter{{Key: "description", Value: describe(parsed, fallbackDescription)}}
	if agent := parsed.Fields.Get("agent"); agent != "" {
		out.set("agent", agent)
	}
	if model := parsed.Fields.Get("model"); model != "" {
		out.set("model", ToOpenCodeModelID(model))
	}
	if subtask := parsed.Fields.Get("subtask"); subtask != "" {
		out.set("subtask", subtask)
	}

	body := NormalizeCommandTemplate(parsed.Body)
	return Adapted{
		Markdown:    render(out, body),
		Frontmatter: out,
	}
}

// AdaptAgentMarkdown converts a Claude agent into an OpenCode agent. Agents
// default to subagent mode.
func AdaptAgentMarkdown(markdown, fallbackDescription string) Adapted {
	parsed := ParseFrontmatter(markdown)

	mode := parsed.Fields.Get("mode")
	if mode == "" {
		mode = "subagent"
	}
	out := Frontmatter{
		{Key: "description", Value: describe(parsed, fallbackDescription)},
		{Key: "mode", Value: mode},
	}
	if model := parsed.Fields.Get("model"); model != "" {
		out.set("model", ToOpenCodeModelID(model))
	}
	if raw := parsed.Fields.Get("color"); raw != "" {
		if color, ok := NormalizeAgentColor(raw); ok {
			out.set("color", color)
		}
	}
	if temperature := parsed.Fields.Get("temperature"); temperature != "" {
		out.set("temperature", temperature)
	}
	if hidden := parsed.Fields.Get("hidden"); hidden != "" {
		out.set("hidden", hidden)
	}

	return Adapted{
		Markdown:    render(out, parsed.Body),
		Frontmatter: out,
	}
}

func render(fields Frontmatter, body string) string {
	body = strings.TrimLeft(body, "\n")
	if !strings.HasSuffix(body, "\n") {
		body += "\n"
	}
	return FormatFrontmatter(fields) + body
}

func describe(parsed Parsed, fallback string) string {
	if description := parsed.Fields.Get("description"); description != "" {
		return description
	}
	if heading := FirstHeading(parsed.Body); heading != "" {
		return heading
	}
	return fallback
}

// FirstHeading returns the plain text of the first heading in a markdown
// body, or "" when there is none.
func FirstHeading(body string) string {
	source := []byte(body)
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))

	var heading string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok {
			heading = strings.TrimSpace(inlineText(h, source))
			if heading != "" {
				return ast.WalkStop, nil
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return heading
}

func inlineText(n ast.Node, source []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(source))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		default:
			b.WriteString(inlineText(c, source))
		}
	}
	return b.String()
}
