package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccconfigs/packsync/internal/adapter"
	"github.com/ccconfigs/packsync/internal/packs"
	"github.com/ccconfigs/packsync/internal/registry"
	"github.com/ccconfigs/packsync/internal/ui"
)

var showRaw bool

// packDetail is the `show --json` payload.
type packDetail struct {
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Commands     []string `json:"commands"`
	Agents       []string `json:"agents"`
	Skills       []string `json:"skills"`
	MCP          []string `json:"mcp"`
	Instructions []string `json:"instructions"`
}

var showCmd = &cobra.Command{
	Use:   "show <pack>",
	Short: "Show what a pack would generate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sourceRoot, err := resolveSourceRoot("")
		if err != nil {
			return err
		}
		reg, err := registry.Load(sourceRoot)
		if err != nil {
			return handleEngineError(err)
		}
		name := strings.TrimSpace(args[0])
		pack, ok := reg.Lookup(name)
		if !ok {
			return handleEngineError(&packs.UnknownPackError{Name: name})
		}
		assets, err := packs.Collect(sourceRoot, reg, []string{name}, getLogger())
		if err != nil {
			return handleEngineError(err)
		}

		detail := packDetail{
			Name:         name,
			Description:  pack.Description,
			Commands:     assets.CommandNames(),
			Agents:       assets.AgentNames(),
			Skills:       assets.SkillNames(),
			MCP:          assets.MCPNames(),
			Instructions: assets.Instructions,
		}
		if isJSONOutput() {
			outputSuccess(detail, nil)
			return nil
		}

		doc := packMarkdown(detail, assets)
		if showRaw {
			fmt.Fprint(stdout, doc)
			return nil
		}
		rendered, err := ui.RenderMarkdown(doc, ui.TermWidth())
		if err != nil {
			fmt.Fprint(stdout, doc)
			return nil
		}
		fmt.Fprint(stdout, rendered)
		return nil
	},
}

// packMarkdown describes a pack and the generated frontmatter of its assets.
func packMarkdown(d packDetail, assets *packs.Assets) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", d.Name)
	if d.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", d.Description)
	}

	section := func(title string, names []string, bodies map[string]string) {
		if len(names) == 0 {
			return
		}
		fmt.Fprintf(&sb, "## %s\n\n", title)
		for _, n := range names {
			fmt.Fprintf(&sb, "- `%s`", n)
			if desc := descriptionOf(bodies[n]); desc != "" {
				fmt.Fprintf(&sb, ": %s", desc)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	section("Commands", d.Commands, assets.Commands)
	section("Agents", d.Agents, assets.Agents)
	section("Skills", d.Skills, nil)
	section("MCP servers", d.MCP, nil)
	section("Instructions", d.Instructions, nil)
	return sb.String()
}

func descriptionOf(markdown string) string {
	if markdown == "" {
		return ""
	}
	return adapter.ParseFrontmatter(markdown).Fields.Get("description")
}

func init() {
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "Print markdown without rendering")
	rootCmd.AddCommand(showCmd)
}
