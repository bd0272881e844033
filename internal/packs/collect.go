// Package packs builds the set of assets a pack selection should produce.
package packs

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gosimple/slug"

	"github.com/ccconfigs/packsync/internal/adapter"
	"github.com/ccconfigs/packsync/internal/jsonc"
	"github.com/ccconfigs/packsync/internal/logging"
	"github.com/ccconfigs/packsync/internal/registry"
)

// SkillMarker is the file that marks a directory as a skill.
const SkillMarker = "SKILL.md"

// Assets is the desired output of a pack selection.
type Assets struct {
	// Commands and Agents map artifact names to generated markdown.
	Commands map[string]string
	Agents   map[string]string
	// Skills maps skill names to absolute source directories.
	Skills map[string]string
	// MCP maps server names to adapted server definitions.
	MCP map[string]any
	// Instructions holds sorted, unique absolute paths.
	Instructions []string
}

// NewAssets returns an empty asset set.
func NewAssets() *Assets {
	return &Assets{
		Commands:     map[string]string{},
		Agents:       map[string]string{},
		Skills:       map[string]string{},
		MCP:          map[string]any{},
		Instructions: []string{},
	}
}

// CommandNames returns the command names in sorted order.
func (a *Assets) CommandNames() []string { return sortedKeys(a.Commands) }

// AgentNames returns the agent names in sorted order.
func (a *Assets) AgentNames() []string { return sortedKeys(a.Agents) }

// SkillNames returns the skill names in sorted order.
func (a *Assets) SkillNames() []string { return sortedKeys(a.Skills) }

// MCPNames returns the MCP server names in sorted order.
func (a *Assets) MCPNames() []string { return sortedKeys(a.MCP) }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NormalizeSelection trims pack names, drops empties and duplicates, and
// sorts the result. Names are case-sensitive.
func NormalizeSelection(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ValidateSelection returns an UnknownPackError for the first selected name
// missing from reg.
func ValidateSelection(reg *registry.Registry, selected []string) error {
	for _, name := range selected {
		if _, ok := reg.Lookup(name); !ok {
			return &UnknownPackError{Name: name}
		}
	}
	return nil
}

type collector struct {
	sourceRoot string
	assets     *Assets
	owners     map[Kind]map[string]string
	logger     *slog.Logger
}

// Collect reads every selected pack under sourceRoot and merges their assets.
// It fails on unknown packs before reading any file, and on the first name
// collision between packs.
func Collect(sourceRoot string, reg *registry.Registry, selected []string, logger *slog.Logger) (*Assets, error) {
	root, err := filepath.Abs(sourceRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve source root: %w", err)
	}

	names := NormalizeSelection(selected)
	if err := ValidateSelection(reg, names); err != nil {
		return nil, err
	}

	c := &collector{
		sourceRoot: root,
		assets:     NewAssets(),
		owners: map[Kind]map[string]string{
			KindCommand: {},
			KindAgent:   {},
			KindSkill:   {},
			KindMCP:     {},
		},
		logger: logging.OrDiscard(logger),
	}

	instructions := map[string]bool{}
	for _, name := range names {
		pack, _ := reg.Lookup(name)
		if err := c.collectPack(name, pack, instructions); err != nil {
			return nil, err
		}
	}

	c.assets.Instructions = sortedKeys(instructions)
	return c.assets, nil
}

func (c *collector) collectPack(name string, pack registry.Pack, instructions map[string]bool) error {
	for _, pattern := range pack.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("pack %s: invalid ignore pattern %q", name, pattern)
		}
	}

	if pack.Commands != "" {
		if err := c.collectCommands(name, pack); err != nil {
			return err
		}
	}
	if pack.Agents != "" {
		if err := c.collectAgents(name, pack); err != nil {
			return err
		}
	}
	if pack.Skills != "" {
		if err := c.collectSkills(name, pack); err != nil {
			return err
		}
	}
	if pack.MCP != "" {
		if err := c.collectMCP(name, pack); err != nil {
			return err
		}
	}
	for _, p := range pack.Instructions {
		instructions[c.resolve(p)] = true
	}

	c.logger.Debug("collected pack",
		"pack", name,
		"commands", len(c.owned(KindCommand, name)),
		"agents", len(c.owned(KindAgent, name)),
		"skills", len(c.owned(KindSkill, name)),
		"mcp", len(c.owned(KindMCP, name)),
	)
	return nil
}

func (c *collector) collectCommands(pack string, desc registry.Pack) error {
	dir := c.resolve(desc.Commands)
	files, err := listMarkdownFiles(dir, false, desc.Ignore)
	if err != nil {
		return fmt.Errorf("pack %s: list commands: %w", pack, err)
	}

	for _, path := range files {
		name, err := artifactName(strings.TrimSuffix(filepath.Base(path), ".md"))
		if err != nil {
			return fmt.Errorf("pack %s: %w", pack, err)
		}
		if err := c.claim(KindCommand, name, pack); err != nil {
			return err
		}
		source, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read command %s: %w", path, err)
		}
		c.assets.Commands[name] = adapter.AdaptCommandMarkdown(string(source), name+" command").Markdown
	}
	return nil
}

func (c *collector) collectAgents(pack string, desc registry.Pack) error {
	dir := c.resolve(desc.Agents)
	files, err := listMarkdownFiles(dir, true, desc.Ignore)
	if err != nil {
		return fmt.Errorf("pack %s: list agents: %w", pack, err)
	}

	for _, path := range files {
		source, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read agent %s: %w", path, err)
		}
		raw := adapter.ParseFrontmatter(string(source)).Fields.Get("name")
		if raw == "" {
			raw = strings.TrimSuffix(filepath.Base(path), ".md")
		}
		name, err := artifactName(raw)
		if err != nil {
			return fmt.Errorf("pack %s: %w", pack, err)
		}
		if err := c.claim(KindAgent, name, pack); err != nil {
			return err
		}
		c.assets.Agents[name] = adapter.AdaptAgentMarkdown(string(source), name+" agent").Markdown
	}
	return nil
}

func (c *collector) collectSkills(pack string, desc registry.Pack) error {
	dirs, err := listSkillDirectories(c.resolve(desc.Skills))
	if err != nil {
		return fmt.Errorf("pack %s: list skills: %w", pack, err)
	}

	for _, dir := range dirs {
		name := filepath.Base(dir)
		if existing, ok := c.assets.Skills[name]; ok {
			if filepath.Clean(existing) != filepath.Clean(dir) {
				return &ConflictError{Kind: KindSkill, Name: name, Packs: [2]string{c.owners[KindSkill][name], pack}}
			}
			continue
		}
		c.owners[KindSkill][name] = pack
		c.assets.Skills[name] = dir
	}
	return nil
}

func (c *collector) collectMCP(pack string, desc registry.Pack) error {
	path := c.resolve(desc.MCP)
	doc, err := jsonc.ReadObject(path)
	if err != nil {
		return fmt.Errorf("pack %s: read mcp config: %w", pack, err)
	}

	servers := adapter.AdaptMCPConfig(doc)
	for _, name := range sortedKeys(servers) {
		if err := c.claim(KindMCP, name, pack); err != nil {
			return err
		}
		c.assets.MCP[name] = servers[name]
	}
	return nil
}

func (c *collector) claim(kind Kind, name, pack string) error {
	if owner, ok := c.owners[kind][name]; ok {
		return &ConflictError{Kind: kind, Name: name, Packs: [2]string{owner, pack}}
	}
	c.owners[kind][name] = pack
	return nil
}

func (c *collector) owned(kind Kind, pack string) []string {
	var names []string
	for name, owner := range c.owners[kind] {
		if owner == pack {
			names = append(names, name)
		}
	}
	return names
}

func (c *collector) resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.sourceRoot, filepath.FromSlash(p))
}

// artifactName returns name when it is usable as a single file name, and a
// slug of it otherwise.
func artifactName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name != "." && name != ".." && !strings.ContainsAny(name, "/\\ \t") && name != "" {
		return name, nil
	}
	slugged := slug.Make(name)
	if slugged == "" {
		return "", fmt.Errorf("cannot derive a file name from %q", name)
	}
	return slugged, nil
}

func listMarkdownFiles(dir string, recursive bool, ignore []string) ([]string, error) {
	var files []string
	err := walkMarkdown(dir, dir, recursive, ignore, &files)
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func walkMarkdown(root, dir string, recursive bool, ignore []string, files *[]string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if recursive {
				if err := walkMarkdown(root, path, true, ignore, files); err != nil {
					return err
				}
			}
			continue
		}
		if !entry.Type().IsRegular() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		if ignored(root, path, ignore) {
			continue
		}
		*files = append(*files, path)
	}
	return nil
}

func ignored(root, path string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func listSkillDirectories(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var dirs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if _, err := os.Stat(filepath.Join(path, SkillMarker)); err == nil {
			dirs = append(dirs, path)
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}
