package packs

import (
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ccconfigs/packsync/internal/registry"
	"github.com/ccconfigs/packsync/internal/testutil"
)

func load(t *testing.T, src *testutil.TestSource) *registry.Registry {
	t.Helper()
	reg, err := registry.Load(src.Path)
	if err != nil {
		t.Fatalf("registry.Load() error = %v", err)
	}
	return reg
}

func TestCollectEssentials(t *testing.T) {
	src := testutil.EssentialsSource(t)

	assets, err := Collect(src.Path, load(t, src), []string{"essentials"}, nil)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if got := assets.CommandNames(); !reflect.DeepEqual(got, []string{"plan"}) {
		t.Fatalf("CommandNames() = %v", got)
	}
	if !strings.Contains(assets.Commands["plan"], "Task: $ARGUMENTS") {
		t.Fatalf("plan command = %q", assets.Commands["plan"])
	}
	agent := assets.Agents["reviewer"]
	for _, want := range []string{"mode: subagent", "model: anthropic/claude-haiku-4-5", "color: error"} {
		if !strings.Contains(agent, want) {
			t.Fatalf("reviewer agent missing %q:\n%s", want, agent)
		}
	}
	if got := assets.Skills["debugging"]; got != src.Abs("essentials/skills/debugging") {
		t.Fatalf("Skills[debugging] = %q", got)
	}
	server, ok := assets.MCP["context7"].(map[string]any)
	if !ok {
		t.Fatalf("MCP[context7] = %#v", assets.MCP["context7"])
	}
	if server["type"] != "remote" || server["url"] != "{env:MCP_PROXY_HOST}/servers/context7/sse" {
		t.Fatalf("context7 = %#v", server)
	}
	if got := assets.Instructions; !reflect.DeepEqual(got, []string{src.Abs("config/CLAUDE.md")}) {
		t.Fatalf("Instructions = %v", got)
	}
}

func TestCollectEmptySelection(t *testing.T) {
	src := testutil.EssentialsSource(t)

	assets, err := Collect(src.Path, load(t, src), nil, nil)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(assets.Commands)+len(assets.Agents)+len(assets.Skills)+len(assets.MCP)+len(assets.Instructions) != 0 {
		t.Fatalf("expected empty assets, got %#v", assets)
	}
}

func TestCollectUnknownPack(t *testing.T) {
	src := testutil.EssentialsSource(t)

	_, err := Collect(src.Path, load(t, src), []string{"essentials", "nope"}, nil)
	var unknown *UnknownPackError
	if !errors.As(err, &unknown) || unknown.Name != "nope" {
		t.Fatalf("Collect() error = %v, want UnknownPackError(nope)", err)
	}
}

func TestCollectConflicts(t *testing.T) {
	tests := []struct {
		name  string
		build func(*testutil.TestSource) *testutil.TestSource
		kind  Kind
		asset string
	}{
		{
			name: "command",
			build: func(s *testutil.TestSource) *testutil.TestSource {
				return s.
					WithPack("a", map[string]any{"commands": "a/commands"}).
					WithPack("b", map[string]any{"commands": "b/commands"}).
					WithFile("a/commands/plan.md", "A").
					WithFile("b/commands/plan.md", "B")
			},
			kind:  KindCommand,
			asset: "plan",
		},
		{
			name: "agent by frontmatter name",
			build: func(s *testutil.TestSource) *testutil.TestSource {
				return s.
					WithPack("a", map[string]any{"agents": "a/agents"}).
					WithPack("b", map[string]any{"agents": "b/agents"}).
					WithFile("a/agents/one.md", "---", "name: reviewer", "---", "A").
					WithFile("b/agents/two.md", "---", "name: reviewer", "---", "B")
			},
			kind:  KindAgent,
			asset: "reviewer",
		},
		{
			name: "skill in different directories",
			build: func(s *testutil.TestSource) *testutil.TestSource {
				return s.
					WithPack("a", map[string]any{"skills": "a/skills"}).
					WithPack("b", map[string]any{"skills": "b/skills"}).
					WithFile("a/skills/debugging/SKILL.md", "A").
					WithFile("b/skills/debugging/SKILL.md", "B")
			},
			kind:  KindSkill,
			asset: "debugging",
		},
		{
			name: "mcp server",
			build: func(s *testutil.TestSource) *testutil.TestSource {
				return s.
					WithPack("a", map[string]any{"mcp": "a/.mcp.json"}).
					WithPack("b", map[string]any{"mcp": "b/.mcp.json"}).
					WithFile("a/.mcp.json", `{"mcpServers": {"context7": {"command": "a"}}}`).
					WithFile("b/.mcp.json", `{"mcpServers": {"context7": {"command": "b"}}}`)
			},
			kind:  KindMCP,
			asset: "context7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := tt.build(testutil.NewTestSource(t)).Build()

			_, err := Collect(src.Path, load(t, src), []string{"b", "a"}, nil)
			var conflict *ConflictError
			if !errors.As(err, &conflict) {
				t.Fatalf("Collect() error = %v, want ConflictError", err)
			}
			if conflict.Kind != tt.kind || conflict.Name != tt.asset {
				t.Fatalf("conflict = %+v", conflict)
			}
			if conflict.Packs != [2]string{"a", "b"} {
				t.Fatalf("conflict packs = %v", conflict.Packs)
			}
		})
	}
}

func TestCollectSharedSkillDirectory(t *testing.T) {
	src := testutil.NewTestSource(t).
		WithPack("a", map[string]any{"skills": "shared/skills"}).
		WithPack("b", map[string]any{"skills": "shared/skills"}).
		WithFile("shared/skills/debugging/SKILL.md", "# Debugging").
		Build()

	assets, err := Collect(src.Path, load(t, src), []string{"a", "b"}, nil)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if got := assets.SkillNames(); !reflect.DeepEqual(got, []string{"debugging"}) {
		t.Fatalf("SkillNames() = %v", got)
	}
}

func TestCollectSkipsNonAssets(t *testing.T) {
	src := testutil.NewTestSource(t).
		WithPack("a", map[string]any{
			"commands": "a/commands",
			"agents":   "a/agents",
			"skills":   "a/skills",
			"ignore":   []string{"**/README.md", "drafts/**"},
		}).
		WithFile("a/commands/plan.md", "plan").
		WithFile("a/commands/notes.txt", "not markdown").
		WithFile("a/commands/nested/deep.md", "commands are not recursive").
		WithFile("a/commands/README.md", "ignored").
		WithFile("a/agents/team/lead.md", "agents are recursive").
		WithFile("a/agents/drafts/wip.md", "ignored").
		WithFile("a/skills/empty/notes.md", "no SKILL.md").
		WithFile("a/skills/real/SKILL.md", "skill").
		Build()

	assets, err := Collect(src.Path, load(t, src), []string{"a"}, nil)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if got := assets.CommandNames(); !reflect.DeepEqual(got, []string{"plan"}) {
		t.Fatalf("CommandNames() = %v", got)
	}
	if got := assets.AgentNames(); !reflect.DeepEqual(got, []string{"lead"}) {
		t.Fatalf("AgentNames() = %v", got)
	}
	if got := assets.SkillNames(); !reflect.DeepEqual(got, []string{"real"}) {
		t.Fatalf("SkillNames() = %v", got)
	}
}

func TestCollectMissingFoldersAreEmpty(t *testing.T) {
	src := testutil.NewTestSource(t).
		WithPack("a", map[string]any{
			"commands": "a/commands",
			"agents":   "a/agents",
			"skills":   "a/skills",
			"mcp":      "a/.mcp.json",
		}).
		Build()

	assets, err := Collect(src.Path, load(t, src), []string{"a"}, nil)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(assets.Commands)+len(assets.Agents)+len(assets.Skills)+len(assets.MCP) != 0 {
		t.Fatalf("expected empty assets, got %#v", assets)
	}
}

func TestCollectInstructionsSortedAndUnique(t *testing.T) {
	src := testutil.NewTestSource(t).
		WithPack("a", map[string]any{"instructions": []string{"z.md", "a.md"}}).
		WithPack("b", map[string]any{"instructions": []string{"a.md", "m.md"}}).
		Build()

	assets, err := Collect(src.Path, load(t, src), []string{"a", "b"}, nil)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	want := []string{src.Abs("a.md"), src.Abs("m.md"), src.Abs("z.md")}
	if !reflect.DeepEqual(assets.Instructions, want) {
		t.Fatalf("Instructions = %v, want %v", assets.Instructions, want)
	}
}

func TestCollectSlugsUnsafeAgentNames(t *testing.T) {
	src := testutil.NewTestSource(t).
		WithPack("a", map[string]any{"agents": "a/agents"}).
		WithFile("a/agents/x.md", "---", "name: Code Reviewer", "---", "Review").
		Build()

	assets, err := Collect(src.Path, load(t, src), []string{"a"}, nil)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if got := assets.AgentNames(); !reflect.DeepEqual(got, []string{"code-reviewer"}) {
		t.Fatalf("AgentNames() = %v", got)
	}
}

func TestNormalizeSelection(t *testing.T) {
	got := NormalizeSelection([]string{" b", "a", "", "b", "A"})
	want := []string{"A", "a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("NormalizeSelection() = %v, want %v", got, want)
	}
}

func TestResolveAbsolutePath(t *testing.T) {
	c := &collector{sourceRoot: "/src"}
	abs := filepath.Join(string(filepath.Separator), "elsewhere", "x.md")
	if got := c.resolve(abs); got != abs {
		t.Fatalf("resolve(%q) = %q", abs, got)
	}
}
