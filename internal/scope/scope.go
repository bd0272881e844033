// Package scope resolves where a sync writes: the global OpenCode config
// directory or a repository's opencode.json and .opencode/ folder.
package scope

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-git/go-git/v5"

	"github.com/ccconfigs/packsync/internal/state"
)

// Scope selects a sync target.
type Scope string

const (
	Global Scope = "global"
	Repo   Scope = "repo"
)

// ConfigFileName is the OpenCode config file name in both scopes.
const ConfigFileName = "opencode.json"

// All returns every scope in display order.
func All() []Scope {
	return []Scope{Global, Repo}
}

// ParseScope validates a scope name.
func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case Global:
		return Global, nil
	case Repo:
		return Repo, nil
	}
	return "", fmt.Errorf("unsupported scope %q (expected global or repo)", s)
}

// Paths are the target locations for one scope.
type Paths struct {
	Scope       Scope  `json:"scope"`
	ScopeRoot   string `json:"scopeRoot"`
	ConfigDir   string `json:"configDir"`
	ConfigPath  string `json:"configPath"`
	StatePath   string `json:"statePath"`
	CommandsDir string `json:"commandsDir"`
	AgentsDir   string `json:"agentsDir"`
	SkillsDir   string `json:"skillsDir"`
}

// Env carries the directories resolution depends on. Empty fields are
// filled from the process environment.
type Env struct {
	Home string
	// ConfigHome is the base for the global OpenCode directory.
	ConfigHome string
	Cwd        string
}

func (e Env) withDefaults() (Env, error) {
	if e.Home == "" {
		e.Home = xdg.Home
	}
	if e.ConfigHome == "" {
		// OpenCode reads ~/.config on every platform, so the platform
		// default from xdg only applies when XDG_CONFIG_HOME is set.
		if v := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); v != "" {
			e.ConfigHome = v
		} else {
			e.ConfigHome = filepath.Join(e.Home, ".config")
		}
	}
	if e.Cwd == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return e, fmt.Errorf("resolve working directory: %w", err)
		}
		e.Cwd = cwd
	}
	return e, nil
}

// Resolve returns the target paths for s. For the repo scope, repoPath
// names the repository root; when empty the git work tree enclosing the
// working directory is used, or the working directory itself.
func Resolve(s Scope, repoPath string, env Env) (Paths, error) {
	env, err := env.withDefaults()
	if err != nil {
		return Paths{}, err
	}

	switch s {
	case Global:
		dir := filepath.Join(env.ConfigHome, "opencode")
		return layout(s, dir, dir, filepath.Join(dir, ConfigFileName)), nil
	case Repo:
		root, err := repoRoot(repoPath, env)
		if err != nil {
			return Paths{}, err
		}
		return layout(s, root, filepath.Join(root, ".opencode"), filepath.Join(root, ConfigFileName)), nil
	}
	return Paths{}, fmt.Errorf("unsupported scope %q", s)
}

func layout(s Scope, root, configDir, configPath string) Paths {
	return Paths{
		Scope:       s,
		ScopeRoot:   root,
		ConfigDir:   configDir,
		ConfigPath:  configPath,
		StatePath:   state.Path(configDir),
		CommandsDir: filepath.Join(configDir, "commands"),
		AgentsDir:   filepath.Join(configDir, "agents"),
		SkillsDir:   filepath.Join(configDir, "skills"),
	}
}

func repoRoot(repoPath string, env Env) (string, error) {
	if strings.TrimSpace(repoPath) != "" {
		return ExpandPath(repoPath, env.Home, env.Cwd)
	}
	if root, ok := GitRoot(env.Cwd); ok {
		return root, nil
	}
	return filepath.Clean(env.Cwd), nil
}

// GitRoot returns the root of the git work tree containing dir.
func GitRoot(dir string) (string, bool) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", false
	}
	wt, err := repo.Worktree()
	if err != nil {
		// Bare repositories have no work tree.
		return "", false
	}
	return filepath.Clean(wt.Filesystem.Root()), true
}

// ExpandPath resolves a user-supplied path: a leading ~/ is the home
// directory and relative paths are taken from cwd.
func ExpandPath(p, home, cwd string) (string, error) {
	p = strings.TrimSpace(p)
	switch {
	case p == "":
		return "", fmt.Errorf("path is empty")
	case p == "~":
		p = home
	case strings.HasPrefix(p, "~/"):
		p = filepath.Join(home, p[2:])
	case !filepath.IsAbs(p):
		p = filepath.Join(cwd, p)
	}
	return filepath.Clean(p), nil
}

// Abbreviate replaces occurrences of the home directory with ~ for display.
// It works on whole change log lines, not only bare paths.
func Abbreviate(s, home string) string {
	home = filepath.Clean(home)
	if home == "" || home == "." || home == string(filepath.Separator) {
		return s
	}
	return strings.ReplaceAll(s, home, "~")
}
