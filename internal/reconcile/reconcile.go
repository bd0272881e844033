// Package reconcile brings a target in line with a desired asset set.
//
// The previous managed state is the only record of ownership. Cleanup
// removes names it lists that are no longer desired; files it does not list
// are never touched, whatever their names.
package reconcile

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ccconfigs/packsync/internal/configmerge"
	"github.com/ccconfigs/packsync/internal/fsops"
	"github.com/ccconfigs/packsync/internal/logging"
	"github.com/ccconfigs/packsync/internal/packs"
	"github.com/ccconfigs/packsync/internal/scope"
	"github.com/ccconfigs/packsync/internal/state"
)

// Options controls a reconciliation.
type Options struct {
	DryRun     bool
	SourceRoot string
	// Plugins is the normalised selection recorded in the new state.
	Plugins []string
	Logger  *slog.Logger
}

// Result reports what a reconciliation did, or would do in dry-run mode.
type Result struct {
	Changes  []string
	UpToDate bool
	State    *state.State
}

// Reconcile applies assets to paths. previous may be nil when no state was
// recorded. Errors abort the run; changes already applied stay applied.
func Reconcile(assets *packs.Assets, previous *state.State, paths scope.Paths, opts Options) (*Result, error) {
	logger := logging.OrDiscard(opts.Logger)
	next := BuildState(opts.SourceRoot, opts.Plugins, assets)

	if previous == nil && len(opts.Plugins) == 0 {
		return &Result{Changes: []string{}, UpToDate: true, State: next}, nil
	}

	ex := fsops.NewExecutor(opts.DryRun, logger)

	for _, dir := range []string{paths.ConfigDir, paths.CommandsDir, paths.AgentsDir, paths.SkillsDir} {
		if err := ex.EnsureDir(dir); err != nil {
			return nil, err
		}
	}

	if err := cleanup(ex, previous, assets, paths, logger); err != nil {
		return nil, err
	}

	for _, name := range assets.CommandNames() {
		if err := ex.WriteIfChanged(markdownPath(paths.CommandsDir, name), []byte(assets.Commands[name])); err != nil {
			return nil, err
		}
	}
	for _, name := range assets.AgentNames() {
		if err := ex.WriteIfChanged(markdownPath(paths.AgentsDir, name), []byte(assets.Agents[name])); err != nil {
			return nil, err
		}
	}
	for _, name := range assets.SkillNames() {
		if err := ex.EnsureSymlink(assets.Skills[name], filepath.Join(paths.SkillsDir, name)); err != nil {
			return nil, err
		}
	}

	current, err := configmerge.Load(paths.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	merged := configmerge.Merge(current, previous, assets.MCP, assets.Instructions)
	content, err := configmerge.Encode(merged)
	if err != nil {
		return nil, err
	}
	if err := ex.WriteIfChanged(paths.ConfigPath, content); err != nil {
		return nil, err
	}

	if next.Generated.Any() || len(next.Plugins) > 0 {
		encoded, err := state.Encode(next)
		if err != nil {
			return nil, err
		}
		if err := ex.WriteIfChanged(paths.StatePath, encoded); err != nil {
			return nil, err
		}
	} else if err := ex.Remove(paths.StatePath); err != nil {
		return nil, err
	}

	changes := ex.Changes()
	logger.Debug("reconciled", "scope", paths.Scope, "changes", len(changes), "dry_run", opts.DryRun)
	return &Result{Changes: changes, UpToDate: len(changes) == 0, State: next}, nil
}

func cleanup(ex *fsops.Executor, previous *state.State, assets *packs.Assets, paths scope.Paths, logger *slog.Logger) error {
	if previous == nil {
		return nil
	}
	for _, name := range recorded(previous.Generated.Commands, logger) {
		if _, ok := assets.Commands[name]; !ok {
			if err := ex.Remove(markdownPath(paths.CommandsDir, name)); err != nil {
				return err
			}
		}
	}
	for _, name := range recorded(previous.Generated.Agents, logger) {
		if _, ok := assets.Agents[name]; !ok {
			if err := ex.Remove(markdownPath(paths.AgentsDir, name)); err != nil {
				return err
			}
		}
	}
	for _, name := range recorded(previous.Generated.Skills, logger) {
		if _, ok := assets.Skills[name]; !ok {
			if err := ex.Remove(filepath.Join(paths.SkillsDir, name)); err != nil {
				return err
			}
		}
	}
	return nil
}

// recorded drops names that would resolve outside their target folder.
// A hand-edited state file must not steer removal elsewhere.
func recorded(names []string, logger *slog.Logger) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" || name == "." || name == ".." || filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
			logger.Warn("ignoring unsafe name in managed state", "name", name)
			continue
		}
		out = append(out, name)
	}
	return out
}

func markdownPath(dir, name string) string {
	return filepath.Join(dir, name+".md")
}

// BuildState returns the managed state describing assets.
func BuildState(sourceRoot string, plugins []string, assets *packs.Assets) *state.State {
	instructions := append([]string{}, assets.Instructions...)
	return &state.State{
		SourceRoot: sourceRoot,
		Plugins:    packs.NormalizeSelection(plugins),
		Generated: state.Generated{
			Commands:     assets.CommandNames(),
			Agents:       assets.AgentNames(),
			Skills:       assets.SkillNames(),
			MCP:          assets.MCPNames(),
			Instructions: instructions,
		},
	}
}
