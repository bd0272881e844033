package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/ccconfigs/packsync/internal/logging"
	"github.com/ccconfigs/packsync/internal/packs"
	"github.com/ccconfigs/packsync/internal/registry"
	"github.com/ccconfigs/packsync/internal/scope"
	"github.com/ccconfigs/packsync/internal/state"
)

// ErrCheckFailed reports that a check run found pending changes.
var ErrCheckFailed = errors.New("target is out of date")

// Request describes one sync run.
type Request struct {
	Scope      scope.Scope
	Paths      scope.Paths
	SourceRoot string
	Plugins    []string
	DryRun     bool
	// Check reports pending changes without applying them.
	Check  bool
	Logger *slog.Logger
}

// SyncResult is the outcome of Sync.
type SyncResult struct {
	Scope     scope.Scope     `json:"scope"`
	Plugins   []string        `json:"plugins"`
	Paths     scope.Paths     `json:"paths"`
	UpToDate  bool            `json:"upToDate"`
	Changes   []string        `json:"changes"`
	Generated state.Generated `json:"generated"`
	DryRun    bool            `json:"dryRun"`
	Check     bool            `json:"check"`
}

// CheckError returns ErrCheckFailed when a check run found changes.
func (r *SyncResult) CheckError() error {
	if r.Check && !r.UpToDate {
		return fmt.Errorf("%w: %d pending change(s)", ErrCheckFailed, len(r.Changes))
	}
	return nil
}

// Sync loads the registry under the source root, collects the selected
// packs and reconciles them into the target.
func Sync(ctx context.Context, req Request) (*SyncResult, error) {
	logger := logging.OrDiscard(req.Logger)

	sourceRoot, err := filepath.Abs(req.SourceRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve source root: %w", err)
	}
	plugins := packs.NormalizeSelection(req.Plugins)
	dryRun := req.DryRun || req.Check

	reg, err := registry.Load(sourceRoot)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded registry", "path", reg.Path, "packs", len(reg.Plugins))

	if err := packs.ValidateSelection(reg, plugins); err != nil {
		return nil, err
	}

	previous, _ := state.Read(req.Paths.StatePath)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	assets, err := packs.Collect(sourceRoot, reg, plugins, logger)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result, err := Reconcile(assets, previous, req.Paths, Options{
		DryRun:     dryRun,
		SourceRoot: sourceRoot,
		Plugins:    plugins,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	scopeName := req.Scope
	if scopeName == "" {
		scopeName = req.Paths.Scope
	}
	return &SyncResult{
		Scope:     scopeName,
		Plugins:   plugins,
		Paths:     req.Paths,
		UpToDate:  result.UpToDate,
		Changes:   result.Changes,
		Generated: result.State.Generated,
		DryRun:    dryRun,
		Check:     req.Check,
	}, nil
}

// Selection changes the enabled pack list. When Exact is set, Set replaces
// the list; otherwise Enable and Disable are applied to the current list.
type Selection struct {
	Exact   bool
	Set     []string
	Enable  []string
	Disable []string
}

// ResolveSelection returns the normalised pack list a selection produces.
func ResolveSelection(current []string, sel Selection) []string {
	if sel.Exact {
		return packs.NormalizeSelection(sel.Set)
	}
	next := map[string]bool{}
	for _, name := range packs.NormalizeSelection(current) {
		next[name] = true
	}
	for _, name := range packs.NormalizeSelection(sel.Enable) {
		next[name] = true
	}
	for _, name := range packs.NormalizeSelection(sel.Disable) {
		delete(next, name)
	}
	names := make([]string, 0, len(next))
	for name := range next {
		names = append(names, name)
	}
	return packs.NormalizeSelection(names)
}

// CurrentPlugins returns the pack list recorded for a target, or nil.
func CurrentPlugins(paths scope.Paths) []string {
	if st, ok := state.Read(paths.StatePath); ok {
		return st.Plugins
	}
	return nil
}
