package reconcile

import (
	"os"
	"path/filepath"

	"github.com/ccconfigs/packsync/internal/configmerge"
	"github.com/ccconfigs/packsync/internal/scope"
	"github.com/ccconfigs/packsync/internal/state"
)

// Status describes a target's managed state and any drift from it.
type Status struct {
	Paths   scope.Paths  `json:"paths"`
	Managed bool         `json:"managed"`
	State   *state.State `json:"state,omitempty"`
	// Missing lists recorded artifacts that are no longer on disk.
	Missing []string `json:"missing"`
}

// Inspect reads the managed state for paths and reports drift. It never
// modifies the target.
func Inspect(paths scope.Paths) (*Status, error) {
	st, ok := state.Read(paths.StatePath)
	status := &Status{Paths: paths, Missing: []string{}}
	if !ok {
		return status, nil
	}
	status.Managed = true
	status.State = st

	check := func(path string) {
		if _, err := os.Lstat(path); err != nil {
			status.Missing = append(status.Missing, path)
		}
	}
	for _, name := range st.Generated.Commands {
		check(markdownPath(paths.CommandsDir, name))
	}
	for _, name := range st.Generated.Agents {
		check(markdownPath(paths.AgentsDir, name))
	}
	for _, name := range st.Generated.Skills {
		check(filepath.Join(paths.SkillsDir, name))
	}

	config, err := configmerge.Load(paths.ConfigPath)
	if err != nil {
		return nil, err
	}
	servers, instructions := configmerge.Owned(config, st)
	present := map[string]bool{}
	for _, s := range servers {
		present["mcp:"+s] = true
	}
	for _, p := range instructions {
		present["instructions:"+p] = true
	}
	for _, s := range st.Generated.MCP {
		if !present["mcp:"+s] {
			status.Missing = append(status.Missing, paths.ConfigPath+"#mcp."+s)
		}
	}
	for _, p := range st.Generated.Instructions {
		if !present["instructions:"+p] {
			status.Missing = append(status.Missing, paths.ConfigPath+"#instructions["+p+"]")
		}
	}
	return status, nil
}
