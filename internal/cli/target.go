package cli

import (
	"fmt"
	"os"

	"github.com/adrg/xdg"

	"github.com/ccconfigs/packsync/internal/scope"
	"github.com/ccconfigs/packsync/internal/state"
)

// scopeEnv is overridden by tests to keep the global scope inside a temp dir.
var scopeEnv = scope.Env{}

// resolveTarget returns the scope and paths selected by flags and config.
func resolveTarget(flags *targetFlags) (scope.Scope, scope.Paths, error) {
	s, err := scope.ParseScope(getConfig().ResolveScope(string(flags.scope)))
	if err != nil {
		return "", scope.Paths{}, handleError(ErrInvalidInput, err, "Use --scope global or --scope repo")
	}
	if s == scope.Global && flags.path != "" {
		return "", scope.Paths{}, handleErrorMsg(ErrInvalidInput, "--path only applies to --scope repo", "")
	}
	paths, err := scope.Resolve(s, flags.path, scopeEnv)
	if err != nil {
		return "", scope.Paths{}, handleError(ErrInvalidInput, err, "")
	}
	return s, paths, nil
}

// resolveSourceRoot returns the pack repository from --source-root, config,
// the state file at statePath or the working directory, with ~ expanded.
// An empty statePath skips the recorded root.
func resolveSourceRoot(statePath string) (string, error) {
	cwd, err := workingDir()
	if err != nil {
		return "", handleError(ErrInternal, err, "")
	}
	var recorded string
	if statePath != "" {
		if st, ok := state.Read(statePath); ok {
			recorded = st.SourceRoot
		}
	}
	root := getConfig().ResolveSourceRoot(sourceRootFlag, recorded, cwd)
	expanded, err := scope.ExpandPath(root, homeDir(), cwd)
	if err != nil {
		return "", handleError(ErrInvalidInput, err, "")
	}
	return expanded, nil
}

func workingDir() (string, error) {
	if scopeEnv.Cwd != "" {
		return scopeEnv.Cwd, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolve working directory: %w", err)
	}
	return cwd, nil
}

func homeDir() string {
	if scopeEnv.Home != "" {
		return scopeEnv.Home
	}
	return xdg.Home
}
