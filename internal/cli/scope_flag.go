package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ccconfigs/packsync/internal/scope"
)

// scopeValue is a --scope flag that only accepts known scopes. Empty means
// the configured default.
type scopeValue string

var _ pflag.Value = (*scopeValue)(nil)

func (s *scopeValue) String() string { return string(*s) }

func (s *scopeValue) Set(v string) error {
	parsed, err := scope.ParseScope(v)
	if err != nil {
		return err
	}
	*s = scopeValue(parsed)
	return nil
}

func (s *scopeValue) Type() string { return "scope" }

// targetFlags select the OpenCode target a command operates on.
type targetFlags struct {
	scope scopeValue
	path  string
}

func (t *targetFlags) register(cmd *cobra.Command) {
	cmd.Flags().Var(&t.scope, "scope", "Target scope: global or repo")
	cmd.Flags().StringVar(&t.path, "path", "", "Repository root for --scope repo (default: enclosing git work tree)")
	_ = cmd.RegisterFlagCompletionFunc("scope", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		var names []string
		for _, s := range scope.All() {
			names = append(names, string(s))
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})
}

func (t *targetFlags) reset() {
	t.scope = ""
	t.path = ""
}
