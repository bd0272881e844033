package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccconfigs/packsync/internal/reconcile"
	"github.com/ccconfigs/packsync/internal/scope"
	"github.com/ccconfigs/packsync/internal/ui"
)

var (
	syncTarget  targetFlags
	syncPlugins []string
	syncEnable  []string
	syncDisable []string
	syncDryRun  bool
	syncCheck   bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Generate OpenCode config for the selected packs",
	Long: `Reconciles the target with a pack selection.

Without --plugins, --enable or --disable the packs recorded by the previous
sync are applied again, which refreshes the target after source edits.

Examples:
  packsync sync --plugins essentials,writing
  packsync sync --scope repo --enable research
  packsync sync --disable writing --dry-run
  packsync sync --check`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if syncCheck && syncDryRun {
			return handleErrorMsg(ErrInvalidInput, "--check and --dry-run cannot be combined", "")
		}
		if cmd.Flags().Changed("plugins") && (len(syncEnable) > 0 || len(syncDisable) > 0) {
			return handleErrorMsg(ErrInvalidInput, "--plugins cannot be combined with --enable or --disable", "")
		}

		s, paths, err := resolveTarget(&syncTarget)
		if err != nil {
			return err
		}
		sourceRoot, err := resolveSourceRoot(paths.StatePath)
		if err != nil {
			return err
		}

		plugins := reconcile.ResolveSelection(reconcile.CurrentPlugins(paths), reconcile.Selection{
			Exact:   cmd.Flags().Changed("plugins"),
			Set:     splitNames(syncPlugins),
			Enable:  splitNames(syncEnable),
			Disable: splitNames(syncDisable),
		})

		result, err := runSync(cmd.Context(), s, paths, sourceRoot, plugins, syncDryRun, syncCheck)
		if err != nil {
			return handleEngineError(err)
		}

		if isJSONOutput() {
			if err := result.CheckError(); err != nil {
				outputJSON(Response{
					OK:   false,
					Data: result,
					Error: &ErrorInfo{
						Code:       ErrCheckFailed,
						Message:    err.Error(),
						Suggestion: "Run 'packsync sync' without --check to apply",
					},
				})
				return &reportedError{err: err}
			}
			outputSuccess(result, &Meta{Count: len(result.Changes)})
			return nil
		}

		printSyncResult(result)
		if err := result.CheckError(); err != nil {
			return err
		}
		return nil
	},
}

func runSync(ctx context.Context, s scope.Scope, paths scope.Paths, sourceRoot string, plugins []string, dryRun, check bool) (*reconcile.SyncResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return reconcile.Sync(ctx, reconcile.Request{
		Scope:      s,
		Paths:      paths,
		SourceRoot: sourceRoot,
		Plugins:    plugins,
		DryRun:     dryRun,
		Check:      check,
		Logger:     getLogger(),
	})
}

func printSyncResult(result *reconcile.SyncResult) {
	home := homeDir()
	fmt.Fprintf(stdout, "%s %s\n", ui.Header("Scope:"), result.Scope)
	fmt.Fprintf(stdout, "%s %s\n", ui.Header("Target:"), ui.FilePath(scope.Abbreviate(result.Paths.ConfigDir, home)))
	fmt.Fprintf(stdout, "%s %s\n", ui.Header("Plugins:"), ui.OrNone(result.Plugins))

	if result.UpToDate {
		fmt.Fprintln(stdout, ui.Success("Already up to date."))
		return
	}

	count := ui.Count(len(result.Changes), "change", "changes")
	switch {
	case result.Check:
		fmt.Fprintln(stdout, ui.Warning("Out of date "+count))
	case result.DryRun:
		fmt.Fprintln(stdout, ui.Info("Would apply "+count))
	default:
		fmt.Fprintln(stdout, ui.Success("Applied "+count))
	}
	for _, line := range result.Changes {
		fmt.Fprintln(stdout, "  "+ui.Change(scope.Abbreviate(line, home)))
	}
}

// splitNames flattens repeated and comma-separated flag values.
func splitNames(values []string) []string {
	var names []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				names = append(names, part)
			}
		}
	}
	return names
}

func init() {
	syncTarget.register(syncCmd)
	syncCmd.Flags().StringSliceVar(&syncPlugins, "plugins", nil, "Exact pack selection (comma-separated; empty disables all)")
	syncCmd.Flags().StringSliceVar(&syncEnable, "enable", nil, "Packs to add to the current selection")
	syncCmd.Flags().StringSliceVar(&syncDisable, "disable", nil, "Packs to remove from the current selection")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Report changes without writing")
	syncCmd.Flags().BoolVar(&syncCheck, "check", false, "Exit non-zero if the target is out of date")
	rootCmd.AddCommand(syncCmd)
}
