package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccconfigs/packsync/internal/reconcile"
	"github.com/ccconfigs/packsync/internal/scope"
	"github.com/ccconfigs/packsync/internal/ui"
)

var (
	resetTarget targetFlags
	resetYes    bool
	resetDryRun bool
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Remove everything packsync generated for a target",
	Long: `Disables every pack for the target. Generated commands, agents, skill
links, MCP servers and instructions are removed along with the state file.
Config keys and files you wrote yourself are kept.

Examples:
  packsync reset --scope repo
  packsync reset --yes`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, paths, err := resolveTarget(&resetTarget)
		if err != nil {
			return err
		}
		sourceRoot, err := resolveSourceRoot(paths.StatePath)
		if err != nil {
			return err
		}

		current := reconcile.CurrentPlugins(paths)
		if current == nil {
			if isJSONOutput() {
				outputSuccess(&reconcile.SyncResult{Scope: s, Paths: paths, UpToDate: true, Plugins: []string{}, Changes: []string{}}, nil)
				return nil
			}
			fmt.Fprintln(stdout, ui.Info("Nothing to reset for "+scope.Abbreviate(paths.ConfigDir, homeDir())))
			return nil
		}

		if !resetYes && !resetDryRun {
			if !shouldPromptForConfirm() {
				return handleErrorMsg(ErrConfirmationNeeded, "reset requires confirmation", "Re-run with --yes")
			}
			prompt := fmt.Sprintf("Remove generated config for %s?", ui.OrNone(current))
			if !promptForConfirm(prompt) {
				fmt.Fprintln(stdout, ui.Hint("Cancelled."))
				return nil
			}
		}

		result, err := runSync(cmd.Context(), s, paths, sourceRoot, []string{}, resetDryRun, false)
		if err != nil {
			return handleEngineError(err)
		}
		if isJSONOutput() {
			outputSuccess(result, &Meta{Count: len(result.Changes)})
			return nil
		}
		printSyncResult(result)
		return nil
	},
}

func init() {
	resetTarget.register(resetCmd)
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Skip the confirmation prompt")
	resetCmd.Flags().BoolVar(&resetDryRun, "dry-run", false, "Report changes without writing")
	rootCmd.AddCommand(resetCmd)
}
