package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccconfigs/packsync/internal/reconcile"
	"github.com/ccconfigs/packsync/internal/scope"
	"github.com/ccconfigs/packsync/internal/ui"
)

var statusTarget targetFlags

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the managed state of a target and any drift",
	Long: `Reports which packs are enabled for the target, what was generated, and
any generated artifact that has since gone missing. Nothing is written.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, paths, err := resolveTarget(&statusTarget)
		if err != nil {
			return err
		}
		status, err := reconcile.Inspect(paths)
		if err != nil {
			return handleEngineError(err)
		}

		if isJSONOutput() {
			var warnings []Warning
			for _, missing := range status.Missing {
				warnings = append(warnings, Warning{Code: WarnDrift, Message: missing})
			}
			outputSuccessWithWarnings(status, warnings, nil)
			return nil
		}

		home := homeDir()
		fmt.Fprintf(stdout, "%s %s\n", ui.Header("Scope:"), paths.Scope)
		fmt.Fprintf(stdout, "%s %s\n", ui.Header("Target:"), ui.FilePath(scope.Abbreviate(paths.ConfigDir, home)))
		if !status.Managed {
			fmt.Fprintln(stdout, ui.Hint("Not managed by packsync."))
			return nil
		}

		g := status.State.Generated
		fmt.Fprintf(stdout, "%s %s\n", ui.Header("Plugins:"), ui.OrNone(status.State.Plugins))
		fmt.Fprintf(stdout, "%s %s\n", ui.Header("Source:"), ui.FilePath(scope.Abbreviate(status.State.SourceRoot, home)))
		table := ui.NewTable(2)
		table.AddRow(ui.Muted.Render("commands"), ui.OrNone(g.Commands))
		table.AddRow(ui.Muted.Render("agents"), ui.OrNone(g.Agents))
		table.AddRow(ui.Muted.Render("skills"), ui.OrNone(g.Skills))
		table.AddRow(ui.Muted.Render("mcp"), ui.OrNone(g.MCP))
		table.AddRow(ui.Muted.Render("instructions"), fmt.Sprint(len(g.Instructions)))
		fmt.Fprint(stdout, table.String())

		if len(status.Missing) == 0 {
			fmt.Fprintln(stdout, ui.Success("No drift."))
			return nil
		}
		fmt.Fprintln(stdout, ui.Warning("Missing "+ui.Count(len(status.Missing), "artifact", "artifacts")))
		for _, missing := range status.Missing {
			fmt.Fprintln(stdout, "  "+scope.Abbreviate(missing, home))
		}
		fmt.Fprintln(stdout, ui.Hint("Run 'packsync sync' to restore them."))
		return nil
	},
}

func init() {
	statusTarget.register(statusCmd)
	rootCmd.AddCommand(statusCmd)
}
