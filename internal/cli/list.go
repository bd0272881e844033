package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccconfigs/packsync/internal/reconcile"
	"github.com/ccconfigs/packsync/internal/registry"
	"github.com/ccconfigs/packsync/internal/ui"
)

var listTarget targetFlags

// packInfo is one row of `list --json`.
type packInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Enabled     bool   `json:"enabled"`
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available packs and which are enabled",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, paths, err := resolveTarget(&listTarget)
		if err != nil {
			return err
		}
		sourceRoot, err := resolveSourceRoot(paths.StatePath)
		if err != nil {
			return err
		}
		reg, err := registry.Load(sourceRoot)
		if err != nil {
			return handleEngineError(err)
		}

		enabled := map[string]bool{}
		for _, name := range reconcile.CurrentPlugins(paths) {
			enabled[name] = true
		}

		names := reg.Names()
		infos := make([]packInfo, 0, len(names))
		for _, name := range names {
			pack, _ := reg.Lookup(name)
			infos = append(infos, packInfo{Name: name, Description: pack.Description, Enabled: enabled[name]})
		}

		if isJSONOutput() {
			outputSuccess(map[string]any{"packs": infos}, &Meta{Count: len(infos)})
			return nil
		}

		if len(infos) == 0 {
			fmt.Fprintln(stdout, ui.Hint("No packs defined in "+reg.Path))
			return nil
		}
		table := ui.NewTable(3)
		for _, info := range infos {
			marker := " "
			if info.Enabled {
				marker = ui.Accent.Render("*")
			}
			table.AddRow(marker, ui.Bold.Render(info.Name), ui.Muted.Render(info.Description))
		}
		fmt.Fprint(stdout, table.String())
		fmt.Fprintln(stdout, ui.Hint("* enabled for "+string(paths.Scope)+" scope"))
		return nil
	},
}

func init() {
	listTarget.register(listCmd)
	rootCmd.AddCommand(listCmd)
}
