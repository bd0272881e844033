package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccconfigs/packsync/internal/config"
	"github.com/ccconfigs/packsync/internal/scope"
	"github.com/ccconfigs/packsync/internal/ui"
)

var (
	configSetSourceRoot   string
	configSetDefaultScope string
	configSetUIAccent     string
	configSetUICodeTheme  string
	configSetDebounceMS   int

	configUnsetSourceRoot   bool
	configUnsetDefaultScope bool
	configUnsetUIAccent     bool
	configUnsetUICodeTheme  bool
	configUnsetDebounce     bool
)

func configData(path string, cfg *config.Config) map[string]any {
	_, err := os.Stat(path)
	return map[string]any{
		"config_path":   path,
		"exists":        err == nil,
		"source_root":   cfg.SourceRoot,
		"default_scope": cfg.DefaultScope,
		"ui": map[string]any{
			"accent":     cfg.UI.Accent,
			"code_theme": cfg.UI.CodeTheme,
		},
		"watch": map[string]any{
			"debounce_ms": cfg.Watch.Debounce().Milliseconds(),
		},
	}
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage packsync configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := getConfig()
		data := configData(resolvedConfigPath, c)
		if isJSONOutput() {
			outputSuccess(data, nil)
			return nil
		}

		home := homeDir()
		table := ui.NewTable(2)
		table.AddRow(ui.Muted.Render("config"), ui.FilePath(scope.Abbreviate(resolvedConfigPath, home)))
		table.AddRow(ui.Muted.Render("source_root"), orUnset(scope.Abbreviate(c.SourceRoot, home)))
		table.AddRow(ui.Muted.Render("default_scope"), orUnset(c.DefaultScope))
		table.AddRow(ui.Muted.Render("ui.accent"), orUnset(c.UI.Accent))
		table.AddRow(ui.Muted.Render("ui.code_theme"), orUnset(c.UI.CodeTheme))
		table.AddRow(ui.Muted.Render("watch.debounce_ms"), fmt.Sprint(c.Watch.Debounce().Milliseconds()))
		fmt.Fprint(stdout, table.String())
		if !data["exists"].(bool) {
			fmt.Fprintln(stdout, ui.Hint("Config file does not exist. Run 'packsync config init' to create it."))
		}
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a commented config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		created, err := config.CreateDefault(resolvedConfigPath)
		if err != nil {
			return handleError(ErrFileWriteError, err, "")
		}
		if isJSONOutput() {
			outputSuccess(map[string]any{"config_path": resolvedConfigPath, "created": created}, nil)
			return nil
		}
		if created {
			fmt.Fprintln(stdout, ui.Successf("Created %s", ui.FilePath(resolvedConfigPath)))
		} else {
			fmt.Fprintln(stdout, ui.Info("Config already exists at "+resolvedConfigPath))
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set configuration values",
	Long: `Sets one or more configuration values.

Examples:
  packsync config set --source-root ~/code/ccconfigs
  packsync config set --default-scope repo --accent 39`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		next := *getConfig()
		changed := false

		if cmd.Flags().Changed("source-root") {
			next.SourceRoot = strings.TrimSpace(configSetSourceRoot)
			changed = true
		}
		if cmd.Flags().Changed("default-scope") {
			s, err := scope.ParseScope(configSetDefaultScope)
			if err != nil {
				return handleError(ErrInvalidInput, err, "")
			}
			next.DefaultScope = string(s)
			changed = true
		}
		if cmd.Flags().Changed("accent") {
			next.UI.Accent = strings.TrimSpace(configSetUIAccent)
			changed = true
		}
		if cmd.Flags().Changed("code-theme") {
			next.UI.CodeTheme = strings.TrimSpace(configSetUICodeTheme)
			changed = true
		}
		if cmd.Flags().Changed("debounce-ms") {
			if configSetDebounceMS <= 0 {
				return handleErrorMsg(ErrInvalidInput, "--debounce-ms must be positive", "")
			}
			next.Watch.DebounceMS = configSetDebounceMS
			changed = true
		}
		if !changed {
			return handleErrorMsg(ErrInvalidInput, "no settings given", "Run 'packsync config set --help' for available flags")
		}
		return saveConfig(&next)
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset",
	Short: "Remove configuration values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		next := *getConfig()
		changed := false
		if configUnsetSourceRoot {
			next.SourceRoot = ""
			changed = true
		}
		if configUnsetDefaultScope {
			next.DefaultScope = ""
			changed = true
		}
		if configUnsetUIAccent {
			next.UI.Accent = ""
			changed = true
		}
		if configUnsetUICodeTheme {
			next.UI.CodeTheme = ""
			changed = true
		}
		if configUnsetDebounce {
			next.Watch.DebounceMS = 0
			changed = true
		}
		if !changed {
			return handleErrorMsg(ErrInvalidInput, "no settings given", "Run 'packsync config unset --help' for available flags")
		}
		return saveConfig(&next)
	},
}

func saveConfig(next *config.Config) error {
	if err := config.SaveTo(resolvedConfigPath, next); err != nil {
		return handleError(ErrFileWriteError, err, "")
	}
	cfg = next
	if isJSONOutput() {
		outputSuccess(configData(resolvedConfigPath, next), nil)
		return nil
	}
	fmt.Fprintln(stdout, ui.Successf("Saved %s", ui.FilePath(resolvedConfigPath)))
	return nil
}

func orUnset(v string) string {
	if strings.TrimSpace(v) == "" {
		return ui.Hint("(unset)")
	}
	return v
}

func init() {
	configSetCmd.Flags().StringVar(&configSetSourceRoot, "source-root", "", "Pack repository path")
	configSetCmd.Flags().StringVar(&configSetDefaultScope, "default-scope", "", "Scope used when --scope is omitted")
	configSetCmd.Flags().StringVar(&configSetUIAccent, "accent", "", "Accent color (0-255 or #RRGGBB)")
	configSetCmd.Flags().StringVar(&configSetUICodeTheme, "code-theme", "", "Code theme for 'show'")
	configSetCmd.Flags().IntVar(&configSetDebounceMS, "debounce-ms", 0, "Watch debounce in milliseconds")

	configUnsetCmd.Flags().BoolVar(&configUnsetSourceRoot, "source-root", false, "Unset source_root")
	configUnsetCmd.Flags().BoolVar(&configUnsetDefaultScope, "default-scope", false, "Unset default_scope")
	configUnsetCmd.Flags().BoolVar(&configUnsetUIAccent, "accent", false, "Unset ui.accent")
	configUnsetCmd.Flags().BoolVar(&configUnsetUICodeTheme, "code-theme", false, "Unset ui.code_theme")
	configUnsetCmd.Flags().BoolVar(&configUnsetDebounce, "debounce-ms", false, "Unset watch.debounce_ms")

	configCmd.AddCommand(configShowCmd, configInitCmd, configSetCmd, configUnsetCmd)
	rootCmd.AddCommand(configCmd)
}
