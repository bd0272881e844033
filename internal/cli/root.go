// Package cli implements the command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccconfigs/packsync/internal/config"
	"github.com/ccconfigs/packsync/internal/logging"
	"github.com/ccconfigs/packsync/internal/ui"
)

var (
	// Global flags
	configPath     string
	sourceRootFlag string
	verbose        bool

	// Resolved values
	resolvedConfigPath string
	cfg                *config.Config
	logger             = logging.Discard()

	// stdout and stderr are swapped by tests.
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "packsync",
	Short: "Sync Claude plugin packs into OpenCode configuration",
	Long: `packsync turns plugin packs (commands, agents, skills, MCP servers and
instruction files) into OpenCode configuration, globally or for one repository.

It only removes what it previously generated: anything you add by hand is
left alone.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.New(stderr, logging.Options{Verbose: verbose, JSON: jsonOutput})

		switch cmd.Name() {
		case "completion", "help", "version":
			return nil
		}

		var err error
		resolvedConfigPath = config.ResolveConfigPath(configPath)
		cfg, err = config.LoadFrom(resolvedConfigPath)
		if err != nil {
			return handleError(ErrConfigInvalid, err, "Fix or remove "+resolvedConfigPath)
		}
		ui.ConfigureTheme(cfg.UI.Accent)
		ui.ConfigureMarkdownCodeTheme(cfg.UI.CodeTheme)
		logger.Debug("loaded config", "path", resolvedConfigPath)
		return nil
	},
}

// Execute runs the CLI. Errors already reported as JSON are not printed again.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errReported) {
		fmt.Fprintln(stderr, ui.Error(err.Error()))
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&sourceRootFlag, "source-root", "", "Pack repository containing opencode/packs.json")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for agent/script use)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Log debug output to stderr")
}

// getConfig returns the loaded config.
func getConfig() *config.Config {
	if cfg == nil {
		return &config.Config{}
	}
	return cfg
}

func getLogger() *slog.Logger {
	return logging.OrDiscard(logger)
}
