package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccconfigs/packsync/internal/reconcile"
	"github.com/ccconfigs/packsync/internal/scope"
	"github.com/ccconfigs/packsync/internal/ui"
	"github.com/ccconfigs/packsync/internal/watcher"
)

var (
	watchTarget   targetFlags
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-sync the enabled packs whenever the source changes",
	Long: `Watches the pack source and re-applies the packs recorded for the target
after each burst of edits. Errors are reported and watching continues.
Press Ctrl+C to stop.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if isJSONOutput() {
			return handleErrorMsg(ErrInvalidInput, "watch does not support --json", "")
		}
		s, paths, err := resolveTarget(&watchTarget)
		if err != nil {
			return err
		}
		sourceRoot, err := resolveSourceRoot(paths.StatePath)
		if err != nil {
			return err
		}
		if reconcile.CurrentPlugins(paths) == nil {
			return handleErrorMsg(ErrInvalidInput, "no packs are enabled for this target", "Run 'packsync sync --plugins <names>' first")
		}

		debounce := watchDebounce
		if debounce <= 0 {
			debounce = getConfig().Watch.Debounce()
		}

		w, err := watcher.New(watcher.Config{
			Root:          sourceRoot,
			Ignore:        []string{paths.ConfigDir, paths.ConfigPath},
			DebounceDelay: debounce,
			Logger:        getLogger(),
			OnChange: func(ctx context.Context, changed []string) error {
				result, err := runSync(ctx, s, paths, sourceRoot, reconcile.CurrentPlugins(paths), false, false)
				if err != nil {
					fmt.Fprintln(stderr, ui.Error(err.Error()))
					return err
				}
				if !result.UpToDate {
					fmt.Fprintf(stdout, "%s %s\n", ui.Hint(time.Now().Format("15:04:05")), ui.Count(len(changed), "file changed", "files changed"))
					printSyncResult(result)
				}
				return nil
			},
		})
		if err != nil {
			return handleError(ErrInvalidInput, err, "")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(stdout, "Watching %s for %s\n", ui.FilePath(scope.Abbreviate(sourceRoot, homeDir())), ui.FilePath(scope.Abbreviate(paths.ConfigDir, homeDir())))
		fmt.Fprintln(stdout, ui.Hint("Press Ctrl+C to stop"))

		if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return handleError(ErrInternal, err, "")
		}
		fmt.Fprintln(stdout, "\nStopped watching.")
		return nil
	},
}

func init() {
	watchTarget.register(watchCmd)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "Quiet period before re-syncing (default from config, 300ms)")
	rootCmd.AddCommand(watchCmd)
}
