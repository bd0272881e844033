package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/ccconfigs/packsync/internal/buildinfo"
)

type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	Date      string `json:"date,omitempty"`
	Dirty     bool   `json:"dirty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

var readBuildInfo = debug.ReadBuildInfo

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show packsync version and build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := currentVersionInfo()
		if isJSONOutput() {
			outputSuccess(info, nil)
			return nil
		}

		fmt.Fprintf(stdout, "packsync %s\n", info.Version)
		if info.Commit != "" {
			commit := info.Commit
			if info.Dirty {
				commit += " (dirty)"
			}
			fmt.Fprintf(stdout, "commit: %s\n", commit)
		}
		if info.Date != "" {
			fmt.Fprintf(stdout, "built: %s\n", info.Date)
		}
		fmt.Fprintf(stdout, "go: %s %s\n", info.GoVersion, info.Platform)
		return nil
	},
}

// currentVersionInfo prefers module build info and falls back to values
// injected with -ldflags.
func currentVersionInfo() versionInfo {
	info := versionInfo{
		Version:   "devel",
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	if bi, ok := readBuildInfo(); ok && bi != nil {
		if v := bi.Main.Version; v != "" && v != "(devel)" {
			info.Version = v
		}
		if bi.GoVersion != "" {
			info.GoVersion = bi.GoVersion
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				info.Commit = s.Value
			case "vcs.time":
				info.Date = s.Value
			case "vcs.modified":
				info.Dirty = s.Value == "true"
			}
		}
	}

	if info.Version == "devel" && buildinfo.Version != "" && buildinfo.Version != "(devel)" {
		info.Version = buildinfo.Version
	}
	if info.Commit == "" {
		info.Commit = buildinfo.Commit
	}
	if info.Date == "" {
		info.Date = buildinfo.Date
	}
	return info
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
