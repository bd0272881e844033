package cli

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccconfigs/packsync/docs"
	"github.com/ccconfigs/packsync/internal/ui"
)

var guideCmd = &cobra.Command{
	Use:   "guide [topic]",
	Short: "Read the bundled guides",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topics, err := guideTopics()
		if err != nil {
			return handleError(ErrInternal, err, "")
		}
		if len(args) == 0 {
			if isJSONOutput() {
				outputSuccess(map[string]any{"topics": topics}, &Meta{Count: len(topics)})
				return nil
			}
			for _, topic := range topics {
				fmt.Fprintln(stdout, topic)
			}
			return nil
		}

		topic := strings.TrimSuffix(strings.TrimSpace(args[0]), ".md")
		data, err := fs.ReadFile(docs.FS, topic+".md")
		if err != nil {
			return handleErrorMsg(ErrInvalidInput, "unknown guide: "+topic, "Available: "+strings.Join(topics, ", "))
		}
		if isJSONOutput() {
			outputSuccess(map[string]any{"topic": topic, "content": string(data)}, nil)
			return nil
		}
		rendered, err := ui.RenderMarkdown(string(data), ui.TermWidth())
		if err != nil {
			rendered = string(data)
		}
		fmt.Fprint(stdout, rendered)
		return nil
	},
}

func guideTopics() ([]string, error) {
	entries, err := fs.ReadDir(docs.FS, ".")
	if err != nil {
		return nil, err
	}
	var topics []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".md"); ok {
			topics = append(topics, name)
		}
	}
	sort.Strings(topics)
	return topics, nil
}

func init() {
	rootCmd.AddCommand(guideCmd)
}
