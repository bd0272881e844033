package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/ccconfigs/packsync/internal/ui"
)

// stdin is swapped by tests.
var stdin io.Reader = os.Stdin

var isInteractive = func() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) && isatty.IsTerminal(os.Stdin.Fd())
}

func shouldPromptForConfirm() bool {
	if isJSONOutput() {
		return false
	}
	return isInteractive()
}

func promptForConfirm(message string) bool {
	if !shouldPromptForConfirm() {
		return false
	}
	if message == "" {
		message = "Apply changes?"
	}
	fmt.Fprintf(stdout, "%s %s ", message, ui.Hint("[y/N]"))
	reader := bufio.NewReader(stdin)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
