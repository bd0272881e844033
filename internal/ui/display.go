package ui

import (
	"os"

	"github.com/charmbracelet/x/term"
)

// DefaultTermWidth is the fallback terminal width when detection fails.
const DefaultTermWidth = 100

// TermWidth returns the width of stdout, or DefaultTermWidth when stdout is
// not a terminal.
func TermWidth() int {
	fd := os.Stdout.Fd()
	if !term.IsTerminal(fd) {
		return DefaultTermWidth
	}
	if w, _, err := term.GetSize(fd); err == nil && w > 0 {
		return w
	}
	return DefaultTermWidth
}
