package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table renders left-aligned columns separated by spaces, without borders.
// Widths are measured with lipgloss so styled cells align.
type Table struct {
	rows       [][]string
	colWidths  []int
	colPadding int
}

// NewTable creates a new table with the specified number of columns
func NewTable(cols int) *Table {
	return &Table{
		colWidths:  make([]int, cols),
		colPadding: 2,
	}
}

// AddRow adds a row to the table. Missing cells are blank.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.colWidths))
	for i := 0; i < len(t.colWidths) && i < len(cells); i++ {
		row[i] = cells[i]
		if w := lipgloss.Width(cells[i]); w > t.colWidths[i] {
			t.colWidths[i] = w
		}
	}
	t.rows = append(t.rows, row)
}

// String renders the table as a string
func (t *Table) String() string {
	var sb strings.Builder
	padding := strings.Repeat(" ", t.colPadding)

	for _, row := range t.rows {
		for i, cell := range row {
			if i > 0 {
				sb.WriteString(padding)
			}
			sb.WriteString(cell)
			if i < len(row)-1 {
				sb.WriteString(strings.Repeat(" ", t.colWidths[i]-lipgloss.Width(cell)))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
