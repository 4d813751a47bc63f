package ui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// TableStyles returns the bubbles table styles in the sensordash palette.
func TableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.
		Foreground(ColorPrimary)
	s.Selected = s.Selected.
		Foreground(ColorNight).
		Background(ColorLeaf).
		Bold(false)
	return s
}

// NewTable creates a Bubbles table sized to show every row.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{Title: c.Title, Width: c.Width}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1), // +1 for header
	)
	t.SetStyles(TableStyles())
	return t
}

// RenderSimpleTable renders a non-interactive table for CLI output. Columns
// with a zero width are sized to their widest cell.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	sized := make([]TableColumn, len(columns))
	copy(sized, columns)
	for i := range sized {
		if sized[i].Width > 0 {
			continue
		}
		w := lipgloss.Width(sized[i].Title)
		for _, row := range rows {
			if i < len(row) {
				w = max(w, lipgloss.Width(row[i]))
			}
		}
		sized[i].Width = w + 1
	}

	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}
	// An unfocused table still highlights its cursor row.
	t := NewTable(sized, tableRows)
	styles := TableStyles()
	styles.Selected = lipgloss.NewStyle()
	t.SetStyles(styles)
	return t.View()
}

// StatusSymbol renders the active/inactive dot for a sensor status.
func StatusSymbol(active bool) string {
	if active {
		return SuccessStyle().Render(SymbolActive)
	}
	return MutedStyle().Render(SymbolInactive)
}
