// Package components holds the reusable pieces of the dashboard screen.
package components

import (
	"github.com/Veraticus/stockroom/internal/tui/themes"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Column describes a table column. Width is a share of the available width;
// MinWidth is the floor.
type Column struct {
	Title    string
	Share    float64
	MinWidth int
}

// TableModel is a navigable table whose row order matches the slice it was
// built from, so Cursor indexes straight into that slice.
type TableModel struct {
	table   table.Model
	empty   string
	theme   themes.Theme
	columns []Column
	width   int
	height  int
	rows    int
}

// NewTable creates a focused table with themed header and selection styles.
func NewTable(columns []Column, empty string, theme themes.Theme) TableModel {
	t := table.New(
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.Border).
		BorderBottom(true).
		Bold(false)
	s.Selected = theme.Selected
	t.SetStyles(s)

	m := TableModel{
		table:   t,
		empty:   empty,
		theme:   theme,
		columns: columns,
		width:   80,
		height:  14,
	}
	m.updateColumnWidths()
	return m
}

// Update forwards navigation keys to the table.
func (m TableModel) Update(msg tea.Msg) (TableModel, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the table, or the empty message when there are no rows.
func (m TableModel) View() string {
	if m.rows == 0 {
		return m.theme.Faint.Render(m.empty)
	}
	return m.table.View()
}

// SetRows replaces the rows and keeps the cursor inside the new range.
func (m *TableModel) SetRows(rows []table.Row) {
	m.table.SetRows(rows)
	m.rows = len(rows)
	switch {
	case m.rows == 0:
	case m.table.Cursor() < 0:
		m.table.SetCursor(0)
	case m.table.Cursor() >= m.rows:
		m.table.SetCursor(m.rows - 1)
	}
}

// Cursor returns the selected row index, or -1 when the table is empty.
func (m TableModel) Cursor() int {
	if m.rows == 0 {
		return -1
	}
	return m.table.Cursor()
}

// Len returns the number of rows.
func (m TableModel) Len() int {
	return m.rows
}

// Resize fits the table into width x height cells.
func (m *TableModel) Resize(width, height int) {
	m.width = width
	m.height = height

	// The table subtracts its own header from the height.
	m.table.SetHeight(max(3, height))
	m.updateColumnWidths()
}

func (m *TableModel) updateColumnWidths() {
	available := max(m.width-2*len(m.columns), 40)

	cols := make([]table.Column, len(m.columns))
	for i, c := range m.columns {
		cols[i] = table.Column{
			Title: c.Title,
			Width: max(c.MinWidth, int(float64(available)*c.Share)),
		}
	}
	m.table.SetColumns(cols)
}

// truncate shortens s to maxLen runes, marking the cut with an ellipsis.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
