package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/scottbass3/reglite/internal/navigation"
)

func (m *Model) syncTable() {
	list := m.listView()
	width := m.width
	if width <= 0 {
		width = defaultRenderWidth
	}
	inputWidth := clampInt(width-10, 10, maxFilterWidth)
	m.filterInput.Width = inputWidth
	m.commandInput.Width = inputWidth

	tableWidth := maxInt(10, m.mainSectionContentWidth())
	columns := makeColumns(m.screen.state.Level, tableWidth)
	rows := normalizeTableRows(toTableRows(list.rows), len(columns))
	columnsChanged := !equalTableColumns(m.tableColumns, columns)
	if columnsChanged {
		// bubbles/table panics on rows wider than the columns, so drop the
		// old rows before the shape changes.
		if len(m.table.Rows()) > 0 {
			m.table.SetRows(nil)
		}
		m.table.SetColumns(columns)
		m.tableColumns = append(m.tableColumns[:0], columns...)
	}
	if columnsChanged || !equalTableRows(m.table.Rows(), rows) {
		m.table.SetRows(rows)
	}
	m.rows = list.refs
	m.searchCount = list.search.Count()

	if height := m.tableHeight(); m.table.Height() != height {
		m.table.SetHeight(height)
	}
	if m.table.Width() != tableWidth {
		m.table.SetWidth(tableWidth)
	}
	m.table.SetStyles(tableStyles())
	cursor := m.table.Cursor()
	if len(list.rows) == 0 {
		m.table.SetCursor(0)
	} else if cursor >= len(list.rows) {
		m.table.SetCursor(len(list.rows) - 1)
	}
}

func (m Model) tableHeight() int {
	if m.height <= 0 {
		return defaultTableHeight
	}
	topLines := lineCount(m.renderTopSection())
	sectionSeparators := 1
	debugLines := 0
	if m.debug {
		debugLines = maxVisibleLogs + 3
		sectionSeparators++
	}
	available := m.height - topLines - mainSectionTitleLines - mainSectionBorderLines - debugLines - tableChromeLines - sectionSeparators
	if available < minTableHeight {
		return minTableHeight
	}
	return available
}

// selectedRef is what the cursor is on.
func (m Model) selectedRef() (rowRef, bool) {
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.rows) {
		return rowRef{}, false
	}
	return m.rows[cursor], true
}

func (m Model) selectedItem() (string, bool) {
	ref, ok := m.selectedRef()
	if !ok || ref.kind != rowItem || ref.id == "" {
		return "", false
	}
	return ref.id, true
}

func levelLabel(level navigation.Level) string {
	switch level {
	case navigation.Repositories:
		return "Repositories"
	case navigation.Tags:
		return "Tags"
	default:
		return "Registries"
	}
}

func makeColumns(level navigation.Level, width int) []table.Column {
	contentWidth := func(columnCount int) int {
		// The default cell style pads one column on each side.
		available := width - (2 * columnCount)
		if available < columnCount {
			return columnCount
		}
		return available
	}

	timeWidth := 16
	countWidth := 6
	sizeWidth := 10

	switch level {
	case navigation.Repositories:
		content := contentWidth(3)
		return []table.Column{
			{Title: "Name", Width: maxInt(1, content-countWidth-sizeWidth)},
			{Title: "Tags", Width: countWidth},
			{Title: "Size", Width: sizeWidth},
		}
	case navigation.Tags:
		digestWidth := 19
		kindWidth := 14
		archWidth := 7
		fixed := digestWidth + kindWidth + archWidth + sizeWidth + timeWidth
		content := contentWidth(6)
		return []table.Column{
			{Title: "Tag", Width: maxInt(1, content-fixed)},
			{Title: "Digest", Width: digestWidth},
			{Title: "Type", Width: kindWidth},
			{Title: "Arch", Width: archWidth},
			{Title: "Size", Width: sizeWidth},
			{Title: "Created", Width: timeWidth},
		}
	default:
		statusWidth := 10
		latencyWidth := 8
		content := contentWidth(5)
		rest := maxInt(2, content-statusWidth-latencyWidth-timeWidth)
		nameWidth := maxInt(1, rest*3/5)
		return []table.Column{
			{Title: "Name", Width: nameWidth},
			{Title: "Status", Width: statusWidth},
			{Title: "Latency", Width: latencyWidth},
			{Title: "Checked", Width: timeWidth},
			{Title: "Detail", Width: maxInt(1, rest-nameWidth)},
		}
	}
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorBorder).
		BorderBottom(true).
		Foreground(colorTitleText).
		Background(colorSurface2).
		Bold(true)
	styles.Cell = lipgloss.NewStyle().Padding(0, 1)
	styles.Selected = styles.Selected.
		Foreground(colorSelected).
		Background(colorAccent).
		Bold(true)
	return styles
}
