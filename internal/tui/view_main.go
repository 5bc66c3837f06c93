package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mitchellh/go-wordwrap"

	"github.com/scottbass3/reglite/internal/navigation"
)

func (m Model) renderApp() string {
	sections := []string{
		m.renderTopSection(),
		m.renderMainSection(),
	}
	if m.debug {
		sections = append(sections, m.renderLogs())
	}
	return strings.Join(sections, "\n")
}

func (m Model) renderTopSection() string {
	contextName := firstNonEmpty(m.context.Name, "-")
	location := firstNonEmpty(m.engine.Location(), "/")

	headerLine := lipgloss.JoinHorizontal(lipgloss.Top, titleStyle.Render("reglite"), m.renderStatusLine())
	metaLine := lipgloss.JoinHorizontal(
		lipgloss.Top,
		metaLabelStyle.Render("Context"),
		metaValueStyle.Render(contextName),
		metaLabelStyle.Render("Path"),
		metaValueStyle.Render(m.screen.state.Breadcrumb()),
		metaLabelStyle.Render("Location"),
		metaValueStyle.Render(location),
		metaLabelStyle.Render("History"),
		metaValueStyle.Render(m.historyMarker()),
	)
	lines := []string{headerLine, metaLine}
	if inputLine := m.renderModeInputLine(); inputLine != "" {
		lines = append(lines, modeInputStyle.Render(inputLine))
	}
	lines = append(lines, shortcutHintStyle.Render(m.shortcutHintLine()))
	return topSectionStyle.Width(sectionPanelWidth(m.width)).Render(strings.Join(lines, "\n"))
}

func (m Model) renderStatusLine() string {
	if n, ok := m.screen.latestNotice(); ok {
		return noticeStyle(n.level).Render(n.message)
	}
	if m.engine.Validating() {
		return statusLoadingStyle.Render("Validating registries")
	}
	return statusStyle.Render("-")
}

func (m Model) historyMarker() string {
	back, forward := "·", "·"
	if m.engine.CanBack() {
		back = "◂"
	}
	if m.engine.CanForward() {
		forward = "▸"
	}
	return back + " " + forward
}

func (m Model) renderMainSection() string {
	panelWidth := sectionPanelWidth(m.width)
	contentWidth := m.mainSectionContentWidth()
	titleLabel := strings.ToUpper(levelLabel(m.screen.state.Level))
	body := m.renderBody()
	if m.helpActive {
		titleLabel = "HELP"
		body = m.renderHelpSectionBody()
	}
	title := mainSectionTitleStyle.Render(titleLabel)
	if count := m.searchCount; count != "" && !m.helpActive {
		title += "  " + searchCountStyle.Render(count)
	}
	titleLine := mainSectionTitleLine.
		Width(contentWidth).
		Align(lipgloss.Center).
		Render(title)
	return mainSectionStyle.Width(panelWidth).Render(titleLine + "\n" + body)
}

func sectionPanelWidth(width int) int {
	if width <= 0 {
		width = defaultRenderWidth
	}
	panelWidth := width - 2
	if panelWidth < 24 {
		panelWidth = width
	}
	if panelWidth < 1 {
		panelWidth = 1
	}
	return panelWidth
}

func (m Model) mainSectionContentWidth() int {
	contentWidth := sectionPanelWidth(m.width) - mainSectionHChromeChars
	if contentWidth < 1 {
		return 1
	}
	return contentWidth
}

func (m Model) renderModeInputLine() string {
	if m.commandActive {
		line := m.commandInput.View()
		if len(m.commandMatches) > 0 {
			line += "  " + shortcutHintStyle.Render(strings.Join(m.commandMatches, " "))
		}
		return line
	}
	if m.filterActive {
		return m.filterInput.View()
	}
	if value := strings.TrimSpace(m.filterInput.Value()); value != "" {
		return m.filterInput.Prompt + value
	}
	return ""
}

func (m Model) renderBody() string {
	s := m.screen
	switch {
	case s.loading:
		return m.spinner.View() + " " + emptyStyle.Render("Loading "+strings.ToLower(levelLabel(s.state.Level))+"...")
	case s.err != "":
		width := uint(maxInt(20, m.mainSectionContentWidth()))
		return errorBodyStyle.Render(wordwrap.WrapString(s.err, width)) + "\n" +
			emptyStyle.Render("Press r to retry.")
	}
	view := m.table.View()
	if len(m.table.Rows()) == 0 {
		return view + "\n" + emptyStyle.Render(m.emptyBodyMessage())
	}
	return view
}

func (m Model) emptyBodyMessage() string {
	if m.filterInput.Value() != "" {
		return "No matches."
	}
	switch m.screen.state.Level {
	case navigation.Repositories:
		return "No repositories in this registry."
	case navigation.Tags:
		return "No tags in this repository."
	default:
		return "No registries configured."
	}
}
