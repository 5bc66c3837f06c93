package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/scottbass3/reglite/internal/api"
	"github.com/scottbass3/reglite/internal/status"
)

// renderHelpSectionBody lists where the session stands, what the status
// icons mean, and the keys and commands of the page help was opened from.
func (m Model) renderHelpSectionBody() string {
	lines := []string{helpHeadingStyle.Render("Session")}
	lines = append(lines, renderHelpPairs(m.sessionHelpPairs())...)

	lines = append(lines, "", helpHeadingStyle.Render("Registry status"))
	for _, s := range []api.Status{api.StatusOnline, api.StatusChecking, api.StatusOffline} {
		line := fmt.Sprintf("%s %-9s", statusIcon(s), s.String())
		note := "browsable"
		switch s {
		case api.StatusChecking:
			note = "validation still running, browsable"
		case api.StatusOffline:
			note = "refused until a validation finds it online"
		}
		if status.DefaultCollapsed(s) {
			note += ", group starts collapsed"
		}
		lines = append(lines, registryStatusStyle(s).Render(line)+" "+helpItemStyle.Render(note))
	}

	lines = append(lines, "", helpHeadingStyle.Render("Shortcuts: "+m.shortcutPageTitle(false)))
	lines = append(lines, renderHelpPairs(entriesToPairs(m.currentPageHelpEntries()))...)

	lines = append(lines, "", helpHeadingStyle.Render("Commands"))
	lines = append(lines, renderHelpPairs(commandsToPairs(availableCommands()))...)

	lines = append(lines, "", helpFooterStyle.Render("esc, ? or enter closes help."))
	return strings.Join(lines, "\n")
}

type helpPair struct {
	key   string
	value string
}

func (m Model) sessionHelpPairs() []helpPair {
	location := m.engine.Location()
	if location == "" {
		location = "(registry list)"
	}
	history := "-"
	switch back, forward := m.engine.CanBack(), m.engine.CanForward(); {
	case back && forward:
		history = "back and forward"
	case back:
		history = "back"
	case forward:
		history = "forward"
	}
	validation := "idle"
	if m.engine.Validating() {
		validation = "running"
	}
	return []helpPair{
		{key: "context", value: fmt.Sprintf("%s (%s)", contextDisplayName(m.context, 0), m.context.APIURL)},
		{key: "location", value: location},
		{key: "history", value: history},
		{key: "validation", value: validation},
		{key: "theme", value: m.theme},
	}
}

func entriesToPairs(entries []helpEntry) []helpPair {
	pairs := make([]helpPair, 0, len(entries))
	for _, entry := range entries {
		pairs = append(pairs, helpPair{key: entry.Keys, value: entry.Action})
	}
	return pairs
}

func commandsToPairs(entries []commandHelp) []helpPair {
	pairs := make([]helpPair, 0, len(entries))
	for _, entry := range entries {
		pairs = append(pairs, helpPair{key: ":" + entry.Command, value: entry.Usage})
	}
	return pairs
}

func renderHelpPairs(pairs []helpPair) []string {
	if len(pairs) == 0 {
		return []string{helpFooterStyle.Render("(none)")}
	}
	width := 8
	for _, pair := range pairs {
		width = maxInt(width, len(pair.key))
	}
	lines := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		lines = append(lines, helpItemStyle.Render(fmt.Sprintf("%-*s  %s", width, pair.key, pair.value)))
	}
	return lines
}

func (m Model) openHelp() (tea.Model, tea.Cmd) {
	m.helpActive = true
	return m, nil
}

func (m Model) handleHelpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case isShortcut(msg, shortcutCloseHelp):
		m.helpActive = false
		return m, nil
	case isShortcut(msg, shortcutQuit):
		m.helpActive = false
		return m.openQuitConfirm()
	default:
		return m, nil
	}
}
