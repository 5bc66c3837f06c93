package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/scottbass3/reglite/internal/browser"
)

func (m Model) resolveContextIndex(name string) (int, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for i, ctx := range m.contexts {
		if strings.ToLower(ctx.Name) == needle {
			return i, true
		}
	}
	return -1, false
}

// switchContext replaces the engine with one talking to another backend.
// Results still in flight for the old engine are ignored by the new one.
func (m Model) switchContext(name string) (tea.Model, tea.Cmd) {
	index, ok := m.resolveContextIndex(name)
	if !ok {
		m.screen.Notify(browser.NoticeError, fmt.Sprintf("unknown context: %s", name))
		return m.afterEngine(nil)
	}
	ctx := m.contexts[index]
	if m.connect == nil {
		m.screen.Notify(browser.NoticeError, "switching contexts is not available")
		return m.afterEngine(nil)
	}
	gw, err := m.connect(ctx)
	if err != nil {
		m.screen.Notify(browser.NoticeError, fmt.Sprintf("context %s: %v", contextDisplayName(ctx, index), err))
		return m.afterEngine(nil)
	}

	m.engine.Close()
	m.screen = newScreen()
	m.engine = browser.New(gw, m.screen, m.engineOpts)
	m.context = ctx
	m.filterActive = false
	m.filterInput.Blur()
	m.filterInput.SetValue("")
	m.clearConfirm()
	m.table.SetCursor(0)

	start := m.engine.Start()
	m.screen.Notify(browser.NoticeInfo, fmt.Sprintf("context: %s (%s)", contextDisplayName(ctx, index), ctx.APIURL))
	return m.afterEngine(start)
}

func contextNames(contexts []ContextOption) []string {
	if len(contexts) == 0 {
		return nil
	}
	names := make([]string, 0, len(contexts))
	for i, ctx := range contexts {
		names = append(names, contextDisplayName(ctx, i))
	}
	return names
}

func contextDisplayName(ctx ContextOption, index int) string {
	if name := strings.TrimSpace(ctx.Name); name != "" {
		return name
	}
	if url := strings.TrimSpace(ctx.APIURL); url != "" {
		return url
	}
	return fmt.Sprintf("context-%d", index+1)
}
