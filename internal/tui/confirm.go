package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/scottbass3/reglite/internal/browser"
)

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "h", "shift+tab":
		m.confirmFocus = 0
	case "right", "l", "tab":
		m.confirmFocus = 1
	case "esc", "n":
		m.clearConfirm()
		return m, nil
	case "y":
		return m.resolveConfirm(true)
	case "enter":
		return m.resolveConfirm(m.confirmFocus == 1)
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) openQuitConfirm() (tea.Model, tea.Cmd) {
	m.confirmAction = confirmActionQuit
	m.confirmTitle = "Quit reglite?"
	if m.screen.loading || m.engine.Validating() {
		m.confirmMessage = "A request is still in progress."
	} else {
		m.confirmMessage = "Close the current session?"
	}
	m.confirmFocus = 0
	return m, nil
}

// openDeleteConfirm asks before deleting the manifest on screen. It refuses
// up front when there is nothing deletable, so no request is ever sent for
// a manifest without a digest.
func (m Model) openDeleteConfirm() (tea.Model, tea.Cmd) {
	target, err := m.engine.DeleteTarget()
	if err != nil {
		m.screen.Notify(browser.NoticeError, err.Error())
		return m.afterEngine(nil)
	}
	view := m.screen.manifest
	m.confirmAction = confirmActionDelete
	m.confirmTitle = fmt.Sprintf("Delete %s:%s?", view.Repository, view.Tag)
	m.confirmMessage = fmt.Sprintf("Manifest %s will be removed from %s, with every tag pointing at it.", shortDigest(target.Digest), view.Registry)
	m.confirmFocus = 0
	return m, nil
}

func (m Model) resolveConfirm(accept bool) (tea.Model, tea.Cmd) {
	action := m.confirmAction
	m.clearConfirm()
	if !accept {
		return m, nil
	}
	switch action {
	case confirmActionQuit:
		return m, tea.Quit
	case confirmActionDelete:
		return m.afterEngine(m.engine.DeleteSelected())
	default:
		return m, nil
	}
}

func (m *Model) clearConfirm() {
	m.confirmAction = confirmActionNone
	m.confirmTitle = ""
	m.confirmMessage = ""
	m.confirmFocus = 0
}
