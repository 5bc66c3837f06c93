package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/scottbass3/reglite/internal/api"
	"github.com/scottbass3/reglite/internal/browser"
	"github.com/scottbass3/reglite/internal/navigation"
	"github.com/scottbass3/reglite/internal/prefs"
)

func (m Model) updateKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.helpActive {
		return m.handleHelpKey(msg)
	}
	if m.isConfirmModalActive() {
		return m.handleConfirmKey(msg)
	}
	if m.commandActive {
		return m.handleCommandKey(msg)
	}
	if isShortcut(msg, shortcutOpenCommand) {
		return m.enterCommandMode()
	}
	if m.filterActive {
		return m.handleFilterKey(msg)
	}
	if isShortcut(msg, shortcutOpenHelp) {
		return m.openHelp()
	}
	if m.isManifestActive() {
		return m.handleManifestKey(msg)
	}
	return m.handleKey(msg)
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case isShortcut(msg, shortcutClearFilter):
		m.clearFilter()
		m.syncTable()
		return m, nil
	case isShortcut(msg, shortcutApplyFilter):
		m.stopFilterEditing()
		m.syncTable()
		return m, nil
	}
	before := m.filterInput.Value()
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	if value := m.filterInput.Value(); value != before {
		m.screen.setFilter(value)
		m.table.SetCursor(0)
		m.syncTable()
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	level := m.screen.state.Level
	switch {
	case isShortcut(msg, shortcutQuit):
		return m.openQuitConfirm()
	case isShortcut(msg, shortcutUp):
		if m.filterInput.Value() != "" {
			m.clearFilter()
			m.syncTable()
			return m, nil
		}
		return m.afterEngine(m.engine.Up())
	case isShortcut(msg, shortcutHistoryBack):
		return m.afterEngine(m.engine.Back())
	case isShortcut(msg, shortcutHistoryForward):
		return m.afterEngine(m.engine.Forward())
	case isShortcut(msg, shortcutOpenFilter):
		m.filterActive = true
		cmd := m.filterInput.Focus()
		m.filterInput.CursorEnd()
		m.syncTable()
		return m, cmd
	case isShortcut(msg, shortcutRefresh):
		if m.screen.err != "" {
			return m.afterEngine(m.engine.Retry())
		}
		return m.afterEngine(m.engine.Refresh())
	case isShortcut(msg, shortcutValidate):
		return m.afterEngine(m.engine.Validate())
	case isShortcut(msg, shortcutToggleTheme):
		return m.toggleTheme()
	case level == navigation.Repositories && isShortcut(msg, shortcutRepositoryInfo):
		repo, ok := m.selectedItem()
		if !ok {
			return m, nil
		}
		return m.afterEngine(m.engine.ShowInfo(repo))
	case isShortcut(msg, shortcutOpen):
		return m.openSelected()
	case level == navigation.Welcome && isShortcut(msg, shortcutToggleGroup):
		ref, ok := m.selectedRef()
		if !ok {
			return m, nil
		}
		return m.toggleGroup(ref.status)
	}
	if m.handleTableNavKey(msg) {
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// openSelected drills into the row under the cursor. On the registry list
// a group header folds instead.
func (m Model) openSelected() (tea.Model, tea.Cmd) {
	ref, ok := m.selectedRef()
	if !ok {
		return m, nil
	}
	state := m.screen.state
	switch state.Level {
	case navigation.Welcome:
		if ref.kind == rowGroup {
			return m.toggleGroup(ref.status)
		}
		return m.afterEngine(m.engine.GoRepositories(ref.id))
	case navigation.Repositories:
		return m.afterEngine(m.engine.GoTags(state.Registry, ref.id))
	case navigation.Tags:
		return m.afterEngine(m.engine.SelectTag(ref.id))
	}
	return m, nil
}

func (m Model) toggleGroup(s api.Status) (tea.Model, tea.Cmd) {
	collapsed := !m.prefs.Collapsed(s)
	if err := m.prefs.SetCollapsed(s, collapsed); err != nil {
		m.screen.Notify(browser.NoticeWarning, fmt.Sprintf("save preferences: %v", err))
	}
	m.syncTable()
	for i, ref := range m.rows {
		if ref.kind == rowGroup && ref.status == s {
			m.table.SetCursor(i)
			break
		}
	}
	return m.afterEngine(nil)
}

func (m Model) toggleTheme() (tea.Model, tea.Cmd) {
	if m.theme == prefs.ThemeLight {
		return m.setTheme(prefs.ThemeDark)
	}
	return m.setTheme(prefs.ThemeLight)
}

func (m Model) setTheme(theme string) (tea.Model, tea.Cmd) {
	applyTheme(theme)
	m.theme = theme
	m.spinner.Style = statusLoadingStyle
	if err := m.prefs.SetTheme(theme); err != nil {
		m.screen.Notify(browser.NoticeWarning, fmt.Sprintf("save preferences: %v", err))
	}
	return m.afterEngine(nil)
}

func (m Model) handleManifestKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case isShortcut(msg, shortcutQuit):
		return m.openQuitConfirm()
	case isShortcut(msg, shortcutCloseManifest):
		m.engine.CloseManifest()
		return m.afterEngine(nil)
	case isShortcut(msg, shortcutCopyDigest):
		m.copyDigest()
		return m.afterEngine(nil)
	case isShortcut(msg, shortcutCopyPullRef):
		m.copyPullReference()
		return m.afterEngine(nil)
	case isShortcut(msg, shortcutReloadManifest):
		return m.afterEngine(m.engine.SelectTag(m.screen.manifest.Tag))
	case isShortcut(msg, shortcutDeleteTag):
		return m.openDeleteConfirm()
	}
	return m, nil
}

func (m *Model) handleTableNavKey(msg tea.KeyMsg) bool {
	rowCount := len(m.table.Rows())
	if rowCount == 0 {
		return false
	}
	step := maxInt(1, m.table.Height())

	switch {
	case isShortcut(msg, shortcutMoveUp):
		m.table.MoveUp(1)
		return true
	case isShortcut(msg, shortcutMoveDown):
		m.table.MoveDown(1)
		return true
	case isShortcut(msg, shortcutMovePageUp):
		m.table.MoveUp(step)
		return true
	case isShortcut(msg, shortcutMovePageDown):
		m.table.MoveDown(step)
		return true
	case isShortcut(msg, shortcutMoveTop):
		m.table.GotoTop()
		return true
	case isShortcut(msg, shortcutMoveBottom):
		m.table.GotoBottom()
		return true
	default:
		return false
	}
}

func (m *Model) stopFilterEditing() {
	m.filterActive = false
	m.filterInput.Blur()
}

func (m *Model) clearFilter() {
	m.stopFilterEditing()
	m.filterInput.SetValue("")
	m.screen.setFilter("")
	m.table.SetCursor(0)
}

func (m Model) isManifestActive() bool {
	return m.screen.manifest != nil
}

func (m Model) isManifestLoading() bool {
	return m.screen.manifest != nil && m.screen.manifest.Loading
}

func (m Model) isConfirmModalActive() bool {
	return m.confirmAction != confirmActionNone
}
