package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/scottbass3/reglite/internal/navigation"
)

type shortcutAction int

const (
	shortcutOpenHelp shortcutAction = iota
	shortcutCloseHelp
	shortcutQuit
	shortcutOpenCommand
	shortcutTypeCommand
	shortcutCommandAutocomplete
	shortcutCommandCycleSuggestions
	shortcutCommandRun
	shortcutCommandCancel
	shortcutOpenFilter
	shortcutTypeFilter
	shortcutApplyFilter
	shortcutClearFilter
	shortcutOpen
	shortcutUp
	shortcutHistoryBack
	shortcutHistoryForward
	shortcutRefresh
	shortcutValidate
	shortcutRepositoryInfo
	shortcutToggleGroup
	shortcutToggleTheme
	shortcutCopyDigest
	shortcutCopyPullRef
	shortcutDeleteTag
	shortcutReloadManifest
	shortcutCloseManifest
	shortcutMoveUp
	shortcutMoveDown
	shortcutMovePageUp
	shortcutMovePageDown
	shortcutMoveTop
	shortcutMoveBottom
)

type shortcutDefinition struct {
	Keys        []string
	HelpKeys    string
	HintKeys    string
	Description string
	HintLabel   string
}

type helpEntry struct {
	Keys   string
	Action string
}

var shortcutDefinitions = map[shortcutAction]shortcutDefinition{
	shortcutOpenHelp: {
		Keys:        []string{"?", "f1"},
		HelpKeys:    "?/F1",
		HintKeys:    "?",
		Description: "Open help",
		HintLabel:   "help",
	},
	shortcutCloseHelp: {
		Keys:        []string{"esc", "?", "f1", "enter"},
		HelpKeys:    "Esc/?/F1/Enter",
		HintKeys:    "esc",
		Description: "Close help",
		HintLabel:   "close",
	},
	shortcutQuit: {
		Keys:        []string{"q", "ctrl+c"},
		HelpKeys:    "q/Ctrl+C",
		HintKeys:    "q",
		Description: "Quit",
		HintLabel:   "quit",
	},
	shortcutOpenCommand: {
		Keys:        []string{":"},
		HelpKeys:    ":",
		Description: "Open command input",
		HintLabel:   "command",
	},
	shortcutTypeCommand: {
		HelpKeys:    "type",
		Description: "Edit command",
	},
	shortcutCommandAutocomplete: {
		Keys:        []string{"tab"},
		HelpKeys:    "Tab",
		HintKeys:    "tab",
		Description: "Autocomplete command",
		HintLabel:   "complete",
	},
	shortcutCommandCycleSuggestions: {
		Keys:        []string{"up", "down"},
		HelpKeys:    "Up/Down",
		HintKeys:    "up/down",
		Description: "Cycle suggestions",
		HintLabel:   "cycle",
	},
	shortcutCommandRun: {
		Keys:        []string{"enter"},
		HelpKeys:    "Enter",
		HintKeys:    "enter",
		Description: "Run command",
		HintLabel:   "run",
	},
	shortcutCommandCancel: {
		Keys:        []string{"esc"},
		HelpKeys:    "Esc",
		HintKeys:    "esc",
		Description: "Cancel command input",
		HintLabel:   "cancel",
	},
	shortcutOpenFilter: {
		Keys:        []string{"/"},
		HelpKeys:    "/",
		Description: "Filter the current list",
		HintLabel:   "filter",
	},
	shortcutTypeFilter: {
		HelpKeys:    "type",
		HintKeys:    "type",
		Description: "Edit filter",
		HintLabel:   "filter",
	},
	shortcutApplyFilter: {
		Keys:        []string{"enter"},
		HelpKeys:    "Enter",
		HintKeys:    "enter",
		Description: "Keep filter and return to the list",
		HintLabel:   "apply",
	},
	shortcutClearFilter: {
		Keys:        []string{"esc"},
		HelpKeys:    "Esc",
		HintKeys:    "esc",
		Description: "Clear filter",
		HintLabel:   "clear",
	},
	shortcutOpen: {
		Keys:        []string{"enter"},
		HelpKeys:    "Enter",
		HintKeys:    "enter",
		Description: "Open selected row",
		HintLabel:   "open",
	},
	shortcutUp: {
		Keys:        []string{"esc", "backspace"},
		HelpKeys:    "Esc/Backspace",
		HintKeys:    "esc",
		Description: "Clear filter or go up one level",
		HintLabel:   "up",
	},
	shortcutHistoryBack: {
		Keys:        []string{"[", "alt+left"},
		HelpKeys:    "[/Alt+Left",
		HintKeys:    "[",
		Description: "Go back in history",
		HintLabel:   "back",
	},
	shortcutHistoryForward: {
		Keys:        []string{"]", "alt+right"},
		HelpKeys:    "]/Alt+Right",
		HintKeys:    "]",
		Description: "Go forward in history",
		HintLabel:   "forward",
	},
	shortcutRefresh: {
		Keys:        []string{"r", "ctrl+r"},
		HelpKeys:    "r/Ctrl+R",
		HintKeys:    "r",
		Description: "Refresh, or retry a failed load",
		HintLabel:   "refresh",
	},
	shortcutValidate: {
		Keys:        []string{"v"},
		HelpKeys:    "v",
		Description: "Re-check every registry",
		HintLabel:   "validate",
	},
	shortcutRepositoryInfo: {
		Keys:        []string{"i"},
		HelpKeys:    "i",
		Description: "Load size of the selected repository",
		HintLabel:   "info",
	},
	shortcutToggleGroup: {
		Keys:        []string{" ", "enter"},
		HelpKeys:    "Space/Enter",
		HintKeys:    "space",
		Description: "Collapse or expand a status group",
		HintLabel:   "fold",
	},
	shortcutToggleTheme: {
		Keys:        []string{"t"},
		HelpKeys:    "t",
		Description: "Toggle light and dark theme",
	},
	shortcutCopyDigest: {
		Keys:        []string{"c"},
		HelpKeys:    "c",
		Description: "Copy manifest digest",
		HintLabel:   "copy digest",
	},
	shortcutCopyPullRef: {
		Keys:        []string{"y"},
		HelpKeys:    "y",
		Description: "Copy pull command reference",
		HintLabel:   "copy ref",
	},
	shortcutDeleteTag: {
		Keys:        []string{"d", "delete"},
		HelpKeys:    "d/Del",
		HintKeys:    "d",
		Description: "Delete manifest by digest",
		HintLabel:   "delete",
	},
	shortcutReloadManifest: {
		Keys:        []string{"r"},
		HelpKeys:    "r",
		Description: "Fetch the manifest again",
		HintLabel:   "reload",
	},
	shortcutCloseManifest: {
		Keys:        []string{"esc", "enter"},
		HelpKeys:    "Esc/Enter",
		HintKeys:    "esc",
		Description: "Close manifest detail",
		HintLabel:   "close",
	},
	shortcutMoveUp: {
		Keys:        []string{"up", "k"},
		HelpKeys:    "Up/k",
		Description: "Move up",
	},
	shortcutMoveDown: {
		Keys:        []string{"down", "j"},
		HelpKeys:    "Down/j",
		Description: "Move down",
	},
	shortcutMovePageUp: {
		Keys:        []string{"pgup", "ctrl+u"},
		HelpKeys:    "PgUp/Ctrl+U",
		Description: "Move one page up",
	},
	shortcutMovePageDown: {
		Keys:        []string{"pgdown", "ctrl+d"},
		HelpKeys:    "PgDn/Ctrl+D",
		Description: "Move one page down",
	},
	shortcutMoveTop: {
		Keys:        []string{"home", "g"},
		HelpKeys:    "Home/g",
		Description: "Jump to top",
	},
	shortcutMoveBottom: {
		Keys:        []string{"end", "G"},
		HelpKeys:    "End/G",
		Description: "Jump to bottom",
	},
}

type shortcutPage int

const (
	shortcutPageHelp shortcutPage = iota
	shortcutPageCommandInput
	shortcutPageFilterInput
	shortcutPageConfirm
	shortcutPageManifest
	shortcutPageRegistries
	shortcutPageRepositories
	shortcutPageTags
)

var listHelpActions = []shortcutAction{
	shortcutOpenHelp,
	shortcutOpenCommand,
	shortcutQuit,
	shortcutOpenFilter,
	shortcutMoveUp,
	shortcutMoveDown,
	shortcutMovePageUp,
	shortcutMovePageDown,
	shortcutMoveTop,
	shortcutMoveBottom,
	shortcutRefresh,
	shortcutHistoryBack,
	shortcutHistoryForward,
	shortcutToggleTheme,
}

var listHintActions = []shortcutAction{
	shortcutOpenHelp,
	shortcutOpenCommand,
	shortcutOpenFilter,
	shortcutRefresh,
	shortcutQuit,
}

func isShortcut(msg tea.KeyMsg, action shortcutAction) bool {
	def, ok := shortcutDefinitions[action]
	if !ok || len(def.Keys) == 0 {
		return false
	}
	key := msg.String()
	for _, candidate := range def.Keys {
		if key == candidate {
			return true
		}
	}
	return false
}

func (m Model) shortcutPage(includeHelpOverlay bool) shortcutPage {
	if includeHelpOverlay && m.helpActive {
		return shortcutPageHelp
	}
	if m.commandActive {
		return shortcutPageCommandInput
	}
	if m.isConfirmModalActive() {
		return shortcutPageConfirm
	}
	if m.filterActive {
		return shortcutPageFilterInput
	}
	if m.isManifestActive() {
		return shortcutPageManifest
	}
	switch m.screen.state.Level {
	case navigation.Repositories:
		return shortcutPageRepositories
	case navigation.Tags:
		return shortcutPageTags
	default:
		return shortcutPageRegistries
	}
}

func (m Model) shortcutPageTitle(includeHelpOverlay bool) string {
	switch page := m.shortcutPage(includeHelpOverlay); page {
	case shortcutPageHelp:
		return "Help"
	case shortcutPageCommandInput:
		return "Command Input"
	case shortcutPageFilterInput:
		return "Filter Input"
	case shortcutPageConfirm:
		return "Confirm"
	case shortcutPageManifest:
		return "Manifest"
	default:
		return levelLabel(m.screen.state.Level)
	}
}

func (m Model) currentPageHelpEntries() []helpEntry {
	return helpEntriesForActions(m.helpActionsForPage(m.shortcutPage(false)))
}

func (m Model) shortcutHintLine() string {
	page := m.shortcutPage(true)
	return hintLineForActions(hintPrefixForPage(page), m.hintActionsForPage(page))
}

func hintPrefixForPage(page shortcutPage) string {
	switch page {
	case shortcutPageHelp:
		return "Help"
	case shortcutPageCommandInput:
		return "Command"
	case shortcutPageFilterInput:
		return "Filter"
	case shortcutPageConfirm:
		return "Confirm"
	case shortcutPageManifest:
		return "Manifest"
	default:
		return "Shortcuts"
	}
}

func (m Model) helpActionsForPage(page shortcutPage) []shortcutAction {
	switch page {
	case shortcutPageCommandInput:
		return []shortcutAction{
			shortcutTypeCommand,
			shortcutCommandAutocomplete,
			shortcutCommandCycleSuggestions,
			shortcutCommandRun,
			shortcutCommandCancel,
		}
	case shortcutPageFilterInput:
		return []shortcutAction{
			shortcutTypeFilter,
			shortcutApplyFilter,
			shortcutClearFilter,
			shortcutOpenCommand,
		}
	case shortcutPageManifest:
		return []shortcutAction{
			shortcutCopyDigest,
			shortcutCopyPullRef,
			shortcutDeleteTag,
			shortcutReloadManifest,
			shortcutCloseManifest,
			shortcutQuit,
		}
	case shortcutPageRegistries:
		actions := cloneActions(listHelpActions)
		return append(actions, shortcutOpen, shortcutToggleGroup, shortcutValidate)
	case shortcutPageRepositories:
		actions := cloneActions(listHelpActions)
		return append(actions, shortcutOpen, shortcutRepositoryInfo, shortcutUp)
	case shortcutPageTags:
		actions := cloneActions(listHelpActions)
		return append(actions, shortcutOpen, shortcutUp)
	default:
		return []shortcutAction{shortcutCloseHelp, shortcutQuit}
	}
}

func (m Model) hintActionsForPage(page shortcutPage) []shortcutAction {
	switch page {
	case shortcutPageHelp:
		return []shortcutAction{shortcutCloseHelp, shortcutQuit}
	case shortcutPageCommandInput:
		return []shortcutAction{
			shortcutCommandAutocomplete,
			shortcutCommandCycleSuggestions,
			shortcutCommandRun,
			shortcutCommandCancel,
		}
	case shortcutPageFilterInput:
		return []shortcutAction{
			shortcutTypeFilter,
			shortcutApplyFilter,
			shortcutClearFilter,
		}
	case shortcutPageConfirm:
		return nil
	case shortcutPageManifest:
		return []shortcutAction{
			shortcutCopyDigest,
			shortcutCopyPullRef,
			shortcutDeleteTag,
			shortcutCloseManifest,
		}
	case shortcutPageRegistries:
		actions := cloneActions(listHintActions)
		return append(actions, shortcutOpen, shortcutToggleGroup, shortcutValidate)
	case shortcutPageRepositories:
		actions := cloneActions(listHintActions)
		return append(actions, shortcutOpen, shortcutRepositoryInfo, shortcutUp, shortcutHistoryBack)
	case shortcutPageTags:
		actions := cloneActions(listHintActions)
		return append(actions, shortcutOpen, shortcutUp, shortcutHistoryBack)
	default:
		return []shortcutAction{shortcutOpenHelp, shortcutQuit}
	}
}

func helpEntriesForActions(actions []shortcutAction) []helpEntry {
	entries := make([]helpEntry, 0, len(actions))
	for _, action := range actions {
		def, ok := shortcutDefinitions[action]
		if !ok || def.HelpKeys == "" || def.Description == "" {
			continue
		}
		entries = append(entries, helpEntry{Keys: def.HelpKeys, Action: def.Description})
	}
	return entries
}

func hintLineForActions(prefix string, actions []shortcutAction) string {
	parts := make([]string, 0, len(actions))
	for _, action := range actions {
		def, ok := shortcutDefinitions[action]
		if !ok || def.HintLabel == "" {
			continue
		}
		keys := def.HintKeys
		if keys == "" {
			keys = def.HelpKeys
		}
		if keys == "" {
			continue
		}
		parts = append(parts, keys+" "+def.HintLabel)
	}
	if len(parts) == 0 {
		return prefix
	}
	if prefix == "" {
		return strings.Join(parts, "   ")
	}
	return prefix + ": " + strings.Join(parts, "   ")
}

func cloneActions(actions []shortcutAction) []shortcutAction {
	if len(actions) == 0 {
		return nil
	}
	out := make([]shortcutAction, len(actions))
	copy(out, actions)
	return out
}
