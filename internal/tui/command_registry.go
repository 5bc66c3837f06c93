package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/scottbass3/reglite/internal/browser"
	"github.com/scottbass3/reglite/internal/prefs"
)

type commandHelp struct {
	Command string
	Usage   string
}

type commandDescriptor struct {
	Name    string
	Aliases []string
	Help    []commandHelp
	Run     func(Model, []string) (tea.Model, tea.Cmd)
}

func commandRegistry() []commandDescriptor {
	return []commandDescriptor{
		{
			Name: "help",
			Help: []commandHelp{
				{Command: "help", Usage: "Open the help page"},
			},
			Run: runHelpCommand,
		},
		{
			Name:    "context",
			Aliases: []string{"ctx"},
			Help: []commandHelp{
				{Command: "context", Usage: "List configured contexts"},
				{Command: "context <name>", Usage: "Switch to another backend"},
			},
			Run: runContextCommand,
		},
		{
			Name: "open",
			Help: []commandHelp{
				{Command: "open <location>", Usage: "Go to ?registry=<r>&repository=<p>"},
			},
			Run: runOpenCommand,
		},
		{
			Name:    "registries",
			Aliases: []string{"home"},
			Help: []commandHelp{
				{Command: "registries", Usage: "Go to the registry list"},
			},
			Run: runRegistriesCommand,
		},
		{
			Name: "validate",
			Help: []commandHelp{
				{Command: "validate", Usage: "Re-check every registry"},
			},
			Run: runValidateCommand,
		},
		{
			Name: "refresh",
			Help: []commandHelp{
				{Command: "refresh", Usage: "Drop cached data and reload"},
			},
			Run: runRefreshCommand,
		},
		{
			Name: "theme",
			Help: []commandHelp{
				{Command: "theme", Usage: "Toggle light and dark theme"},
				{Command: "theme <dark|light>", Usage: "Set the theme"},
			},
			Run: runThemeCommand,
		},
		{
			Name:    "quit",
			Aliases: []string{"q", "exit"},
			Help: []commandHelp{
				{Command: "quit", Usage: "Quit reglite"},
			},
			Run: runQuitCommand,
		},
	}
}

func availableCommands() []commandHelp {
	registry := commandRegistry()
	entries := make([]commandHelp, 0, len(registry)*2)
	for _, cmd := range registry {
		entries = append(entries, cmd.Help...)
	}
	return entries
}

func resolveCommand(name string) (commandDescriptor, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return commandDescriptor{}, false
	}
	for _, descriptor := range commandRegistry() {
		if descriptor.Name == needle {
			return descriptor, true
		}
		for _, alias := range descriptor.Aliases {
			if alias == needle {
				return descriptor, true
			}
		}
	}
	return commandDescriptor{}, false
}

func commandSuggestions() []string {
	registry := commandRegistry()
	out := make([]string, 0, len(registry))
	for _, descriptor := range registry {
		out = append(out, descriptor.Name)
	}
	return out
}

func matchCommands(prefix string) []string {
	candidates := commandSuggestions()
	if prefix == "" {
		return candidates
	}
	prefix = strings.ToLower(prefix)
	out := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		if strings.HasPrefix(candidate, prefix) {
			out = append(out, candidate)
		}
	}
	return out
}

func runHelpCommand(m Model, _ []string) (tea.Model, tea.Cmd) {
	return m.openHelp()
}

func runContextCommand(m Model, args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		m.screen.Notify(browser.NoticeInfo, "contexts: "+strings.Join(contextNames(m.contexts), ", "))
		return m.afterEngine(nil)
	}
	return m.switchContext(args[0])
}

func runOpenCommand(m Model, args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		m.screen.Notify(browser.NoticeWarning, "usage: open ?registry=<name>&repository=<name>")
		return m.afterEngine(nil)
	}
	return m.afterEngine(m.engine.Open(strings.Join(args, "")))
}

func runRegistriesCommand(m Model, _ []string) (tea.Model, tea.Cmd) {
	return m.afterEngine(m.engine.GoWelcome())
}

func runValidateCommand(m Model, _ []string) (tea.Model, tea.Cmd) {
	return m.afterEngine(m.engine.Validate())
}

func runRefreshCommand(m Model, _ []string) (tea.Model, tea.Cmd) {
	return m.afterEngine(m.engine.Refresh())
}

func runThemeCommand(m Model, args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		return m.toggleTheme()
	}
	switch theme := strings.ToLower(args[0]); theme {
	case prefs.ThemeDark, prefs.ThemeLight:
		return m.setTheme(theme)
	default:
		m.screen.Notify(browser.NoticeWarning, "unknown theme: "+args[0])
		return m.afterEngine(nil)
	}
}

func runQuitCommand(m Model, _ []string) (tea.Model, tea.Cmd) {
	return m, tea.Quit
}
