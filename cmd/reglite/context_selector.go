package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/scottbass3/reglite/internal/api"
	"github.com/scottbass3/reglite/internal/config"
)

var errSelectionCanceled = errors.New("context selection canceled")

const checkTimeout = 3 * time.Second

// backendHealth is what one status call told us about a context's backend.
type backendHealth struct {
	registries int
	online     int
	err        error
}

func (h backendHealth) String() string {
	if h.err != nil {
		return "unreachable: " + h.err.Error()
	}
	if h.registries == 0 {
		return "reachable, no registries configured"
	}
	return fmt.Sprintf("%d of %d registries online", h.online, h.registries)
}

// checkBackend asks a backend for its registry statuses.
type checkBackend func(ctx context.Context, apiURL string) backendHealth

func gatewayCheck(cfg config.Config) checkBackend {
	return func(ctx context.Context, apiURL string) backendHealth {
		gw, err := dial(cfg, nil, nil, apiURL)
		if err != nil {
			return backendHealth{err: err}
		}
		entries, err := gw.RegistryStatuses(ctx)
		if err != nil {
			return backendHealth{err: err}
		}
		health := backendHealth{registries: len(entries)}
		for _, entry := range entries {
			if entry.Status == api.StatusOnline {
				health.online++
			}
		}
		return health
	}
}

type contextItem struct {
	ctx    config.Context
	health *backendHealth
}

func (i contextItem) Title() string {
	if i.ctx.Name != "" {
		return i.ctx.Name
	}
	return i.ctx.APIURL
}

func (i contextItem) Description() string {
	switch {
	case i.health == nil:
		return i.ctx.APIURL + "  checking..."
	case i.health.err != nil:
		return i.ctx.APIURL + "  " + unreachableStyle.Render(i.health.String())
	default:
		return i.ctx.APIURL + "  " + i.health.String()
	}
}

func (i contextItem) FilterValue() string {
	return i.ctx.Name + " " + i.ctx.APIURL
}

var unreachableStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))

type contextCheckedMsg struct {
	index  int
	health backendHealth
}

type contextSelectorModel struct {
	list  list.Model
	check checkBackend

	choice      *config.Context
	makeDefault bool
	err         error
}

func newContextSelectorModel(contexts []config.Context, check checkBackend) contextSelectorModel {
	items := make([]list.Item, 0, len(contexts))
	for _, ctx := range contexts {
		items = append(items, contextItem{ctx: ctx})
	}

	delegate := list.NewDefaultDelegate()
	lst := list.New(items, delegate, 0, 0)
	lst.Title = "Select Backend"
	lst.SetShowStatusBar(false)
	lst.SetFilteringEnabled(true)
	lst.SetShowHelp(true)
	lst.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{defaultKey}
	}
	lst.Styles.Title = lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true)
	lst.Styles.HelpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	lst.Styles.PaginationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	return contextSelectorModel{list: lst, check: check}
}

var defaultKey = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "open and make default"))

// Init checks every backend at once; each answer updates its own row.
func (m contextSelectorModel) Init() tea.Cmd {
	if m.check == nil {
		return nil
	}
	items := m.list.Items()
	cmds := make([]tea.Cmd, 0, len(items))
	for index, item := range items {
		ctxItem, ok := item.(contextItem)
		if !ok {
			continue
		}
		index, apiURL, check := index, ctxItem.ctx.APIURL, m.check
		cmds = append(cmds, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
			defer cancel()
			return contextCheckedMsg{index: index, health: check(ctx, apiURL)}
		})
	}
	return tea.Batch(cmds...)
}

func (m contextSelectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		height := msg.Height - 2
		if height < 4 {
			height = 4
		}
		m.list.SetSize(msg.Width, height)
	case contextCheckedMsg:
		items := m.list.Items()
		if msg.index < 0 || msg.index >= len(items) {
			return m, nil
		}
		item, ok := items[msg.index].(contextItem)
		if !ok {
			return m, nil
		}
		health := msg.health
		item.health = &health
		return m, m.list.SetItem(msg.index, item)
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "esc", "q", "ctrl+c":
			m.err = errSelectionCanceled
			return m, tea.Quit
		case "enter", "d":
			if item, ok := m.list.SelectedItem().(contextItem); ok {
				choice := item.ctx
				m.choice = &choice
				m.makeDefault = msg.String() == "d"
				return m, tea.Quit
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m contextSelectorModel) View() string {
	return m.list.View()
}

// selectContextTUI runs the picker. The bool reports whether the choice
// should also become the default context.
func selectContextTUI(contexts []config.Context, check checkBackend) (config.Context, bool, error) {
	program := tea.NewProgram(newContextSelectorModel(contexts, check), tea.WithAltScreen())
	result, err := program.Run()
	if err != nil {
		return config.Context{}, false, err
	}

	final, ok := result.(contextSelectorModel)
	if !ok {
		return config.Context{}, false, errors.New("context selection failed")
	}
	if final.choice == nil {
		if final.err != nil {
			return config.Context{}, false, final.err
		}
		return config.Context{}, false, errSelectionCanceled
	}
	return *final.choice, final.makeDefault, nil
}
