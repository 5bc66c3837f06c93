// Package tui is the terminal front end of reglite. It renders what the
// browser engine reports and turns key presses into engine calls.
package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/scottbass3/reglite/internal/api"
	"github.com/scottbass3/reglite/internal/browser"
	"github.com/scottbass3/reglite/internal/prefs"
)

type confirmAction int

const (
	confirmActionNone confirmAction = iota
	confirmActionQuit
	confirmActionDelete
)

const (
	defaultTableHeight      = 10
	minTableHeight          = 1
	maxLogLines             = 25
	maxVisibleLogs          = 5
	maxFilterWidth          = 40
	tableChromeLines        = 2
	mainSectionTitleLines   = 1
	mainSectionBorderLines  = 2
	mainSectionHChromeChars = 4
	defaultRenderWidth      = 80
)

// ContextOption is a named backend the user can switch to with :context.
type ContextOption struct {
	Name   string
	APIURL string
}

// Connector builds a gateway for a context.
type Connector func(ContextOption) (browser.Gateway, error)

type Options struct {
	Context  ContextOption
	Contexts []ContextOption
	Connect  Connector
	Engine   browser.Options
	Prefs    *prefs.Prefs
	// Location is opened once registries are loaded.
	Location string
	Debug    bool
	Logs     <-chan api.RequestLog
}

type confirmState struct {
	confirmAction  confirmAction
	confirmTitle   string
	confirmMessage string
	confirmFocus   int
}

type commandState struct {
	commandActive  bool
	commandInput   textinput.Model
	commandMatches []string
	commandIndex   int
}

type Model struct {
	width  int
	height int

	context ContextOption

	engine     *browser.Engine
	screen     *screen
	engineOpts browser.Options
	connect    Connector
	contexts   []ContextOption
	location   string

	prefs *prefs.Prefs
	theme string

	confirmState
	commandState
	helpActive bool

	filterActive bool
	filterInput  textinput.Model

	table        table.Model
	tableColumns []table.Column
	rows         []rowRef
	searchCount  string

	spinner  spinner.Model
	spinning bool

	debug  bool
	logCh  <-chan api.RequestLog
	logs   []api.RequestLog
	logMax int
}

type noticeExpiredMsg struct {
	id int
}

// noticeTimer schedules a notice's expiry. Tests replace it.
var noticeTimer = func(id int) tea.Cmd {
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return noticeExpiredMsg{id: id}
	})
}

func NewModel(gw browser.Gateway, opts Options) Model {
	filter := textinput.New()
	filter.Prompt = "/ "
	filter.Placeholder = "filter"
	filter.CharLimit = 64
	filter.Blur()

	commandInput := textinput.New()
	commandInput.Prompt = ":"
	commandInput.Placeholder = "context <name> | open <location> | validate"
	commandInput.CharLimit = 128
	commandInput.Blur()

	tbl := table.New()
	tbl.SetStyles(tableStyles())
	tbl.SetHeight(defaultTableHeight)
	tbl.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = statusLoadingStyle

	p := opts.Prefs
	if p == nil {
		p = prefs.InMemory()
	}
	theme := p.Theme()
	applyTheme(theme)

	contexts := opts.Contexts
	if len(contexts) == 0 && opts.Context.APIURL != "" {
		contexts = []ContextOption{opts.Context}
	}

	scr := newScreen()
	m := Model{
		context:      opts.Context,
		screen:       scr,
		engine:       browser.New(gw, scr, opts.Engine),
		engineOpts:   opts.Engine,
		connect:      opts.Connect,
		contexts:     contexts,
		location:     strings.TrimSpace(opts.Location),
		prefs:        p,
		theme:        theme,
		commandState: commandState{commandInput: commandInput},
		filterInput:  filter,
		table:        tbl,
		spinner:      spin,
		debug:        opts.Debug,
		logCh:        opts.Logs,
		logMax:       maxLogLines,
	}
	m.syncTable()
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.engine.Start()}
	if m.location != "" {
		cmds = append(cmds, m.engine.Open(m.location))
	}
	if m.logCh != nil {
		cmds = append(cmds, listenRequests(m.logCh))
	}
	_, cmd := m.afterEngine(tea.Batch(cmds...))
	return cmd
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKeyMsg(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.syncTable()
		return m, nil
	case browser.Msg:
		return m.afterEngine(m.engine.Handle(msg))
	case noticeExpiredMsg:
		m.screen.expire(msg.id)
		m.syncTable()
		return m, nil
	case spinner.TickMsg:
		if !m.screen.loading && !m.isManifestLoading() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinning = true
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case requestLogMsg:
		m.appendRequest(api.RequestLog(msg))
		m.syncTable()
		if m.logCh != nil {
			return m, listenRequests(m.logCh)
		}
	}
	return m, nil
}

func (m Model) View() string {
	base := m.renderApp()
	if m.isConfirmModalActive() {
		return m.renderModal(base, m.renderConfirmModal())
	}
	if m.isManifestActive() {
		return m.renderModal(base, m.renderManifestModal())
	}
	return base
}

// afterEngine folds what the engine just drew into the Model: the filter
// of the level now on screen, new notices and the table.
func (m Model) afterEngine(cmd tea.Cmd) (Model, tea.Cmd) {
	cmds := []tea.Cmd{cmd}

	if value := m.screen.filter(); m.filterInput.Value() != value {
		m.filterInput.SetValue(value)
		m.filterInput.CursorEnd()
		m.table.SetCursor(0)
	}
	for _, id := range m.screen.unscheduled() {
		cmds = append(cmds, noticeTimer(id))
	}
	if (m.screen.loading || m.isManifestLoading()) && !m.spinning {
		m.spinning = true
		cmds = append(cmds, m.spinner.Tick)
	}
	m.syncTable()
	return m, tea.Batch(cmds...)
}

// Close stops the engine's background work.
func (m Model) Close() {
	m.engine.Close()
}
