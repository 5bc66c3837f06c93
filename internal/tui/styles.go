package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/scottbass3/reglite/internal/api"
	"github.com/scottbass3/reglite/internal/browser"
	"github.com/scottbass3/reglite/internal/prefs"
)

type palette struct {
	primary   string
	muted     string
	accent    string
	selected  string
	border    string
	titleText string
	surface   string
	success   string
	warning   string
	danger    string
	text      string
}

var darkPalette = palette{
	primary:   "62",
	muted:     "241",
	accent:    "204",
	selected:  "229",
	border:    "238",
	titleText: "252",
	surface:   "236",
	success:   "42",
	warning:   "214",
	danger:    "203",
	text:      "252",
}

var lightPalette = palette{
	primary:   "25",
	muted:     "245",
	accent:    "161",
	selected:  "231",
	border:    "250",
	titleText: "235",
	surface:   "254",
	success:   "28",
	warning:   "130",
	danger:    "160",
	text:      "235",
}

var (
	colorPrimary   lipgloss.Color
	colorMuted     lipgloss.Color
	colorAccent    lipgloss.Color
	colorSelected  lipgloss.Color
	colorBorder    lipgloss.Color
	colorTitleText lipgloss.Color
	colorSurface2  lipgloss.Color
)

var (
	titleStyle            lipgloss.Style
	statusStyle           lipgloss.Style
	statusLoadingStyle    lipgloss.Style
	metaLabelStyle        lipgloss.Style
	metaValueStyle        lipgloss.Style
	modeInputStyle        lipgloss.Style
	shortcutHintStyle     lipgloss.Style
	topSectionStyle       lipgloss.Style
	mainSectionStyle      lipgloss.Style
	mainSectionTitleStyle lipgloss.Style
	mainSectionTitleLine  lipgloss.Style
	searchCountStyle      lipgloss.Style
	emptyStyle            lipgloss.Style
	errorBodyStyle        lipgloss.Style
	groupHeaderStyle      lipgloss.Style
	logTitleStyle         lipgloss.Style
	logBoxStyle           lipgloss.Style
	helpHeadingStyle      lipgloss.Style
	helpItemStyle         lipgloss.Style
	helpFooterStyle       lipgloss.Style

	noticeStyles map[browser.NoticeLevel]lipgloss.Style
	statusStyles map[api.Status]lipgloss.Style

	modalBackdropStyle     lipgloss.Style
	modalPanelStyle        lipgloss.Style
	modalTitleStyle        lipgloss.Style
	modalLabelStyle        lipgloss.Style
	modalValueStyle        lipgloss.Style
	modalErrorStyle        lipgloss.Style
	modalHelpStyle         lipgloss.Style
	modalDividerStyle      lipgloss.Style
	modalButtonStyle       lipgloss.Style
	modalButtonFocusStyle  lipgloss.Style
	modalDangerButtonStyle lipgloss.Style
	modalDangerFocusStyle  lipgloss.Style
)

func init() {
	applyTheme(prefs.ThemeDark)
}

// applyTheme rebuilds every style from the named palette.
func applyTheme(theme string) {
	p := darkPalette
	if theme == prefs.ThemeLight {
		p = lightPalette
	}

	colorPrimary = lipgloss.Color(p.primary)
	colorMuted = lipgloss.Color(p.muted)
	colorAccent = lipgloss.Color(p.accent)
	colorSelected = lipgloss.Color(p.selected)
	colorBorder = lipgloss.Color(p.border)
	colorTitleText = lipgloss.Color(p.titleText)
	colorSurface2 = lipgloss.Color(p.surface)

	titleStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true).MarginRight(2)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(p.text))
	statusLoadingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(p.warning))
	metaLabelStyle = lipgloss.NewStyle().Foreground(colorMuted).MarginRight(1)
	metaValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(p.text)).MarginRight(3)
	modeInputStyle = lipgloss.NewStyle().Foreground(colorAccent)
	shortcutHintStyle = lipgloss.NewStyle().Foreground(colorMuted)
	topSectionStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)
	mainSectionStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorPrimary).
		Padding(0, 1)
	mainSectionTitleStyle = lipgloss.NewStyle().Foreground(colorTitleText).Bold(true)
	mainSectionTitleLine = lipgloss.NewStyle()
	searchCountStyle = lipgloss.NewStyle().Foreground(colorAccent)
	emptyStyle = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)
	errorBodyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(p.danger))
	groupHeaderStyle = lipgloss.NewStyle().Bold(true)
	logTitleStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	logBoxStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)
	helpHeadingStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	helpItemStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(p.text))
	helpFooterStyle = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)

	noticeStyles = map[browser.NoticeLevel]lipgloss.Style{
		browser.NoticeInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color(p.text)),
		browser.NoticeSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color(p.success)),
		browser.NoticeWarning: lipgloss.NewStyle().Foreground(lipgloss.Color(p.warning)),
		browser.NoticeError:   lipgloss.NewStyle().Foreground(lipgloss.Color(p.danger)).Bold(true),
	}
	statusStyles = map[api.Status]lipgloss.Style{
		api.StatusOnline:   lipgloss.NewStyle().Foreground(lipgloss.Color(p.success)),
		api.StatusChecking: lipgloss.NewStyle().Foreground(lipgloss.Color(p.warning)),
		api.StatusOffline:  lipgloss.NewStyle().Foreground(lipgloss.Color(p.danger)),
	}

	modalBackdropStyle = lipgloss.NewStyle().Faint(true)
	modalPanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(p.primary)).
		Padding(1, 2)
	modalTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(p.primary)).Bold(true)
	modalLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(p.muted))
	modalValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(p.text))
	modalErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(p.danger))
	modalHelpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(p.muted)).Italic(true)
	modalDividerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(p.border))
	modalButtonStyle = lipgloss.NewStyle().
		Padding(0, 2).
		Foreground(lipgloss.Color(p.text)).
		Background(lipgloss.Color(p.surface))
	modalButtonFocusStyle = modalButtonStyle.
		Foreground(lipgloss.Color(p.selected)).
		Background(lipgloss.Color(p.primary)).
		Bold(true)
	modalDangerButtonStyle = modalButtonStyle.Foreground(lipgloss.Color(p.danger))
	modalDangerFocusStyle = modalButtonStyle.
		Foreground(lipgloss.Color(p.selected)).
		Background(lipgloss.Color(p.danger)).
		Bold(true)
}

func noticeStyle(level browser.NoticeLevel) lipgloss.Style {
	if style, ok := noticeStyles[level]; ok {
		return style
	}
	return statusStyle
}

func registryStatusStyle(s api.Status) lipgloss.Style {
	if style, ok := statusStyles[s]; ok {
		return style
	}
	return statusStyle
}
