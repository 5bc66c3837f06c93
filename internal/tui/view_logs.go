package tui

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/scottbass3/reglite/internal/api"
	"github.com/scottbass3/reglite/internal/browser"
)

type requestLogMsg api.RequestLog

func listenRequests(ch <-chan api.RequestLog) tea.Cmd {
	return func() tea.Msg {
		entry, ok := <-ch
		if !ok {
			return nil
		}
		return requestLogMsg(entry)
	}
}

func (m *Model) appendRequest(entry api.RequestLog) {
	if entry.Method == "" {
		return
	}
	m.logs = append(m.logs, entry)
	if m.logMax > 0 && len(m.logs) > m.logMax {
		m.logs = m.logs[len(m.logs)-m.logMax:]
	}
}

// renderLogs draws the newest requests, one per line:
// status, method, backend path, elapsed time and short request ID.
func (m Model) renderLogs() string {
	panelWidth := sectionPanelWidth(m.width)
	contentWidth := maxInt(10, panelWidth-6)

	lines := []string{m.renderLogTitle()}
	visible := m.visibleLogs()
	if len(visible) == 0 {
		lines = append(lines, emptyStyle.Render("(no requests yet)"))
	}
	for _, entry := range visible {
		lines = append(lines, renderRequestLine(entry, contentWidth))
	}
	for len(lines) < maxVisibleLogs+1 {
		lines = append(lines, "")
	}
	return logBoxStyle.Width(panelWidth).Render(strings.Join(lines, "\n"))
}

func (m Model) renderLogTitle() string {
	failed := 0
	for _, entry := range m.logs {
		if entry.Failed() {
			failed++
		}
	}
	title := logTitleStyle.Render("Requests")
	if len(m.logs) == 0 {
		return title
	}
	summary := fmt.Sprintf("%d recent", len(m.logs))
	if failed > 0 {
		summary += ", " + noticeStyle(browser.NoticeError).Render(fmt.Sprintf("%d failed", failed))
	}
	return title + "  " + shortcutHintStyle.Render(summary)
}

func (m Model) visibleLogs() []api.RequestLog {
	if len(m.logs) == 0 {
		return nil
	}
	count := minInt(len(m.logs), maxVisibleLogs)
	return m.logs[len(m.logs)-count:]
}

func renderRequestLine(entry api.RequestLog, width int) string {
	code := requestStatusText(entry)
	rest := fmt.Sprintf("%-6s %s  %s  [%s]", entry.Method, requestPath(entry.URL), formatElapsed(entry.Elapsed), shortRequestID(entry.ID))
	if entry.Err != "" {
		rest += "  " + entry.Err
	}
	return requestStatusStyle(entry).Render(code) + " " + truncateLogLine(rest, width-len(code)-1)
}

func requestStatusText(entry api.RequestLog) string {
	if entry.Status == 0 {
		return "ERR"
	}
	return fmt.Sprintf("%3d", entry.Status)
}

func requestStatusStyle(entry api.RequestLog) lipgloss.Style {
	switch {
	case entry.Status == 0 || entry.Status >= 500:
		return noticeStyle(browser.NoticeError)
	case entry.Status >= 300:
		return noticeStyle(browser.NoticeWarning)
	default:
		return noticeStyle(browser.NoticeSuccess)
	}
}

// requestPath drops the scheme, host and API prefix so the line shows what
// was asked for.
func requestPath(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	path := strings.TrimPrefix(parsed.Path, "/api/v1")
	if path == "" {
		path = "/"
	}
	if parsed.RawQuery != "" {
		if query, err := url.QueryUnescape(parsed.RawQuery); err == nil {
			return path + "?" + query
		}
		return path + "?" + parsed.RawQuery
	}
	return path
}

func formatElapsed(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func shortRequestID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	if id == "" {
		return "-"
	}
	return id
}
