package tui

import (
	"fmt"
	"strings"

	lipglossv2 "github.com/charmbracelet/lipgloss/v2"
)

func (m Model) renderConfirmModal() string {
	title := firstNonEmpty(m.confirmTitle, "Confirm action")
	confirmLabel := "Confirm"
	confirmButtonStyle := modalButtonStyle
	confirmButtonFocusStyle := modalButtonFocusStyle
	switch m.confirmAction {
	case confirmActionQuit:
		confirmLabel = "Quit"
		confirmButtonStyle = modalDangerButtonStyle
		confirmButtonFocusStyle = modalDangerFocusStyle
	case confirmActionDelete:
		confirmLabel = "Delete"
		confirmButtonStyle = modalDangerButtonStyle
		confirmButtonFocusStyle = modalDangerFocusStyle
	}

	cancel := modalButtonStyle.Render("Cancel")
	if m.confirmFocus == 0 {
		cancel = modalButtonFocusStyle.Render("Cancel")
	}
	confirm := confirmButtonStyle.Render(confirmLabel)
	if m.confirmFocus == 1 {
		confirm = confirmButtonFocusStyle.Render(confirmLabel)
	}
	buttonRow := lipglossv2.JoinHorizontal(
		lipglossv2.Top,
		lipglossv2.NewStyle().MarginRight(2).Render(cancel),
		confirm,
	)

	lines := []string{modalTitleStyle.Render(title)}
	if message := strings.TrimSpace(m.confirmMessage); message != "" {
		lines = append(lines, modalLabelStyle.Render(message))
	}
	lines = append(lines,
		"",
		buttonRow,
		"",
		modalHelpStyle.Render("tab/left/right move  enter choose  y/n quick select"),
	)
	return m.renderModalCard(strings.Join(lines, "\n"), 64)
}

func (m Model) renderManifestModal() string {
	view := m.screen.manifest
	lines := []string{
		modalTitleStyle.Render(fmt.Sprintf("%s:%s", view.Repository, view.Tag)),
		modalLabelStyle.Render("Registry  " + firstNonEmpty(view.Registry, "-")),
		modalDividerStyle.Render(strings.Repeat("─", 24)),
	}
	switch {
	case view.Loading:
		lines = append(lines, m.spinner.View()+" "+modalLabelStyle.Render("Fetching manifest..."))
	case view.Err != "":
		lines = append(lines, modalErrorStyle.Render(view.Err))
	case view.Manifest != nil:
		manifest := view.Manifest
		created := "-"
		if manifest.Created != nil {
			created = formatTime(*manifest.Created)
		}
		fields := [][2]string{
			{"Digest", firstNonEmpty(manifest.Digest, "-")},
			{"Media type", firstNonEmpty(manifest.MediaType, "-")},
			{"Kind", manifest.Kind()},
			{"Schema", fmt.Sprintf("%d", manifest.SchemaVersion)},
			{"Size", formatSize(manifest.Size)},
			{"Arch", firstNonEmpty(manifest.Architecture, "-")},
			{"Created", created},
		}
		for _, field := range fields {
			lines = append(lines, modalLabelStyle.Render(fmt.Sprintf("%-11s", field[0]))+modalValueStyle.Render(field[1]))
		}
	}
	lines = append(lines,
		"",
		modalLabelStyle.Render("Pull"),
		modalValueStyle.Render("docker pull "+view.PullRef),
		"",
		modalHelpStyle.Render("c copy digest  y copy ref  d delete  r reload  esc close"),
	)
	return m.renderModalCard(strings.Join(lines, "\n"), 96)
}

func (m Model) renderModal(base, modal string) string {
	width, height := m.modalViewport(base)
	background := lipglossv2.Place(width, height, lipglossv2.Left, lipglossv2.Top, modalBackdropStyle.Render(base))
	canvas := lipglossv2.NewCanvas(lipglossv2.NewLayer(background))
	canvas.AddLayers(
		lipglossv2.NewLayer(modal).
			X(maxInt(0, (width-lipglossv2.Width(modal))/2)).
			Y(maxInt(0, (height-lipglossv2.Height(modal))/2)).
			Z(1),
	)
	return canvas.Render()
}

func (m Model) renderModalCard(content string, maxWidth int) string {
	return modalPanelStyle.Width(m.modalWidth(maxWidth)).Render(content)
}

func (m Model) modalWidth(maxWidth int) int {
	width, _ := m.modalViewport("")
	if width <= 2 {
		return width
	}
	modalWidth := width - 8
	if modalWidth < 24 {
		modalWidth = width - 2
	}
	if maxWidth > 0 && modalWidth > maxWidth {
		modalWidth = maxWidth
	}
	if modalWidth < 12 {
		modalWidth = 12
	}
	return modalWidth
}

func (m Model) modalViewport(base string) (int, int) {
	width := m.width
	if width <= 0 {
		width = defaultRenderWidth
	}
	height := m.height
	if height <= 0 {
		height = maxInt(24, lineCount(base))
	}
	return width, height
}
