package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/scottbass3/reglite/internal/browser"
)

var writeClipboard = clipboard.WriteAll

func (m *Model) copyDigest() bool {
	manifest, ok := m.engine.Manifest()
	if !ok || strings.TrimSpace(manifest.Digest) == "" {
		m.screen.Notify(browser.NoticeWarning, "no digest to copy")
		return false
	}
	return m.copyValue(manifest.Digest)
}

func (m *Model) copyPullReference() bool {
	if m.screen.manifest == nil || strings.TrimSpace(m.screen.manifest.PullRef) == "" {
		m.screen.Notify(browser.NoticeWarning, "no tag selected to copy")
		return false
	}
	return m.copyValue(m.screen.manifest.PullRef)
}

func (m *Model) copyValue(value string) bool {
	if err := writeClipboard(value); err != nil {
		m.screen.Notify(browser.NoticeError, fmt.Sprintf("failed to copy %s: %v", value, err))
		return false
	}
	m.screen.Notify(browser.NoticeSuccess, fmt.Sprintf("copied %s", value))
	return true
}
