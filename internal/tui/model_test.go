package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/scottbass3/reglite/internal/api"
	"github.com/scottbass3/reglite/internal/api/apitest"
	"github.com/scottbass3/reglite/internal/browser"
	"github.com/scottbass3/reglite/internal/navigation"
	"github.com/scottbass3/reglite/internal/prefs"
	"github.com/scottbass3/reglite/internal/status"
)

const (
	digestV1 = "sha256:1111111111111111111111111111111111111111111111111111111111111111"
	digestV2 = "sha256:2222222222222222222222222222222222222222222222222222222222222222"
)

type instantClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *instantClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *instantClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return nil
}

func newBackend() *apitest.Backend {
	backend := apitest.NewBackend()
	backend.SetStatuses([]api.RegistryEntry{
		{Name: "a", URL: "https://a.example.com", Status: api.StatusOnline},
		{Name: "b", URL: "https://b.example.com", Status: api.StatusOffline},
	})
	backend.SetRepositories("a", "app", "db")
	backend.SetTags("a", "app", "v1", "v2")
	backend.SetTags("a", "db")
	backend.SetInfo("a", api.RepositoryInfo{Name: "app", TagsCount: 2, Tags: []string{"v1", "v2"}})
	backend.SetInfo("a", api.RepositoryInfo{Name: "db"})
	backend.SetManifest("a", "app", "v1", api.Manifest{Digest: digestV1, MediaType: "application/vnd.oci.image.manifest.v1+json", SchemaVersion: 2, Size: 1024})
	backend.SetManifest("a", "app", "v2", api.Manifest{Digest: digestV2, MediaType: "application/vnd.oci.image.manifest.v1+json", SchemaVersion: 2, Size: 2048})
	return backend
}

func engineOptions() browser.Options {
	return browser.Options{
		Poller: []status.Option{status.WithClock(&instantClock{now: time.Unix(0, 0)})},
	}
}

// newTestModel starts a Model against backend and runs it until every
// request it fired has been answered.
func newTestModel(t *testing.T, backend *apitest.Backend, opts Options) Model {
	t.Helper()

	origTimer := noticeTimer
	noticeTimer = func(int) tea.Cmd { return nil }
	t.Cleanup(func() {
		noticeTimer = origTimer
		applyTheme(prefs.ThemeDark)
	})

	gw, err := api.New(backend.Start(t))
	if err != nil {
		t.Fatalf("api.New() error = %v", err)
	}
	if opts.Engine.Poller == nil {
		opts.Engine = engineOptions()
	}
	m := NewModel(gw, opts)
	t.Cleanup(func() { m.Close() })
	return drive(t, m, m.Init())
}

// drive runs cmd and every follow-up breadth first, the way the bubbletea
// runtime would, until nothing is left. Only engine messages are fed back.
func drive(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case browser.Msg:
			updated, follow := m.Update(msg)
			m = asModel(t, updated)
			queue = append(queue, follow)
		}
	}
	return m
}

func asModel(t *testing.T, model tea.Model) Model {
	t.Helper()
	m, ok := model.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", model)
	}
	return m
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "home":
		return tea.KeyMsg{Type: tea.KeyHome}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
}

// press sends a key and drives whatever the engine started.
func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, key := range keys {
		updated, cmd := m.Update(keyMsg(key))
		m = drive(t, asModel(t, updated), cmd)
	}
	return m
}

// typeText sends keys without running their commands. Focused text inputs
// answer with cursor blink timers that would only slow the test down.
func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		updated, _ := m.Update(keyMsg(string(r)))
		m = asModel(t, updated)
	}
	return m
}

func runCommandLine(t *testing.T, m Model, line string) Model {
	t.Helper()
	m = typeText(t, m, ":")
	m = typeText(t, m, line)
	return press(t, m, "enter")
}

func rowIDs(m Model) []string {
	ids := make([]string, 0, len(m.rows))
	for _, ref := range m.rows {
		if ref.kind == rowGroup {
			ids = append(ids, "#"+ref.status.String())
			continue
		}
		ids = append(ids, ref.id)
	}
	return ids
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func lastNoticeMessage(m Model) string {
	n, ok := m.screen.latestNotice()
	if !ok {
		return ""
	}
	return n.message
}

func TestInitGroupsRegistriesByStatus(t *testing.T) {
	m := newTestModel(t, newBackend(), Options{})

	if m.screen.loading {
		t.Fatalf("expected loading to be cleared once registries arrived")
	}
	want := []string{"#online", "a", "#offline"}
	if got := rowIDs(m); !equalStrings(got, want) {
		t.Fatalf("expected rows %v, got %v", want, got)
	}
	if got := lastNoticeMessage(m); got != "validation finished: 1 of 2 online" {
		t.Fatalf("unexpected notice %q", got)
	}
}

func TestToggleGroupPersistsCollapse(t *testing.T) {
	p := prefs.InMemory()
	m := newTestModel(t, newBackend(), Options{Prefs: p})

	m = press(t, m, "down", "down", " ")
	want := []string{"#online", "a", "#offline", "b"}
	if got := rowIDs(m); !equalStrings(got, want) {
		t.Fatalf("expected rows %v, got %v", want, got)
	}
	if p.Collapsed(api.StatusOffline) {
		t.Fatalf("expected offline group to be stored as expanded")
	}
	if m.table.Cursor() != 2 {
		t.Fatalf("expected cursor to stay on the offline header, got %d", m.table.Cursor())
	}

	m = press(t, m, "home", "enter")
	want = []string{"#online", "#offline", "b"}
	if got := rowIDs(m); !equalStrings(got, want) {
		t.Fatalf("expected rows %v after collapsing online, got %v", want, got)
	}
	if !p.Collapsed(api.StatusOnline) {
		t.Fatalf("expected online group to be stored as collapsed")
	}
}

func TestDrillDownToManifestAndCopy(t *testing.T) {
	var copied []string
	origClipboard := writeClipboard
	writeClipboard = func(value string) error {
		copied = append(copied, value)
		return nil
	}
	t.Cleanup(func() { writeClipboard = origClipboard })

	m := newTestModel(t, newBackend(), Options{})

	m = press(t, m, "down", "enter")
	if m.screen.state != navigation.AtRepositories("a") {
		t.Fatalf("expected repositories of a, got %+v", m.screen.state)
	}
	if got := rowIDs(m); !equalStrings(got, []string{"app", "db"}) {
		t.Fatalf("unexpected repositories %v", got)
	}
	if patch := m.screen.patches["app"]; patch.Info == nil || patch.Info.TagsCount != 2 {
		t.Fatalf("expected app to be enriched, got %+v", patch)
	}

	m = press(t, m, "enter")
	if m.screen.state != navigation.AtTags("a", "app") {
		t.Fatalf("expected tags of a/app, got %+v", m.screen.state)
	}
	if got := rowIDs(m); !equalStrings(got, []string{"v1", "v2"}) {
		t.Fatalf("unexpected tags %v", got)
	}

	m = press(t, m, "enter")
	if !m.isManifestActive() || m.screen.manifest.Manifest == nil {
		t.Fatalf("expected the manifest of v1 to be shown, got %+v", m.screen.manifest)
	}
	if m.screen.manifest.Manifest.Digest != digestV1 {
		t.Fatalf("unexpected digest %q", m.screen.manifest.Manifest.Digest)
	}
	if !strings.Contains(m.View(), "docker pull") {
		t.Fatalf("expected the manifest modal to show the pull command")
	}

	m = press(t, m, "c", "y")
	if len(copied) != 2 {
		t.Fatalf("expected two clipboard writes, got %v", copied)
	}
	if copied[0] != digestV1 {
		t.Fatalf("expected digest to be copied first, got %q", copied[0])
	}
	if copied[1] != m.screen.manifest.PullRef || !strings.HasSuffix(copied[1], "app:v1") {
		t.Fatalf("unexpected pull reference %q", copied[1])
	}
	if got := lastNoticeMessage(m); got != "copied "+copied[1] {
		t.Fatalf("unexpected notice %q", got)
	}

	m = press(t, m, "esc")
	if m.isManifestActive() {
		t.Fatalf("expected esc to close the manifest")
	}
	if m.screen.state.Level != navigation.Tags {
		t.Fatalf("closing the manifest should not leave the tag list")
	}
}

func TestDeleteAsksBeforeSending(t *testing.T) {
	backend := newBackend()
	m := newTestModel(t, backend, Options{})
	m = press(t, m, "down", "enter", "enter", "enter")

	m = press(t, m, "d")
	if m.confirmAction != confirmActionDelete {
		t.Fatalf("expected a delete confirmation")
	}
	if m.confirmTitle != "Delete app:v1?" {
		t.Fatalf("unexpected confirm title %q", m.confirmTitle)
	}
	if len(backend.Deleted()) != 0 {
		t.Fatalf("nothing should be deleted before confirming")
	}

	m = press(t, m, "n")
	if m.confirmAction != confirmActionNone || len(backend.Deleted()) != 0 {
		t.Fatalf("declining must not delete anything")
	}

	m = press(t, m, "d", "y")
	if got := backend.Deleted(); len(got) != 1 || !strings.HasSuffix(got[0], "@"+digestV1) {
		t.Fatalf("expected v1's digest to be deleted, got %q", got)
	}
	if got := lastNoticeMessage(m); got != "deleted app:v1" {
		t.Fatalf("unexpected notice %q", got)
	}
	if got := rowIDs(m); !equalStrings(got, []string{"v2"}) {
		t.Fatalf("expected the tag list to reload, got %v", got)
	}
	if m.isManifestActive() {
		t.Fatalf("expected the manifest to close after the reload")
	}
}

func TestDeleteWithoutDigestIsRefused(t *testing.T) {
	backend := newBackend()
	backend.SetTags("a", "app", "bare")
	backend.SetManifest("a", "app", "bare", api.Manifest{MediaType: "application/vnd.oci.image.manifest.v1+json"})

	m := newTestModel(t, backend, Options{})
	m = press(t, m, "down", "enter", "enter", "enter", "d")

	if m.confirmAction != confirmActionNone {
		t.Fatalf("expected no confirmation for a manifest without digest")
	}
	n, ok := m.screen.latestNotice()
	if !ok || n.level != browser.NoticeError || !strings.Contains(n.message, "no digest") {
		t.Fatalf("expected an error notice about the digest, got %+v", n)
	}
	if calls := backend.Calls("DELETE /manifest"); calls != 0 {
		t.Fatalf("expected no delete request, got %d", calls)
	}
}

func TestFilterIsKeptPerLevel(t *testing.T) {
	m := newTestModel(t, newBackend(), Options{})
	m = press(t, m, "down", "enter")

	m = typeText(t, m, "/")
	if !m.filterActive {
		t.Fatalf("expected / to start filter editing")
	}
	m = typeText(t, m, "AP")
	if m.searchCount != "1 of 2" {
		t.Fatalf("expected 1 of 2 matches, got %q", m.searchCount)
	}
	if got := rowIDs(m); !equalStrings(got, []string{"app"}) {
		t.Fatalf("unexpected filtered rows %v", got)
	}

	m = press(t, m, "enter")
	if m.filterActive {
		t.Fatalf("expected enter to stop filter editing")
	}
	m = press(t, m, "enter")
	if m.screen.state != navigation.AtTags("a", "app") {
		t.Fatalf("expected tags of a/app, got %+v", m.screen.state)
	}
	if m.filterInput.Value() != "" || m.searchCount != "" {
		t.Fatalf("expected the tag level to start unfiltered, got %q", m.filterInput.Value())
	}

	m = press(t, m, "esc")
	if m.screen.state != navigation.AtRepositories("a") {
		t.Fatalf("expected esc to go up, got %+v", m.screen.state)
	}
	if m.filterInput.Value() != "AP" || m.searchCount != "1 of 2" {
		t.Fatalf("expected the repository filter to come back, got %q (%q)", m.filterInput.Value(), m.searchCount)
	}

	m = press(t, m, "esc")
	if m.filterInput.Value() != "" || m.screen.state.Level != navigation.Repositories {
		t.Fatalf("expected esc to clear the filter before going up")
	}
}

func TestRetryAfterFailedLoad(t *testing.T) {
	backend := newBackend()
	backend.Fail("/repositories", 500, "registry exploded")

	m := newTestModel(t, backend, Options{})
	m = press(t, m, "down", "enter")
	if !strings.Contains(m.screen.err, "registry exploded") {
		t.Fatalf("expected the backend error on screen, got %q", m.screen.err)
	}
	if !strings.Contains(m.renderBody(), "Press r to retry.") {
		t.Fatalf("expected a retry hint")
	}

	backend.Heal("/repositories")
	m = press(t, m, "r")
	if m.screen.err != "" {
		t.Fatalf("expected the error to clear, got %q", m.screen.err)
	}
	if got := rowIDs(m); !equalStrings(got, []string{"app", "db"}) {
		t.Fatalf("unexpected repositories after retry %v", got)
	}
	if m.engine.CanForward() {
		t.Fatalf("retry must not touch history")
	}
}

func TestOfflineRegistryCannotBeOpened(t *testing.T) {
	m := newTestModel(t, newBackend(), Options{})
	m = runCommandLine(t, m, "open ?registry=b")

	if m.screen.state.Level != navigation.Welcome {
		t.Fatalf("expected to stay on the registry list, got %+v", m.screen.state)
	}
	if got := lastNoticeMessage(m); !strings.Contains(got, "offline") {
		t.Fatalf("expected an offline notice, got %q", got)
	}
}

func TestLocationFlagWaitsForStatuses(t *testing.T) {
	backend := newBackend()
	m := newTestModel(t, backend, Options{Location: "?registry=b"})

	if m.screen.state.Level != navigation.Welcome {
		t.Fatalf("expected an offline deep link to stay on the registry list, got %+v", m.screen.state)
	}
	if calls := backend.Calls("GET /repositories"); calls != 0 {
		t.Fatalf("expected no repository fetch, got %d", calls)
	}

	backend = newBackend()
	m = newTestModel(t, backend, Options{Location: "?registry=a&repository=app"})
	if want := navigation.AtTags("a", "app"); m.screen.state != want {
		t.Fatalf("expected deep link to open %+v, got %+v", want, m.screen.state)
	}
	if got := rowIDs(m); !equalStrings(got, []string{"v1", "v2"}) {
		t.Fatalf("unexpected tags %v", got)
	}
}

func TestCommands(t *testing.T) {
	m := newTestModel(t, newBackend(), Options{})

	m = runCommandLine(t, m, "bogus")
	if got := lastNoticeMessage(m); got != "unknown command: bogus" {
		t.Fatalf("unexpected notice %q", got)
	}
	if m.commandActive {
		t.Fatalf("expected command mode to end after running")
	}

	m = runCommandLine(t, m, "open ?registry=a&repository=app")
	if m.screen.state != navigation.AtTags("a", "app") {
		t.Fatalf("expected open to jump to tags, got %+v", m.screen.state)
	}
	if got := m.engine.Location(); got != navigation.AtTags("a", "app").Location() {
		t.Fatalf("unexpected location %q", got)
	}

	m = runCommandLine(t, m, "home")
	if m.screen.state.Level != navigation.Welcome {
		t.Fatalf("expected home to go to the registry list")
	}

	m = runCommandLine(t, m, "help")
	if !m.helpActive {
		t.Fatalf("expected help to open")
	}
	if !strings.Contains(m.renderHelpSectionBody(), ":open <location>") {
		t.Fatalf("expected commands in the help page")
	}
	m = press(t, m, "esc")
	if m.helpActive {
		t.Fatalf("expected esc to close help")
	}
}

func TestHelpShowsSession(t *testing.T) {
	m := newTestModel(t, newBackend(), Options{
		Context: ContextOption{Name: "local", APIURL: "http://localhost:8080"},
	})
	m = runCommandLine(t, m, "open ?registry=a")

	body := m.renderHelpSectionBody()
	for _, want := range []string{"local (http://localhost:8080)", "?registry=a", "history", "back", "refused until a validation", ":open <location>"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected help to mention %q, got:\n%s", want, body)
		}
	}
}

func TestThemeTogglePersists(t *testing.T) {
	p := prefs.InMemory()
	m := newTestModel(t, newBackend(), Options{Prefs: p})

	m = press(t, m, "t")
	if m.theme != prefs.ThemeLight || p.Theme() != prefs.ThemeLight {
		t.Fatalf("expected light theme, got %q (stored %q)", m.theme, p.Theme())
	}

	m = runCommandLine(t, m, "theme dark")
	if m.theme != prefs.ThemeDark || p.Theme() != prefs.ThemeDark {
		t.Fatalf("expected dark theme, got %q (stored %q)", m.theme, p.Theme())
	}

	m = runCommandLine(t, m, "theme neon")
	if got := lastNoticeMessage(m); got != "unknown theme: neon" {
		t.Fatalf("unexpected notice %q", got)
	}
}

func TestContextSwitch(t *testing.T) {
	first := newBackend()
	second := apitest.NewBackend()
	second.SetStatuses([]api.RegistryEntry{{Name: "z", URL: "https://z.example.com", Status: api.StatusOnline}})

	firstURL := first.Start(t)
	secondURL := second.Start(t)
	contexts := []ContextOption{
		{Name: "one", APIURL: firstURL},
		{Name: "two", APIURL: secondURL},
	}
	connect := func(ctx ContextOption) (browser.Gateway, error) {
		return api.New(ctx.APIURL)
	}

	origTimer := noticeTimer
	noticeTimer = func(int) tea.Cmd { return nil }
	t.Cleanup(func() { noticeTimer = origTimer })

	gw, err := api.New(firstURL)
	if err != nil {
		t.Fatalf("api.New() error = %v", err)
	}
	m := NewModel(gw, Options{Context: contexts[0], Contexts: contexts, Connect: connect, Engine: engineOptions()})
	m = drive(t, m, m.Init())
	m = press(t, m, "down", "enter")
	if m.screen.state.Registry != "a" {
		t.Fatalf("expected to be inside registry a")
	}

	m = runCommandLine(t, m, "ctx two")
	t.Cleanup(func() { m.Close() })
	if m.context.Name != "two" {
		t.Fatalf("expected context two, got %q", m.context.Name)
	}
	if m.screen.state.Level != navigation.Welcome {
		t.Fatalf("expected a fresh session on the registry list, got %+v", m.screen.state)
	}
	if got := rowIDs(m); !equalStrings(got, []string{"#online", "z"}) {
		t.Fatalf("expected registries of the second backend, got %v", got)
	}

	m = runCommandLine(t, m, "context nowhere")
	if got := lastNoticeMessage(m); got != "unknown context: nowhere" {
		t.Fatalf("unexpected notice %q", got)
	}
	if m.context.Name != "two" {
		t.Fatalf("a failed switch must keep the current context")
	}
}

func TestQuitAsksForConfirmation(t *testing.T) {
	m := newTestModel(t, newBackend(), Options{})

	updated, cmd := m.Update(keyMsg("q"))
	m = asModel(t, updated)
	if cmd != nil {
		t.Fatalf("expected no command before confirming")
	}
	if m.confirmAction != confirmActionQuit {
		t.Fatalf("expected a quit confirmation")
	}

	updated, cmd = m.Update(keyMsg("y"))
	m = asModel(t, updated)
	if cmd == nil {
		t.Fatalf("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestLogsAreCappedAndShown(t *testing.T) {
	m := newTestModel(t, newBackend(), Options{Debug: true})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 160, Height: 60})
	m = asModel(t, updated)

	for i := 0; i < maxLogLines+5; i++ {
		updated, _ := m.Update(requestLogMsg{
			ID:      fmt.Sprintf("%08d-aaaa", i),
			Method:  "GET",
			URL:     "http://localhost:8080/api/v1/registries",
			Status:  200,
			Elapsed: 12 * time.Millisecond,
		})
		m = asModel(t, updated)
	}
	updated, _ = m.Update(requestLogMsg{
		ID:     "deadbeef-0000",
		Method: "GET",
		URL:    "http://localhost:8080/api/v1/tags?registry=a&repository=team%2Fapp",
		Err:    "connection refused",
	})
	m = asModel(t, updated)

	if len(m.logs) != maxLogLines {
		t.Fatalf("expected %d log lines, got %d", maxLogLines, len(m.logs))
	}
	view := m.View()
	for _, want := range []string{"Requests", "1 failed", "ERR", "/tags?registry=a&repository=team/app", "[deadbeef]", "200", "12ms"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected the request pane to show %q", want)
		}
	}
}

func TestRequestPath(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "http://localhost:8080/api/v1/registries/status", want: "/registries/status"},
		{raw: "https://reglite.example.com/api/v1/manifest?digest=sha256%3Aab", want: "/manifest?digest=sha256:ab"},
		{raw: "http://localhost:8080", want: "/"},
	}
	for _, tt := range tests {
		if got := requestPath(tt.raw); got != tt.want {
			t.Fatalf("requestPath(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
