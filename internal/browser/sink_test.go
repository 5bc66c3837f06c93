package browser_test

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/scottbass3/reglite/internal/api"
	"github.com/scottbass3/reglite/internal/api/apitest"
	"github.com/scottbass3/reglite/internal/browser"
	"github.com/scottbass3/reglite/internal/navigation"
	"github.com/scottbass3/reglite/internal/status"
)

type notice struct {
	level   browser.NoticeLevel
	message string
}

type recordingSink struct {
	mu         sync.Mutex
	entered    []navigation.State
	cleared    [][]navigation.Level
	loading    []navigation.State
	shown      []string
	shownAt    navigation.State
	shows      int
	errors     []string
	items      map[string]browser.ItemPatch
	registries []api.RegistryEntry
	manifest   *browser.ManifestView
	notices    []notice
}

func newRecordingSink() *recordingSink {
	return &recordingSink{items: map[string]browser.ItemPatch{}}
}

func (s *recordingSink) Enter(state navigation.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entered = append(s.entered, state)
}

func (s *recordingSink) ClearSearch(levels ...navigation.Level) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleared = append(s.cleared, levels)
}

func (s *recordingSink) ShowLoading(state navigation.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = append(s.loading, state)
}

func (s *recordingSink) Show(state navigation.State, items []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shown = append([]string(nil), items...)
	s.shownAt = state
	s.shows++
	s.items = map[string]browser.ItemPatch{}
}

func (s *recordingSink) ShowError(_ navigation.State, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, message)
}

func (s *recordingSink) UpdateItem(_ navigation.State, id string, patch browser.ItemPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id] = patch
}

func (s *recordingSink) ShowRegistries(entries []api.RegistryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registries = entries
}

func (s *recordingSink) ShowManifest(view browser.ManifestView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manifest = &view
}

func (s *recordingSink) HideManifest() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manifest = nil
}

func (s *recordingSink) Notify(level browser.NoticeLevel, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, notice{level: level, message: message})
}

func (s *recordingSink) lastNotice() notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.notices) == 0 {
		return notice{}
	}
	return s.notices[len(s.notices)-1]
}

func (s *recordingSink) hasNotice(level browser.NoticeLevel) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notices {
		if n.level == level {
			return true
		}
	}
	return false
}

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

func newEngine(t *testing.T, backend *apitest.Backend, opts browser.Options) (*browser.Engine, *recordingSink) {
	t.Helper()
	gw, err := api.New(backend.Start(t))
	require.NoError(t, err)
	sink := newRecordingSink()
	opts.Poller = append(opts.Poller, status.WithClock(&instantClock{now: time.Unix(0, 0)}))
	engine := browser.New(gw, sink, opts)
	t.Cleanup(engine.Close)
	return engine, sink
}

// drive runs cmd and every follow-up the engine returns until nothing is
// left, the way a bubbletea program would.
func drive(e *browser.Engine, cmd tea.Cmd) {
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
			queue = append(queue, e.Handle(msg))
		}
	}
}

func online(names ...string) []api.RegistryEntry {
	out := make([]api.RegistryEntry, 0, len(names))
	for _, name := range names {
		out = append(out, api.RegistryEntry{Name: name, URL: "https://" + name + ".example.com", Status: api.StatusOnline})
	}
	return out
}
