package tui

import (
	"time"

	"github.com/scottbass3/reglite/internal/api"
	"github.com/scottbass3/reglite/internal/browser"
	"github.com/scottbass3/reglite/internal/navigation"
)

const (
	noticeTTL  = 5 * time.Second
	maxNotices = 3
)

type notice struct {
	id        int
	level     browser.NoticeLevel
	message   string
	scheduled bool
}

// screen is what the engine draws into. The Model keeps a pointer so the
// engine and every copy of the Model see the same state.
type screen struct {
	state navigation.State

	loading bool
	err     string
	items   []string
	patches map[string]browser.ItemPatch

	registries []api.RegistryEntry
	manifest   *browser.ManifestView

	filters map[navigation.Level]string

	notices    []notice
	nextNotice int
}

var _ browser.Sink = (*screen)(nil)

func newScreen() *screen {
	return &screen{
		state:   navigation.AtWelcome(),
		patches: map[string]browser.ItemPatch{},
		filters: map[navigation.Level]string{},
	}
}

func (s *screen) Enter(state navigation.State) {
	s.state = state
	s.loading = false
	s.err = ""
	s.items = nil
	s.patches = map[string]browser.ItemPatch{}
}

func (s *screen) ClearSearch(levels ...navigation.Level) {
	for _, level := range levels {
		delete(s.filters, level)
	}
}

func (s *screen) ShowLoading(state navigation.State) {
	if state != s.state {
		return
	}
	s.loading = true
	s.err = ""
}

func (s *screen) Show(state navigation.State, items []string) {
	if state != s.state {
		return
	}
	s.loading = false
	s.err = ""
	s.items = append([]string(nil), items...)
	s.patches = make(map[string]browser.ItemPatch, len(items))
}

func (s *screen) ShowError(state navigation.State, message string) {
	if state != s.state {
		return
	}
	s.loading = false
	s.items = nil
	s.err = message
}

// UpdateItem merges patch into what is known about id. Info and Manifest
// stick once set; Loading and Err describe the latest attempt.
func (s *screen) UpdateItem(state navigation.State, id string, patch browser.ItemPatch) {
	if state != s.state {
		return
	}
	prev := s.patches[id]
	if patch.Info == nil {
		patch.Info = prev.Info
		patch.ManyTags = prev.ManyTags
	}
	if patch.Manifest == nil {
		patch.Manifest = prev.Manifest
	}
	s.patches[id] = patch
}

func (s *screen) ShowRegistries(entries []api.RegistryEntry) {
	s.registries = append([]api.RegistryEntry(nil), entries...)
	if s.state.Level == navigation.Welcome {
		s.loading = false
		s.err = ""
	}
}

func (s *screen) ShowManifest(view browser.ManifestView) {
	s.manifest = &view
}

func (s *screen) HideManifest() {
	s.manifest = nil
}

func (s *screen) Notify(level browser.NoticeLevel, message string) {
	s.nextNotice++
	s.notices = append(s.notices, notice{id: s.nextNotice, level: level, message: message})
	if len(s.notices) > maxNotices {
		s.notices = s.notices[len(s.notices)-maxNotices:]
	}
}

func (s *screen) filter() string {
	return s.filters[s.state.Level]
}

func (s *screen) setFilter(value string) {
	if value == "" {
		delete(s.filters, s.state.Level)
		return
	}
	s.filters[s.state.Level] = value
}

// unscheduled marks fresh notices as scheduled and returns their ids.
func (s *screen) unscheduled() []int {
	var ids []int
	for i := range s.notices {
		if s.notices[i].scheduled {
			continue
		}
		s.notices[i].scheduled = true
		ids = append(ids, s.notices[i].id)
	}
	return ids
}

func (s *screen) expire(id int) {
	for i, n := range s.notices {
		if n.id == id {
			s.notices = append(s.notices[:i], s.notices[i+1:]...)
			return
		}
	}
}

func (s *screen) latestNotice() (notice, bool) {
	if len(s.notices) == 0 {
		return notice{}, false
	}
	return s.notices[len(s.notices)-1], true
}
