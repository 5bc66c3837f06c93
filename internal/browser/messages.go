package browser

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/scottbass3/reglite/internal/api"
	"github.com/scottbass3/reglite/internal/cache"
	"github.com/scottbass3/reglite/internal/navigation"
	"github.com/scottbass3/reglite/internal/status"
)

// Msg carries an asynchronous result back to the engine that started it.
// Hand every Msg to Handle; messages from another engine are ignored.
type Msg struct {
	owner *Engine
	body  any
}

type registriesMsg struct {
	snap    status.Snapshot
	err     error
	initial bool
}

type pollSnapshotMsg struct {
	snap status.Snapshot
}

type pollDoneMsg struct {
	out status.Outcome
}

type repositoriesMsg struct {
	state navigation.State
	gen   uint64
	repos []string
	err   error
}

type tagsMsg struct {
	state navigation.State
	gen   uint64
	tags  []string
	err   error
}

type repoStatsMsg struct {
	state navigation.State
	gen   uint64
	repo  string
	entry cache.Entry
	err   error
}

type tagStatsMsg struct {
	state    navigation.State
	gen      uint64
	tag      string
	manifest api.Manifest
	err      error
}

type enrichDoneMsg struct {
	state   navigation.State
	gen     uint64
	batches int
}

type infoMsg struct {
	state navigation.State
	gen   uint64
	repo  string
	info  api.RepositoryInfo
	err   error
}

type manifestMsg struct {
	state    navigation.State
	gen      uint64
	tag      string
	manifest api.Manifest
	err      error
}

type deleteMsg struct {
	state  navigation.State
	tag    string
	digest string
	err    error
}

func (e *Engine) cmd(fn func() any) tea.Cmd {
	return func() tea.Msg {
		return Msg{owner: e, body: fn()}
	}
}

// listen waits for the next message a background run produced. Handle
// re-arms it until the run closes the channel.
func (e *Engine) listen(ch <-chan any) tea.Cmd {
	return func() tea.Msg {
		body, ok := <-ch
		if !ok {
			return nil
		}
		return Msg{owner: e, body: listened{body: body, ch: ch}}
	}
}

type listened struct {
	body any
	ch   <-chan any
}

func send(ctx context.Context, ch chan<- any, body any) {
	select {
	case ch <- body:
	case <-ctx.Done():
	}
}
