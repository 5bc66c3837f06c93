package browser

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/scottbass3/reglite/internal/api"
	"github.com/scottbass3/reglite/internal/navigation"
	"github.com/scottbass3/reglite/internal/status"
)

// Start loads the registry list and then validates every registry.
func (e *Engine) Start() tea.Cmd {
	e.awaitingStatuses = true
	e.sink.Enter(e.state)
	e.sink.ShowLoading(navigation.AtWelcome())
	return e.reloadStatuses(true)
}

func (e *Engine) reloadStatuses(initial bool) tea.Cmd {
	ctx, cancel := e.requestContext(e.root)
	return e.cmd(func() any {
		defer cancel()
		snap, err := e.poller.LoadInitial(ctx)
		return registriesMsg{snap: snap, err: err, initial: initial}
	})
}

func (e *Engine) handleRegistries(m registriesMsg) tea.Cmd {
	e.awaitingStatuses = false
	if m.err != nil {
		e.logger.Warn("load registries failed", "err", m.err)
		msg := describe(m.err)
		if e.state.Level == navigation.Welcome {
			e.sink.ShowError(e.state, msg)
		}
		e.sink.Notify(NoticeError, "load registries: "+msg)
		return nil
	}
	if m.snap.Fallback {
		e.sink.Notify(NoticeWarning, "registry status unavailable, showing names only")
	}
	e.applySnapshot(m.snap)
	var cmds []tea.Cmd
	if e.pending != nil {
		next := *e.pending
		e.pending = nil
		cmds = append(cmds, e.openState(next))
	}
	if m.initial {
		cmds = append(cmds, e.Validate())
	}
	return tea.Batch(cmds...)
}

// applySnapshot merges a status snapshot unless a newer one was applied
// already.
func (e *Engine) applySnapshot(snap status.Snapshot) {
	if snap.Seq <= e.lastSeq {
		e.logger.Debug("dropping old status snapshot", "seq", snap.Seq, "last", e.lastSeq)
		return
	}
	e.lastSeq = snap.Seq
	e.registries = status.Merge(e.registries, snap.Entries)
	e.sink.ShowRegistries(e.Registries())
}

// Validate asks the backend to re-check every registry and polls until the
// statuses settle. Only one run may be active; a second call is refused
// with a warning.
func (e *Engine) Validate() tea.Cmd {
	run, err := e.poller.Begin()
	if err != nil {
		e.sink.Notify(NoticeWarning, "validation already running")
		return nil
	}
	e.sink.Notify(NoticeInfo, "validating registries")

	ctx := e.root
	ch := make(chan any)
	go func() {
		defer close(ch)
		out := run.Poll(ctx, func(snap status.Snapshot) {
			send(ctx, ch, pollSnapshotMsg{snap: snap})
		})
		send(ctx, ch, pollDoneMsg{out: out})
	}()
	return e.listen(ch)
}

func (e *Engine) handlePollDone(out status.Outcome) {
	if out.KickoffErr != nil {
		e.sink.Notify(NoticeWarning, "validation request failed: "+describe(out.KickoffErr))
	}
	switch {
	case out.Converged:
		online := 0
		for _, entry := range e.registries {
			if entry.Status == api.StatusOnline {
				online++
			}
		}
		e.sink.Notify(NoticeSuccess, fmt.Sprintf("validation finished: %d of %d online", online, len(e.registries)))
	case out.TimedOut:
		e.sink.Notify(NoticeWarning, "validation timed out, some registries are still checking")
	case out.Err != nil && !errors.Is(out.Err, context.Canceled):
		e.logger.Debug("status polling stopped", "ticks", out.Ticks, "err", out.Err)
	}
}
