package browser

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/scottbass3/reglite/internal/api"
	"github.com/scottbass3/reglite/internal/navigation"
)

func (e *Engine) GoWelcome() tea.Cmd {
	return e.enter(navigation.AtWelcome(), true)
}

// GoRepositories opens a registry. It is refused while the registry's last
// known status is Offline.
func (e *Engine) GoRepositories(registry string) tea.Cmd {
	next := navigation.AtRepositories(registry)
	if err := e.admissible(next); err != nil {
		e.refuse(err)
		return nil
	}
	return e.enter(next, true)
}

func (e *Engine) GoTags(registry, repository string) tea.Cmd {
	next := navigation.AtTags(registry, repository)
	if err := e.admissible(next); err != nil {
		e.refuse(err)
		return nil
	}
	return e.enter(next, true)
}

// Up moves one level towards Welcome as a forward transition.
func (e *Engine) Up() tea.Cmd {
	switch e.state.Level {
	case navigation.Tags:
		return e.GoRepositories(e.state.Registry)
	case navigation.Repositories:
		return e.GoWelcome()
	}
	return nil
}

func (e *Engine) Back() tea.Cmd {
	return e.step(-1)
}

func (e *Engine) Forward() tea.Cmd {
	return e.step(1)
}

func (e *Engine) step(delta int) tea.Cmd {
	snap, ok := e.history.Peek(delta)
	if !ok {
		return nil
	}
	next := navigation.FromSnapshot(snap)
	if err := e.admissible(next); err != nil {
		e.refuse(err)
		return nil
	}
	e.history.Move(delta)
	return e.enter(next, false)
}

// Replay re-enters the state a history entry describes without touching
// history. Replaying the same snapshot again reloads the same list.
func (e *Engine) Replay(snap navigation.Snapshot) tea.Cmd {
	next := navigation.FromSnapshot(snap)
	if err := e.admissible(next); err != nil {
		e.refuse(err)
		return nil
	}
	return e.enter(next, false)
}

// Open navigates to a location such as "?registry=a&repository=b". While
// the first registry load is still in flight the location is held back and
// opened once statuses are known, so an Offline registry is refused.
func (e *Engine) Open(location string) tea.Cmd {
	next, err := navigation.ParseLocation(location)
	if err != nil {
		e.sink.Notify(NoticeError, err.Error())
		return nil
	}
	if e.awaitingStatuses {
		e.logger.Debug("holding location until registries load", "location", next.Location())
		e.pending = &next
		return nil
	}
	return e.openState(next)
}

func (e *Engine) openState(next navigation.State) tea.Cmd {
	switch next.Level {
	case navigation.Repositories:
		return e.GoRepositories(next.Registry)
	case navigation.Tags:
		return e.GoTags(next.Registry, next.Repository)
	default:
		return e.GoWelcome()
	}
}

// Retry re-runs the transition into the current state.
func (e *Engine) Retry() tea.Cmd {
	if e.state.Level == navigation.Welcome {
		return e.reloadStatuses(false)
	}
	return e.enter(e.state, false)
}

// Refresh drops the active registry's cached repositories and reloads the
// current level. On Welcome it reloads registry statuses.
func (e *Engine) Refresh() tea.Cmd {
	if e.state.Level == navigation.Welcome {
		return e.reloadStatuses(false)
	}
	e.cache.ClearFor(e.state.Registry)
	return e.enter(e.state, false)
}

func (e *Engine) admissible(next navigation.State) error {
	if next.Registry == "" {
		return nil
	}
	if entry, ok := e.Registry(next.Registry); ok && entry.Status == api.StatusOffline {
		return api.Preconditionf("registry %s is offline", next.Registry)
	}
	return nil
}

func (e *Engine) refuse(err error) {
	e.logger.Debug("transition refused", "err", err)
	e.sink.Notify(NoticeError, describe(err))
}

// enter performs a transition. In-flight enrichment for the previous state
// is cancelled and the generation bump makes any result still on its way
// stale.
func (e *Engine) enter(next navigation.State, push bool) tea.Cmd {
	if err := next.Valid(); err != nil {
		e.sink.Notify(NoticeError, err.Error())
		return nil
	}
	e.cancelRuns()
	e.generation++
	e.state = next
	e.pending = nil
	if push {
		e.history.Push(next)
	}
	if e.manifest != nil || e.selectedTag != "" {
		e.closeManifest()
	}
	if next.Registry != "" && next.Registry != e.cached {
		e.cache.ClearAll()
		e.cached = next.Registry
	}

	e.sink.Enter(next)
	if next.Level == navigation.Welcome {
		e.sink.ClearSearch(navigation.Welcome, navigation.Repositories, navigation.Tags)
	} else {
		var deeper []navigation.Level
		for level := next.Level + 1; level <= navigation.Tags; level++ {
			deeper = append(deeper, level)
		}
		e.sink.ClearSearch(deeper...)
	}
	e.logger.Debug("enter", "location", next.Location(), "push", push, "gen", e.generation)

	switch next.Level {
	case navigation.Repositories:
		e.sink.ShowLoading(next)
		return e.loadRepositories(next, e.generation)
	case navigation.Tags:
		e.sink.ShowLoading(next)
		return e.loadTags(next, e.generation)
	default:
		e.sink.ShowRegistries(e.Registries())
		return nil
	}
}

func describe(err error) string {
	var apiErr *api.APIError
	switch {
	case err == nil:
		return ""
	case api.IsPrecondition(err):
		return err.Error()
	case errors.As(err, &apiErr):
		return apiErr.Message
	case api.IsTransport(err):
		return fmt.Sprintf("backend unreachable: %v", err)
	default:
		return err.Error()
	}
}
