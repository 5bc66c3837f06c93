package browser

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/scottbass3/reglite/internal/api"
	"github.com/scottbass3/reglite/internal/cache"
	"github.com/scottbass3/reglite/internal/enrich"
	"github.com/scottbass3/reglite/internal/navigation"
)

func (e *Engine) loadRepositories(state navigation.State, gen uint64) tea.Cmd {
	ctx, cancel := e.requestContext(e.root)
	return e.cmd(func() any {
		defer cancel()
		repos, err := e.gw.Repositories(ctx, state.Registry)
		return repositoriesMsg{state: state, gen: gen, repos: repos, err: err}
	})
}

func (e *Engine) loadTags(state navigation.State, gen uint64) tea.Cmd {
	ctx, cancel := e.requestContext(e.root)
	return e.cmd(func() any {
		defer cancel()
		tags, err := e.gw.Tags(ctx, state.Registry, state.Repository)
		return tagsMsg{state: state, gen: gen, tags: tags, err: err}
	})
}

func (e *Engine) handleRepositories(m repositoriesMsg) tea.Cmd {
	if !e.current(m.state, m.gen) {
		return nil
	}
	if m.err != nil {
		e.listFailed(m.state, "load repositories", m.err)
		return nil
	}
	e.sink.Show(m.state, m.repos)
	return e.enrichRepositories(m.state, m.gen, m.repos)
}

func (e *Engine) handleTags(m tagsMsg) tea.Cmd {
	if !e.current(m.state, m.gen) {
		return nil
	}
	if m.err != nil {
		e.listFailed(m.state, "load tags", m.err)
		return nil
	}
	tags := sortTags(m.tags, e.opts.TagSort)
	e.sink.Show(m.state, tags)
	return e.enrichTags(m.state, m.gen, tags)
}

// listFailed leaves the state entered and puts a retryable error in the
// list pane.
func (e *Engine) listFailed(state navigation.State, op string, err error) {
	e.logger.Warn(op+" failed", "location", state.Location(), "err", err)
	msg := describe(err)
	e.sink.ShowError(state, msg)
	e.sink.Notify(NoticeError, fmt.Sprintf("%s: %s", op, msg))
}

// enrichRepositories applies cached stats right away and fetches the rest
// in batches.
func (e *Engine) enrichRepositories(state navigation.State, gen uint64, repos []string) tea.Cmd {
	misses := make([]string, 0, len(repos))
	for _, repo := range repos {
		if entry, ok := e.cache.Get(state.Registry, repo); ok {
			e.sink.UpdateItem(state, repo, patchFromEntry(entry))
			continue
		}
		misses = append(misses, repo)
		e.sink.UpdateItem(state, repo, ItemPatch{Loading: true})
	}
	if len(misses) == 0 {
		return nil
	}
	return e.startEnrichment(state, gen, misses, e.opts.RepositoryBatchSize, func(ctx context.Context, ch chan<- any, ids []string, size int) int {
		return enrich.Run(ctx, ids, size,
			func(ctx context.Context, repo string) (cache.Entry, error) {
				return e.repositoryStats(ctx, state.Registry, repo)
			},
			func(r enrich.Result[cache.Entry]) {
				send(ctx, ch, repoStatsMsg{state: state, gen: gen, repo: r.ID, entry: r.Value, err: r.Err})
			})
	})
}

func (e *Engine) enrichTags(state navigation.State, gen uint64, tags []string) tea.Cmd {
	if len(tags) == 0 {
		return nil
	}
	for _, tag := range tags {
		e.sink.UpdateItem(state, tag, ItemPatch{Loading: true})
	}
	return e.startEnrichment(state, gen, tags, e.opts.TagBatchSize, func(ctx context.Context, ch chan<- any, ids []string, size int) int {
		return enrich.Run(ctx, ids, size,
			func(ctx context.Context, tag string) (api.Manifest, error) {
				ctx, cancel := e.requestContext(ctx)
				defer cancel()
				return e.gw.Manifest(ctx, state.Registry, state.Repository, tag)
			},
			func(r enrich.Result[api.Manifest]) {
				send(ctx, ch, tagStatsMsg{state: state, gen: gen, tag: r.ID, manifest: r.Value, err: r.Err})
			})
	})
}

type enrichFunc func(ctx context.Context, ch chan<- any, ids []string, size int) int

func (e *Engine) startEnrichment(state navigation.State, gen uint64, ids []string, size int, run enrichFunc) tea.Cmd {
	ctx, cancel := context.WithCancel(e.root)
	e.cancelEnrich = cancel

	ch := make(chan any)
	go func() {
		defer close(ch)
		batches := run(ctx, ch, ids, size)
		send(ctx, ch, enrichDoneMsg{state: state, gen: gen, batches: batches})
	}()
	return e.listen(ch)
}

// repositoryStats fetches the tag list first and only asks for full info
// (with sizes) when the repository has few enough tags.
func (e *Engine) repositoryStats(ctx context.Context, registry, repo string) (cache.Entry, error) {
	tagsCtx, cancel := e.requestContext(ctx)
	tags, err := e.gw.Tags(tagsCtx, registry, repo)
	cancel()
	if err != nil {
		return cache.Entry{}, err
	}
	if len(tags) > e.opts.ManyTagsThreshold {
		return cache.Entry{
			Info:     api.RepositoryInfo{Name: repo, TagsCount: len(tags), Tags: tags},
			ManyTags: true,
		}, nil
	}

	infoCtx, cancel := e.requestContext(ctx)
	defer cancel()
	info, err := e.gw.RepositoryInfo(infoCtx, registry, repo)
	if err != nil {
		return cache.Entry{}, err
	}
	return cache.Entry{Info: info}, nil
}

func (e *Engine) handleRepoStats(m repoStatsMsg) {
	if !e.current(m.state, m.gen) {
		return
	}
	if m.err != nil {
		e.logger.Debug("repository stats failed", "repository", m.repo, "err", m.err)
		e.sink.UpdateItem(m.state, m.repo, ItemPatch{Err: describe(m.err)})
		return
	}
	e.cache.Put(m.state.Registry, m.repo, m.entry)
	e.sink.UpdateItem(m.state, m.repo, patchFromEntry(m.entry))
}

func (e *Engine) handleTagStats(m tagStatsMsg) {
	if !e.current(m.state, m.gen) {
		return
	}
	if m.err != nil {
		e.sink.UpdateItem(m.state, m.tag, ItemPatch{Err: describe(m.err)})
		return
	}
	manifest := m.manifest
	e.sink.UpdateItem(m.state, m.tag, ItemPatch{Manifest: &manifest})
}

// ShowInfo fetches full info for a repository whose cache entry only holds
// a tag count, and upgrades the entry in place.
func (e *Engine) ShowInfo(repo string) tea.Cmd {
	state, gen := e.state, e.generation
	if state.Level != navigation.Repositories || repo == "" {
		return nil
	}
	if entry, ok := e.cache.Get(state.Registry, repo); ok && entry.Complete() {
		e.sink.UpdateItem(state, repo, patchFromEntry(entry))
		return nil
	}
	e.sink.UpdateItem(state, repo, ItemPatch{Loading: true})

	ctx, cancel := e.requestContext(e.root)
	return e.cmd(func() any {
		defer cancel()
		info, err := e.gw.RepositoryInfo(ctx, state.Registry, repo)
		return infoMsg{state: state, gen: gen, repo: repo, info: info, err: err}
	})
}

func (e *Engine) handleInfo(m infoMsg) {
	if !e.current(m.state, m.gen) {
		return
	}
	if m.err != nil {
		msg := describe(m.err)
		e.sink.UpdateItem(m.state, m.repo, ItemPatch{Err: msg})
		e.sink.Notify(NoticeError, fmt.Sprintf("repository info for %s: %s", m.repo, msg))
		return
	}
	entry := cache.Entry{Info: m.info}
	e.cache.Put(m.state.Registry, m.repo, entry)
	e.sink.UpdateItem(m.state, m.repo, patchFromEntry(entry))
}

func patchFromEntry(entry cache.Entry) ItemPatch {
	info := entry.Info
	return ItemPatch{Info: &info, ManyTags: entry.ManyTags}
}
