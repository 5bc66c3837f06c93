package browser

import (
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/scottbass3/reglite/internal/api"
	"github.com/scottbass3/reglite/internal/navigation"
)

const TagSortSemver = "semver"

// SelectTag fetches the tag's manifest for the detail view. Manifests are
// never cached; every selection asks the backend again.
func (e *Engine) SelectTag(tag string) tea.Cmd {
	state, gen := e.state, e.generation
	if state.Level != navigation.Tags || tag == "" {
		return nil
	}
	e.selectedTag = tag
	e.manifest = nil
	e.sink.ShowManifest(e.manifestView(tag, nil, true, ""))

	ctx, cancel := e.requestContext(e.root)
	return e.cmd(func() any {
		defer cancel()
		manifest, err := e.gw.Manifest(ctx, state.Registry, state.Repository, tag)
		return manifestMsg{state: state, gen: gen, tag: tag, manifest: manifest, err: err}
	})
}

func (e *Engine) handleManifest(m manifestMsg) {
	if !e.current(m.state, m.gen) || m.tag != e.selectedTag {
		return
	}
	if m.err != nil {
		msg := describe(m.err)
		e.sink.ShowManifest(e.manifestView(m.tag, nil, false, msg))
		e.sink.Notify(NoticeError, fmt.Sprintf("manifest for %s: %s", m.tag, msg))
		return
	}
	manifest := m.manifest
	e.manifest = &manifest
	e.sink.ShowManifest(e.manifestView(m.tag, &manifest, false, ""))
}

func (e *Engine) CloseManifest() {
	e.closeManifest()
}

func (e *Engine) closeManifest() {
	e.selectedTag = ""
	e.manifest = nil
	e.sink.HideManifest()
}

func (e *Engine) manifestView(tag string, manifest *api.Manifest, loading bool, errMsg string) ManifestView {
	view := ManifestView{
		Registry:   e.state.Registry,
		Repository: e.state.Repository,
		Tag:        tag,
		Loading:    loading,
		Manifest:   manifest,
		Err:        errMsg,
	}
	if entry, ok := e.Registry(e.state.Registry); ok {
		view.PullRef = api.PullReference(entry.URL, e.state.Repository, tag)
	} else {
		view.PullRef = api.PullReference("", e.state.Repository, tag)
	}
	return view
}

// DeleteTarget returns the manifest DeleteSelected would remove, or a
// precondition error when no manifest with a usable digest is selected.
func (e *Engine) DeleteTarget() (api.Manifest, error) {
	if e.state.Level != navigation.Tags || e.manifest == nil {
		return api.Manifest{}, api.Preconditionf("no manifest selected")
	}
	if err := api.ValidateDigest(e.manifest.Digest); err != nil {
		return api.Manifest{}, fmt.Errorf("cannot delete %s: %w", e.selectedTag, err)
	}
	return *e.manifest, nil
}

// DeleteSelected deletes the selected manifest by digest. Nothing is sent
// when DeleteTarget fails.
func (e *Engine) DeleteSelected() tea.Cmd {
	target, err := e.DeleteTarget()
	if err != nil {
		e.sink.Notify(NoticeError, err.Error())
		return nil
	}
	state, tag := e.state, e.selectedTag
	ctx, cancel := e.requestContext(e.root)
	return e.cmd(func() any {
		defer cancel()
		err := e.gw.DeleteManifest(ctx, state.Registry, state.Repository, target.Digest)
		return deleteMsg{state: state, tag: tag, digest: target.Digest, err: err}
	})
}

// handleDelete reports the outcome even when the user moved on, but only
// reloads the tag list when it is still on screen.
func (e *Engine) handleDelete(m deleteMsg) tea.Cmd {
	if m.err != nil {
		e.sink.Notify(NoticeError, fmt.Sprintf("delete %s: %s", m.tag, describe(m.err)))
		return nil
	}
	e.logger.Info("deleted manifest", "registry", m.state.Registry, "repository", m.state.Repository, "tag", m.tag, "digest", m.digest)
	e.sink.Notify(NoticeSuccess, fmt.Sprintf("deleted %s:%s", m.state.Repository, m.tag))
	e.cache.Delete(m.state.Registry, m.state.Repository)
	if m.state != e.state {
		return nil
	}
	return e.enter(e.state, false)
}

// sortTags orders tags for display. "semver" puts valid versions first,
// newest first, followed by the rest by name. Any other mode keeps the
// registry's order.
func sortTags(tags []string, mode string) []string {
	out := append([]string(nil), tags...)
	if mode != TagSortSemver {
		return out
	}
	versions := make(map[string]*semver.Version, len(out))
	for _, tag := range out {
		if v, err := semver.NewVersion(tag); err == nil {
			versions[tag] = v
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		vi, iok := versions[out[i]]
		vj, jok := versions[out[j]]
		switch {
		case iok && jok:
			return vi.GreaterThan(vj)
		case iok != jok:
			return iok
		default:
			return out[i] < out[j]
		}
	})
	return out
}
