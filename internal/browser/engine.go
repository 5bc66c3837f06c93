// Package browser is the navigation engine behind the registry browser. It
// owns where the user is, talks to the backend, keeps the repository cache
// and decides what the Sink shows. It is driven from a bubbletea Update
// loop: methods return tea.Cmds, and their results come back as Msg values
// that must be passed to Handle.
package browser

import (
	"context"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/scottbass3/reglite/internal/api"
	"github.com/scottbass3/reglite/internal/cache"
	"github.com/scottbass3/reglite/internal/navigation"
	"github.com/scottbass3/reglite/internal/status"
)

// Gateway is the backend surface the engine uses.
type Gateway interface {
	status.Source
	Repositories(ctx context.Context, registry string) ([]string, error)
	RepositoryInfo(ctx context.Context, registry, repository string) (api.RepositoryInfo, error)
	Tags(ctx context.Context, registry, repository string) ([]string, error)
	Manifest(ctx context.Context, registry, repository, tag string) (api.Manifest, error)
	DeleteManifest(ctx context.Context, registry, repository, digest string) error
}

type Options struct {
	RepositoryBatchSize int
	TagBatchSize        int
	ManyTagsThreshold   int
	RequestTimeout      time.Duration
	TagSort             string
	Poller              []status.Option
	Logger              *log.Logger
}

func DefaultOptions() Options {
	return Options{
		RepositoryBatchSize: 3,
		TagBatchSize:        4,
		ManyTagsThreshold:   10,
		RequestTimeout:      15 * time.Second,
	}
}

type Engine struct {
	gw     Gateway
	sink   Sink
	cache  *cache.Store
	poller *status.Poller
	opts   Options
	logger *log.Logger

	root context.Context
	stop context.CancelFunc

	state      navigation.State
	history    *navigation.History
	generation uint64

	// cached is the registry whose repositories the cache currently holds.
	cached string

	registries []api.RegistryEntry
	lastSeq    uint64

	// awaitingStatuses is set from Start until the first registry load
	// settles; pending is the location Open held back meanwhile.
	awaitingStatuses bool
	pending          *navigation.State

	cancelEnrich context.CancelFunc

	selectedTag string
	manifest    *api.Manifest
}

func New(gw Gateway, sink Sink, opts Options) *Engine {
	defaults := DefaultOptions()
	if opts.RepositoryBatchSize <= 0 {
		opts.RepositoryBatchSize = defaults.RepositoryBatchSize
	}
	if opts.TagBatchSize <= 0 {
		opts.TagBatchSize = defaults.TagBatchSize
	}
	if opts.ManyTagsThreshold <= 0 {
		opts.ManyTagsThreshold = defaults.ManyTagsThreshold
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaults.RequestTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	root, stop := context.WithCancel(context.Background())
	pollerOpts := append([]status.Option{status.WithLogger(logger.WithPrefix("status"))}, opts.Poller...)
	return &Engine{
		gw:      gw,
		sink:    sink,
		cache:   cache.New(),
		poller:  status.NewPoller(gw, pollerOpts...),
		opts:    opts,
		logger:  logger.WithPrefix("browser"),
		root:    root,
		stop:    stop,
		state:   navigation.AtWelcome(),
		history: navigation.NewHistory(navigation.AtWelcome()),
	}
}

// Close cancels every background run. Pending messages are dropped.
func (e *Engine) Close() {
	e.stop()
}

func (e *Engine) State() navigation.State {
	return e.state
}

func (e *Engine) Location() string {
	return e.state.Location()
}

func (e *Engine) CanBack() bool {
	return e.history.CanBack()
}

func (e *Engine) CanForward() bool {
	return e.history.CanForward()
}

func (e *Engine) Registries() []api.RegistryEntry {
	return append([]api.RegistryEntry(nil), e.registries...)
}

// Registry returns the last known entry for name.
func (e *Engine) Registry(name string) (api.RegistryEntry, bool) {
	return status.Find(e.registries, name)
}

func (e *Engine) Cache() *cache.Store {
	return e.cache
}

func (e *Engine) Validating() bool {
	return e.poller.Running()
}

// Manifest returns the manifest currently shown in the detail view.
func (e *Engine) Manifest() (api.Manifest, bool) {
	if e.manifest == nil {
		return api.Manifest{}, false
	}
	return *e.manifest, true
}

// Handle applies an asynchronous result and returns follow-up work.
func (e *Engine) Handle(msg Msg) tea.Cmd {
	if msg.owner != e {
		return nil
	}
	return e.handle(msg.body)
}

func (e *Engine) handle(body any) tea.Cmd {
	switch m := body.(type) {
	case listened:
		return tea.Batch(e.handle(m.body), e.listen(m.ch))
	case registriesMsg:
		return e.handleRegistries(m)
	case pollSnapshotMsg:
		e.applySnapshot(m.snap)
	case pollDoneMsg:
		e.handlePollDone(m.out)
	case repositoriesMsg:
		return e.handleRepositories(m)
	case tagsMsg:
		return e.handleTags(m)
	case repoStatsMsg:
		e.handleRepoStats(m)
	case tagStatsMsg:
		e.handleTagStats(m)
	case enrichDoneMsg:
		if e.current(m.state, m.gen) {
			e.logger.Debug("enrichment finished", "location", m.state.Location(), "batches", m.batches)
		}
	case infoMsg:
		e.handleInfo(m)
	case manifestMsg:
		e.handleManifest(m)
	case deleteMsg:
		return e.handleDelete(m)
	}
	return nil
}

// current is the staleness guard: a result applies only to the navigation
// state and generation that requested it.
func (e *Engine) current(state navigation.State, gen uint64) bool {
	if gen != e.generation || state != e.state {
		e.logger.Debug("discarding stale result", "for", state.Location(), "now", e.state.Location())
		return false
	}
	return true
}

func (e *Engine) requestContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, e.opts.RequestTimeout)
}

func (e *Engine) cancelRuns() {
	if e.cancelEnrich != nil {
		e.cancelEnrich()
		e.cancelEnrich = nil
	}
}
