// Package status tracks registry reachability: the initial load, validation
// runs that poll until every registry settled, and display grouping.
package status

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/scottbass3/reglite/internal/api"
)

const (
	DefaultInterval = time.Second
	DefaultTimeout  = 30 * time.Second
)

// ErrValidationRunning is returned when a validation run is already active.
var ErrValidationRunning = fmt.Errorf("%w: validation already running", api.ErrPrecondition)

// Source is the part of the backend the poller needs.
type Source interface {
	RegistryNames(ctx context.Context) ([]string, error)
	RegistryStatuses(ctx context.Context) ([]api.RegistryEntry, error)
	TriggerValidation(ctx context.Context) error
}

// Clock lets tests drive poll ticks without waiting.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Snapshot is one fetched set of statuses. Seq grows with every snapshot
// the poller produces, so consumers can drop older ones arriving late.
type Snapshot struct {
	Seq      uint64
	Tick     int
	Entries  []api.RegistryEntry
	Fallback bool
}

// Outcome summarizes a finished validation run.
type Outcome struct {
	Ticks      int
	Converged  bool
	TimedOut   bool
	Err        error
	KickoffErr error
	Last       Snapshot
}

type Poller struct {
	source   Source
	clock    Clock
	interval time.Duration
	timeout  time.Duration
	logger   *log.Logger
	running  atomic.Bool
	seq      atomic.Uint64
}

type Option func(*Poller)

func WithClock(clock Clock) Option {
	return func(p *Poller) {
		if clock != nil {
			p.clock = clock
		}
	}
}

func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(p *Poller) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func NewPoller(source Source, opts ...Option) *Poller {
	p := &Poller{
		source:   source,
		clock:    realClock{},
		interval: DefaultInterval,
		timeout:  DefaultTimeout,
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// LoadInitial fetches the current statuses. When the status endpoint cannot
// be reached or decoded it falls back to the plain name list and marks every
// registry Checking. Application errors are returned as is.
func (p *Poller) LoadInitial(ctx context.Context) (Snapshot, error) {
	entries, err := p.source.RegistryStatuses(ctx)
	if err == nil {
		return p.snapshot(entries, 0, false), nil
	}
	if !api.IsTransport(err) {
		return Snapshot{}, err
	}
	p.logger.Warn("status endpoint failed, falling back to registry names", "err", err)

	names, nameErr := p.source.RegistryNames(ctx)
	if nameErr != nil {
		return Snapshot{}, fmt.Errorf("load registries: %w", nameErr)
	}
	entries = make([]api.RegistryEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, api.RegistryEntry{Name: name, Status: api.StatusChecking})
	}
	return p.snapshot(entries, 0, true), nil
}

// Running reports whether a validation run holds the guard.
func (p *Poller) Running() bool {
	return p.running.Load()
}

// Run is a claimed validation run. Poll must be called exactly once.
type Run struct {
	p *Poller
}

// Begin claims the validation guard. It fails with ErrValidationRunning
// while another run has not finished.
func (p *Poller) Begin() (*Run, error) {
	if !p.running.CompareAndSwap(false, true) {
		return nil, ErrValidationRunning
	}
	return &Run{p: p}, nil
}

// Validate is Begin followed by Poll.
func (p *Poller) Validate(ctx context.Context, onSnapshot func(Snapshot)) (Outcome, error) {
	run, err := p.Begin()
	if err != nil {
		return Outcome{}, err
	}
	return run.Poll(ctx, onSnapshot), nil
}

// Poll asks the backend to re-check every registry, then re-fetches
// statuses once per interval until none is Checking or the timeout passed.
// A failed kickoff is recorded but polling still happens. A failed fetch
// ends the run and the previous snapshot stays current.
func (r *Run) Poll(ctx context.Context, onSnapshot func(Snapshot)) Outcome {
	p := r.p
	defer p.running.Store(false)

	var out Outcome
	if err := p.source.TriggerValidation(ctx); err != nil {
		p.logger.Warn("validation kickoff failed", "err", err)
		out.KickoffErr = err
	}

	started := p.clock.Now()
	deadline := started.Add(p.timeout)
	for {
		next := started.Add(time.Duration(out.Ticks+1) * p.interval)
		if err := p.clock.Sleep(ctx, next.Sub(p.clock.Now())); err != nil {
			out.Err = err
			return out
		}
		out.Ticks++

		entries, err := p.source.RegistryStatuses(ctx)
		if err != nil {
			p.logger.Debug("status poll stopped", "tick", out.Ticks, "err", err)
			out.Err = err
			return out
		}
		out.Last = p.snapshot(entries, out.Ticks, false)
		if onSnapshot != nil {
			onSnapshot(out.Last)
		}

		if !AnyChecking(entries) {
			out.Converged = true
			p.logger.Debug("statuses converged", "ticks", out.Ticks)
			return out
		}
		if !p.clock.Now().Before(deadline) {
			out.TimedOut = true
			p.logger.Info("status polling timed out", "ticks", out.Ticks)
			return out
		}
	}
}

func (p *Poller) snapshot(entries []api.RegistryEntry, tick int, fallback bool) Snapshot {
	return Snapshot{
		Seq:      p.seq.Add(1),
		Tick:     tick,
		Entries:  append([]api.RegistryEntry(nil), entries...),
		Fallback: fallback,
	}
}
