package status_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scottbass3/reglite/internal/api"
	"github.com/scottbass3/reglite/internal/api/apitest"
	"github.com/scottbass3/reglite/internal/status"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if d > 0 {
		c.now = c.now.Add(d)
	}
	return nil
}

type scriptedSource struct {
	mu       sync.Mutex
	frames   [][]api.RegistryEntry
	failAt   int
	kickoff  error
	block    chan struct{}
	calls    int
	kickoffs int
}

func (s *scriptedSource) RegistryNames(context.Context) ([]string, error) {
	return nil, errors.New("not used")
}

func (s *scriptedSource) RegistryStatuses(context.Context) ([]api.RegistryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failAt > 0 && s.calls == s.failAt {
		return nil, &api.TransportError{Op: "registry status", Err: errors.New("connection reset")}
	}
	n := min(s.calls, len(s.frames)) - 1
	return s.frames[n], nil
}

func (s *scriptedSource) TriggerValidation(context.Context) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kickoffs++
	return s.kickoff
}

func checking(names ...string) []api.RegistryEntry {
	return withStatus(api.StatusChecking, names...)
}

func withStatus(s api.Status, names ...string) []api.RegistryEntry {
	out := make([]api.RegistryEntry, 0, len(names))
	for _, name := range names {
		out = append(out, api.RegistryEntry{Name: name, Status: s})
	}
	return out
}

// framesConvergingAt yields Checking for ticks 1..k-1 and a settled set at tick k.
func framesConvergingAt(k int) [][]api.RegistryEntry {
	frames := make([][]api.RegistryEntry, 0, k)
	for i := 1; i < k; i++ {
		frames = append(frames, append(withStatus(api.StatusOnline, "a"), checking("b")...))
	}
	return append(frames, append(withStatus(api.StatusOnline, "a"), withStatus(api.StatusOffline, "b")...))
}

func TestPollStopsExactlyAtConvergence(t *testing.T) {
	t.Parallel()

	for _, k := range []int{1, 2, 5, 17, 29} {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			t.Parallel()

			source := &scriptedSource{frames: framesConvergingAt(k)}
			poller := status.NewPoller(source, status.WithClock(newFakeClock()))

			var ticks []int
			out, err := poller.Validate(context.Background(), func(s status.Snapshot) {
				ticks = append(ticks, s.Tick)
			})
			require.NoError(t, err)

			assert.True(t, out.Converged)
			assert.False(t, out.TimedOut)
			assert.Equal(t, k, out.Ticks)
			assert.Equal(t, k, source.calls)
			assert.Len(t, ticks, k)
			assert.False(t, status.AnyChecking(out.Last.Entries))
			assert.False(t, poller.Running())
		})
	}
}

func TestPollGivesUpAtTimeout(t *testing.T) {
	t.Parallel()

	source := &scriptedSource{frames: [][]api.RegistryEntry{checking("a")}}
	clock := newFakeClock()
	start := clock.Now()
	poller := status.NewPoller(source, status.WithClock(clock))

	out, err := poller.Validate(context.Background(), nil)
	require.NoError(t, err)

	assert.True(t, out.TimedOut)
	assert.False(t, out.Converged)
	assert.Equal(t, 30, out.Ticks)
	assert.Equal(t, 30*time.Second, clock.Now().Sub(start))
}

func TestPollCustomIntervalAndTimeout(t *testing.T) {
	t.Parallel()

	source := &scriptedSource{frames: [][]api.RegistryEntry{checking("a")}}
	poller := status.NewPoller(source,
		status.WithClock(newFakeClock()),
		status.WithInterval(2*time.Second),
		status.WithTimeout(10*time.Second))

	out, err := poller.Validate(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 5, out.Ticks)
}

func TestPollFailureStopsSilently(t *testing.T) {
	t.Parallel()

	source := &scriptedSource{frames: [][]api.RegistryEntry{checking("a")}, failAt: 3}
	poller := status.NewPoller(source, status.WithClock(newFakeClock()))

	out, err := poller.Validate(context.Background(), nil)
	require.NoError(t, err)

	assert.Error(t, out.Err)
	assert.Equal(t, 3, out.Ticks)
	assert.Equal(t, 2, out.Last.Tick, "last good snapshot stays")
	assert.False(t, poller.Running())
}

func TestKickoffFailureStillPolls(t *testing.T) {
	t.Parallel()

	source := &scriptedSource{
		frames:  [][]api.RegistryEntry{withStatus(api.StatusOnline, "a")},
		kickoff: &api.APIError{Op: "validate registries", StatusCode: 500, Message: "busy"},
	}
	poller := status.NewPoller(source, status.WithClock(newFakeClock()))

	out, err := poller.Validate(context.Background(), nil)
	require.NoError(t, err)
	assert.Error(t, out.KickoffErr)
	assert.True(t, out.Converged)
	assert.Equal(t, 1, out.Ticks)
}

func TestValidateIsMutuallyExclusive(t *testing.T) {
	t.Parallel()

	source := &scriptedSource{
		frames: [][]api.RegistryEntry{withStatus(api.StatusOnline, "a")},
		block:  make(chan struct{}),
	}
	poller := status.NewPoller(source, status.WithClock(newFakeClock()))

	run, err := poller.Begin()
	require.NoError(t, err)
	require.True(t, poller.Running())

	done := make(chan status.Outcome)
	go func() { done <- run.Poll(context.Background(), nil) }()

	_, err = poller.Validate(context.Background(), nil)
	require.ErrorIs(t, err, status.ErrValidationRunning)
	assert.True(t, api.IsPrecondition(err))

	close(source.block)
	out := <-done
	assert.True(t, out.Converged)
	assert.Equal(t, 1, source.kickoffs, "rejected call must not trigger")

	_, err = poller.Begin()
	assert.NoError(t, err, "guard released after run")
}

func TestCancelledPollStops(t *testing.T) {
	t.Parallel()

	source := &scriptedSource{frames: [][]api.RegistryEntry{checking("a")}}
	poller := status.NewPoller(source, status.WithClock(newFakeClock()))
	ctx, cancel := context.WithCancel(context.Background())

	out, err := poller.Validate(ctx, func(s status.Snapshot) {
		if s.Tick == 4 {
			cancel()
		}
	})
	require.NoError(t, err)
	assert.ErrorIs(t, out.Err, context.Canceled)
	assert.Equal(t, 4, out.Ticks)
}

func TestSnapshotSequenceGrows(t *testing.T) {
	t.Parallel()

	source := &scriptedSource{frames: framesConvergingAt(4)}
	poller := status.NewPoller(source, status.WithClock(newFakeClock()))

	var seqs []uint64
	_, err := poller.Validate(context.Background(), func(s status.Snapshot) {
		seqs = append(seqs, s.Seq)
	})
	require.NoError(t, err)
	require.Len(t, seqs, 4)
	for i := 1; i < len(seqs); i++ {
		assert.Greater(t, seqs[i], seqs[i-1])
	}
}

func TestLoadInitialFallsBackToNames(t *testing.T) {
	t.Parallel()

	backend := apitest.NewBackend()
	backend.SetStatuses([]api.RegistryEntry{
		{Name: "b", Status: api.StatusOnline},
		{Name: "a", Status: api.StatusOnline},
	})
	backend.Break("/registries/status")
	gw, err := api.New(backend.Start(t))
	require.NoError(t, err)

	snap, err := status.NewPoller(gw).LoadInitial(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.Fallback)
	assert.Equal(t, checking("a", "b"), snap.Entries)
	assert.Equal(t, 1, backend.Calls("GET /registries"))
}

func TestLoadInitialApplicationErrorDoesNotFallBack(t *testing.T) {
	t.Parallel()

	backend := apitest.NewBackend()
	backend.Fail("/registries/status", http.StatusUnauthorized, "denied")
	gw, err := api.New(backend.Start(t))
	require.NoError(t, err)

	_, err = status.NewPoller(gw).LoadInitial(context.Background())
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "denied", apiErr.Message)
	assert.Zero(t, backend.Calls("GET /registries"))
}
