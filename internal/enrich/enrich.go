// Package enrich runs per-item secondary fetches in ordered, bounded batches.
package enrich

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one item's fetch.
type Result[T any] struct {
	Index int
	ID    string
	Value T
	Err   error
}

// Batches returns how many batch barriers Run uses for total items.
func Batches(total, size int) int {
	if total <= 0 {
		return 0
	}
	if size <= 0 {
		size = 1
	}
	return (total + size - 1) / size
}

// Run fetches every id, batchSize at a time. All fetches in a batch start
// together and the next batch starts only after each of them settled.
// settle is called once per item as soon as its fetch returns, from the
// fetching goroutine. An item's error never stops its siblings. When ctx is
// cancelled, batches that have not started are skipped.
//
// The return value is the number of batches that ran.
func Run[T any](ctx context.Context, ids []string, batchSize int, fetch func(context.Context, string) (T, error), settle func(Result[T])) int {
	if batchSize <= 0 {
		batchSize = 1
	}
	ran := 0
	for start := 0; start < len(ids); start += batchSize {
		if ctx.Err() != nil {
			break
		}
		end := min(start+batchSize, len(ids))

		// Fetch errors are handed to settle, never returned to the group,
		// so one failure does not cancel the rest of the batch.
		var g errgroup.Group
		for i := start; i < end; i++ {
			index, id := i, ids[i]
			g.Go(func() error {
				value, err := fetch(ctx, id)
				settle(Result[T]{Index: index, ID: id, Value: value, Err: err})
				return nil
			})
		}
		_ = g.Wait()
		ran++
	}
	return ran
}
