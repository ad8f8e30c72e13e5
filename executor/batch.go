package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// BatchPolicy bounds burst concurrency of independent operations against
// rate-limited RPC backends.
type BatchPolicy struct {
	// BatchSize is the chunk size run concurrently. 0 means everything at
	// once.
	BatchSize uint
	// InterBatchDelay is slept between chunks when more remain.
	InterBatchDelay time.Duration
}

// ChunkError reports the failure of a batch chunk. Results of sibling tasks
// in the failed chunk are discarded, never reported as partial success.
type ChunkError struct {
	Chunk int
	Err   error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("batch chunk %d failed: %v", e.Chunk, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}

// RunBatched runs task over items in consecutive chunks of BatchSize. Tasks
// within a chunk run concurrently; a chunk is a barrier, fully settling
// before the next one starts. The first task failure fails its whole chunk
// and the run. Results are ordered to match items.
func RunBatched[I, O any](ctx context.Context, policy BatchPolicy, items []I, task func(context.Context, I) (O, error)) ([]O, error) {
	results := make([]O, len(items))
	if len(items) == 0 {
		return results, nil
	}
	size := int(policy.BatchSize)
	if size == 0 || size > len(items) {
		size = len(items)
	}

	chunk := 0
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				out, err := task(gctx, items[i])
				if err != nil {
					return errors.Wrapf(err, "item %d", i)
				}
				results[i] = out
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, &ChunkError{Chunk: chunk, Err: err}
		}

		if end < len(items) && policy.InterBatchDelay > 0 {
			select {
			case <-time.After(policy.InterBatchDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		chunk++
	}
	return results, nil
}
