package txmanager

import (
	"context"
	"time"

	"go.uber.org/multierr"

	"github.com/tradeport-labs/gateway/client"
)

// HeightSource provides a cached view of the current chain height, so the
// confirmer does not have to issue a height query on every poll round. A
// tracker.HeightTracker satisfies this.
type HeightSource interface {
	// Latest returns the most recently observed height. ok is false until a
	// first observation has been made.
	Latest() (height uint64, ok bool)
}

// queryFirst fans fn out to every endpoint concurrently and returns the
// first successful result, without waiting for slow or dead endpoints. If
// every endpoint fails, the combined errors are returned.
func queryFirst[T any](ctx context.Context, endpoints []client.Endpoint, timeout time.Duration, fn func(context.Context, client.Endpoint) (T, error)) (T, error) {
	type outcome struct {
		val T
		err error
	}

	queryCtx := ctx
	cancel := context.CancelFunc(func() {})
	if timeout > 0 {
		queryCtx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	results := make(chan outcome, len(endpoints))
	for _, ep := range endpoints {
		go func(ep client.Endpoint) {
			val, err := fn(queryCtx, ep)
			results <- outcome{val: val, err: err}
		}(ep)
	}

	var errs []error
	for range endpoints {
		out := <-results
		if out.err == nil {
			return out.val, nil
		}
		errs = append(errs, out.err)
	}
	var zero T
	return zero, multierr.Combine(errs...)
}
