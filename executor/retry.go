// Package executor provides the generic retry and batch primitives shared by
// every chain adapter. Chains differ only in the policies they configure,
// not in the execution machinery.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// RetryPolicy bounds one retried operation. The zero value means a single
// attempt with no delay and no deadline.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt.
	// 0 means exactly one attempt.
	MaxRetries uint
	// RetryDelay is slept between attempts. 0 means none.
	RetryDelay time.Duration
	// Timeout is a soft overall deadline. It does not abort an in-flight
	// attempt; when exceeded, the next retry decision short-circuits with
	// ErrRetryDeadline. Each attempt additionally receives a context bounded
	// by the remaining budget, so cooperative operations can stop early.
	Timeout time.Duration
}

// ErrRetryDeadline marks a retry loop stopped by its overall timeout rather
// than by exhausting MaxRetries.
var ErrRetryDeadline = errors.New("retry deadline exceeded")

// AggregateError reports every failed attempt of a retried operation, not
// just the last one.
type AggregateError struct {
	// Attempts is the number of times the operation was invoked.
	Attempts int

	combined error
}

func newAggregateError(attempts int, errs []error) *AggregateError {
	return &AggregateError{Attempts: attempts, combined: multierr.Combine(errs...)}
}

func (e *AggregateError) Error() string {
	return fmt.Sprintf("%d attempt(s) failed: %v", e.Attempts, e.combined)
}

// Errors returns the individual attempt errors in attempt order.
func (e *AggregateError) Errors() []error {
	return multierr.Errors(e.combined)
}

func (e *AggregateError) Unwrap() error {
	return e.combined
}

// Retry invokes op until it succeeds, the retry budget is exhausted, the
// soft deadline passes, or ctx is cancelled. On failure the returned error
// is an *AggregateError carrying every attempt's error.
func Retry[T any](ctx context.Context, policy RetryPolicy, op func(context.Context) (T, error)) (T, error) {
	var zero T
	var deadline time.Time
	if policy.Timeout > 0 {
		deadline = time.Now().Add(policy.Timeout)
	}

	var attemptErrs []error
	attempts := 0
	for {
		attemptCtx := ctx
		var cancel context.CancelFunc
		if !deadline.IsZero() {
			attemptCtx, cancel = context.WithDeadline(ctx, deadline)
		}
		val, err := op(attemptCtx)
		if cancel != nil {
			cancel()
		}
		attempts++
		if err == nil {
			return val, nil
		}
		attemptErrs = append(attemptErrs, err)

		if uint(attempts) > policy.MaxRetries {
			return zero, newAggregateError(attempts, attemptErrs)
		}
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			attemptErrs = append(attemptErrs, ErrRetryDeadline)
			return zero, newAggregateError(attempts, attemptErrs)
		}
		if policy.RetryDelay > 0 {
			select {
			case <-time.After(policy.RetryDelay):
			case <-ctx.Done():
				attemptErrs = append(attemptErrs, ctx.Err())
				return zero, newAggregateError(attempts, attemptErrs)
			}
		}
	}
}

// Do is Retry for operations with no result value.
func Do(ctx context.Context, policy RetryPolicy, op func(context.Context) error) error {
	_, err := Retry(ctx, policy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}
