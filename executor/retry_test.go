package executor_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradeport-labs/gateway/executor"
)

func TestRetry_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	val, err := executor.Retry(context.Background(), executor.RetryPolicy{MaxRetries: 3}, func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, val)
	assert.Equal(t, 1, calls)
}

func TestRetry_ExhaustsBudgetAndAggregates(t *testing.T) {
	calls := 0
	_, err := executor.Retry(context.Background(), executor.RetryPolicy{MaxRetries: 2}, func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.Errorf("boom %d", calls)
	})
	require.Error(t, err)

	// 1 initial + 2 retries.
	assert.Equal(t, 3, calls)

	var aggErr *executor.AggregateError
	require.ErrorAs(t, err, &aggErr)
	assert.Equal(t, 3, aggErr.Attempts)
	require.Len(t, aggErr.Errors(), 3)
	assert.Contains(t, aggErr.Error(), "boom 1")
	assert.Contains(t, aggErr.Error(), "boom 3")
}

func TestRetry_ZeroRetriesMeansOneAttempt(t *testing.T) {
	calls := 0
	start := time.Now()
	_, err := executor.Retry(context.Background(), executor.RetryPolicy{MaxRetries: 0, RetryDelay: time.Second}, func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("boom")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	// Failure surfaces immediately, without sleeping the retry delay.
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestRetry_RecoversAfterFailures(t *testing.T) {
	calls := 0
	val, err := executor.Retry(context.Background(), executor.RetryPolicy{MaxRetries: 5}, func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", val)
	assert.Equal(t, 3, calls)
}

func TestRetry_SoftDeadlineShortCircuits(t *testing.T) {
	calls := 0
	policy := executor.RetryPolicy{MaxRetries: 10, Timeout: 20 * time.Millisecond}
	_, err := executor.Retry(context.Background(), policy, func(ctx context.Context) (int, error) {
		calls++
		time.Sleep(30 * time.Millisecond)
		return 0, errors.New("slow failure")
	})
	require.Error(t, err)

	// The deadline passed during the first attempt, so no retry was made.
	assert.Equal(t, 1, calls)
	require.ErrorIs(t, err, executor.ErrRetryDeadline)
}

func TestRetry_ContextCancelStopsDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := executor.Do(ctx, executor.RetryPolicy{MaxRetries: 3, RetryDelay: 5 * time.Second}, func(ctx context.Context) error {
		return errors.New("boom")
	})
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}
