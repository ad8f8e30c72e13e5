// Package tracker keeps a cached view of the current block height for one
// network, so confirmation loops do not have to issue a height query on
// every poll round.
package tracker

import (
	"context"
	mathRand "math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/tradeport-labs/gateway/client"
	"github.com/tradeport-labs/gateway/executor"
	"github.com/tradeport-labs/gateway/types"
)

// HeightTracker polls block height across the endpoint pool in a background
// goroutine, rotating endpoints round-robin and backing off after errors.
type HeightTracker struct {
	pool   *client.Pool
	config *types.Config
	logger types.Logger

	latest   atomic.Uint64
	observed atomic.Bool

	chStop chan struct{}
	wg     sync.WaitGroup

	executor.StartStopOnce
}

// NewHeightTracker returns an unstarted tracker.
func NewHeightTracker(pool *client.Pool, config *types.Config) *HeightTracker {
	return &HeightTracker{
		pool:   pool,
		config: config,
		logger: config.Logger,
		chStop: make(chan struct{}),
	}
}

func (ht *HeightTracker) Start() error {
	if !ht.OkayToStart() {
		return errors.New("HeightTracker is already started")
	}
	ht.wg.Add(1)
	go ht.pollHeights()
	return nil
}

func (ht *HeightTracker) Stop() error {
	if !ht.OkayToStop() {
		return errors.New("HeightTracker is already stopped")
	}
	close(ht.chStop)
	ht.wg.Wait()
	return nil
}

// Latest returns the most recently observed height. ok is false until the
// first successful poll.
func (ht *HeightTracker) Latest() (uint64, bool) {
	return ht.latest.Load(), ht.observed.Load()
}

func (ht *HeightTracker) pollHeights() {
	defer ht.wg.Done()

	sleeper := executor.NewBackoffSleeper()
	for {
		endpoint := ht.pool.Next()
		ctx, cancel := context.WithTimeout(context.Background(), ht.config.RequestTimeout)
		height, err := endpoint.BlockHeight(ctx)
		cancel()

		wait := withJitter(ht.config.PollInterval)
		if err != nil {
			ht.logger.Debugw("HeightTracker: height query failed",
				"endpoint", endpoint.URL(),
				"err", err,
			)
			sleeper.Sleep()
		} else {
			sleeper.Reset()
			ht.latest.Store(height)
			ht.observed.Store(true)
		}

		select {
		case <-ht.chStop:
			return
		case <-time.After(wait):
			continue
		}
	}
}

// withJitter adds +/- 10% to a duration
func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return d
	}
	jitter := mathRand.Intn(int(d) / 5)
	jitter = jitter - (jitter / 2)
	return time.Duration(int(d) + jitter)
}
