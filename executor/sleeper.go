package executor

import (
	"sync"
	"time"

	"github.com/jpillora/backoff"
	"github.com/pkg/errors"
	"github.com/tevino/abool"
)

// Sleeper interface is used for tasks that need to be done on some
// interval, like reconnecting or re-polling after errors.
type Sleeper interface {
	Reset()
	Sleep()
	Duration() time.Duration
}

// BackoffSleeper is a sleeper that backs off on subsequent attempts: no wait
// on the first call, then from 1 second up to 10 seconds.
type BackoffSleeper struct {
	backoff.Backoff
	beenRun *abool.AtomicBool
}

var _ Sleeper = (*BackoffSleeper)(nil)

// NewBackoffSleeper returns a BackoffSleeper with the default 1s-10s range.
func NewBackoffSleeper() *BackoffSleeper {
	return &BackoffSleeper{
		Backoff: backoff.Backoff{
			Min: 1 * time.Second,
			Max: 10 * time.Second,
		},
		beenRun: abool.New(),
	}
}

// Sleep waits for the given duration, incrementing the back off.
func (bs *BackoffSleeper) Sleep() {
	if bs.beenRun.SetToIf(false, true) {
		return
	}
	time.Sleep(bs.Backoff.Duration())
}

// Duration returns the current duration value.
func (bs *BackoffSleeper) Duration() time.Duration {
	if !bs.beenRun.IsSet() {
		return 0
	}
	return bs.ForAttempt(bs.Attempt())
}

// Reset resets the backoff intervals.
func (bs *BackoffSleeper) Reset() {
	bs.beenRun.UnSet()
	bs.Backoff.Reset()
}

// StartStopOnce guards services that must start and stop exactly once.
type StartStopOnce struct {
	state StartStopOnceState
	sync.RWMutex
}

type StartStopOnceState int

const (
	StartStopOnce_Unstarted StartStopOnceState = iota
	StartStopOnce_Started
	StartStopOnce_Stopped
)

func (once *StartStopOnce) StartOnce(name string, fn func() error) error {
	once.Lock()
	defer once.Unlock()

	if once.state != StartStopOnce_Unstarted {
		return errors.Errorf("%v has already started once", name)
	}
	once.state = StartStopOnce_Started

	return fn()
}

func (once *StartStopOnce) StopOnce(name string, fn func() error) error {
	once.Lock()
	defer once.Unlock()

	if once.state != StartStopOnce_Started {
		return errors.Errorf("%v has already stopped once", name)
	}
	once.state = StartStopOnce_Stopped

	return fn()
}

func (once *StartStopOnce) OkayToStart() (ok bool) {
	once.Lock()
	defer once.Unlock()

	if once.state != StartStopOnce_Unstarted {
		return false
	}
	once.state = StartStopOnce_Started
	return true
}

func (once *StartStopOnce) OkayToStop() (ok bool) {
	once.Lock()
	defer once.Unlock()

	if once.state != StartStopOnce_Started {
		return false
	}
	once.state = StartStopOnce_Stopped
	return true
}
