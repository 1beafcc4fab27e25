package testutil

import (
	"time"

	"github.com/MikeSquared-Agency/engage/scheduler"
)

// ManualClock implements scheduler.Clock with explicitly advanced time.
// Timers fire synchronously from Advance in deadline order.
type ManualClock struct {
	now    time.Time
	timers []*manualTask
}

// NewManualClock starts at a fixed reference instant.
func NewManualClock() *ManualClock {
	return &ManualClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *ManualClock) Now() time.Time { return c.now }

func (c *ManualClock) AfterFunc(d time.Duration, fn func()) scheduler.Task {
	t := &manualTask{clock: c, at: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward and fires every timer whose deadline
// has passed.
func (c *ManualClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
	for {
		var due *manualTask
		for _, t := range c.timers {
			if !t.cancelled && !t.fired && !t.at.After(c.now) {
				if due == nil || t.at.Before(due.at) {
					due = t
				}
			}
		}
		if due == nil {
			return
		}
		due.fired = true
		due.fn()
	}
}

// PendingTimers reports how many timers are armed but not yet fired or
// cancelled.
func (c *ManualClock) PendingTimers() int {
	n := 0
	for _, t := range c.timers {
		if !t.cancelled && !t.fired {
			n++
		}
	}
	return n
}

type manualTask struct {
	clock     *ManualClock
	at        time.Time
	fn        func()
	fired     bool
	cancelled bool
}

func (t *manualTask) Cancel() bool {
	if t.fired || t.cancelled {
		return false
	}
	t.cancelled = true
	return true
}
