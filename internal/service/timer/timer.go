// Package timer provides the per-question countdown clock.
package timer

import (
	"sync"
	"sync/atomic"
	"time"
)

// Countdown is a single countdown clock bound to the active question.
// It ticks at a fixed interval and invokes the expiry callback exactly once
// when the configured limit elapses, then stops itself.
//
// The callback is fixed at construction so that expiry always calls back into
// current controller state rather than a snapshot captured when the countdown
// was armed. Reset always restores the full limit for the new question and
// cancels any previous countdown, so a stale tick can never double-advance.
type Countdown struct {
	mu        sync.Mutex
	interval  time.Duration
	onExpire  func()
	cancel    chan struct{} // nil when no countdown is running
	remaining atomic.Int64  // ticks left, for the status surface
}

// New creates a countdown that ticks at the given interval. A non-positive
// interval falls back to one second.
func New(interval time.Duration, onExpire func()) *Countdown {
	if interval <= 0 {
		interval = time.Second
	}
	return &Countdown{
		interval: interval,
		onExpire: onExpire,
	}
}

// Reset cancels any running countdown and arms a fresh one for the full
// limit. Limits are rounded up to a whole number of ticks.
func (c *Countdown) Reset(limit time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()

	ticks := int64((limit + c.interval - 1) / c.interval)
	if ticks < 1 {
		ticks = 1
	}
	c.remaining.Store(ticks)

	cancel := make(chan struct{})
	c.cancel = cancel
	go c.run(ticks, cancel)
}

// Stop cancels the running countdown, if any. Idempotent.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Countdown) stopLocked() {
	if c.cancel != nil {
		close(c.cancel)
		c.cancel = nil
	}
	c.remaining.Store(0)
}

// Remaining returns the time left on the running countdown.
func (c *Countdown) Remaining() time.Duration {
	return time.Duration(c.remaining.Load()) * c.interval
}

func (c *Countdown) run(ticks int64, cancel chan struct{}) {
	t := time.NewTicker(c.interval)
	defer t.Stop()

	for {
		select {
		case <-cancel:
			return
		case <-t.C:
			ticks--
			c.remaining.Store(ticks)
			if ticks > 0 {
				continue
			}

			// Fire only if this countdown is still the active one. A Stop or
			// Reset racing this tick wins and the expiry is swallowed.
			c.mu.Lock()
			active := c.cancel == cancel
			if active {
				c.cancel = nil
			}
			c.mu.Unlock()

			if active && c.onExpire != nil {
				c.onExpire()
			}
			return
		}
	}
}
