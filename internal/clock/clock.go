// internal/clock/clock.go

// Package clock provides the pausable countdown used around rounds. Each
// browser client runs its own countdown and reports expiry as a game event;
// because the clocks are never synchronized across clients, minor skew is an
// accepted trade-off of avoiding per-second network traffic. The server
// reuses the same type for the opt-in round failsafe.
package clock

import (
	"sync"
	"time"
)

// Countdown runs a single-shot timer toward zero and invokes the expiry
// callback from its own goroutine. Start resets to the full duration; Pause
// and Resume preserve the remaining time across the gap.
type Countdown struct {
	mu        sync.Mutex
	duration  time.Duration
	remaining time.Duration
	startedAt time.Time
	timer     *time.Timer
	running   bool
	onExpire  func()
}

// New returns a stopped countdown of the given duration. onExpire may be nil.
func New(d time.Duration, onExpire func()) *Countdown {
	return &Countdown{
		duration: d,
		onExpire: onExpire,
	}
}

// Start (re)arms the countdown from its full duration, discarding any paused
// remainder.
func (c *Countdown) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.remaining = c.duration
	c.armLocked()
}

// Pause freezes the countdown, remembering how much time is left. Pausing a
// stopped or already-paused countdown is a no-op.
func (c *Countdown) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.timer.Stop()
	c.remaining -= time.Since(c.startedAt)
	if c.remaining < 0 {
		c.remaining = 0
	}
	c.running = false
}

// Resume continues a paused countdown from where it stopped. Resuming a
// running countdown is a no-op; resuming one that was never started arms it
// from the full duration.
func (c *Countdown) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	if c.remaining <= 0 {
		c.remaining = c.duration
	}
	c.armLocked()
}

// Stop cancels the countdown entirely. The expiry callback will not fire.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.remaining = 0
}

// Running reports whether the countdown is currently ticking.
func (c *Countdown) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Remaining returns the time left, accounting for elapsed run time.
func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return c.remaining
	}
	left := c.remaining - time.Since(c.startedAt)
	if left < 0 {
		left = 0
	}
	return left
}

func (c *Countdown) armLocked() {
	c.startedAt = time.Now()
	c.running = true
	c.timer = time.AfterFunc(c.remaining, func() {
		c.mu.Lock()
		c.running = false
		c.remaining = 0
		fn := c.onExpire
		c.mu.Unlock()
		if fn != nil {
			fn()
		}
	})
}

func (c *Countdown) stopLocked() {
	if c.timer != nil {
		c.timer.Stop()
	}
	c.running = false
}
