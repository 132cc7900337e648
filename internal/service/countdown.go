package service

import (
	"sync"
	"time"

	"github.com/aliskhannn/lexique-shimaore-bot/internal/clock"
)

// Countdown is a cancellable per-question timer that ticks once per second.
//
// Every Start bumps a generation counter; ticks scheduled by an earlier generation
// see a different value and return without calling back. onExpire is called at most
// once per Start.
type Countdown struct {
	clock clock.Clock

	mu         sync.Mutex
	generation uint64
	timer      clock.Timer
	remaining  int
}

// NewCountdown creates a stopped countdown.
func NewCountdown(c clock.Clock) *Countdown {
	return &Countdown{clock: c}
}

// Start (re)starts the countdown from seconds. onTick receives the remaining seconds
// after each elapsed second while they are above zero, onExpire runs when they reach zero.
// Callbacks run on the clock goroutine without the countdown lock held.
func (c *Countdown) Start(seconds int, onTick func(remaining int), onExpire func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()
	c.generation++
	c.remaining = seconds

	if seconds <= 0 {
		gen := c.generation
		c.timer = c.clock.AfterFunc(0, func() { c.fire(gen, onTick, onExpire) })
		return
	}
	c.schedule(c.generation, onTick, onExpire)
}

// Stop cancels the countdown. Pending callbacks of the current generation are dropped.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.generation++
}

// Remaining returns the seconds left in the current countdown.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

func (c *Countdown) stopLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Countdown) schedule(gen uint64, onTick func(int), onExpire func()) {
	c.timer = c.clock.AfterFunc(time.Second, func() { c.fire(gen, onTick, onExpire) })
}

func (c *Countdown) fire(gen uint64, onTick func(int), onExpire func()) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}

	if c.remaining > 0 {
		c.remaining--
	}
	remaining := c.remaining
	if remaining > 0 {
		c.schedule(gen, onTick, onExpire)
	} else {
		c.timer = nil
		c.generation++
	}
	c.mu.Unlock()

	if remaining > 0 {
		if onTick != nil {
			onTick(remaining)
		}
		return
	}
	if onExpire != nil {
		onExpire()
	}
}
