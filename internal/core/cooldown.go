package core

import (
	"sync"
	"time"
)

// Cooldown paces submission frequency. Arm sets a wall-clock deadline of
// now + window; the window always runs to completion and is unrelated to
// when (or whether) any in-flight generation finishes.
type Cooldown struct {
	mu       sync.Mutex
	window   time.Duration
	deadline time.Time
	now      func() time.Time
}

type CooldownOption func(*Cooldown)

// WithClock replaces the time source, for tests.
func WithClock(now func() time.Time) CooldownOption {
	return func(c *Cooldown) {
		c.now = now
	}
}

func NewCooldown(window time.Duration, opts ...CooldownOption) *Cooldown {
	c := &Cooldown{
		window: window,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cooldown) Arm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deadline = c.now().Add(c.window)
}

// Remaining reports how long until the window lapses; zero when inactive.
func (c *Cooldown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	remaining := c.deadline.Sub(c.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (c *Cooldown) Active() bool {
	return c.Remaining() > 0
}
