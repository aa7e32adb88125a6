package platformtest

import (
	"sort"
	"sync"
	"time"
)

// Clock is a manual clock: Sleep advances virtual time instantly and fires
// callbacks registered with After whose deadline has been reached.
type Clock struct {
	mu     sync.Mutex
	now    time.Time
	start  time.Time
	timers []timer
	sleeps []time.Duration
}

type timer struct {
	at time.Time
	fn func()
}

// NewClock returns a clock starting at a fixed instant.
func NewClock() *Clock {
	start := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	return &Clock{now: start, start: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Elapsed returns the virtual time since the clock was created.
func (c *Clock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now.Sub(c.start)
}

// Sleeps returns every duration passed to Sleep, in order.
func (c *Clock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}

// After schedules fn to run once virtual time reaches start+d.
func (c *Clock) After(d time.Duration, fn func()) {
	c.mu.Lock()
	c.timers = append(c.timers, timer{at: c.start.Add(d), fn: fn})
	sort.SliceStable(c.timers, func(i, j int) bool { return c.timers[i].at.Before(c.timers[j].at) })
	due := c.collectDueLocked()
	c.mu.Unlock()
	for _, fn := range due {
		fn()
	}
}

func (c *Clock) Sleep(d time.Duration) {
	c.mu.Lock()
	c.sleeps = append(c.sleeps, d)
	if d > 0 {
		c.now = c.now.Add(d)
	}
	due := c.collectDueLocked()
	c.mu.Unlock()
	for _, fn := range due {
		fn()
	}
}

func (c *Clock) collectDueLocked() []func() {
	var due []func()
	keep := c.timers[:0]
	for _, t := range c.timers {
		if !t.at.After(c.now) {
			due = append(due, t.fn)
			continue
		}
		keep = append(keep, t)
	}
	c.timers = keep
	return due
}
