package repository

import (
	"sync"
	"time"
)

// Clock hands out strictly increasing UTC timestamps at microsecond
// resolution, the finest resolution Postgres keeps. Two mutations landing in
// the same microsecond still get distinct, ordered updated_at values.
type Clock struct {
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

// NewClock returns a Clock backed by time.Now.
func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// NewClockFunc returns a Clock backed by now. Tests use it to freeze time.
func NewClockFunc(now func() time.Time) *Clock {
	return &Clock{now: now}
}

// Now returns a timestamp strictly after every earlier result of Now.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC().Truncate(time.Microsecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Microsecond)
	}
	c.last = t
	return t
}

// Observe raises the floor to t so the next Now is after it. Backends call
// it with timestamps read back from storage.
func (c *Clock) Observe(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.After(c.last) {
		c.last = t.UTC()
	}
}
