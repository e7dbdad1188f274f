package websession

import (
	"sync"
	"time"
)

// Clock supplies the current instant to the store.
//
// It is injectable so tests can simulate the passage of time without
// sleeping: retrieve with a clock moved past the idle timeout and the
// session reports expired.
type Clock interface {
	Now() time.Time
}

// systemClock reads the system time in UTC.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns the default UTC system clock.
func SystemClock() Clock { return systemClock{} }

// ManualClock is a Clock whose current instant is set explicitly.
// It is safe for concurrent use.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock creates a ManualClock starting at the given instant.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the clock's current instant.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to the given instant.
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
