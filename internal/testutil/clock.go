package testutil

import "sync"

// DeterministicClock is a microsecond clock for tests that advances by a
// fixed step on every read.
//
// It satisfies timer.Clock, so timer nodes in auto mode produce the same
// deltas on every run.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu   sync.Mutex
	now  int64
	step int64
}

// NewDeterministicClock creates a clock at 0 that advances stepMicros per
// NowMicros call.
//
// The first call to NowMicros() returns stepMicros.
func NewDeterministicClock(stepMicros int64) *DeterministicClock {
	return &DeterministicClock{step: stepMicros}
}

// NowMicros advances the clock by one step and returns the new time.
func (c *DeterministicClock) NowMicros() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += c.step
	return c.now
}

// Current returns the current time without advancing.
func (c *DeterministicClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d microseconds without a read.
func (c *DeterministicClock) Advance(d int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += d
}

// SetStep changes the per-read step.
func (c *DeterministicClock) SetStep(stepMicros int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.step = stepMicros
}

// Reset moves the clock back to 0.
//
// Used for test reuse. After Reset(), the next call to NowMicros() returns
// one step.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = 0
}
