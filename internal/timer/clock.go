package timer

import "time"

// Clock is a monotonic microsecond source.
type Clock interface {
	NowMicros() int64
}

// SteadyClock reads the process monotonic clock. Values are microseconds
// since the clock was created plus one, so they are always positive.
type SteadyClock struct {
	start time.Time
}

// NewSteadyClock creates a SteadyClock anchored at the current instant.
func NewSteadyClock() *SteadyClock {
	return &SteadyClock{start: time.Now()}
}

// NowMicros returns elapsed microseconds since creation, plus one.
func (c *SteadyClock) NowMicros() int64 {
	return time.Since(c.start).Microseconds() + 1
}
