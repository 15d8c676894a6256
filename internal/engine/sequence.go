package engine

import "sync/atomic"

// Sequence is a monotonic counter. The engine uses one for node ids and
// one for update frames.
//
// Values are never reused: a destroyed node's id stays retired, and a
// loaded graph resumes from the saved counter.
type Sequence struct {
	n atomic.Uint64
}

// NewSequence creates a sequence whose first Next returns 1.
func NewSequence() *Sequence {
	return &Sequence{}
}

// NewSequenceAt creates a sequence whose first Next returns start+1.
func NewSequenceAt(start uint64) *Sequence {
	s := &Sequence{}
	s.n.Store(start)
	return s
}

// Next increments the sequence and returns the new value.
func (s *Sequence) Next() uint64 {
	return s.n.Add(1)
}

// Current returns the last value handed out, or the start value.
func (s *Sequence) Current() uint64 {
	return s.n.Load()
}
