package testutil

import (
	"fmt"
	"sync"
)

// SequenceGenerator returns UUID-shaped ids with an increasing counter in
// the last group: 00000000-0000-7000-8000-000000000001, ...
//
// Store records written with it are byte-identical across runs.
type SequenceGenerator struct {
	mu sync.Mutex
	n  uint64
}

// NewSequenceGenerator creates a generator whose first id ends in 1.
func NewSequenceGenerator() *SequenceGenerator {
	return &SequenceGenerator{}
}

// Generate returns the next id.
func (g *SequenceGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("00000000-0000-7000-8000-%012d", g.n)
}
