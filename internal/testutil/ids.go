package testutil

import (
	"fmt"
	"sync"
)

// SequenceIDs generates predictable identifiers: prefix-0001, prefix-0002…
//
// This enables deterministic test execution and golden snapshot comparison.
// The same scenario with a fresh SequenceIDs produces byte-identical
// characters and event logs.
//
// Unlike engine.FixedGenerator, which returns a fixed list and panics when
// exhausted, SequenceIDs never runs out.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequenceIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceIDs creates a generator. An empty prefix becomes "id".
func NewSequenceIDs(prefix string) *SequenceIDs {
	if prefix == "" {
		prefix = "id"
	}
	return &SequenceIDs{prefix: prefix}
}

// Generate returns the next identifier.
//
// Implements engine.IDGenerator.
func (g *SequenceIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
