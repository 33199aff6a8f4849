package testutil

import "fmt"

// SequenceGenerator produces handles of the form "<prefix>-001",
// "<prefix>-002", and so on. It satisfies model.HandleGenerator.
//
// Unlike model.FixedGenerator it never runs out, which suits scenarios whose
// object count is not known up front.
//
// Thread-safety: safe for concurrent use; the counter is locked.
type SequenceGenerator struct {
	prefix  string
	counter *Counter
}

// NewSequenceGenerator creates a generator. An empty prefix uses "h".
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	if prefix == "" {
		prefix = "h"
	}
	return &SequenceGenerator{prefix: prefix, counter: NewCounter()}
}

// Generate returns the next handle.
func (g *SequenceGenerator) Generate() string {
	return fmt.Sprintf("%s-%03d", g.prefix, g.counter.Next())
}

// Reset restarts the sequence at 1.
func (g *SequenceGenerator) Reset() {
	g.counter.Reset()
}
