// Package testutil provides deterministic substitutes for the
// simulator's sources of nondeterminism, so tests and golden traces are
// byte-for-byte reproducible.
package testutil

import "fmt"

// FixedTokenGenerator returns sequential session tokens with a fixed
// prefix: "boot-1", "boot-2", ...
//
// Unlike machine.UUIDv7Generator, the same scenario with the same
// generator produces identical traces, which is what golden comparison
// needs.
type FixedTokenGenerator struct {
	prefix string
	n      int
}

// NewFixedTokenGenerator creates a generator with the given prefix.
// An empty prefix defaults to "boot".
func NewFixedTokenGenerator(prefix string) *FixedTokenGenerator {
	if prefix == "" {
		prefix = "boot"
	}
	return &FixedTokenGenerator{prefix: prefix}
}

// Generate returns the next token in sequence.
//
// Implements machine.TokenGenerator.
func (g *FixedTokenGenerator) Generate() string {
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
