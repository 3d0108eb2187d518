package ident

import (
	"fmt"
	"sync"
	"time"
)

// Generator produces collision-resistant string identifiers scoped by an
// entity-kind prefix. IDs have the form {prefix}_{unixMillis}_{n}, where n is
// a monotonic counter owned by this generator. Uniqueness is guaranteed only
// within a single generator; callers that need a fresh sequence (e.g. the
// migration driver) call Reset.
type Generator struct {
	mu      sync.Mutex
	counter uint64
	now     func() time.Time
}

// New creates a Generator whose counter starts at zero.
func New() *Generator {
	return &Generator{now: time.Now}
}

// NewWithClock creates a Generator with an injected clock, for deterministic tests.
func NewWithClock(now func() time.Time) *Generator {
	return &Generator{now: now}
}

// NewID returns the next identifier for the given prefix. The counter is
// incremented on every call, across all prefixes.
func (g *Generator) NewID(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("%s_%d_%d", prefix, g.now().UnixMilli(), g.counter)
}

// Reset restarts the counter at zero.
func (g *Generator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter = 0
}
