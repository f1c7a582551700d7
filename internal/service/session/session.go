// Package session generates identifiers for button sessions.
package session

import (
	"fmt"
	"sync"
)

// Generator hands out session IDs of the form "<operator>-session-<n>".
// Counters are kept per operator and start at 1.
type Generator struct {
	mu       sync.Mutex
	counters map[string]uint64
}

// New creates a generator with no sessions.
func New() *Generator {
	return &Generator{counters: make(map[string]uint64)}
}

// Next returns the next session ID for an operator.
func (g *Generator) Next(operatorId string) string {
	g.mu.Lock()
	g.counters[operatorId]++
	n := g.counters[operatorId]
	g.mu.Unlock()
	return fmt.Sprintf("%s-session-%d", operatorId, n)
}

// Count returns how many sessions were generated for an operator.
func (g *Generator) Count(operatorId string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counters[operatorId]
}
