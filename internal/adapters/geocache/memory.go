// Package geocache holds the process-wide geocode cache.
package geocache

import (
	"context"
	"sync"

	"eventhour/internal/adapters/observability"
	"eventhour/internal/domain"
)

// Memory is an unbounded, append-only GeoCache. Entries live until the process exits, so a
// location that moves on the provider side stays stale until restart.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]domain.GeocodeResult
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]domain.GeocodeResult)}
}

func (m *Memory) Get(_ context.Context, key string) (domain.GeocodeResult, bool) {
	m.mu.RLock()
	r, ok := m.entries[key]
	m.mu.RUnlock()
	if ok {
		observability.ObserveCache("geocode_memory", "hit")
	} else {
		observability.ObserveCache("geocode_memory", "miss")
	}
	return r, ok
}

// Set stores r; concurrent writers for one key are last-write-wins.
func (m *Memory) Set(_ context.Context, key string, r domain.GeocodeResult) {
	m.mu.Lock()
	m.entries[key] = r
	m.mu.Unlock()
	observability.ObserveCache("geocode_memory", "set")
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
