package calendar

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Memory is an in-process Store used for dry runs and tests.
type Memory struct {
	mu      sync.Mutex
	entries map[string]Entry
	nextID  int
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]Entry)}
}

// ListDay returns entries overlapping the 24 hours starting at day, in ID
// order for deterministic tests.
func (m *Memory) ListDay(_ context.Context, day time.Time) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	dayEnd := day.Add(24 * time.Hour)
	var out []Entry
	for _, e := range m.entries {
		if e.Start.Before(dayEnd) && e.End.After(day) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Create stores a new entry under a fresh ID.
func (m *Memory) Create(_ context.Context, e Entry) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	e.ID = fmt.Sprintf("mem-%04d", m.nextID)
	m.entries[e.ID] = e
	return e, nil
}

// Update overwrites the entry with e's ID.
func (m *Memory) Update(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[e.ID]; !ok {
		return fmt.Errorf("entry not found: %s", e.ID)
	}
	m.entries[e.ID] = e
	return nil
}

// Len returns the number of stored entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
