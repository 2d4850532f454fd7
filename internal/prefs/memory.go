package prefs

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	value     string
	updatedAt time.Time
}

// Memory is a process-local backend for development and tests.
type Memory struct {
	mu   sync.Mutex
	data map[string]map[string]memEntry
	now  func() time.Time
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]map[string]memEntry), now: time.Now}
}

func (m *Memory) Get(_ context.Context, visitor, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.data[visitor][key]
	return e.value, ok, nil
}

func (m *Memory) Set(_ context.Context, visitor, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data[visitor] == nil {
		m.data[visitor] = make(map[string]memEntry)
	}
	m.data[visitor][key] = memEntry{value: value, updatedAt: m.now()}
	return nil
}

func (m *Memory) Cleanup(_ context.Context, months int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.now().AddDate(0, -months, 0)
	var n int64
	for visitor, entries := range m.data {
		for key, e := range entries {
			if e.updatedAt.Before(cutoff) {
				delete(entries, key)
				n++
			}
		}
		if len(entries) == 0 {
			delete(m.data, visitor)
		}
	}
	return n, nil
}

func (m *Memory) Close() error { return nil }
