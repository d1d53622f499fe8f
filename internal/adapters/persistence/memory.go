package persistence

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	list      [][]byte
	expiresAt time.Time
}

// MemoryBackend keeps entries in process. Expired entries are hidden on read
// and removed by the reaper when one is running.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	now     func() time.Time
	reaper  *reaper
}

type MemoryOption func(*MemoryBackend)

// WithClock overrides the time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *MemoryBackend) { m.now = now }
}

// WithReapInterval starts a background sweep of expired entries.
func WithReapInterval(d time.Duration) MemoryOption {
	return func(m *MemoryBackend) {
		if d > 0 {
			m.reaper = startReaper(d, m.sweep)
		}
	}
}

func NewMemoryBackend(opts ...MemoryOption) *MemoryBackend {
	m := &MemoryBackend{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MemoryBackend) live(key string) (*memoryEntry, bool) {
	e, ok := m.entries[key]
	if !ok || !m.now().Before(e.expiresAt) {
		return nil, false
	}
	return e, true
}

func (m *MemoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	v := make([]byte, len(value))
	copy(v, value)

	m.mu.Lock()
	m.entries[key] = &memoryEntry{value: v, expiresAt: m.now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.live(key)
	if !ok || e.value == nil {
		return nil, ErrNotFound
	}
	return e.value, nil
}

func (m *MemoryBackend) MGet(_ context.Context, keys []string) ([][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([][]byte, len(keys))
	for i, key := range keys {
		if e, ok := m.live(key); ok {
			out[i] = e.value
		}
	}
	return out, nil
}

func (m *MemoryBackend) PushFront(_ context.Context, key string, value []byte, ttl time.Duration) error {
	v := make([]byte, len(value))
	copy(v, value)

	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live(key)
	if !ok {
		e = &memoryEntry{}
		m.entries[key] = e
	}
	e.list = append([][]byte{v}, e.list...)
	e.expiresAt = m.now().Add(ttl)
	return nil
}

func (m *MemoryBackend) Range(_ context.Context, key string) ([][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.live(key)
	if !ok {
		return nil, nil
	}
	out := make([][]byte, len(e.list))
	copy(out, e.list)
	return out, nil
}

func (m *MemoryBackend) sweep(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, key)
		}
	}
}

// Len is the number of entries held, expired or not.
func (m *MemoryBackend) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *MemoryBackend) Close() error {
	if m.reaper != nil {
		m.reaper.Stop()
		m.reaper = nil
	}
	return nil
}
