package cache

import (
	"context"
	"sync"
	"time"

	"github.com/samber/mo"
)

type memoryEntry[T any] struct {
	value     T
	expiresAt time.Time
}

// MemoryStore is a process-local Store. Expired entries are dropped lazily
// on Get; there is no size bound.
type MemoryStore[T any] struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry[T]
	ttl     time.Duration
	now     Clock
}

func NewMemoryStore[T any](ttl time.Duration) *MemoryStore[T] {
	return NewMemoryStoreWithClock[T](ttl, time.Now)
}

func NewMemoryStoreWithClock[T any](ttl time.Duration, now Clock) *MemoryStore[T] {
	return &MemoryStore[T]{
		entries: make(map[string]memoryEntry[T]),
		ttl:     ttl,
		now:     now,
	}
}

func (m *MemoryStore[T]) Get(_ context.Context, key string) (mo.Option[T], error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return mo.None[T](), nil
	}

	if !m.now().Before(entry.expiresAt) {
		m.mu.Lock()
		// Re-check under the write lock; a Set may have landed in between.
		if current, still := m.entries[key]; still && !m.now().Before(current.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return mo.None[T](), nil
	}
	return mo.Some(entry.value), nil
}

// Set never fails.
func (m *MemoryStore[T]) Set(_ context.Context, key string, value T) error {
	m.mu.Lock()
	m.entries[key] = memoryEntry[T]{value: value, expiresAt: m.now().Add(m.ttl)}
	m.mu.Unlock()
	return nil
}

// Len reports the number of entries held, expired or not.
func (m *MemoryStore[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
