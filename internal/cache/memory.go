package cache

import (
	"context"
	"sync"
	"time"

	"github.com/qrshield/engine/internal/engine"
)

// MemoryStore is a thread-safe in-process TTL cache. Expired entries are
// dropped lazily on read and swept opportunistically on write.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration

	// now is swapped in tests to control expiry.
	now func() time.Time
}

type memoryEntry struct {
	result    engine.Result
	expiresAt time.Time
}

// NewMemoryStore creates a memory cache with the given TTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns a cached result if present and unexpired.
func (m *MemoryStore) Get(_ context.Context, key string) (*engine.Result, bool) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok || m.now().After(entry.expiresAt) {
		return nil, false
	}
	res := entry.result
	return &res, true
}

// Set stores a result under key.
func (m *MemoryStore) Set(_ context.Context, key string, res *engine.Result) {
	if res == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) > 0 && len(m.entries)%1024 == 0 {
		m.sweepLocked()
	}
	m.entries[key] = memoryEntry{result: *res, expiresAt: m.now().Add(m.ttl)}
}

// Close releases the store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]memoryEntry)
	return nil
}

func (m *MemoryStore) sweepLocked() {
	now := m.now()
	for k, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, k)
		}
	}
}
