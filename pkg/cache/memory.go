package cache

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultMemoryEntries = 10000

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is a bounded in-process cache with per-entry expiry. It is used
// for single-instance deployments and tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries *lru.Cache[string, memoryEntry]
	now     func() time.Time
}

// NewMemoryStore builds a store holding at most maxEntries keys.
func NewMemoryStore(maxEntries int) (*MemoryStore, error) {
	if maxEntries <= 0 {
		maxEntries = defaultMemoryEntries
	}
	entries, err := lru.New[string, memoryEntry](maxEntries)
	if err != nil {
		return nil, err
	}
	return &MemoryStore{entries: entries, now: time.Now}, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries.Get(key)
	if !ok {
		return nil, ErrMiss
	}
	if !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		s.entries.Remove(key)
		return nil, ErrMiss
	}
	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: make([]byte, len(value))}
	copy(entry.value, value)
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	s.entries.Add(key, entry)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	s.entries.Remove(key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	return s.entries.Len()
}
