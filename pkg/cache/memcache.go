package cache

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// memcache treats expirations beyond 30 days as absolute unix timestamps.
const memcacheRelativeLimit = 30 * 24 * time.Hour

type memcacheClient interface {
	Get(key string) (*memcache.Item, error)
	Set(item *memcache.Item) error
	Delete(key string) error
	Ping() error
}

// MemcacheStore keeps cache entries in a memcached cluster.
type MemcacheStore struct {
	client memcacheClient
	now    func() time.Time
}

// NewMemcacheStore dials the provided servers lazily.
func NewMemcacheStore(servers []string, timeout time.Duration) (*MemcacheStore, error) {
	if len(servers) == 0 {
		return nil, errors.New("memcache servers are required")
	}
	client := memcache.New(servers...)
	if timeout > 0 {
		client.Timeout = timeout
	}
	return &MemcacheStore{client: client, now: time.Now}, nil
}

func (s *MemcacheStore) Get(_ context.Context, key string) ([]byte, error) {
	item, err := s.client.Get(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("memcache get: %w", err)
	}
	return item.Value, nil
}

func (s *MemcacheStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(&memcache.Item{
		Key:        key,
		Value:      value,
		Expiration: s.expiration(ttl),
	}); err != nil {
		return fmt.Errorf("memcache set: %w", err)
	}
	return nil
}

func (s *MemcacheStore) Delete(_ context.Context, key string) error {
	err := s.client.Delete(key)
	if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		return fmt.Errorf("memcache delete: %w", err)
	}
	return nil
}

func (s *MemcacheStore) Ping(context.Context) error {
	return s.client.Ping()
}

func (s *MemcacheStore) expiration(ttl time.Duration) int32 {
	if ttl <= 0 {
		return 0
	}
	if ttl <= memcacheRelativeLimit {
		secs := int32(ttl / time.Second)
		if secs == 0 {
			secs = 1
		}
		return secs
	}
	abs := s.now().Add(ttl).Unix()
	if abs > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(abs)
}
