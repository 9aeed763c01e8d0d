// Package cache provides the key/value stores backing the item read-through
// cache. Every backend stores opaque bytes under exact keys with a TTL.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Store is the contract shared by every cache backend.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// IsMiss reports whether err signals an absent key.
func IsMiss(err error) bool {
	return errors.Is(err, ErrMiss)
}
