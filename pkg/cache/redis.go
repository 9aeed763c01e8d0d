package cache

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/inventory-backend/pkg/redis"
)

type redisBackend interface {
	GetBytes(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}

// RedisStore keeps cache entries in redis under their exact keys.
type RedisStore struct {
	client redisBackend
}

// NewRedisStore wraps the shared redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.client.GetBytes(ctx, key)
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl)
}

// Delete removes key; deleting an absent key is not an error.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key)
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}
