package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/inventory-backend/pkg/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	data map[string][]byte
	ttl  map[string]time.Duration
	err  error
}

func (f *fakeRedis) GetBytes(_ context.Context, key string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.data[key]
	if !ok {
		return nil, redis.Nil
	}
	return v, nil
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.data[key] = value.([]byte)
	f.ttl[key] = ttl
	return nil
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	return f.err
}

func (f *fakeRedis) Ping(context.Context) error { return f.err }

func TestRedisStoreUsesExactKeys(t *testing.T) {
	ctx := context.Background()
	fake := &fakeRedis{data: map[string][]byte{}, ttl: map[string]time.Duration{}}
	store := &RedisStore{client: fake}

	_, err := store.Get(ctx, "items:id:7")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, store.Set(ctx, "items:id:7", []byte("x"), time.Hour))
	assert.Contains(t, fake.data, "items:id:7")
	assert.Equal(t, time.Hour, fake.ttl["items:id:7"])

	got, err := store.Get(ctx, "items:id:7")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), got)

	require.NoError(t, store.Delete(ctx, "items:id:7"))
	assert.NotContains(t, fake.data, "items:id:7")
}

func TestRedisStoreErrorsAreNotMisses(t *testing.T) {
	fake := &fakeRedis{data: map[string][]byte{}, ttl: map[string]time.Duration{}, err: errors.New("i/o timeout")}
	store := &RedisStore{client: fake}

	_, err := store.Get(context.Background(), "items:id:1")
	require.Error(t, err)
	assert.False(t, IsMiss(err))
}
