package items

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/inventory-backend/pkg/cache"
	"github.com/angelmondragon/inventory-backend/pkg/config"
	"github.com/angelmondragon/inventory-backend/pkg/db"
	"github.com/angelmondragon/inventory-backend/pkg/logger"
	"github.com/angelmondragon/inventory-backend/pkg/migrate"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var errCacheDown = errors.New("cache unavailable")

// fakeCache wraps the in-memory store with failure switches and a delete log.
type fakeCache struct {
	*cache.MemoryStore

	mu         sync.Mutex
	failGet    bool
	failSet    bool
	failDelete map[string]bool
	deleted    []string
	gets       int
}

func newFakeCache(t *testing.T) *fakeCache {
	t.Helper()
	mem, err := cache.NewMemoryStore(128)
	require.NoError(t, err)
	return &fakeCache{MemoryStore: mem, failDelete: map[string]bool{}}
}

func (f *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	f.gets++
	fail := f.failGet
	f.mu.Unlock()
	if fail {
		return nil, errCacheDown
	}
	return f.MemoryStore.Get(ctx, key)
}

func (f *fakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	f.mu.Lock()
	fail := f.failSet
	f.mu.Unlock()
	if fail {
		return errCacheDown
	}
	return f.MemoryStore.Set(ctx, key, value, ttl)
}

func (f *fakeCache) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	f.deleted = append(f.deleted, key)
	fail := f.failDelete[key]
	f.mu.Unlock()
	if fail {
		return errCacheDown
	}
	return f.MemoryStore.Delete(ctx, key)
}

func (f *fakeCache) has(t *testing.T, key string) bool {
	t.Helper()
	_, err := f.MemoryStore.Get(context.Background(), key)
	if cache.IsMiss(err) {
		return false
	}
	require.NoError(t, err)
	return true
}

func (f *fakeCache) deletedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	client, err := db.New(context.Background(), config.DBConfig{
		Driver: config.DBDriverSQLite,
		DSN:    "file:" + t.Name() + "?mode=memory&cache=shared",
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, migrate.AutoMigrate(client.DB()))
	return client.DB()
}

type testEnv struct {
	db    *gorm.DB
	repo  *Repository
	cache *fakeCache
	svc   Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conn := newTestDB(t)
	repository := NewRepository(conn)
	fc := newFakeCache(t)
	svc, err := NewService(ServiceParams{
		Repo:   repository,
		Cache:  fc,
		TTL:    time.Hour,
		Logger: logger.Nop(),
	})
	require.NoError(t, err)
	return &testEnv{db: conn, repo: repository, cache: fc, svc: svc}
}

func ptr[T any](v T) *T {
	return &v
}
