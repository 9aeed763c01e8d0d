package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/inventory-backend/pkg/config"
	redisclient "github.com/angelmondragon/inventory-backend/pkg/redis"
	redislib "github.com/redis/go-redis/v9"
)

type mockStore struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (m *mockStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = ttl
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *mockStore) expire(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}

func (m *mockStore) RefreshSessionKey(jti string) string {
	return fmt.Sprintf("sess:%s", jti)
}

func newTestManager(store *mockStore) *Manager {
	return &Manager{store: store, keyer: store, ttl: time.Hour}
}

func TestManagerRegisterAndLookup(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(store)
	ctx := context.Background()

	jti := NewTokenID()
	if err := manager.Register(ctx, jti, 42); err != nil {
		t.Fatalf("register: %v", err)
	}
	if got := store.ttls[store.RefreshSessionKey(jti)]; got != time.Hour {
		t.Fatalf("expected refresh ttl, got %s", got)
	}

	userID, err := manager.UserID(ctx, jti)
	if err != nil {
		t.Fatalf("user id: %v", err)
	}
	if userID != 42 {
		t.Fatalf("expected user 42, got %d", userID)
	}
}

func TestManagerExpiredSession(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(store)
	ctx := context.Background()

	if err := manager.Register(ctx, "jti-1", 1); err != nil {
		t.Fatalf("register: %v", err)
	}
	store.expire(store.RefreshSessionKey("jti-1"))

	if _, err := manager.UserID(ctx, "jti-1"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected invalid refresh token, got %v", err)
	}
}

func TestManagerCorruptSessionValue(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(store)
	ctx := context.Background()

	_ = store.Set(ctx, store.RefreshSessionKey("jti-2"), "not-a-number", time.Hour)
	if _, err := manager.UserID(ctx, "jti-2"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected invalid refresh token, got %v", err)
	}
}

func TestManagerPropagatesStoreErrors(t *testing.T) {
	boom := errors.New("redis down")
	manager := &Manager{store: failingStore{err: boom}, keyer: newMockStore(), ttl: time.Hour}

	if _, err := manager.UserID(context.Background(), "jti-3"); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}

type failingStore struct{ err error }

func (f failingStore) Set(context.Context, string, any, time.Duration) error { return f.err }
func (f failingStore) Get(context.Context, string) (string, error)            { return "", f.err }

func TestManagerRejectsBlankJTI(t *testing.T) {
	manager := newTestManager(newMockStore())
	ctx := context.Background()

	if err := manager.Register(ctx, " ", 1); err == nil {
		t.Fatal("expected error for blank jti")
	}
	if _, err := manager.UserID(ctx, ""); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected invalid refresh token, got %v", err)
	}
}

func TestNewManagerValidatesTTL(t *testing.T) {
	if _, err := NewManager(nil, config.JWTConfig{}); err == nil {
		t.Fatal("expected error for nil client")
	}

	client := redisclient.NewWithCmdable(redislib.NewClient(&redislib.Options{Addr: "127.0.0.1:0"}))
	if _, err := NewManager(client, config.JWTConfig{ExpirationMinutes: 60, RefreshTokenTTLMinutes: 30}); err == nil {
		t.Fatal("expected error when refresh ttl does not exceed access ttl")
	}
	if _, err := NewManager(client, config.JWTConfig{ExpirationMinutes: 5, RefreshTokenTTLMinutes: 1440}); err != nil {
		t.Fatalf("expected valid manager, got %v", err)
	}
}
