package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/inventory-backend/pkg/config"
	redisclient "github.com/angelmondragon/inventory-backend/pkg/redis"
	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

var ErrInvalidRefreshToken = errors.New("invalid refresh token")

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
}

type sessionKeyer interface {
	RefreshSessionKey(jti string) string
}

// Manager tracks which refresh tokens are still live.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	ttl := cfg.RefreshTokenTTL()
	if ttl <= 0 {
		return nil, fmt.Errorf("refresh token ttl must be positive")
	}
	accessTTL := cfg.AccessTokenTTL()
	if ttl <= accessTTL {
		return nil, fmt.Errorf("refresh token ttl (%s) must exceed access token ttl (%s)", ttl, accessTTL)
	}

	return &Manager{
		store: client,
		keyer: client,
		ttl:   ttl,
	}, nil
}

// Register records a freshly minted refresh token's jti for the user.
func (m *Manager) Register(ctx context.Context, jti string, userID int64) error {
	if strings.TrimSpace(jti) == "" {
		return fmt.Errorf("jti is required")
	}
	return m.store.Set(ctx, m.keyer.RefreshSessionKey(jti), strconv.FormatInt(userID, 10), m.ttl)
}

// UserID returns the user bound to the refresh jti.
func (m *Manager) UserID(ctx context.Context, jti string) (int64, error) {
	if strings.TrimSpace(jti) == "" {
		return 0, ErrInvalidRefreshToken
	}
	stored, err := m.store.Get(ctx, m.keyer.RefreshSessionKey(jti))
	if err != nil {
		return 0, wrapNotFound(err)
	}
	id, err := strconv.ParseInt(stored, 10, 64)
	if err != nil {
		return 0, ErrInvalidRefreshToken
	}
	return id, nil
}

// NewTokenID produces an identifier used as the JWT jti and Redis key.
func NewTokenID() string {
	return uuid.NewString()
}

func wrapNotFound(err error) error {
	if errors.Is(err, redislib.Nil) {
		return ErrInvalidRefreshToken
	}
	return err
}
