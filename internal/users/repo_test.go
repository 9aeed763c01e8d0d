package users

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/inventory-backend/pkg/config"
	"github.com/angelmondragon/inventory-backend/pkg/db"
	"github.com/angelmondragon/inventory-backend/pkg/migrate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	client, err := db.New(context.Background(), config.DBConfig{
		Driver: config.DBDriverSQLite,
		DSN:    "file:" + t.Name() + "?mode=memory&cache=shared",
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, migrate.AutoMigrate(client.DB()))
	return NewRepository(client.DB())
}

func TestRepositoryCreateAndFind(t *testing.T) {
	r := newTestRepository(t)
	ctx := context.Background()

	user, err := r.Create(ctx, CreateUserDTO{Username: "alice", Email: "alice@example.com", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.True(t, user.IsActive)

	byName, found, err := r.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, user.ID, byName.ID)

	_, found, err = r.FindByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRepositoryExists(t *testing.T) {
	r := newTestRepository(t)
	ctx := context.Background()

	_, err := r.Create(ctx, CreateUserDTO{Username: "alice", Email: "alice@example.com", PasswordHash: "hash"})
	require.NoError(t, err)

	ok, err := r.ExistsByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.ExistsByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.ExistsByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepositoryRejectsDuplicateUsername(t *testing.T) {
	r := newTestRepository(t)
	ctx := context.Background()

	_, err := r.Create(ctx, CreateUserDTO{Username: "alice", Email: "a1@example.com", PasswordHash: "hash"})
	require.NoError(t, err)
	_, err = r.Create(ctx, CreateUserDTO{Username: "alice", Email: "a2@example.com", PasswordHash: "hash"})
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err, ""))
}

func TestRepositoryCreateInactive(t *testing.T) {
	r := newTestRepository(t)
	inactive := false

	user, err := r.Create(context.Background(), CreateUserDTO{
		Username: "dormant", Email: "d@example.com", PasswordHash: "hash", IsActive: &inactive,
	})
	require.NoError(t, err)

	stored, found, err := r.FindByUsername(context.Background(), "dormant")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, user.ID, stored.ID)
	assert.False(t, stored.IsActive)
}

func TestRepositoryUpdateLastLogin(t *testing.T) {
	r := newTestRepository(t)
	ctx := context.Background()

	user, err := r.Create(ctx, CreateUserDTO{Username: "alice", Email: "alice@example.com", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.Nil(t, user.LastLoginAt)

	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, r.UpdateLastLogin(ctx, user.ID, at))

	stored, _, err := r.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, stored.LastLoginAt)
	assert.True(t, at.Equal(*stored.LastLoginAt))
}
