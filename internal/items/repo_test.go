package items

import (
	"context"
	"testing"

	"github.com/angelmondragon/inventory-backend/pkg/db"
	"github.com/angelmondragon/inventory-backend/pkg/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryCreateAndFind(t *testing.T) {
	ctx := context.Background()
	repository := NewRepository(newTestDB(t))

	item := &models.Item{Name: "Box", Slug: "box", Description: "cardboard", Quantity: 3}
	require.NoError(t, repository.Create(ctx, item))
	require.NotZero(t, item.ID)
	assert.False(t, item.CreatedAt.IsZero())

	got, found, err := repository.FindByID(ctx, item.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Box", got.Name)

	got, found, err = repository.FindBySlug(ctx, "box")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, item.ID, got.ID)

	_, found, err = repository.FindByID(ctx, item.ID+100)
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = repository.FindBySlug(ctx, "crate")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRepositoryRejectsDuplicateSlug(t *testing.T) {
	ctx := context.Background()
	repository := NewRepository(newTestDB(t))

	require.NoError(t, repository.Create(ctx, &models.Item{Name: "Box", Slug: "box"}))
	err := repository.Create(ctx, &models.Item{Name: "box", Slug: "box"})
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err, "items.slug"))
}

func TestRepositoryUpdateWritesZeroValues(t *testing.T) {
	ctx := context.Background()
	repository := NewRepository(newTestDB(t))

	item := &models.Item{Name: "Box", Slug: "box", Description: "d", Quantity: 5}
	require.NoError(t, repository.Create(ctx, item))

	item.Quantity = 0
	item.Description = ""
	found, err := repository.Update(ctx, item)
	require.NoError(t, err)
	require.True(t, found)

	got, _, err := repository.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, got.Quantity)
	assert.Empty(t, got.Description)

	found, err = repository.Update(ctx, &models.Item{ID: item.ID + 100, Name: "x", Slug: "x"})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRepositoryDelete(t *testing.T) {
	ctx := context.Background()
	repository := NewRepository(newTestDB(t))

	item := &models.Item{Name: "Box", Slug: "box"}
	require.NoError(t, repository.Create(ctx, item))

	deleted, err := repository.Delete(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repository.Delete(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}
