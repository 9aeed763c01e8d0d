package db

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/inventory-backend/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testModel struct {
	ID   int
	Name string `gorm:"uniqueIndex"`
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(context.Background(), config.DBConfig{
		Driver: config.DBDriverSQLite,
		DSN:    "file:" + t.Name() + "?mode=memory&cache=shared",
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.DB().AutoMigrate(&testModel{}))
	return client
}

func TestNew_RequiresDSN(t *testing.T) {
	_, err := New(context.Background(), config.DBConfig{}, nil)
	require.Error(t, err)
}

func TestPing(t *testing.T) {
	client := newTestClient(t)
	assert.NoError(t, client.Ping(context.Background()))
}

func TestSQLiteUniqueViolationIsClassified(t *testing.T) {
	client := newTestClient(t)
	db := client.DB()

	require.NoError(t, db.Create(&testModel{Name: "dup"}).Error)
	err := db.Create(&testModel{Name: "dup"}).Error
	require.Error(t, err)

	assert.True(t, IsUniqueViolation(err, ""))
	assert.True(t, IsUniqueViolation(err, "test_models.name"))
	assert.False(t, IsUniqueViolation(err, "other_constraint"))
	assert.True(t, IsConstraintViolation(err))
}

func TestIsNotFound(t *testing.T) {
	client := newTestClient(t)

	var m testModel
	err := client.DB().First(&m, 999).Error
	assert.True(t, IsNotFound(err))
	assert.False(t, IsNotFound(errors.New("boom")))
}
