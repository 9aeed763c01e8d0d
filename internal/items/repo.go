package items

import (
	"context"
	"time"

	"github.com/angelmondragon/inventory-backend/internal/repo"
	"github.com/angelmondragon/inventory-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists items through GORM.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// FindByID loads the item by primary key. found is false when no row exists.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Item, bool, error) {
	return repo.FindOne[models.Item](r.DB(ctx), "id = ?", id)
}

// FindBySlug loads the item owning slug. found is false when no row exists.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Item, bool, error) {
	return repo.FindOne[models.Item](r.DB(ctx), "slug = ?", slug)
}

// Create inserts item and fills its store-assigned fields.
func (r *Repository) Create(ctx context.Context, item *models.Item) error {
	return r.DB(ctx).Create(item).Error
}

// Update writes the mutable columns of item by primary key. found is false
// when the row no longer exists.
func (r *Repository) Update(ctx context.Context, item *models.Item) (bool, error) {
	item.UpdatedAt = time.Now().UTC()
	res := r.DB(ctx).
		Model(&models.Item{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"name":        item.Name,
			"slug":        item.Slug,
			"description": item.Description,
			"quantity":    item.Quantity,
			"updated_at":  item.UpdatedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Delete removes the row by primary key. found is false when nothing was deleted.
func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.Item{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
