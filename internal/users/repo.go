package users

import (
	"context"
	"time"

	"github.com/angelmondragon/inventory-backend/internal/repo"
	"github.com/angelmondragon/inventory-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.DB(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByUsername retrieves the user owning username.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*models.User, bool, error) {
	return repo.FindOne[models.User](r.DB(ctx), "username = ?", username)
}

func (r *Repository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return repo.Exists(r.DB(ctx), &models.User{}, "email = ?", email)
}

func (r *Repository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return repo.Exists(r.DB(ctx), &models.User{}, "username = ?", username)
}

// UpdateLastLogin refreshes the user's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	return r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}
