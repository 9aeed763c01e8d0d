package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Base provides a shared foundation for domain repositories.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// FindOne loads the first row matching query. A missing row is reported as
// found=false with a nil error; any other failure is returned as is.
func FindOne[T any](db *gorm.DB, query any, args ...any) (*T, bool, error) {
	var out T
	err := db.Where(query, args...).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &out, true, nil
}

// Exists reports whether any row of model matches query.
func Exists(db *gorm.DB, model any, query any, args ...any) (bool, error) {
	var count int64
	if err := db.Model(model).Where(query, args...).Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
