package items

import (
	"time"

	"github.com/angelmondragon/inventory-backend/pkg/db/models"
)

// CreateInput holds the validated payload to create an item.
type CreateInput struct {
	Name        string
	Description string
	Quantity    int64
}

// UpdateInput holds optional mutation values; nil fields keep their current value.
type UpdateInput struct {
	Name        *string
	Description *string
	Quantity    *int64
}

// ItemDTO is the public representation of an item.
type ItemDTO struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Quantity    int64     `json:"quantity"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FromModel maps the persisted item onto its public shape.
func FromModel(m *models.Item) ItemDTO {
	return ItemDTO{
		ID:          m.ID,
		Name:        m.Name,
		Slug:        m.Slug,
		Description: m.Description,
		Quantity:    m.Quantity,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
