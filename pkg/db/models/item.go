package models

import "time"

// Item is an inventory record. Slug is always derived from Name and is unique.
type Item struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"column:name;type:varchar(100);not null" json:"name"`
	Slug        string    `gorm:"column:slug;type:varchar(250);not null;uniqueIndex:idx_items_slug" json:"slug"`
	Description string    `gorm:"column:description;type:text;not null" json:"description"`
	Quantity    int64     `gorm:"column:quantity;not null" json:"quantity"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
