package users

import (
	"github.com/angelmondragon/inventory-backend/pkg/db/models"
)

// UserDTO is the transport shape that omits credentials.
type UserDTO struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Username     string
	Email        string
	PasswordHash string
	IsActive     *bool
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		Username: u.Username,
		Email:    u.Email,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	isActive := true
	if c.IsActive != nil {
		isActive = *c.IsActive
	}
	return &models.User{
		Username:     c.Username,
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		IsActive:     isActive,
	}
}
