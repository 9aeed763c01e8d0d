package auth

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/angelmondragon/inventory-backend/internal/users"
	"github.com/angelmondragon/inventory-backend/pkg/db"
	"github.com/angelmondragon/inventory-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/inventory-backend/pkg/errors"
)

// Messages reported by the registration flow.
const (
	MsgRegistrationFailed = "Registration failed"
	MsgPasswordsMismatch  = "Passwords do not match."
	MsgEmailTaken         = "Email already taken."
	MsgUsernameTaken      = "A user with that username already exists."
	MsgInvalidUsername    = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	MsgCreateUserFailed   = "Failed to create user due to a database error."
	MsgUnexpected         = "An unexpected error occurred"
)

const nonFieldErrors = "non_field_errors"

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// RegisterService validates and persists new accounts.
type RegisterService interface {
	// Validate runs the checks that need the record store or compare fields.
	Validate(ctx context.Context, req RegisterRequest) error
	Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error)
}

type registerUserRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

type passwordHasher interface {
	Hash(password string) (string, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	UserRepo registerUserRepository
	Hasher   passwordHasher
}

type registerService struct {
	users  registerUserRepository
	hasher passwordHasher
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Hasher == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	return &registerService{users: params.UserRepo, hasher: params.Hasher}, nil
}

func (s *registerService) Validate(ctx context.Context, req RegisterRequest) error {
	details := map[string]string{}

	username := strings.TrimSpace(req.Username)
	if !usernamePattern.MatchString(username) {
		details["username"] = MsgInvalidUsername
	} else {
		taken, err := s.users.ExistsByUsername(ctx, username)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeUnexpected, err, MsgUnexpected)
		}
		if taken {
			details["username"] = MsgUsernameTaken
		}
	}

	taken, err := s.users.ExistsByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUnexpected, err, MsgUnexpected)
	}
	if taken {
		details["email"] = MsgEmailTaken
	}

	if req.Password != req.Password2 {
		details[nonFieldErrors] = MsgPasswordsMismatch
	}

	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, MsgRegistrationFailed).WithDetails(details)
	}
	return nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnexpected, err, MsgUnexpected)
	}

	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Username:     strings.TrimSpace(req.Username),
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, MsgCreateUserFailed)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnexpected, err, MsgUnexpected)
	}
	return users.FromModel(user), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
