package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	pkgAuth "github.com/angelmondragon/inventory-backend/pkg/auth"
	"github.com/angelmondragon/inventory-backend/pkg/auth/session"
	"github.com/angelmondragon/inventory-backend/pkg/config"
	"github.com/angelmondragon/inventory-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/inventory-backend/pkg/errors"
	"github.com/angelmondragon/inventory-backend/pkg/logger"
)

// MsgNoActiveAccount is reported for unknown users, bad passwords and inactive accounts alike.
const MsgNoActiveAccount = "No active account found with the given credentials"

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*TokenPair, error)
	Refresh(ctx context.Context, req RefreshRequest) (*AccessToken, error)
}

type userRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, bool, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
}

type sessionManager interface {
	Register(ctx context.Context, jti string, userID int64) error
	UserID(ctx context.Context, jti string) (int64, error)
}

type passwordVerifier interface {
	Verify(password, encoded string) (bool, error)
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       userRepository
	SessionManager sessionManager
	Passwords      passwordVerifier
	JWTConfig      config.JWTConfig
	Logger         *logger.Logger
	Now            func() time.Time
}

type service struct {
	users    userRepository
	sessions sessionManager
	verifier passwordVerifier
	jwtCfg   config.JWTConfig
	logg     *logger.Logger
	now      func() time.Time
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Passwords == nil {
		return nil, fmt.Errorf("password verifier is required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		users:    params.UserRepo,
		sessions: params.SessionManager,
		verifier: params.Passwords,
		jwtCfg:   params.JWTConfig,
		logg:     logg,
		now:      now,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*TokenPair, error) {
	user, err := s.authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnexpected, err, MsgUnexpected)
	}

	payload := pkgAuth.TokenPayload{UserID: user.ID, Username: user.Username}
	access, err := pkgAuth.MintAccessToken(s.jwtCfg, now, payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	payload.JTI = session.NewTokenID()
	refresh, err := pkgAuth.MintRefreshToken(s.jwtCfg, now, payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint refresh token")
	}
	if err := s.sessions.Register(ctx, payload.JTI, user.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnexpected, err, MsgUnexpected)
	}

	s.logg.Info(s.logg.WithUserID(ctx, user.ID), "user logged in")
	return &TokenPair{Refresh: refresh, Access: access}, nil
}

func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*AccessToken, error) {
	claims, err := pkgAuth.ParseRefreshToken(s.jwtCfg, req.Refresh)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeTokenInvalid, err, "")
	}

	owner, err := s.sessions.UserID(ctx, claims.ID)
	switch {
	case errors.Is(err, session.ErrInvalidRefreshToken):
		return nil, pkgerrors.Wrap(pkgerrors.CodeTokenInvalid, err, "")
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnexpected, err, MsgUnexpected)
	case owner != claims.UserID:
		return nil, pkgerrors.New(pkgerrors.CodeTokenInvalid, "")
	}

	access, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now(), pkgAuth.TokenPayload{
		UserID:   claims.UserID,
		Username: claims.Username,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	return &AccessToken{Access: access}, nil
}

func (s *service) authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, found, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnexpected, err, MsgUnexpected)
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeTokenInvalid, MsgNoActiveAccount)
	}

	valid, err := s.verifier.Verify(password, user.PasswordHash)
	if err != nil {
		s.logg.Warn(s.logg.WithUserID(ctx, user.ID), "stored password hash unreadable", err)
		return nil, pkgerrors.New(pkgerrors.CodeTokenInvalid, MsgNoActiveAccount)
	}
	if !valid || !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeTokenInvalid, MsgNoActiveAccount)
	}
	return user, nil
}
