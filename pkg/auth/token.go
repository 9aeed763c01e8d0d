package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/inventory-backend/pkg/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// ErrWrongTokenType is returned when a token of one type is presented as another.
var ErrWrongTokenType = errors.New("token has wrong type")

// MintAccessToken issues a short-lived signed JWT for the provided payload.
func MintAccessToken(cfg config.JWTConfig, now time.Time, payload TokenPayload) (string, error) {
	return mint(cfg, now, payload, TokenTypeAccess, cfg.AccessTokenTTL())
}

// MintRefreshToken issues a long-lived signed JWT that can only be exchanged for access tokens.
func MintRefreshToken(cfg config.JWTConfig, now time.Time, payload TokenPayload) (string, error) {
	return mint(cfg, now, payload, TokenTypeRefresh, cfg.RefreshTokenTTL())
}

func mint(cfg config.JWTConfig, now time.Time, payload TokenPayload, tokenType string, ttl time.Duration) (string, error) {
	if cfg.Secret == "" {
		return "", fmt.Errorf("jwt secret is required")
	}
	if cfg.Issuer == "" {
		return "", fmt.Errorf("jwt issuer is required")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("%s token ttl must be positive", tokenType)
	}
	if payload.UserID <= 0 {
		return "", fmt.Errorf("invalid user id %d", payload.UserID)
	}

	jti := strings.TrimSpace(payload.JTI)
	if jti == "" {
		jti = uuid.NewString()
	}

	claims := Claims{
		UserID:    payload.UserID,
		Username:  payload.Username,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   strconv.FormatInt(payload.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        jti,
		},
	}

	token := jwt.NewWithClaims(jwtSigningMethod, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

// ParseAccessToken validates an access JWT and returns typed claims.
func ParseAccessToken(cfg config.JWTConfig, tokenString string) (*Claims, error) {
	return parse(cfg, tokenString, TokenTypeAccess)
}

// ParseRefreshToken validates a refresh JWT and returns typed claims.
func ParseRefreshToken(cfg config.JWTConfig, tokenString string) (*Claims, error) {
	return parse(cfg, tokenString, TokenTypeRefresh)
}

func parse(cfg config.JWTConfig, tokenString, tokenType string) (*Claims, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		},
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != tokenType {
		return nil, ErrWrongTokenType
	}
	if claims.UserID <= 0 || claims.ID == "" {
		return nil, fmt.Errorf("token is missing required claims")
	}

	return claims, nil
}
