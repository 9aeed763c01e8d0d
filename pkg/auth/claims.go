package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// Token types carried in the token_type claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// TokenPayload captures the data available when minting a JWT.
type TokenPayload struct {
	UserID   int64
	Username string
	JTI      string
}

// Claims represents the typed JWT issued to clients.
type Claims struct {
	UserID    int64  `json:"user_id"`
	Username  string `json:"username,omitempty"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}
