package middleware

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/inventory-backend/api/responses"
	"github.com/angelmondragon/inventory-backend/api/validators"
	pkgAuth "github.com/angelmondragon/inventory-backend/pkg/auth"
	"github.com/angelmondragon/inventory-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/inventory-backend/pkg/errors"
	"github.com/angelmondragon/inventory-backend/pkg/logger"
)

const (
	msgMissingCredentials = "Authentication credentials were not provided."
	msgInvalidToken       = "Given token not valid for any token type"
)

// Auth validates a bearer access token and seeds the request context with the claims.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if strings.TrimSpace(header) == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, msgMissingCredentials))
				return
			}

			token, err := validators.BearerToken(header)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, msgInvalidToken))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, msgInvalidToken))
				return
			}

			ctx := WithUser(r.Context(), claims.UserID, claims.Username)
			if logg != nil {
				ctx = logg.WithUserID(ctx, claims.UserID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
