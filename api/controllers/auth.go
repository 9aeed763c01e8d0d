package controllers

import (
	"net/http"

	"github.com/angelmondragon/inventory-backend/api/responses"
	"github.com/angelmondragon/inventory-backend/api/validators"
	"github.com/angelmondragon/inventory-backend/internal/auth"
	pkgerrors "github.com/angelmondragon/inventory-backend/pkg/errors"
	"github.com/angelmondragon/inventory-backend/pkg/logger"
)

const (
	msgLoginSuccess   = "Login successful"
	msgRefreshSuccess = "Token refreshed successfully"
)

// AuthLogin exchanges credentials for a token pair. Every failure is a 400.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteErrorStatus(r.Context(), logg, w, http.StatusBadRequest, err)
			return
		}

		pair, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteErrorStatus(r.Context(), logg, w, http.StatusBadRequest, err)
			return
		}

		responses.WriteSuccess(w, msgLoginSuccess, pair)
	}
}

// AuthRefresh exchanges a live refresh token for a new access token.
func AuthRefresh(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body auth.RefreshRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteErrorStatus(r.Context(), logg, w, http.StatusBadRequest, err)
			return
		}

		token, err := svc.Refresh(r.Context(), body)
		if err != nil {
			responses.WriteErrorStatus(r.Context(), logg, w, http.StatusBadRequest, err)
			return
		}

		responses.WriteSuccess(w, msgRefreshSuccess, token)
	}
}
