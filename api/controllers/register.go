package controllers

import (
	"net/http"

	"github.com/angelmondragon/inventory-backend/api/responses"
	"github.com/angelmondragon/inventory-backend/api/validators"
	"github.com/angelmondragon/inventory-backend/internal/auth"
	pkgerrors "github.com/angelmondragon/inventory-backend/pkg/errors"
	"github.com/angelmondragon/inventory-backend/pkg/logger"
)

const msgRegisterSuccess = "User registered successfully"

// AuthRegister creates an account. Validation and service failures are all reported as 400.
func AuthRegister(reg auth.RegisterService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reg == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "registration service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body auth.RegisterRequest
		if err := validators.DecodeJSONBodyWithMessage(r, &body, auth.MsgRegistrationFailed); err != nil {
			responses.WriteErrorStatus(r.Context(), logg, w, http.StatusBadRequest, err)
			return
		}

		if err := reg.Validate(r.Context(), body); err != nil {
			responses.WriteErrorStatus(r.Context(), logg, w, http.StatusBadRequest, err)
			return
		}

		user, err := reg.Register(r.Context(), body)
		if err != nil {
			responses.WriteErrorStatus(r.Context(), logg, w, http.StatusBadRequest, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, msgRegisterSuccess, user)
	}
}
