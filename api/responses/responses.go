package responses

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	pkgerrors "github.com/angelmondragon/inventory-backend/pkg/errors"
	"github.com/angelmondragon/inventory-backend/pkg/logger"
	"github.com/angelmondragon/inventory-backend/pkg/types"
)

// WriteSuccess writes a 200 envelope.
func WriteSuccess(w http.ResponseWriter, message string, data any) {
	WriteSuccessStatus(w, http.StatusOK, message, data)
}

// WriteSuccessStatus writes a success envelope with the provided status.
func WriteSuccessStatus(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, types.Envelope{Success: true, Message: message, Data: data})
}

// WriteError maps err onto its status code and writes a failure envelope.
// Untyped errors become CodeInternal.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	WriteErrorStatus(ctx, logg, w, 0, err)
}

// WriteErrorStatus is WriteError with an explicit status override, for routes
// that report every failure with a single status code.
func WriteErrorStatus(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, status int, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())
	if status == 0 {
		status = meta.HTTPStatus
	}

	msg := meta.PublicMessage
	switch typed.Code() {
	case pkgerrors.CodeValidation,
		pkgerrors.CodeUnauthorized,
		pkgerrors.CodeTokenInvalid,
		pkgerrors.CodeNotFound,
		pkgerrors.CodeConflict,
		pkgerrors.CodeIdempotency:
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	var data any = map[string]any{}
	if meta.DetailsAllowed {
		if details := typed.Details(); details != nil {
			data = details
		}
	}

	if logg != nil {
		ctx = logg.WithFields(ctx, pkgerrors.Dump(err).Fields())
		ctx = logg.WithField(ctx, "status", status)
		if status >= http.StatusInternalServerError {
			logg.Error(ctx, "request.error", err)
		} else {
			logg.Warn(ctx, "request.error", err)
		}
	}

	writeJSON(w, status, types.Envelope{Success: false, Message: msg, Data: data})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if !bodyAllowed(status) {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}

func bodyAllowed(status int) bool {
	switch {
	case status >= 100 && status < 200:
		return false
	case status == http.StatusNoContent, status == http.StatusNotModified:
		return false
	}
	return true
}
