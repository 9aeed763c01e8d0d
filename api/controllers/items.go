package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/inventory-backend/api/middleware"
	"github.com/angelmondragon/inventory-backend/api/responses"
	"github.com/angelmondragon/inventory-backend/api/validators"
	"github.com/angelmondragon/inventory-backend/internal/items"
	pkgerrors "github.com/angelmondragon/inventory-backend/pkg/errors"
	"github.com/angelmondragon/inventory-backend/pkg/logger"
	"github.com/angelmondragon/inventory-backend/pkg/types"
)

const (
	msgItemCreated = "Record added successfully"
	msgItemFetched = "Record fetched successfully"
	msgItemUpdated = "Record updated successfully"
	msgItemDeleted = "Record deleted successfully"

	msgItemDeleteNotFound = "Item not found"
	msgItemDeleteConfirm  = "Item deleted successfully."
)

type createItemRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"required"`
	Quantity    *int64 `json:"quantity" validate:"required"`
}

type updateItemRequest struct {
	Name        *string `json:"name" validate:"omitnil,min=1,max=100"`
	Description *string `json:"description" validate:"omitnil,min=1"`
	Quantity    *int64  `json:"quantity"`
}

// ItemCreate handles POST /api/items/.
func ItemCreate(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "item service unavailable"))
			return
		}

		var body createItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body.Name = validators.SanitizeString(body.Name, 0)
		body.Description = validators.SanitizeString(body.Description, 0)
		if err := validators.ValidateStruct(&body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, found, err := svc.GetByName(r.Context(), body.Name); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		} else if found {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, items.DuplicateNameMessage(body.Name)))
			return
		}

		item, err := svc.Create(r.Context(), items.CreateInput{
			Name:        body.Name,
			Description: body.Description,
			Quantity:    *body.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		logItemWrite(r.Context(), logg, "item.created", item.ID)
		responses.WriteSuccessStatus(w, http.StatusCreated, msgItemCreated, items.FromModel(item))
	}
}

// ItemGet handles GET /api/items/{id}/.
func ItemGet(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, msgItemFetched, items.FromModel(item))
	}
}

// ItemUpdate handles PUT /api/items/{id}/. Absent fields keep their stored value.
func ItemUpdate(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		current, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body.Name = sanitizeOptional(body.Name)
		body.Description = sanitizeOptional(body.Description)
		if err := validators.ValidateStruct(&body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if body.Name != nil && items.Derive(*body.Name) != current.Slug {
			owner, found, err := svc.GetByName(r.Context(), *body.Name)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if found && owner.ID != id {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, items.DuplicateNameMessage(*body.Name)))
				return
			}
		}

		item, err := svc.Update(r.Context(), id, items.UpdateInput{
			Name:        body.Name,
			Description: body.Description,
			Quantity:    body.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		logItemWrite(r.Context(), logg, "item.updated", item.ID)
		responses.WriteSuccess(w, msgItemUpdated, items.FromModel(item))
	}
}

// ItemDelete handles DELETE /api/items/{id}/. The 204 response carries no body.
func ItemDelete(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
				err = pkgerrors.Wrap(pkgerrors.CodeNotFound, err, msgItemDeleteNotFound)
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		logItemWrite(r.Context(), logg, "item.deleted", id)
		responses.WriteSuccessStatus(w, http.StatusNoContent, msgItemDeleted, types.Message{Message: msgItemDeleteConfirm})
	}
}

func sanitizeOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := validators.SanitizeString(*v, 0)
	return &trimmed
}

func logItemWrite(ctx context.Context, logg *logger.Logger, event string, id int64) {
	if logg == nil {
		return
	}
	ctx = logg.WithFields(ctx, map[string]any{
		"item_id":  id,
		"username": middleware.UsernameFromContext(ctx),
	})
	logg.Info(ctx, event)
}
