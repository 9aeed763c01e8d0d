package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/inventory-backend/internal/items"
	"github.com/angelmondragon/inventory-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/inventory-backend/pkg/errors"
	"github.com/angelmondragon/inventory-backend/pkg/logger"
	"github.com/angelmondragon/inventory-backend/pkg/types"
)

type stubItemService struct {
	byID      map[int64]*models.Item
	bySlug    map[string]*models.Item
	getErr    error
	createErr error
	updateErr error
	deleteErr error
	created   *items.CreateInput
	updated   *items.UpdateInput
	deletedID int64
}

func newStubItemService(seed ...*models.Item) *stubItemService {
	s := &stubItemService{byID: map[int64]*models.Item{}, bySlug: map[string]*models.Item{}}
	for _, item := range seed {
		s.byID[item.ID] = item
		s.bySlug[item.Slug] = item
	}
	return s
}

func (s *stubItemService) GetByID(ctx context.Context, id int64) (*models.Item, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	item, ok := s.byID[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, items.MsgItemNotFound)
	}
	return item, nil
}

func (s *stubItemService) GetByName(ctx context.Context, name string) (*models.Item, bool, error) {
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	item, ok := s.bySlug[items.Derive(name)]
	return item, ok, nil
}

func (s *stubItemService) Create(ctx context.Context, input items.CreateInput) (*models.Item, error) {
	s.created = &input
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &models.Item{ID: 1, Name: input.Name, Slug: items.Derive(input.Name), Description: input.Description, Quantity: input.Quantity}, nil
}

func (s *stubItemService) Update(ctx context.Context, id int64, input items.UpdateInput) (*models.Item, error) {
	s.updated = &input
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	out := *s.byID[id]
	if input.Name != nil {
		out.Name = *input.Name
		out.Slug = items.Derive(*input.Name)
	}
	if input.Description != nil {
		out.Description = *input.Description
	}
	if input.Quantity != nil {
		out.Quantity = *input.Quantity
	}
	return &out, nil
}

func (s *stubItemService) Delete(ctx context.Context, id int64) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.byID[id]; !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, items.MsgItemNotFound)
	}
	s.deletedID = id
	return nil
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) types.Envelope {
	t.Helper()
	var env types.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func boxItem() *models.Item {
	return &models.Item{ID: 5, Name: "Box", Slug: "box", Description: "cardboard", Quantity: 3}
}

func TestItemCreateSuccess(t *testing.T) {
	svc := newStubItemService()
	req := httptest.NewRequest(http.MethodPost, "/api/items/", strings.NewReader(`{"name":"Box","description":"cardboard","quantity":0}`))
	rec := httptest.NewRecorder()

	ItemCreate(svc, logger.Nop()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, msgItemCreated, env.Message)
	data := env.Data.(map[string]any)
	assert.Equal(t, "box", data["slug"])
	assert.EqualValues(t, 0, data["quantity"])
	require.NotNil(t, svc.created)
	assert.Equal(t, int64(0), svc.created.Quantity)
}

func TestItemCreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
		msg   string
	}{
		{name: "missing name", body: `{"description":"d","quantity":1}`, field: "name", msg: "This field is required."},
		{name: "long name", body: `{"name":"` + strings.Repeat("a", 101) + `","description":"d","quantity":1}`, field: "name", msg: "Ensure this field has no more than 100 characters."},
		{name: "missing quantity", body: `{"name":"Box","description":"d"}`, field: "quantity", msg: "This field is required."},
		{name: "non integer quantity", body: `{"name":"Box","description":"d","quantity":"many"}`, field: "quantity", msg: "must be a valid integer"},
		{name: "missing description", body: `{"name":"Box","quantity":1}`, field: "description", msg: "This field is required."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newStubItemService()
			rec := httptest.NewRecorder()
			ItemCreate(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/items/", strings.NewReader(tt.body)))

			require.Equal(t, http.StatusBadRequest, rec.Code)
			env := decodeEnvelope(t, rec)
			assert.Equal(t, "Validation error", env.Message)
			assert.Equal(t, tt.msg, env.Data.(map[string]any)[tt.field])
			assert.Nil(t, svc.created)
		})
	}
}

func TestItemCreateTrimsWhitespace(t *testing.T) {
	svc := newStubItemService()
	rec := httptest.NewRecorder()
	ItemCreate(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/items/", strings.NewReader(`{"name":"  Box ","description":" d ","quantity":1}`)))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Box", svc.created.Name)
	assert.Equal(t, "d", svc.created.Description)

	svc = newStubItemService()
	rec = httptest.NewRecorder()
	ItemCreate(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/items/", strings.NewReader(`{"name":"   ","description":"d","quantity":1}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "This field is required.", decodeEnvelope(t, rec).Data.(map[string]any)["name"])
	assert.Nil(t, svc.created)
}

func TestItemCreateDuplicateNameIsBadRequest(t *testing.T) {
	svc := newStubItemService(boxItem())
	rec := httptest.NewRecorder()
	ItemCreate(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/items/", strings.NewReader(`{"name":"BOX","description":"d","quantity":1}`)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "An item with the name 'BOX' already exists.", decodeEnvelope(t, rec).Message)
	assert.Nil(t, svc.created)
}

// Unexpected store faults are reported as 400, not 500.
func TestItemCreateUnexpectedFaultIsBadRequest(t *testing.T) {
	svc := newStubItemService()
	svc.createErr = pkgerrors.Wrap(pkgerrors.CodeUnexpected, errors.New("disk full"), items.MsgUnexpected)
	rec := httptest.NewRecorder()
	ItemCreate(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/items/", strings.NewReader(`{"name":"Box","description":"d","quantity":1}`)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "An unexpected error occurred", env.Message)
}

func TestItemGet(t *testing.T) {
	svc := newStubItemService(boxItem())

	rec := httptest.NewRecorder()
	ItemGet(svc, nil).ServeHTTP(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/api/items/5/", nil), "id", "5"))
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, msgItemFetched, env.Message)
	assert.Equal(t, "Box", env.Data.(map[string]any)["name"])

	rec = httptest.NewRecorder()
	ItemGet(svc, nil).ServeHTTP(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/api/items/6/", nil), "id", "6"))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, items.MsgItemNotFound, decodeEnvelope(t, rec).Message)

	for _, raw := range []string{"abc", "0", "-1"} {
		rec = httptest.NewRecorder()
		ItemGet(svc, nil).ServeHTTP(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/api/items/x/", nil), "id", raw))
		assert.Equal(t, http.StatusBadRequest, rec.Code, raw)
	}
}

func TestItemUpdatePartial(t *testing.T) {
	svc := newStubItemService(boxItem())
	req := withURLParam(httptest.NewRequest(http.MethodPut, "/api/items/5/", strings.NewReader(`{"quantity":10}`)), "id", "5")
	rec := httptest.NewRecorder()

	ItemUpdate(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, msgItemUpdated, env.Message)
	data := env.Data.(map[string]any)
	assert.EqualValues(t, 10, data["quantity"])
	assert.Equal(t, "Box", data["name"])
	require.NotNil(t, svc.updated)
	assert.Nil(t, svc.updated.Name)
}

func TestItemUpdateRejectsNameOwnedByAnotherItem(t *testing.T) {
	crate := &models.Item{ID: 6, Name: "Crate", Slug: "crate"}
	svc := newStubItemService(boxItem(), crate)
	req := withURLParam(httptest.NewRequest(http.MethodPut, "/api/items/5/", strings.NewReader(`{"name":"crate"}`)), "id", "5")
	rec := httptest.NewRecorder()

	ItemUpdate(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "An item with the name 'crate' already exists.", decodeEnvelope(t, rec).Message)
	assert.Nil(t, svc.updated)
}

func TestItemUpdateAllowsRecasingOwnName(t *testing.T) {
	svc := newStubItemService(boxItem())
	req := withURLParam(httptest.NewRequest(http.MethodPut, "/api/items/5/", strings.NewReader(`{"name":"BOX"}`)), "id", "5")
	rec := httptest.NewRecorder()

	ItemUpdate(svc, nil).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestItemUpdateErrors(t *testing.T) {
	t.Run("missing item", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := withURLParam(httptest.NewRequest(http.MethodPut, "/api/items/9/", strings.NewReader(`{"quantity":1}`)), "id", "9")
		ItemUpdate(newStubItemService(), nil).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("blank name", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := withURLParam(httptest.NewRequest(http.MethodPut, "/api/items/5/", strings.NewReader(`{"name":""}`)), "id", "5")
		ItemUpdate(newStubItemService(boxItem()), nil).ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "This field may not be blank.", decodeEnvelope(t, rec).Data.(map[string]any)["name"])
	})

	t.Run("integrity fault", func(t *testing.T) {
		svc := newStubItemService(boxItem())
		svc.updateErr = pkgerrors.Wrap(pkgerrors.CodeIntegrity, errors.New("check violation"), "Database integrity error")
		rec := httptest.NewRecorder()
		req := withURLParam(httptest.NewRequest(http.MethodPut, "/api/items/5/", strings.NewReader(`{"quantity":1}`)), "id", "5")
		ItemUpdate(svc, nil).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestItemDelete(t *testing.T) {
	svc := newStubItemService(boxItem())

	rec := httptest.NewRecorder()
	ItemDelete(svc, nil).ServeHTTP(rec, withURLParam(httptest.NewRequest(http.MethodDelete, "/api/items/5/", nil), "id", "5"))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, rec.Body.Len())
	assert.Equal(t, int64(5), svc.deletedID)

	rec = httptest.NewRecorder()
	ItemDelete(svc, nil).ServeHTTP(rec, withURLParam(httptest.NewRequest(http.MethodDelete, "/api/items/9/", nil), "id", "9"))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, msgItemDeleteNotFound, decodeEnvelope(t, rec).Message)
}
