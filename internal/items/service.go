package items

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/angelmondragon/inventory-backend/pkg/cache"
	"github.com/angelmondragon/inventory-backend/pkg/db"
	"github.com/angelmondragon/inventory-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/inventory-backend/pkg/errors"
	"github.com/angelmondragon/inventory-backend/pkg/logger"
	"github.com/angelmondragon/inventory-backend/pkg/metrics"
	"go.uber.org/multierr"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheTTL bounds how long a cached item may be served.
const DefaultCacheTTL = time.Hour

// MaxSlugBytes is the width of the slug column.
const MaxSlugBytes = 250

// Public messages surfaced by the item routes.
const (
	MsgItemNotFound = "Item does not exist"
	MsgUnexpected   = "An unexpected error occurred"
)

// DuplicateNameMessage is returned when another item already owns the name's slug.
func DuplicateNameMessage(name string) string {
	return fmt.Sprintf("An item with the name '%s' already exists.", name)
}

// Service exposes item lookups and writes over the record store and cache.
type Service interface {
	GetByID(ctx context.Context, id int64) (*models.Item, error)
	GetByName(ctx context.Context, name string) (*models.Item, bool, error)
	Create(ctx context.Context, input CreateInput) (*models.Item, error)
	Update(ctx context.Context, id int64, input UpdateInput) (*models.Item, error)
	Delete(ctx context.Context, id int64) error
}

type itemStore interface {
	FindByID(ctx context.Context, id int64) (*models.Item, bool, error)
	FindBySlug(ctx context.Context, slug string) (*models.Item, bool, error)
	Create(ctx context.Context, item *models.Item) error
	Update(ctx context.Context, item *models.Item) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// ServiceParams wires the item service dependencies.
type ServiceParams struct {
	Repo    itemStore
	Cache   cache.Store
	TTL     time.Duration
	Logger  *logger.Logger
	Metrics *metrics.CacheMetrics
}

type service struct {
	repo    itemStore
	cache   cache.Store
	ttl     time.Duration
	logg    *logger.Logger
	metrics *metrics.CacheMetrics
	loads   singleflight.Group
}

// NewService constructs the item service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("item repository required")
	}
	if params.Cache == nil {
		return nil, fmt.Errorf("cache store required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:    params.Repo,
		cache:   params.Cache,
		ttl:     ttl,
		logg:    logg,
		metrics: params.Metrics,
	}, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*models.Item, error) {
	key := IDKey(id)
	if item, ok := s.readCache(ctx, keyspaceID, key); ok {
		return item, nil
	}

	v, err := s.load(ctx, key, func(loadCtx context.Context) (any, error) {
		item, found, err := s.repo.FindByID(loadCtx, id)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeUnexpected, err, MsgUnexpected)
		}
		if !found {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, MsgItemNotFound)
		}
		s.writeCache(loadCtx, key, item)
		return item, nil
	})
	if err != nil {
		return nil, err
	}
	return copyItem(v.(*models.Item)), nil
}

func (s *service) GetByName(ctx context.Context, name string) (*models.Item, bool, error) {
	slug := Derive(name)
	if slug == "" {
		return nil, false, nil
	}

	key := SlugKey(slug)
	if item, ok := s.readCache(ctx, keyspaceSlug, key); ok {
		return item, true, nil
	}

	v, err := s.load(ctx, key, func(loadCtx context.Context) (any, error) {
		item, found, err := s.repo.FindBySlug(loadCtx, slug)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeUnexpected, err, MsgUnexpected)
		}
		if !found {
			return (*models.Item)(nil), nil
		}
		s.writeCache(loadCtx, key, item)
		return item, nil
	})
	if err != nil {
		return nil, false, err
	}
	item := v.(*models.Item)
	if item == nil {
		return nil, false, nil
	}
	return copyItem(item), true, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Item, error) {
	slug, err := slugFor(input.Name)
	if err != nil {
		return nil, err
	}

	item := &models.Item{
		Name:        input.Name,
		Slug:        slug,
		Description: input.Description,
		Quantity:    input.Quantity,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, classifyWriteError(err, input.Name)
	}

	s.writeCache(ctx, IDKey(item.ID), item)
	s.writeCache(ctx, SlugKey(item.Slug), item)
	return copyItem(item), nil
}

func (s *service) Update(ctx context.Context, id int64, input UpdateInput) (*models.Item, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldSlug := current.Slug

	updated := *current
	if input.Name != nil {
		updated.Name = *input.Name
	}
	if input.Description != nil {
		updated.Description = *input.Description
	}
	if input.Quantity != nil {
		updated.Quantity = *input.Quantity
	}
	if updated.Slug, err = slugFor(updated.Name); err != nil {
		return nil, err
	}

	found, err := s.repo.Update(ctx, &updated)
	if err != nil {
		return nil, classifyWriteError(err, updated.Name)
	}
	if !found {
		s.invalidate(ctx, IDKey(id), SlugKey(oldSlug))
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, MsgItemNotFound)
	}

	s.writeCache(ctx, IDKey(id), &updated)
	s.writeCache(ctx, SlugKey(updated.Slug), &updated)
	if updated.Slug != oldSlug {
		s.invalidate(ctx, SlugKey(oldSlug))
	}
	return copyItem(&updated), nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUnexpected, err, MsgUnexpected)
	}

	// The row may have been served from cache after another writer removed it;
	// the keys are stale either way.
	s.invalidate(ctx, IDKey(id), SlugKey(current.Slug))

	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, MsgItemNotFound)
	}
	return nil
}

func (s *service) readCache(ctx context.Context, keyspace, key string) (*models.Item, bool) {
	raw, err := s.cache.Get(ctx, key)
	if cache.IsMiss(err) {
		s.metrics.ObserveLookup(keyspace, metrics.CacheResultMiss)
		return nil, false
	}
	if err != nil {
		s.metrics.ObserveLookup(keyspace, metrics.CacheResultError)
		s.logg.Warn(s.logg.WithField(ctx, "cache_key", key), "item cache read failed", err)
		return nil, false
	}

	var item models.Item
	if err := json.Unmarshal(raw, &item); err != nil || item.ID == 0 {
		if err == nil {
			err = fmt.Errorf("cached item has no id")
		}
		s.metrics.ObserveLookup(keyspace, metrics.CacheResultError)
		s.logg.Warn(s.logg.WithField(ctx, "cache_key", key), "discarding corrupt cache entry", err)
		s.invalidate(ctx, key)
		return nil, false
	}

	s.metrics.ObserveLookup(keyspace, metrics.CacheResultHit)
	return &item, true
}

func (s *service) writeCache(ctx context.Context, key string, item *models.Item) {
	payload, err := json.Marshal(item)
	if err == nil {
		err = s.cache.Set(ctx, key, payload, s.ttl)
	}
	if err != nil {
		s.metrics.IncWriteFailure("set")
		s.logg.Warn(s.logg.WithField(ctx, "cache_key", key), "item cache write failed", err)
	}
}

// invalidate attempts every delete in order, regardless of earlier failures.
func (s *service) invalidate(ctx context.Context, keys ...string) {
	var errs error
	for _, key := range keys {
		if err := s.cache.Delete(ctx, key); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("delete %s: %w", key, err))
		}
	}
	if errs != nil {
		s.metrics.IncWriteFailure("delete")
		s.logg.Warn(s.logg.WithField(ctx, "cache_keys", keys), "item cache invalidation failed", errs)
	}
}

// load coalesces concurrent misses on key into one store query. The query
// runs detached from any single caller's cancellation; each caller still
// stops waiting when its own ctx is done.
func (s *service) load(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	loadCtx := context.WithoutCancel(ctx)
	ch := s.loads.DoChan(key, func() (any, error) {
		return fn(loadCtx)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnexpected, ctx.Err(), MsgUnexpected)
	}
}

func slugFor(name string) (string, error) {
	slug := Derive(name)
	if slug == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "Validation error").
			WithDetails(map[string]string{"name": "Name must contain at least one letter or digit."})
	}
	if len(slug) > MaxSlugBytes {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "Validation error").
			WithDetails(map[string]string{"name": fmt.Sprintf("Name produces a slug longer than %d characters.", MaxSlugBytes)})
	}
	return slug, nil
}

func classifyWriteError(err error, name string) error {
	switch {
	case db.IsUniqueViolation(err, ""):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, DuplicateNameMessage(name))
	case db.IsConstraintViolation(err):
		return pkgerrors.Wrap(pkgerrors.CodeIntegrity, err, "Database integrity error")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeUnexpected, err, MsgUnexpected)
	}
}

func copyItem(item *models.Item) *models.Item {
	out := *item
	return &out
}
