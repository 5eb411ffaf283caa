package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	pkgcache "github.com/ghuser/inventory/pkg/cache"
	"github.com/ghuser/inventory/pkg/logger"
	itemdomain "github.com/ghuser/inventory/services/item/domain"
	"github.com/ghuser/inventory/services/item/domain/models"
	"github.com/ghuser/inventory/services/item/domain/repositories"
	domainsvcs "github.com/ghuser/inventory/services/item/domain/services"
)

const instrumentationName = "github.com/ghuser/inventory/services/item"

// ItemService orchestrates the item lifecycle across the store and the cache.
//
// The store is the source of truth. Every store write completes before the
// matching cache write or invalidation, and cache failures are logged and
// swallowed: they never fail the surrounding operation. Event publishing is
// handled by the repository layer (outbox pattern).
type ItemService struct {
	repo    repositories.ItemRepository
	cache   pkgcache.ItemCache
	timeout time.Duration
	log     logger.Logger

	tracer      trace.Tracer
	hits        metric.Int64Counter
	misses      metric.Int64Counter
	cacheErrors metric.Int64Counter
}

// NewItemService returns an ItemService wired with the given repository and cache.
// itemCache may be nil, in which case every read goes to the store.
// cacheTimeout bounds each individual cache call; zero means no bound.
func NewItemService(repo repositories.ItemRepository, itemCache pkgcache.ItemCache, log logger.Logger, cacheTimeout time.Duration) *ItemService {
	meter := otel.Meter(instrumentationName)
	return &ItemService{
		repo:        repo,
		cache:       itemCache,
		timeout:     cacheTimeout,
		log:         log,
		tracer:      otel.Tracer(instrumentationName),
		hits:        counter(meter, "item_cache_hits", "Item reads served from the cache"),
		misses:      counter(meter, "item_cache_misses", "Item reads that fell through to the store"),
		cacheErrors: counter(meter, "item_cache_errors", "Failed item cache operations"),
	}
}

func counter(meter metric.Meter, name, desc string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		return noop.Int64Counter{}
	}
	return c
}

// Create validates and persists a new Item. The cache is not populated;
// the first read does that.
//
// Returns ErrItemAlreadyExists if the name is taken and a *ValidationError
// (matching ErrInvalidItem) if any field is invalid.
func (s *ItemService) Create(ctx context.Context, f models.ItemFields) (*models.Item, error) {
	ctx, span := s.tracer.Start(ctx, "ItemService.Create")
	defer span.End()

	exists, err := s.repo.ExistsByName(ctx, f.Name)
	if err != nil {
		return nil, fmt.Errorf("check item name: %w", err)
	}
	if exists {
		return nil, itemdomain.ErrItemAlreadyExists
	}

	item, err := models.NewItem(f)
	if err != nil {
		return nil, err
	}
	if err := domainsvcs.ValidateItem(item); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, item); err != nil {
		return nil, fmt.Errorf("save item: %w", err)
	}
	span.SetAttributes(attribute.Int64("item.id", item.ID))

	s.log.InfoContext(ctx, "item created", "item_id", item.ID)
	return item, nil
}

// GetByID retrieves an Item using a read-through cache:
//  1. Serve from the cache on a hit.
//  2. On a miss or cache error, read the store.
//  3. Populate the cache before returning. Population never overwrites a
//     newer snapshot and is refused for deleted items.
func (s *ItemService) GetByID(ctx context.Context, id int64) (*models.Item, error) {
	ctx, span := s.tracer.Start(ctx, "ItemService.GetByID", trace.WithAttributes(attribute.Int64("item.id", id)))
	defer span.End()

	if item, ok := s.cached(ctx, id); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return item, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}

	s.populate(ctx, item)
	return item, nil
}

// Update applies patch to the current store values, validates the merged
// result, writes it to the store and then overwrites the cache entry.
// Concurrent updates are last-write-wins.
func (s *ItemService) Update(ctx context.Context, id int64, patch models.ItemPatch) (*models.Item, error) {
	ctx, span := s.tracer.Start(ctx, "ItemService.Update", trace.WithAttributes(attribute.Int64("item.id", id)))
	defer span.End()

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}

	if err := item.Replace(patch.Apply(item.Fields())); err != nil {
		return nil, err
	}
	if err := domainsvcs.ValidateItem(item); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}

	if s.cache != nil {
		cctx, cancel := s.cacheCtx(context.WithoutCancel(ctx))
		defer cancel()
		if err := s.cache.Set(cctx, toCached(item)); err != nil {
			s.cacheFailed(ctx, "set", id, err)
		}
	}

	s.log.InfoContext(ctx, "item updated", "item_id", id)
	return item, nil
}

// Delete removes the item from the store, then removes it from the cache and
// leaves a tombstone so no in-flight read can repopulate it.
func (s *ItemService) Delete(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "ItemService.Delete", trace.WithAttributes(attribute.Int64("item.id", id)))
	defer span.End()

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return fmt.Errorf("get item: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	if s.cache != nil {
		cctx, cancel := s.cacheCtx(context.WithoutCancel(ctx))
		defer cancel()
		if err := s.cache.Delete(cctx, id); err != nil {
			s.cacheFailed(ctx, "delete", id, err)
		}
	}

	s.log.InfoContext(ctx, "item deleted", "item_id", id)
	return nil
}

// List returns a page of items ordered by name plus the total match count.
// Reads bypass the cache.
func (s *ItemService) List(ctx context.Context, opts repositories.QueryOpts) ([]*models.Item, int, error) {
	items, total, err := s.repo.List(ctx, opts.Normalize())
	if err != nil {
		return nil, 0, fmt.Errorf("list items: %w", err)
	}
	return items, total, nil
}

// RefreshCache reloads an item from the store and populates the cache.
// An item that no longer exists is ignored; its deletion evicts it.
// Unlike the request paths, cache errors are returned so the caller can retry.
func (s *ItemService) RefreshCache(ctx context.Context, id int64) error {
	if s.cache == nil {
		return nil
	}
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, itemdomain.ErrItemNotFound) {
			return nil
		}
		return fmt.Errorf("get item: %w", err)
	}

	cctx, cancel := s.cacheCtx(ctx)
	defer cancel()
	stored, err := s.cache.Populate(cctx, toCached(item))
	if err != nil {
		return fmt.Errorf("refresh item %d: %w", id, err)
	}
	s.log.DebugContext(ctx, "item cache refreshed", "item_id", id, "stored", stored)
	return nil
}

// EvictCache removes an item from the cache and tombstones it.
func (s *ItemService) EvictCache(ctx context.Context, id int64) error {
	if s.cache == nil {
		return nil
	}
	cctx, cancel := s.cacheCtx(ctx)
	defer cancel()
	if err := s.cache.Delete(cctx, id); err != nil {
		return fmt.Errorf("evict item %d: %w", id, err)
	}
	return nil
}

// cached returns the cached item, or false on a miss or any cache failure.
func (s *ItemService) cached(ctx context.Context, id int64) (*models.Item, bool) {
	if s.cache == nil {
		return nil, false
	}

	cctx, cancel := s.cacheCtx(ctx)
	defer cancel()
	c, err := s.cache.Get(cctx, id)
	if err != nil {
		if errors.Is(err, pkgcache.ErrCacheMiss) {
			s.misses.Add(ctx, 1)
		} else {
			s.cacheFailed(ctx, "get", id, err)
		}
		return nil, false
	}

	item, err := fromCached(c)
	if err != nil {
		s.cacheFailed(ctx, "decode", id, err)
		return nil, false
	}
	s.hits.Add(ctx, 1)
	return item, true
}

func (s *ItemService) populate(ctx context.Context, item *models.Item) {
	if s.cache == nil {
		return
	}
	cctx, cancel := s.cacheCtx(context.WithoutCancel(ctx))
	defer cancel()
	if _, err := s.cache.Populate(cctx, toCached(item)); err != nil {
		s.cacheFailed(ctx, "populate", item.ID, err)
	}
}

func (s *ItemService) cacheCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *ItemService) cacheFailed(ctx context.Context, op string, id int64, err error) {
	s.cacheErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
	s.log.WarnContext(ctx, "item cache "+op+" failed", "item_id", id, "error", err)
}

func toCached(item *models.Item) *pkgcache.CachedItem {
	return &pkgcache.CachedItem{
		ID:          item.ID,
		Name:        item.Name.String(),
		Description: item.Description,
		Quantity:    item.Quantity,
		Price:       item.Price.String(),
		Category:    item.Category.String(),
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

func fromCached(c *pkgcache.CachedItem) (*models.Item, error) {
	price, err := models.ParsePrice(c.Price)
	if err != nil {
		return nil, fmt.Errorf("cached price: %w", err)
	}
	category, err := models.ParseCategory(c.Category)
	if err != nil {
		return nil, fmt.Errorf("cached category: %w", err)
	}
	return &models.Item{
		ID:          c.ID,
		Name:        models.ItemName(c.Name),
		Description: c.Description,
		Quantity:    c.Quantity,
		Price:       price,
		Category:    category,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}, nil
}
