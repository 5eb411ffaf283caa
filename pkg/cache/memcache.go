package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/ghuser/inventory/pkg/config"
)

// MemcacheItemCache stores item snapshots as JSON values in Memcached.
//
// Memcached has no server-side scripting, so the tombstone and version checks
// are separate round trips. Populate uses Add/CompareAndSwap so two racing
// populations cannot both win, but a Delete landing between the tombstone
// check and the write is only caught by the next write's tombstone check.
type MemcacheItemCache struct {
	client     *memcache.Client
	expiration int32
}

// NewMemcacheClient creates a gomemcache client for cfg.MemcacheServers and
// verifies connectivity.
func NewMemcacheClient(cfg *config.Config) (*memcache.Client, error) {
	servers := cfg.MemcacheServerList()
	if len(servers) == 0 {
		return nil, fmt.Errorf("memcache: no servers configured")
	}
	mc := memcache.New(servers...)
	mc.Timeout = 500 * time.Millisecond
	mc.MaxIdleConns = 10
	if err := mc.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping memcache: %w", err)
	}
	return mc, nil
}

// NewMemcacheItemCache creates a MemcacheItemCache with the given entry TTL.
// A non-positive ttl falls back to DefaultItemCacheTTL.
func NewMemcacheItemCache(mc *memcache.Client, ttl time.Duration) *MemcacheItemCache {
	if ttl <= 0 {
		ttl = DefaultItemCacheTTL
	}
	return &MemcacheItemCache{client: mc, expiration: int32(math.Ceil(ttl.Seconds()))}
}

// Get retrieves a cached item by ID.
func (c *MemcacheItemCache) Get(_ context.Context, id int64) (*CachedItem, error) {
	it, err := c.client.Get(ItemKey(id))
	if err != nil {
		if errors.Is(err, memcache.ErrCacheMiss) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("cache get: %w", err)
	}
	var item CachedItem
	if err := json.Unmarshal(it.Value, &item); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return &item, nil
}

// Set writes the snapshot unless the item is tombstoned.
func (c *MemcacheItemCache) Set(_ context.Context, item *CachedItem) error {
	dead, err := c.tombstoned(item.ID)
	if err != nil || dead {
		return err
	}
	value, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(&memcache.Item{Key: ItemKey(item.ID), Value: value, Expiration: c.expiration}); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Populate writes the snapshot only when it is newer than what is cached.
func (c *MemcacheItemCache) Populate(_ context.Context, item *CachedItem) (bool, error) {
	dead, err := c.tombstoned(item.ID)
	if err != nil || dead {
		return false, err
	}
	value, err := json.Marshal(item)
	if err != nil {
		return false, fmt.Errorf("cache encode: %w", err)
	}

	existing, err := c.client.Get(ItemKey(item.ID))
	switch {
	case errors.Is(err, memcache.ErrCacheMiss):
		err = c.client.Add(&memcache.Item{Key: ItemKey(item.ID), Value: value, Expiration: c.expiration})
	case err != nil:
		return false, fmt.Errorf("cache populate: %w", err)
	default:
		var current CachedItem
		if jsonErr := json.Unmarshal(existing.Value, &current); jsonErr == nil && current.Version() >= item.Version() {
			return false, nil
		}
		existing.Value = value
		existing.Expiration = c.expiration
		err = c.client.CompareAndSwap(existing)
	}

	if errors.Is(err, memcache.ErrNotStored) || errors.Is(err, memcache.ErrCASConflict) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache populate: %w", err)
	}
	return true, nil
}

// Delete writes the tombstone first, then removes the snapshot.
func (c *MemcacheItemCache) Delete(_ context.Context, id int64) error {
	if err := c.client.Set(&memcache.Item{Key: tombstoneKey(id), Value: []byte("1"), Expiration: c.expiration}); err != nil {
		return fmt.Errorf("cache tombstone: %w", err)
	}
	if err := c.client.Delete(ItemKey(id)); err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// Ping checks the Memcached connection health.
func (c *MemcacheItemCache) Ping(_ context.Context) error {
	if err := c.client.Ping(); err != nil {
		return fmt.Errorf("memcache ping: %w", err)
	}
	return nil
}

func (c *MemcacheItemCache) tombstoned(id int64) (bool, error) {
	_, err := c.client.Get(tombstoneKey(id))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, memcache.ErrCacheMiss):
		return false, nil
	default:
		return false, fmt.Errorf("cache tombstone check: %w", err)
	}
}
