package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultItemCacheTTL is the time-to-live for cached items.
	DefaultItemCacheTTL = 300 * time.Second

	itemCacheKeyPrefix = "item_"
	tombstoneSuffix    = ":deleted"
)

// ErrCacheMiss is returned by Get when the key does not exist or has expired.
var ErrCacheMiss = errors.New("cache: miss")

// CachedItem is the item snapshot stored in the cache.
// Fields mirror the item wire representation so a hit can be served without
// touching the store.
type CachedItem struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Quantity    int64     `json:"quantity"`
	Price       string    `json:"price"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Version orders snapshots of the same item. Microseconds match the
// precision of PostgreSQL timestamps and stay exact as Lua numbers.
func (c *CachedItem) Version() int64 {
	return c.UpdatedAt.UnixMicro()
}

// ItemCache is a best-effort item snapshot cache keyed by item ID.
//
// Every write is refused while the item's tombstone exists, so a snapshot read
// before a delete can never be written back after it.
type ItemCache interface {
	// Get returns ErrCacheMiss when no snapshot is cached.
	Get(ctx context.Context, id int64) (*CachedItem, error)
	// Set overwrites the snapshot unconditionally (tombstone aside).
	Set(ctx context.Context, item *CachedItem) error
	// Populate stores the snapshot only if no entry with the same or a newer
	// version exists. Reports whether it was stored.
	Populate(ctx context.Context, item *CachedItem) (bool, error)
	// Delete removes the snapshot and writes the tombstone. Idempotent.
	Delete(ctx context.Context, id int64) error
	// Ping checks backend health.
	Ping(ctx context.Context) error
}

// ItemKey builds the cache key for an item: "item_{id}".
func ItemKey(id int64) string {
	return itemCacheKeyPrefix + strconv.FormatInt(id, 10)
}

func tombstoneKey(id int64) string {
	return ItemKey(id) + tombstoneSuffix
}

// setItemScript writes the hash unless the tombstone exists.
// KEYS: item key, tombstone key. ARGV: version, ttl ms, field/value pairs...
var setItemScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[2]) == 1 then
  return 0
end
redis.call('DEL', KEYS[1])
redis.call('HSET', KEYS[1], unpack(ARGV, 3))
redis.call('PEXPIRE', KEYS[1], ARGV[2])
return 1
`)

// populateItemScript additionally refuses when the cached version is the
// same or newer.
var populateItemScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[2]) == 1 then
  return 0
end
local current = redis.call('HGET', KEYS[1], 'version')
if current and tonumber(current) >= tonumber(ARGV[1]) then
  return 0
end
redis.call('DEL', KEYS[1])
redis.call('HSET', KEYS[1], unpack(ARGV, 3))
redis.call('PEXPIRE', KEYS[1], ARGV[2])
return 1
`)

// RedisItemCache stores item snapshots as Redis hashes.
// Key format: "item_{id}", tombstone "item_{id}:deleted".
type RedisItemCache struct {
	client *RedisClient
	ttl    time.Duration
}

// NewRedisItemCache creates a RedisItemCache with the given entry TTL.
// A non-positive ttl falls back to DefaultItemCacheTTL.
func NewRedisItemCache(r *RedisClient, ttl time.Duration) *RedisItemCache {
	if ttl <= 0 {
		ttl = DefaultItemCacheTTL
	}
	return &RedisItemCache{client: r, ttl: ttl}
}

// Get retrieves a cached item by ID.
func (c *RedisItemCache) Get(ctx context.Context, id int64) (*CachedItem, error) {
	vals, err := c.client.Client().HGetAll(ctx, ItemKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if len(vals) == 0 {
		return nil, ErrCacheMiss
	}
	item, err := itemFromHash(vals)
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	return item, nil
}

// Set writes the snapshot with a fresh TTL unless the item is tombstoned.
func (c *RedisItemCache) Set(ctx context.Context, item *CachedItem) error {
	if _, err := c.run(ctx, setItemScript, item); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Populate writes the snapshot only when it is newer than what is cached.
func (c *RedisItemCache) Populate(ctx context.Context, item *CachedItem) (bool, error) {
	stored, err := c.run(ctx, populateItemScript, item)
	if err != nil {
		return false, fmt.Errorf("cache populate: %w", err)
	}
	return stored, nil
}

// Delete writes the tombstone and removes the snapshot in one MULTI block.
func (c *RedisItemCache) Delete(ctx context.Context, id int64) error {
	_, err := c.client.Client().TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, tombstoneKey(id), "1", c.ttl)
		pipe.Del(ctx, ItemKey(id))
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// Ping checks the Redis connection health.
func (c *RedisItemCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx)
}

func (c *RedisItemCache) run(ctx context.Context, script *redis.Script, item *CachedItem) (bool, error) {
	args := append([]any{item.Version(), c.ttl.Milliseconds()}, itemToHash(item)...)
	n, err := script.Run(ctx, c.client.Client(), []string{ItemKey(item.ID), tombstoneKey(item.ID)}, args...).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// itemToHash flattens a CachedItem into HSET field/value pairs.
func itemToHash(item *CachedItem) []any {
	return []any{
		"id", strconv.FormatInt(item.ID, 10),
		"name", item.Name,
		"description", item.Description,
		"quantity", strconv.FormatInt(item.Quantity, 10),
		"price", item.Price,
		"category", item.Category,
		"created_at", item.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at", item.UpdatedAt.UTC().Format(time.RFC3339Nano),
		"version", strconv.FormatInt(item.Version(), 10),
	}
}

func itemFromHash(vals map[string]string) (*CachedItem, error) {
	id, err := strconv.ParseInt(vals["id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse id: %w", err)
	}
	quantity, err := strconv.ParseInt(vals["quantity"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse quantity: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, vals["created_at"])
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, vals["updated_at"])
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &CachedItem{
		ID:          id,
		Name:        vals["name"],
		Description: vals["description"],
		Quantity:    quantity,
		Price:       vals["price"],
		Category:    vals["category"],
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}
