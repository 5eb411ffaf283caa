package cache

import (
	"fmt"

	"github.com/ghuser/inventory/pkg/config"
)

// NewItemCache returns the item cache selected by cfg.CacheBackend.
// The Redis backend reuses rc; the Memcached backend dials cfg.MemcacheServers.
func NewItemCache(cfg *config.Config, rc *RedisClient) (ItemCache, error) {
	switch cfg.CacheBackend {
	case "", config.CacheBackendRedis:
		if rc == nil {
			return nil, fmt.Errorf("redis item cache: no redis client")
		}
		return NewRedisItemCache(rc, cfg.ItemCacheTTL), nil
	case config.CacheBackendMemcache:
		mc, err := NewMemcacheClient(cfg)
		if err != nil {
			return nil, err
		}
		return NewMemcacheItemCache(mc, cfg.ItemCacheTTL), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}
