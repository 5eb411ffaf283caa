package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/ghuser/inventory/pkg/config"
)

func TestNewMemcacheClient_NoServers(t *testing.T) {
	if _, err := NewMemcacheClient(&config.Config{}); err == nil {
		t.Fatal("expected error when no servers are configured")
	}
}

func TestNewMemcacheItemCache_Expiration(t *testing.T) {
	tests := []struct {
		ttl  time.Duration
		want int32
	}{
		{0, 300},
		{300 * time.Second, 300},
		{1500 * time.Millisecond, 2},
	}
	for _, tt := range tests {
		c := NewMemcacheItemCache(memcache.New("localhost:11211"), tt.ttl)
		if c.expiration != tt.want {
			t.Errorf("ttl %v: expiration = %d, want %d", tt.ttl, c.expiration, tt.want)
		}
	}
}

// Integration tests: skipped unless MEMCACHE_SERVERS is set.
func TestMemcacheItemCacheIntegration(t *testing.T) {
	servers := os.Getenv("MEMCACHE_SERVERS")
	if servers == "" {
		t.Skip("MEMCACHE_SERVERS not set; skipping integration tests")
	}

	mc, err := NewMemcacheClient(&config.Config{MemcacheServers: servers})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	c := NewMemcacheItemCache(mc, 5*time.Second)
	id := time.Now().UnixNano()
	base := time.Now().UTC().Truncate(time.Microsecond)

	if _, err := c.Get(ctx, id); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}

	ok, err := c.Populate(ctx, sampleItem(id, base))
	if err != nil || !ok {
		t.Fatalf("expected populate to store, got %v, %v", ok, err)
	}
	ok, err = c.Populate(ctx, sampleItem(id, base))
	if err != nil || ok {
		t.Fatalf("expected same-version populate to be refused, got %v, %v", ok, err)
	}

	if err := c.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := c.Set(ctx, sampleItem(id, base.Add(time.Hour))); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := c.Get(ctx, id); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected tombstone to block set, got %v", err)
	}
}
