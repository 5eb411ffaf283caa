package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	pkgcache "github.com/ghuser/inventory/pkg/cache"
	itemdomain "github.com/ghuser/inventory/services/item/domain"
	"github.com/ghuser/inventory/services/item/domain/models"
	"github.com/ghuser/inventory/services/item/domain/repositories"
)

// fakeRepo is an in-memory ItemRepository that enforces name uniqueness and
// counts calls per method.
type fakeRepo struct {
	mu     sync.Mutex
	rows   map[int64]models.Item
	nextID int64
	clock  time.Time
	calls  map[string]int
	err    error

	// beforeSave runs under the lock ahead of Save's own checks, standing in
	// for a concurrent writer that commits first.
	beforeSave func(r *fakeRepo)
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		rows:  make(map[int64]models.Item),
		clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		calls: make(map[string]int),
	}
}

func (r *fakeRepo) tick() time.Time {
	r.clock = r.clock.Add(time.Millisecond)
	return r.clock
}

func (r *fakeRepo) count(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[method]
}

func (r *fakeRepo) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		n += c
	}
	return n
}

func (r *fakeRepo) nameTaken(name string, except int64) bool {
	for id, row := range r.rows {
		if id != except && row.Name.String() == name {
			return true
		}
	}
	return false
}

func (r *fakeRepo) ExistsByName(_ context.Context, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["ExistsByName"]++
	if r.err != nil {
		return false, r.err
	}
	return r.nameTaken(name, 0), nil
}

func (r *fakeRepo) Save(_ context.Context, item *models.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["Save"]++
	if r.err != nil {
		return r.err
	}
	if r.beforeSave != nil {
		r.beforeSave(r)
	}
	if r.nameTaken(item.Name.String(), 0) {
		return itemdomain.ErrItemAlreadyExists
	}
	r.nextID++
	now := r.tick()
	item.ID, item.CreatedAt, item.UpdatedAt = r.nextID, now, now
	r.rows[item.ID] = *item
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id int64) (*models.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["GetByID"]++
	if r.err != nil {
		return nil, r.err
	}
	row, ok := r.rows[id]
	if !ok {
		return nil, itemdomain.ErrItemNotFound
	}
	return &row, nil
}

func (r *fakeRepo) Update(_ context.Context, item *models.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["Update"]++
	if r.err != nil {
		return r.err
	}
	if _, ok := r.rows[item.ID]; !ok {
		return itemdomain.ErrItemNotFound
	}
	if r.nameTaken(item.Name.String(), item.ID) {
		return itemdomain.ErrItemAlreadyExists
	}
	item.UpdatedAt = r.tick()
	r.rows[item.ID] = *item
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["Delete"]++
	if r.err != nil {
		return r.err
	}
	if _, ok := r.rows[id]; !ok {
		return itemdomain.ErrItemNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *fakeRepo) List(_ context.Context, opts repositories.QueryOpts) ([]*models.Item, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["List"]++
	if r.err != nil {
		return nil, 0, r.err
	}
	var all []*models.Item
	for _, row := range r.rows {
		if opts.Search == "" || strings.Contains(strings.ToLower(row.Name.String()), strings.ToLower(opts.Search)) {
			all = append(all, &row)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	total := len(all)
	if opts.Offset > len(all) {
		opts.Offset = len(all)
	}
	all = all[opts.Offset:]
	if opts.Limit < len(all) {
		all = all[:opts.Limit]
	}
	return all, total, nil
}

// fakeCache mirrors the guarded semantics of the real caches in memory.
type fakeCache struct {
	mu         sync.Mutex
	entries    map[int64]pkgcache.CachedItem
	tombstones map[int64]bool
	calls      map[string]int
	err        error
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		entries:    make(map[int64]pkgcache.CachedItem),
		tombstones: make(map[int64]bool),
		calls:      make(map[string]int),
	}
}

func (c *fakeCache) count(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method]
}

func (c *fakeCache) has(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[id]
	return ok
}

func (c *fakeCache) Get(_ context.Context, id int64) (*pkgcache.CachedItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls["Get"]++
	if c.err != nil {
		return nil, c.err
	}
	e, ok := c.entries[id]
	if !ok {
		return nil, pkgcache.ErrCacheMiss
	}
	return &e, nil
}

func (c *fakeCache) Set(_ context.Context, item *pkgcache.CachedItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls["Set"]++
	if c.err != nil {
		return c.err
	}
	if !c.tombstones[item.ID] {
		c.entries[item.ID] = *item
	}
	return nil
}

func (c *fakeCache) Populate(_ context.Context, item *pkgcache.CachedItem) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls["Populate"]++
	if c.err != nil {
		return false, c.err
	}
	if c.tombstones[item.ID] {
		return false, nil
	}
	if cur, ok := c.entries[item.ID]; ok && cur.Version() >= item.Version() {
		return false, nil
	}
	c.entries[item.ID] = *item
	return true, nil
}

func (c *fakeCache) Delete(_ context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls["Delete"]++
	if c.err != nil {
		return c.err
	}
	delete(c.entries, id)
	c.tombstones[id] = true
	return nil
}

func (c *fakeCache) Ping(context.Context) error { return c.err }
