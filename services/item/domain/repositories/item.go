package repositories

import (
	"context"

	"github.com/ghuser/inventory/services/item/domain/models"
)

// QueryOpts contains pagination and filter parameters for list queries.
type QueryOpts struct {
	Limit  int    // Maximum number of records to return
	Offset int    // Number of records to skip
	Search string // Case-insensitive substring match on name; empty matches all
}

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Normalize applies the default page size and clamps out-of-range values.
func (o QueryOpts) Normalize() QueryOpts {
	if o.Limit <= 0 {
		o.Limit = DefaultListLimit
	}
	if o.Limit > MaxListLimit {
		o.Limit = MaxListLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}

// ItemRepository is the persistence interface for the Item aggregate.
// The domain layer owns this interface; infrastructure implements it.
//
// Every write is atomic at the row level. Uniqueness of Name is enforced by
// the store and surfaces as ErrItemAlreadyExists.
type ItemRepository interface {
	// ExistsByName reports whether an item with exactly this name exists.
	ExistsByName(ctx context.Context, name string) (bool, error)

	// Save inserts a new Item and fills in its ID and timestamps.
	Save(ctx context.Context, item *models.Item) error

	GetByID(ctx context.Context, id int64) (*models.Item, error)

	// Update replaces every mutable field of an existing Item and refreshes
	// UpdatedAt. Returns ErrItemNotFound if the row is gone.
	Update(ctx context.Context, item *models.Item) error

	// Delete removes an item by ID. Returns ErrItemNotFound if no row matched.
	Delete(ctx context.Context, id int64) error

	// List retrieves a page of items ordered by name plus the total count
	// (ignoring pagination).
	List(ctx context.Context, opts QueryOpts) ([]*models.Item, int, error)
}
