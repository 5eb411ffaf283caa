package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/ghuser/inventory/pkg/database"
	"github.com/ghuser/inventory/pkg/events"
	itemdomain "github.com/ghuser/inventory/services/item/domain"
	domainevents "github.com/ghuser/inventory/services/item/domain/events"
	"github.com/ghuser/inventory/services/item/domain/models"
	"github.com/ghuser/inventory/services/item/domain/repositories"
	"github.com/ghuser/inventory/services/item/infrastructure/persistence/postgres/db"
)

// ItemRepository implements repositories.ItemRepository against PostgreSQL.
type ItemRepository struct {
	db  *database.Database
	bus *events.EventBus
}

// NewItemRepository returns an ItemRepository backed by the given connection pool
// and event bus. The bus is used to publish item events in the same
// transaction as each write; pass nil to disable publishing.
func NewItemRepository(pool *database.Database, bus *events.EventBus) *ItemRepository {
	return &ItemRepository{db: pool, bus: bus}
}

// ExistsByName reports whether an item with the given name exists.
func (r *ItemRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	exists, err := db.New(r.db.DB()).ItemExistsByName(ctx, name)
	if err != nil {
		return false, fmt.Errorf("check item name: %w", err)
	}
	return exists, nil
}

// Save inserts a new Item and publishes item.created within the same transaction.
// Returns ErrItemAlreadyExists on unique constraint violations.
func (r *ItemRepository) Save(ctx context.Context, item *models.Item) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		row, err := db.New(tx).InsertItem(ctx, db.InsertItemParams{
			Name:        item.Name.String(),
			Description: item.Description,
			Quantity:    item.Quantity,
			Price:       item.Price.Decimal(),
			Category:    item.Category.String(),
		})
		if err != nil {
			return translateWriteError("insert item", err)
		}
		item.ID = row.ID
		item.CreatedAt = row.CreatedAt.UTC()
		item.UpdatedAt = row.UpdatedAt.UTC()

		return r.publish(ctx, tx, domainevents.TopicItemCreated, item.ID, item)
	})
}

// GetByID retrieves an Item by ID. Returns ErrItemNotFound if not found.
func (r *ItemRepository) GetByID(ctx context.Context, id int64) (*models.Item, error) {
	row, err := db.New(r.db.DB()).GetItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, itemdomain.ErrItemNotFound
		}
		return nil, fmt.Errorf("query item: %w", err)
	}
	return rowToItem(row)
}

// Update replaces the mutable fields of an existing Item, refreshes UpdatedAt
// and publishes item.updated within the same transaction.
func (r *ItemRepository) Update(ctx context.Context, item *models.Item) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		updatedAt, err := db.New(tx).UpdateItem(ctx, db.UpdateItemParams{
			ID:          item.ID,
			Name:        item.Name.String(),
			Description: item.Description,
			Quantity:    item.Quantity,
			Price:       item.Price.Decimal(),
			Category:    item.Category.String(),
		})
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return itemdomain.ErrItemNotFound
			}
			return translateWriteError("update item", err)
		}
		item.UpdatedAt = updatedAt.UTC()

		return r.publish(ctx, tx, domainevents.TopicItemUpdated, item.ID, item)
	})
}

// Delete removes an item by ID and publishes item.deleted within the same transaction.
func (r *ItemRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		n, err := db.New(tx).DeleteItem(ctx, id)
		if err != nil {
			return fmt.Errorf("delete item: %w", err)
		}
		if n == 0 {
			return itemdomain.ErrItemNotFound
		}
		return r.publish(ctx, tx, domainevents.TopicItemDeleted, id, nil)
	})
}

// List retrieves a page of items ordered by name and the total matching count.
func (r *ItemRepository) List(ctx context.Context, opts repositories.QueryOpts) ([]*models.Item, int, error) {
	q := db.New(r.db.DB())

	rows, err := q.ListItems(ctx, db.ListItemsParams{
		Search:    opts.Search,
		RowLimit:  int32(opts.Limit),
		RowOffset: int32(opts.Offset),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("query items: %w", err)
	}

	total, err := q.CountItems(ctx, opts.Search)
	if err != nil {
		return nil, 0, fmt.Errorf("count items: %w", err)
	}

	items := make([]*models.Item, len(rows))
	for i, row := range rows {
		item, err := rowToItem(row)
		if err != nil {
			return nil, 0, err
		}
		items[i] = item
	}
	return items, int(total), nil
}

func (r *ItemRepository) publish(ctx context.Context, tx *sql.Tx, topic string, id int64, item *models.Item) error {
	if r.bus == nil {
		return nil
	}
	msg, err := newEventMessage(topic, id, item)
	if err != nil {
		return err
	}
	return r.bus.PublishTx(ctx, tx, topic, msg)
}

// newEventMessage builds the Watermill message for an item event. item is nil
// for deletions.
func newEventMessage(topic string, id int64, item *models.Item) (*message.Message, error) {
	event := domainevents.ItemEvent{
		EventID:    uuid.New(),
		Version:    1,
		ItemID:     id,
		OccurredAt: time.Now().UTC(),
	}
	if item != nil {
		event.Name = item.Name.String()
		event.UpdatedAt = item.UpdatedAt
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal %s event: %w", topic, err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event_id", event.EventID.String())
	msg.Metadata.Set("event_version", "1")
	return msg, nil
}

// translateWriteError maps constraint violations onto domain errors. Check
// violations only happen if a caller bypassed domain validation, so they are
// reported as a generic invalid item.
func translateWriteError(op string, err error) error {
	switch {
	case database.IsUniqueViolation(err):
		return itemdomain.ErrItemAlreadyExists
	case database.IsCheckViolation(err):
		return fmt.Errorf("%s: %w: %w", op, itemdomain.ErrInvalidItem, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// rowToItem maps a db.Item to a domain models.Item.
func rowToItem(row db.Item) (*models.Item, error) {
	price, err := models.NewPrice(row.Price)
	if err != nil {
		return nil, fmt.Errorf("item %d: stored price: %w", row.ID, err)
	}
	category, err := models.ParseCategory(row.Category)
	if err != nil {
		return nil, fmt.Errorf("item %d: stored category: %w", row.ID, err)
	}
	return &models.Item{
		ID:          row.ID,
		Name:        models.ItemName(row.Name),
		Description: row.Description,
		Quantity:    row.Quantity,
		Price:       price,
		Category:    category,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}, nil
}
