package events

import (
	"time"

	"github.com/google/uuid"
)

// Watermill topics published by the item repository.
const (
	TopicItemCreated = "item.created"
	TopicItemUpdated = "item.updated"
	TopicItemDeleted = "item.deleted"
)

// ItemEvent is published after an Item row is inserted, replaced or removed.
// The same payload shape is used on all three topics; Name and UpdatedAt are
// empty on item.deleted.
// Consumers subscribe via EventBus.Subscribe(ctx, events.TopicItemUpdated, ...).
type ItemEvent struct {
	EventID    uuid.UUID `json:"event_id"` // Unique publish-time identifier for deduplication
	Version    int       `json:"version"`  // Schema version; increment on breaking changes
	ItemID     int64     `json:"item_id"`
	Name       string    `json:"name,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
