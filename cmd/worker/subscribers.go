package main

import (
	"context"

	"github.com/ghuser/inventory/pkg/events"
	"github.com/ghuser/inventory/pkg/logger"
	itemEvents "github.com/ghuser/inventory/services/item/domain/events"
)

// itemCacheSync is the part of ItemService the worker drives.
type itemCacheSync interface {
	RefreshCache(ctx context.Context, id int64) error
	EvictCache(ctx context.Context, id int64) error
}

type itemHandler = func(context.Context, itemEvents.ItemEvent) error

// itemHandlers maps each item topic to its handler. Handlers are idempotent:
// a refresh never overwrites a newer snapshot and an eviction can repeat.
func itemHandlers(svc itemCacheSync, log logger.Logger) map[string]itemHandler {
	return map[string]itemHandler{
		itemEvents.TopicItemCreated: func(ctx context.Context, evt itemEvents.ItemEvent) error {
			log.InfoContext(ctx, "item created", "item_id", evt.ItemID, "event_id", evt.EventID)
			return nil
		},
		itemEvents.TopicItemUpdated: func(ctx context.Context, evt itemEvents.ItemEvent) error {
			return svc.RefreshCache(ctx, evt.ItemID)
		},
		itemEvents.TopicItemDeleted: func(ctx context.Context, evt itemEvents.ItemEvent) error {
			return svc.EvictCache(ctx, evt.ItemID)
		},
	}
}

// registerSubscribers subscribes every item handler and drains its error
// channel into the log.
func registerSubscribers(ctx context.Context, bus *events.EventBus, svc itemCacheSync, log logger.Logger) error {
	topics := make([]string, 0, 3)
	for topic, handler := range itemHandlers(svc, log) {
		errCh, err := events.SubscribeJSON(ctx, bus, topic, handler)
		if err != nil {
			return err
		}
		go func() {
			for err := range errCh {
				log.ErrorContext(ctx, "subscriber error", "topic", topic, "error", err)
			}
		}()
		topics = append(topics, topic)
	}
	log.Info("event subscribers registered", "topics", topics)
	return nil
}
