package services

import (
	"github.com/ghuser/inventory/pkg/app"
	"github.com/ghuser/inventory/services/item/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Item *ItemService
}

// New wires all item application services with infrastructure from the Application container.
func New(a *app.Application) *Services {
	repo := postgres.NewItemRepository(a.Db, a.EventBus)
	return &Services{
		Item: NewItemService(repo, a.ItemCache, a.Logger, a.Config.CacheCallTimeout),
	}
}
