package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/inventory/pkg/app"
	"github.com/ghuser/inventory/pkg/auth"
	"github.com/ghuser/inventory/pkg/logger"
	"github.com/ghuser/inventory/services/item/application/handlers"
	appsvcs "github.com/ghuser/inventory/services/item/application/services"
)

// ItemRoutes registers item endpoints on the provided chi router.
// Every item route requires an authenticated principal.
func ItemRoutes(r chi.Router, a *app.Application) {
	mount(r, appsvcs.New(a), a.Logger, auth.RequireAuth(a.Tokens, a.SessionStore, a.Logger))
}

func mount(r chi.Router, svcs *appsvcs.Services, log logger.Logger, requireAuth func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Route("/items", func(r chi.Router) {
			r.Post("/", handlers.NewCreateItemHandler(svcs, log).Execute)
			r.Get("/", handlers.NewListItemsHandler(svcs, log).Execute)
			r.Get("/{id}/", handlers.NewGetItemHandler(svcs, log).Execute)
			r.Put("/{id}/update/", handlers.NewUpdateItemHandler(svcs, log).Execute)
			r.Delete("/{id}/delete/", handlers.NewDeleteItemHandler(svcs, log).Execute)
		})
	})
}
