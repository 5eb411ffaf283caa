package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/ghuser/inventory/pkg/app"
	"github.com/ghuser/inventory/pkg/auth"
	"github.com/ghuser/inventory/pkg/logger"
	"github.com/ghuser/inventory/services/user/application/handlers"
	appsvcs "github.com/ghuser/inventory/services/user/application/services"
)

// UserRoutes registers the account and token endpoints. None of them
// require authentication.
func UserRoutes(r chi.Router, a *app.Application) {
	mount(r, appsvcs.New(a), a.Tokens, a.SessionStore, a.Logger)
}

func mount(r chi.Router, svcs *appsvcs.Services, tokens *auth.TokenIssuer, store sessions.Store, log logger.Logger) {
	r.Post("/register/", handlers.NewRegisterHandler(svcs, log).Execute)
	r.Post("/login/", handlers.NewLoginHandler(svcs, tokens, store, log).Execute)
	r.Post("/token/refresh/", handlers.NewRefreshTokenHandler(svcs, tokens, log).Execute)
}
