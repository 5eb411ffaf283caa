package handlers

import (
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/ghuser/inventory/pkg/auth"
	"github.com/ghuser/inventory/pkg/errhttp"
	"github.com/ghuser/inventory/pkg/httpx"
	"github.com/ghuser/inventory/pkg/logger"
	pkgvalidator "github.com/ghuser/inventory/pkg/validator"
	appsvcs "github.com/ghuser/inventory/services/user/application/services"
)

// LoginHandler handles POST /login/ requests.
type LoginHandler struct {
	svc    *appsvcs.Services
	tokens *auth.TokenIssuer
	store  sessions.Store
	log    logger.Logger
}

// NewLoginHandler returns a LoginHandler. store may be nil, in which case
// no session cookie is set.
func NewLoginHandler(svc *appsvcs.Services, tokens *auth.TokenIssuer, store sessions.Store, log logger.Logger) *LoginHandler {
	return &LoginHandler{svc: svc, tokens: tokens, store: store, log: log}
}

// Execute checks the credentials and issues a token pair. It also starts a
// session so browser clients can authenticate by cookie.
//
//	@Summary	Login
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		LoginRequest	true	"Account credentials"
//	@Success	200		{object}	TokenPairResponse
//	@Failure	400		{object}	httpx.ErrorBody
//	@Failure	401		{object}	httpx.ErrorBody
//	@Router		/login/ [post]
func (h *LoginHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[LoginRequest](w, r)
	if !ok {
		return
	}

	p, err := h.svc.User.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}

	pair, err := h.tokens.Issue(p)
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}

	if h.store != nil {
		if err := auth.StartSession(w, r, h.store, p); err != nil {
			h.log.WarnContext(r.Context(), "failed to start session", "user_id", p.UserID, "error", err)
		}
	}

	logger.ScopeFromCtx(r.Context()).SetUser(p.Username)
	httpx.JSON(w, http.StatusOK, TokenPairResponse{Access: pair.Access, Refresh: pair.Refresh})
}
