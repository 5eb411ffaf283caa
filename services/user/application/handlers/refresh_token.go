package handlers

import (
	"errors"
	"net/http"

	"github.com/ghuser/inventory/pkg/auth"
	"github.com/ghuser/inventory/pkg/errhttp"
	"github.com/ghuser/inventory/pkg/httpx"
	"github.com/ghuser/inventory/pkg/logger"
	pkgvalidator "github.com/ghuser/inventory/pkg/validator"
	appsvcs "github.com/ghuser/inventory/services/user/application/services"
	userdomain "github.com/ghuser/inventory/services/user/domain"
)

// RefreshTokenHandler handles POST /token/refresh/ requests.
type RefreshTokenHandler struct {
	svc    *appsvcs.Services
	tokens *auth.TokenIssuer
	log    logger.Logger
}

// NewRefreshTokenHandler returns a RefreshTokenHandler.
func NewRefreshTokenHandler(svc *appsvcs.Services, tokens *auth.TokenIssuer, log logger.Logger) *RefreshTokenHandler {
	return &RefreshTokenHandler{svc: svc, tokens: tokens, log: log}
}

// Execute exchanges a refresh token for a new access token.
//
//	@Summary	Refresh access token
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		RefreshRequest	true	"Refresh token"
//	@Success	200		{object}	AccessTokenResponse
//	@Failure	400		{object}	httpx.ErrorBody
//	@Failure	401		{object}	httpx.ErrorBody
//	@Router		/token/refresh/ [post]
func (h *RefreshTokenHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[RefreshRequest](w, r)
	if !ok {
		return
	}

	claims, err := h.tokens.ParseRefresh(req.Refresh)
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}

	p, err := h.svc.User.Principal(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, userdomain.ErrUserNotFound) {
			err = auth.ErrInvalidToken
		}
		errhttp.WriteError(w, r, h.log, err)
		return
	}

	access, err := h.tokens.IssueAccess(p)
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, AccessTokenResponse{Access: access})
}
