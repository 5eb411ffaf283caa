package handlers

import (
	"net/http"

	"github.com/ghuser/inventory/pkg/errhttp"
	"github.com/ghuser/inventory/pkg/httpx"
	"github.com/ghuser/inventory/pkg/logger"
	pkgvalidator "github.com/ghuser/inventory/pkg/validator"
	appsvcs "github.com/ghuser/inventory/services/user/application/services"
)

// RegisterHandler handles POST /register/ requests.
type RegisterHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewRegisterHandler returns a RegisterHandler backed by the given services.
func NewRegisterHandler(svc *appsvcs.Services, log logger.Logger) *RegisterHandler {
	return &RegisterHandler{svc: svc, log: log}
}

// Execute creates a new account.
//
//	@Summary	Register
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		RegisterRequest	true	"Account credentials"
//	@Success	201		{object}	RegisterResponse
//	@Failure	400		{object}	httpx.ErrorBody
//	@Router		/register/ [post]
func (h *RegisterHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[RegisterRequest](w, r)
	if !ok {
		return
	}

	user, err := h.svc.User.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, RegisterResponse{ID: user.ID, Username: user.Username})
}
