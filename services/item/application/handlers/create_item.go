package handlers

import (
	"net/http"

	"github.com/ghuser/inventory/pkg/errhttp"
	"github.com/ghuser/inventory/pkg/httpx"
	"github.com/ghuser/inventory/pkg/logger"
	pkgvalidator "github.com/ghuser/inventory/pkg/validator"
	appsvcs "github.com/ghuser/inventory/services/item/application/services"
)

// CreateItemHandler handles POST /items/ requests.
type CreateItemHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewCreateItemHandler returns a CreateItemHandler backed by the given services.
func NewCreateItemHandler(svc *appsvcs.Services, log logger.Logger) *CreateItemHandler {
	return &CreateItemHandler{svc: svc, log: log}
}

// Execute creates a new item.
//
//	@Summary		Create item
//	@Description	Creates a new item. Names are unique.
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		CreateItemRequest	true	"Item creation request"
//	@Success		201		{object}	ItemResponse
//	@Failure		400		{object}	httpx.ErrorBody
//	@Failure		401		{object}	httpx.ErrorBody
//	@Router			/items/ [post]
func (h *CreateItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.DecodeRequest[CreateItemRequest](w, r)
	if !ok {
		return
	}

	item, err := h.svc.Item.Create(r.Context(), req.fields())
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, toItemResponse(item))
}
