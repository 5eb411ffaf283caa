package handlers

import (
	"net/http"

	"github.com/ghuser/inventory/pkg/errhttp"
	"github.com/ghuser/inventory/pkg/httpx"
	"github.com/ghuser/inventory/pkg/logger"
	pkgvalidator "github.com/ghuser/inventory/pkg/validator"
	appsvcs "github.com/ghuser/inventory/services/item/application/services"
)

// UpdateItemHandler handles PUT /items/{id}/update/ requests.
type UpdateItemHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewUpdateItemHandler returns an UpdateItemHandler backed by the given services.
func NewUpdateItemHandler(svc *appsvcs.Services, log logger.Logger) *UpdateItemHandler {
	return &UpdateItemHandler{svc: svc, log: log}
}

// Execute applies a partial update. The next read reflects it immediately.
//
//	@Summary		Update item
//	@Description	Updates the supplied fields of an item; omitted fields are unchanged.
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		int					true	"Item ID"
//	@Param			request	body		UpdateItemRequest	true	"Fields to change"
//	@Success		200		{object}	ItemResponse
//	@Failure		400		{object}	httpx.ErrorBody
//	@Failure		401		{object}	httpx.ErrorBody
//	@Failure		404		{object}	httpx.ErrorBody
//	@Router			/items/{id}/update/ [put]
func (h *UpdateItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}

	req, ok := pkgvalidator.DecodeRequest[UpdateItemRequest](w, r)
	if !ok {
		return
	}

	item, err := h.svc.Item.Update(r.Context(), id, req.patch())
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toItemResponse(item))
}
