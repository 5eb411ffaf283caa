package handlers

import (
	"net/http"

	"github.com/ghuser/inventory/pkg/errhttp"
	"github.com/ghuser/inventory/pkg/httpx"
	"github.com/ghuser/inventory/pkg/logger"
	appsvcs "github.com/ghuser/inventory/services/item/application/services"
)

// DeleteItemHandler handles DELETE /items/{id}/delete/ requests.
type DeleteItemHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewDeleteItemHandler returns a DeleteItemHandler backed by the given services.
func NewDeleteItemHandler(svc *appsvcs.Services, log logger.Logger) *DeleteItemHandler {
	return &DeleteItemHandler{svc: svc, log: log}
}

// Execute deletes an item.
//
//	@Summary	Delete item
//	@Tags		items
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		int	true	"Item ID"
//	@Success	200	{object}	DeleteItemResponse
//	@Failure	401	{object}	httpx.ErrorBody
//	@Failure	404	{object}	httpx.ErrorBody
//	@Router		/items/{id}/delete/ [delete]
func (h *DeleteItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}

	if err := h.svc.Item.Delete(r.Context(), id); err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}

	httpx.JSON(w, http.StatusOK, DeleteItemResponse{Message: "Item deleted successfully."})
}
