package handlers

import (
	"net/http"
	"strconv"

	"github.com/ghuser/inventory/pkg/errhttp"
	"github.com/ghuser/inventory/pkg/httpx"
	"github.com/ghuser/inventory/pkg/logger"
	appsvcs "github.com/ghuser/inventory/services/item/application/services"
	"github.com/ghuser/inventory/services/item/domain/repositories"
)

// ListItemsHandler handles GET /items/ requests.
type ListItemsHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewListItemsHandler returns a ListItemsHandler backed by the given services.
func NewListItemsHandler(svc *appsvcs.Services, log logger.Logger) *ListItemsHandler {
	return &ListItemsHandler{svc: svc, log: log}
}

// Execute returns a page of items ordered by name.
//
//	@Summary	List items
//	@Tags		items
//	@Produce	json
//	@Security	BearerAuth
//	@Param		limit	query		int		false	"Page size (default 20, max 100)"
//	@Param		offset	query		int		false	"Items to skip"
//	@Param		search	query		string	false	"Case-insensitive name substring"
//	@Success	200		{object}	ItemListResponse
//	@Failure	400		{object}	httpx.ErrorBody
//	@Failure	401		{object}	httpx.ErrorBody
//	@Router		/items/ [get]
func (h *ListItemsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	fields := map[string]string{}
	limit := queryInt(q.Get("limit"), "limit", fields)
	offset := queryInt(q.Get("offset"), "offset", fields)
	if len(fields) > 0 {
		httpx.JSON(w, http.StatusBadRequest, httpx.ErrorBody{
			Error:  "Validation failed",
			Code:   errhttp.CodeInvalid,
			Fields: fields,
		})
		return
	}

	opts := repositories.QueryOpts{Limit: limit, Offset: offset, Search: q.Get("search")}.Normalize()
	items, total, err := h.svc.Item.List(r.Context(), opts)
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}

	resp := ItemListResponse{
		Count:   total,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
		Results: make([]ItemResponse, len(items)),
	}
	for i, item := range items {
		resp.Results[i] = toItemResponse(item)
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func queryInt(raw, name string, fields map[string]string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		fields[name] = "Must be a non-negative integer"
		return 0
	}
	return n
}
