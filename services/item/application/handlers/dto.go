package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	itemdomain "github.com/ghuser/inventory/services/item/domain"
	"github.com/ghuser/inventory/services/item/domain/models"
)

// CreateItemRequest is the request body for POST /items/.
// price accepts a JSON string or number. Field rules are checked by the
// item service after the name uniqueness check; the binding and range tags
// here only feed the API docs.
type CreateItemRequest struct {
	Name        string           `json:"name"        binding:"required" maxLength:"255" example:"Widget"`
	Description string           `json:"description" example:"A small widget"`
	Quantity    int64            `json:"quantity"    minimum:"0" example:"5"`
	Price       *decimal.Decimal `json:"price"       binding:"required" swaggertype:"string" example:"9.99"`
	Category    string           `json:"category"    enums:"electronics,clothing,food,furniture,other" example:"other"`
} // @name CreateItemRequest

func (r *CreateItemRequest) fields() models.ItemFields {
	return models.ItemFields{
		Name:        r.Name,
		Description: r.Description,
		Quantity:    r.Quantity,
		Price:       r.Price,
		Category:    r.Category,
	}
}

// UpdateItemRequest is the request body for PUT /items/{id}/update/.
// Omitted fields keep their current value.
type UpdateItemRequest struct {
	Name        *string          `json:"name,omitempty"        maxLength:"255" example:"Widget"`
	Description *string          `json:"description,omitempty" example:"A small widget"`
	Quantity    *int64           `json:"quantity,omitempty"    minimum:"0" example:"3"`
	Price       *decimal.Decimal `json:"price,omitempty"       swaggertype:"string" example:"9.99"`
	Category    *string          `json:"category,omitempty"    enums:"electronics,clothing,food,furniture,other" example:"other"`
} // @name UpdateItemRequest

func (r *UpdateItemRequest) patch() models.ItemPatch {
	return models.ItemPatch{
		Name:        r.Name,
		Description: r.Description,
		Quantity:    r.Quantity,
		Price:       r.Price,
		Category:    r.Category,
	}
}

// ItemResponse is the wire form of an item.
type ItemResponse struct {
	ID          int64     `json:"id"          example:"1"`
	Name        string    `json:"name"        example:"Widget"`
	Description string    `json:"description" example:"A small widget"`
	Quantity    int64     `json:"quantity"    example:"5"`
	Price       string    `json:"price"       example:"9.99"`
	Category    string    `json:"category"    example:"other"`
	CreatedAt   time.Time `json:"created_at"  example:"2024-01-15T10:30:00Z"`
	UpdatedAt   time.Time `json:"updated_at"  example:"2024-01-15T10:30:00Z"`
} // @name ItemResponse

// ItemListResponse is a page of items.
type ItemListResponse struct {
	Count   int            `json:"count"   example:"1"`
	Limit   int            `json:"limit"   example:"20"`
	Offset  int            `json:"offset"  example:"0"`
	Results []ItemResponse `json:"results"`
} // @name ItemListResponse

// DeleteItemResponse confirms a deletion.
type DeleteItemResponse struct {
	Message string `json:"message" example:"Item deleted successfully."`
} // @name DeleteItemResponse

func toItemResponse(item *models.Item) ItemResponse {
	return ItemResponse{
		ID:          item.ID,
		Name:        item.Name.String(),
		Description: item.Description,
		Quantity:    item.Quantity,
		Price:       item.Price.String(),
		Category:    item.Category.String(),
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

// itemID parses the {id} path parameter. Anything other than a positive
// integer cannot name an item and is reported as not found.
func itemID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, itemdomain.ErrItemNotFound
	}
	return id, nil
}
