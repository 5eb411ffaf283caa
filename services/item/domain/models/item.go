package models

import (
	"time"

	"github.com/shopspring/decimal"

	itemdomain "github.com/ghuser/inventory/services/item/domain"
)

// Item is the core aggregate for this bounded context.
type Item struct {
	ID          int64 // assigned by the store; zero until saved
	Name        ItemName
	Description string
	Quantity    int64
	Price       Price
	Category    Category
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ItemFields holds the caller-supplied, not yet validated values of an item.
// A nil Price means the caller did not supply one.
type ItemFields struct {
	Name        string
	Description string
	Quantity    int64
	Price       *decimal.Decimal
	Category    string
}

// ItemPatch is a partial update. Nil fields keep their current value.
type ItemPatch struct {
	Name        *string
	Description *string
	Quantity    *int64
	Price       *decimal.Decimal
	Category    *string
}

// NewItem validates f and returns an unsaved Item. All field problems are
// reported together in a *itemdomain.ValidationError.
func NewItem(f ItemFields) (*Item, error) {
	item := &Item{}
	if err := item.assign(f); err != nil {
		return nil, err
	}
	return item, nil
}

// Replace validates f and overwrites every mutable field. ID and the
// timestamps are left to the store. On error the item is unchanged.
func (i *Item) Replace(f ItemFields) error {
	next := *i
	if err := next.assign(f); err != nil {
		return err
	}
	*i = next
	return nil
}

// Fields returns the item's mutable values as ItemFields.
func (i *Item) Fields() ItemFields {
	price := i.Price.Decimal()
	return ItemFields{
		Name:        i.Name.String(),
		Description: i.Description,
		Quantity:    i.Quantity,
		Price:       &price,
		Category:    i.Category.String(),
	}
}

// Apply overlays the non-nil patch values onto f.
func (p ItemPatch) Apply(f ItemFields) ItemFields {
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Description != nil {
		f.Description = *p.Description
	}
	if p.Quantity != nil {
		f.Quantity = *p.Quantity
	}
	if p.Price != nil {
		f.Price = p.Price
	}
	if p.Category != nil {
		f.Category = *p.Category
	}
	return f
}

func (i *Item) assign(f ItemFields) error {
	ve := itemdomain.NewValidationError()

	name, err := NewItemName(f.Name)
	if err != nil {
		ve.Add("name", err.Error())
	}

	if f.Quantity < 0 {
		ve.Add("quantity", "must be greater than or equal to 0")
	}

	var price Price
	if f.Price == nil {
		ve.Add("price", "this field is required")
	} else if price, err = NewPrice(*f.Price); err != nil {
		ve.Add("price", err.Error())
	}

	category, err := ParseCategory(f.Category)
	if err != nil {
		ve.Add("category", err.Error())
	}

	if err := ve.OrNil(); err != nil {
		return err
	}

	i.Name = name
	i.Description = f.Description
	i.Quantity = f.Quantity
	i.Price = price
	i.Category = category
	return nil
}
