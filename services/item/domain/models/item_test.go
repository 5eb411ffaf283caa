package models

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	itemdomain "github.com/ghuser/inventory/services/item/domain"
)

func validFields() ItemFields {
	return ItemFields{
		Name:     "Widget",
		Quantity: 5,
		Price:    decimalOf("9.99"),
		Category: "other",
	}
}

func decimalOf(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestNewItem(t *testing.T) {
	t.Run("valid fields", func(t *testing.T) {
		item, err := NewItem(validFields())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item.ID != 0 {
			t.Fatalf("expected unsaved item to have zero ID, got %d", item.ID)
		}
		if item.Name != "Widget" || item.Quantity != 5 || item.Price.String() != "9.99" {
			t.Fatalf("unexpected item: %+v", item)
		}
	})

	t.Run("empty category defaults to other", func(t *testing.T) {
		f := validFields()
		f.Category = ""
		item, err := NewItem(f)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item.Category != CategoryOther {
			t.Fatalf("expected category other, got %q", item.Category)
		}
	})

	t.Run("description defaults to empty", func(t *testing.T) {
		item, err := NewItem(validFields())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item.Description != "" {
			t.Fatalf("expected empty description, got %q", item.Description)
		}
	})

	t.Run("missing price", func(t *testing.T) {
		f := validFields()
		f.Price = nil
		_, err := NewItem(f)
		var ve *itemdomain.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("expected *ValidationError, got %v", err)
		}
		if ve.Fields["price"] != "this field is required" {
			t.Fatalf("expected required price problem, got %v", ve.Fields)
		}
	})

	t.Run("reports every invalid field", func(t *testing.T) {
		f := ItemFields{
			Name:     "",
			Quantity: -1,
			Price:    decimalOf("1.999"),
			Category: "weapons",
		}
		_, err := NewItem(f)
		if !errors.Is(err, itemdomain.ErrInvalidItem) {
			t.Fatalf("expected ErrInvalidItem, got %v", err)
		}
		var ve *itemdomain.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("expected *ValidationError, got %T", err)
		}
		for _, field := range []string{"name", "quantity", "price", "category"} {
			if _, ok := ve.Fields[field]; !ok {
				t.Errorf("expected problem for %q, got %v", field, ve.Fields)
			}
		}
	})
}

func TestItem_Replace(t *testing.T) {
	created := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	item, err := NewItem(validFields())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	item.ID = 1
	item.CreatedAt = created

	t.Run("keeps id and created_at", func(t *testing.T) {
		f := validFields()
		f.Quantity = 3
		if err := item.Replace(f); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item.ID != 1 || !item.CreatedAt.Equal(created) {
			t.Fatalf("identity fields changed: %+v", item)
		}
		if item.Quantity != 3 {
			t.Fatalf("expected quantity 3, got %d", item.Quantity)
		}
	})

	t.Run("invalid fields leave item untouched", func(t *testing.T) {
		before := *item
		f := validFields()
		f.Quantity = -5
		if err := item.Replace(f); err == nil {
			t.Fatal("expected error")
		}
		if item.Quantity != before.Quantity {
			t.Fatalf("item mutated on failed replace: %+v", item)
		}
	})
}

func TestItemPatch_Apply(t *testing.T) {
	qty := int64(3)
	category := "food"
	patch := ItemPatch{Quantity: &qty, Category: &category}

	got := patch.Apply(validFields())
	if got.Quantity != 3 || got.Category != "food" {
		t.Fatalf("patch not applied: %+v", got)
	}
	if got.Name != "Widget" || !got.Price.Equal(decimal.RequireFromString("9.99")) {
		t.Fatalf("unpatched fields changed: %+v", got)
	}
}
