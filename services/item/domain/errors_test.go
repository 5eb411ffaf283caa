package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors_Messages(t *testing.T) {
	if ErrItemNotFound.Error() != "item not found" {
		t.Fatalf("unexpected message: %q", ErrItemNotFound.Error())
	}
	if ErrItemAlreadyExists.Error() != "item already exists" {
		t.Fatalf("unexpected message: %q", ErrItemAlreadyExists.Error())
	}
	if ErrInvalidItem.Error() != "invalid item" {
		t.Fatalf("unexpected message: %q", ErrInvalidItem.Error())
	}
}

func TestSentinelErrors_WrappedIdentity(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", ErrItemNotFound)
	if !errors.Is(wrapped, ErrItemNotFound) {
		t.Fatal("errors.Is must match wrapped ErrItemNotFound")
	}
}

func TestValidationError_IsInvalidItem(t *testing.T) {
	ve := NewValidationError()
	ve.Add("quantity", "must be greater than or equal to 0")

	err := fmt.Errorf("create item: %w", ve.OrNil())
	if !errors.Is(err, ErrInvalidItem) {
		t.Fatal("errors.Is must match ErrInvalidItem through a wrapped ValidationError")
	}

	var target *ValidationError
	if !errors.As(err, &target) {
		t.Fatal("errors.As must recover *ValidationError")
	}
	if target.Fields["quantity"] == "" {
		t.Fatalf("expected quantity problem, got %v", target.Fields)
	}
}

func TestValidationError_OrNil(t *testing.T) {
	if err := NewValidationError().OrNil(); err != nil {
		t.Fatalf("expected nil for empty ValidationError, got %v", err)
	}
}

func TestValidationError_FirstProblemWins(t *testing.T) {
	ve := NewValidationError()
	ve.Add("name", "first")
	ve.Add("name", "second")
	if ve.Fields["name"] != "first" {
		t.Fatalf("expected first problem to be kept, got %q", ve.Fields["name"])
	}
}

func TestValidationError_MessageIsSorted(t *testing.T) {
	ve := NewValidationError()
	ve.Add("quantity", "negative")
	ve.Add("category", "unknown")
	want := "invalid item: category: unknown; quantity: negative"
	if ve.Error() != want {
		t.Fatalf("got %q, want %q", ve.Error(), want)
	}
}
