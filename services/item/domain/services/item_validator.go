// Package services contains stateless domain services for the item bounded context.
// Domain services enforce business rules that operate purely on domain types
// and have zero external dependencies beyond stdlib and the domain layer.
package services

import (
	"fmt"
	"strings"
	"unicode"

	itemdomain "github.com/ghuser/inventory/services/item/domain"
	"github.com/ghuser/inventory/services/item/domain/models"
)

// ValidateName enforces business rules for ItemName beyond the structural
// length constraint enforced by the ItemName constructor.
//
// Business rules:
//   - Must not be only whitespace characters
//   - No control characters (Unicode category Cc)
func ValidateName(name models.ItemName) error {
	s := name.String()

	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("must not be only whitespace")
	}

	for _, r := range s {
		if unicode.IsControl(r) {
			return fmt.Errorf("must not contain control characters")
		}
	}

	return nil
}

// ValidateItem runs the business rules on an Item built by models.NewItem
// or mutated by Item.Replace, before it is persisted.
func ValidateItem(item *models.Item) error {
	if item == nil {
		return fmt.Errorf("item cannot be nil")
	}

	ve := itemdomain.NewValidationError()
	if err := ValidateName(item.Name); err != nil {
		ve.Add("name", err.Error())
	}
	return ve.OrNil()
}
