package domain

import (
	"errors"
	"sort"
	"strings"
)

// Sentinel errors for the item domain. Use errors.Is() to check these.
var (
	// ErrItemNotFound indicates the requested item does not exist.
	ErrItemNotFound = errors.New("item not found")

	// ErrItemAlreadyExists indicates an item with the same name already exists.
	ErrItemAlreadyExists = errors.New("item already exists")

	// ErrInvalidItem indicates one or more item fields violate domain constraints.
	// Returned wrapped in a *ValidationError that lists the offending fields.
	ErrInvalidItem = errors.New("invalid item")
)

// ValidationError collects per-field problems found while validating an item.
// errors.Is(err, ErrInvalidItem) matches any *ValidationError.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns an empty ValidationError ready for Add calls.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records a problem for field. The first problem per field wins.
func (e *ValidationError) Add(field, problem string) {
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = problem
	}
}

// OrNil returns e when it holds at least one problem, otherwise nil.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrInvalidItem.Error() + ": " + strings.Join(parts, "; ")
}

// Is reports whether target is ErrInvalidItem.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidItem
}
