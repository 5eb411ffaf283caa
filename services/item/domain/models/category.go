package models

import "fmt"

// Category classifies an item. The zero value is not valid; use ParseCategory.
type Category string

const (
	CategoryElectronics Category = "electronics"
	CategoryClothing    Category = "clothing"
	CategoryFood        Category = "food"
	CategoryFurniture   Category = "furniture"
	CategoryOther       Category = "other"
)

// Categories lists every accepted category in display order.
var Categories = []Category{
	CategoryElectronics,
	CategoryClothing,
	CategoryFood,
	CategoryFurniture,
	CategoryOther,
}

// ParseCategory maps s to a Category. An empty string yields CategoryOther.
func ParseCategory(s string) (Category, error) {
	if s == "" {
		return CategoryOther, nil
	}
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%q is not a valid choice", s)
}

func (c Category) String() string {
	return string(c)
}
