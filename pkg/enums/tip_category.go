package enums

import "fmt"

// TipCategory groups technical articles shown to producers.
type TipCategory string

const (
	TipCategoryMarket     TipCategory = "Market"
	TipCategoryManagement TipCategory = "Management"
	TipCategoryStorage    TipCategory = "Storage"
	TipCategoryStrategy   TipCategory = "Strategy"
)

var validTipCategories = []TipCategory{
	TipCategoryMarket,
	TipCategoryManagement,
	TipCategoryStorage,
	TipCategoryStrategy,
}

// String implements fmt.Stringer.
func (c TipCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known TipCategory.
func (c TipCategory) IsValid() bool {
	for _, candidate := range validTipCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseTipCategory converts raw input into a TipCategory.
func ParseTipCategory(value string) (TipCategory, error) {
	for _, candidate := range validTipCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid tip category %q", value)
}
