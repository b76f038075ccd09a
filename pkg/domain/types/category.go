package types

import "strings"

// Category represents the risk level an assessment is classified into
type Category string

const (
	CategoryLow    Category = "low"
	CategoryMedium Category = "medium"
	CategoryHigh   Category = "high"
)

// AllCategories returns all valid categories ordered from least to most severe
func AllCategories() []Category {
	return []Category{
		CategoryLow,
		CategoryMedium,
		CategoryHigh,
	}
}

// IsValid checks if the category is valid
func (c Category) IsValid() bool {
	switch c {
	case CategoryLow,
		CategoryMedium,
		CategoryHigh:
		return true
	default:
		return false
	}
}

// Label returns the upper-case label used in explanations (e.g. "LOW")
func (c Category) Label() string {
	return strings.ToUpper(string(c))
}

// String returns the string representation of the category
func (c Category) String() string {
	return string(c)
}
