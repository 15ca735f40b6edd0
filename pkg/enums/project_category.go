package enums

import "fmt"

// ProjectCategory maps to the project_category enum in Postgres.
type ProjectCategory string

const (
	ProjectCategoryDirect ProjectCategory = "direct"
	ProjectCategoryEtimad ProjectCategory = "etimad"
)

var validProjectCategories = []ProjectCategory{
	ProjectCategoryDirect,
	ProjectCategoryEtimad,
}

// IsValid reports whether the value matches the canonical project_category enum.
func (c ProjectCategory) IsValid() bool {
	for _, candidate := range validProjectCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseProjectCategory converts raw input into ProjectCategory.
func ParseProjectCategory(value string) (ProjectCategory, error) {
	for _, candidate := range validProjectCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid project category %q", value)
}
