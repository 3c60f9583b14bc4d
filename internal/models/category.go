package models

import (
	"fmt"
	"strings"
)

// Category classifies a feedback post.
type Category string

const (
	CategoryFeature     Category = "Feature"
	CategoryImprovement Category = "Improvement"
	CategoryBug         Category = "Bug"
	CategoryIntegration Category = "Integration"
	CategoryPerformance Category = "Performance"
	CategoryOther       Category = "Other"
)

var Categories = []Category{
	CategoryFeature,
	CategoryImprovement,
	CategoryBug,
	CategoryIntegration,
	CategoryPerformance,
	CategoryOther,
}

func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("invalid category %q: must be one of %s", s, CategoryList())
}

// CategoryList returns the allowed categories as a comma separated string.
func CategoryList() string {
	names := make([]string, len(Categories))
	for i, c := range Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
