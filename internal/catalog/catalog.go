package catalog

import (
	"fmt"
	"strings"
)

// Food is a catalog entry with energy and macros per 100 g plus the
// metadata the planner filters on.
type Food struct {
	Name           string   `json:"name"`
	KcalPer100g    float64  `json:"kcal_per_100g"`
	CarbsPer100g   float64  `json:"carbs_per_100g"`
	ProteinPer100g float64  `json:"protein_per_100g"`
	FatPer100g     float64  `json:"fat_per_100g"`
	Tags           []string `json:"tags,omitempty"`
	Allergens      []string `json:"allergens,omitempty"`
	// LactoseFree is tri-state: a food that does not declare the flag
	// counts as lactose-free.
	LactoseFree *bool `json:"lactose_free,omitempty"`
}

// IsLactoseFree reports whether the food is safe for a lactose intolerant
// user. Undeclared foods count as safe.
func (f Food) IsLactoseFree() bool {
	return f.LactoseFree == nil || *f.LactoseFree
}

// HasAnyTag reports whether the food carries at least one of the given tags.
func (f Food) HasAnyTag(tags map[string]bool) bool {
	for _, t := range f.Tags {
		if tags[t] {
			return true
		}
	}
	return false
}

// Validate checks the fields the planner depends on.
func (f Food) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("food has an empty name")
	}
	if f.KcalPer100g < 0 || f.CarbsPer100g < 0 || f.ProteinPer100g < 0 || f.FatPer100g < 0 {
		return fmt.Errorf("food %q has negative nutrition values", f.Name)
	}
	return nil
}

// TemplateItem is one food reference inside a meal template. Grams of zero
// means the role default portion applies.
type TemplateItem struct {
	Name  string  `json:"name"`
	Grams float64 `json:"grams,omitempty"`
	Role  string  `json:"role,omitempty"`
}

// Template is a curated meal: a named list of foods that serves one or more
// slot purposes.
type Template struct {
	Name     string         `json:"name"`
	Purpose  string         `json:"purpose,omitempty"`
	Purposes []string       `json:"purposes,omitempty"`
	Items    []TemplateItem `json:"items"`
}

// MatchesPurpose reports whether the template serves the given slot purpose,
// either via its single purpose field or its purposes list.
func (t Template) MatchesPurpose(purpose string) bool {
	if t.Purpose == purpose {
		return true
	}
	for _, p := range t.Purposes {
		if p == purpose {
			return true
		}
	}
	return false
}

// Validate checks that the template can be resolved against a food catalog.
func (t Template) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("template has an empty name")
	}
	if len(t.Items) == 0 {
		return fmt.Errorf("template %q has no items", t.Name)
	}
	for _, it := range t.Items {
		if strings.TrimSpace(it.Name) == "" {
			return fmt.Errorf("template %q has an item without a food name", t.Name)
		}
		if it.Grams < 0 {
			return fmt.Errorf("template %q has a negative portion for %q", t.Name, it.Name)
		}
	}
	return nil
}
