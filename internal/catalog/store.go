package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// LoadFoods reads a food catalog file and validates every entry.
func LoadFoods(path string) ([]Food, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read food catalog %s: %w", path, err)
	}

	var foods []Food
	if err := json.Unmarshal(data, &foods); err != nil {
		return nil, fmt.Errorf("failed to parse food catalog %s: %w", path, err)
	}

	for _, f := range foods {
		if err := f.Validate(); err != nil {
			return nil, fmt.Errorf("invalid food catalog %s: %w", path, err)
		}
	}
	return foods, nil
}

// LoadTemplates reads a meal template catalog file and validates every entry.
func LoadTemplates(path string) ([]Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template catalog %s: %w", path, err)
	}

	var templates []Template
	if err := json.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("failed to parse template catalog %s: %w", path, err)
	}

	for _, t := range templates {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("invalid template catalog %s: %w", path, err)
		}
	}
	return templates, nil
}

// SaveFoods writes a food catalog file, creating the parent directory if
// needed. Used by the importer to persist merged catalogs.
func SaveFoods(path string, foods []Food) error {
	data, err := json.MarshalIndent(foods, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal food catalog: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create catalog directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write food catalog %s: %w", path, err)
	}
	return nil
}

// MergeFoods combines imported entries into an existing catalog. An imported
// food replaces the existing entry with the same name in place; new foods are
// appended in their incoming order.
func MergeFoods(existing, imported []Food) []Food {
	merged := make([]Food, len(existing))
	copy(merged, existing)

	index := make(map[string]int, len(merged))
	for i, f := range merged {
		index[f.Name] = i
	}

	for _, f := range imported {
		if i, ok := index[f.Name]; ok {
			merged[i] = f
			continue
		}
		index[f.Name] = len(merged)
		merged = append(merged, f)
	}
	return merged
}
