package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFoods(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "catalog_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	t.Run("RoundTrip", func(t *testing.T) {
		path := filepath.Join(tempDir, "foods.json")
		foods := []Food{
			{Name: "Oats", KcalPer100g: 370, CarbsPer100g: 62, ProteinPer100g: 13, FatPer100g: 7, Tags: []string{"breakfast"}},
			{Name: "Milk", KcalPer100g: 64, CarbsPer100g: 5, ProteinPer100g: 3.3, FatPer100g: 3.6, LactoseFree: boolPtr(false)},
		}

		if err := SaveFoods(path, foods); err != nil {
			t.Fatalf("Failed to save foods: %v", err)
		}

		loaded, err := LoadFoods(path)
		if err != nil {
			t.Fatalf("Failed to load foods: %v", err)
		}
		if len(loaded) != 2 {
			t.Fatalf("Expected 2 foods, got %d", len(loaded))
		}
		if loaded[0].Name != "Oats" {
			t.Errorf("Expected first food 'Oats', got '%s'", loaded[0].Name)
		}
		if loaded[1].IsLactoseFree() {
			t.Error("Expected milk to keep its lactose_free=false flag")
		}
	})

	t.Run("MissingFile", func(t *testing.T) {
		if _, err := LoadFoods(filepath.Join(tempDir, "nope.json")); err == nil {
			t.Fatal("Expected an error for a missing catalog file, got nil")
		}
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		path := filepath.Join(tempDir, "broken.json")
		if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
			t.Fatalf("Failed to write broken file: %v", err)
		}
		if _, err := LoadFoods(path); err == nil {
			t.Fatal("Expected an error for malformed JSON, got nil")
		}
	})

	t.Run("InvalidEntry", func(t *testing.T) {
		path := filepath.Join(tempDir, "invalid.json")
		if err := os.WriteFile(path, []byte(`[{"name": "", "kcal_per_100g": 100}]`), 0644); err != nil {
			t.Fatalf("Failed to write invalid file: %v", err)
		}
		if _, err := LoadFoods(path); err == nil {
			t.Fatal("Expected an error for a food without a name, got nil")
		}
	})
}

func TestLoadTemplates(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "catalog_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	t.Run("Valid", func(t *testing.T) {
		path := filepath.Join(tempDir, "templates.json")
		content := `[{"name": "Oatmeal bowl", "purpose": "breakfast", "items": [{"name": "Oats", "grams": 60, "role": "carb"}]}]`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write template file: %v", err)
		}

		templates, err := LoadTemplates(path)
		if err != nil {
			t.Fatalf("Failed to load templates: %v", err)
		}
		if len(templates) != 1 {
			t.Fatalf("Expected 1 template, got %d", len(templates))
		}
		if templates[0].Items[0].Role != "carb" {
			t.Errorf("Expected item role 'carb', got '%s'", templates[0].Items[0].Role)
		}
	})

	t.Run("InvalidEntry", func(t *testing.T) {
		path := filepath.Join(tempDir, "empty_items.json")
		if err := os.WriteFile(path, []byte(`[{"name": "Empty", "purpose": "lunch", "items": []}]`), 0644); err != nil {
			t.Fatalf("Failed to write template file: %v", err)
		}
		if _, err := LoadTemplates(path); err == nil {
			t.Fatal("Expected an error for a template without items, got nil")
		}
	})
}

func TestMergeFoods(t *testing.T) {
	existing := []Food{
		{Name: "Oats", KcalPer100g: 370},
		{Name: "Milk", KcalPer100g: 64},
	}
	imported := []Food{
		{Name: "Milk", KcalPer100g: 60},
		{Name: "Banana", KcalPer100g: 89},
	}

	merged := MergeFoods(existing, imported)
	if len(merged) != 3 {
		t.Fatalf("Expected 3 foods after merge, got %d", len(merged))
	}
	if merged[0].Name != "Oats" {
		t.Errorf("Expected 'Oats' to stay first, got '%s'", merged[0].Name)
	}
	if merged[1].Name != "Milk" || merged[1].KcalPer100g != 60 {
		t.Errorf("Expected imported Milk to replace the existing entry in place, got %+v", merged[1])
	}
	if merged[2].Name != "Banana" {
		t.Errorf("Expected 'Banana' appended last, got '%s'", merged[2].Name)
	}
}
