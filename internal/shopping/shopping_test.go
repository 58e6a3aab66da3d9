package shopping

import (
	"strings"
	"testing"

	"uni-meal-planner/internal/planner"
)

func planWithItems(meals ...[]planner.MealItem) *planner.DailyPlan {
	plan := &planner.DailyPlan{}
	for _, items := range meals {
		plan.Meals = append(plan.Meals, planner.Meal{Items: items})
	}
	return plan
}

func TestBuildList(t *testing.T) {
	plan := planWithItems(
		[]planner.MealItem{{Name: "Oats", Grams: 80}, {Name: "Milk", Grams: 260}},
		[]planner.MealItem{{Name: "Rice", Grams: 290.9}, {Name: "Chicken breast", Grams: 95.5}},
		[]planner.MealItem{{Name: "Oats", Grams: 50}},
	)

	items := BuildList(plan)
	if len(items) != 4 {
		t.Fatalf("Expected 4 distinct foods, got %d", len(items))
	}

	if items[0].Name != "Rice" || items[0].Grams != 290.9 {
		t.Errorf("Expected Rice first with 290.9 g, got %+v", items[0])
	}

	var oats Item
	for _, it := range items {
		if it.Name == "Oats" {
			oats = it
		}
	}
	if oats.Grams != 130 {
		t.Errorf("Expected Oats portions summed to 130 g, got %v", oats.Grams)
	}
	if oats.Meals != 2 {
		t.Errorf("Expected Oats in 2 meals, got %d", oats.Meals)
	}
}

func TestBuildListOrdersTiesByName(t *testing.T) {
	plan := planWithItems(
		[]planner.MealItem{{Name: "Pasta", Grams: 100}, {Name: "Banana", Grams: 100}},
	)

	items := BuildList(plan)
	if items[0].Name != "Banana" || items[1].Name != "Pasta" {
		t.Errorf("Expected alphabetical tiebreak, got %+v", items)
	}
}

func TestBuildListMultiplePlans(t *testing.T) {
	day1 := planWithItems([]planner.MealItem{{Name: "Oats", Grams: 80}})
	day2 := planWithItems([]planner.MealItem{{Name: "Oats", Grams: 60}})

	items := BuildList(day1, day2, nil)
	if len(items) != 1 || items[0].Grams != 140 {
		t.Errorf("Expected Oats aggregated across days to 140 g, got %+v", items)
	}
}

func TestFormatList(t *testing.T) {
	items := []Item{
		{Name: "Rice", Grams: 290.9, Meals: 1},
		{Name: "Oats", Grams: 130, Meals: 2},
	}

	text := FormatList(items)
	if !strings.Contains(text, "- Rice: 290.9 g (1 meal)") {
		t.Errorf("Expected a Rice line, got:\n%s", text)
	}
	if !strings.Contains(text, "- Oats: 130 g (2 meals)") {
		t.Errorf("Expected an Oats line, got:\n%s", text)
	}

	if got := FormatList(nil); got != "Nothing to buy." {
		t.Errorf("Expected the empty message, got '%s'", got)
	}
}
