package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"uni-meal-planner/internal/history"
	"uni-meal-planner/internal/planner"
)

func samplePlan() *planner.DailyPlan {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	return &planner.DailyPlan{
		Targets: planner.Targets{Kcal: 1800, CarbsG: 203, ProteinG: 108, FatG: 48, WaterML: 2100},
		Meals: []planner.Meal{
			{
				MealSlot: planner.MealSlot{
					Label:      "Breakfast",
					Time:       day.Add(7*time.Hour + 30*time.Minute),
					Purpose:    planner.PurposeBreakfast,
					KcalTarget: 450,
				},
				Items:    []planner.MealItem{{Name: "Oats", Grams: 60}},
				Totals:   planner.MacroTotals{Kcal: 448},
				Template: "Oatmeal bowl",
				Note:     "Slow carbs to start the day.",
			},
		},
		Hydration: []planner.HydrationReminder{
			{Time: day.Add(7 * time.Hour), Label: "Drink water", ML: 250},
		},
	}
}

func TestRenderPlan(t *testing.T) {
	var buf bytes.Buffer
	renderPlan(&buf, samplePlan())
	output := buf.String()

	for _, want := range []string{
		"Daily Fuel Plan",
		"📅 Monday, 10 March 2025",
		"Energy:  1800 kcal",
		"Water:   2100 ml",
		"07:30  Breakfast — 448 kcal (target 450)",
		"Oatmeal bowl",
		"• Oats (60g)",
		"Slow carbs to start the day.",
		"07:00  Drink water (250 ml)",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, output)
		}
	}
}

func TestRenderTargetsTrainingShare(t *testing.T) {
	var buf bytes.Buffer
	renderTargets(&buf, planner.Targets{
		Kcal: 2250, SessionKcal: 540, BMR: 1344,
		WaterML: 3000, BaselineWaterML: 2450, TrainingWaterML: 550,
	})
	if !strings.Contains(buf.String(), "2250 kcal (incl. 540 from training)") {
		t.Errorf("Expected the training share, got:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "BMR:     1344 kcal") {
		t.Errorf("Expected the BMR line, got:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "Water:   3000 ml (base 2450 + training 550)") {
		t.Errorf("Expected the water breakdown, got:\n%s", buf.String())
	}

	buf.Reset()
	renderTargets(&buf, planner.Targets{Kcal: 1800, WaterML: 2100})
	if strings.Contains(buf.String(), "from training") {
		t.Error("Rest day targets should not mention training calories")
	}
	if strings.Contains(buf.String(), "BMR") {
		t.Error("Targets without a BMR should not print a BMR line")
	}
}

func TestRenderHistory(t *testing.T) {
	var buf bytes.Buffer
	renderHistory(&buf, nil)
	if !strings.Contains(buf.String(), "No plans recorded yet") {
		t.Errorf("Expected empty history hint, got:\n%s", buf.String())
	}

	buf.Reset()
	renderHistory(&buf, []*history.Entry{
		{ID: "abc-123", PlanDate: "2025-03-10", Seed: 42, Plan: *samplePlan()},
	})
	output := buf.String()
	if !strings.Contains(output, "2025-03-10") || !strings.Contains(output, "abc-123") {
		t.Errorf("Expected the plan line, got:\n%s", output)
	}
}

func TestBuildRequestStockDay(t *testing.T) {
	req, err := buildRequest("", "tournament", 99)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	if req.DayType != planner.DayTournament {
		t.Errorf("Expected tournament day, got %s", req.DayType)
	}
	if len(req.Sessions) == 0 {
		t.Error("Expected the stock training layout for --type")
	}
	if req.Seed != 99 {
		t.Errorf("Expected seed 99, got %d", req.Seed)
	}

	// Without --type there is no stock training layout.
	req, err = buildRequest("", "", 0)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	if req.DayType != planner.DayClasses {
		t.Errorf("Expected the classes default, got %s", req.DayType)
	}
	if len(req.Sessions) != 0 {
		t.Errorf("Expected a session-free day, got %d sessions", len(req.Sessions))
	}
}

func TestBuildRequestDayFile(t *testing.T) {
	dir, err := os.MkdirTemp("", "cli_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "day.yml")
	content := `date: 2025-03-15
day_type: rest
seed: 7
profile:
  weight_kg: 70
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write day file: %v", err)
	}

	req, err := buildRequest(path, "", 0)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	if req.DayType != planner.DayRest {
		t.Errorf("Expected rest day from the file, got %s", req.DayType)
	}
	if req.WeightKg != 70 {
		t.Errorf("Expected 70 kg from the file, got %v", req.WeightKg)
	}
	if req.Seed != 7 {
		t.Errorf("Expected seed 7 from the file, got %d", req.Seed)
	}

	// An explicit --seed overrides the file.
	req, err = buildRequest(path, "", 123)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	if req.Seed != 123 {
		t.Errorf("Expected the flag seed to win, got %d", req.Seed)
	}
}

func TestBuildCLICommandTree(t *testing.T) {
	root := BuildCLI()

	want := map[string]bool{
		"plan": false, "targets": false, "swap": false, "export": false,
		"groceries": false, "history": false, "cleanup": false,
		"import": false, "token": false, "serve": false, "mcp": false,
	}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("Missing command %q", name)
		}
	}
}
