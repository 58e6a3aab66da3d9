package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"uni-meal-planner/internal/planner"
)

// csvHeader matches the spreadsheet layout of the plan view: one row per
// meal, with items flattened into a single readable column.
var csvHeader = []string{
	"time", "label", "purpose", "kcal_target", "items",
	"kcal_actual", "carbs_g", "protein_g", "fat_g", "note",
}

// Filename builds the download name for a plan export, e.g.
// "meal_plan_2025-03-10.csv".
func Filename(date time.Time, ext string) string {
	return fmt.Sprintf("meal_plan_%s.%s", date.Format("2006-01-02"), ext)
}

// WriteCSV writes the plan's meals as CSV.
func WriteCSV(w io.Writer, plan *planner.DailyPlan) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, m := range plan.Meals {
		row := []string{
			m.Time.Format("15:04"),
			m.Label,
			string(m.Purpose),
			formatFloat(round1(m.KcalTarget)),
			formatItems(m.Items),
			formatFloat(m.Totals.Kcal),
			formatFloat(m.Totals.Carbs),
			formatFloat(m.Totals.Protein),
			formatFloat(m.Totals.Fat),
			m.Note,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSV returns the plan's meals as CSV bytes.
func CSV(plan *planner.DailyPlan) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, plan); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// planDocument is the JSON export shape: targets plus meals, hydration
// omitted since reminders are not useful offline.
type planDocument struct {
	Targets planner.Targets `json:"targets"`
	Meals   []planner.Meal  `json:"meals"`
}

// WriteJSON writes the plan as indented JSON.
func WriteJSON(w io.Writer, plan *planner.DailyPlan) error {
	data, err := JSON(plan)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// JSON returns the plan as indented JSON bytes.
func JSON(plan *planner.DailyPlan) ([]byte, error) {
	data, err := json.MarshalIndent(planDocument{Targets: plan.Targets, Meals: plan.Meals}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode plan: %w", err)
	}
	return data, nil
}

// formatItems flattens portioned foods into "Oats (80g), Milk (260g)".
func formatItems(items []planner.MealItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprintf("%s (%sg)", it.Name, formatFloat(it.Grams)))
	}
	return strings.Join(parts, ", ")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
