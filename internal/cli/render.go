package cli

import (
	"fmt"
	"io"
	"strconv"

	"uni-meal-planner/internal/history"
	"uni-meal-planner/internal/planner"
)

func renderTargets(w io.Writer, t planner.Targets) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "🎯 Daily Targets")
	fmt.Fprintf(w, "  ├─ Energy:  %.0f kcal", t.Kcal)
	if t.SessionKcal > 0 {
		fmt.Fprintf(w, " (incl. %.0f from training)", t.SessionKcal)
	}
	fmt.Fprintln(w)
	if t.BMR > 0 {
		fmt.Fprintf(w, "  ├─ BMR:     %.0f kcal\n", t.BMR)
	}
	fmt.Fprintf(w, "  ├─ Carbs:   %.0f g\n", t.CarbsG)
	fmt.Fprintf(w, "  ├─ Protein: %.0f g\n", t.ProteinG)
	fmt.Fprintf(w, "  ├─ Fat:     %.0f g\n", t.FatG)
	fmt.Fprintf(w, "  └─ Water:   %d ml", t.WaterML)
	if t.TrainingWaterML > 0 {
		fmt.Fprintf(w, " (base %.0f + training %.0f)", t.BaselineWaterML, t.TrainingWaterML)
	}
	fmt.Fprintln(w)
}

func renderPlan(w io.Writer, plan *planner.DailyPlan) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "╔═══════════════════════════════════════════════════════════╗")
	fmt.Fprintln(w, "║                      Daily Fuel Plan                      ║")
	fmt.Fprintln(w, "╚═══════════════════════════════════════════════════════════╝")
	if len(plan.Meals) > 0 {
		fmt.Fprintf(w, "📅 %s\n", plan.Meals[0].Time.Format("Monday, 2 January 2006"))
	}

	renderTargets(w, plan.Targets)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "🍽  Meals")
	for _, meal := range plan.Meals {
		fmt.Fprintf(w, "  %s  %s — %.0f kcal (target %.0f)\n",
			meal.Time.Format("15:04"), meal.Label, meal.Totals.Kcal, meal.KcalTarget)
		if meal.Template != "" {
			fmt.Fprintf(w, "         %s\n", meal.Template)
		}
		for _, item := range meal.Items {
			fmt.Fprintf(w, "         • %s (%sg)\n", item.Name, formatGrams(item.Grams))
		}
		if meal.Note != "" {
			fmt.Fprintf(w, "         %s\n", meal.Note)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "💧 Hydration")
	for _, h := range plan.Hydration {
		fmt.Fprintf(w, "  %s  %s (%d ml)\n", h.Time.Format("15:04"), h.Label, h.ML)
	}
	fmt.Fprintln(w)
}

func renderHistory(w io.Writer, entries []*history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No plans recorded yet. Generate one with 'plan' first.")
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "🗓  Recent plans")
	for _, e := range entries {
		fmt.Fprintf(w, "  %s  %4.0f kcal  %d meals  seed %-20d %s\n",
			e.PlanDate, e.Plan.Targets.Kcal, len(e.Plan.Meals), e.Seed, e.ID)
	}
	fmt.Fprintln(w)
}

func formatGrams(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
