package planner

import (
	"math"
	"math/rand"
	"sort"
	"strings"

	"uni-meal-planner/internal/catalog"
)

// ComposeOptions tweak template choice during swaps.
type ComposeOptions struct {
	ForceNewTemplate bool
	ExcludeTemplate  string
}

// ComposedMeal is the food selection produced for one slot. Template is set
// only when the template path succeeded.
type ComposedMeal struct {
	Items    []MealItem
	Totals   MacroTotals
	Note     string
	Template string
}

var purposeNotes = map[Purpose]string{
	PurposeBreakfast:   "High-carb breakfast with some protein and fat to fuel the morning.",
	PurposeLunch:       "Balanced lunch for sustained energy through the day.",
	PurposeDinner:      "Evening meal with extra protein to support recovery.",
	PurposePreEvent:    "Mostly fast-digesting carbs before your session to give quick energy.",
	PurposePostWorkout: "Post-workout recovery: carbs to refill glycogen + protein to support muscle repair.",
	PurposeSnack:       "Quick snack to top up energy between meals.",
}

const emptyCatalogNote = "No foods available that match your constraints."

// defaultGramsForRole is the portion for a template item that does not
// declare one.
func defaultGramsForRole(role string) float64 {
	switch strings.ToLower(role) {
	case "carb", "base", "grain":
		return 180
	case "protein":
		return 140
	case "fat":
		return 20
	case "fruit":
		return 150
	case "dairy":
		return 170
	case "veg", "vegetable":
		return 150
	case "drink":
		return 500
	default:
		return 120
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

// roundPortion snaps a portion to the nearest 10 g with a 20 g floor.
func roundPortion(grams float64) float64 {
	return math.Max(20, math.Round(grams/10)*10)
}

// gramsForKcal returns the portion of a food that supplies the given
// calories. A zero-energy food yields zero grams rather than dividing by
// zero; callers that snap portions will floor it to 20 g.
func gramsForKcal(f catalog.Food, kcal float64) float64 {
	if f.KcalPer100g <= 0 {
		return 0
	}
	return kcal / f.KcalPer100g * 100
}

// buildItem converts a food and a portion into a meal item with per-portion
// macros, each rounded to one decimal.
func buildItem(f catalog.Food, grams float64) MealItem {
	factor := grams / 100
	return MealItem{
		Name:    f.Name,
		Grams:   round1(grams),
		Kcal:    round1(f.KcalPer100g * factor),
		Carbs:   round1(f.CarbsPer100g * factor),
		Protein: round1(f.ProteinPer100g * factor),
		Fat:     round1(f.FatPer100g * factor),
	}
}

// sumTotals adds the already rounded item macros and rounds once more, so
// totals always match the printed items.
func sumTotals(items []MealItem) MacroTotals {
	var t MacroTotals
	for _, it := range items {
		t.Kcal += it.Kcal
		t.Carbs += it.Carbs
		t.Protein += it.Protein
		t.Fat += it.Fat
	}
	t.Kcal = round1(t.Kcal)
	t.Carbs = round1(t.Carbs)
	t.Protein = round1(t.Protein)
	t.Fat = round1(t.Fat)
	return t
}

// ComposeMeal fills one slot with foods. The template path resolves a
// curated meal against the constraint-filtered catalog and scales it to the
// slot's calorie target; when no template applies, a macro-split heuristic
// assembles the meal from the richest carb, protein and fat sources not yet
// served today.
func ComposeMeal(rng *rand.Rand, slot MealSlot, foods []catalog.Food, cons UserConstraints, state *SelectionState, templates []catalog.Template, opts ComposeOptions) ComposedMeal {
	safe := FilterByConstraints(foods, cons)
	if len(safe) == 0 {
		return ComposedMeal{Items: []MealItem{}, Note: emptyCatalogNote}
	}

	if len(templates) > 0 {
		if meal, ok := composeFromTemplate(rng, slot, safe, state, templates, opts); ok {
			return meal
		}
	}

	return composeFromMacros(slot, FilterByPurpose(safe, slot.Purpose), state)
}

// composeFromTemplate picks a template for the slot and scales its portions
// so the meal hits the calorie target. It reports false when no template
// matches, when an item is not in the safe catalog, or when the base meal
// carries no energy; the heuristic path then takes over and the template is
// not marked as served.
func composeFromTemplate(rng *rand.Rand, slot MealSlot, safe []catalog.Food, state *SelectionState, templates []catalog.Template, opts ComposeOptions) (ComposedMeal, bool) {
	byName := make(map[string]catalog.Food, len(safe))
	for _, f := range safe {
		byName[f.Name] = f
	}

	tpl := PickTemplate(rng, templates, slot.Purpose, state, opts.ForceNewTemplate, opts.ExcludeTemplate)
	if tpl == nil {
		return ComposedMeal{}, false
	}

	type portion struct {
		food  catalog.Food
		grams float64
	}
	base := make([]portion, 0, len(tpl.Items))
	for _, it := range tpl.Items {
		role := it.Role
		if role == "" {
			role = "carb"
		}
		grams := it.Grams
		if grams == 0 {
			grams = defaultGramsForRole(role)
		}
		f, ok := byName[it.Name]
		if !ok {
			return ComposedMeal{}, false
		}
		base = append(base, portion{food: f, grams: grams})
	}
	if len(base) == 0 {
		return ComposedMeal{}, false
	}

	baseKcal := 0.0
	for _, p := range base {
		baseKcal += buildItem(p.food, p.grams).Kcal
	}
	if baseKcal <= 0 {
		return ComposedMeal{}, false
	}

	scale := slot.KcalTarget / baseKcal
	items := make([]MealItem, 0, len(base))
	for _, p := range base {
		items = append(items, buildItem(p.food, roundPortion(p.grams*scale)))
	}

	state.MarkTemplate(tpl.Name)
	return ComposedMeal{
		Items:    items,
		Totals:   sumTotals(items),
		Note:     tpl.Name + " (template).",
		Template: tpl.Name,
	}, true
}

// topByMacro returns up to the ten richest foods for one macro, highest
// first. Ties keep catalog order.
func topByMacro(foods []catalog.Food, macro func(catalog.Food) float64) []catalog.Food {
	ranked := make([]catalog.Food, len(foods))
	copy(ranked, foods)
	sort.SliceStable(ranked, func(i, j int) bool { return macro(ranked[i]) > macro(ranked[j]) })
	if len(ranked) > 10 {
		ranked = ranked[:10]
	}
	return ranked
}

// pickUnused returns the first candidate not yet served today, falling back
// to the top candidate when all have been. The pick is recorded either way.
func pickUnused(cands []catalog.Food, state *SelectionState) catalog.Food {
	for _, f := range cands {
		if !state.FoodUsed(f.Name) {
			state.MarkFood(f.Name)
			return f
		}
	}
	f := cands[0]
	state.MarkFood(f.Name)
	return f
}

// composeFromMacros builds a meal without a template. Light slots split the
// target 80/20 between a carb lead and one companion; main meals split it
// 60/25/15 across carb, protein and fat sources, dropping duplicates.
func composeFromMacros(slot MealSlot, purposeFoods []catalog.Food, state *SelectionState) ComposedMeal {
	carbs := topByMacro(purposeFoods, func(f catalog.Food) float64 { return f.CarbsPer100g })
	proteins := topByMacro(purposeFoods, func(f catalog.Food) float64 { return f.ProteinPer100g })
	fats := topByMacro(purposeFoods, func(f catalog.Food) float64 { return f.FatPer100g })

	carbBase := pickUnused(carbs, state)
	proteinSource := pickUnused(proteins, state)
	fatSource := pickUnused(fats, state)

	target := slot.KcalTarget
	var items []MealItem

	switch slot.Purpose {
	case PurposePreEvent, PurposeSnack, PurposePostWorkout:
		second := proteinSource
		if slot.Purpose == PurposeSnack {
			second = fatSource
		}
		carbGrams := roundPortion(gramsForKcal(carbBase, target*0.8))
		secondGrams := roundPortion(gramsForKcal(second, target*0.2))

		items = append(items, buildItem(carbBase, carbGrams))
		if second.Name != carbBase.Name {
			items = append(items, buildItem(second, secondGrams))
		}
	default:
		items = append(items, buildItem(carbBase, gramsForKcal(carbBase, target*0.6)))
		if proteinSource.Name != carbBase.Name {
			items = append(items, buildItem(proteinSource, gramsForKcal(proteinSource, target*0.25)))
		}
		if fatSource.Name != carbBase.Name && fatSource.Name != proteinSource.Name {
			items = append(items, buildItem(fatSource, gramsForKcal(fatSource, target*0.15)))
		}
	}

	note, ok := purposeNotes[slot.Purpose]
	if !ok {
		note = purposeNotes[PurposeSnack]
	}
	return ComposedMeal{Items: items, Totals: sumTotals(items), Note: note}
}
