package planner

import (
	"math/rand"
	"sort"

	"uni-meal-planner/internal/catalog"
)

// Planner generates daily plans against a fixed food and template catalog.
type Planner struct {
	foods     []catalog.Food
	templates []catalog.Template
}

// NewPlanner creates a Planner for the given catalogs.
func NewPlanner(foods []catalog.Food, templates []catalog.Template) *Planner {
	return &Planner{foods: foods, templates: templates}
}

// Foods exposes the food catalog for surfaces that render or merge it.
func (p *Planner) Foods() []catalog.Food { return p.foods }

// Templates exposes the template catalog.
func (p *Planner) Templates() []catalog.Template { return p.templates }

// GenerateDailyPlan runs the full pipeline: estimate targets, lay out meal
// slots, compose every meal, and schedule hydration. All template picks come
// from a stream seeded with req.Seed, so the same request regenerates the
// same plan; a request with a swap directive rebuilds only the matching slot
// and leaves every other meal identical.
func (p *Planner) GenerateDailyPlan(req PlanRequest) (*DailyPlan, error) {
	// 1. Daily energy, macro and water targets.
	targets, err := EstimateDailyTargets(req.WeightKg, req.HeightCm, req.Age, req.Sex, req.ActivityLevel, req.Goal, req.Sessions)
	if err != nil {
		return nil, err
	}

	// 2. Meal slots with their calorie shares.
	slots := GenerateSlots(req.Wake, req.Bed, req.Sessions, targets.Kcal, req.DayType)

	// 3. Compose each slot. Selection state and the seeded stream are
	// scoped to this run.
	rng := rand.New(rand.NewSource(req.Seed))
	state := NewSelectionState()
	meals := make([]Meal, 0, len(slots))
	for _, slot := range slots {
		var opts ComposeOptions
		if req.Swap != nil && req.Swap.Matches(slot) {
			opts.ForceNewTemplate = true
			opts.ExcludeTemplate = req.Swap.ExcludeTemplate
		}

		composed := ComposeMeal(rng, slot, p.foods, req.Constraints, state, p.templates, opts)
		meals = append(meals, Meal{
			MealSlot: slot,
			Items:    composed.Items,
			Totals:   composed.Totals,
			Note:     composed.Note,
			Template: composed.Template,
		})
	}
	sort.SliceStable(meals, func(i, j int) bool { return meals[i].Time.Before(meals[j].Time) })

	// 4. Hydration prompts sized from the water target.
	hydration := GenerateHydrationReminders(req.Wake, req.Bed, req.Sessions, targets.WaterML, DefaultHydrationInterval)

	return &DailyPlan{Targets: targets, Meals: meals, Hydration: hydration}, nil
}
