package planner

import (
	"math/rand"

	"uni-meal-planner/internal/catalog"
)

// purposeTags lists the food tags that can serve each slot purpose.
var purposeTags = map[Purpose]map[string]bool{
	PurposeBreakfast:   {"breakfast": true},
	PurposeLunch:       {"lunch": true, "dinner": true, "snack": true, "recovery": true},
	PurposeDinner:      {"lunch": true, "dinner": true, "snack": true, "recovery": true},
	PurposePreEvent:    {"pre-event": true, "easy_digest": true, "quick_sugar": true, "snack": true},
	PurposePostWorkout: {"dinner": true, "recovery": true, "lunch": true, "snack": true},
}

// snackTags also covers purposes the table does not know.
var snackTags = map[string]bool{"pre-event": true, "post-workout": true, "quick_sugar": true, "snack": true}

// FilterByConstraints removes foods the athlete cannot or will not eat:
// lactose carriers for the intolerant, allergen matches, and exact-name
// dislikes. Catalog order is preserved.
func FilterByConstraints(foods []catalog.Food, cons UserConstraints) []catalog.Food {
	disliked := make(map[string]bool, len(cons.DislikedFoods))
	for _, n := range cons.DislikedFoods {
		disliked[n] = true
	}
	allergies := make(map[string]bool, len(cons.Allergies))
	for _, a := range cons.Allergies {
		allergies[a] = true
	}

	var safe []catalog.Food
	for _, f := range foods {
		if cons.LactoseIntolerant && !f.IsLactoseFree() {
			continue
		}
		if hasAllergen(f, allergies) {
			continue
		}
		if disliked[f.Name] {
			continue
		}
		safe = append(safe, f)
	}
	return safe
}

func hasAllergen(f catalog.Food, allergies map[string]bool) bool {
	for _, a := range f.Allergens {
		if allergies[a] {
			return true
		}
	}
	return false
}

// FilterByPurpose keeps foods tagged for the slot purpose. When nothing
// matches it returns the input unchanged, so a thin catalog still yields a
// meal instead of an empty slot.
func FilterByPurpose(foods []catalog.Food, purpose Purpose) []catalog.Food {
	needed, ok := purposeTags[purpose]
	if !ok {
		needed = snackTags
	}

	var matched []catalog.Food
	for _, f := range foods {
		if f.HasAnyTag(needed) {
			matched = append(matched, f)
		}
	}
	if len(matched) == 0 {
		return foods
	}
	return matched
}

// SelectionState tracks the foods and templates one planning run has already
// served so consecutive meals stay varied. It is scoped to a single run and
// never shared between requests.
type SelectionState struct {
	usedFoods     map[string]bool
	usedTemplates map[string]bool
}

// NewSelectionState returns an empty per-run state.
func NewSelectionState() *SelectionState {
	return &SelectionState{
		usedFoods:     make(map[string]bool),
		usedTemplates: make(map[string]bool),
	}
}

// FoodUsed reports whether a food was already served this run.
func (s *SelectionState) FoodUsed(name string) bool { return s.usedFoods[name] }

// MarkFood records a served food.
func (s *SelectionState) MarkFood(name string) { s.usedFoods[name] = true }

// TemplateUsed reports whether a template was already served this run.
func (s *SelectionState) TemplateUsed(name string) bool { return s.usedTemplates[name] }

// MarkTemplate records a served template.
func (s *SelectionState) MarkTemplate(name string) { s.usedTemplates[name] = true }

// draw picks an index into a pool of size n, consuming exactly one value
// from the stream. Pool-size differences between runs therefore cannot shift
// the draws of later slots, which keeps swap replays aligned.
func draw(rng *rand.Rand, n int) int {
	return int(rng.Uint64() % uint64(n))
}

// PickTemplate selects a template for the slot purpose. Templates already
// served this run are avoided when possible, excludeName is filtered out
// unless it is the only match, and forceNew drops the served-template
// preference for swap requests. Returns nil when nothing matches the
// purpose.
func PickTemplate(rng *rand.Rand, templates []catalog.Template, purpose Purpose, state *SelectionState, forceNew bool, excludeName string) *catalog.Template {
	var matching []catalog.Template
	for _, t := range templates {
		if t.MatchesPurpose(string(purpose)) {
			matching = append(matching, t)
		}
	}
	if len(matching) == 0 {
		return nil
	}

	candidates := matching
	if excludeName != "" {
		var kept []catalog.Template
		for _, t := range matching {
			if t.Name != excludeName {
				kept = append(kept, t)
			}
		}
		if len(kept) > 0 {
			candidates = kept
		}
	}

	pool := candidates
	if !forceNew {
		var unused []catalog.Template
		for _, t := range candidates {
			if !state.TemplateUsed(t.Name) {
				unused = append(unused, t)
			}
		}
		if len(unused) > 0 {
			pool = unused
		}
	}

	picked := pool[draw(rng, len(pool))]
	return &picked
}
