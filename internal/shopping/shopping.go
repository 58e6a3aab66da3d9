package shopping

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"uni-meal-planner/internal/planner"
)

// Item is one aggregated grocery line: the total grams of a food across
// every meal it appears in.
type Item struct {
	Name  string  `json:"name"`
	Grams float64 `json:"grams"`
	Meals int     `json:"meals"`
}

// BuildList flattens the given plans into one line per food, biggest
// portions first. Passing several plans aggregates a multi-day shop.
func BuildList(plans ...*planner.DailyPlan) []Item {
	grams := make(map[string]float64)
	meals := make(map[string]int)

	for _, plan := range plans {
		if plan == nil {
			continue
		}
		for _, m := range plan.Meals {
			for _, it := range m.Items {
				grams[it.Name] += it.Grams
				meals[it.Name]++
			}
		}
	}

	items := make([]Item, 0, len(grams))
	for name, g := range grams {
		items = append(items, Item{
			Name:  name,
			Grams: math.Round(g*10) / 10,
			Meals: meals[name],
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Grams != items[j].Grams {
			return items[i].Grams > items[j].Grams
		}
		return items[i].Name < items[j].Name
	})
	return items
}

// FormatList renders the list as a plain-text checklist.
func FormatList(items []Item) string {
	if len(items) == 0 {
		return "Nothing to buy."
	}

	var b strings.Builder
	b.WriteString("Grocery list:\n")
	for _, it := range items {
		unit := "meal"
		if it.Meals != 1 {
			unit = "meals"
		}
		fmt.Fprintf(&b, "- %s: %s g (%d %s)\n",
			it.Name, strconv.FormatFloat(it.Grams, 'f', -1, 64), it.Meals, unit)
	}
	return b.String()
}
