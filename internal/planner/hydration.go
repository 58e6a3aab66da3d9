package planner

import (
	"math"
	"sort"
	"time"
)

// DefaultHydrationInterval spaces the baseline drink prompts.
const DefaultHydrationInterval = 2 * time.Hour

// GenerateHydrationReminders spreads the day's water target over regular
// prompts between wake+30m and bed-45m, adds prompts around each non-class
// session, drops any prompt within twenty minutes of an earlier one, and
// splits the target evenly over what remains (nearest 10 ml, 100 ml
// minimum). Returns nil when the waking window is empty.
func GenerateHydrationReminders(wake, bed time.Time, sessions []TrainingSession, totalWaterML int, interval time.Duration) []HydrationReminder {
	if interval <= 0 {
		interval = DefaultHydrationInterval
	}

	start := wake.Add(30 * time.Minute)
	end := bed.Add(-45 * time.Minute)
	if !end.After(start) {
		return nil
	}

	var reminders []HydrationReminder
	for t := start; !t.After(end); t = t.Add(interval) {
		reminders = append(reminders, HydrationReminder{Time: t, Label: "Drink water"})
	}

	// Class blocks get no session prompts.
	for _, s := range sessions {
		if s.Type == SessionClass {
			continue
		}
		reminders = append(reminders,
			HydrationReminder{Time: s.Start.Add(-20 * time.Minute), Label: "Hydrate before " + s.Label},
			HydrationReminder{Time: s.End.Add(15 * time.Minute), Label: "Hydrate after " + s.Label},
		)
	}

	sort.SliceStable(reminders, func(i, j int) bool { return reminders[i].Time.Before(reminders[j].Time) })

	var deduped []HydrationReminder
	for _, r := range reminders {
		if len(deduped) > 0 && r.Time.Sub(deduped[len(deduped)-1].Time) < 20*time.Minute {
			continue
		}
		deduped = append(deduped, r)
	}

	if len(deduped) > 0 {
		per := int(math.Round(float64(totalWaterML)/float64(len(deduped))/10) * 10)
		if per < 100 {
			per = 100
		}
		for i := range deduped {
			deduped[i].ML = per
		}
	}
	return deduped
}
