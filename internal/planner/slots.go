package planner

import (
	"sort"
	"time"
)

// slotFractions is the share of the day's calories given to each purpose,
// per day type. Shares are renormalized over the slots actually placed.
var slotFractions = map[DayType]map[Purpose]float64{
	DayTournament: {
		PurposeBreakfast:   0.25,
		PurposeLunch:       0.25,
		PurposeDinner:      0.25,
		PurposePreEvent:    0.12,
		PurposePostWorkout: 0.10,
		PurposeSnack:       0.06,
	},
	DayClasses: {
		PurposeBreakfast:   0.22,
		PurposeLunch:       0.30,
		PurposeDinner:      0.30,
		PurposePreEvent:    0.10,
		PurposePostWorkout: 0.10,
		PurposeSnack:       0.04,
	},
	DayRest: {
		PurposeBreakfast:   0.25,
		PurposeLunch:       0.35,
		PurposeDinner:      0.30,
		PurposePreEvent:    0.05,
		PurposePostWorkout: 0.00,
		PurposeSnack:       0.05,
	},
}

// fractionFor returns the calorie fraction for a slot purpose. Unknown day
// types use the rest table, unknown purposes take the snack share.
func fractionFor(dayType DayType, purpose Purpose) float64 {
	table, ok := slotFractions[dayType]
	if !ok {
		table = slotFractions[DayRest]
	}
	f, ok := table[purpose]
	if !ok {
		return table[PurposeSnack]
	}
	return f
}

// isFuelSession reports whether a session is demanding enough to earn
// dedicated pre- and post-fueling slots.
func isFuelSession(s TrainingSession) bool {
	switch s.Type {
	case SessionTournament, SessionStrength, SessionEndurance, SessionMixed, SessionSkill:
	default:
		return false
	}
	return s.Intensity == IntensityModerate || s.Intensity == IntensityHard
}

// withinHourOf reports whether t lands strictly within one hour of any
// already placed slot.
func withinHourOf(slots []MealSlot, t time.Time) bool {
	for _, s := range slots {
		d := s.Time.Sub(t)
		if d < 0 {
			d = -d
		}
		if d < time.Hour {
			return true
		}
	}
	return false
}

func sortSlots(slots []MealSlot) {
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].Time.Before(slots[j].Time) })
}

// GenerateSlots places the day's meal slots around the training schedule
// and assigns each one its share of the calorie target.
func GenerateSlots(wake, bed time.Time, sessions []TrainingSession, targetKcal float64, dayType DayType) []MealSlot {
	var slots []MealSlot

	var fuel []TrainingSession
	for _, s := range sessions {
		if isFuelSession(s) {
			fuel = append(fuel, s)
		}
	}

	// Breakfast one hour after waking.
	breakfast := wake.Add(time.Hour)
	slots = append(slots, MealSlot{Label: "Breakfast", Time: breakfast, Purpose: PurposeBreakfast})

	// Dinner one hour after the last session ends, or three hours before
	// bed on a session-free day.
	dinner := bed.Add(-3 * time.Hour)
	if len(sessions) > 0 {
		lastEnd := sessions[0].End
		for _, s := range sessions[1:] {
			if s.End.After(lastEnd) {
				lastEnd = s.End
			}
		}
		dinner = lastEnd.Add(time.Hour)
	}
	slots = append(slots, MealSlot{Label: "Dinner", Time: dinner, Purpose: PurposeDinner})

	// Lunch halfway between the two.
	lunch := breakfast.Add(dinner.Sub(breakfast) / 2)
	slots = append(slots, MealSlot{Label: "Lunch", Time: lunch, Purpose: PurposeLunch})

	// Pre-event snack 1h30 before each fuel session. A snack that crowds an
	// existing slot is retried exactly once, one hour earlier; one that
	// would land before wake+30m (or still crowd after the retry) is
	// dropped.
	for _, s := range fuel {
		proposed := s.Start.Add(-90 * time.Minute)
		if proposed.Before(wake.Add(30 * time.Minute)) {
			continue
		}
		if withinHourOf(slots, proposed) {
			retry := proposed.Add(-time.Hour)
			if retry.Before(wake.Add(10*time.Minute)) || withinHourOf(slots, retry) {
				continue
			}
			proposed = retry
		}
		slots = append(slots, MealSlot{Label: "Pre-" + s.Label + " snack", Time: proposed, Purpose: PurposePreEvent})
	}

	// Post-workout recovery 30 minutes after each fuel session, skipped
	// when too close to bed or to another slot. No retry here.
	for _, s := range fuel {
		proposed := s.End.Add(30 * time.Minute)
		if proposed.After(bed.Add(-45 * time.Minute)) {
			continue
		}
		if withinHourOf(slots, proposed) {
			continue
		}
		slots = append(slots, MealSlot{Label: "Post-" + s.Label + " recovery", Time: proposed, Purpose: PurposePostWorkout})
	}

	sortSlots(slots)

	// Gaps longer than four hours get a snack at the midpoint. Gaps are
	// measured once against the layout above, so a snack never shortens the
	// gap seen by the next pair.
	var gapSnacks []MealSlot
	for i := 0; i+1 < len(slots); i++ {
		gap := slots[i+1].Time.Sub(slots[i].Time)
		if gap > 4*time.Hour {
			gapSnacks = append(gapSnacks, MealSlot{Label: "Snack", Time: slots[i].Time.Add(gap / 2), Purpose: PurposeSnack})
		}
	}
	slots = append(slots, gapSnacks...)
	sortSlots(slots)

	// Split the calorie budget by purpose, renormalized so the shares of
	// the slots actually present sum to one.
	fractions := make([]float64, len(slots))
	sum := 0.0
	for i, s := range slots {
		fractions[i] = fractionFor(dayType, s.Purpose)
		sum += fractions[i]
	}
	for i := range slots {
		slots[i].KcalTarget = targetKcal * fractions[i] / sum
	}
	return slots
}
