package planner

import (
	"fmt"
	"math"
)

var sexOffsets = map[Sex]float64{
	SexFemale: -161,
	SexMale:   5,
}

var activityFactors = map[ActivityLevel]float64{
	ActivityLow:    1.2,
	ActivityNormal: 1.35,
	ActivityHigh:   1.5,
}

var goalAdjustments = map[Goal]float64{
	GoalCut:      -300,
	GoalMaintain: 0,
	GoalGain:     250,
}

// metTable maps session type and intensity to an MET cost. Unknown types
// fall back to the mixed row, unknown intensities to defaultMET.
var metTable = map[SessionType]map[Intensity]float64{
	SessionStrength:   {IntensityEasy: 3.5, IntensityModerate: 5.0, IntensityHard: 6.0},
	SessionEndurance:  {IntensityEasy: 6.0, IntensityModerate: 8.0, IntensityHard: 10.0},
	SessionSkill:      {IntensityEasy: 3.0, IntensityModerate: 4.0, IntensityHard: 5.0},
	SessionMixed:      {IntensityEasy: 5.0, IntensityModerate: 7.0, IntensityHard: 9.0},
	SessionTournament: {IntensityEasy: 9.0, IntensityModerate: 11.0, IntensityHard: 12.0},
	SessionClass:      {IntensityEasy: 1.5, IntensityModerate: 1.5, IntensityHard: 1.5},
}

const defaultMET = 6.0

func metFor(s TrainingSession) float64 {
	row, ok := metTable[s.Type]
	if !ok {
		row = metTable[SessionMixed]
	}
	met, ok := row[s.Intensity]
	if !ok {
		return defaultMET
	}
	return met
}

// sessionHours returns the session duration in hours, clamped at zero so a
// malformed session cannot subtract energy.
func sessionHours(s TrainingSession) float64 {
	return math.Max(0, s.End.Sub(s.Start).Hours())
}

// EstimateDailyTargets estimates one day's calorie, macro and water targets:
// Mifflin-St Jeor BMR scaled by an activity factor, plus MET-costed training
// sessions and a goal adjustment. Calories snap to the nearest 50 kcal,
// water to the nearest 10 ml.
func EstimateDailyTargets(weightKg, heightCm float64, age int, sex Sex, activity ActivityLevel, goal Goal, sessions []TrainingSession) (Targets, error) {
	sexOffset, ok := sexOffsets[sex]
	if !ok {
		return Targets{}, fmt.Errorf("sex %q: %w", sex, ErrUnknownEnum)
	}
	activityFactor, ok := activityFactors[activity]
	if !ok {
		return Targets{}, fmt.Errorf("activity level %q: %w", activity, ErrUnknownEnum)
	}
	goalAdjustment, ok := goalAdjustments[goal]
	if !ok {
		return Targets{}, fmt.Errorf("goal %q: %w", goal, ErrUnknownEnum)
	}

	bmr := 10*weightKg + 6.25*heightCm - 5*float64(age) + sexOffset
	base := bmr * activityFactor

	sessionKcal := 0.0
	trainingHours := 0.0
	hardHours := 0.0
	for _, s := range sessions {
		hours := sessionHours(s)
		sessionKcal += metFor(s) * weightKg * hours
		trainingHours += hours
		if s.Intensity == IntensityHard && s.Type != SessionClass {
			hardHours += hours
		}
	}

	totalKcal := math.Round((base+sessionKcal+goalAdjustment)/50) * 50

	// Protein is bumped on a cut to protect muscle; fat stays fixed and
	// carbs absorb whatever calories remain.
	proteinPerKg := 1.8
	if goal == GoalCut {
		proteinPerKg = 2.1
	}
	proteinG := proteinPerKg * weightKg
	fatG := 0.8 * weightKg
	carbsKcal := math.Max(0, totalKcal-proteinG*4-fatG*9)

	baselineWater := 35 * weightKg
	trainingWater := 500*trainingHours + 250*hardHours

	return Targets{
		Kcal:            totalKcal,
		ProteinG:        round1(proteinG),
		CarbsG:          round1(carbsKcal / 4),
		FatG:            round1(fatG),
		SessionKcal:     round1(sessionKcal),
		BMR:             round1(bmr),
		WaterML:         int(math.Round((baselineWater+trainingWater)/10) * 10),
		BaselineWaterML: math.Round(baselineWater),
		TrainingWaterML: math.Round(trainingWater),
	}, nil
}
