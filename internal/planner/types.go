package planner

import "time"

// Sex selects the Mifflin-St Jeor offset.
type Sex string

const (
	SexFemale Sex = "female"
	SexMale   Sex = "male"
)

// ActivityLevel captures day-to-day movement outside recorded sessions.
type ActivityLevel string

const (
	ActivityLow    ActivityLevel = "low"
	ActivityNormal ActivityLevel = "normal"
	ActivityHigh   ActivityLevel = "high"
)

// Goal shifts the calorie target up or down.
type Goal string

const (
	GoalCut      Goal = "cut"
	GoalMaintain Goal = "maintain"
	GoalGain     Goal = "gain"
)

// DayType selects the calorie split across meal slots.
type DayType string

const (
	DayTournament DayType = "tournament"
	DayClasses    DayType = "classes"
	DayRest       DayType = "rest"
)

// SessionType categorizes a training block for MET lookup and fueling rules.
type SessionType string

const (
	SessionStrength   SessionType = "strength"
	SessionEndurance  SessionType = "endurance"
	SessionSkill      SessionType = "skill"
	SessionMixed      SessionType = "mixed"
	SessionTournament SessionType = "tournament"
	SessionClass      SessionType = "class"
)

// Intensity grades how demanding a session is.
type Intensity string

const (
	IntensityEasy     Intensity = "easy"
	IntensityModerate Intensity = "moderate"
	IntensityHard     Intensity = "hard"
)

// Purpose names what a meal slot is for.
type Purpose string

const (
	PurposeBreakfast   Purpose = "breakfast"
	PurposeLunch       Purpose = "lunch"
	PurposeDinner      Purpose = "dinner"
	PurposePreEvent    Purpose = "pre-event"
	PurposePostWorkout Purpose = "post-workout"
	PurposeSnack       Purpose = "snack"
)

// TrainingSession is one scheduled block of activity in the athlete's day.
type TrainingSession struct {
	Label     string      `json:"label"`
	Start     time.Time   `json:"start"`
	End       time.Time   `json:"end"`
	Type      SessionType `json:"type"`
	Intensity Intensity   `json:"intensity"`
}

// UserConstraints are the dietary restrictions applied to every food pick.
// They are fixed for the duration of a planning run.
type UserConstraints struct {
	LactoseIntolerant bool     `json:"lactose_intolerant"`
	DislikedFoods     []string `json:"disliked_foods,omitempty"`
	Allergies         []string `json:"allergies,omitempty"`
}

// MealSlot is a scheduled eating opportunity with its calorie share.
type MealSlot struct {
	Label      string    `json:"label"`
	Time       time.Time `json:"time"`
	Purpose    Purpose   `json:"purpose"`
	KcalTarget float64   `json:"kcal_target"`
}

// MealItem is one portioned food inside a composed meal. Macro fields are
// per portion, rounded to one decimal.
type MealItem struct {
	Name    string  `json:"name"`
	Grams   float64 `json:"grams"`
	Kcal    float64 `json:"kcal"`
	Carbs   float64 `json:"carbs"`
	Protein float64 `json:"protein"`
	Fat     float64 `json:"fat"`
}

// MacroTotals aggregates the macros of a meal's items.
type MacroTotals struct {
	Kcal    float64 `json:"kcal"`
	Carbs   float64 `json:"carbs"`
	Protein float64 `json:"protein"`
	Fat     float64 `json:"fat"`
}

// Meal is a fully composed meal bound to its slot.
type Meal struct {
	MealSlot
	Items    []MealItem  `json:"items"`
	Totals   MacroTotals `json:"totals"`
	Note     string      `json:"note"`
	Template string      `json:"template,omitempty"`
}

// Targets are the estimated daily energy, macro and fluid goals.
type Targets struct {
	Kcal            float64 `json:"kcal"`
	ProteinG        float64 `json:"protein_g"`
	CarbsG          float64 `json:"carbs_g"`
	FatG            float64 `json:"fat_g"`
	SessionKcal     float64 `json:"session_kcal"`
	BMR             float64 `json:"bmr"`
	WaterML         int     `json:"water_ml"`
	BaselineWaterML float64 `json:"baseline_water_ml"`
	TrainingWaterML float64 `json:"training_water_ml"`
}

// HydrationReminder is one timed drink prompt.
type HydrationReminder struct {
	Time  time.Time `json:"time"`
	Label string    `json:"label"`
	ML    int       `json:"ml"`
}

// DailyPlan bundles everything generated for one day.
type DailyPlan struct {
	Targets   Targets             `json:"targets"`
	Meals     []Meal              `json:"meals"`
	Hydration []HydrationReminder `json:"hydration"`
}

// SwapDirective asks the planner to rebuild one meal with a different
// template while leaving the rest of the day untouched. Time must be the
// slot time in RFC 3339 form.
type SwapDirective struct {
	Purpose         Purpose `json:"purpose"`
	Time            string  `json:"time"`
	ExcludeTemplate string  `json:"exclude_template,omitempty"`
}

// Matches reports whether the directive targets the given slot.
func (d *SwapDirective) Matches(slot MealSlot) bool {
	return d.Purpose == slot.Purpose && d.Time == slot.Time.Format(time.RFC3339)
}

// PlanRequest carries everything needed to generate one day's plan. Seed
// drives template picks; a plan regenerates byte-for-byte from the same
// request.
type PlanRequest struct {
	WeightKg      float64           `json:"weight_kg"`
	HeightCm      float64           `json:"height_cm"`
	Age           int               `json:"age"`
	Sex           Sex               `json:"sex"`
	ActivityLevel ActivityLevel     `json:"activity_level"`
	Goal          Goal              `json:"goal"`
	DayType       DayType           `json:"day_type"`
	Wake          time.Time         `json:"wake"`
	Bed           time.Time         `json:"bed"`
	Sessions      []TrainingSession `json:"sessions"`
	Constraints   UserConstraints   `json:"constraints"`
	Seed          int64             `json:"seed"`
	Swap          *SwapDirective    `json:"swap,omitempty"`
}
