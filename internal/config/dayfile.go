package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"uni-meal-planner/internal/planner"
)

// Profile describes the athlete's body and goals. Zero fields fall back to
// the stock profile when the file is converted to a request.
type Profile struct {
	WeightKg      float64 `yaml:"weight_kg" json:"weight_kg"`
	HeightCm      float64 `yaml:"height_cm" json:"height_cm"`
	Age           int     `yaml:"age" json:"age"`
	Sex           string  `yaml:"sex" json:"sex"`
	ActivityLevel string  `yaml:"activity_level" json:"activity_level"`
	Goal          string  `yaml:"goal" json:"goal"`
}

// DefaultProfile returns the stock athlete profile.
func DefaultProfile() Profile {
	return Profile{
		WeightKg:      60,
		HeightCm:      160,
		Age:           19,
		Sex:           "female",
		ActivityLevel: "normal",
		Goal:          "maintain",
	}
}

// DayConstraints are dietary restrictions in file form. Lactose intolerance
// defaults to true when omitted, matching the stock profile.
type DayConstraints struct {
	LactoseIntolerant *bool    `yaml:"lactose_intolerant"`
	DislikedFoods     []string `yaml:"disliked_foods"`
	Allergies         []string `yaml:"allergies"`
}

// DaySession is one training block in file form. Start and end are "HH:MM"
// clock strings placed on the file's date.
type DaySession struct {
	Label     string `yaml:"label"`
	Type      string `yaml:"type"`
	Intensity string `yaml:"intensity"`
	Start     string `yaml:"start"`
	End       string `yaml:"end"`
}

// DayFile is the on-disk description of one day to plan. Every field is
// optional; an empty file plans a session-free class day for the stock
// athlete.
type DayFile struct {
	Date            string         `yaml:"date"`
	DayType         string         `yaml:"day_type"`
	Wake            string         `yaml:"wake"`
	Bed             string         `yaml:"bed"`
	Seed            *int64         `yaml:"seed"`
	DefaultSessions bool           `yaml:"default_sessions"`
	Profile         Profile        `yaml:"profile"`
	Constraints     DayConstraints `yaml:"constraints"`
	Sessions        []DaySession   `yaml:"sessions"`
}

// LoadDayFile reads and parses a YAML day description.
func LoadDayFile(path string) (*DayFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read day file: %w", err)
	}
	return ParseDayFile(data)
}

// ParseDayFile parses a YAML day description from memory, for surfaces
// that receive the file as an upload rather than a path.
func ParseDayFile(data []byte) (*DayFile, error) {
	var d DayFile
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse day file: %w", err)
	}
	return &d, nil
}

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

func (d *DayFile) planDate() (time.Time, error) {
	if d.Date == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local), nil
	}
	t, err := time.ParseInLocation(dateLayout, d.Date, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", d.Date, err)
	}
	return t, nil
}

// combine places a clock string on the given date.
func combine(date time.Time, clock string) (time.Time, error) {
	t, err := time.Parse(clockLayout, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", clock, err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location()), nil
}

// PlanRequest converts the file into a planner request. Omitted fields take
// the stock profile and schedule, default_sessions pulls in the stock
// training layout for the day type, and a missing seed gets a fresh one so
// the stored request replays the same plan later.
func (d *DayFile) PlanRequest() (planner.PlanRequest, error) {
	date, err := d.planDate()
	if err != nil {
		return planner.PlanRequest{}, err
	}

	profile := d.Profile
	defaults := DefaultProfile()
	if profile.WeightKg == 0 {
		profile.WeightKg = defaults.WeightKg
	}
	if profile.HeightCm == 0 {
		profile.HeightCm = defaults.HeightCm
	}
	if profile.Age == 0 {
		profile.Age = defaults.Age
	}
	if profile.Sex == "" {
		profile.Sex = defaults.Sex
	}
	if profile.ActivityLevel == "" {
		profile.ActivityLevel = defaults.ActivityLevel
	}
	if profile.Goal == "" {
		profile.Goal = defaults.Goal
	}

	dayType := d.DayType
	if dayType == "" {
		dayType = string(planner.DayClasses)
	}

	wakeStr := d.Wake
	if wakeStr == "" {
		wakeStr = "06:30"
	}
	bedStr := d.Bed
	if bedStr == "" {
		bedStr = "23:00"
	}

	wake, err := combine(date, wakeStr)
	if err != nil {
		return planner.PlanRequest{}, fmt.Errorf("wake: %w", err)
	}
	bed, err := combine(date, bedStr)
	if err != nil {
		return planner.PlanRequest{}, fmt.Errorf("bed: %w", err)
	}

	var sessions []planner.TrainingSession
	if d.DefaultSessions && len(d.Sessions) == 0 {
		sessions = planner.DefaultSessions(date, planner.DayType(dayType))
	}
	for _, s := range d.Sessions {
		start, err := combine(date, s.Start)
		if err != nil {
			return planner.PlanRequest{}, fmt.Errorf("session %q start: %w", s.Label, err)
		}
		end, err := combine(date, s.End)
		if err != nil {
			return planner.PlanRequest{}, fmt.Errorf("session %q end: %w", s.Label, err)
		}
		sessions = append(sessions, planner.TrainingSession{
			Label:     s.Label,
			Start:     start,
			End:       end,
			Type:      planner.SessionType(s.Type),
			Intensity: planner.Intensity(s.Intensity),
		})
	}
	if err := planner.ValidateSessions(sessions); err != nil {
		return planner.PlanRequest{}, err
	}

	lactose := true
	if d.Constraints.LactoseIntolerant != nil {
		lactose = *d.Constraints.LactoseIntolerant
	}

	seed := time.Now().UnixNano()
	if d.Seed != nil {
		seed = *d.Seed
	}

	return planner.PlanRequest{
		WeightKg:      profile.WeightKg,
		HeightCm:      profile.HeightCm,
		Age:           profile.Age,
		Sex:           planner.Sex(profile.Sex),
		ActivityLevel: planner.ActivityLevel(profile.ActivityLevel),
		Goal:          planner.Goal(profile.Goal),
		DayType:       planner.DayType(dayType),
		Wake:          wake,
		Bed:           bed,
		Sessions:      sessions,
		Constraints: planner.UserConstraints{
			LactoseIntolerant: lactose,
			DislikedFoods:     d.Constraints.DislikedFoods,
			Allergies:         d.Constraints.Allergies,
		},
		Seed: seed,
	}, nil
}
