package planner

import (
	"fmt"
	"time"
)

// ValidateSessions rejects sessions the planner cannot schedule around.
// The engine itself clamps negative durations to zero, so surfaces call
// this before planning to fail loudly instead of silently dropping energy.
func ValidateSessions(sessions []TrainingSession) error {
	for _, s := range sessions {
		if !s.End.After(s.Start) {
			return fmt.Errorf("session %q must end after it starts: %w", s.Label, ErrInvalidSession)
		}
	}
	return nil
}

// DefaultSessions returns the stock training layout for a day type, placed
// on the given date: two hard competition blocks on tournament days, classes
// plus an evening practice on class days, and classes only on rest days.
func DefaultSessions(date time.Time, dayType DayType) []TrainingSession {
	at := func(hour, min int) time.Time {
		return time.Date(date.Year(), date.Month(), date.Day(), hour, min, 0, 0, date.Location())
	}

	switch dayType {
	case DayTournament:
		return []TrainingSession{
			{Label: "Competition block 1", Start: at(9, 0), End: at(11, 0), Type: SessionTournament, Intensity: IntensityHard},
			{Label: "Competition block 2", Start: at(14, 0), End: at(18, 0), Type: SessionTournament, Intensity: IntensityHard},
		}
	case DayClasses:
		return []TrainingSession{
			{Label: "Classes", Start: at(10, 0), End: at(15, 0), Type: SessionClass, Intensity: IntensityEasy},
			{Label: "Evening practice", Start: at(19, 0), End: at(21, 0), Type: SessionSkill, Intensity: IntensityModerate},
		}
	default:
		return []TrainingSession{
			{Label: "Classes", Start: at(10, 0), End: at(15, 0), Type: SessionClass, Intensity: IntensityEasy},
		}
	}
}
