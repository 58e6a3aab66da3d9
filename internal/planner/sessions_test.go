package planner

import (
	"errors"
	"testing"
	"time"
)

func TestValidateSessions(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("Valid", func(t *testing.T) {
		sessions := []TrainingSession{
			{Label: "Practice", Start: day.Add(10 * time.Hour), End: day.Add(12 * time.Hour)},
		}
		if err := ValidateSessions(sessions); err != nil {
			t.Errorf("Expected valid sessions, got error: %v", err)
		}
	})

	t.Run("EndBeforeStart", func(t *testing.T) {
		sessions := []TrainingSession{
			{Label: "Backwards", Start: day.Add(12 * time.Hour), End: day.Add(10 * time.Hour)},
		}
		err := ValidateSessions(sessions)
		if err == nil {
			t.Fatal("Expected an error for a backwards session, got nil")
		}
		if !errors.Is(err, ErrInvalidSession) {
			t.Errorf("Expected ErrInvalidSession, got %v", err)
		}
	})

	t.Run("ZeroDuration", func(t *testing.T) {
		sessions := []TrainingSession{
			{Label: "Instant", Start: day.Add(10 * time.Hour), End: day.Add(10 * time.Hour)},
		}
		if err := ValidateSessions(sessions); err == nil {
			t.Fatal("Expected an error for a zero-length session, got nil")
		}
	})

	t.Run("Empty", func(t *testing.T) {
		if err := ValidateSessions(nil); err != nil {
			t.Errorf("Expected no error for an empty schedule, got %v", err)
		}
	})
}

func TestDefaultSessions(t *testing.T) {
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("Tournament", func(t *testing.T) {
		sessions := DefaultSessions(date, DayTournament)
		if len(sessions) != 2 {
			t.Fatalf("Expected 2 competition blocks, got %d", len(sessions))
		}
		for _, s := range sessions {
			if s.Type != SessionTournament || s.Intensity != IntensityHard {
				t.Errorf("Expected hard tournament blocks, got %+v", s)
			}
		}
		if !sessions[0].Start.Equal(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)) {
			t.Errorf("Expected the first block at 09:00, got %v", sessions[0].Start)
		}
	})

	t.Run("Classes", func(t *testing.T) {
		sessions := DefaultSessions(date, DayClasses)
		if len(sessions) != 2 {
			t.Fatalf("Expected classes plus practice, got %d sessions", len(sessions))
		}
		if sessions[0].Type != SessionClass || sessions[1].Type != SessionSkill {
			t.Errorf("Expected a class block and a skill session, got %+v", sessions)
		}
		if sessions[1].Intensity != IntensityModerate {
			t.Errorf("Expected moderate practice, got %s", sessions[1].Intensity)
		}
	})

	t.Run("Rest", func(t *testing.T) {
		sessions := DefaultSessions(date, DayRest)
		if len(sessions) != 1 || sessions[0].Type != SessionClass {
			t.Errorf("Expected only a class block on rest days, got %+v", sessions)
		}
	})

	t.Run("ValidatesClean", func(t *testing.T) {
		for _, dt := range []DayType{DayTournament, DayClasses, DayRest} {
			if err := ValidateSessions(DefaultSessions(date, dt)); err != nil {
				t.Errorf("Default %s sessions failed validation: %v", dt, err)
			}
		}
	})
}
