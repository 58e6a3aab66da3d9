package mcp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"

	"uni-meal-planner/internal/catalog"
	"uni-meal-planner/internal/config"
	"uni-meal-planner/internal/history"
	"uni-meal-planner/internal/planner"
)

type SessionParams struct {
	Label     string `json:"label,omitempty" description:"Free-form session label"`
	Type      string `json:"type" description:"Session type: strength, endurance, skill, mixed, tournament or class"`
	Intensity string `json:"intensity" description:"Session intensity: easy, moderate or hard"`
	Start     string `json:"start" description:"Session start (RFC 3339)"`
	End       string `json:"end" description:"Session end (RFC 3339)"`
}

type EstimateTargetsParams struct {
	WeightKg      float64         `json:"weight_kg,omitempty" description:"Body weight in kilograms (defaults to the stock profile)"`
	HeightCm      float64         `json:"height_cm,omitempty" description:"Height in centimeters (defaults to the stock profile)"`
	Age           int             `json:"age,omitempty" description:"Age in years (defaults to the stock profile)"`
	Sex           string          `json:"sex,omitempty" description:"Either female or male (defaults to the stock profile)"`
	ActivityLevel string          `json:"activity_level,omitempty" description:"Baseline activity: low, normal or high (defaults to normal)"`
	Goal          string          `json:"goal,omitempty" description:"Either cut, maintain or gain (defaults to maintain)"`
	Sessions      []SessionParams `json:"sessions,omitempty" description:"Training sessions planned for the day"`
}

type GeneratePlanParams struct {
	Date            string             `json:"date,omitempty" description:"Plan date (YYYY-MM-DD, defaults to today)"`
	DayType         string             `json:"day_type,omitempty" description:"Day type: tournament, classes or rest (defaults to classes)"`
	Wake            string             `json:"wake,omitempty" description:"Wake time (HH:MM, defaults to 06:30)"`
	Bed             string             `json:"bed,omitempty" description:"Bed time (HH:MM, defaults to 23:00)"`
	Seed            *int64             `json:"seed,omitempty" description:"Seed for reproducible plans (defaults to a fresh one)"`
	DefaultSessions bool               `json:"default_sessions,omitempty" description:"Use the stock training layout for the day type"`
	WeightKg        float64            `json:"weight_kg,omitempty" description:"Body weight in kilograms (defaults to the stock profile)"`
	HeightCm        float64            `json:"height_cm,omitempty" description:"Height in centimeters (defaults to the stock profile)"`
	Age             int                `json:"age,omitempty" description:"Age in years (defaults to the stock profile)"`
	Sex             string             `json:"sex,omitempty" description:"Either female or male (defaults to the stock profile)"`
	ActivityLevel   string             `json:"activity_level,omitempty" description:"Baseline activity: low, normal or high (defaults to normal)"`
	Goal            string             `json:"goal,omitempty" description:"Either cut, maintain or gain (defaults to maintain)"`
	Lactose         *bool              `json:"lactose_intolerant,omitempty" description:"Exclude foods with lactose (defaults to true)"`
	DislikedFoods   []string           `json:"disliked_foods,omitempty" description:"Food names to never pick"`
	Allergies       []string           `json:"allergies,omitempty" description:"Allergens to exclude"`
	Sessions        []DaySessionParams `json:"sessions,omitempty" description:"Training sessions for the day (HH:MM clock times)"`
}

type DaySessionParams struct {
	Label     string `json:"label,omitempty" description:"Free-form session label"`
	Type      string `json:"type" description:"Session type: strength, endurance, skill, mixed, tournament or class"`
	Intensity string `json:"intensity" description:"Session intensity: easy, moderate or hard"`
	Start     string `json:"start" description:"Session start (HH:MM)"`
	End       string `json:"end" description:"Session end (HH:MM)"`
}

type SwapMealParams struct {
	PlanID  string `json:"plan_id,omitempty" description:"Plan to swap a meal in (defaults to the most recent plan)"`
	Purpose string `json:"purpose" description:"Purpose of the meal to swap, e.g. breakfast or lunch"`
	Time    string `json:"time" description:"Slot time of the meal to swap (RFC 3339, as returned in the plan)"`
}

type GetCatalogParams struct {
	Tag string `json:"tag,omitempty" description:"Only return foods carrying this tag"`
}

// planResult is what generate_plan and swap_meal return: the plan itself
// plus the seed and, when history is enabled, the stored ID for later swaps.
type planResult struct {
	ID   string             `json:"id,omitempty"`
	Seed int64              `json:"seed"`
	Plan *planner.DailyPlan `json:"plan"`
}

// extractParams safely extracts parameters from the request arguments
func extractParams(req *protocol.CallToolRequest, target interface{}) error {
	jsonBytes, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("failed to marshal arguments: %w", err)
	}

	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return fmt.Errorf("failed to unmarshal parameters: %w", err)
	}

	return nil
}

func (s *PlannerServer) handleEstimateTargets(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params EstimateTargetsParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	profile := config.DefaultProfile()
	if params.WeightKg != 0 {
		profile.WeightKg = params.WeightKg
	}
	if params.HeightCm != 0 {
		profile.HeightCm = params.HeightCm
	}
	if params.Age != 0 {
		profile.Age = params.Age
	}
	if params.Sex != "" {
		profile.Sex = params.Sex
	}
	if params.ActivityLevel != "" {
		profile.ActivityLevel = params.ActivityLevel
	}
	if params.Goal != "" {
		profile.Goal = params.Goal
	}

	sessions := make([]planner.TrainingSession, 0, len(params.Sessions))
	for _, sp := range params.Sessions {
		start, err := time.Parse(time.RFC3339, sp.Start)
		if err != nil {
			return nil, fmt.Errorf("invalid session start %q: %w", sp.Start, err)
		}
		end, err := time.Parse(time.RFC3339, sp.End)
		if err != nil {
			return nil, fmt.Errorf("invalid session end %q: %w", sp.End, err)
		}
		sessions = append(sessions, planner.TrainingSession{
			Label:     sp.Label,
			Start:     start,
			End:       end,
			Type:      planner.SessionType(sp.Type),
			Intensity: planner.Intensity(sp.Intensity),
		})
	}
	if err := planner.ValidateSessions(sessions); err != nil {
		return nil, err
	}

	targets, err := planner.EstimateDailyTargets(
		profile.WeightKg, profile.HeightCm, profile.Age,
		planner.Sex(profile.Sex),
		planner.ActivityLevel(profile.ActivityLevel),
		planner.Goal(profile.Goal),
		sessions,
	)
	if err != nil {
		return nil, err
	}

	return s.createJSONResponse(targets)
}

func (s *PlannerServer) handleGeneratePlan(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params GeneratePlanParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	// Reuse the day-file defaulting so the MCP surface behaves exactly
	// like a day file with the same fields.
	day := config.DayFile{
		Date:            params.Date,
		DayType:         params.DayType,
		Wake:            params.Wake,
		Bed:             params.Bed,
		Seed:            params.Seed,
		DefaultSessions: params.DefaultSessions,
		Profile: config.Profile{
			WeightKg:      params.WeightKg,
			HeightCm:      params.HeightCm,
			Age:           params.Age,
			Sex:           params.Sex,
			ActivityLevel: params.ActivityLevel,
			Goal:          params.Goal,
		},
		Constraints: config.DayConstraints{
			LactoseIntolerant: params.Lactose,
			DislikedFoods:     params.DislikedFoods,
			Allergies:         params.Allergies,
		},
	}
	for _, sp := range params.Sessions {
		day.Sessions = append(day.Sessions, config.DaySession{
			Label:     sp.Label,
			Type:      sp.Type,
			Intensity: sp.Intensity,
			Start:     sp.Start,
			End:       sp.End,
		})
	}

	planReq, err := day.PlanRequest()
	if err != nil {
		return nil, err
	}

	return s.generateAndStore(planReq)
}

func (s *PlannerServer) handleSwapMeal(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params SwapMealParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if s.store == nil {
		return nil, fmt.Errorf("plan history is not enabled")
	}
	if params.Purpose == "" || params.Time == "" {
		return nil, fmt.Errorf("purpose and time are required")
	}

	var entry *history.Entry
	var err error
	if params.PlanID != "" {
		entry, err = s.store.Get(params.PlanID)
	} else {
		entry, err = s.store.Latest(0)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}

	// Exclude the template currently in the slot so the swap actually
	// changes the meal.
	exclude := ""
	found := false
	for _, meal := range entry.Plan.Meals {
		if string(meal.Purpose) == params.Purpose && meal.Time.Format(time.RFC3339) == params.Time {
			exclude = meal.Template
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("plan %s has no %s meal at %s", entry.ID, params.Purpose, params.Time)
	}

	planReq := entry.Request
	planReq.Swap = &planner.SwapDirective{
		Purpose:         planner.Purpose(params.Purpose),
		Time:            params.Time,
		ExcludeTemplate: exclude,
	}
	if s.collector != nil {
		s.collector.RecordSwap()
	}

	return s.generateAndStore(planReq)
}

func (s *PlannerServer) handleGetCatalog(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params GetCatalogParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	foods := s.planner.Foods()
	if params.Tag != "" {
		want := map[string]bool{params.Tag: true}
		filtered := make([]catalog.Food, 0, len(foods))
		for _, f := range foods {
			if f.HasAnyTag(want) {
				filtered = append(filtered, f)
			}
		}
		foods = filtered
	}

	result := map[string]interface{}{
		"foods":     foods,
		"templates": s.planner.Templates(),
	}
	return s.createJSONResponse(result)
}

// generateAndStore runs the planner on the request and, when history is
// enabled, stores the result for later swaps.
func (s *PlannerServer) generateAndStore(planReq planner.PlanRequest) (*protocol.CallToolResult, error) {
	start := time.Now()
	plan, err := s.planner.GenerateDailyPlan(planReq)
	if err != nil {
		if s.collector != nil {
			s.collector.RecordPlanFailure()
		}
		return nil, fmt.Errorf("failed to generate plan: %w", err)
	}
	if s.collector != nil {
		s.collector.RecordPlan(time.Since(start))
	}

	result := planResult{Seed: planReq.Seed, Plan: plan}
	if s.store != nil {
		entry, err := s.store.Save(0, planReq, plan)
		if err != nil {
			return nil, fmt.Errorf("failed to store plan: %w", err)
		}
		result.ID = entry.ID
	}

	return s.createJSONResponse(result)
}
