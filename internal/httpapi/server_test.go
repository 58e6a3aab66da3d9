package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"uni-meal-planner/internal/catalog"
	"uni-meal-planner/internal/database"
	"uni-meal-planner/internal/history"
	"uni-meal-planner/internal/planner"
)

const testSecret = "test-secret"

func testPlanner() *planner.Planner {
	foods := []catalog.Food{
		{Name: "Oats", KcalPer100g: 370, CarbsPer100g: 62, ProteinPer100g: 13, FatPer100g: 7, Tags: []string{"breakfast"}},
		{Name: "Rice", KcalPer100g: 130, CarbsPer100g: 28, ProteinPer100g: 2.7, FatPer100g: 0.3, Tags: []string{"lunch", "dinner"}},
		{Name: "Chicken breast", KcalPer100g: 165, ProteinPer100g: 31, FatPer100g: 3.6, Tags: []string{"lunch", "dinner"}},
		{Name: "Banana", KcalPer100g: 89, CarbsPer100g: 23, ProteinPer100g: 1.1, FatPer100g: 0.3, Tags: []string{"snack", "quick_sugar"}},
	}
	templates := []catalog.Template{
		{Name: "Oatmeal bowl", Purpose: "breakfast", Items: []catalog.TemplateItem{
			{Name: "Oats", Grams: 60, Role: "carb"},
		}},
	}
	return planner.NewPlanner(foods, templates)
}

func newTestServer(t *testing.T, store *history.Store) *Server {
	t.Helper()
	return NewServer(Config{ListenAddr: ":0", JWTSecret: testSecret}, testPlanner(), store, nil)
}

func openTestStore(t *testing.T) *history.Store {
	t.Helper()
	dir, err := os.MkdirTemp("", "httpapi_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	db, err := database.NewDB(filepath.Join(dir, "plans.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return history.NewStore(db.SQL)
}

func testRequestBody(t *testing.T, seed int64) *bytes.Reader {
	t.Helper()
	req := planner.PlanRequest{
		WeightKg:      60,
		HeightCm:      160,
		Age:           19,
		Sex:           planner.SexFemale,
		ActivityLevel: planner.ActivityNormal,
		Goal:          planner.GoalMaintain,
		DayType:       planner.DayRest,
		Wake:          time.Date(2025, 3, 10, 6, 30, 0, 0, time.UTC),
		Bed:           time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC),
		Seed:          seed,
	}
	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("Failed to marshal request: %v", err)
	}
	return bytes.NewReader(data)
}

func doRequest(s *Server, method, path, token string, body *bytes.Reader) *httptest.ResponseRecorder {
	if body == nil {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func mustToken(t *testing.T) string {
	t.Helper()
	token, err := MintToken(testSecret, "tester", time.Hour)
	if err != nil {
		t.Fatalf("Failed to mint token: %v", err)
	}
	return token
}

func TestHealthNeedsNoAuth(t *testing.T) {
	s := newTestServer(t, nil)

	w := doRequest(s, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
}

func TestPlanRequiresAuth(t *testing.T) {
	s := newTestServer(t, nil)

	cases := map[string]string{
		"NoToken":      "",
		"GarbageToken": "not-a-jwt",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			w := doRequest(s, http.MethodPost, "/v1/plan", token, testRequestBody(t, 1))
			if w.Code != http.StatusUnauthorized {
				t.Errorf("Expected 401, got %d", w.Code)
			}
		})
	}

	t.Run("WrongSecret", func(t *testing.T) {
		token, err := MintToken("other-secret", "tester", time.Hour)
		if err != nil {
			t.Fatalf("Failed to mint token: %v", err)
		}
		w := doRequest(s, http.MethodPost, "/v1/plan", token, testRequestBody(t, 1))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", w.Code)
		}
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		token, err := MintToken(testSecret, "tester", -time.Minute)
		if err != nil {
			t.Fatalf("Failed to mint token: %v", err)
		}
		w := doRequest(s, http.MethodPost, "/v1/plan", token, testRequestBody(t, 1))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", w.Code)
		}
	})
}

func TestPlanEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	w := doRequest(s, http.MethodPost, "/v1/plan", mustToken(t), testRequestBody(t, 42))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp planResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Plan == nil || resp.Plan.Targets.Kcal != 1800 {
		t.Errorf("Expected an 1800 kcal plan, got %+v", resp.Plan)
	}
	if len(resp.Plan.Meals) == 0 || len(resp.Plan.Hydration) == 0 {
		t.Error("Expected meals and hydration in the plan")
	}
	if resp.ID != "" {
		t.Errorf("Expected no history ID without a store, got '%s'", resp.ID)
	}
}

func TestPlanPersistsAndFetches(t *testing.T) {
	store := openTestStore(t)
	s := newTestServer(t, store)
	token := mustToken(t)

	w := doRequest(s, http.MethodPost, "/v1/plan", token, testRequestBody(t, 42))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var created planResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if created.ID == "" {
		t.Fatal("Expected a history ID with a store attached")
	}

	w = doRequest(s, http.MethodGet, "/v1/plans/"+created.ID, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 fetching the stored plan, got %d", w.Code)
	}
	var fetched planResponse
	if err := json.Unmarshal(w.Body.Bytes(), &fetched); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if fetched.Plan.Targets.Kcal != created.Plan.Targets.Kcal {
		t.Errorf("Expected the same plan back, got %v kcal", fetched.Plan.Targets.Kcal)
	}

	w = doRequest(s, http.MethodGet, "/v1/plans/no-such-id", token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for an unknown plan, got %d", w.Code)
	}
}

func TestPlanRejectsBadInput(t *testing.T) {
	s := newTestServer(t, nil)
	token := mustToken(t)

	t.Run("UnknownGoal", func(t *testing.T) {
		body := []byte(`{"weight_kg":60,"height_cm":160,"age":19,"sex":"female",` +
			`"activity_level":"normal","goal":"bulk","day_type":"rest",` +
			`"wake":"2025-03-10T06:30:00Z","bed":"2025-03-10T23:00:00Z","seed":1}`)
		w := doRequest(s, http.MethodPost, "/v1/plan", token, bytes.NewReader(body))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		w := doRequest(s, http.MethodPost, "/v1/plan", token, bytes.NewReader([]byte("{not json")))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("BackwardsSession", func(t *testing.T) {
		body := []byte(`{"weight_kg":60,"height_cm":160,"age":19,"sex":"female",` +
			`"activity_level":"normal","goal":"maintain","day_type":"rest",` +
			`"wake":"2025-03-10T06:30:00Z","bed":"2025-03-10T23:00:00Z","seed":1,` +
			`"sessions":[{"label":"X","type":"skill","intensity":"easy",` +
			`"start":"2025-03-10T21:00:00Z","end":"2025-03-10T19:00:00Z"}]}`)
		w := doRequest(s, http.MethodPost, "/v1/plan", token, bytes.NewReader(body))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestPlanReplayDeterminism(t *testing.T) {
	s := newTestServer(t, nil)
	token := mustToken(t)

	w := doRequest(s, http.MethodPost, "/v1/plan", token, testRequestBody(t, 3))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var first planResponse
	if err := json.Unmarshal(w.Body.Bytes(), &first); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	// Replay the same request with the same seed: identical plan.
	w = doRequest(s, http.MethodPost, "/v1/plan", token, testRequestBody(t, 3))
	var second planResponse
	if err := json.Unmarshal(w.Body.Bytes(), &second); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(first.Plan.Meals) != len(second.Plan.Meals) {
		t.Fatalf("Expected identical replays, got %d vs %d meals",
			len(first.Plan.Meals), len(second.Plan.Meals))
	}
	for i := range first.Plan.Meals {
		if first.Plan.Meals[i].Template != second.Plan.Meals[i].Template {
			t.Errorf("Meal %d template changed between replays", i)
		}
	}
}

func TestTargetsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	w := doRequest(s, http.MethodPost, "/v1/targets", mustToken(t), testRequestBody(t, 0))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var targets planner.Targets
	if err := json.Unmarshal(w.Body.Bytes(), &targets); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if targets.Kcal != 1800 {
		t.Errorf("Expected 1800 kcal, got %v", targets.Kcal)
	}
	if targets.ProteinG != 108 {
		t.Errorf("Expected 108 g protein, got %v", targets.ProteinG)
	}
	if targets.WaterML != 2100 {
		t.Errorf("Expected 2100 ml water, got %v", targets.WaterML)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	w := doRequest(s, http.MethodGet, "/metrics", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
}
