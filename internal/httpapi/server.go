package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"uni-meal-planner/internal/history"
	"uni-meal-planner/internal/metrics"
	"uni-meal-planner/internal/planner"
)

// Config holds what the API server needs beyond its dependencies.
type Config struct {
	ListenAddr string
	JWTSecret  string
}

// Server exposes plan generation over REST. Every /v1 route except health
// requires a bearer token signed with the shared secret.
type Server struct {
	planner    *planner.Planner
	store      *history.Store
	collector  *metrics.Collector
	jwtSecret  string
	httpServer *http.Server
}

// NewServer wires the REST routes. The history store and the metrics
// collector may be nil; the matching features degrade to no-ops.
func NewServer(cfg Config, p *planner.Planner, store *history.Store, collector *metrics.Collector) *Server {
	s := &Server{
		planner:   p,
		store:     store,
		collector: collector,
		jwtSecret: cfg.JWTSecret,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /v1/plan", s.requireAuth(s.handlePlan))
	mux.HandleFunc("POST /v1/targets", s.requireAuth(s.handleTargets))
	mux.HandleFunc("GET /v1/plans/{id}", s.requireAuth(s.handleGetPlan))

	s.httpServer = &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: mux,
	}
	return s
}

// Handler returns the route tree, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until the listener fails or Stop is called.
func (s *Server) Start() error {
	log.Printf("Starting API server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// planResponse pairs the generated plan with its history ID, empty when the
// server runs without persistence.
type planResponse struct {
	ID   string             `json:"id,omitempty"`
	Plan *planner.DailyPlan `json:"plan"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handlePlan generates a full day. The body is a plan request; a zero seed
// gets a fresh one so the stored request replays the same plan.
func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req planner.PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if err := planner.ValidateSessions(req.Sessions); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Seed == 0 {
		req.Seed = time.Now().UnixNano()
	}
	if req.Swap != nil && s.collector != nil {
		s.collector.RecordSwap()
	}

	started := time.Now()
	plan, err := s.planner.GenerateDailyPlan(req)
	if err != nil {
		if s.collector != nil {
			s.collector.RecordPlanFailure()
		}
		status := http.StatusInternalServerError
		if errors.Is(err, planner.ErrUnknownEnum) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}
	if s.collector != nil {
		s.collector.RecordPlan(time.Since(started))
	}

	resp := planResponse{Plan: plan}
	if s.store != nil {
		entry, err := s.store.Save(0, req, plan)
		if err != nil {
			log.Printf("Failed to store plan: %v", err)
		} else {
			resp.ID = entry.ID
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleTargets estimates daily targets without composing meals.
func (s *Server) handleTargets(w http.ResponseWriter, r *http.Request) {
	var req planner.PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if err := planner.ValidateSessions(req.Sessions); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	targets, err := planner.EstimateDailyTargets(
		req.WeightKg, req.HeightCm, req.Age,
		req.Sex, req.ActivityLevel, req.Goal, req.Sessions)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, planner.ErrUnknownEnum) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, targets)
}

// handleGetPlan returns a stored plan by ID.
func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "plan history is not enabled")
		return
	}

	entry, err := s.store.Get(r.PathValue("id"))
	if errors.Is(err, history.ErrNotFound) {
		writeError(w, http.StatusNotFound, "plan not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, planResponse{ID: entry.ID, Plan: &entry.Plan})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
