package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/ThinkInAIXYZ/go-mcp/server"

	"uni-meal-planner/internal/history"
	"uni-meal-planner/internal/metrics"
	"uni-meal-planner/internal/planner"
)

// PlannerServer exposes the planning engine over a small HTTP-based MCP
// endpoint, so agent frontends can request targets, plans and swaps as
// tool calls.
type PlannerServer struct {
	server     *server.Server
	httpServer *http.Server
	planner    *planner.Planner
	store      *history.Store
	collector  *metrics.Collector
}

// NewPlannerServer builds the MCP endpoint. The history store and metrics
// collector are optional; without a store the swap_meal tool reports that
// history is disabled.
func NewPlannerServer(addr string, p *planner.Planner, store *history.Store, collector *metrics.Collector) (*PlannerServer, error) {
	ps := &PlannerServer{
		planner:   p,
		store:     store,
		collector: collector,
	}

	// The MCP server handles protocol bookkeeping; transport is our own
	// HTTP handler below.
	mcpServer, err := server.NewServer(
		nil,
		server.WithServerInfo(protocol.Implementation{
			Name:    "uni-meal-planner",
			Version: "1.0.0",
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create MCP server: %w", err)
	}
	ps.server = mcpServer

	mux := http.NewServeMux()
	mux.HandleFunc("/", ps.handleHTTP)
	ps.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	return ps, nil
}

// Handler exposes the HTTP handler for tests.
func (s *PlannerServer) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *PlannerServer) handleHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	var request protocol.CallToolRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	var result *protocol.CallToolResult
	var err error

	switch request.Name {
	case "estimate_targets":
		result, err = s.handleEstimateTargets(&request)
	case "generate_plan":
		result, err = s.handleGeneratePlan(&request)
	case "swap_meal":
		result, err = s.handleSwapMeal(&request)
	case "get_catalog":
		result, err = s.handleGetCatalog(&request)
	default:
		http.Error(w, fmt.Sprintf("Unknown tool: %s", request.Name), http.StatusNotFound)
		return
	}

	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(result); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// Start serves until the listener fails or Stop is called.
func (s *PlannerServer) Start(ctx context.Context) error {
	log.Printf("Starting MCP planner server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop shuts the HTTP listener down gracefully.
func (s *PlannerServer) Stop() error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(context.Background())
	}
	return nil
}

func (s *PlannerServer) createJSONResponse(data interface{}) (*protocol.CallToolResult, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: string(jsonBytes),
			},
		},
	}, nil
}
