// Package server exposes a loaded call graph over a small HTTP JSON
// API. The server is a thin driver: it holds a Ready engine and every
// endpoint is a read-only query, so requests can be served
// concurrently without synchronization.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/hazgraph/hazgraph/internal/engine"
	"github.com/hazgraph/hazgraph/internal/graph"
)

// Server is the hazgraph HTTP server.
type Server struct {
	engine     *engine.Engine
	httpServer *http.Server
	port       int
	routeLimit time.Duration
	avoidAttrs graph.EdgeAttrs
}

// Config holds server configuration.
type Config struct {
	Port int
	// RouteTimeout bounds each route search. Zero means no limit
	// beyond the request context.
	RouteTimeout time.Duration
	// AvoidAttrs is the edge-attribute mask route searches avoid when
	// the request does not name one. The avoid_attrs query parameter
	// overrides it, including with an explicit 0.
	AvoidAttrs graph.EdgeAttrs
}

// New creates a server over a Ready engine.
func New(cfg Config, eng *engine.Engine) (*Server, error) {
	if eng.State() != engine.StateReady {
		return nil, engine.ErrNotReady
	}

	s := &Server{
		engine:     eng,
		port:       cfg.Port,
		routeLimit: cfg.RouteTimeout,
		avoidAttrs: cfg.AvoidAttrs,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.corsMiddleware(s.handleHealth))
	mux.HandleFunc("/api/stats", s.corsMiddleware(s.handleStats))
	mux.HandleFunc("/api/resolve", s.corsMiddleware(s.handleResolve))
	mux.HandleFunc("/api/node/", s.corsMiddleware(s.handleNode))
	mux.HandleFunc("/api/route", s.corsMiddleware(s.handleRoute))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Start starts the server and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on http://localhost:%d", s.port)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Port returns the configured port.
func (s *Server) Port() int {
	return s.port
}

// corsMiddleware adds CORS headers for local development.
func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding JSON: %v", err)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeQueryError maps engine error conditions onto HTTP statuses.
func writeQueryError(w http.ResponseWriter, err error) {
	var unknown *graph.UnknownNodeError
	var invalid *graph.InvalidQueryError
	switch {
	case errors.As(err, &invalid):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &unknown):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeError(w, http.StatusGatewayTimeout, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStats returns call graph statistics.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	stats, err := s.engine.Stats()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// resolveResult is one resolve candidate with its display identity.
type resolveResult struct {
	ID    graph.NodeID `json:"id"`
	Names []string     `json:"names"`
}

// handleResolve handles GET /api/resolve?q=<name or #id>
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "q parameter required")
		return
	}

	ids, err := s.engine.Resolve(query)
	if err != nil {
		writeQueryError(w, err)
		return
	}

	results := make([]resolveResult, 0, len(ids))
	for _, id := range ids {
		names, err := s.engine.Names(id)
		if err != nil {
			writeQueryError(w, err)
			return
		}
		results = append(results, resolveResult{ID: id, Names: names})
	}
	writeJSON(w, http.StatusOK, results)
}

// handleNode handles node endpoints:
//
//	GET /api/node/:id          - names and description
//	GET /api/node/:id/callees  - direct callees
//	GET /api/node/:id/callers  - direct callers
func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/node/")
	parts := strings.SplitN(path, "/", 2)

	raw, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid node ID")
		return
	}
	id := graph.NodeID(raw)

	if len(parts) == 1 {
		s.writeNodeSummary(w, id)
		return
	}

	switch parts[1] {
	case "callees":
		ids, err := s.engine.Callees(id)
		if err != nil {
			writeQueryError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, idList(ids))
	case "callers":
		ids, err := s.engine.Callers(id)
		if err != nil {
			writeQueryError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, idList(ids))
	default:
		writeError(w, http.StatusBadRequest, "invalid node endpoint")
	}
}

func (s *Server) writeNodeSummary(w http.ResponseWriter, id graph.NodeID) {
	names, err := s.engine.Names(id)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	desc, err := s.engine.Describe(id, graph.Normal)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		ID          graph.NodeID `json:"id"`
		Names       []string     `json:"names"`
		Description string       `json:"description"`
	}{ID: id, Names: names, Description: desc})
}

// routeResponse is the response for route queries.
type routeResponse struct {
	Path  []resolveResult `json:"path"`
	Found bool            `json:"found"`
}

// handleRoute handles
//
//	GET /api/route?from=<id>&to=<id,...>&avoid=<id,...>&avoid_attrs=<n>
func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()

	start, err := parseNodeID(q.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from parameter")
		return
	}
	targets, err := parseNodeIDList(q.Get("to"))
	if err != nil || len(targets) == 0 {
		writeError(w, http.StatusBadRequest, "invalid to parameter")
		return
	}
	avoid, err := parseNodeIDList(q.Get("avoid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid avoid parameter")
		return
	}

	mask := s.avoidAttrs
	if rawMask := q.Get("avoid_attrs"); rawMask != "" {
		raw, err := strconv.ParseUint(rawMask, 10, 32)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid avoid_attrs parameter")
			return
		}
		mask = graph.EdgeAttrs(raw)
	}
	var opts []graph.RouteOption
	if mask != 0 {
		opts = append(opts, graph.WithAvoidAttrs(mask))
	}

	ctx := r.Context()
	if s.routeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.routeLimit)
		defer cancel()
	}

	path, err := s.engine.Route(ctx, start, targets, avoid, opts...)
	if err != nil {
		writeQueryError(w, err)
		return
	}

	resp := routeResponse{Path: make([]resolveResult, 0, len(path)), Found: len(path) > 0}
	for _, id := range path {
		names, err := s.engine.Names(id)
		if err != nil {
			writeQueryError(w, err)
			return
		}
		resp.Path = append(resp.Path, resolveResult{ID: id, Names: names})
	}
	writeJSON(w, http.StatusOK, resp)
}

func parseNodeID(s string) (graph.NodeID, error) {
	raw, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return graph.NodeID(raw), nil
}

func parseNodeIDList(s string) ([]graph.NodeID, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]graph.NodeID, 0, len(parts))
	for _, p := range parts {
		id, err := parseNodeID(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// idList normalizes a nil slice to an empty JSON array.
func idList(ids []graph.NodeID) []graph.NodeID {
	if ids == nil {
		return []graph.NodeID{}
	}
	return ids
}
