package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/hazgraph/hazgraph/internal/engine"
	"github.com/hazgraph/hazgraph/internal/graph"
)

const testInput = `#1 _Z3runv
= 1 run()
#2 js::Execute(JSContext*)
#3 collect()
#4 js::gc::Mark() [with T = JSObject]
D 1 2
D 2 3
D SUPPRESS_GC 2 4
`

func setupTestServer(t *testing.T) *Server {
	t.Helper()
	eng := engine.New()
	if _, err := eng.Load(context.Background(), strings.NewReader(testInput)); err != nil {
		t.Fatalf("loading test graph: %v", err)
	}
	srv, err := New(Config{Port: 0}, eng)
	if err != nil {
		t.Fatalf("creating server: %v", err)
	}
	return srv
}

func doRequest(t *testing.T, handler http.HandlerFunc, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

func TestServerRequiresReadyEngine(t *testing.T) {
	if _, err := New(Config{Port: 0}, engine.New()); err != engine.ErrNotReady {
		t.Errorf("New with unloaded engine: got %v, want ErrNotReady", err)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := setupTestServer(t)
	w := doRequest(t, srv.handleHealth, http.MethodGet, "/api/health")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp map[string]string
	decode(t, w, &resp)
	if resp["status"] != "ok" {
		t.Errorf("status = %q, want ok", resp["status"])
	}
}

func TestHandleStats(t *testing.T) {
	srv := setupTestServer(t)
	w := doRequest(t, srv.handleStats, http.MethodGet, "/api/stats")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var stats engine.Stats
	decode(t, w, &stats)
	if stats.NodeCount != 4 {
		t.Errorf("NodeCount = %d, want 4", stats.NodeCount)
	}
	if stats.EdgeCount != 3 {
		t.Errorf("EdgeCount = %d, want 3", stats.EdgeCount)
	}
}

func TestHandleResolve(t *testing.T) {
	srv := setupTestServer(t)
	w := doRequest(t, srv.handleResolve, http.MethodGet, "/api/resolve?q=collect")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var results []resolveResult
	decode(t, w, &results)
	if len(results) != 1 || results[0].ID != 3 {
		t.Fatalf("results = %+v, want single match for id 3", results)
	}
	if !reflect.DeepEqual(results[0].Names, []string{"collect()"}) {
		t.Errorf("names = %v, want [collect()]", results[0].Names)
	}
}

func TestHandleResolveNoMatch(t *testing.T) {
	srv := setupTestServer(t)
	w := doRequest(t, srv.handleResolve, http.MethodGet, "/api/resolve?q=nothing_here")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var results []resolveResult
	decode(t, w, &results)
	if len(results) != 0 {
		t.Errorf("results = %+v, want empty", results)
	}
}

func TestHandleResolveMissingQuery(t *testing.T) {
	srv := setupTestServer(t)
	w := doRequest(t, srv.handleResolve, http.MethodGet, "/api/resolve")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleResolveBadRegex(t *testing.T) {
	srv := setupTestServer(t)
	w := doRequest(t, srv.handleResolve, http.MethodGet, "/api/resolve?q="+`%2F%5B%2F`) // /[/
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleNodeSummary(t *testing.T) {
	srv := setupTestServer(t)
	w := doRequest(t, srv.handleNode, http.MethodGet, "/api/node/1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		ID          graph.NodeID `json:"id"`
		Names       []string     `json:"names"`
		Description string       `json:"description"`
	}
	decode(t, w, &resp)
	if resp.ID != 1 {
		t.Errorf("id = %d, want 1", resp.ID)
	}
	if !reflect.DeepEqual(resp.Names, []string{"_Z3runv", "run()"}) {
		t.Errorf("names = %v", resp.Names)
	}
}

func TestHandleNodeCallees(t *testing.T) {
	srv := setupTestServer(t)
	w := doRequest(t, srv.handleNode, http.MethodGet, "/api/node/2/callees")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var ids []graph.NodeID
	decode(t, w, &ids)
	if !reflect.DeepEqual(ids, []graph.NodeID{3, 4}) {
		t.Errorf("callees = %v, want [3 4]", ids)
	}
}

func TestHandleNodeCallers(t *testing.T) {
	srv := setupTestServer(t)
	w := doRequest(t, srv.handleNode, http.MethodGet, "/api/node/3/callers")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var ids []graph.NodeID
	decode(t, w, &ids)
	if !reflect.DeepEqual(ids, []graph.NodeID{2}) {
		t.Errorf("callers = %v, want [2]", ids)
	}
}

func TestHandleNodeUnknown(t *testing.T) {
	srv := setupTestServer(t)
	w := doRequest(t, srv.handleNode, http.MethodGet, "/api/node/99/callees")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestHandleNodeBadID(t *testing.T) {
	srv := setupTestServer(t)
	w := doRequest(t, srv.handleNode, http.MethodGet, "/api/node/abc")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleRoute(t *testing.T) {
	srv := setupTestServer(t)
	w := doRequest(t, srv.handleRoute, http.MethodGet, "/api/route?from=1&to=3")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp routeResponse
	decode(t, w, &resp)
	if !resp.Found {
		t.Fatal("expected a route")
	}
	got := make([]graph.NodeID, len(resp.Path))
	for i, hop := range resp.Path {
		got[i] = hop.ID
	}
	if !reflect.DeepEqual(got, []graph.NodeID{1, 2, 3}) {
		t.Errorf("path = %v, want [1 2 3]", got)
	}
}

func TestHandleRouteAvoid(t *testing.T) {
	srv := setupTestServer(t)
	w := doRequest(t, srv.handleRoute, http.MethodGet, "/api/route?from=1&to=3&avoid=2")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp routeResponse
	decode(t, w, &resp)
	if resp.Found || len(resp.Path) != 0 {
		t.Errorf("expected no route, got %+v", resp)
	}
}

func TestHandleRouteAvoidAttrs(t *testing.T) {
	srv := setupTestServer(t)
	w := doRequest(t, srv.handleRoute, http.MethodGet, "/api/route?from=1&to=4&avoid_attrs=1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp routeResponse
	decode(t, w, &resp)
	if resp.Found {
		t.Errorf("edge into 4 is suppressed, expected no route, got %+v", resp)
	}
}

func TestHandleRouteDefaultAvoidAttrs(t *testing.T) {
	eng := engine.New()
	if _, err := eng.Load(context.Background(), strings.NewReader(testInput)); err != nil {
		t.Fatalf("loading test graph: %v", err)
	}
	srv, err := New(Config{Port: 0, AvoidAttrs: graph.AttrSuppressGC}, eng)
	if err != nil {
		t.Fatalf("creating server: %v", err)
	}

	// The configured mask applies when the request names none.
	w := doRequest(t, srv.handleRoute, http.MethodGet, "/api/route?from=1&to=4")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp routeResponse
	decode(t, w, &resp)
	if resp.Found {
		t.Errorf("expected default mask to block the route, got %+v", resp)
	}

	// An explicit avoid_attrs=0 overrides the configured default.
	w = doRequest(t, srv.handleRoute, http.MethodGet, "/api/route?from=1&to=4&avoid_attrs=0")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	resp = routeResponse{}
	decode(t, w, &resp)
	if !resp.Found {
		t.Errorf("explicit zero mask should allow the route, got %+v", resp)
	}
}

func TestHandleRouteUnknownNode(t *testing.T) {
	srv := setupTestServer(t)
	w := doRequest(t, srv.handleRoute, http.MethodGet, "/api/route?from=1&to=99")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestHandleRouteBadParams(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"missing from", "/api/route?to=3"},
		{"missing to", "/api/route?from=1"},
		{"bad from", "/api/route?from=x&to=3"},
		{"bad avoid", "/api/route?from=1&to=3&avoid=x"},
		{"bad avoid attrs", "/api/route?from=1&to=3&avoid_attrs=x"},
	}

	srv := setupTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, srv.handleRoute, http.MethodGet, tt.url)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := setupTestServer(t)
	for _, h := range []http.HandlerFunc{srv.handleHealth, srv.handleStats, srv.handleResolve, srv.handleRoute} {
		w := doRequest(t, h, http.MethodPost, "/api/health")
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("POST: status = %d, want 405", w.Code)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := setupTestServer(t)
	handler := srv.corsMiddleware(srv.handleHealth)
	w := doRequest(t, handler, http.MethodOptions, "/api/health")
	if w.Code != http.StatusOK {
		t.Errorf("OPTIONS status = %d, want 200", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q, want *", got)
	}
}
