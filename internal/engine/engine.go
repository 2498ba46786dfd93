// Package engine is the public query surface over a loaded call
// graph. It enforces the load-then-query lifecycle: an Engine starts
// Uninitialized, moves through Loading during the single ingestion
// pass, and once Ready serves read-only queries from any number of
// goroutines concurrently.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hazgraph/hazgraph/internal/graph"
	"github.com/hazgraph/hazgraph/internal/parser"
)

// ErrNotReady is returned by queries issued before a successful Load.
// Querying an unloaded engine is a programming error in the caller,
// so it fails fast rather than blocking or returning empty results.
var ErrNotReady = errors.New("call graph not loaded")

// ErrAlreadyLoaded is returned by Load on an engine that already holds
// a graph. The graph is build-once: to pick up new input, construct a
// fresh engine.
var ErrAlreadyLoaded = errors.New("call graph already loaded")

// State is the engine lifecycle phase.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
)

// String returns the string representation of the State.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// loadCheckInterval is how many records to ingest between context
// cancellation checks during Load.
const loadCheckInterval = 4096

// Stats summarizes a loaded graph.
type Stats struct {
	NodeCount int           `json:"node_count"`
	EdgeCount int           `json:"edge_count"`
	NameCount int           `json:"name_count"`
	LineCount int           `json:"line_count"`
	Skipped   int           `json:"skipped_records"`
	LoadTime  time.Duration `json:"load_time_ns"`
	LoadedAt  time.Time     `json:"loaded_at"`
}

// Engine owns one immutable call graph and answers resolve, callees,
// names, and route queries against it.
type Engine struct {
	state State
	graph *graph.Graph
	diags []parser.Diagnostic
	stats Stats
}

// New creates an Uninitialized engine. Call Load before querying.
func New() *Engine {
	return &Engine{}
}

// State returns the engine's lifecycle phase.
func (e *Engine) State() State {
	return e.state
}

// Load runs the single ingestion pass: it parses the record stream
// from r, builds the graph and name index, and freezes them. On any
// load-time error the engine is left Uninitialized with no graph —
// there is no partially-usable state. Under the lenient parse policy
// the skipped-record diagnostics are returned alongside success.
//
// ctx is checked periodically so a caller can abort loading a very
// large stream.
func (e *Engine) Load(ctx context.Context, r io.Reader, opts ...parser.Option) ([]parser.Diagnostic, error) {
	if e.state != StateUninitialized {
		return nil, ErrAlreadyLoaded
	}
	e.state = StateLoading
	start := time.Now()

	g := graph.New()
	sc := parser.NewScanner(r, opts...)

	n := 0
	for sc.Scan() {
		n++
		if n%loadCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				e.state = StateUninitialized
				return nil, fmt.Errorf("load cancelled: %w", err)
			}
		}

		rec := sc.Record()
		var err error
		switch rec.Kind {
		case parser.KindFunction:
			err = g.DeclareNode(rec.ID, rec.Name)
		case parser.KindAlias:
			err = g.DeclareAlias(rec.ID, rec.Name)
		case parser.KindEdge:
			err = g.DeclareEdge(rec.Caller, rec.Callee, rec.Attrs)
		}
		if err != nil {
			e.state = StateUninitialized
			return nil, fmt.Errorf("line %d: %w", rec.Line, err)
		}
	}
	if err := sc.Err(); err != nil {
		e.state = StateUninitialized
		return nil, err
	}

	g.Freeze()
	e.graph = g
	e.diags = sc.Diagnostics()
	e.stats = Stats{
		NodeCount: g.NodeCount(),
		EdgeCount: g.EdgeCount(),
		NameCount: g.NameCount(),
		LineCount: sc.Lines(),
		Skipped:   sc.Skipped(),
		LoadTime:  time.Since(start),
		LoadedAt:  time.Now(),
	}
	e.state = StateReady
	return e.diags, nil
}

// LoadFile loads the record stream from a file on disk.
func (e *Engine) LoadFile(ctx context.Context, path string, opts ...parser.Option) ([]parser.Diagnostic, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening call graph: %w", err)
	}
	defer f.Close()
	return e.Load(ctx, f, opts...)
}

// Resolve translates a name or "#id" query into matching node ids.
// An empty result is a normal outcome, not an error.
func (e *Engine) Resolve(query string) ([]graph.NodeID, error) {
	if e.state != StateReady {
		return nil, ErrNotReady
	}
	return e.graph.Resolve(query)
}

// Callees returns the direct callees of id, in declared edge order.
func (e *Engine) Callees(id graph.NodeID) ([]graph.NodeID, error) {
	if e.state != StateReady {
		return nil, ErrNotReady
	}
	return e.graph.Callees(id)
}

// Callers returns the direct callers of id, in declared edge order.
func (e *Engine) Callers(id graph.NodeID) ([]graph.NodeID, error) {
	if e.state != StateReady {
		return nil, ErrNotReady
	}
	return e.graph.Callers(id)
}

// Names returns the names recorded for id, canonical name first.
func (e *Engine) Names(id graph.NodeID) ([]string, error) {
	if e.state != StateReady {
		return nil, ErrNotReady
	}
	return e.graph.Names(id)
}

// Describe formats the identity of id at the requested brevity.
func (e *Engine) Describe(id graph.NodeID, brevity graph.Brevity) (string, error) {
	if e.state != StateReady {
		return "", ErrNotReady
	}
	return e.graph.Describe(id, brevity)
}

// Route finds the shortest call path from start to any target without
// touching a node in avoid. An empty path means no target is reachable
// under the constraints; that is a normal outcome, not an error.
func (e *Engine) Route(ctx context.Context, start graph.NodeID, targets, avoid []graph.NodeID, opts ...graph.RouteOption) ([]graph.NodeID, error) {
	if e.state != StateReady {
		return nil, ErrNotReady
	}
	return e.graph.Route(ctx, start, targets, avoid, opts...)
}

// Stats returns summary statistics about the loaded graph.
func (e *Engine) Stats() (Stats, error) {
	if e.state != StateReady {
		return Stats{}, ErrNotReady
	}
	return e.stats, nil
}

// Diagnostics returns the malformed records skipped during a lenient
// load.
func (e *Engine) Diagnostics() []parser.Diagnostic {
	return e.diags
}
