package graph

import (
	"context"
	"fmt"
)

// routeOptions configures a single Route call.
type routeOptions struct {
	avoidAttrs EdgeAttrs
}

// RouteOption is a functional option for configuring Route.
type RouteOption func(*routeOptions)

// WithAvoidAttrs excludes edges whose attribute bits intersect mask.
// Use AttrSuppressGC to skip calls the analysis marked as GC-suppressed.
func WithAvoidAttrs(mask EdgeAttrs) RouteOption {
	return func(o *routeOptions) {
		o.avoidAttrs = mask
	}
}

// Route returns the shortest call path from start to any member of
// targets that touches no node in avoid. The search is breadth-first
// over callee adjacency in stored edge order, so among equal-length
// paths the one through earliest-declared edges wins, deterministically.
//
// Edge cases follow the query contract: if start is itself a target,
// the path is [start] with no traversal; if start is in avoid, or no
// target is reachable without crossing avoid, the result is empty —
// unreachability is a normal outcome, not an error. All ids are
// validated before any traversal, so an UnknownNodeError never wastes
// partial search work.
//
// ctx is checked once per node expansion, not per edge; cancellation
// returns the context's error rather than a partial path. The visited
// set bounds expansion to the node count, so the search terminates on
// cyclic graphs.
func (g *Graph) Route(ctx context.Context, start NodeID, targets, avoid []NodeID, opts ...RouteOption) ([]NodeID, error) {
	var options routeOptions
	for _, opt := range opts {
		opt(&options)
	}

	if !g.Contains(start) {
		return nil, &UnknownNodeError{ID: start}
	}
	for _, id := range targets {
		if !g.Contains(id) {
			return nil, &UnknownNodeError{ID: id}
		}
	}
	for _, id := range avoid {
		if !g.Contains(id) {
			return nil, &UnknownNodeError{ID: id}
		}
	}

	targetSet := make(map[NodeID]bool, len(targets))
	for _, id := range targets {
		targetSet[id] = true
	}
	avoidSet := make(map[NodeID]bool, len(avoid))
	for _, id := range avoid {
		avoidSet[id] = true
	}

	// start is part of the path, so a forbidden start means no path.
	if avoidSet[start] {
		return nil, nil
	}
	if targetSet[start] {
		return []NodeID{start}, nil
	}

	parent := make(map[NodeID]NodeID)
	visited := map[NodeID]bool{start: true}
	queue := []NodeID{start}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("route search cancelled: %w", err)
		}

		src := queue[0]
		queue = queue[1:]

		for _, e := range g.nodes[src].callees {
			if options.avoidAttrs != 0 && e.Attrs&options.avoidAttrs != 0 {
				continue
			}
			dst := e.Callee
			if visited[dst] || avoidSet[dst] {
				continue
			}
			visited[dst] = true
			parent[dst] = src
			if targetSet[dst] {
				return unwind(parent, start, dst), nil
			}
			queue = append(queue, dst)
		}
	}

	return nil, nil
}

// unwind reconstructs the start->goal path from the BFS parent map.
func unwind(parent map[NodeID]NodeID, start, goal NodeID) []NodeID {
	path := []NodeID{goal}
	for path[len(path)-1] != start {
		path = append(path, parent[path[len(path)-1]])
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
