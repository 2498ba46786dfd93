// Package graph holds the in-memory call graph: the canonical set of
// nodes and directed call edges, the name index used to resolve
// human-readable queries, and the constrained path search.
//
// A Graph goes through two phases. During ingestion it accepts
// DeclareNode and DeclareEdge calls from a single goroutine. Once
// Freeze is called it becomes immutable, and any number of goroutines
// may query it concurrently without synchronization. There is no way
// to mutate a frozen graph; if the input changes, the whole graph is
// rebuilt.
package graph

import (
	"errors"
	"fmt"
)

// ErrFrozen is returned when attempting to modify a frozen graph.
// Once Freeze is called the graph is read-only.
var ErrFrozen = errors.New("graph is frozen and cannot be modified")

// UnknownNodeError reports an operation that referenced a node id
// never declared in the record stream. It is local to the offending
// call and does not affect the graph.
type UnknownNodeError struct {
	ID NodeID
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("unknown node #%d", e.ID)
}

// InvalidQueryError reports a resolve query that used a recognized
// syntax but could not be interpreted, e.g. "#abc" or an unparsable
// /regex/ pattern.
type InvalidQueryError struct {
	Query  string
	Reason string
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("invalid query %q: %s", e.Query, e.Reason)
}
