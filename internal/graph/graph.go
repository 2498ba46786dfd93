package graph

// Graph is the aggregate of all nodes and call edges, plus the name
// index built alongside them. It owns all node and edge data; nothing
// else holds a mutable reference to it.
type Graph struct {
	frozen bool

	nodes map[NodeID]*node
	order []NodeID // declaration order, for deterministic scans

	index *NameIndex

	edgeCount int
	nameCount int
}

// New creates an empty graph in the building phase.
func New() *Graph {
	return &Graph{
		nodes: make(map[NodeID]*node),
		index: NewNameIndex(),
	}
}

// DeclareNode records a node declaration (id, name). Declaring a new
// id creates the node; declaring an existing id merges the name into
// its name set. Duplicate declarations are cumulative, not an error.
func (g *Graph) DeclareNode(id NodeID, name string) error {
	if g.frozen {
		return ErrFrozen
	}

	n, ok := g.nodes[id]
	if !ok {
		n = newNode(id, name)
		g.nodes[id] = n
		g.order = append(g.order, id)
		g.nameCount++
		g.index.Record(name, id)
		return nil
	}

	if n.addName(name) {
		g.nameCount++
		g.index.Record(name, id)
	}
	return nil
}

// DeclareAlias records an additional display name for an already
// declared node. Unlike DeclareNode it never creates a node: an alias
// naming an undeclared id is a structural error in the input.
func (g *Graph) DeclareAlias(id NodeID, name string) error {
	if g.frozen {
		return ErrFrozen
	}
	n, ok := g.nodes[id]
	if !ok {
		return &UnknownNodeError{ID: id}
	}
	if n.addName(name) {
		g.nameCount++
		g.index.Record(name, id)
	}
	return nil
}

// DeclareEdge records a directed call from caller to callee. Both
// endpoints must have been declared already; an edge referencing an
// undeclared id is a structural error in the input, not silently
// dropped. Duplicate caller->callee pairs collapse to one edge with
// their attribute bits merged, and first-insertion order is preserved
// so callee iteration is deterministic.
func (g *Graph) DeclareEdge(caller, callee NodeID, attrs EdgeAttrs) error {
	if g.frozen {
		return ErrFrozen
	}

	from, ok := g.nodes[caller]
	if !ok {
		return &UnknownNodeError{ID: caller}
	}
	to, ok := g.nodes[callee]
	if !ok {
		return &UnknownNodeError{ID: callee}
	}

	if i, dup := from.calleeIdx[callee]; dup {
		from.callees[i].Attrs |= attrs
		return nil
	}

	from.calleeIdx[callee] = len(from.callees)
	from.callees = append(from.callees, Edge{Callee: callee, Attrs: attrs})
	g.edgeCount++

	if !to.callerSeen[caller] {
		to.callerSeen[caller] = true
		to.callers = append(to.callers, caller)
	}
	return nil
}

// Freeze ends the ingestion phase. After Freeze the graph is immutable
// and safe for concurrent readers.
func (g *Graph) Freeze() {
	g.frozen = true
}

// Frozen reports whether the graph has been frozen.
func (g *Graph) Frozen() bool {
	return g.frozen
}

// Contains reports whether id was declared.
func (g *Graph) Contains(id NodeID) bool {
	_, ok := g.nodes[id]
	return ok
}

// Callees returns the callee ids recorded for id, in first-declared
// edge order.
func (g *Graph) Callees(id NodeID) ([]NodeID, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, &UnknownNodeError{ID: id}
	}
	out := make([]NodeID, len(n.callees))
	for i, e := range n.callees {
		out[i] = e.Callee
	}
	return out, nil
}

// CalleeEdges returns the outgoing edges for id with their attribute
// bits, in first-declared order.
func (g *Graph) CalleeEdges(id NodeID) ([]Edge, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, &UnknownNodeError{ID: id}
	}
	out := make([]Edge, len(n.callees))
	copy(out, n.callees)
	return out, nil
}

// Callers returns the ids of nodes with an edge into id, in the order
// those edges were first declared.
func (g *Graph) Callers(id NodeID) ([]NodeID, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, &UnknownNodeError{ID: id}
	}
	out := make([]NodeID, len(n.callers))
	copy(out, n.callers)
	return out, nil
}

// Names returns all names recorded for id in insertion order. The
// first entry is the canonical name from the node's declaration;
// later entries are display names merged from repeat declarations.
func (g *Graph) Names(id NodeID) ([]string, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, &UnknownNodeError{ID: id}
	}
	out := make([]string, len(n.names))
	copy(out, n.names)
	return out, nil
}

// NodeIDs returns all node ids in declaration order.
func (g *Graph) NodeIDs() []NodeID {
	out := make([]NodeID, len(g.order))
	copy(out, g.order)
	return out
}

// NodeCount returns the number of declared nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of distinct call edges.
func (g *Graph) EdgeCount() int {
	return g.edgeCount
}

// NameCount returns the total number of distinct names across all nodes.
func (g *Graph) NameCount() int {
	return g.nameCount
}
