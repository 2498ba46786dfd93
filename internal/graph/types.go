package graph

// NodeID is a type-safe identifier for call graph nodes. IDs come from
// the upstream record stream and are stable for the lifetime of the graph.
type NodeID uint32

// EdgeAttrs is a bitmask of attribute bits carried on a call edge.
// The upstream analysis uses these to mark calls that are limited in
// some way, e.g. calls made while GC is suppressed.
type EdgeAttrs uint32

const (
	// AttrSuppressGC marks a call made in a region where GC cannot run.
	AttrSuppressGC EdgeAttrs = 1
)

// Edge is a directed "calls" relation to a callee, with attribute bits.
type Edge struct {
	Callee NodeID    `json:"callee"`
	Attrs  EdgeAttrs `json:"attrs,omitempty"`
}

// node holds per-function data. The first name recorded is the
// canonical (mangled) name; later names are display (unmangled) names.
type node struct {
	id       NodeID
	names    []string
	nameSeen map[string]bool

	callees   []Edge
	calleeIdx map[NodeID]int

	callers    []NodeID
	callerSeen map[NodeID]bool
}

func newNode(id NodeID, name string) *node {
	return &node{
		id:         id,
		names:      []string{name},
		nameSeen:   map[string]bool{name: true},
		calleeIdx:  make(map[NodeID]int),
		callerSeen: make(map[NodeID]bool),
	}
}

// addName appends a name if this node has not seen it before.
// Returns true if the name was new.
func (n *node) addName(name string) bool {
	if n.nameSeen[name] {
		return false
	}
	n.nameSeen[name] = true
	n.names = append(n.names, name)
	return true
}

// canonical returns the first name recorded for the node.
func (n *node) canonical() string {
	return n.names[0]
}
