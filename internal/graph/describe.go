package graph

import (
	"fmt"
	"strings"
)

// Brevity selects how much of a node's identity Describe reports.
type Brevity int

const (
	// Brief prints only the canonical name.
	Brief Brevity = iota
	// Normal prints "#id = name" using the first display name when one
	// exists, falling back to the canonical name.
	Normal
	// Verbose prints "#id = canonical" followed by every display name
	// on its own indented line.
	Verbose
)

// Describe formats a node's identity at the requested brevity.
func (g *Graph) Describe(id NodeID, brevity Brevity) (string, error) {
	n, ok := g.nodes[id]
	if !ok {
		return "", &UnknownNodeError{ID: id}
	}

	switch brevity {
	case Brief:
		return n.canonical(), nil

	case Verbose:
		var b strings.Builder
		fmt.Fprintf(&b, "#%d = %s", id, n.canonical())
		for _, name := range n.names[1:] {
			b.WriteString("\n  ")
			b.WriteString(name)
		}
		return b.String(), nil

	default:
		name := n.canonical()
		if len(n.names) > 1 {
			name = n.names[1]
		}
		return fmt.Sprintf("#%d = %s", id, name), nil
	}
}
