package graph

import (
	"regexp"
	"strconv"
	"strings"
)

// Resolve translates a query string into the matching node ids.
//
// Query forms, tried in order:
//
//   - "#<digits>"  — a node id literal. Malformed digits are an
//     InvalidQueryError; a well-formed id that was never declared
//     yields an empty result.
//   - exact match against the name index (simple names and stems),
//     in first-seen order.
//   - "/<re>/"     — a regular expression matched against canonical
//     names, in declaration order.
//   - exact match against canonical names, in declaration order.
//   - substring match against any recorded name, in declaration order.
//
// An empty result means no match; callers must treat that as a normal
// outcome, and multiple matches as a candidate set to disambiguate.
func (g *Graph) Resolve(query string) ([]NodeID, error) {
	if strings.HasPrefix(query, "#") {
		return g.resolveID(query)
	}

	if ids := g.index.Lookup(query); len(ids) > 0 {
		return ids, nil
	}

	if len(query) >= 2 && strings.HasPrefix(query, "/") && strings.HasSuffix(query, "/") {
		return g.resolvePattern(query)
	}

	var results []NodeID
	for _, id := range g.order {
		if g.nodes[id].canonical() == query {
			results = append(results, id)
		}
	}
	if len(results) > 0 {
		return results, nil
	}

	for _, id := range g.order {
		for _, name := range g.nodes[id].names {
			if strings.Contains(name, query) {
				results = append(results, id)
				break
			}
		}
	}
	return results, nil
}

func (g *Graph) resolveID(query string) ([]NodeID, error) {
	raw, err := strconv.ParseUint(query[1:], 10, 32)
	if err != nil {
		return nil, &InvalidQueryError{Query: query, Reason: "id is not a number"}
	}
	id := NodeID(raw)
	if !g.Contains(id) {
		return nil, nil
	}
	return []NodeID{id}, nil
}

func (g *Graph) resolvePattern(query string) ([]NodeID, error) {
	re, err := regexp.Compile(query[1 : len(query)-1])
	if err != nil {
		return nil, &InvalidQueryError{Query: query, Reason: err.Error()}
	}
	var results []NodeID
	for _, id := range g.order {
		if re.MatchString(g.nodes[id].canonical()) {
			results = append(results, id)
		}
	}
	return results, nil
}
