package graph

import "regexp"

// stemRE extracts the simple function name from a full signature,
// e.g. "js::gc::GCRuntime::collect(JS::GCOptions)" stems to "collect".
var stemRE = regexp.MustCompile(`([A-Za-z0-9_~]+)\(`)

// Stem reduces a display name to its simple function name: the first
// identifier immediately preceding an opening parenthesis, or the
// whole string when there is no parenthesis. In a name with nested
// parentheses, such as a template argument carrying its own parameter
// list, the stem comes from the earliest paren, not the outermost
// function.
func Stem(name string) string {
	m := stemRE.FindStringSubmatch(name)
	if m == nil {
		return name
	}
	return m[1]
}

// NameIndex maps a display name to the ordered sequence of node ids
// carrying that name, in first-seen order. Names are not unique:
// overloads, template instantiations, and merged duplicates routinely
// share one name, so a lookup yields a candidate set, never a single
// hidden winner.
//
// Every name is indexed under its exact spelling and, when different,
// under its stem, so both "collect(JS::GCOptions)" and "collect" find
// the same node.
type NameIndex struct {
	ids map[string][]NodeID
}

// NewNameIndex creates an empty index.
func NewNameIndex() *NameIndex {
	return &NameIndex{ids: make(map[string][]NodeID)}
}

// Record indexes name (and its stem) for id. Repeating the identical
// declaration is idempotent: the id is not appended if it is already
// the last entry for that key.
func (ix *NameIndex) Record(name string, id NodeID) {
	ix.record(name, id)
	if s := Stem(name); s != name {
		ix.record(s, id)
	}
}

func (ix *NameIndex) record(key string, id NodeID) {
	seq := ix.ids[key]
	if len(seq) > 0 && seq[len(seq)-1] == id {
		return
	}
	ix.ids[key] = append(seq, id)
}

// Lookup returns the ids indexed under name in first-seen order. An
// unknown name yields an empty sequence; absence of a match is a
// normal outcome, not an error.
func (ix *NameIndex) Lookup(name string) []NodeID {
	seq := ix.ids[name]
	if len(seq) == 0 {
		return nil
	}
	out := make([]NodeID, len(seq))
	copy(out, seq)
	return out
}

// Len returns the number of distinct indexed keys.
func (ix *NameIndex) Len() int {
	return len(ix.ids)
}
