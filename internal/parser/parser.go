// Package parser turns the raw call-graph record stream produced by
// the upstream static analysis into typed records, one logical record
// per line. Parsing is streaming and single-pass: records are yielded
// as they are read, so ingestion can begin before the stream ends.
//
// The stream format is the hazard-analysis callgraph.txt grammar:
//
//	#<id> <name>        function declaration (canonical name)
//	= <id> <name>       display (unmangled) name for a declared id
//	D <src> <dst>       direct call edge
//	R <src> <dst>       resolved call edge
//	D /N <src> <dst>    edge with attribute bits N
//	D SUPPRESS_GC <src> <dst>
//	F/I/T/V ...         field/indirect/tag/virtual records (skipped)
package parser

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hazgraph/hazgraph/internal/graph"
)

// Kind discriminates the record variants a Scanner yields.
type Kind int

const (
	// KindFunction is a node declaration carrying the canonical name.
	KindFunction Kind = iota
	// KindAlias is a display-name declaration for an existing id.
	KindAlias
	// KindEdge is a caller->callee declaration.
	KindEdge
)

// Record is one parsed declaration from the stream.
type Record struct {
	Kind Kind
	Line int

	// For KindFunction and KindAlias.
	ID   graph.NodeID
	Name string

	// For KindEdge.
	Caller graph.NodeID
	Callee graph.NodeID
	Attrs  graph.EdgeAttrs
}

// ParseError reports a malformed record, carrying the line number and
// the raw text so diagnostics can point at the offending input.
type ParseError struct {
	Line int
	Text string
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Msg, e.Text)
}

// Diagnostic records a malformed record that was skipped under the
// lenient policy.
type Diagnostic struct {
	Line int    `json:"line"`
	Text string `json:"text"`
	Msg  string `json:"msg"`
}

// Policy selects how the scanner treats malformed records.
type Policy int

const (
	// Strict aborts the scan on the first malformed record. This is
	// the default: a partial hazard-path answer from a corrupt graph
	// is worse than no answer.
	Strict Policy = iota
	// Lenient skips malformed records and accumulates diagnostics.
	Lenient
)

// maxLineBytes bounds a single record; mangled C++ names run long but
// not this long.
const maxLineBytes = 4 * 1024 * 1024

// Option configures a Scanner.
type Option func(*Scanner)

// WithPolicy sets the malformed-record policy.
func WithPolicy(p Policy) Option {
	return func(s *Scanner) { s.policy = p }
}

// WithMaxLines truncates the scan after n input lines. Zero means no
// limit. Useful for sampling the head of a very large stream.
func WithMaxLines(n int) Option {
	return func(s *Scanner) { s.maxLines = n }
}

// Scanner reads the record stream one line at a time. Use it like
// bufio.Scanner: call Scan until it returns false, reading each record
// with Record, then check Err.
type Scanner struct {
	sc       *bufio.Scanner
	policy   Policy
	maxLines int

	line    int
	rec     Record
	err     error
	diags   []Diagnostic
	skipped int
}

// NewScanner creates a Scanner over r.
func NewScanner(r io.Reader, opts ...Option) *Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	s := &Scanner{sc: sc}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan advances to the next record. It returns false at end of input,
// at the line limit, or on a fatal error (I/O, or a malformed record
// under the strict policy).
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	for {
		if s.maxLines > 0 && s.line >= s.maxLines {
			return false
		}
		if !s.sc.Scan() {
			if err := s.sc.Err(); err != nil {
				s.err = fmt.Errorf("reading record stream: %w", err)
			}
			return false
		}
		s.line++
		text := s.sc.Text()

		rec, ok, err := parseLine(text, s.line)
		if err != nil {
			if s.policy == Lenient {
				perr := err.(*ParseError)
				s.diags = append(s.diags, Diagnostic{Line: perr.Line, Text: perr.Text, Msg: perr.Msg})
				continue
			}
			s.err = err
			return false
		}
		if !ok {
			s.skipped++
			continue
		}
		s.rec = rec
		return true
	}
}

// Record returns the record produced by the last successful Scan.
func (s *Scanner) Record() Record {
	return s.rec
}

// Err returns the fatal error that stopped the scan, if any.
func (s *Scanner) Err() error {
	return s.err
}

// Diagnostics returns the malformed records skipped so far under the
// lenient policy.
func (s *Scanner) Diagnostics() []Diagnostic {
	return s.diags
}

// Lines returns the number of input lines consumed.
func (s *Scanner) Lines() int {
	return s.line
}

// Skipped returns the number of recognized-but-ignored records
// (field, indirect, tag, and virtual-method lines).
func (s *Scanner) Skipped() int {
	return s.skipped
}

// parseLine parses one line. ok is false for blank lines and record
// kinds the engine ignores.
func parseLine(text string, line int) (rec Record, ok bool, err error) {
	if text == "" {
		return Record{}, false, nil
	}

	switch text[0] {
	case '#':
		return parseFunction(text, line)
	case '=':
		return parseAlias(text, line)
	case 'D', 'R':
		return parseEdge(text, line)
	case 'F', 'I', 'T', 'V':
		return Record{}, false, nil
	default:
		return Record{}, false, &ParseError{Line: line, Text: text, Msg: "unrecognized record"}
	}
}

// parseFunction handles "#<id> <name>".
func parseFunction(text string, line int) (Record, bool, error) {
	body := text[1:]
	space := strings.IndexByte(body, ' ')
	if space <= 0 || space == len(body)-1 {
		return Record{}, false, &ParseError{Line: line, Text: text, Msg: "function record needs id and name"}
	}
	id, err := parseID(body[:space])
	if err != nil {
		return Record{}, false, &ParseError{Line: line, Text: text, Msg: "malformed function id"}
	}
	return Record{Kind: KindFunction, Line: line, ID: id, Name: body[space+1:]}, true, nil
}

// parseAlias handles "= <id> <name>".
func parseAlias(text string, line int) (Record, bool, error) {
	body := strings.TrimPrefix(text, "= ")
	if body == text {
		return Record{}, false, &ParseError{Line: line, Text: text, Msg: "alias record needs id and name"}
	}
	space := strings.IndexByte(body, ' ')
	if space <= 0 || space == len(body)-1 {
		return Record{}, false, &ParseError{Line: line, Text: text, Msg: "alias record needs id and name"}
	}
	id, err := parseID(body[:space])
	if err != nil {
		return Record{}, false, &ParseError{Line: line, Text: text, Msg: "malformed alias id"}
	}
	return Record{Kind: KindAlias, Line: line, ID: id, Name: body[space+1:]}, true, nil
}

// parseEdge handles "D <src> <dst>" and "R <src> <dst>", with the
// optional leading attribute field "/N" or "SUPPRESS_GC".
func parseEdge(text string, line int) (Record, bool, error) {
	fields := strings.Fields(text[1:])
	var attrs graph.EdgeAttrs

	if len(fields) > 0 {
		switch {
		case strings.HasPrefix(fields[0], "/"):
			raw, err := strconv.ParseUint(fields[0][1:], 10, 32)
			if err != nil {
				return Record{}, false, &ParseError{Line: line, Text: text, Msg: "malformed edge attribute"}
			}
			attrs = graph.EdgeAttrs(raw)
			fields = fields[1:]
		case fields[0] == "SUPPRESS_GC":
			attrs = graph.AttrSuppressGC
			fields = fields[1:]
		}
	}

	if len(fields) != 2 {
		return Record{}, false, &ParseError{Line: line, Text: text, Msg: "edge record needs caller and callee ids"}
	}
	caller, err := parseID(fields[0])
	if err != nil {
		return Record{}, false, &ParseError{Line: line, Text: text, Msg: "malformed caller id"}
	}
	callee, err := parseID(fields[1])
	if err != nil {
		return Record{}, false, &ParseError{Line: line, Text: text, Msg: "malformed callee id"}
	}
	return Record{Kind: KindEdge, Line: line, Caller: caller, Callee: callee, Attrs: attrs}, true, nil
}

func parseID(s string) (graph.NodeID, error) {
	raw, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return graph.NodeID(raw), nil
}
