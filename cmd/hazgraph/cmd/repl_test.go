package cmd

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/hazgraph/hazgraph/internal/engine"
)

func TestParseRouteLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		from     string
		to       string
		avoiding []string
		ok       bool
	}{
		{
			name: "full form",
			line: "route from RunScript to collect",
			from: "RunScript",
			to:   "collect",
			ok:   true,
		},
		{
			name: "bare form",
			line: "route RunScript collect",
			from: "RunScript",
			to:   "collect",
			ok:   true,
		},
		{
			name:     "with avoiding",
			line:     "route from RunScript to collect avoiding Suppress, NoGC",
			from:     "RunScript",
			to:       "collect",
			avoiding: []string{"Suppress", "NoGC"},
			ok:       true,
		},
		{
			name:     "single avoided",
			line:     "route a b avoiding c",
			from:     "a",
			to:       "b",
			avoiding: []string{"c"},
			ok:       true,
		},
		{
			name: "id literals",
			line: "route from #20 to #10",
			from: "#20",
			to:   "#10",
			ok:   true,
		},
		{
			name: "missing target",
			line: "route RunScript",
			ok:   false,
		},
		{
			name: "not a route",
			line: "resolve collect",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to, avoiding, ok := parseRouteLine(tt.line)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if from != tt.from || to != tt.to {
				t.Errorf("from, to = %q, %q, want %q, %q", from, to, tt.from, tt.to)
			}
			if !reflect.DeepEqual(avoiding, tt.avoiding) {
				t.Errorf("avoiding = %v, want %v", avoiding, tt.avoiding)
			}
		})
	}
}

func TestReplDispatch(t *testing.T) {
	eng := engine.New()
	input := "#10 collect()\n#20 RunScript()\nD 20 10\n"
	if _, err := eng.Load(context.Background(), strings.NewReader(input)); err != nil {
		t.Fatalf("loading graph: %v", err)
	}
	ctx := context.Background()

	t.Run("resolve", func(t *testing.T) {
		var out bytes.Buffer
		if !replDispatch(ctx, eng, &out, "resolve collect") {
			t.Fatal("dispatch asked to quit")
		}
		if !strings.Contains(out.String(), "#10") {
			t.Errorf("output %q does not mention #10", out.String())
		}
	})

	t.Run("unresolvable", func(t *testing.T) {
		var out bytes.Buffer
		replDispatch(ctx, eng, &out, "resolve nothing_here")
		if !strings.Contains(out.String(), "Unable to resolve") {
			t.Errorf("output %q", out.String())
		}
	})

	t.Run("route found", func(t *testing.T) {
		var out bytes.Buffer
		replDispatch(ctx, eng, &out, "route from RunScript to collect")
		if !strings.Contains(out.String(), "length 2 route found:") {
			t.Errorf("output %q", out.String())
		}
	})

	t.Run("no route", func(t *testing.T) {
		var out bytes.Buffer
		replDispatch(ctx, eng, &out, "route from collect to RunScript")
		if !strings.Contains(out.String(), "No route found") {
			t.Errorf("output %q", out.String())
		}
	})

	t.Run("stems", func(t *testing.T) {
		var out bytes.Buffer
		replDispatch(ctx, eng, &out, "stems collect")
		if out.String() != "collect\n" {
			t.Errorf("output %q, want collect", out.String())
		}
	})

	t.Run("id literal lookup", func(t *testing.T) {
		var out bytes.Buffer
		replDispatch(ctx, eng, &out, "#20")
		if !strings.Contains(out.String(), "RunScript") {
			t.Errorf("output %q", out.String())
		}
	})

	t.Run("unknown command", func(t *testing.T) {
		var out bytes.Buffer
		replDispatch(ctx, eng, &out, "frobnicate")
		if !strings.Contains(out.String(), "Unrecognized command") {
			t.Errorf("output %q", out.String())
		}
	})

	t.Run("quit", func(t *testing.T) {
		var out bytes.Buffer
		if replDispatch(ctx, eng, &out, "quit") {
			t.Error("quit should return false")
		}
	})
}
