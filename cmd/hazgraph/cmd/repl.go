package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/hazgraph/hazgraph/internal/engine"
	"github.com/hazgraph/hazgraph/internal/graph"
)

// routeRE parses "route from X to Y avoiding A, B, C" with the
// "from"/"to" keywords optional.
var routeRE = regexp.MustCompile(`^route (?:from )?(.*?) (?:to )?(.*?)(?: avoiding (.*))?$`)

const replHelp = `Commands:
  resolve <query>                walk a name, substring, /regex/, or #id to node ids
  callees <query>                direct callees of a function
  callers <query>                direct callers of a function
  names <query>                  every name recorded for a function
  stems <query>                  the simple-name stems a function is indexed under
  route [from] <a> [to] <b> [avoiding <c>, <d>]
                                 shortest call path from a to b
  #<id>                          show the function with that id
  stats                          graph summary
  help                           this text
  quit                           exit`

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactively query the call graph",
	Long: `Load the call graph once and issue queries interactively.

Loading a large graph dominates startup time, so the repl is the
comfortable way to poke at one: resolve names, walk callers and
callees, and search for hazard routes without reloading.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := loadEngine(cmd.Context())
		if err != nil {
			return err
		}
		return runREPL(cmd.Context(), eng)
	},
}

func runREPL(ctx context.Context, eng *engine.Engine) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">> ",
		HistoryFile:     historyPath(),
		InterruptPrompt: "^C",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err != nil {
			// EOF ends the session.
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !replDispatch(ctx, eng, rl.Stdout(), line) {
			return nil
		}
	}
}

// historyPath is where the repl keeps command history between
// sessions. Empty disables persistence.
func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".hazgraph_history")
}

// replDispatch runs one command line. It returns false when the user
// asked to quit.
func replDispatch(ctx context.Context, eng *engine.Engine, out io.Writer, line string) bool {
	words := strings.Fields(line)
	cmd, rest := words[0], strings.TrimSpace(strings.TrimPrefix(line, words[0]))

	switch cmd {
	case "quit", "exit":
		fmt.Fprintln(out, "Bye bye")
		return false

	case "help":
		fmt.Fprintln(out, replHelp)

	case "stats":
		stats, err := eng.Stats()
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			break
		}
		fmt.Fprintf(out, "%d nodes, %d edges, %d names\n", stats.NodeCount, stats.EdgeCount, stats.NameCount)

	case "resolve":
		if rest == "" {
			fmt.Fprintln(out, "Usage: resolve <query>")
			break
		}
		replResolve(eng, out, rest)

	case "callees", "callee":
		replAdjacency(eng, out, rest, (*engine.Engine).Callees)

	case "callers", "caller":
		replAdjacency(eng, out, rest, (*engine.Engine).Callers)

	case "names":
		id, ok := replResolveSingle(eng, out, rest)
		if !ok {
			break
		}
		names, err := eng.Names(id)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			break
		}
		for _, name := range names {
			fmt.Fprintln(out, name)
		}

	case "stems":
		id, ok := replResolveSingle(eng, out, rest)
		if !ok {
			break
		}
		names, err := eng.Names(id)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			break
		}
		seen := make(map[string]bool)
		for _, name := range names {
			s := graph.Stem(name)
			if !seen[s] {
				seen[s] = true
				fmt.Fprintln(out, s)
			}
		}

	case "route":
		replRoute(ctx, eng, out, line)

	default:
		if strings.HasPrefix(cmd, "#") {
			replResolve(eng, out, cmd)
		} else {
			fmt.Fprintf(out, "Unrecognized command '%s'\n", cmd)
		}
	}
	return true
}

func replResolve(eng *engine.Engine, out io.Writer, query string) {
	ids, err := eng.Resolve(query)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	if len(ids) == 0 {
		fmt.Fprintf(out, "Unable to resolve '%s'\n", query)
		return
	}
	for _, id := range ids {
		desc, err := eng.Describe(id, graph.Verbose)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		fmt.Fprintln(out, desc)
	}
}

func replResolveSingle(eng *engine.Engine, out io.Writer, query string) (graph.NodeID, bool) {
	if query == "" {
		fmt.Fprintln(out, "Usage: <command> <query>")
		return 0, false
	}
	ids, err := eng.Resolve(query)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return 0, false
	}
	switch len(ids) {
	case 0:
		fmt.Fprintf(out, "Unable to resolve '%s'\n", query)
		return 0, false
	case 1:
		return ids[0], true
	default:
		fmt.Fprintf(out, "Multiple matches for '%s'\n", query)
		return 0, false
	}
}

func replAdjacency(eng *engine.Engine, out io.Writer, query string, adjacent func(*engine.Engine, graph.NodeID) ([]graph.NodeID, error)) {
	id, ok := replResolveSingle(eng, out, query)
	if !ok {
		return
	}
	ids, err := adjacent(eng, id)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	for _, adj := range ids {
		desc, err := eng.Describe(adj, graph.Verbose)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		fmt.Fprintln(out, desc)
	}
}

func replRoute(ctx context.Context, eng *engine.Engine, out io.Writer, line string) {
	from, to, avoiding, ok := parseRouteLine(line)
	if !ok {
		fmt.Fprintln(out, "Invalid syntax. Usage: route from <func1> to <func2> avoiding <func>, <func>, <func>")
		return
	}

	src, okSrc := replResolveSingle(eng, out, from)
	if !okSrc {
		return
	}
	dst, okDst := replResolveSingle(eng, out, to)
	if !okDst {
		return
	}

	var avoid []graph.NodeID
	for _, q := range avoiding {
		id, ok := replResolveSingle(eng, out, q)
		if !ok {
			return
		}
		avoid = append(avoid, id)
	}

	path, err := eng.Route(ctx, src, []graph.NodeID{dst}, avoid)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	if len(path) == 0 {
		fmt.Fprintln(out, "No route found")
		return
	}
	fmt.Fprintf(out, "length %d route found:\n", len(path))
	for _, id := range path {
		desc, err := eng.Describe(id, graph.Normal)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return
		}
		fmt.Fprintln(out, desc)
	}
}

// parseRouteLine splits a repl route command into its from, to, and
// avoiding parts.
func parseRouteLine(line string) (from, to string, avoiding []string, ok bool) {
	m := routeRE.FindStringSubmatch(line)
	if m == nil || m[1] == "" || m[2] == "" {
		return "", "", nil, false
	}
	if m[3] != "" {
		for _, part := range strings.Split(m[3], ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				avoiding = append(avoiding, part)
			}
		}
	}
	return m[1], m[2], avoiding, true
}

func init() {
	rootCmd.AddCommand(replCmd)
}
