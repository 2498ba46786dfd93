package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hazgraph/hazgraph/internal/engine"
	"github.com/hazgraph/hazgraph/internal/graph"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <query>",
	Short: "Resolve a function name or #id to call graph nodes",
	Long: `Resolve a query string to the matching call graph nodes.

The query may be a simple function name, a full signature, a substring,
a /regex/ against canonical names, or an id literal like #12345.
Multiple matches are normal for overloaded or duplicated names.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := loadEngine(cmd.Context())
		if err != nil {
			return err
		}

		ids, err := eng.Resolve(args[0])
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Printf("Unable to resolve '%s'\n", args[0])
			return nil
		}
		for _, id := range ids {
			desc, err := eng.Describe(id, graph.Verbose)
			if err != nil {
				return err
			}
			fmt.Println(desc)
		}
		return nil
	},
}

var calleesCmd = &cobra.Command{
	Use:   "callees <query>",
	Short: "List the direct callees of a function",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAdjacency(cmd.Context(), args[0], (*engine.Engine).Callees)
	},
}

var callersCmd = &cobra.Command{
	Use:   "callers <query>",
	Short: "List the direct callers of a function",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAdjacency(cmd.Context(), args[0], (*engine.Engine).Callers)
	},
}

var namesCmd = &cobra.Command{
	Use:   "names <query>",
	Short: "List every name recorded for a function",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := loadEngine(cmd.Context())
		if err != nil {
			return err
		}

		id, ok, err := resolveSingle(eng, args[0])
		if err != nil || !ok {
			return err
		}
		names, err := eng.Names(id)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

// runAdjacency resolves the query to one node and prints each adjacent
// node at verbose brevity.
func runAdjacency(ctx context.Context, query string, adjacent func(*engine.Engine, graph.NodeID) ([]graph.NodeID, error)) error {
	eng, err := loadEngine(ctx)
	if err != nil {
		return err
	}

	id, ok, err := resolveSingle(eng, query)
	if err != nil || !ok {
		return err
	}
	ids, err := adjacent(eng, id)
	if err != nil {
		return err
	}
	for _, adj := range ids {
		desc, err := eng.Describe(adj, graph.Verbose)
		if err != nil {
			return err
		}
		fmt.Println(desc)
	}
	return nil
}

// resolveSingle resolves a query that must name exactly one node.
// Ambiguity and no-match are reported to the user, not returned as
// errors, so a command can stop quietly.
func resolveSingle(eng *engine.Engine, query string) (graph.NodeID, bool, error) {
	ids, err := eng.Resolve(query)
	if err != nil {
		return 0, false, err
	}
	switch len(ids) {
	case 0:
		fmt.Printf("Unable to resolve '%s'\n", query)
		return 0, false, nil
	case 1:
		return ids[0], true, nil
	default:
		fmt.Printf("Multiple matches for '%s':\n", query)
		for _, id := range ids {
			desc, err := eng.Describe(id, graph.Normal)
			if err != nil {
				return 0, false, err
			}
			fmt.Println(desc)
		}
		return 0, false, nil
	}
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(calleesCmd)
	rootCmd.AddCommand(callersCmd)
	rootCmd.AddCommand(namesCmd)
}
