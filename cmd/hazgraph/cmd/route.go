package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazgraph/hazgraph/internal/engine"
	"github.com/hazgraph/hazgraph/internal/graph"
)

var (
	routeAvoid      []string
	routeAvoidAttrs uint32
	routeTimeout    time.Duration
)

var routeCmd = &cobra.Command{
	Use:   "route <from> <to>",
	Short: "Find the shortest call path between two functions",
	Long: `Find the shortest call path from one function to another.

Both endpoints and any --avoid entries are resolve queries (names,
substrings, /regexes/, or #id literals). A query resolving to several
nodes must be disambiguated first; targets given as --avoid are never
entered by the path.

An empty result means the target is unreachable under the constraints,
which is an answer, not an error.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := loadEngine(cmd.Context())
		if err != nil {
			return err
		}

		src, ok, err := resolveSingle(eng, args[0])
		if err != nil || !ok {
			return err
		}
		dst, err := eng.Resolve(args[1])
		if err != nil {
			return err
		}
		if len(dst) == 0 {
			fmt.Printf("Unable to resolve '%s'\n", args[1])
			return nil
		}

		var avoid []graph.NodeID
		for _, q := range routeAvoid {
			id, ok, err := resolveSingle(eng, q)
			if err != nil || !ok {
				return err
			}
			avoid = append(avoid, id)
		}

		avoidAttrs := graph.EdgeAttrs(routeAvoidAttrs)
		if !cmd.Flags().Changed("avoid-attrs") {
			avoidAttrs = cfg.RouteAvoidAttrs()
		}
		var opts []graph.RouteOption
		if avoidAttrs != 0 {
			opts = append(opts, graph.WithAvoidAttrs(avoidAttrs))
		}

		ctx := cmd.Context()
		timeout := routeTimeout
		if !cmd.Flags().Changed("timeout") {
			timeout, err = cfg.RouteTimeout()
			if err != nil {
				return err
			}
		}
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		path, err := eng.Route(ctx, src, dst, avoid, opts...)
		if err != nil {
			return err
		}
		if len(path) == 0 {
			fmt.Println("No route found")
			return nil
		}

		fmt.Printf("length %d route found:\n", len(path))
		return printPath(eng, path)
	},
}

func printPath(eng *engine.Engine, path []graph.NodeID) error {
	for _, id := range path {
		desc, err := eng.Describe(id, graph.Normal)
		if err != nil {
			return err
		}
		fmt.Println(desc)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(routeCmd)
	routeCmd.Flags().StringSliceVar(&routeAvoid, "avoid", nil, "functions the path must not touch (repeatable)")
	routeCmd.Flags().Uint32Var(&routeAvoidAttrs, "avoid-attrs", 0, "edge attribute mask to avoid (1 = GC-suppressed calls)")
	routeCmd.Flags().DurationVar(&routeTimeout, "timeout", 0, "abort the search after this long (default from config)")
}
