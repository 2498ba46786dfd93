package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hazgraph/hazgraph/internal/config"
	"github.com/hazgraph/hazgraph/internal/engine"
)

var (
	cfgFile   string
	graphFile string
	cfg       *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "hazgraph",
	Short: "hazgraph - query static call graphs for hazard paths",
	Long: `hazgraph loads the call graph emitted by whole-program static
analysis and answers reachability and identity queries against it:
resolve names to function ids, list callers and callees, and find call
paths that reach a target while avoiding forbidden functions.

Its motivating use is hazard auditing: "can execution reach function X
from function Y without passing through Z", e.g. whether a
GC-triggering call is reachable from code holding an unrooted value.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./hazgraph.yaml)")
	rootCmd.PersistentFlags().StringVarP(&graphFile, "graph", "g", "", "call graph record stream (callgraph.txt)")
}

// loadEngine builds a Ready engine from the --graph file, reporting
// lenient-mode diagnostics to stderr.
func loadEngine(ctx context.Context) (*engine.Engine, error) {
	if graphFile == "" {
		return nil, fmt.Errorf("no call graph file: use --graph")
	}

	opts, err := cfg.ParserOptions()
	if err != nil {
		return nil, err
	}

	eng := engine.New()
	diags, err := eng.LoadFile(ctx, graphFile, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", graphFile, err)
	}
	for _, d := range diags {
		fmt.Printf("warning: skipped line %d: %s: %q\n", d.Line, d.Msg, d.Text)
	}
	return eng, nil
}
