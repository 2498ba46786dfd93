package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize a loaded call graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := loadEngine(cmd.Context())
		if err != nil {
			return err
		}

		stats, err := eng.Stats()
		if err != nil {
			return err
		}

		fmt.Printf("Nodes:    %d\n", stats.NodeCount)
		fmt.Printf("Edges:    %d\n", stats.EdgeCount)
		fmt.Printf("Names:    %d\n", stats.NameCount)
		fmt.Printf("Lines:    %d (%d records skipped)\n", stats.LineCount, stats.Skipped)
		fmt.Printf("Load:     %s\n", stats.LoadTime.Round(time.Millisecond))
		if diags := eng.Diagnostics(); len(diags) > 0 {
			fmt.Printf("Warnings: %d malformed records skipped\n", len(diags))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
