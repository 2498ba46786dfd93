package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazgraph/hazgraph/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve call graph queries over HTTP",
	Long: `Load the call graph once and serve read-only queries over a
JSON HTTP API:

  GET /api/health
  GET /api/stats
  GET /api/resolve?q=<name or #id>
  GET /api/node/<id>
  GET /api/node/<id>/callees
  GET /api/node/<id>/callers
  GET /api/route?from=<id>&to=<id,...>&avoid=<id,...>&avoid_attrs=<n>`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := loadEngine(cmd.Context())
		if err != nil {
			return err
		}

		port := servePort
		if !cmd.Flags().Changed("port") && cfg.Server.Port != 0 {
			port = cfg.Server.Port
		}
		timeout, err := cfg.RouteTimeout()
		if err != nil {
			return err
		}

		stats, err := eng.Stats()
		if err != nil {
			return err
		}
		fmt.Printf("Loaded %d nodes, %d edges in %s\n",
			stats.NodeCount, stats.EdgeCount, stats.LoadTime.Round(time.Millisecond))

		srv, err := server.New(server.Config{
			Port:         port,
			RouteTimeout: timeout,
			AvoidAttrs:   cfg.RouteAvoidAttrs(),
		}, eng)
		if err != nil {
			return err
		}
		return srv.Start()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "port to serve on (default from config)")
}
