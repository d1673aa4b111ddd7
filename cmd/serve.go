package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/timvw/panefit/internal/analyzer"
	"github.com/timvw/panefit/internal/mcp"
	"github.com/timvw/panefit/internal/mux"
)

var flagServePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server",
	Long: `Run a Model Context Protocol server exposing the analysis and layout
tools (panefit_analyze, panefit_calculate_layout, panefit_reflow,
panefit_get_strategies).

By default requests are read from stdin and answered on stdout, one
JSON-RPC message per line. With --port an HTTP server is started on
localhost instead, accepting one JSON-RPC message per POST body.

A multiplexer is not required: tools that receive pane content in
their arguments work without one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// The adapter is optional here. When detection fails the server
		// probes again lazily, so a later tmux start is picked up.
		var adapter mux.Adapter
		if a, err := getAdapter(); err == nil {
			adapter = a
		}

		server := mcp.NewServer(analyzer.New(), adapter, Version)

		if flagServePort > 0 {
			fmt.Fprintf(os.Stderr, "mcp: listening on localhost:%d\n", flagServePort)
			return server.ListenAndServe(ctx, flagServePort)
		}
		return server.ServeStdio(ctx, os.Stdin, os.Stdout)
	},
}

func init() {
	serveCmd.Flags().IntVar(&flagServePort, "port", 0, "serve JSON-RPC over HTTP on this localhost port (default: stdio)")
	rootCmd.AddCommand(serveCmd)
}
