// ABOUTME: The serve subcommand: runs the HTTP audit API.
// ABOUTME: Port comes from config unless overridden on the command line.

package main

import (
	"github.com/spf13/cobra"

	"github.com/arcqubit/pqcaudit/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the audit HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		port := cfg.Server.Port
		if servePort != 0 {
			port = servePort
		}

		srv, err := server.New(logger)
		if err != nil {
			return err
		}
		return srv.ListenAndServe(port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (default from config)")
	rootCmd.AddCommand(serveCmd)
}
