package main

import (
	"github.com/spf13/cobra"
	"honours/internal/serve"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the site from .tmp and client with live reload",
	Long: `Prepares .tmp (data, styles, templates, scripts) and serves it.

Edits under client/ recompile the affected step and reload the browser.
Compile errors are shown in the page instead of stopping the server.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := serve.New(cfg, logger)
		s.Steps().Offline = offline
		return s.ListenAndServe(cmd.Context(), cfg.Serve.Addr)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&offline, "offline", false, "reuse the existing data file instead of downloading it")
}
