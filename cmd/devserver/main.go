package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "devserver",
		Short: "Local development server with live reload",
		Long: `devserver serves a static-site build output directory over HTTP
and pushes live-reload notifications to connected browsers when the
output changes.

Features:
  • Trailing-slash canonical URL resolution
  • Reload-client script injection into served HTML
  • Automatic port retry when the starting port is taken
  • WebSocket reload channel (status, error, reload events)`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}
