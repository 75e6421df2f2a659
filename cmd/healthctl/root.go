package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
)

const defaultEngineURL = "http://localhost:2112"

type rootOptions struct {
	url     string
	timeout time.Duration
}

func (o *rootOptions) client() *engineClient {
	return newEngineClient(o.url, o.timeout)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "healthctl",
		Short: "Inspect and operate a running docrouter health engine",
		Long: `healthctl queries the health engine over HTTP.

Examples:
  healthctl status
  healthctl snapshot --out snapshot.json
  healthctl record --duration 250ms --format PDF --intent Invoice
  healthctl metrics`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultURL := os.Getenv("DOCROUTER_HEALTH_URL")
	if defaultURL == "" {
		defaultURL = defaultEngineURL
	}
	rootCmd.PersistentFlags().StringVar(&opts.url, "url", defaultURL, "Base URL of the engine HTTP server")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(
		newStatusCmd(opts),
		newSnapshotCmd(opts),
		newMetricsCmd(opts),
		newRecordCmd(opts),
		newResetCmd(opts),
		newExportCmd(opts),
	)
	return rootCmd
}
