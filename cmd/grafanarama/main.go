// Package main is the entry point for the grafanarama CLI.
//
// The library can be used programmatically (SDK) or driven as a standalone
// binary with YAML configuration. This CLI provides the standalone approach.
//
// Usage:
//
//	grafanarama push -c config.yaml       # Push configured dashboards
//	grafanarama validate dashboard.json   # Validate a dashboard document
//	grafanarama ping -c config.yaml       # Check server liveness
//	grafanarama version                   # Show version info
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "grafanarama",
	Short: "Build and publish Grafana dashboards",
	Long: `grafanarama builds Grafana dashboard documents and publishes them
over the HTTP API.

Dashboard documents are JSON or YAML files holding the dashboard spec,
either flat (the server's shape) or wrapped in a spec/metadata/status
envelope. Before transmission the spec is normalized to the server's
defaulting rules: null arrays become empty arrays and required fields
are filled in.

Quick start:
  1. Create a config file (grafanarama.yaml) with server and credentials
  2. Run: grafanarama push -c grafanarama.yaml
  3. Open the dashboard in Grafana

Example config:
  host: localhost
  port: 3000
  api_key: ${GRAFANA_API_KEY}
  dashboards:
    - file: dashboards/overview.json
      overwrite: true`,
	// No Run/RunE means this just shows help when called without subcommands
}

// newLogger creates a JSON logger for CLI use.
func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this grafanarama binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("grafanarama %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	// Register subcommands with root
	rootCmd.AddCommand(versionCmd)
}
