package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/esalituro/grafanarama"
	"github.com/esalituro/grafanarama/config"
)

// pingCmd checks server liveness and credential validity.
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check server liveness and credentials",
	Long: `Check that the Grafana server is reachable and the configured
credentials are accepted.

Two checks are performed: the unauthenticated health endpoint (liveness)
and the datasources endpoint (which requires auth).

Exit codes:
  0 - Server reachable and credentials accepted
  1 - Server unreachable or credentials rejected

Example:
  grafanarama ping -c config.yaml`,
	RunE: runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)

	pingCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = pingCmd.MarkFlagRequired("config")
}

func runPing(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	client, err := config.BuildClient(cfg, grafanarama.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	ctx := context.Background()

	alive, err := client.Health(ctx)
	if err != nil {
		return fmt.Errorf("server unreachable: %w", err)
	}
	if !alive {
		return fmt.Errorf("health check failed: %s", statusOf(client.Results()))
	}
	logger.Info("server alive", "server", client.BaseURL())

	// the datasource list requires valid credentials
	if _, err := client.Datasources(ctx); err != nil {
		return fmt.Errorf("auth check failed: %w", err)
	}
	if res := client.Results(); res != nil && res.StatusCode != 200 {
		return fmt.Errorf("credentials rejected: %s", statusOf(res))
	}
	logger.Info("credentials accepted")

	return nil
}

func statusOf(res *grafanarama.APIResponse) string {
	if res == nil {
		return "no response"
	}
	if res.Message != "" {
		return fmt.Sprintf("HTTP %d: %s", res.StatusCode, res.Message)
	}
	return fmt.Sprintf("HTTP %d", res.StatusCode)
}
