package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/esalituro/grafanarama"
	"github.com/esalituro/grafanarama/config"
)

// pushCmd publishes the configured dashboards to the server.
var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push dashboards to the server",
	Long: `Push the dashboards listed in the config file to the Grafana server.

Each dashboard file is loaded, normalized, and sent via the dashboards
API. A dashboard's overwrite and message settings come from its config
entry.

Exit codes:
  0 - All dashboards pushed successfully
  1 - At least one push failed (details printed to stderr)

Example:
  grafanarama push -c config.yaml
  grafanarama push --config /etc/grafanarama/config.yaml`,
	RunE: runPush,
}

func init() {
	rootCmd.AddCommand(pushCmd)

	pushCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = pushCmd.MarkFlagRequired("config")
}

func runPush(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if len(cfg.Dashboards) == 0 {
		return fmt.Errorf("no dashboards configured")
	}

	client, err := config.BuildClient(cfg, grafanarama.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	logger.Info("pushing dashboards",
		"server", client.BaseURL(),
		"count", len(cfg.Dashboards),
	)

	ctx := context.Background()
	failed := 0
	for _, entry := range cfg.Dashboards {
		d, err := config.LoadDashboard(entry.File)
		if err != nil {
			return err
		}

		ok, err := client.SendDashboard(ctx, d, entry.Overwrite, entry.Message)
		if err != nil {
			return fmt.Errorf("%s: %w", entry.File, err)
		}
		if !ok {
			failed++
			status := 0
			if res := client.Results(); res != nil {
				status = res.StatusCode
			}
			logger.Error("push rejected",
				"file", entry.File,
				"title", d.Spec().Title(),
				"status", status,
			)
			continue
		}
		logger.Info("pushed", "file", entry.File, "title", d.Spec().Title())
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d dashboards failed", failed, len(cfg.Dashboards))
	}
	return nil
}
