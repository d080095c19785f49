// Demo: build a dashboard with a text panel and publish it to a mock
// Grafana server, then fetch it back.
//
// Run with:
//
//	go run ./example
//
// Set GRAFANA_HOST / GRAFANA_PORT / GRAFANA_API_KEY to target a real server
// instead of the bundled mock.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/esalituro/grafanarama"
	"github.com/esalituro/grafanarama/example/mockgrafana"
)

const demoAPIKey = "demo-key"

func main() {
	host := envOr("GRAFANA_HOST", "localhost")
	port, _ := strconv.Atoi(envOr("GRAFANA_PORT", "3999"))
	apiKey := envOr("GRAFANA_API_KEY", demoAPIKey)

	// no real server configured: start the bundled mock
	if os.Getenv("GRAFANA_HOST") == "" {
		go mockgrafana.Start(fmt.Sprintf(":%d", port), apiKey)
		time.Sleep(100 * time.Millisecond)
	}

	panel := grafanarama.Panel{
		Type:    "text",
		ID:      1,
		Title:   "Hello from Go!",
		GridPos: grafanarama.GridPos{X: 0, Y: 0, W: 24, H: 8},
		Options: map[string]any{
			"mode":    "markdown",
			"content": "# Hello World!\n\nThis dashboard was created programmatically.",
		},
	}

	d, err := grafanarama.NewDashboard(
		grafanarama.WithTitle("Simple Dashboard"),
		grafanarama.WithUID(grafanarama.NewUID()),
		grafanarama.WithTags("demo", "generated"),
		grafanarama.WithPanel(panel),
	)
	if err != nil {
		slog.Error("failed to build dashboard", "error", err)
		os.Exit(1)
	}

	client, err := grafanarama.NewClient(
		grafanarama.WithHost(host),
		grafanarama.WithPort(port),
		grafanarama.WithAPIKey(apiKey),
	)
	if err != nil {
		slog.Error("failed to create client", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	fmt.Println("Sending dashboard to", client.BaseURL(), "...")
	ok, err := client.SendDashboard(ctx, d, true, "created by example")
	if err != nil {
		slog.Error("send failed", "error", err)
		os.Exit(1)
	}
	if !ok {
		res := client.Results()
		slog.Error("dashboard rejected", "status", res.StatusCode, "message", res.Message)
		os.Exit(1)
	}
	fmt.Println("✓ Dashboard created successfully")

	fetched, err := client.GetDashboard(ctx, "simple-dashboard")
	if err != nil {
		slog.Error("fetch failed", "error", err)
		os.Exit(1)
	}
	if fetched == nil {
		slog.Error("dashboard not found after send")
		os.Exit(1)
	}
	fmt.Printf("✓ Fetched back: title=%q uid=%s panels=%d\n",
		fetched.Spec().Title(), fetched.Spec().UID(), len(fetched.Spec().Panels()))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
