// Standalone mock Grafana server for testing the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	go run ./cmd/grafanarama push -c example/config.yaml
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/esalituro/grafanarama/example/mockgrafana"
)

func main() {
	addr := ":3000"
	if v := os.Getenv("MOCK_ADDR"); v != "" {
		addr = v
	}
	apiKey := "demo-key"
	if v := os.Getenv("MOCK_API_KEY"); v != "" {
		apiKey = v
	}

	fmt.Println("Mock Grafana API starting on", addr)
	fmt.Println("API key:", apiKey)
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	if err := http.ListenAndServe(addr, mockgrafana.NewHandler(apiKey)); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
