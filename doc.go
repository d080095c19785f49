// Package grafanarama is a typed client library for building Grafana
// dashboard documents and publishing them over the HTTP API.
//
// The library models a dashboard as a structured document (metadata, spec,
// status), reconciles caller input into a canonical spec, and normalizes the
// spec against the server's JSON defaulting rules before transmission: null
// array fields become empty arrays, and a handful of fields the server
// requires (time range, timepicker, version, week start) are filled in when
// absent.
//
// # Quick Start
//
// Build a dashboard with functional options and send it:
//
//	d, err := grafanarama.NewDashboard(
//	    grafanarama.WithTitle("Hello"),
//	    grafanarama.WithUID(grafanarama.NewUID()),
//	    grafanarama.WithPanel(grafanarama.Panel{
//	        Type:    "text",
//	        ID:      1,
//	        Title:   "Hello from Go!",
//	        GridPos: grafanarama.GridPos{X: 0, Y: 0, W: 24, H: 8},
//	        Options: map[string]any{"mode": "markdown", "content": "# Hello"},
//	    }),
//	)
//	if err != nil {
//	    slog.Error("failed to build dashboard", "error", err)
//	    os.Exit(1)
//	}
//
//	client, _ := grafanarama.NewClient(
//	    grafanarama.WithHost("localhost"),
//	    grafanarama.WithAPIKey(os.Getenv("GRAFANA_API_KEY")),
//	)
//	ok, err := client.SendDashboard(context.Background(), d, true, "initial version")
//
// # Document Construction
//
// Dashboards can also be constructed from a raw field mapping, for example a
// payload fetched from the server. Fields may be supplied flat, nested under
// a "spec" key, or both; flat fields win on collision, and schemaVersion is
// defaulted when absent. See [FromFields].
//
// # Publishing
//
// The transmitted payload is exactly the spec content, flattened to the
// document root; the metadata and status envelope stays local. The
// conversion is explicit: [Dashboard.PublishedSpec] produces the wire form,
// and [Dashboard.MarshalJSON] serializes it.
//
// # Architecture
//
//   - root package: document model, merge, normalization, HTTP client
//   - schema: declared field-schema introspection (which fields are arrays)
//   - config: YAML configuration for the CLI
//   - cmd/grafanarama: push/validate/ping CLI
//
// The client issues single blocking calls with no retries and no shared
// state across documents; see [Client] for the concurrency contract.
package grafanarama
