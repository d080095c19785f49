// Package mockgrafana is a minimal in-memory Grafana API used by the example
// program and the standalone mock server. It covers health, dashboards, and
// datasources. Enough surface for the client's round trip, nothing more.
package mockgrafana

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
)

type mockGrafana struct {
	apiKey string

	mu          sync.Mutex
	dashboards  map[string]map[string]any // slug -> published spec
	datasources map[string]int64          // name -> id
	nextID      int64
}

// NewHandler returns an http.Handler implementing the mock API.
// Requests other than the health check must carry apiKey in the
// X-Grafana-API-Key header.
func NewHandler(apiKey string) http.Handler {
	g := &mockGrafana{
		apiKey:      apiKey,
		dashboards:  make(map[string]map[string]any),
		datasources: make(map[string]int64),
		nextID:      1,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", g.handleHealth)
	mux.HandleFunc("/api/dashboards/db", g.authed(g.handleSendDashboard))
	mux.HandleFunc("/api/dashboards/db/", g.authed(g.handleGetDashboard))
	mux.HandleFunc("/api/datasources", g.authed(g.handleDatasources))
	mux.HandleFunc("/api/datasources/", g.authed(g.handleDatasourceByPath))
	return mux
}

// Start runs the mock API on addr. Call in a goroutine before
// creating the client.
func Start(addr, apiKey string) {
	if err := http.ListenAndServe(addr, NewHandler(apiKey)); err != nil {
		slog.Error("mock server error", "error", err)
	}
}

func (g *mockGrafana) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Grafana-API-Key") != g.apiKey {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Unauthorized"})
			return
		}
		next(w, r)
	}
}

func (g *mockGrafana) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"database": "ok", "version": "11.0.0"})
}

func (g *mockGrafana) handleSendDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var envelope struct {
		Dashboard map[string]any `json:"dashboard"`
		Overwrite bool           `json:"overwrite"`
		Message   string         `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "bad request: " + err.Error()})
		return
	}

	title, _ := envelope.Dashboard["title"].(string)
	if title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Dashboard title cannot be empty"})
		return
	}

	// the real server rejects null where it expects arrays
	for _, field := range []string{"tags", "panels", "links"} {
		if v, ok := envelope.Dashboard[field]; ok && v == nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"message": fmt.Sprintf("invalid dashboard: %s must not be null", field),
			})
			return
		}
	}

	slug := slugify(title)

	g.mu.Lock()
	_, exists := g.dashboards[slug]
	if exists && !envelope.Overwrite {
		g.mu.Unlock()
		writeJSON(w, http.StatusPreconditionFailed, map[string]any{
			"message": "A dashboard with the same name already exists",
		})
		return
	}
	g.dashboards[slug] = envelope.Dashboard
	g.mu.Unlock()

	slog.Info("dashboard stored", "slug", slug, "overwrite", envelope.Overwrite, "message", envelope.Message)
	writeJSON(w, http.StatusOK, map[string]any{"slug": slug, "status": "success", "version": 1})
}

func (g *mockGrafana) handleGetDashboard(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimPrefix(r.URL.Path, "/api/dashboards/db/")

	g.mu.Lock()
	dashboard, ok := g.dashboards[slug]
	g.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Dashboard not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"dashboard": dashboard,
		"meta":      map[string]any{"slug": slug},
	})
}

func (g *mockGrafana) handleDatasources(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		g.mu.Lock()
		list := make([]map[string]any, 0, len(g.datasources))
		for name, id := range g.datasources {
			list = append(list, map[string]any{"id": id, "name": name})
		}
		g.mu.Unlock()
		writeJSON(w, http.StatusOK, list)

	case http.MethodPost:
		ds, ok := decodeDatasource(w, r)
		if !ok {
			return
		}
		name := ds["name"].(string)

		g.mu.Lock()
		id := g.nextID
		g.nextID++
		g.datasources[name] = id
		g.mu.Unlock()

		writeJSON(w, http.StatusOK, map[string]any{"id": id, "name": name, "message": "Datasource added"})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (g *mockGrafana) handleDatasourceByPath(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/datasources/")

	if name, ok := strings.CutPrefix(rest, "name/"); ok {
		g.mu.Lock()
		id, found := g.datasources[name]
		g.mu.Unlock()
		if !found {
			writeJSON(w, http.StatusNotFound, map[string]any{"message": "Data source not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": id, "name": name})
		return
	}

	// /api/datasources/{id}
	switch r.Method {
	case http.MethodPut:
		if _, ok := decodeDatasource(w, r); !ok {
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "Datasource updated"})
	case http.MethodDelete:
		writeJSON(w, http.StatusOK, map[string]any{"message": "Data source deleted"})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func decodeDatasource(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var ds map[string]any
	if err := json.NewDecoder(r.Body).Decode(&ds); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "bad request: " + err.Error()})
		return nil, false
	}
	if name, _ := ds["name"].(string); name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "datasource name is required"})
		return nil, false
	}
	return ds, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// slugify mirrors the server's slug scheme closely enough for the demo.
func slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	return strings.ReplaceAll(slug, " ", "-")
}
