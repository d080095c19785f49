package grafanarama

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	json "github.com/goccy/go-json"
)

// newTestClient builds a Client pointed at a test server.
func newTestClient(t *testing.T, ts *httptest.Server, opts ...ClientOption) *Client {
	t.Helper()

	u, err := url.Parse(ts.URL)
	if err != nil {
		t.Fatalf("parse test server URL: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("parse test server port: %v", err)
	}

	client, err := NewClient(append([]ClientOption{
		WithHost(u.Hostname()),
		WithPort(port),
	}, opts...)...)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func TestNewClient_Validation(t *testing.T) {
	tests := []struct {
		name string
		opt  ClientOption
	}{
		{"empty host", WithHost("")},
		{"port too low", WithPort(0)},
		{"port too high", WithPort(70000)},
		{"zero timeout", WithRequestTimeout(0)},
		{"nil logger", WithLogger(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewClient(tt.opt); err == nil {
				t.Error("NewClient() error = nil, want validation error")
			}
		})
	}
}

func TestClient_BaseURL(t *testing.T) {
	client, err := NewClient(WithHost("grafana.internal"), WithPort(8443), WithHTTPS(true))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	want := "https://grafana.internal:8443"
	if got := client.BaseURL(); got != want {
		t.Errorf("BaseURL() = %q, want %q", got, want)
	}
}

func TestClient_SendDashboard(t *testing.T) {
	var captured map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/dashboards/db" {
			t.Errorf("request = %s %s, want POST /api/dashboards/db", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Errorf("request body not JSON: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "success", "slug": "my-dashboard"}`))
	}))
	defer ts.Close()

	d, err := FromFields(map[string]any{"title": "My Dashboard", "tags": nil})
	if err != nil {
		t.Fatalf("FromFields() error = %v", err)
	}

	client := newTestClient(t, ts)
	ok, err := client.SendDashboard(context.Background(), d, true, "test deploy")
	if err != nil {
		t.Fatalf("SendDashboard() error = %v", err)
	}
	if !ok {
		t.Fatal("SendDashboard() = false, want true")
	}

	if captured["overwrite"] != true {
		t.Errorf("overwrite = %v, want true", captured["overwrite"])
	}
	if captured["message"] != "test deploy" {
		t.Errorf("message = %v, want 'test deploy'", captured["message"])
	}
	dash, ok := captured["dashboard"].(map[string]any)
	if !ok {
		t.Fatalf("dashboard = %v, want object", captured["dashboard"])
	}
	if dash["title"] != "My Dashboard" {
		t.Errorf("dashboard.title = %v, want My Dashboard", dash["title"])
	}
	// the wire form must carry the normalized arrays, never null
	if list, ok := dash["tags"].([]any); !ok || len(list) != 0 {
		t.Errorf("dashboard.tags = %v, want []", dash["tags"])
	}
	if _, ok := dash["metadata"]; ok {
		t.Error("dashboard payload contains metadata, want spec only")
	}
}

func TestClient_NonOKResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message": "Unauthorized"}`))
	}))
	defer ts.Close()

	d, err := FromFields(map[string]any{"title": "x"})
	if err != nil {
		t.Fatalf("FromFields() error = %v", err)
	}

	client := newTestClient(t, ts)
	ok, err := client.SendDashboard(context.Background(), d, false, "")
	if err != nil {
		t.Fatalf("SendDashboard() error = %v, want nil for HTTP-level failure", err)
	}
	if ok {
		t.Fatal("SendDashboard() = true, want false")
	}

	res := client.Results()
	if res == nil {
		t.Fatal("Results() = nil, want diagnostics")
	}
	if res.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", res.StatusCode)
	}
	if res.Message != "Unauthorized" {
		t.Errorf("Message = %q, want Unauthorized", res.Message)
	}
}

func TestClient_TransportError(t *testing.T) {
	// a closed server guarantees connection refused
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := newTestClient(t, ts)
	ts.Close()

	d, err := FromFields(map[string]any{"title": "x"})
	if err != nil {
		t.Fatalf("FromFields() error = %v", err)
	}

	if _, err := client.SendDashboard(context.Background(), d, false, ""); err == nil {
		t.Fatal("SendDashboard() error = nil, want transport error")
	}
}

func TestClient_AuthPrecedence(t *testing.T) {
	tests := []struct {
		name       string
		opts       []ClientOption
		wantAPIKey string
		wantAuth   string
	}{
		{
			name:       "api key only",
			opts:       []ClientOption{WithAPIKey("key-1")},
			wantAPIKey: "key-1",
		},
		{
			name:     "token only",
			opts:     []ClientOption{WithServiceAccountToken("tok-1")},
			wantAuth: "Bearer tok-1",
		},
		{
			name:       "api key wins over basic auth",
			opts:       []ClientOption{WithAPIKey("key-2"), WithBasicAuth("admin", "pass")},
			wantAPIKey: "key-2",
		},
		{
			name:       "whitespace stripped from key",
			opts:       []ClientOption{WithAPIKey("  key-3\n")},
			wantAPIKey: "key-3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotAPIKey, gotAuth string
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAPIKey = r.Header.Get("X-Grafana-API-Key")
				gotAuth = r.Header.Get("Authorization")
				_, _ = w.Write([]byte(`{}`))
			}))
			defer ts.Close()

			client := newTestClient(t, ts, tt.opts...)
			if _, err := client.Get(context.Background(), "/api/health"); err != nil {
				t.Fatalf("Get() error = %v", err)
			}

			if gotAPIKey != tt.wantAPIKey {
				t.Errorf("X-Grafana-API-Key = %q, want %q", gotAPIKey, tt.wantAPIKey)
			}
			if gotAuth != tt.wantAuth {
				t.Errorf("Authorization = %q, want %q", gotAuth, tt.wantAuth)
			}
		})
	}
}

func TestClient_BasicAuth(t *testing.T) {
	var user, pass string
	var hasAuth bool
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, hasAuth = r.BasicAuth()
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	client := newTestClient(t, ts, WithBasicAuth("admin", "secret"))
	if _, err := client.Get(context.Background(), "/api/health"); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if !hasAuth {
		t.Fatal("request carried no basic auth")
	}
	if user != "admin" || pass != "secret" {
		t.Errorf("basic auth = %s:%s, want admin:secret", user, pass)
	}
}

func TestClient_GetDashboard(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/dashboards/db/my-dash" {
			t.Errorf("path = %s, want /api/dashboards/db/my-dash", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"dashboard": {"title": "Fetched", "uid": "abc", "schemaVersion": 36},
			"meta": {"slug": "my-dash"}
		}`))
	}))
	defer ts.Close()

	client := newTestClient(t, ts)
	d, err := client.GetDashboard(context.Background(), "my-dash")
	if err != nil {
		t.Fatalf("GetDashboard() error = %v", err)
	}
	if d == nil {
		t.Fatal("GetDashboard() = nil, want dashboard")
	}
	if got := d.Spec().Title(); got != "Fetched" {
		t.Errorf("Title() = %q, want Fetched", got)
	}
	if got := d.Spec().SchemaVersion(); got != 36 {
		t.Errorf("SchemaVersion() = %d, want 36 (server value kept)", got)
	}
}

func TestClient_GetDashboard_NotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "Dashboard not found"}`))
	}))
	defer ts.Close()

	client := newTestClient(t, ts)
	d, err := client.GetDashboard(context.Background(), "absent")
	if err != nil {
		t.Fatalf("GetDashboard() error = %v, want nil", err)
	}
	if d != nil {
		t.Fatalf("GetDashboard() = %v, want nil", d)
	}
	if res := client.Results(); res == nil || res.StatusCode != http.StatusNotFound {
		t.Errorf("Results() = %+v, want 404 diagnostics", res)
	}
}

func TestClient_SendDatasource_Creates(t *testing.T) {
	var created bool
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/datasources/name/prom":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message": "Data source not found"}`))
		case r.Method == http.MethodPost && r.URL.Path == "/api/datasources":
			created = true
			_, _ = w.Write([]byte(`{"id": 5, "message": "Datasource added"}`))
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer ts.Close()

	client := newTestClient(t, ts)
	ok, err := client.SendDatasource(context.Background(), Datasource{
		Name: "prom",
		Type: "prometheus",
		URL:  "http://prometheus:9090",
	})
	if err != nil {
		t.Fatalf("SendDatasource() error = %v", err)
	}
	if !ok {
		t.Fatal("SendDatasource() = false, want true")
	}
	if !created {
		t.Error("no POST /api/datasources received, want create")
	}
}

func TestClient_SendDatasource_Updates(t *testing.T) {
	var updatedPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/datasources/name/prom":
			_, _ = w.Write([]byte(`{"id": 7, "name": "prom"}`))
		case r.Method == http.MethodPut:
			updatedPath = r.URL.Path
			_, _ = w.Write([]byte(`{"message": "Datasource updated"}`))
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer ts.Close()

	client := newTestClient(t, ts)
	ok, err := client.SendDatasource(context.Background(), Datasource{
		Name: "prom",
		Type: "prometheus",
		URL:  "http://prometheus:9090",
	})
	if err != nil {
		t.Fatalf("SendDatasource() error = %v", err)
	}
	if !ok {
		t.Fatal("SendDatasource() = false, want true")
	}
	if updatedPath != "/api/datasources/7" {
		t.Errorf("update path = %q, want /api/datasources/7", updatedPath)
	}
}

func TestClient_SendDatasource_RequiresName(t *testing.T) {
	client, err := NewClient()
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if _, err := client.SendDatasource(context.Background(), Datasource{Type: "prometheus"}); err == nil {
		t.Fatal("SendDatasource() error = nil, want validation error")
	}
}

func TestClient_Health(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			t.Errorf("path = %s, want /api/health", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"database": "ok"}`))
	}))
	defer ts.Close()

	client := newTestClient(t, ts)
	ok, err := client.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	if !ok {
		t.Error("Health() = false, want true")
	}
}

func TestClient_ContextCancellation(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	client := newTestClient(t, ts)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := client.Get(ctx, "/api/health"); err == nil {
		t.Fatal("Get() error = nil, want context deadline error")
	}
}
