package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/esalituro/grafanarama"
)

func TestBuildClient_FromConfig(t *testing.T) {
	cfg := &Config{
		Host:           "grafana.example.com",
		Port:           443,
		HTTPS:          true,
		APIKey:         "secret",
		RequestTimeout: Duration(30 * time.Second),
	}

	client, err := BuildClient(cfg)
	if err != nil {
		t.Fatalf("BuildClient() error = %v", err)
	}

	want := "https://grafana.example.com:443"
	if got := client.BaseURL(); got != want {
		t.Errorf("BaseURL() = %q, want %q", got, want)
	}
}

func TestBuildClient_ExtraOptionsOverride(t *testing.T) {
	cfg := &Config{Host: "localhost", Port: 3000}

	client, err := BuildClient(cfg, grafanarama.WithPort(9090))
	if err != nil {
		t.Fatalf("BuildClient() error = %v", err)
	}

	want := "http://localhost:9090"
	if got := client.BaseURL(); got != want {
		t.Errorf("BaseURL() = %q, want %q", got, want)
	}
}

func TestLoadDashboard_JSON(t *testing.T) {
	path := writeTempFile(t, "dash.json", `{
		"title": "From JSON",
		"spec": {"title": "shadowed", "tags": ["a"]}
	}`)

	d, err := LoadDashboard(path)
	if err != nil {
		t.Fatalf("LoadDashboard() error = %v", err)
	}

	// flat title wins over the nested spec title
	if got := d.Spec().Title(); got != "From JSON" {
		t.Errorf("Title() = %q, want 'From JSON'", got)
	}
	if tags := d.Spec().Tags(); len(tags) != 1 || tags[0] != "a" {
		t.Errorf("Tags() = %v, want [a]", tags)
	}
}

func TestLoadDashboard_YAML(t *testing.T) {
	path := writeTempFile(t, "dash.yaml", `
metadata:
  uid: yaml-dash
spec:
  title: From YAML
  time:
    from: now-1h
    to: now
`)

	d, err := LoadDashboard(path)
	if err != nil {
		t.Fatalf("LoadDashboard() error = %v", err)
	}

	if got := d.Spec().Title(); got != "From YAML" {
		t.Errorf("Title() = %q, want 'From YAML'", got)
	}
	md, ok := d.Metadata()
	if !ok {
		t.Fatal("Metadata() ok = false, want true")
	}
	if md.UID != "yaml-dash" {
		t.Errorf("Metadata UID = %q, want yaml-dash", md.UID)
	}
	tr := d.Spec().Time()
	if tr == nil || tr.From != "now-1h" {
		t.Errorf("Time() = %+v, want from now-1h", tr)
	}
}

func TestLoadDashboard_MissingFile(t *testing.T) {
	_, err := LoadDashboard(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Fatal("LoadDashboard() error = nil, want read error")
	}
}

func TestLoadDashboard_BadJSON(t *testing.T) {
	path := writeTempFile(t, "bad.json", `{"title": `)
	if _, err := LoadDashboard(path); err == nil {
		t.Fatal("LoadDashboard() error = nil, want parse error")
	}
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
