package config

import (
	"strings"
	"testing"
	"time"
)

func TestParse_MinimalConfig(t *testing.T) {
	yaml := `
api_key: secret
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	// check defaults applied
	if cfg.Host != "localhost" {
		t.Errorf("Host = %q, want localhost", cfg.Host)
	}
	if cfg.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Port)
	}
	if cfg.RequestTimeout.Duration() != 60*time.Second {
		t.Errorf("RequestTimeout = %v, want 60s", cfg.RequestTimeout.Duration())
	}
}

func TestParse_FullConfig(t *testing.T) {
	yaml := `
host: grafana.example.com
port: 443
https: true
service_account_token: glsa_token123
request_timeout: 30s

dashboards:
  - file: dashboards/overview.json
    overwrite: true
    message: deployed by CI
  - file: dashboards/errors.yaml
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Host != "grafana.example.com" {
		t.Errorf("Host = %q, want grafana.example.com", cfg.Host)
	}
	if cfg.Port != 443 {
		t.Errorf("Port = %d, want 443", cfg.Port)
	}
	if !cfg.HTTPS {
		t.Error("HTTPS = false, want true")
	}
	if cfg.ServiceAccountToken != "glsa_token123" {
		t.Errorf("ServiceAccountToken = %q, want glsa_token123", cfg.ServiceAccountToken)
	}
	if cfg.RequestTimeout.Duration() != 30*time.Second {
		t.Errorf("RequestTimeout = %v, want 30s", cfg.RequestTimeout.Duration())
	}

	if len(cfg.Dashboards) != 2 {
		t.Fatalf("len(Dashboards) = %d, want 2", len(cfg.Dashboards))
	}
	first := cfg.Dashboards[0]
	if first.File != "dashboards/overview.json" {
		t.Errorf("File = %q, want dashboards/overview.json", first.File)
	}
	if !first.Overwrite {
		t.Error("Overwrite = false, want true")
	}
	if first.Message != "deployed by CI" {
		t.Errorf("Message = %q, want 'deployed by CI'", first.Message)
	}
	if cfg.Dashboards[1].Overwrite {
		t.Error("Dashboards[1].Overwrite = true, want false")
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("host: [unclosed"))
	if err == nil {
		t.Fatal("Parse() error = nil, want parse error")
	}
	if !strings.Contains(err.Error(), "failed to parse YAML") {
		t.Errorf("error = %v, want mention of YAML parse failure", err)
	}
}

func TestParse_InvalidPort(t *testing.T) {
	_, err := Parse([]byte("port: 70000"))
	if err == nil {
		t.Fatal("Parse() error = nil, want port validation error")
	}
	if !strings.Contains(err.Error(), "port must be between") {
		t.Errorf("error = %v, want port range message", err)
	}
}

func TestParse_InvalidDuration(t *testing.T) {
	_, err := Parse([]byte("request_timeout: fast"))
	if err == nil {
		t.Fatal("Parse() error = nil, want duration error")
	}
	if !strings.Contains(err.Error(), "invalid duration") {
		t.Errorf("error = %v, want invalid duration message", err)
	}
}

func TestParse_DashboardFileRequired(t *testing.T) {
	yaml := `
dashboards:
  - overwrite: true
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("Parse() error = nil, want file-required error")
	}
	if !strings.Contains(err.Error(), "file is required") {
		t.Errorf("error = %v, want file-required message", err)
	}
}

func TestExpandEnvVars_Set(t *testing.T) {
	t.Setenv("GRAFANARAMA_TEST_KEY", "abc123")

	cfg, err := Parse([]byte("api_key: ${GRAFANARAMA_TEST_KEY}"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.APIKey != "abc123" {
		t.Errorf("APIKey = %q, want abc123", cfg.APIKey)
	}
}

func TestExpandEnvVars_Default(t *testing.T) {
	cfg, err := Parse([]byte("api_key: ${GRAFANARAMA_UNSET_VAR:-fallback}"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.APIKey != "fallback" {
		t.Errorf("APIKey = %q, want fallback", cfg.APIKey)
	}
}

func TestExpandEnvVars_MissingNoDefault(t *testing.T) {
	_, err := Parse([]byte("api_key: ${GRAFANARAMA_UNSET_VAR}"))
	if err == nil {
		t.Fatal("Parse() error = nil, want missing-variable error")
	}
	if !strings.Contains(err.Error(), "GRAFANARAMA_UNSET_VAR") {
		t.Errorf("error = %v, want variable name in message", err)
	}
}

func TestExpandEnvVars_EmptyDefault(t *testing.T) {
	cfg, err := Parse([]byte(`
basic_auth:
  user: admin
  password: ${GRAFANARAMA_UNSET_VAR:-}
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.BasicAuth.Password != "" {
		t.Errorf("Password = %q, want empty", cfg.BasicAuth.Password)
	}
}
