package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/esalituro/grafanarama"
)

// BuildClient converts parsed configuration into a grafanarama [*grafanarama.Client].
func BuildClient(cfg *Config, opts ...grafanarama.ClientOption) (*grafanarama.Client, error) {
	clientOpts := []grafanarama.ClientOption{
		grafanarama.WithHost(cfg.Host),
		grafanarama.WithPort(cfg.Port),
		grafanarama.WithHTTPS(cfg.HTTPS),
	}

	if cfg.APIKey != "" {
		clientOpts = append(clientOpts, grafanarama.WithAPIKey(cfg.APIKey))
	}
	if cfg.ServiceAccountToken != "" {
		clientOpts = append(clientOpts, grafanarama.WithServiceAccountToken(cfg.ServiceAccountToken))
	}
	if cfg.BasicAuth.User != "" || cfg.BasicAuth.Password != "" {
		clientOpts = append(clientOpts, grafanarama.WithBasicAuth(cfg.BasicAuth.User, cfg.BasicAuth.Password))
	}
	if cfg.RequestTimeout != 0 {
		clientOpts = append(clientOpts, grafanarama.WithRequestTimeout(cfg.RequestTimeout.Duration()))
	}

	clientOpts = append(clientOpts, opts...)
	return grafanarama.NewClient(clientOpts...)
}

// LoadDashboard reads a dashboard document from a JSON or YAML file and
// constructs a [*grafanarama.Dashboard] from it. The format is chosen by
// file extension: .json is parsed as JSON, everything else as YAML.
//
// The file may hold either a flat server-shaped spec payload or a full
// envelope with spec/metadata/status keys; both go through the same merge.
func LoadDashboard(path string) (*grafanarama.Dashboard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dashboard file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		d, err := grafanarama.ParseDashboard(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return d, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%s: failed to parse YAML: %w", path, err)
	}
	d, err := grafanarama.FromFields(fields)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}
