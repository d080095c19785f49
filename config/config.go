// Package config provides YAML configuration parsing for the grafanarama CLI.
//
// This package enables driving the client as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	host: grafana.example.com
//	port: 3000
//	https: true
//	api_key: ${GRAFANA_API_KEY}
//
//	dashboards:
//	  - file: dashboards/overview.json
//	    overwrite: true
//	    message: deployed by CI
//
// Credential values support environment variable substitution with ${VAR}
// and ${VAR:-default} syntax.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the grafanarama CLI.
//
// It maps directly to the YAML configuration file structure. Use [Load] or
// [Parse] to create a Config from YAML.
type Config struct {
	// Host is the Grafana server hostname. Defaults to "localhost".
	Host string `yaml:"host"`

	// Port is the Grafana server port. Defaults to 3000.
	Port int `yaml:"port"`

	// HTTPS switches the client to https URLs.
	HTTPS bool `yaml:"https"`

	// APIKey is a legacy API key. Supports env substitution: ${VAR}.
	APIKey string `yaml:"api_key"`

	// ServiceAccountToken is a service-account token, sent as a bearer
	// header. Supports env substitution.
	ServiceAccountToken string `yaml:"service_account_token"`

	// BasicAuth holds basic-auth credentials. Ignored when an API key or
	// token is configured.
	BasicAuth BasicAuth `yaml:"basic_auth"`

	// RequestTimeout bounds payload requests. Accepts duration strings like
	// "30s" or "2m". Defaults to 60s.
	RequestTimeout Duration `yaml:"request_timeout"`

	// Dashboards lists dashboard documents to push.
	Dashboards []DashboardFile `yaml:"dashboards"`
}

// BasicAuth holds HTTP basic-auth credentials.
type BasicAuth struct {
	// User is the basic-auth username. Supports env substitution.
	User string `yaml:"user"`

	// Password is the basic-auth password. Supports env substitution.
	Password string `yaml:"password"`
}

// DashboardFile identifies one dashboard document to push.
type DashboardFile struct {
	// File is the path to a JSON or YAML dashboard document.
	File string `yaml:"file"`

	// Overwrite replaces an existing dashboard with the same UID or title.
	Overwrite bool `yaml:"overwrite"`

	// Message is the change message recorded in the dashboard's history.
	Message string `yaml:"message"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// already have an error, skip processing
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		// submatches[2] is ":-..." (non-empty if default syntax was used)
		// submatches[3] is the actual default value (may be empty for ${VAR:-})
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before validation.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in the host and credential values.
// Defaults are applied for Host (localhost), Port (3000), and
// RequestTimeout (60s).
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 3000
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = Duration(60 * time.Second)
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	var err error
	if c.Host, err = expandEnvVars(c.Host); err != nil {
		return fmt.Errorf("host: %w", err)
	}
	if c.APIKey, err = expandEnvVars(c.APIKey); err != nil {
		return fmt.Errorf("api_key: %w", err)
	}
	if c.ServiceAccountToken, err = expandEnvVars(c.ServiceAccountToken); err != nil {
		return fmt.Errorf("service_account_token: %w", err)
	}
	if c.BasicAuth.User, err = expandEnvVars(c.BasicAuth.User); err != nil {
		return fmt.Errorf("basic_auth.user: %w", err)
	}
	if c.BasicAuth.Password, err = expandEnvVars(c.BasicAuth.Password); err != nil {
		return fmt.Errorf("basic_auth.password: %w", err)
	}

	for i, d := range c.Dashboards {
		if d.File == "" {
			return fmt.Errorf("dashboards[%d]: file is required", i)
		}
	}

	return nil
}
