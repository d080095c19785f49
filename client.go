package grafanarama

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

const maxResponseBodySize = 1 << 20 // 1MB

// connection pooling limits, sized for a client talking to one server
const (
	defaultMaxIdleConns        = 10
	defaultMaxIdleConnsPerHost = 10
	defaultIdleConnTimeout     = 60 * time.Second
)

const (
	defaultHost = "localhost"
	defaultPort = 3000

	// healthTimeout bounds liveness and auth checks, which should answer
	// quickly or not at all. Payload submission gets the longer
	// defaultRequestTimeout since large dashboards can take a while.
	healthTimeout         = 5 * time.Second
	defaultRequestTimeout = 60 * time.Second
)

const (
	apiKeyHeader = "X-Grafana-API-Key"

	dashboardsPath  = "/api/dashboards/db"
	datasourcesPath = "/api/datasources"
	healthPath      = "/api/health"
)

// APIResponse captures the outcome of the most recent HTTP exchange for
// diagnostic purposes: the status code, the response body (limited to 1MB),
// and the server's error message when one could be extracted.
type APIResponse struct {
	// StatusCode is the HTTP status code. Zero if the request failed before
	// a response was received.
	StatusCode int

	// Body is the raw response body, limited to 1MB.
	Body []byte

	// Message is the server's "message" field parsed from an error body,
	// best-effort. Empty when the body had no such field.
	Message string
}

// Client talks to a Grafana server's HTTP API.
//
// Exactly one authentication scheme is active per client: an API key (or
// service-account token) or basic-auth credentials. When both are supplied
// the key wins and the conflict is logged, not rejected.
//
// Write operations report success as a bool; a non-2xx response is not a Go
// error. Diagnostics for the last exchange are available from
// [Client.Results]. Transport-level failures (connection refused, DNS,
// timeout) are returned as errors and are never retried — pass
// overwrite=true to [Client.SendDashboard] if a repeated send must be safe.
//
// A Client is not safe for concurrent use: Results tracks the last response
// as per-client state. Use one client per goroutine or guard calls
// externally.
type Client struct {
	host           string
	port           int
	apiKey         string
	bearerToken    string
	basicUser      string
	basicPass      string
	useHTTPS       bool
	requestTimeout time.Duration
	logger         *slog.Logger
	httpClient     *http.Client

	lastResponse *APIResponse
}

// ClientOption configures a [Client] during construction with [NewClient].
type ClientOption func(*Client) error

// WithHost sets the server hostname. Defaults to "localhost".
func WithHost(host string) ClientOption {
	return func(c *Client) error {
		if host == "" {
			return fmt.Errorf("host cannot be empty")
		}
		c.host = host
		return nil
	}
}

// WithPort sets the server port. Defaults to 3000.
func WithPort(port int) ClientOption {
	return func(c *Client) error {
		if port < 1 || port > 65535 {
			return fmt.Errorf("port must be between 1 and 65535, got %d", port)
		}
		c.port = port
		return nil
	}
}

// WithAPIKey authenticates with a legacy API key, sent as the
// X-Grafana-API-Key header. Surrounding whitespace is stripped, since keys
// pasted from dashboards often carry a trailing newline.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) error {
		c.apiKey = strings.TrimSpace(key)
		return nil
	}
}

// WithServiceAccountToken authenticates with a service-account token, sent
// as an Authorization bearer header.
func WithServiceAccountToken(token string) ClientOption {
	return func(c *Client) error {
		c.bearerToken = strings.TrimSpace(token)
		return nil
	}
}

// WithBasicAuth authenticates with HTTP basic auth. Ignored (with a logged
// warning) when an API key or token is also configured.
func WithBasicAuth(user, password string) ClientOption {
	return func(c *Client) error {
		c.basicUser = user
		c.basicPass = password
		return nil
	}
}

// WithHTTPS switches the client to https URLs.
func WithHTTPS(useHTTPS bool) ClientOption {
	return func(c *Client) error {
		c.useHTTPS = useHTTPS
		return nil
	}
}

// WithRequestTimeout sets the timeout for payload requests. Health checks
// use a fixed short timeout regardless. Defaults to 60 seconds.
func WithRequestTimeout(d time.Duration) ClientOption {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("request timeout must be positive")
		}
		c.requestTimeout = d
		return nil
	}
}

// WithLogger sets a custom [slog.Logger]. Defaults to [slog.Default].
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

// NewClient creates a Grafana API [Client] with the given options.
func NewClient(opts ...ClientOption) (*Client, error) {
	c := &Client{
		host:           defaultHost,
		port:           defaultPort,
		requestTimeout: defaultRequestTimeout,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	if (c.apiKey != "" || c.bearerToken != "") && (c.basicUser != "" || c.basicPass != "") {
		c.logger.Warn("both API key and basic auth configured; API key will be used, basic auth ignored")
	}

	c.httpClient = &http.Client{
		// per-request timeouts via context, not a global client timeout
		Transport: &http.Transport{
			MaxIdleConns:        defaultMaxIdleConns,
			MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
			IdleConnTimeout:     defaultIdleConnTimeout,
		},
	}

	return c, nil
}

// BaseURL returns the server's base URL, e.g. "http://localhost:3000".
func (c *Client) BaseURL() string {
	scheme := "http"
	if c.useHTTPS {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.host, c.port)
}

// Results returns diagnostics for the most recent HTTP exchange, or nil if
// no request has been made yet.
func (c *Client) Results() *APIResponse {
	return c.lastResponse
}

// Health checks the server's liveness endpoint. The health endpoint
// requires no authentication, so this reports reachability rather than
// credential validity. Uses a fixed short timeout.
func (c *Client) Health(ctx context.Context) (bool, error) {
	resp, err := c.do(ctx, http.MethodGet, healthPath, nil, healthTimeout)
	if err != nil {
		return false, err
	}
	return is2xx(resp.StatusCode), nil
}

// SendDashboard publishes a dashboard, creating or updating it.
//
// The document is serialized fresh as its [PublishedSpec] and wrapped in the
// server's send envelope {dashboard, overwrite, message}. With overwrite set,
// an existing dashboard with the same UID or title is replaced, which makes
// repeated sends safe.
//
// Returns true on a 2xx response. A non-2xx response returns (false, nil)
// with diagnostics in [Client.Results]; only transport failures return an
// error.
func (c *Client) SendDashboard(ctx context.Context, d *Dashboard, overwrite bool, message string) (bool, error) {
	payload := map[string]any{
		"dashboard": d.PublishedSpec(),
		"overwrite": overwrite,
		"message":   message,
	}
	return c.Post(ctx, dashboardsPath, payload)
}

// GetDashboard fetches a dashboard by slug. Returns (nil, nil) when the
// dashboard does not exist or the request was refused; diagnostics are in
// [Client.Results].
func (c *Client) GetDashboard(ctx context.Context, slug string) (*Dashboard, error) {
	result, err := c.Get(ctx, dashboardsPath+"/"+slug)
	if err != nil || result == nil {
		return nil, err
	}
	fields, ok := result["dashboard"].(map[string]any)
	if !ok {
		return nil, nil
	}
	return FromFields(fields)
}

// SendDatasource upserts a datasource by name: if a datasource with the same
// name exists it is updated, otherwise it is created. Returns true on a 2xx
// response from the write.
func (c *Client) SendDatasource(ctx context.Context, ds Datasource) (bool, error) {
	if err := ds.validate(); err != nil {
		return false, err
	}

	id, found, err := c.DatasourceIDByName(ctx, ds.Name)
	if err != nil {
		return false, err
	}
	if found {
		c.logger.Info("datasource exists, updating", "name", ds.Name, "id", id)
		return c.Put(ctx, fmt.Sprintf("%s/%d", datasourcesPath, id), ds.Fields())
	}
	c.logger.Info("datasource not found, creating", "name", ds.Name)
	return c.Post(ctx, datasourcesPath, ds.Fields())
}

// DatasourceIDByName looks up a datasource's numeric id by name. found is
// false when the server has no datasource with that name.
func (c *Client) DatasourceIDByName(ctx context.Context, name string) (int64, bool, error) {
	result, err := c.Get(ctx, datasourcesPath+"/name/"+name)
	if err != nil || result == nil {
		return 0, false, err
	}
	id, ok := toInt64(result["id"])
	if !ok {
		return 0, false, nil
	}
	return id, true, nil
}

// Datasources lists all datasources. Returns (nil, nil) when the request was
// refused.
func (c *Client) Datasources(ctx context.Context) ([]map[string]any, error) {
	resp, err := c.do(ctx, http.MethodGet, datasourcesPath, nil, c.requestTimeout)
	if err != nil {
		return nil, err
	}
	if !is2xx(resp.StatusCode) {
		c.logFailure(resp)
		return nil, nil
	}
	var list []map[string]any
	if err := json.Unmarshal(resp.Body, &list); err != nil {
		return nil, fmt.Errorf("failed to decode datasource list: %w", err)
	}
	return list, nil
}

// DeleteDatasource deletes a datasource by id.
func (c *Client) DeleteDatasource(ctx context.Context, id int64) (bool, error) {
	return c.Delete(ctx, fmt.Sprintf("%s/%d", datasourcesPath, id))
}

// Get performs a GET against an API path and decodes the JSON response.
// Returns (nil, nil) on a non-2xx response, with diagnostics in
// [Client.Results].
func (c *Client) Get(ctx context.Context, path string) (map[string]any, error) {
	resp, err := c.do(ctx, http.MethodGet, path, nil, c.requestTimeout)
	if err != nil {
		return nil, err
	}
	if !is2xx(resp.StatusCode) {
		c.logFailure(resp)
		return nil, nil
	}
	var result map[string]any
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return result, nil
}

// Post performs a POST with a JSON payload. Returns true on a 2xx response.
func (c *Client) Post(ctx context.Context, path string, payload any) (bool, error) {
	return c.write(ctx, http.MethodPost, path, payload)
}

// Put performs a PUT with a JSON payload. Returns true on a 2xx response.
func (c *Client) Put(ctx context.Context, path string, payload any) (bool, error) {
	return c.write(ctx, http.MethodPut, path, payload)
}

// Delete performs a DELETE. Returns true on a 2xx response.
func (c *Client) Delete(ctx context.Context, path string) (bool, error) {
	return c.write(ctx, http.MethodDelete, path, nil)
}

func (c *Client) write(ctx context.Context, method, path string, payload any) (bool, error) {
	var body []byte
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return false, fmt.Errorf("failed to encode payload: %w", err)
		}
		body = encoded
	}

	resp, err := c.do(ctx, method, path, body, c.requestTimeout)
	if err != nil {
		return false, err
	}
	if !is2xx(resp.StatusCode) {
		c.logFailure(resp)
		return false, nil
	}
	return true, nil
}

// do performs one HTTP exchange and records it as the last response.
// Transport-level failures are returned as errors; HTTP-level failures are
// captured in the response.
func (c *Client) do(ctx context.Context, method, path string, body []byte, timeout time.Duration) (*APIResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL()+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	c.applyAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	result := &APIResponse{
		StatusCode: resp.StatusCode,
		Body:       data,
	}
	if !is2xx(resp.StatusCode) {
		// best-effort: Grafana error bodies carry a "message" field
		if msg := gjson.GetBytes(data, "message"); msg.Exists() {
			result.Message = msg.String()
		}
	}
	c.lastResponse = result
	return result, nil
}

// applyAuth attaches exactly one auth scheme: API key, then service-account
// token, then basic auth, in order of preference.
func (c *Client) applyAuth(req *http.Request) {
	switch {
	case c.apiKey != "":
		req.Header.Set(apiKeyHeader, c.apiKey)
	case c.bearerToken != "":
		req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	case c.basicUser != "" && c.basicPass != "":
		req.SetBasicAuth(c.basicUser, c.basicPass)
	}
}

// logFailure reports a non-2xx response, with extra troubleshooting detail
// for authentication failures.
func (c *Client) logFailure(resp *APIResponse) {
	detail := resp.Message
	if detail == "" {
		detail = truncate(string(resp.Body), 200)
	}
	c.logger.Error("request failed", "status", resp.StatusCode, "message", detail)

	if resp.StatusCode == http.StatusUnauthorized {
		c.logger.Warn("authentication failed; check that the API key is correct, has not expired, and carries the Admin role",
			"using_api_key", c.apiKey != "" || c.bearerToken != "",
			"key_preview", keyPreview(firstNonEmpty(c.apiKey, c.bearerToken)),
			"using_basic_auth", c.apiKey == "" && c.bearerToken == "" && c.basicUser != "",
		)
	}
}

// keyPreview shows enough of a key to identify it without exposing it.
func keyPreview(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 12 {
		return "***"
	}
	return key[:8] + "..." + key[len(key)-4:]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func is2xx(code int) bool {
	return code >= 200 && code < 300
}
