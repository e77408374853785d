// Package apiclient is the HTTP client for the Geonosis REST API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/geonosis/console/internal/config"
)

// CacheMode is a caching hint forwarded to the transport.
type CacheMode string

const (
	CacheDefault CacheMode = ""
	CacheNoStore CacheMode = "no-store"
)

// RequestOptions describes a single API call.
type RequestOptions struct {
	Method  string
	Body    any
	Headers http.Header
	Cache   CacheMode
}

// Client talks to one backend base URL.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger

	Projects *ProjectsService
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.http = httpClient
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a client for baseURL, e.g. http://localhost:8000. The API
// prefix is appended per request.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Projects = &ProjectsService{client: c}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL returns the absolute URL for an API endpoint such as "/projects/".
func (c *Client) URL(endpoint string) string {
	return c.baseURL + config.APIPrefix + endpoint
}

// Request performs an API call and decodes a successful response into T.
// A 204 response yields the zero T without reading the body. The response
// shape is not validated beyond JSON decoding.
func Request[T any](ctx context.Context, c *Client, endpoint string, opts RequestOptions) (T, error) {
	return send[T](ctx, c, c.URL(endpoint), opts)
}

func send[T any](ctx context.Context, c *Client, url string, opts RequestOptions) (T, error) {
	var out T

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	headers := http.Header{}
	for key, values := range opts.Headers {
		headers[key] = append([]string(nil), values...)
	}

	var body io.Reader
	if opts.Body != nil {
		payload, err := json.Marshal(opts.Body)
		if err != nil {
			return out, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
		headers.Set("Content-Type", "application/json")
	}
	if opts.Cache != CacheDefault {
		headers.Set("Cache-Control", string(opts.Cache))
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return out, err
	}
	req.Header = headers

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("api request failed", "method", method, "url", url, "error", err)
		return out, err
	}
	defer resp.Body.Close()
	c.logger.Debug("api request", "method", method, "url", url, "status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode == http.StatusNoContent {
		return out, nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return out, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return out, newAPIError(resp.StatusCode, raw)
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode response body: %w", err)
	}
	return out, nil
}

// HealthStatus is the backend's /health payload.
type HealthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Version  string `json:"version"`
}

// Health checks the backend root health endpoint, outside the API prefix.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	return send[HealthStatus](ctx, c, c.baseURL+"/health", RequestOptions{Cache: CacheNoStore})
}
