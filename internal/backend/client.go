// internal/backend/client.go
//
// Thin HTTP client for the inventory API. Callers get the raw status and body
// back so each component can apply its own classification rules.

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultMaxBodyBytes caps how much of a response body is read.
const DefaultMaxBodyBytes int64 = 1 << 20

// API paths consumed by the terminal.
const (
	PathProduct    = "/api/Product"
	PathBatch      = "/api/Batch"
	PathStock      = "/api/Stock"
	PathWarehouse  = "/api/Warehouse"
	PathCategories = "/api/Product/Categories"
	PathUserInfo   = "/api/User/UserInfo"
)

// Logger is the minimal logging surface the client needs.
type Logger interface {
	Printf(format string, args ...any)
}

// Response is a fully read HTTP response.
type Response struct {
	Status int
	Body   []byte
}

// Decode unmarshals the body into v.
func (r *Response) Decode(v any) error {
	if r == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return fmt.Errorf("backend: empty body")
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("backend: decode body: %w", err)
	}
	return nil
}

// Client issues requests against one base URL.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
	logger  Logger
}

// Option customizes client construction.
type Option func(*Client)

// WithHTTPClient swaps the underlying transport.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithToken sends a bearer token with every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithLogger overrides the default no-op logger.
func WithLogger(l Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New returns a client rooted at baseURL.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  nopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends one request. A non-nil error means the exchange itself failed;
// any HTTP status, including 4xx/5xx, is returned as a Response.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, payload any) (*Response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("backend: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("backend: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Printf("backend: %s %s: %v", method, path, err)
		return nil, fmt.Errorf("backend: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, DefaultMaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("backend: read %s %s: %w", method, path, err)
	}
	return &Response{Status: resp.StatusCode, Body: data}, nil
}

// Get is Do with GET and no payload.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, query, nil)
}

// ProductPath returns the lookup path for one barcode.
func ProductPath(code string) string {
	return PathProduct + "/" + url.PathEscape(code)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}
