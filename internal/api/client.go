// Package api is the HTTP transport for the authentication service.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kozaktomas/face-auth/internal/constants"
	"github.com/kozaktomas/face-auth/internal/payload"
)

// TokenSource supplies the current access token. The client only reads it.
type TokenSource interface {
	AccessToken() string
}

// Client talks to the authentication API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	format     payload.Format
	captureDir string

	retryAttempts uint64
	retryBase     time.Duration

	inflight singleflight.Group
	cache    *queryCache

	mu          sync.Mutex
	generations map[string]uint64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithTokenSource attaches the session the bearer token is read from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithPayloadFormat selects JSON or multipart bodies for register and login.
func WithPayloadFormat(f payload.Format) Option {
	return func(c *Client) { c.format = f }
}

// WithCacheTTL sets how long query results stay fresh.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) { c.cache.ttl = ttl }
}

// WithReadRetry sets how often idempotent reads are retried on network
// failure, and the first backoff interval.
func WithReadRetry(attempts uint64, base time.Duration) Option {
	return func(c *Client) {
		c.retryAttempts = attempts
		c.retryBase = base
	}
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid API URL: %w", err)
	}

	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		httpClient:    &http.Client{Timeout: constants.DefaultRequestTimeout},
		format:        payload.FormatMultipart,
		retryAttempts: constants.ReadRetryAttempts,
		retryBase:     constants.ReadRetryBase,
		cache:         newQueryCache(constants.DefaultQueryCacheTTL),
		generations:   make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API origin the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// nextGeneration starts a new request of kind op and returns its number.
func (c *Client) nextGeneration(op string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[op]++
	return c.generations[op]
}

// isCurrent reports whether gen is still the latest request of kind op.
func (c *Client) isCurrent(op string, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[op] == gen
}

// Invalidate drops the cached result of a query endpoint so the next call
// fetches it again.
func (c *Client) Invalidate(endpoint string) {
	if u, err := BuildURL(c.baseURL, endpoint, nil); err == nil {
		c.cache.delete(u)
	}
}

// InvalidateAll drops every cached query result.
func (c *Client) InvalidateAll() {
	c.cache.clear()
}

// SetCaptureDir enables API response capturing to the specified directory.
// Pass an empty string to disable capturing.
func (c *Client) SetCaptureDir(dir string) error {
	if dir == "" {
		c.captureDir = ""
		return nil
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("could not create capture directory: %w", err)
	}
	c.captureDir = dir
	return nil
}

// captureResponse saves the response body to the capture directory, if set.
func (c *Client) captureResponse(endpoint string, status int, body []byte) {
	if c.captureDir == "" {
		return
	}

	name := strings.Trim(strings.ReplaceAll(endpoint, "/", "_"), "_")
	if name == "" {
		name = "root"
	}
	name = fmt.Sprintf("%s_%d_%s.json", name, status, time.Now().Format("20060102_150405.000"))
	path := filepath.Join(c.captureDir, name)

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err == nil {
		body = pretty.Bytes()
	}

	if err := os.WriteFile(path, body, 0600); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to capture response to %s: %v\n", path, err)
	}
}
