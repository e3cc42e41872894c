package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"weav/internal/config"
	"weav/internal/logging"
	"weav/internal/services"
)

const (
	apiPrefix          = "/api/v1"
	defaultHTTPTimeout = 30 * time.Second
	userAgent          = "weav-cli/0.1"
	requestIDHeader    = "X-Request-ID"
)

// Client talks to the WEAV REST API.
type Client struct {
	base   string
	http   *http.Client
	token  string
	logger *slog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithToken sends the token as a bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithLogger attaches a logger for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New constructs a client for the backend rooted at baseURL
// (for example http://localhost:8000).
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "backend", "new client", "base url required", nil)
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "backend", "new client", "parse base url", err)
	}
	parsed.RawQuery = ""
	parsed.Fragment = ""

	client := &Client{
		base:   strings.TrimRight(parsed.String(), "/"),
		http:   &http.Client{Timeout: defaultHTTPTimeout},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// NewFromConfig builds a client from the [api] config section.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	return New(cfg.API.BaseURL,
		WithToken(cfg.API.Token),
		WithHTTPClient(&http.Client{Timeout: cfg.APITimeout()}),
		WithLogger(logging.NewComponentLogger(logger, "backend")),
	)
}

func (c *Client) endpoint(path string) string {
	return c.base + apiPrefix + path
}

// doJSON issues a request with an optional JSON body and decodes a JSON
// response into out when out is non-nil.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return services.Wrap(services.ErrValidation, "backend", method+" "+path, "encode request", err)
		}
		reader = bytes.NewReader(payload)
	}
	return c.do(ctx, method, path, "application/json", reader, out)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	ctx = services.EnsureRequestID(ctx)
	op := method + " " + path

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return services.Wrap(services.ErrValidation, "backend", op, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil && contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		req.Header.Set(requestIDHeader, rid)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return services.Wrap(services.ErrCancelled, "backend", op, "", ctx.Err())
		}
		return services.Wrap(services.ErrTransient, "backend", op, "request failed", err)
	}
	defer resp.Body.Close()

	logging.WithContext(ctx, c.logger).Debug("backend request",
		logging.String("method", method),
		logging.String("path", path),
		logging.Int("status", resp.StatusCode),
		logging.Duration("elapsed", time.Since(started)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrTransient, "backend", op, "decode response", err)
	}
	return nil
}

func sessionPath(id int64, rest string) string {
	return fmt.Sprintf("/sessions/%d/%s", id, rest)
}
