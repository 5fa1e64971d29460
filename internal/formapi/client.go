package formapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

const (
	// apiBasePath is the versioned REST prefix of the service.
	apiBasePath = "formunderstanding/v2.0"

	// apiKeyHeader carries the subscription key on every request.
	apiKeyHeader = "Ocp-Apim-Subscription-Key"

	// defaultTimeout is the per-request timeout when none is configured.
	defaultTimeout = 60 * time.Second

	// defaultMaxBodySize caps how much of a response body is read.
	defaultMaxBodySize = 10 * 1024 * 1024 // 10MB
)

// Client is the HTTP client for the form-understanding service.
// A Client is safe for concurrent use; batch analysis shares one.
type Client struct {
	// endpoint is the parsed service base URL.
	endpoint *url.URL

	// apiKey is sent in the subscription key header on every request.
	apiKey string

	// httpClient performs the requests. Replaceable for tests.
	httpClient *http.Client

	// userAgent is sent with every request.
	userAgent string

	// maxBodySize caps response body reads.
	maxBodySize int64

	// logger receives one request/response event pair per call.
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
// The given client's timeout is used as-is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithMaxBodySize caps how many bytes of a response body are read.
func WithMaxBodySize(size int64) Option {
	return func(c *Client) {
		if size > 0 {
			c.maxBodySize = size
		}
	}
}

// WithLogger sets the logger for request/response events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Client for the service at endpoint, authenticating with
// apiKey. The endpoint must be an absolute http(s) URL; both it and the
// key are validated here so that a misconfigured client fails at
// construction, not on the first call.
func New(endpoint, apiKey string, opts ...Option) (*Client, error) {
	u, err := parseHTTPURL(endpoint)
	if err != nil {
		return nil, err
	}
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	c := &Client{
		endpoint:    u,
		apiKey:      apiKey,
		httpClient:  &http.Client{Timeout: defaultTimeout},
		userAgent:   "formscan",
		maxBodySize: defaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// Endpoint returns the configured service base URL.
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

// parseHTTPURL parses s and verifies it is an absolute http(s) URL.
func parseHTTPURL(s string) (*url.URL, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, ErrInvalidEndpoint
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidEndpoint
	}
	return u, nil
}

// do performs one service call and returns the raw response body.
// Bodies are capped at maxBodySize. Non-2xx responses are decoded into
// an *APIError carrying the service's error envelope when present.
func (c *Client) do(ctx context.Context, op, method string, pathSegments []string, body io.Reader, contentType string) ([]byte, error) {
	reqID := uuid.New().String()
	start := time.Now()

	u := c.endpoint.JoinPath(append([]string{apiBasePath}, pathSegments...)...)

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	c.logger.Debug("formapi.request",
		"req_id", reqID,
		"op", op,
		"method", method,
		"url", u.String(),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("formapi.send_error",
			"req_id", reqID,
			"op", op,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn("formapi.body_close_error", "req_id", reqID, "op", op, "error", cerr)
		}
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return nil, err
	}

	c.logger.Debug("formapi.response",
		"req_id", reqID,
		"op", op,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(op, resp.StatusCode, raw)
	}
	return raw, nil
}

// newAPIError builds an APIError from a non-2xx response body.
// The service's documented error envelope is {"error":{"code","message"}};
// anything else becomes the raw body text.
func newAPIError(op string, statusCode int, raw []byte) *APIError {
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Message != "" {
		return &APIError{
			Op:         op,
			StatusCode: statusCode,
			Code:       envelope.Error.Code,
			Message:    envelope.Error.Message,
		}
	}

	msg := string(bytes.TrimSpace(raw))
	if len(msg) > 512 {
		msg = msg[:512]
	}
	return &APIError{Op: op, StatusCode: statusCode, Message: msg}
}
