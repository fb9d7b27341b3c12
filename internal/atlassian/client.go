package atlassian

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

	"log/slog"

	"github.com/ylchen07/confluence-mcp/internal/auth"
	"github.com/ylchen07/confluence-mcp/internal/config"
)

// DefaultTimeout bounds a single request when no timeout option is supplied.
const DefaultTimeout = 30 * time.Second

// Client is a helper around the Atlassian REST API.
// It is safe for concurrent use; nothing on it changes after construction.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// Option customises a Client during construction.
type Option func(*options)

type options struct {
	timeout   time.Duration
	transport http.RoundTripper
	logger    *slog.Logger
}

// WithTimeout sets the overall per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithTransport sets the RoundTripper that authenticated requests are sent through.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		if rt != nil {
			o.transport = rt
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewClient constructs a Client for the specified base URL and credentials.
// The base URL is used as given apart from trailing slashes.
func NewClient(base string, creds config.ServiceCredentials, opts ...Option) (*Client, error) {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return nil, fmt.Errorf("atlassian: base URL required")
	}

	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("atlassian: parse base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("atlassian: base url %q must be absolute", base)
	}

	o := options{timeout: DefaultTimeout, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	transport, err := auth.NewTransport(o.transport, creds)
	if err != nil {
		return nil, fmt.Errorf("atlassian: %w", err)
	}

	return &Client{
		baseURL: parsed,
		httpClient: &http.Client{
			Timeout:   o.timeout,
			Transport: transport,
		},
		logger: o.logger,
	}, nil
}

// BaseURL returns the API root every request path is joined to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// NewRequest builds an HTTP request with optional query parameters and JSON body.
func (c *Client) NewRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	u := *c.baseURL
	u.Path = strings.TrimRight(c.baseURL.Path, "/") + path
	u.RawPath = ""

	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return nil, fmt.Errorf("atlassian: encode body: %w", err)
		}
		bodyReader = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("atlassian: build request: %w", err)
	}

	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// Do executes the request once and decodes the response JSON into out if provided.
// Non-2xx responses are returned as *Error.
func (c *Client) Do(req *http.Request, out any) error {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("atlassian: send request: %w", err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("atlassian: read response: %w", err)
	}

	c.logger.Debug("atlassian response",
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
		slog.Int("status", res.StatusCode),
		slog.String("body", string(data)),
	)

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return newError(res.StatusCode, data)
	}

	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("atlassian: decode response: %w", err)
	}

	return nil
}

// Get issues a GET request for path and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	req, err := c.NewRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	return c.Do(req, out)
}

// Post sends body as JSON to path and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	req, err := c.NewRequest(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return err
	}
	return c.Do(req, out)
}

// Put sends body as JSON to path and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	req, err := c.NewRequest(ctx, http.MethodPut, path, nil, body)
	if err != nil {
		return err
	}
	return c.Do(req, out)
}
