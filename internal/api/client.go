package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Credential headers. The consumer header is absent only for the bootstrap
// call that requests a consumer key.
const (
	HeaderApplication = "X-Portal-Application"
	HeaderSecret      = "X-Portal-Secret"
	HeaderConsumer    = "X-Portal-Consumer"
)

const defaultMaxResponseBytes = 1 << 20

// Error is the canonical remote failure: the HTTP status and the
// human-readable message extracted from the response body. A zero Status
// means the request never reached the API.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e == nil {
		return "api error"
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Status > 0 {
		return "remote API returned status " + http.StatusText(e.Status)
	}
	return "remote API unreachable"
}

// Config configures a Client.
type Config struct {
	Endpoint         string
	BasePath         string
	Timeout          time.Duration
	MaxResponseBytes int64
	HTTPClient       *http.Client
}

// Client issues JSON requests against the proxied API surface. The zero
// credential is valid; WithCredential derives a per-credential view without
// copying transport state.
type Client struct {
	base       *url.URL
	httpClient *http.Client
	maxBytes   int64

	appKey      string
	appSecret   string
	consumerKey string
}

// NewClient validates cfg and builds a credential-less client.
func NewClient(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.Endpoint, "/") + cfg.BasePath)
	if err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	maxBytes := cfg.MaxResponseBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxResponseBytes
	}

	return &Client{
		base:       base,
		httpClient: httpClient,
		maxBytes:   maxBytes,
	}, nil
}

// WithCredential returns a shallow copy of the client carrying the given
// credential headers. The receiver is not mutated.
func (c *Client) WithCredential(appKey, appSecret, consumerKey string) *Client {
	clone := *c
	clone.appKey = appKey
	clone.appSecret = appSecret
	clone.consumerKey = consumerKey
	return &clone
}

// Get issues a GET and decodes the JSON response into out when out is
// non-nil.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return &Error{Message: "invalid request payload"}
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, reader)
	if err != nil {
		return &Error{Message: "invalid request"}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.appKey != "" {
		req.Header.Set(HeaderApplication, c.appKey)
	}
	if c.appSecret != "" {
		req.Header.Set(HeaderSecret, c.appSecret)
	}
	if c.consumerKey != "" {
		req.Header.Set(HeaderConsumer, c.consumerKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Message: "remote API unreachable"}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return &Error{Status: resp.StatusCode, Message: "remote response truncated"}
	}

	if resp.StatusCode >= 400 {
		return decodeError(resp.StatusCode, data)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Status: resp.StatusCode, Message: "malformed remote response"}
	}
	return nil
}

func decodeError(status int, data []byte) *Error {
	var payload struct {
		Message   string `json:"message"`
		ErrorCode string `json:"errorCode"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.Message == "" {
		return &Error{Status: status, Message: "remote API returned status " + http.StatusText(status)}
	}
	return &Error{Status: status, Code: payload.ErrorCode, Message: payload.Message}
}
