// Package api is the HTTP transport between the admin console and the site backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"labadmin/internal/crud"
	"labadmin/internal/logging"

	"go.uber.org/zap"
)

const (
	// DefaultTimeout applies when the caller passes zero.
	DefaultTimeout = 30 * time.Second

	// RequestIDHeader carries the correlation id of a mutation.
	RequestIDHeader = "X-Request-ID"

	maxErrorBody = 64 << 10
)

// Client performs JSON and multipart requests against the backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	logger     *zap.Logger
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a client for baseURL.
func NewClient(baseURL string, timeout time.Duration, opts ...ClientOption) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  "labadmin",
		logger:     logging.Get(logging.CategoryAPI),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string { return c.baseURL }

// Do implements crud.Transport. A 2xx response is decoded into out when out is
// non-nil; anything else becomes a *StatusError.
func (c *Client) Do(ctx context.Context, r crud.Request, out any) error {
	url := c.baseURL + r.Path
	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, url, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if r.ContentType != "" {
		req.Header.Set("Content-Type", r.ContentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	rid := crud.RequestID(ctx)
	if rid != "" {
		req.Header.Set(RequestIDHeader, rid)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.Path),
			zap.String("request_id", rid),
			zap.Error(err))
		return fmt.Errorf("%s %s: %w", r.Method, r.Path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("request completed",
		zap.String("method", r.Method),
		zap.String("path", r.Path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", rid),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method: r.Method,
			Path:   r.Path,
			Code:   resp.StatusCode,
			detail: extractDetail(data),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response from %s: %w", r.Path, err)
	}
	return nil
}

// Get fetches path into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, crud.Request{Method: http.MethodGet, Path: path}, out)
}
