// ABOUTME: HTTP client for model providers with retry on 429/5xx and SSE streaming
// ABOUTME: Exponential backoff; honours HTTP_PROXY/HTTPS_PROXY through the default transport

package httputil

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/mauromedda/api-tryit-go/internal/sse"
)

const (
	defaultRetries = 3
	defaultBackoff = 500 * time.Millisecond
	maxBackoff     = 10 * time.Second
)

// Client wraps an http.Client with retry logic and default headers.
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    map[string]string
	retries    int
	backoff    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHeader adds a header sent on every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers[key] = value }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetries sets the number of attempts made for retryable statuses
// and the initial backoff between them.
func WithRetries(attempts int, backoff time.Duration) Option {
	return func(c *Client) {
		c.retries = max(attempts, 1)
		c.backoff = backoff
	}
}

// NewClient creates a client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   30 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 60 * time.Second,
				MaxIdleConns:          100,
				IdleConnTimeout:       90 * time.Second,
			},
		},
		baseURL: baseURL,
		headers: make(map[string]string),
		retries: defaultRetries,
		backoff: defaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the base URL configured on this client.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends a request, retrying on 429 and 5xx. When attempts run out the
// last response is returned unread so the caller can report its body.
// If body implements io.Seeker it is rewound before each retry; other
// bodies are sent once.
func (c *Client) Do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	seeker, _ := body.(io.Seeker)
	attempts := c.retries
	if body != nil && seeker == nil {
		attempts = 1
	}

	for attempt := range attempts {
		if seeker != nil && attempt > 0 {
			if _, err := seeker.Seek(0, io.SeekStart); err != nil {
				return nil, fmt.Errorf("rewinding request body: %w", err)
			}
		}

		req, err := c.buildRequest(ctx, method, path, body)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("http request failed: %w", err)
		}
		if !isRetryable(resp.StatusCode) || attempt == attempts-1 {
			return resp, nil
		}

		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if err := sleepWithContext(ctx, c.delay(attempt)); err != nil {
			return nil, fmt.Errorf("context cancelled during retry backoff: %w", err)
		}
	}
	// unreachable: attempts is at least 1
	return nil, fmt.Errorf("no attempts made")
}

// StreamSSE sends a request and returns an SSE reader over the response body.
// The caller must close the returned response.
func (c *Client) StreamSSE(ctx context.Context, method, path string, body io.Reader) (*sse.Reader, *http.Response, error) {
	resp, err := c.Do(ctx, method, path, body)
	if err != nil {
		return nil, nil, fmt.Errorf("SSE stream request failed: %w", err)
	}
	return sse.NewReader(resp.Body), resp, nil
}

func (c *Client) buildRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s %s: %w", method, path, err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

func isRetryable(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= 500
}

func (c *Client) delay(attempt int) time.Duration {
	d := c.backoff << attempt
	if d > maxBackoff || d < 0 {
		d = maxBackoff
	}
	return d
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
