// ABOUTME: Try-it HTTP client: performs exactly one outbound call per Request
// ABOUTME: Never returns a Go error; every failure is folded into the Result envelope

package tryit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	pilog "github.com/mauromedda/api-tryit-go/internal/log"
)

// DefaultResponseLimit caps how much of a response body is read.
const DefaultResponseLimit = 5 << 20

// Client issues try-it requests.
type Client struct {
	httpClient *http.Client
	limit      int64
}

// Option configures a Client.
type Option func(*Client)

// WithResponseLimit caps response bodies at n bytes; n <= 0 keeps the default.
func WithResponseLimit(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.limit = n
		}
	}
}

// NewClient creates a client that sends through hc. A nil hc uses
// http.DefaultClient.
func NewClient(hc *http.Client, opts ...Option) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	c := &Client{httpClient: hc, limit: DefaultResponseLimit}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do validates req and sends it once. Redirects follow the http.Client's
// policy; there are no retries.
func (c *Client) Do(ctx context.Context, req Request) Result {
	req.Method = strings.ToUpper(strings.TrimSpace(req.Method))
	if err := req.Validate(); err != nil {
		return Result{Err: err.Error()}
	}

	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return Result{Err: err.Error()}
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if req.Body != "" && httpReq.Header.Get("Content-Type") == "" && json.Valid([]byte(req.Body)) {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	pilog.Debug("tryit: %s %s", req.Method, req.URL)
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		pilog.Debug("tryit: %s %s failed: %v", req.Method, req.URL, err)
		return Result{Err: err.Error()}
	}
	defer resp.Body.Close()
	pilog.Debug("tryit: %s %s -> %d", req.Method, req.URL, resp.StatusCode)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.limit+1))
	if err != nil {
		return Result{Status: resp.StatusCode, Err: fmt.Sprintf("reading response body: %v", err)}
	}
	if int64(len(raw)) > c.limit {
		return Result{Status: resp.StatusCode, Err: fmt.Sprintf("response body exceeds %d bytes", c.limit)}
	}

	result := Result{Status: resp.StatusCode, Body: decodeBody(raw)}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		result.Err = fmt.Sprintf("Request failed with status code %d", resp.StatusCode)
	}
	return result
}
