// ABOUTME: Client side of the Streamable HTTP transport
// ABOUTME: Posts JSON-RPC; reads application/json or text/event-stream replies; DELETE on close

package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	pilog "github.com/mauromedda/api-tryit-go/internal/log"
	"github.com/mauromedda/api-tryit-go/internal/sse"
)

const (
	HeaderSessionID       = "Mcp-Session-Id"
	HeaderProtocolVersion = "Mcp-Protocol-Version"

	headerAccept    = "Accept"
	acceptValue     = "application/json, text/event-stream"
	contentTypeJSON = "application/json"
	contentTypeSSE  = "text/event-stream"
)

// HTTPTransport talks to one server endpoint over Streamable HTTP.
type HTTPTransport struct {
	endpoint   string
	httpClient *http.Client
	authToken  string

	mu              sync.RWMutex
	sessionID       string
	protocolVersion string

	incoming  chan json.RawMessage
	done      chan struct{}
	closeOnce sync.Once

	listenCancel context.CancelFunc
	listenWg     sync.WaitGroup
}

// HTTPOption configures an HTTPTransport.
type HTTPOption func(*HTTPTransport)

// WithHTTPClient sets the HTTP client used for every request.
func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(t *HTTPTransport) { t.httpClient = hc }
}

// WithAuthToken sends the token as a bearer Authorization header.
func WithAuthToken(token string) HTTPOption {
	return func(t *HTTPTransport) { t.authToken = token }
}

// NewHTTPTransport creates a transport for the endpoint URL (e.g.
// http://localhost:3000/mcp). No request is made until Send.
func NewHTTPTransport(endpoint string, opts ...HTTPOption) *HTTPTransport {
	t := &HTTPTransport{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: http.DefaultClient,
		incoming:   make(chan json.RawMessage, 64),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SessionID returns the id assigned by the server, if any.
func (t *HTTPTransport) SessionID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sessionID
}

// SetProtocolVersion records the negotiated version sent on later requests.
func (t *HTTPTransport) SetProtocolVersion(v string) {
	t.mu.Lock()
	t.protocolVersion = v
	t.mu.Unlock()
}

// Send posts a JSON-RPC request and returns the matching response.
func (t *HTTPTransport) Send(ctx context.Context, req *Request) (*Response, error) {
	req.JSONRPC = jsonRPCVersion
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpResp, err := t.post(ctx, body)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode >= 400 {
		return nil, statusError(httpResp)
	}

	if strings.HasPrefix(httpResp.Header.Get("Content-Type"), contentTypeSSE) {
		return t.readSSEResponse(httpResp.Body, req.ID)
	}
	var resp Response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decoding JSON response: %w", err)
	}
	return &resp, nil
}

// Notify sends a JSON-RPC notification.
func (t *HTTPTransport) Notify(ctx context.Context, notif *Notification) error {
	notif.JSONRPC = jsonRPCVersion
	body, err := json.Marshal(notif)
	if err != nil {
		return fmt.Errorf("marshaling notification: %w", err)
	}

	httpResp, err := t.post(ctx, body)
	if err != nil {
		return err
	}
	defer httpResp.Body.Close()
	_, _ = io.Copy(io.Discard, httpResp.Body)

	if httpResp.StatusCode >= 400 {
		return fmt.Errorf("notification %s: HTTP %d", notif.Method, httpResp.StatusCode)
	}
	return nil
}

func (t *HTTPTransport) post(ctx context.Context, body []byte) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	t.setHeaders(httpReq)
	httpReq.Header.Set("Content-Type", contentTypeJSON)
	httpReq.Header.Set(headerAccept, acceptValue)

	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP POST: %w", err)
	}
	t.captureSessionID(httpResp)
	return httpResp, nil
}

// Receive returns server-initiated messages from the listening stream.
func (t *HTTPTransport) Receive() <-chan json.RawMessage {
	return t.incoming
}

// StartListening opens the GET stream for server-initiated messages. It
// needs a session id, so call it after initialize.
func (t *HTTPTransport) StartListening() {
	ctx, cancel := context.WithCancel(context.Background())
	t.mu.Lock()
	if t.listenCancel != nil {
		t.mu.Unlock()
		cancel()
		return
	}
	t.listenCancel = cancel
	t.mu.Unlock()

	t.listenWg.Add(1)
	go t.listen(ctx)
}

// Close stops the listener and terminates the session with DELETE.
func (t *HTTPTransport) Close() error {
	var closeErr error
	t.closeOnce.Do(func() {
		t.mu.RLock()
		cancel := t.listenCancel
		sid := t.sessionID
		t.mu.RUnlock()

		if cancel != nil {
			cancel()
		}
		close(t.done)
		t.listenWg.Wait()
		// The listener has exited and Send never writes to incoming
		// after Close, so no writer remains.
		close(t.incoming)

		if sid == "" {
			return
		}
		req, err := http.NewRequest(http.MethodDelete, t.endpoint, nil)
		if err != nil {
			closeErr = err
			return
		}
		t.setHeaders(req)
		resp, err := t.httpClient.Do(req)
		if err != nil {
			closeErr = fmt.Errorf("DELETE session: %w", err)
			return
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if resp.StatusCode >= 400 {
			closeErr = fmt.Errorf("DELETE session: HTTP %d", resp.StatusCode)
		}
	})
	return closeErr
}

func (t *HTTPTransport) setHeaders(req *http.Request) {
	if t.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+t.authToken)
	}
	t.mu.RLock()
	sid, version := t.sessionID, t.protocolVersion
	t.mu.RUnlock()
	if sid != "" {
		req.Header.Set(HeaderSessionID, sid)
	}
	if version != "" {
		req.Header.Set(HeaderProtocolVersion, version)
	}
}

func (t *HTTPTransport) captureSessionID(resp *http.Response) {
	if sid := resp.Header.Get(HeaderSessionID); sid != "" {
		t.mu.Lock()
		t.sessionID = sid
		t.mu.Unlock()
	}
}

// readSSEResponse reads events until the response for reqID arrives.
// Other messages are forwarded to Receive.
func (t *HTTPTransport) readSSEResponse(body io.Reader, reqID int64) (*Response, error) {
	var found *Response
	err := sse.Each(body, func(ev *sse.Event) bool {
		if ev.Data == "" {
			return true
		}
		var resp Response
		if err := json.Unmarshal([]byte(ev.Data), &resp); err == nil && resp.ID == reqID && (resp.Result != nil || resp.Error != nil) {
			found = &resp
			return false
		}
		t.trySendIncoming(json.RawMessage(ev.Data))
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("reading SSE stream: %w", err)
	}
	if found == nil {
		return nil, fmt.Errorf("SSE stream ended without response for ID %d", reqID)
	}
	return found, nil
}

// trySendIncoming never blocks and drops messages once the transport is closed.
func (t *HTTPTransport) trySendIncoming(msg json.RawMessage) {
	select {
	case <-t.done:
		return
	default:
	}
	select {
	case t.incoming <- msg:
	default:
		pilog.Debug("mcp: dropping server message, receive buffer full")
	}
}

func (t *HTTPTransport) listen(ctx context.Context) {
	defer t.listenWg.Done()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint, nil)
	if err != nil {
		return
	}
	t.setHeaders(req)
	req.Header.Set(headerAccept, contentTypeSSE)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		pilog.Debug("mcp: listening stream refused: HTTP %d", resp.StatusCode)
		return
	}

	_ = sse.Each(resp.Body, func(ev *sse.Event) bool {
		select {
		case <-ctx.Done():
			return false
		case <-t.done:
			return false
		default:
		}
		if ev.Data != "" {
			t.trySendIncoming(json.RawMessage(ev.Data))
		}
		return true
	})
}

// statusError builds an error from a failed HTTP reply, decoding a
// JSON-RPC error body when there is one.
func statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var env struct {
		Error *RPCError `json:"error"`
	}
	if json.Unmarshal(data, &env) == nil && env.Error != nil {
		return fmt.Errorf("HTTP %d: %w", resp.StatusCode, env.Error)
	}
	return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
}
