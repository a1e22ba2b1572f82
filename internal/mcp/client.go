// ABOUTME: Minimal client: initialize handshake, tool listing, and tool calls
// ABOUTME: Backs the `call` subcommand that exercises a running server end to end

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// ProtocolVersion is the protocol revision the client asks for.
const ProtocolVersion = "2025-06-18"

// Client communicates with a single server.
type Client struct {
	transport Transport
	name      string
	version   string
	nextID    atomic.Int64

	mu              sync.RWMutex
	serverInfo      ServerInfo
	protocolVersion string
	tools           []ToolInfo

	ctx    context.Context
	cancel context.CancelFunc
	// toolSem limits concurrent ListTools refreshes to 1.
	toolSem chan struct{}
}

// NewClient creates a client identifying itself as name/version.
func NewClient(transport Transport, name, version string) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		transport: transport,
		name:      name,
		version:   version,
		ctx:       ctx,
		cancel:    cancel,
		toolSem:   make(chan struct{}, 1),
	}
}

func (c *Client) call(ctx context.Context, method string, params any) (*Response, error) {
	var raw json.RawMessage
	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("marshaling %s params: %w", method, err)
		}
		raw = b
	}
	resp, err := c.transport.Send(ctx, &Request{ID: c.nextID.Add(1), Method: method, Params: raw})
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", method, err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("%s: %w", method, resp.Error)
	}
	return resp, nil
}

// Connect performs the initialize handshake.
func (c *Client) Connect(ctx context.Context) error {
	resp, err := c.call(ctx, "initialize", map[string]any{
		"protocolVersion": ProtocolVersion,
		"capabilities":    map[string]any{},
		"clientInfo":      map[string]string{"name": c.name, "version": c.version},
	})
	if err != nil {
		return err
	}

	var result InitializeResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return fmt.Errorf("parsing initialize result: %w", err)
	}

	c.mu.Lock()
	c.serverInfo = result.ServerInfo
	c.protocolVersion = result.ProtocolVersion
	c.mu.Unlock()

	if v, ok := c.transport.(interface{ SetProtocolVersion(string) }); ok {
		v.SetProtocolVersion(result.ProtocolVersion)
	}

	if err := c.transport.Notify(ctx, &Notification{Method: "notifications/initialized"}); err != nil {
		return fmt.Errorf("initialized notification: %w", err)
	}

	if l, ok := c.transport.(interface{ StartListening() }); ok {
		l.StartListening()
	}
	go c.handleNotifications()
	return nil
}

// ListTools requests the tool list from the server.
func (c *Client) ListTools(ctx context.Context) ([]ToolInfo, error) {
	resp, err := c.call(ctx, "tools/list", nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Tools []ToolInfo `json:"tools"`
	}
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return nil, fmt.Errorf("parsing tools list: %w", err)
	}

	c.mu.Lock()
	c.tools = result.Tools
	c.mu.Unlock()
	return result.Tools, nil
}

// CallTool invokes a tool. A JSON-RPC error (for instance arguments that
// fail the tool's schema) is returned as an error result.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (ToolCallResult, error) {
	resp, err := c.transport.Send(ctx, &Request{
		ID:     c.nextID.Add(1),
		Method: "tools/call",
		Params: mustJSON(map[string]any{"name": name, "arguments": args}),
	})
	if err != nil {
		return ToolCallResult{}, fmt.Errorf("tools/call request: %w", err)
	}
	if resp.Error != nil {
		return ToolCallResult{IsError: true, Content: []ContentItem{
			{Type: "text", Text: resp.Error.Message},
		}}, nil
	}

	var result ToolCallResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return ToolCallResult{}, fmt.Errorf("parsing tool result: %w", err)
	}
	return result, nil
}

// Tools returns the last listed tools.
func (c *Client) Tools() []ToolInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tools
}

// ServerInfo returns the server information from the handshake.
func (c *Client) ServerInfo() ServerInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serverInfo
}

// NegotiatedVersion returns the protocol version the server chose.
func (c *Client) NegotiatedVersion() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.protocolVersion
}

// Close shuts down the client and transport.
func (c *Client) Close() error {
	c.cancel()
	return c.transport.Close()
}

// handleNotifications refreshes the tool list on list_changed.
func (c *Client) handleNotifications() {
	for msg := range c.transport.Receive() {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var notif Notification
		if err := json.Unmarshal(msg, &notif); err != nil {
			continue
		}
		if notif.Method != "notifications/tools/list_changed" {
			continue
		}
		// Skip if another refresh is already running.
		select {
		case c.toolSem <- struct{}{}:
		default:
			continue
		}
		go func() {
			defer func() { <-c.toolSem }()
			ctx, cancel := context.WithTimeout(c.ctx, 10*time.Second)
			defer cancel()
			_, _ = c.ListTools(ctx)
		}()
	}
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("marshal %T: %v", v, err))
	}
	return b
}
