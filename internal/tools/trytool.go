// ABOUTME: api-try-tool: lets a chat model send one HTTP request and read the outcome
// ABOUTME: Failures come back as ordinary results carrying the error envelope

package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mauromedda/api-tryit-go/internal/agent"
	"github.com/mauromedda/api-tryit-go/internal/tryit"
)

// TryToolName is the name the try-tool is registered under.
const TryToolName = "api-try-tool"

var tryToolSchema = json.RawMessage(`{
	"type": "object",
	"required": ["method", "url"],
	"properties": {
		"method":  {"type": "string", "description": "HTTP method, e.g. GET, POST, PUT, DELETE"},
		"url":     {"type": "string", "description": "Absolute URL of the API endpoint"},
		"headers": {"type": "object", "additionalProperties": {"type": "string"}, "description": "Request headers"},
		"body":    {"type": "string", "description": "Request body, usually JSON text"}
	}
}`)

// TryTool sends model-described HTTP requests through a tryit.Client.
type TryTool struct {
	client *tryit.Client
}

// NewTryTool creates the try-tool.
func NewTryTool(client *tryit.Client) *TryTool {
	return &TryTool{client: client}
}

// Info describes the tool to the model.
func (t *TryTool) Info() agent.ToolInfo {
	return agent.ToolInfo{
		Name:        TryToolName,
		Description: "Send an HTTP request to an API endpoint and return the response body and status code.",
		Parameters:  tryToolSchema,
		ReadOnly:    false, // requests may mutate the target API; keep model order
	}
}

// Prepare returns "Sending {METHOD} request to API {URL}...". A missing
// method renders as empty and a missing url as a single space.
func (t *TryTool) Prepare(args json.RawMessage) string {
	method := textField(args, "method")
	url := textField(args, "url")
	if url == "" {
		url = " "
	}
	return fmt.Sprintf("Sending %s request to API %s...", method, url)
}

type tryArgs struct {
	Method  string          `json:"method"`
	URL     string          `json:"url"`
	Headers map[string]any  `json:"headers"`
	Body    json.RawMessage `json:"body"`
}

// Invoke sends the request once. It never returns an error: bad arguments
// and upstream failures are reported in the result text.
func (t *TryTool) Invoke(ctx context.Context, _ string, args json.RawMessage) (agent.ToolResult, error) {
	var in tryArgs
	if err := json.Unmarshal(args, &in); err != nil {
		res := tryit.Result{Err: fmt.Sprintf("invalid arguments: %v", err)}
		return agent.ToolResult{Content: res.Text()}, nil
	}

	res := t.client.Do(ctx, tryit.Request{
		Method:  in.Method,
		URL:     in.URL,
		Headers: stringMap(in.Headers),
		Body:    rawString(in.Body),
	})
	return agent.ToolResult{Content: res.Text()}, nil
}
