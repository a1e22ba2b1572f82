// ABOUTME: Protocol server exposing the try-resource tool via the MCP go-sdk
// ABOUTME: Input schema is inferred from tryResourceInput and enforced by the SDK

package mcp

import (
	"context"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	pilog "github.com/mauromedda/api-tryit-go/internal/log"
	"github.com/mauromedda/api-tryit-go/internal/tryit"
)

// Server identity reported in the initialize handshake.
const (
	ServerName    = "api-tryit-mcp-server"
	ServerVersion = "1.0.0"
	TryResource   = "try-resource"
)

type tryResourceInput struct {
	ResourceURL string `json:"resourceUrl" jsonschema:"URL of the resource to request" validate:"required"`
	Method      string `json:"method" jsonschema:"HTTP method, e.g. GET" validate:"required"`
}

var (
	inputValidator     *validator.Validate
	inputValidatorOnce sync.Once
)

func validatorInstance() *validator.Validate {
	inputValidatorOnce.Do(func() {
		inputValidator = validator.New(validator.WithRequiredStructEnabled())
	})
	return inputValidator
}

// NewServer creates the protocol server. Requests are sent with client.
func NewServer(client *tryit.Client) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: ServerVersion}, nil)
	mcp.AddTool(server, &mcp.Tool{
		Name:        TryResource,
		Title:       "Try Resource",
		Description: "Sends a request to try a resource",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, tryResourceHandler(client))
	return server
}

func tryResourceHandler(client *tryit.Client) mcp.ToolHandlerFor[tryResourceInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in tryResourceInput) (*mcp.CallToolResult, any, error) {
		in.ResourceURL = strings.TrimSpace(in.ResourceURL)
		in.Method = strings.TrimSpace(in.Method)
		if err := validatorInstance().Struct(in); err != nil {
			return errorResult(ErrMissingArguments.Error()), nil, nil
		}

		res := client.Do(ctx, tryit.Request{Method: in.Method, URL: in.ResourceURL})
		if !res.OK() {
			pilog.Debug("mcp: %s %s %s failed: %s", TryResource, in.Method, in.ResourceURL, res.Err)
			return errorResult(res.JSON()), nil, nil
		}

		body := string(res.Body)
		if res.Body == nil {
			body = `""`
		}
		return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: body}}}, nil, nil
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}
