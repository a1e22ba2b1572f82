// ABOUTME: Conversion between ai message types and the Chat Completions request format
// ABOUTME: Tool results become role=tool messages; assistant tool uses become tool_calls

package openai

import (
	"encoding/json"

	"github.com/mauromedda/api-tryit-go/pkg/ai"
)

type chatMessage struct {
	Role       string        `json:"role"`
	Content    string        `json:"content"`
	ToolCalls  []toolCallReq `json:"tool_calls,omitempty"`
	ToolCallID string        `json:"tool_call_id,omitempty"`
}

type toolCallReq struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Function toolCallFuncReq `json:"function"`
}

type toolCallFuncReq struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type toolDef struct {
	Type     string      `json:"type"`
	Function toolFuncDef `json:"function"`
}

type toolFuncDef struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

type chatRequest struct {
	Model         string         `json:"model"`
	Messages      []chatMessage  `json:"messages"`
	Tools         []toolDef      `json:"tools,omitempty"`
	Stream        bool           `json:"stream"`
	StreamOptions map[string]any `json:"stream_options,omitempty"`
	MaxTokens     int            `json:"max_tokens,omitempty"`
	Temperature   *float64       `json:"temperature,omitempty"`
}

func buildRequestBody(model *ai.Model, ctx *ai.Context, opts *ai.StreamOptions) chatRequest {
	req := chatRequest{
		Model:         model.ID,
		Messages:      convertMessages(ctx),
		Stream:        true,
		StreamOptions: map[string]any{"include_usage": true},
	}
	if len(ctx.Tools) > 0 && model.SupportsTools {
		req.Tools = convertTools(ctx.Tools)
	}
	if opts != nil {
		req.MaxTokens = opts.MaxTokens
		if opts.Temperature > 0 {
			t := opts.Temperature
			req.Temperature = &t
		}
	}
	return req
}

func convertMessages(ctx *ai.Context) []chatMessage {
	var msgs []chatMessage

	if ctx.System != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: ctx.System})
	}

	for _, m := range ctx.Messages {
		var (
			text      string
			toolCalls []toolCallReq
			hasText   bool
		)
		for _, c := range m.Content {
			switch c.Type {
			case ai.ContentText:
				text += c.Text
				hasText = true
			case ai.ContentToolUse:
				args := string(c.Input)
				if args == "" {
					args = "{}"
				}
				toolCalls = append(toolCalls, toolCallReq{
					ID:       c.ID,
					Type:     "function",
					Function: toolCallFuncReq{Name: c.Name, Arguments: args},
				})
			case ai.ContentToolResult:
				msgs = append(msgs, chatMessage{
					Role:       "tool",
					Content:    c.Result,
					ToolCallID: c.ID,
				})
			}
		}

		if hasText || len(toolCalls) > 0 {
			msgs = append(msgs, chatMessage{
				Role:      string(m.Role),
				Content:   text,
				ToolCalls: toolCalls,
			})
		}
	}

	return msgs
}

func convertTools(tools []ai.Tool) []toolDef {
	defs := make([]toolDef, len(tools))
	for i, t := range tools {
		params := t.Parameters
		if len(params) == 0 {
			params = json.RawMessage(`{"type":"object","properties":{}}`)
		}
		defs[i] = toolDef{
			Type: "function",
			Function: toolFuncDef{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  params,
			},
		}
	}
	return defs
}

func processToolCallDelta(accum []toolCallAccumulator, delta toolCallDelta, stream *ai.EventStream) []toolCallAccumulator {
	for len(accum) <= delta.Index {
		accum = append(accum, toolCallAccumulator{})
	}

	tc := &accum[delta.Index]
	if delta.ID != "" {
		tc.id = delta.ID
	}
	if delta.Function.Name != "" {
		tc.name = delta.Function.Name
		stream.Send(ai.StreamEvent{
			Type:     ai.EventToolUseStart,
			ToolID:   tc.id,
			ToolName: tc.name,
		})
	}
	if delta.Function.Arguments != "" {
		tc.args += delta.Function.Arguments
		stream.Send(ai.StreamEvent{
			Type:      ai.EventToolUseDelta,
			ToolID:    tc.id,
			ToolInput: delta.Function.Arguments,
		})
	}

	return accum
}
