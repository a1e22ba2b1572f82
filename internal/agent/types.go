// ABOUTME: Core agent types: the Tool contract, events, tool-call rounds, and run results
// ABOUTME: Wire-format agnostic; used by the agent loop, tool implementations, and chat

package agent

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mauromedda/api-tryit-go/pkg/ai"
)

// Tool is a capability the model can invoke during a turn.
type Tool interface {
	// Info describes the tool to the model.
	Info() ToolInfo
	// Prepare returns a human-readable progress message for a pending call.
	Prepare(args json.RawMessage) string
	// Invoke runs the tool. A returned error is reported to the model as an
	// error result; it does not end the turn.
	Invoke(ctx context.Context, id string, args json.RawMessage) (ToolResult, error)
}

// ToolInfo is the model-facing description of a tool.
type ToolInfo struct {
	Name        string
	Description string
	Parameters  json.RawMessage // JSON Schema
	ReadOnly    bool            // read-only tools in one round run concurrently
}

// ToolResult holds the outcome of a single tool execution.
type ToolResult struct {
	Content  string
	IsError  bool
	Duration time.Duration
}

// ToolCall is one invocation requested by the model.
type ToolCall struct {
	ID   string
	Name string
	Args json.RawMessage
}

// ToolCallRound is the batch of tool calls from one model response.
type ToolCallRound struct {
	Calls []ToolCall
}

// Result summarizes a completed run.
type Result struct {
	// Message is the final assistant response.
	Message *ai.AssistantMessage
	// Rounds lists every tool-call round in order; empty when the model
	// answered without tools.
	Rounds []ToolCallRound
	// Usage sums token usage across all model calls.
	Usage ai.Usage
	// RoundLimitHit is set when the loop stopped at the round limit with
	// tool calls still pending.
	RoundLimitHit bool
}

// AgentEventType identifies the kind of agent event emitted during execution.
type AgentEventType int

const (
	EventAgentStart    AgentEventType = iota // Agent loop started
	EventAgentEnd                            // Agent loop finished
	EventAssistantText                       // Streamed text from the model
	EventToolPrepare                         // Tool about to run; Text holds the progress message
	EventToolStart                           // Tool execution began
	EventToolEnd                             // Tool execution completed
)

// AgentEvent represents a single event emitted by the agent loop.
type AgentEvent struct {
	Type       AgentEventType
	Text       string
	ToolID     string
	ToolName   string
	ToolArgs   json.RawMessage
	ToolResult *ToolResult
	Error      error
}
