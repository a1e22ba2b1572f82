// ABOUTME: Agent loop: prompt -> stream -> tool-call round -> repeat until the model answers
// ABOUTME: Records every tool-call round; read-only tools in a round run concurrently

package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	pilog "github.com/mauromedda/api-tryit-go/internal/log"
	"github.com/mauromedda/api-tryit-go/pkg/ai"
)

// DefaultMaxRounds bounds how many tool-call rounds a single run may take.
const DefaultMaxRounds = 10

// ErrNoResult is returned when a model stream ends without a final message.
var ErrNoResult = errors.New("stream completed without result")

// Agent orchestrates the prompt-stream-tool loop against an LLM provider.
type Agent struct {
	provider  ai.ApiProvider
	model     *ai.Model
	tools     map[string]Tool
	order     []string
	maxRounds int
}

// Option configures an Agent.
type Option func(*Agent)

// WithMaxRounds overrides DefaultMaxRounds.
func WithMaxRounds(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxRounds = n
		}
	}
}

// New creates an Agent wired to the given provider, model, and tool set.
func New(provider ai.ApiProvider, model *ai.Model, tools []Tool, opts ...Option) *Agent {
	a := &Agent{
		provider:  provider,
		model:     model,
		tools:     make(map[string]Tool, len(tools)),
		maxRounds: DefaultMaxRounds,
	}
	for _, t := range tools {
		name := t.Info().Name
		if _, dup := a.tools[name]; !dup {
			a.order = append(a.order, name)
		}
		a.tools[name] = t
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Definitions returns the ai.Tool descriptions in registration order.
func (a *Agent) Definitions() []ai.Tool {
	out := make([]ai.Tool, 0, len(a.order))
	for _, name := range a.order {
		info := a.tools[name].Info()
		schema := info.Parameters
		if schema == nil {
			schema = json.RawMessage(`{"type":"object","properties":{}}`)
		}
		out = append(out, ai.Tool{Name: info.Name, Description: info.Description, Parameters: schema})
	}
	return out
}

// Run executes the loop synchronously, reporting progress through onEvent
// (which may be nil). llmCtx.Messages grows with the assistant and tool
// messages of the run. The returned Result is non-nil whenever err is nil.
func (a *Agent) Run(ctx context.Context, llmCtx *ai.Context, opts *ai.StreamOptions, onEvent func(AgentEvent)) (*Result, error) {
	if onEvent == nil {
		onEvent = func(AgentEvent) {}
	}

	if len(a.tools) > 0 && a.model.SupportsTools {
		llmCtx.Tools = a.Definitions()
	}

	onEvent(AgentEvent{Type: EventAgentStart})
	defer onEvent(AgentEvent{Type: EventAgentEnd})

	result := &Result{}
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("agent cancelled: %w", err)
		}

		msg, err := a.streamResponse(ctx, llmCtx, opts, onEvent)
		if err != nil {
			return nil, fmt.Errorf("streaming response: %w", err)
		}
		result.Message = msg
		result.Usage.InputTokens += msg.Usage.InputTokens
		result.Usage.OutputTokens += msg.Usage.OutputTokens

		calls := extractToolCalls(msg)
		llmCtx.Messages = append(llmCtx.Messages, ai.Message{Role: ai.RoleAssistant, Content: msg.Content})
		if len(calls) == 0 {
			return result, nil
		}
		if len(result.Rounds) >= a.maxRounds {
			pilog.Warn("agent: stopping after %d tool-call rounds", a.maxRounds)
			result.RoundLimitHit = true
			return result, nil
		}

		result.Rounds = append(result.Rounds, ToolCallRound{Calls: calls})
		results := a.executeTools(ctx, calls, onEvent)
		llmCtx.Messages = append(llmCtx.Messages, toolResultMessage(calls, results))
	}
}

// streamResponse streams one model response, forwarding text deltas.
func (a *Agent) streamResponse(ctx context.Context, llmCtx *ai.Context, opts *ai.StreamOptions, onEvent func(AgentEvent)) (*ai.AssistantMessage, error) {
	stream := a.provider.Stream(ctx, a.model, llmCtx, opts)

	for evt := range stream.Events() {
		if evt.Type == ai.EventContentDelta && evt.Text != "" {
			onEvent(AgentEvent{Type: EventAssistantText, Text: evt.Text})
		}
	}

	if err := stream.Err(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled during stream: %w", err)
	}
	result := stream.Result()
	if result == nil {
		return nil, ErrNoResult
	}
	return result, nil
}

// extractToolCalls pulls tool-use content blocks from the assistant message.
func extractToolCalls(msg *ai.AssistantMessage) []ToolCall {
	var calls []ToolCall
	for _, c := range msg.Content {
		if c.Type == ai.ContentToolUse {
			calls = append(calls, ToolCall{ID: c.ID, Name: c.Name, Args: c.Input})
		}
	}
	return calls
}

// executeTools runs one round. Read-only tools run concurrently via
// errgroup, the rest sequentially afterwards. Results keep call order.
func (a *Agent) executeTools(ctx context.Context, calls []ToolCall, onEvent func(AgentEvent)) []ToolResult {
	results := make([]ToolResult, len(calls))

	for i, tc := range calls {
		if t, ok := a.tools[tc.Name]; ok {
			onEvent(AgentEvent{Type: EventToolPrepare, ToolID: tc.ID, ToolName: tc.Name, ToolArgs: tc.Args, Text: t.Prepare(tc.Args)})
		} else {
			results[i] = ToolResult{Content: fmt.Sprintf("unknown tool: %s", tc.Name), IsError: true}
		}
	}

	// onEvent is not assumed to be goroutine-safe; concurrent tools report
	// through a serializing wrapper.
	var mu sync.Mutex
	emit := func(ev AgentEvent) {
		mu.Lock()
		defer mu.Unlock()
		onEvent(ev)
	}

	var g errgroup.Group
	for i, tc := range calls {
		t, ok := a.tools[tc.Name]
		if !ok || !t.Info().ReadOnly {
			continue
		}
		g.Go(func() error {
			results[i] = a.executeSingleTool(ctx, t, tc, emit)
			return nil
		})
	}
	_ = g.Wait()

	for i, tc := range calls {
		t, ok := a.tools[tc.Name]
		if !ok || t.Info().ReadOnly {
			continue
		}
		results[i] = a.executeSingleTool(ctx, t, tc, emit)
	}
	return results
}

// executeSingleTool validates arguments, runs the tool, and reports start/end.
func (a *Agent) executeSingleTool(ctx context.Context, t Tool, tc ToolCall, emit func(AgentEvent)) ToolResult {
	emit(AgentEvent{Type: EventToolStart, ToolID: tc.ID, ToolName: tc.Name, ToolArgs: tc.Args})

	start := time.Now()
	var result ToolResult
	if err := ValidateToolArgs(t.Info(), tc.Args); err != nil {
		result = ToolResult{Content: err.Error(), IsError: true}
	} else {
		var err error
		result, err = t.Invoke(ctx, tc.ID, tc.Args)
		if err != nil {
			result = ToolResult{Content: err.Error(), IsError: true}
		}
	}
	result.Duration = time.Since(start)

	emit(AgentEvent{Type: EventToolEnd, ToolID: tc.ID, ToolName: tc.Name, ToolArgs: tc.Args, ToolResult: &result})
	return result
}

// toolResultMessage builds the user message carrying a round's results.
func toolResultMessage(calls []ToolCall, results []ToolResult) ai.Message {
	contents := make([]ai.Content, 0, len(results))
	for i, r := range results {
		contents = append(contents, ai.Content{
			Type:    ai.ContentToolResult,
			ID:      calls[i].ID,
			Name:    calls[i].Name,
			Result:  r.Content,
			IsError: r.IsError,
		})
	}
	return ai.Message{Role: ai.RoleUser, Content: contents}
}
