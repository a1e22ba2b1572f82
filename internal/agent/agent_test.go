// ABOUTME: Tests for the agent loop with a mock provider
// ABOUTME: Covers text responses, tool rounds, parallel read-only execution, errors, and abort

package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mauromedda/api-tryit-go/pkg/ai"
)

// mockProvider replays canned responses, one per Stream call.
type mockProvider struct {
	responses []*ai.AssistantMessage
	failAt    int // 1-based call index that fails; 0 disables
	callCount atomic.Int32
	seen      []ai.Context
	mu        sync.Mutex
}

func (m *mockProvider) Api() ai.Api { return ai.ApiOpenAI }

func (m *mockProvider) Stream(_ context.Context, _ *ai.Model, llmCtx *ai.Context, _ *ai.StreamOptions) *ai.EventStream {
	idx := int(m.callCount.Add(1)) - 1
	m.mu.Lock()
	m.seen = append(m.seen, ai.Context{Messages: append([]ai.Message(nil), llmCtx.Messages...), Tools: llmCtx.Tools})
	m.mu.Unlock()

	stream := ai.NewEventStream(16)
	go func() {
		if m.failAt == idx+1 {
			stream.FinishWithError(errors.New("upstream exploded"))
			return
		}
		if idx >= len(m.responses) {
			stream.FinishWithError(fmt.Errorf("no more mock responses"))
			return
		}
		msg := m.responses[idx]
		for _, c := range msg.Content {
			if c.Type == ai.ContentText {
				stream.Send(ai.StreamEvent{Type: ai.EventContentDelta, Text: c.Text})
			}
		}
		stream.Finish(msg)
	}()
	return stream
}

// funcTool adapts a function to the Tool interface.
type funcTool struct {
	info   ToolInfo
	invoke func(ctx context.Context, args json.RawMessage) (ToolResult, error)
}

func (f *funcTool) Info() ToolInfo { return f.info }

func (f *funcTool) Prepare(args json.RawMessage) string {
	return "Running " + f.info.Name + " " + string(args)
}

func (f *funcTool) Invoke(ctx context.Context, _ string, args json.RawMessage) (ToolResult, error) {
	return f.invoke(ctx, args)
}

func newTestModel() *ai.Model {
	return &ai.Model{ID: "test-model", Name: "Test", Api: ai.ApiOpenAI, SupportsTools: true}
}

func newTestContext() *ai.Context {
	return &ai.Context{
		System:   "You are a test assistant.",
		Messages: []ai.Message{ai.NewTextMessage(ai.RoleUser, "hello")},
	}
}

func textResponse(text string) *ai.AssistantMessage {
	return &ai.AssistantMessage{
		Content:    []ai.Content{{Type: ai.ContentText, Text: text}},
		StopReason: ai.StopEndTurn,
		Usage:      ai.Usage{InputTokens: 3, OutputTokens: 2},
	}
}

func toolResponse(calls ...ai.Content) *ai.AssistantMessage {
	return &ai.AssistantMessage{Content: calls, StopReason: ai.StopToolUse, Usage: ai.Usage{InputTokens: 5, OutputTokens: 1}}
}

func toolUse(id, name, input string) ai.Content {
	return ai.Content{Type: ai.ContentToolUse, ID: id, Name: name, Input: json.RawMessage(input)}
}

func TestAgent_SimpleTextResponse(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{responses: []*ai.AssistantMessage{textResponse("Hello!")}}
	ag := New(provider, newTestModel(), nil)

	var text strings.Builder
	res, err := ag.Run(context.Background(), newTestContext(), nil, func(ev AgentEvent) {
		if ev.Type == EventAssistantText {
			text.WriteString(ev.Text)
		}
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if text.String() != "Hello!" {
		t.Errorf("streamed text = %q, want %q", text.String(), "Hello!")
	}
	if len(res.Rounds) != 0 {
		t.Errorf("Rounds = %d, want 0", len(res.Rounds))
	}
	if len(provider.seen[0].Tools) != 0 {
		t.Error("tools sent although none are registered")
	}
}

func TestAgent_RecordsToolCallRounds(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{responses: []*ai.AssistantMessage{
		toolResponse(toolUse("c1", "fetch", `{"url":"http://a"}`)),
		toolResponse(toolUse("c2", "fetch", `{"url":"http://b"}`), toolUse("c3", "fetch", `{"url":"http://c"}`)),
		textResponse("all good"),
	}}
	fetch := &funcTool{
		info: ToolInfo{Name: "fetch", Parameters: json.RawMessage(`{"type":"object","required":["url"]}`), ReadOnly: true},
		invoke: func(_ context.Context, args json.RawMessage) (ToolResult, error) {
			return ToolResult{Content: "ok " + string(args)}, nil
		},
	}

	var prepares []string
	res, err := New(provider, newTestModel(), []Tool{fetch}).Run(context.Background(), newTestContext(), nil, func(ev AgentEvent) {
		if ev.Type == EventToolPrepare {
			prepares = append(prepares, ev.Text)
		}
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(res.Rounds) != 2 {
		t.Fatalf("Rounds = %d, want 2", len(res.Rounds))
	}
	if len(res.Rounds[1].Calls) != 2 || res.Rounds[1].Calls[1].ID != "c3" {
		t.Errorf("second round = %+v", res.Rounds[1])
	}
	if len(prepares) != 3 || prepares[0] != `Running fetch {"url":"http://a"}` {
		t.Errorf("prepare messages = %q", prepares)
	}
	if res.Usage.InputTokens != 13 || res.Usage.OutputTokens != 4 {
		t.Errorf("Usage = %+v, want summed usage", res.Usage)
	}
	if res.Message.Content[0].Text != "all good" {
		t.Errorf("final message = %+v", res.Message)
	}

	// Third call sees both rounds: user, asst, results, asst, results.
	last := provider.seen[2].Messages
	if len(last) != 5 {
		t.Fatalf("third call saw %d messages, want 5", len(last))
	}
	results := last[4].Content
	if len(results) != 2 || results[0].ID != "c2" || results[1].ID != "c3" {
		t.Errorf("tool results out of call order: %+v", results)
	}
	if len(provider.seen[0].Tools) != 1 || provider.seen[0].Tools[0].Name != "fetch" {
		t.Errorf("tool definitions = %+v", provider.seen[0].Tools)
	}
}

func TestAgent_ToolErrorsBecomeResults(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{responses: []*ai.AssistantMessage{
		toolResponse(
			toolUse("c1", "boom", `{}`),
			toolUse("c2", "missing", `{}`),
			toolUse("c3", "strict", `{}`),
		),
		textResponse("recovered"),
	}}
	boom := &funcTool{
		info: ToolInfo{Name: "boom"},
		invoke: func(context.Context, json.RawMessage) (ToolResult, error) {
			return ToolResult{}, errors.New("kaboom")
		},
	}
	strict := &funcTool{
		info: ToolInfo{Name: "strict", Parameters: json.RawMessage(`{"required":["method"]}`)},
		invoke: func(context.Context, json.RawMessage) (ToolResult, error) {
			t.Error("strict tool invoked without required args")
			return ToolResult{}, nil
		},
	}

	_, err := New(provider, newTestModel(), []Tool{boom, strict}).Run(context.Background(), newTestContext(), nil, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	results := provider.seen[1].Messages[2].Content
	want := []string{"kaboom", "unknown tool: missing", `missing required parameter "method" for tool strict`}
	for i, w := range want {
		if !results[i].IsError || results[i].Result != w {
			t.Errorf("result %d = %+v, want error %q", i, results[i], w)
		}
	}
}

func TestAgent_ReadOnlyToolsRunInParallel(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{responses: []*ai.AssistantMessage{
		toolResponse(toolUse("t1", "slow_a", `{}`), toolUse("t2", "slow_b", `{}`)),
		textResponse("done"),
	}}

	var running, maxConcurrent atomic.Int32
	makeTool := func(name string) Tool {
		return &funcTool{
			info: ToolInfo{Name: name, ReadOnly: true},
			invoke: func(context.Context, json.RawMessage) (ToolResult, error) {
				cur := running.Add(1)
				for {
					prev := maxConcurrent.Load()
					if cur <= prev || maxConcurrent.CompareAndSwap(prev, cur) {
						break
					}
				}
				time.Sleep(50 * time.Millisecond)
				running.Add(-1)
				return ToolResult{Content: "ok"}, nil
			},
		}
	}

	ag := New(provider, newTestModel(), []Tool{makeTool("slow_a"), makeTool("slow_b")})
	if _, err := ag.Run(context.Background(), newTestContext(), nil, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if maxConcurrent.Load() < 2 {
		t.Errorf("expected concurrent execution, max concurrent = %d", maxConcurrent.Load())
	}
}

func TestAgent_StreamErrorFailsRun(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{failAt: 1}
	var events []AgentEventType
	_, err := New(provider, newTestModel(), nil).Run(context.Background(), newTestContext(), nil, func(ev AgentEvent) {
		events = append(events, ev.Type)
	})
	if err == nil || !strings.Contains(err.Error(), "upstream exploded") {
		t.Fatalf("err = %v, want upstream error", err)
	}
	if len(events) < 2 || events[0] != EventAgentStart || events[len(events)-1] != EventAgentEnd {
		t.Errorf("events = %v, want start ... end", events)
	}
}

func TestAgent_RoundLimit(t *testing.T) {
	t.Parallel()

	loop := toolResponse(toolUse("c", "fetch", `{}`))
	provider := &mockProvider{responses: []*ai.AssistantMessage{loop, loop, loop}}
	fetch := &funcTool{
		info:   ToolInfo{Name: "fetch"},
		invoke: func(context.Context, json.RawMessage) (ToolResult, error) { return ToolResult{Content: "again"}, nil },
	}

	res, err := New(provider, newTestModel(), []Tool{fetch}, WithMaxRounds(2)).Run(context.Background(), newTestContext(), nil, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.RoundLimitHit || len(res.Rounds) != 2 {
		t.Errorf("RoundLimitHit = %v, rounds = %d; want true, 2", res.RoundLimitHit, len(res.Rounds))
	}
}

func TestAgent_ToolsWithheldFromModelsWithoutToolSupport(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{responses: []*ai.AssistantMessage{textResponse("plain")}}
	model := newTestModel()
	model.SupportsTools = false
	fetch := &funcTool{info: ToolInfo{Name: "fetch"}}

	if _, err := New(provider, model, []Tool{fetch}).Run(context.Background(), newTestContext(), nil, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(provider.seen[0].Tools) != 0 {
		t.Errorf("tools sent to a model without tool support: %+v", provider.seen[0].Tools)
	}
}

func TestAgent_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	provider := &mockProvider{responses: []*ai.AssistantMessage{textResponse("never")}}
	_, err := New(provider, newTestModel(), nil).Run(ctx, newTestContext(), nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if provider.callCount.Load() != 0 {
		t.Error("provider called after cancellation")
	}
}
