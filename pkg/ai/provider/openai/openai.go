// ABOUTME: OpenAI Chat Completions streaming provider (works with any compatible endpoint)
// ABOUTME: Implements ai.ApiProvider; deltas are decoded from the SSE response body

package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	pilog "github.com/mauromedda/api-tryit-go/internal/log"
	"github.com/mauromedda/api-tryit-go/internal/sse"
	"github.com/mauromedda/api-tryit-go/pkg/ai"
	"github.com/mauromedda/api-tryit-go/pkg/ai/internal/httputil"
)

const (
	// DefaultBaseURL is the public OpenAI endpoint.
	DefaultBaseURL     = "https://api.openai.com"
	chatCompletionPath = "/v1/chat/completions"
)

// Provider implements the OpenAI Chat Completions API.
type Provider struct {
	client *httputil.Client
}

// Option configures a Provider.
type Option func(*[]httputil.Option)

// WithHTTPClient sends requests through hc instead of the default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(opts *[]httputil.Option) {
		*opts = append(*opts, httputil.WithHTTPClient(hc))
	}
}

// New creates a provider. An empty baseURL selects DefaultBaseURL.
func New(apiKey, baseURL string, opts ...Option) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	clientOpts := []httputil.Option{
		httputil.WithHeader("Content-Type", "application/json"),
		httputil.WithHeader("Accept", "text/event-stream"),
	}
	if apiKey != "" {
		clientOpts = append(clientOpts, httputil.WithHeader("Authorization", "Bearer "+apiKey))
	}
	for _, opt := range opts {
		opt(&clientOpts)
	}

	return &Provider{
		client: httputil.NewClient(httputil.NormalizeBaseURL(baseURL), clientOpts...),
	}
}

// Api returns the provider identifier.
func (p *Provider) Api() ai.Api {
	return ai.ApiOpenAI
}

// Stream initiates a streaming chat completion.
func (p *Provider) Stream(ctx context.Context, model *ai.Model, llmCtx *ai.Context, opts *ai.StreamOptions) *ai.EventStream {
	stream := ai.NewEventStream(64)

	go func() {
		if err := p.doStream(ctx, model, llmCtx, opts, stream); err != nil {
			stream.FinishWithError(err)
		}
	}()

	return stream
}

func (p *Provider) doStream(ctx context.Context, model *ai.Model, llmCtx *ai.Context, opts *ai.StreamOptions, stream *ai.EventStream) error {
	bodyBytes, err := json.Marshal(buildRequestBody(model, llmCtx, opts))
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	pilog.Debug("http: POST %s%s model=%s", p.client.BaseURL(), chatCompletionPath, model.ID)
	reader, resp, err := p.client.StreamSSE(ctx, http.MethodPost, chatCompletionPath, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()
	pilog.Debug("http: POST %s%s -> %d", p.client.BaseURL(), chatCompletionPath, resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: string(errBody)}
	}

	p.processSSE(reader, model, stream)
	return nil
}

// APIError reports a non-200 response from the completions endpoint.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openai API error (status %d): %s", e.StatusCode, e.Body)
}

func (p *Provider) processSSE(reader *sse.Reader, model *ai.Model, stream *ai.EventStream) {
	result := ai.AssistantMessage{Model: model.ID}
	var toolCalls []toolCallAccumulator

	for {
		event, err := reader.Next()
		if err != nil {
			if err != io.EOF {
				stream.Send(ai.StreamEvent{Type: ai.EventError, Error: fmt.Errorf("reading stream: %w", err)})
			}
			break
		}
		if event.Data == "[DONE]" {
			break
		}

		var chunk chatCompletionChunk
		if err := json.Unmarshal([]byte(event.Data), &chunk); err != nil {
			pilog.Debug("openai: skipping undecodable chunk: %v", err)
			continue
		}
		if chunk.Error != nil {
			stream.Send(ai.StreamEvent{Type: ai.EventError, Error: fmt.Errorf("openai stream error: %s", chunk.Error.Message)})
			break
		}

		for _, choice := range chunk.Choices {
			if delta := choice.Delta.Content; delta != "" {
				stream.Send(ai.StreamEvent{Type: ai.EventContentDelta, Text: delta})
				appendTextContent(&result, delta)
			}
			for _, tc := range choice.Delta.ToolCalls {
				toolCalls = processToolCallDelta(toolCalls, tc, stream)
			}
			if choice.FinishReason != "" {
				result.StopReason = mapFinishReason(choice.FinishReason)
			}
		}

		// Usage arrives on the final chunk, which may have no choices.
		if chunk.Usage != nil {
			result.Usage = ai.Usage{
				InputTokens:  chunk.Usage.PromptTokens,
				OutputTokens: chunk.Usage.CompletionTokens,
			}
		}
	}

	for _, tc := range toolCalls {
		args := tc.args
		if args == "" {
			args = "{}"
		}
		result.Content = append(result.Content, ai.Content{
			Type:  ai.ContentToolUse,
			ID:    tc.id,
			Name:  tc.name,
			Input: json.RawMessage(args),
		})
	}
	if result.StopReason == "" {
		result.StopReason = ai.StopEndTurn
	}

	stream.Send(ai.StreamEvent{Type: ai.EventMessageDone, StopReason: result.StopReason, Usage: &result.Usage})
	stream.Finish(&result)
}

func appendTextContent(msg *ai.AssistantMessage, text string) {
	for i := range msg.Content {
		if msg.Content[i].Type == ai.ContentText {
			msg.Content[i].Text += text
			return
		}
	}
	msg.Content = append(msg.Content, ai.Content{Type: ai.ContentText, Text: text})
}

func mapFinishReason(reason string) ai.StopReason {
	switch reason {
	case "stop":
		return ai.StopEndTurn
	case "length":
		return ai.StopMaxTokens
	case "tool_calls", "function_call":
		return ai.StopToolUse
	default:
		return ai.StopStop
	}
}
