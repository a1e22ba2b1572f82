// ABOUTME: Core AI SDK types: Message, Content, Tool, Usage, Model, StopReason
// ABOUTME: Shared across providers and the chat helper; wire-format agnostic

package ai

import "encoding/json"

// Role represents a message role in the conversation.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// StopReason indicates why the model stopped generating.
type StopReason string

const (
	StopEndTurn   StopReason = "end_turn"
	StopMaxTokens StopReason = "max_tokens"
	StopToolUse   StopReason = "tool_use"
	StopStop      StopReason = "stop"
)

// ContentType identifies the kind of content block.
type ContentType string

const (
	ContentText       ContentType = "text"
	ContentToolUse    ContentType = "tool_use"
	ContentToolResult ContentType = "tool_result"
)

// Content represents a content block within a message.
type Content struct {
	Type    ContentType     `json:"type"`
	Text    string          `json:"text,omitempty"`
	ID      string          `json:"id,omitempty"`       // Tool use/result ID
	Name    string          `json:"name,omitempty"`     // Tool name
	Input   json.RawMessage `json:"input,omitempty"`    // Tool use input
	Result  string          `json:"result,omitempty"`   // Tool result content
	IsError bool            `json:"is_error,omitempty"` // Tool result error flag
}

// Message represents a conversation message.
type Message struct {
	Role    Role      `json:"role"`
	Content []Content `json:"content"`
}

// NewTextMessage creates a message with a single text content block.
func NewTextMessage(role Role, text string) Message {
	return Message{
		Role:    role,
		Content: []Content{{Type: ContentText, Text: text}},
	}
}

// Text concatenates the text blocks of the message.
func (m Message) Text() string {
	var out string
	for _, c := range m.Content {
		if c.Type == ContentText {
			out += c.Text
		}
	}
	return out
}

// Usage tracks token consumption.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Tool defines a tool the model can invoke.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"input_schema"` // JSON Schema
}

// Api identifies an API provider wire format.
type Api string

const (
	ApiOpenAI Api = "openai"
)

// Model defines a model's metadata.
type Model struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Api             Api    `json:"api"`
	Vendor          string `json:"vendor,omitempty"` // e.g. "openai", "ollama"
	MaxOutputTokens int    `json:"max_output_tokens"`
	ContextWindow   int    `json:"context_window,omitempty"`
	SupportsTools   bool   `json:"supports_tools"`
	BaseURL         string `json:"base_url,omitempty"`
}

// Context holds the messages and tools for an LLM call.
type Context struct {
	System   string    `json:"system,omitempty"`
	Messages []Message `json:"messages"`
	Tools    []Tool    `json:"tools,omitempty"`
}

// StreamOptions configures streaming behavior.
type StreamOptions struct {
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// AssistantMessage is the final result of a streaming response.
type AssistantMessage struct {
	Content    []Content  `json:"content"`
	StopReason StopReason `json:"stop_reason"`
	Usage      Usage      `json:"usage"`
	Model      string     `json:"model"`
}
