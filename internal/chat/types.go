// ABOUTME: Chat participant types: request, history, response stream, result metadata
// ABOUTME: The host environment is modelled as the ResponseStream interface

package chat

import (
	"errors"

	"github.com/mauromedda/api-tryit-go/internal/agent"
	"github.com/mauromedda/api-tryit-go/pkg/ai"
)

// AutoModel asks the participant to pick the first model that succeeds.
const AutoModel = "auto"

// Fatal turn errors. The texts are shown to the user as-is.
var (
	ErrNoModels        = errors.New("No chat models are available.")
	ErrAllModelsFailed = errors.New("All chat models failed to process the request.")
)

// Request is one user turn.
type Request struct {
	Prompt string
	// Command is the slash command without the slash, e.g. "tryAPI".
	Command string
	// Model is AutoModel or the id of a specific model.
	Model string
	// References are files the user attached to the turn.
	References []string
}

// Turn is a completed exchange in the conversation history.
type Turn struct {
	Prompt   string
	Response string
}

// Context carries the conversation so far.
type Context struct {
	History []Turn
}

// Button is a follow-up action offered after a response.
type Button struct {
	Title   string
	Command string
}

// AddToCollectionButton is offered after any turn that called tools.
var AddToCollectionButton = Button{Title: "Add to API Try It Collections", Command: "open"}

// ResponseStream receives the participant's output as it is produced.
// Implementations must be safe for use from one goroutine at a time.
type ResponseStream interface {
	Markdown(text string)
	Progress(text string)
	Reference(path string)
	Button(b Button)
}

// ToolCallRound is the batch of tool calls from one model response.
type ToolCallRound = agent.ToolCallRound

// Metadata describes how a response was produced.
type Metadata struct {
	ToolCallRounds []ToolCallRound
}

// Result is the outcome of a handled request.
type Result struct {
	// Model is the id of the model that answered.
	Model    string
	Text     string
	Usage    ai.Usage
	Metadata Metadata
}
