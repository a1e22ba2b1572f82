// ABOUTME: Model-invocation helper: builds the LLM context and runs the tool loop for one model
// ABOUTME: Streams text as markdown, attaches references, and offers the follow-up button

package chat

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/mauromedda/api-tryit-go/internal/agent"
	pilog "github.com/mauromedda/api-tryit-go/internal/log"
	"github.com/mauromedda/api-tryit-go/internal/prompts"
	"github.com/mauromedda/api-tryit-go/pkg/ai"
)

// logArgsWidth bounds tool arguments in log lines.
const logArgsWidth = 160

// turnRequest is the model-independent part of a turn.
type turnRequest struct {
	req     Request
	chatCtx Context
	tools   []agent.Tool
	specs   string
}

// send runs the turn against one model.
func (p *Participant) send(ctx context.Context, turn *turnRequest, model *ai.Model, stream ResponseStream) (*Result, error) {
	if turn.req.Command != "" {
		_, ok := p.cfg.Catalog.CommandPrompt(turn.req.Command)
		pilog.Debug("chat: command %q recognized=%v", turn.req.Command, ok)
	}
	prompt, err := p.cfg.Catalog.Compose(promptInput(turn))
	if err != nil {
		return nil, err
	}
	pilog.Debug("chat: prompt for %s (%d bytes)", model.ID, len(prompt))

	provider := p.cfg.Providers.For(model)
	if provider == nil {
		return nil, fmt.Errorf("no provider for model %s (api %s)", model.ID, model.Api)
	}

	llmCtx := &ai.Context{Messages: buildMessages(turn.chatCtx, prompt, turn.req.References)}
	opts := p.cfg.Stream
	if opts.MaxTokens == 0 || (model.MaxOutputTokens > 0 && opts.MaxTokens > model.MaxOutputTokens) {
		opts.MaxTokens = model.MaxOutputTokens
	}

	var text strings.Builder
	ag := agent.New(provider, model, turn.tools, agent.WithMaxRounds(p.cfg.MaxRounds))
	run, err := ag.Run(ctx, llmCtx, &opts, func(ev agent.AgentEvent) {
		switch ev.Type {
		case agent.EventAssistantText:
			text.WriteString(ev.Text)
			stream.Markdown(ev.Text)
		case agent.EventToolPrepare:
			stream.Progress(ev.Text)
		case agent.EventToolEnd:
			if ev.ToolResult != nil {
				pilog.Debug("chat: tool %s finished in %s", ev.ToolName, ev.ToolResult.Duration)
			}
		}
	})
	if err != nil {
		return nil, err
	}

	for _, ref := range turn.req.References {
		stream.Reference(ref)
	}

	result := &Result{
		Model:    model.ID,
		Text:     text.String(),
		Usage:    run.Usage,
		Metadata: Metadata{ToolCallRounds: run.Rounds},
	}
	if len(result.Metadata.ToolCallRounds) > 0 {
		logRounds(result.Metadata.ToolCallRounds)
		stream.Button(AddToCollectionButton)
	}
	return result, nil
}

func promptInput(turn *turnRequest) prompts.Input {
	return prompts.Input{Command: turn.req.Command, Specs: turn.specs, Prompt: turn.req.Prompt}
}

// buildMessages turns history, the composed prompt, and attached files
// into model messages.
func buildMessages(chatCtx Context, prompt string, refs []string) []ai.Message {
	msgs := make([]ai.Message, 0, 2*len(chatCtx.History)+1)
	for _, turn := range chatCtx.History {
		msgs = append(msgs, ai.NewTextMessage(ai.RoleUser, turn.Prompt))
		if turn.Response != "" {
			msgs = append(msgs, ai.NewTextMessage(ai.RoleAssistant, turn.Response))
		}
	}

	user := ai.NewTextMessage(ai.RoleUser, prompt)
	for _, ref := range refs {
		data, err := os.ReadFile(ref)
		if err != nil {
			pilog.Warn("chat: skipping reference %s: %v", ref, err)
			continue
		}
		user.Content = append(user.Content, ai.Content{
			Type: ai.ContentText,
			Text: fmt.Sprintf("Attached file %s:\n%s", ref, data),
		})
	}
	return append(msgs, user)
}

func logRounds(rounds []ToolCallRound) {
	for i, round := range rounds {
		for _, call := range round.Calls {
			pilog.Info("chat: round %d tool call %s %s", i+1, call.Name,
				runewidth.Truncate(string(call.Args), logArgsWidth, "..."))
		}
	}
}
