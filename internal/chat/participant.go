// ABOUTME: Chat participant: collects workspace documents, picks a model, runs the turn
// ABOUTME: Auto mode tries models in registry order until one succeeds

package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/mauromedda/api-tryit-go/internal/agent"
	"github.com/mauromedda/api-tryit-go/internal/config"
	pilog "github.com/mauromedda/api-tryit-go/internal/log"
	"github.com/mauromedda/api-tryit-go/internal/models"
	"github.com/mauromedda/api-tryit-go/internal/prompts"
	"github.com/mauromedda/api-tryit-go/internal/tools"
	"github.com/mauromedda/api-tryit-go/internal/workspace"
	"github.com/mauromedda/api-tryit-go/pkg/ai"
)

// Progress messages shown while a turn is prepared.
const (
	progressSearching = "Searching for OpenAPI specifications in the workspace..."
	progressSelecting = "Selecting a chat model for your request..."
	progressThinking  = "Thinking..."
	warnNoTryTool     = "**Warning:** API-try-tool is not available."
)

// ToolSource looks tools up by name.
type ToolSource interface {
	Get(name string) agent.Tool
}

// Config wires a Participant.
type Config struct {
	Tools     ToolSource
	Models    *models.Registry
	Providers *ai.Providers
	// Catalog defaults to the embedded prompt catalog.
	Catalog *prompts.Catalog
	// Root is the workspace scanned for API descriptions.
	Root      string
	Workspace workspace.Options
	Stream    ai.StreamOptions
	MaxRounds int
	// ResolveModel maps an explicit model id to a model. Defaults to the
	// registry cache, then config.ResolveModel.
	ResolveModel func(id string) (*ai.Model, error)

	// PartialWorkspace skips unreadable documents instead of failing.
	PartialWorkspace bool
}

// Participant handles chat requests.
type Participant struct {
	cfg Config
}

// NewParticipant creates a Participant.
func NewParticipant(cfg Config) *Participant {
	if cfg.Catalog == nil {
		cfg.Catalog = prompts.Default()
	}
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = agent.DefaultMaxRounds
	}
	p := &Participant{cfg: cfg}
	if p.cfg.ResolveModel == nil {
		p.cfg.ResolveModel = p.resolveModel
	}
	return p
}

// Handle runs one turn, writing output to stream.
func (p *Participant) Handle(ctx context.Context, req Request, chatCtx Context, stream ResponseStream) (*Result, error) {
	var toolset []agent.Tool
	if t := p.lookupTryTool(); t != nil {
		toolset = []agent.Tool{t}
	} else {
		stream.Markdown(warnNoTryTool)
	}

	stream.Progress(progressSearching)
	snap, err := p.collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("collecting workspace documents: %w", err)
	}
	specs := snap.JSON()

	turn := &turnRequest{req: req, chatCtx: chatCtx, tools: toolset, specs: specs}

	if req.Model == "" || req.Model == AutoModel {
		stream.Progress(progressSelecting)
		candidates, err := p.candidates(ctx)
		if err != nil {
			return nil, err
		}
		return firstSuccess(ctx, candidates, func(m *ai.Model) (*Result, error) {
			stream.Progress(progressThinking)
			buf := &attemptStream{progress: stream}
			res, err := p.send(ctx, turn, m, buf)
			if err != nil {
				pilog.Warn("chat: model %s failed: %v", m.ID, err)
				return nil, err
			}
			buf.flush(stream)
			return res, nil
		})
	}

	model, err := p.cfg.ResolveModel(req.Model)
	if err != nil {
		return nil, err
	}
	return p.send(ctx, turn, model, stream)
}

func (p *Participant) collect(ctx context.Context) (workspace.Snapshot, error) {
	if !p.cfg.PartialWorkspace {
		return workspace.Collect(ctx, p.cfg.Root, p.cfg.Workspace)
	}
	snap, skipped, err := workspace.CollectPartial(ctx, p.cfg.Root, p.cfg.Workspace)
	for _, e := range skipped {
		pilog.Warn("chat: skipping document: %v", e)
	}
	return snap, err
}

func (p *Participant) lookupTryTool() agent.Tool {
	if p.cfg.Tools == nil {
		return nil
	}
	return p.cfg.Tools.Get(tools.TryToolName)
}

// candidates returns the cached models, refreshing once when the cache is empty.
func (p *Participant) candidates(ctx context.Context) ([]*ai.Model, error) {
	if p.cfg.Models == nil {
		return nil, ErrNoModels
	}
	if ms := p.cfg.Models.Models(); len(ms) > 0 {
		return ms, nil
	}
	if err := p.cfg.Models.Refresh(ctx); err != nil {
		pilog.Warn("chat: refreshing models: %v", err)
	}
	if ms := p.cfg.Models.Models(); len(ms) > 0 {
		return ms, nil
	}
	return nil, ErrNoModels
}

func (p *Participant) resolveModel(id string) (*ai.Model, error) {
	if p.cfg.Models != nil {
		for _, m := range p.cfg.Models.Models() {
			if m.ID == id {
				return m, nil
			}
		}
	}
	return config.ResolveModel(id)
}

// firstSuccess runs attempt over items in order and returns the first
// success. Failed attempts fall through to the next item. Cancellation stops
// the search. Exhausting every item yields ErrAllModelsFailed.
func firstSuccess[T, R any](ctx context.Context, items []T, attempt func(T) (R, error)) (R, error) {
	var zero R
	for _, item := range items {
		res, err := attempt(item)
		if err == nil {
			return res, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}
	}
	return zero, ErrAllModelsFailed
}

// attemptStream holds one auto-mode attempt's output until the attempt
// succeeds. Progress goes straight through.
type attemptStream struct {
	progress ResponseStream
	parts    []func(ResponseStream)
}

func (a *attemptStream) Progress(text string) { a.progress.Progress(text) }

func (a *attemptStream) Markdown(text string) {
	a.parts = append(a.parts, func(s ResponseStream) { s.Markdown(text) })
}

func (a *attemptStream) Reference(path string) {
	a.parts = append(a.parts, func(s ResponseStream) { s.Reference(path) })
}

func (a *attemptStream) Button(b Button) {
	a.parts = append(a.parts, func(s ResponseStream) { s.Button(b) })
}

func (a *attemptStream) flush(to ResponseStream) {
	for _, part := range a.parts {
		part(to)
	}
	a.parts = nil
}

// IsFatal reports whether err is one of the participant's turn-ending
// selection failures.
func IsFatal(err error) bool {
	return errors.Is(err, ErrNoModels) || errors.Is(err, ErrAllModelsFailed)
}
