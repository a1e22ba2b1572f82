// ABOUTME: Conversation session: keeps turn history across requests to a participant
// ABOUTME: Only successful turns are recorded

package chat

import (
	"context"
	"sync"
)

// Session threads history through successive Handle calls.
type Session struct {
	p *Participant

	mu      sync.Mutex
	history []Turn
}

// NewSession starts an empty conversation.
func NewSession(p *Participant) *Session {
	return &Session{p: p}
}

// Ask handles req with the accumulated history and records the turn.
func (s *Session) Ask(ctx context.Context, req Request, stream ResponseStream) (*Result, error) {
	s.mu.Lock()
	chatCtx := Context{History: append([]Turn(nil), s.history...)}
	s.mu.Unlock()

	res, err := s.p.Handle(ctx, req, chatCtx, stream)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.history = append(s.history, Turn{Prompt: req.Prompt, Response: res.Text})
	s.mu.Unlock()
	return res, nil
}

// History returns a copy of the recorded turns.
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Turn(nil), s.history...)
}

// Reset clears the history.
func (s *Session) Reset() {
	s.mu.Lock()
	s.history = nil
	s.mu.Unlock()
}
