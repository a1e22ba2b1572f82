// ABOUTME: Live session table for the Streamable HTTP front end
// ABOUTME: Maps session ids to their transport and server session; mutex-guarded

package mcp

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mauromedda/api-tryit-go/internal/eventbus"
	pilog "github.com/mauromedda/api-tryit-go/internal/log"
)

// sessionCloser is the part of *mcp.ServerSession the table needs.
type sessionCloser interface {
	Close() error
}

// session is one connected client.
type session struct {
	id        string
	transport *mcp.StreamableServerTransport
	conn      sessionCloser
}

// Sessions owns the live sessions. The zero value is not usable; use
// NewSessions.
type Sessions struct {
	mu      sync.Mutex
	entries map[string]*session
	events  *eventbus.Bus[eventbus.SessionEvent]
}

// NewSessions creates an empty table. Lifecycle events go to events,
// which may be nil.
func NewSessions(events *eventbus.Bus[eventbus.SessionEvent]) *Sessions {
	return &Sessions{entries: make(map[string]*session), events: events}
}

func (s *Sessions) get(id string) (*session, bool) {
	if id == "" {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.entries[id]
	return sess, ok
}

func (s *Sessions) add(sess *session) error {
	s.mu.Lock()
	if _, dup := s.entries[sess.id]; dup {
		s.mu.Unlock()
		return fmt.Errorf("duplicate session id %s", sess.id)
	}
	s.entries[sess.id] = sess
	s.mu.Unlock()

	pilog.Debug("mcp: session %s initialized", sess.id)
	s.publish(eventbus.SessionOpened, sess.id)
	return nil
}

// remove deletes id and reports whether it was present. Safe to call more
// than once for the same id.
func (s *Sessions) remove(id string) bool {
	s.mu.Lock()
	_, ok := s.entries[id]
	delete(s.entries, id)
	s.mu.Unlock()

	if ok {
		pilog.Debug("mcp: session %s closed", id)
		s.publish(eventbus.SessionClosed, id)
	}
	return ok
}

func (s *Sessions) publish(kind eventbus.SessionEventKind, id string) {
	if s.events != nil {
		s.events.Publish(eventbus.SessionEvent{Kind: kind, ID: id})
	}
}

// Close terminates one session and removes it.
func (s *Sessions) Close(id string) error {
	sess, ok := s.get(id)
	if !ok {
		return fmt.Errorf("unknown session %s", id)
	}
	err := sess.conn.Close()
	s.remove(id)
	if err != nil {
		return fmt.Errorf("closing session %s: %w", id, err)
	}
	return nil
}

// CloseAll terminates every live session. A failure on one session is
// logged and does not stop the others; all failures are returned joined.
func (s *Sessions) CloseAll() error {
	var errs []error
	for _, id := range s.IDs() {
		if err := s.Close(id); err != nil {
			pilog.Error("mcp: %v", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// IDs returns the live session ids, sorted.
func (s *Sessions) IDs() []string {
	s.mu.Lock()
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	sort.Strings(ids)
	return ids
}
