// ABOUTME: Channel-based event streaming for LLM responses
// ABOUTME: EventStream delivers deltas to one consumer and records the final result or error

package ai

import (
	"sync"
)

// StreamEventType identifies the kind of stream event.
type StreamEventType int

const (
	EventContentDelta StreamEventType = iota
	EventToolUseStart
	EventToolUseDelta
	EventMessageDone
	EventError
)

// StreamEvent is one increment of a model response.
type StreamEvent struct {
	Type       StreamEventType
	Text       string // text delta
	ToolID     string
	ToolName   string
	ToolInput  string // partial JSON arguments
	Usage      *Usage
	StopReason StopReason
	Error      error
}

// EventStream carries a provider's events to a single consumer, which
// ranges over Events and then reads Result and Err.
//
// Senders hold the read lock while sending. Finish closes done first, which
// releases any blocked sender, then closes the event channel under the write
// lock. Events already buffered stay readable after Finish.
type EventStream struct {
	mu     sync.RWMutex
	ch     chan StreamEvent
	done   chan struct{}
	closed bool

	errMu  sync.Mutex
	err    error
	result *AssistantMessage
	once   sync.Once
}

// NewEventStream creates a stream whose channel buffers bufSize events.
func NewEventStream(bufSize int) *EventStream {
	return &EventStream{
		ch:   make(chan StreamEvent, bufSize),
		done: make(chan struct{}),
	}
}

// Events returns the consumer channel. It is closed by Finish.
func (s *EventStream) Events() <-chan StreamEvent {
	return s.ch
}

// Send queues event, blocking while the buffer is full. It returns false
// once the stream is finished. The first error event is kept for Err.
func (s *EventStream) Send(event StreamEvent) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false
	}
	if event.Type == EventError && event.Error != nil {
		s.errMu.Lock()
		if s.err == nil {
			s.err = event.Error
		}
		s.errMu.Unlock()
	}
	select {
	case s.ch <- event:
		return true
	case <-s.done:
		return false
	}
}

// Finish completes the stream. Only the first call has any effect.
func (s *EventStream) Finish(msg *AssistantMessage) {
	s.once.Do(func() {
		s.result = msg
		close(s.done)
		s.mu.Lock()
		s.closed = true
		close(s.ch)
		s.mu.Unlock()
	})
}

// FinishWithError sends an error event and finishes with no result.
func (s *EventStream) FinishWithError(err error) {
	s.Send(StreamEvent{Type: EventError, Error: err})
	s.Finish(nil)
}

// Result waits for Finish and returns the final message, nil on failure.
func (s *EventStream) Result() *AssistantMessage {
	<-s.done
	return s.result
}

// Err waits for Finish and returns the first error event, if any.
func (s *EventStream) Err() error {
	<-s.done
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

// Done is closed when the stream finishes.
func (s *EventStream) Done() <-chan struct{} {
	return s.done
}
