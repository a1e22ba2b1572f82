// ABOUTME: Event payloads shared between packages
// ABOUTME: Kept here so publishers and subscribers avoid importing each other

package eventbus

// ModelsChanged signals that the set of usable chat models may differ
// from the cached one (settings or credentials changed).
type ModelsChanged struct {
	Source string // file or subsystem that triggered the change
}

// SessionEventKind distinguishes session lifecycle events.
type SessionEventKind int

const (
	SessionOpened SessionEventKind = iota
	SessionClosed
)

func (k SessionEventKind) String() string {
	switch k {
	case SessionOpened:
		return "opened"
	case SessionClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// SessionEvent reports a remote-procedure session being opened or closed.
type SessionEvent struct {
	Kind SessionEventKind
	ID   string
}
