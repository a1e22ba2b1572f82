// ABOUTME: Terminal host for the chat participant: renders the response stream to a console
// ABOUTME: TTY output is rendered with glamour on Flush; pipes get raw markdown as it streams

package chat

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

const defaultWidth = 100

var (
	progressStyle  = lipgloss.NewStyle().Faint(true).Italic(true)
	referenceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// Terminal implements ResponseStream for a console.
type Terminal struct {
	mu     sync.Mutex
	out    io.Writer
	status io.Writer
	tty    bool
	width  int

	md      strings.Builder
	refs    []string
	buttons []Button
}

// NewTerminal writes the response to out and progress to status.
// Rendering is enabled when out is a terminal.
func NewTerminal(out, status io.Writer) *Terminal {
	t := &Terminal{out: out, status: status, width: defaultWidth}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		t.tty = true
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			t.width = w
		}
	}
	return t
}

// Interactive reports whether output goes to a terminal.
func (t *Terminal) Interactive() bool { return t.tty }

// Markdown implements ResponseStream.
func (t *Terminal) Markdown(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.md.WriteString(text)
	if !t.tty {
		_, _ = io.WriteString(t.out, text)
	}
}

// Progress implements ResponseStream.
func (t *Terminal) Progress(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	line := runewidth.Truncate(text, t.width-2, "...")
	if t.tty {
		line = progressStyle.Render(line)
	}
	fmt.Fprintln(t.status, line)
}

// Reference implements ResponseStream.
func (t *Terminal) Reference(path string) {
	t.mu.Lock()
	t.refs = append(t.refs, path)
	t.mu.Unlock()
}

// Button implements ResponseStream.
func (t *Terminal) Button(b Button) {
	t.mu.Lock()
	t.buttons = append(t.buttons, b)
	t.mu.Unlock()
}

// Error prints a turn-ending error.
func (t *Terminal) Error(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	msg := err.Error()
	if t.tty {
		msg = errorStyle.Render(msg)
	}
	fmt.Fprintln(t.status, msg)
}

// Flush completes the current response: renders buffered markdown on a
// terminal, lists references, and returns the offered buttons. The
// Terminal is reset for the next turn.
func (t *Terminal) Flush() []Button {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.tty {
		_, _ = io.WriteString(t.out, renderMarkdown(t.md.String(), t.width))
	}
	if t.md.Len() > 0 {
		_, _ = io.WriteString(t.out, "\n")
	}
	for _, ref := range t.refs {
		line := "Reference: " + ref
		if t.tty {
			line = referenceStyle.Render(line)
		}
		fmt.Fprintln(t.out, line)
	}

	buttons := t.buttons
	t.md.Reset()
	t.refs = nil
	t.buttons = nil
	return buttons
}

// renderMarkdown renders md for a terminal of the given width, falling
// back to the raw text when glamour fails.
func renderMarkdown(md string, width int) string {
	if md == "" {
		return ""
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n ")
}
