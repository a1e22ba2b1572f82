// ABOUTME: Server-Sent Events decoder shared by the model provider and the MCP HTTP client
// ABOUTME: Handles event, data, id and retry fields; multi-line data; comment lines

package sse

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// maxLineSize caps a single SSE line. Tool responses can carry whole
// OpenAPI documents, so the cap is generous.
const maxLineSize = 4 << 20

// Event is one dispatched Server-Sent Event.
type Event struct {
	Type  string
	Data  string
	ID    string
	Retry int // milliseconds; zero when absent
}

// Reader decodes events from an io.Reader.
type Reader struct {
	scanner *bufio.Scanner
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader) *Reader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{scanner: s}
}

// Next returns the next event. It returns nil, io.EOF at end of stream.
// A trailing event without the final blank line is still delivered.
func (r *Reader) Next() (*Event, error) {
	var (
		ev      Event
		data    []string
		pending bool
	)

	for r.scanner.Scan() {
		line := r.scanner.Text()
		if line == "" {
			if pending {
				ev.Data = strings.Join(data, "\n")
				return &ev, nil
			}
			continue
		}
		if line[0] == ':' {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")

		switch field {
		case "event":
			ev.Type = value
		case "data":
			data = append(data, value)
		case "id":
			ev.ID = value
		case "retry":
			if n, err := strconv.Atoi(value); err == nil {
				ev.Retry = n
			}
		default:
			continue
		}
		pending = true
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	if pending {
		ev.Data = strings.Join(data, "\n")
		return &ev, nil
	}
	return nil, io.EOF
}

// Each calls fn for every event until the stream ends, fn returns false,
// or a read error occurs. io.EOF is not reported as an error.
func Each(r io.Reader, fn func(*Event) bool) error {
	rd := NewReader(r)
	for {
		ev, err := rd.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if !fn(ev) {
			return nil
		}
	}
}
