// ABOUTME: Outcome of a try-it call and its JSON envelopes
// ABOUTME: Success is {response,status}; failure is {error,status,data} with empty fields omitted

package tryit

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ErrorPrefix precedes the failure envelope in model-facing text.
const ErrorPrefix = "Error from request: "

// Result is the outcome of one call. Exactly one of the success or
// failure shapes applies, selected by Err.
type Result struct {
	// Status is the HTTP status code; zero when no response arrived.
	Status int
	// Body is the decoded response body as a JSON value: the body itself
	// when it parses as JSON, otherwise the body as a JSON string. Nil when
	// there was no body.
	Body json.RawMessage
	// Err is the failure message; empty on success.
	Err string
}

// OK reports whether the call produced a 2xx response.
func (r Result) OK() bool {
	return r.Err == ""
}

type successEnvelope struct {
	Response json.RawMessage `json:"response"`
	Status   int             `json:"status"`
}

type errorEnvelope struct {
	Error  string          `json:"error"`
	Status int             `json:"status,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// JSON returns the success or failure envelope.
func (r Result) JSON() string {
	var (
		b   []byte
		err error
	)
	if r.OK() {
		resp := r.Body
		if resp == nil {
			resp = json.RawMessage(`""`)
		}
		b, err = json.Marshal(successEnvelope{Response: resp, Status: r.Status})
	} else {
		b, err = json.Marshal(errorEnvelope{Error: r.Err, Status: r.Status, Data: r.Body})
	}
	if err != nil {
		// Body is always produced by decodeBody, so this is unreachable in practice.
		return fmt.Sprintf(`{"error":%q}`, err.Error())
	}
	return string(b)
}

// Text renders the result the way a tool reports it to a model: the
// success envelope, or ErrorPrefix followed by the failure envelope.
func (r Result) Text() string {
	if r.OK() {
		return r.JSON()
	}
	return ErrorPrefix + r.JSON()
}

// decodeBody embeds raw as JSON when it is a JSON document and as a JSON
// string otherwise.
func decodeBody(raw []byte) json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	if json.Valid(raw) {
		return compact(raw)
	}
	s, _ := json.Marshal(string(raw))
	return s
}

func compact(raw []byte) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}
