// ABOUTME: Lenient decoding helpers for model-supplied tool arguments
// ABOUTME: Models send numbers or objects where strings are expected; these coerce them

package tools

import (
	"encoding/json"
	"fmt"
	"strings"
)

// rawString returns the string a JSON value carries: the decoded text for
// a JSON string, "" for null or absent, and the compact JSON otherwise.
func rawString(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return trimmed
}

// stringMap converts a decoded JSON object into string values.
// Nested values are rendered with fmt's default formatting.
func stringMap(m map[string]any) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case string:
			out[k] = val
		case nil:
			out[k] = ""
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out
}

// textField reads a string field from a raw JSON object, tolerating
// malformed input by returning "".
func textField(args json.RawMessage, key string) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(args, &fields); err != nil {
		return ""
	}
	return rawString(fields[key])
}
