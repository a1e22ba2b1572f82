// ABOUTME: Tests for tool argument parsing and required-field validation
// ABOUTME: Covers empty, null, malformed, and schema-less inputs

package agent

import (
	"encoding/json"
	"testing"
)

func TestParseToolArgs(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "null"} {
		args, err := ParseToolArgs(json.RawMessage(raw))
		if err != nil || args == nil || len(args) != 0 {
			t.Errorf("ParseToolArgs(%q) = %v, %v; want empty map", raw, args, err)
		}
	}

	if _, err := ParseToolArgs(json.RawMessage(`[1,2]`)); err == nil {
		t.Error("expected error for non-object arguments")
	}

	args, err := ParseToolArgs(json.RawMessage(`{"method":"GET"}`))
	if err != nil || string(args["method"]) != `"GET"` {
		t.Errorf("args = %v, err = %v", args, err)
	}
}

func TestValidateToolArgs(t *testing.T) {
	t.Parallel()

	info := ToolInfo{Name: "api-try-tool", Parameters: json.RawMessage(`{"type":"object","required":["method","url"]}`)}

	if err := ValidateToolArgs(info, json.RawMessage(`{"method":"GET","url":"http://x"}`)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateToolArgs(info, json.RawMessage(`{"method":"GET"}`)); err == nil {
		t.Error("expected missing url error")
	}
	if err := ValidateToolArgs(ToolInfo{Name: "free"}, json.RawMessage(`{}`)); err != nil {
		t.Errorf("schema-less tool rejected: %v", err)
	}
	if err := ValidateToolArgs(ToolInfo{Name: "free"}, json.RawMessage(`"str"`)); err == nil {
		t.Error("expected error for non-object args even without schema")
	}
}
