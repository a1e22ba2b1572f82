// ABOUTME: Tool argument validation against the tool's declared JSON Schema
// ABOUTME: Checks object shape and required fields before a tool is invoked

package agent

import (
	"encoding/json"
	"fmt"
)

// ValidateToolArgs checks that args is a JSON object carrying every field
// the tool's schema lists as required.
func ValidateToolArgs(info ToolInfo, args json.RawMessage) error {
	fields, err := ParseToolArgs(args)
	if err != nil {
		return err
	}
	if len(info.Parameters) == 0 {
		return nil
	}

	var schema struct {
		Required []string `json:"required"`
	}
	if err := json.Unmarshal(info.Parameters, &schema); err != nil {
		return fmt.Errorf("parsing tool %s schema: %w", info.Name, err)
	}

	for _, req := range schema.Required {
		if _, ok := fields[req]; !ok {
			return fmt.Errorf("missing required parameter %q for tool %s", req, info.Name)
		}
	}
	return nil
}

// ParseToolArgs deserialises raw JSON into a map of raw field values.
// Returns an empty map (not nil) when raw is empty or null.
func ParseToolArgs(raw json.RawMessage) (map[string]json.RawMessage, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return make(map[string]json.RawMessage), nil
	}

	var args map[string]json.RawMessage
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("parsing tool arguments: %w", err)
	}
	return args, nil
}
