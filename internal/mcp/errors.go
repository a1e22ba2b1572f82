// ABOUTME: JSON-RPC error codes, sentinel errors, and HTTP error writers for the front end
// ABOUTME: Error bodies never carry internal detail

package mcp

import (
	"encoding/json"
	"errors"
	"net/http"
)

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	// CodeServerError is the implementation-defined code for a request
	// that cannot be tied to a session.
	CodeServerError = -32000
)

// Messages of the front end's error replies.
const (
	msgNoValidSession     = "Bad Request: No valid session ID provided"
	msgInternalError      = "Internal server error"
	msgInvalidSession     = "Invalid or missing session ID"
	msgTerminationFailure = "Error processing session termination"
)

// ErrMissingArguments is reported by try-resource when an argument is empty.
var ErrMissingArguments = errors.New("resourceUrl and method are required")

type errorEnvelope struct {
	JSONRPC string   `json:"jsonrpc"`
	Error   RPCError `json:"error"`
	ID      *int64   `json:"id"`
}

// writeRPCError writes a JSON-RPC error with a null id.
func writeRPCError(w http.ResponseWriter, status, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{
		JSONRPC: jsonRPCVersion,
		Error:   RPCError{Code: code, Message: message},
	})
}

// writeText writes a plain-text reply.
func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(text))
}
