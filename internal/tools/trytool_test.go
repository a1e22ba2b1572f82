// ABOUTME: Tests for api-try-tool: prepare message, invocation, and error reporting
// ABOUTME: Uses httptest servers as the target API

package tools

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mauromedda/api-tryit-go/internal/tryit"
)

func TestTryTool_Info(t *testing.T) {
	t.Parallel()

	info := NewTryTool(tryit.NewClient(nil)).Info()
	if info.Name != "api-try-tool" {
		t.Errorf("Name = %q; want api-try-tool", info.Name)
	}
	var schema struct {
		Required []string `json:"required"`
	}
	if err := json.Unmarshal(info.Parameters, &schema); err != nil {
		t.Fatalf("schema is not valid JSON: %v", err)
	}
	if strings.Join(schema.Required, ",") != "method,url" {
		t.Errorf("required = %v; want [method url]", schema.Required)
	}
}

func TestTryTool_Prepare(t *testing.T) {
	t.Parallel()

	tool := NewTryTool(tryit.NewClient(nil))
	tests := []struct {
		name string
		args string
		want string
	}{
		{"full", `{"method":"GET","url":"https://api.example.com/pets"}`, "Sending GET request to API https://api.example.com/pets..."},
		{"missing method", `{"url":"https://x"}`, "Sending  request to API https://x..."},
		{"missing url", `{"method":"POST"}`, "Sending POST request to API  ..."},
		{"empty", `{}`, "Sending  request to API  ..."},
		{"malformed", `oops`, "Sending  request to API  ..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tool.Prepare(json.RawMessage(tt.args)); got != tt.want {
				t.Errorf("Prepare() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestTryTool_Invoke_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Trace") != "7" {
			t.Errorf("X-Trace = %q; want 7", r.Header.Get("X-Trace"))
		}
		b, _ := io.ReadAll(r.Body)
		if string(b) != `{"name":"rex"}` {
			t.Errorf("body = %q", b)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":1}`)
	}))
	defer srv.Close()

	tool := NewTryTool(tryit.NewClient(srv.Client()))
	args := `{"method":"post","url":"` + srv.URL + `","headers":{"X-Trace":7},"body":{"name":"rex"}}`
	res, err := tool.Invoke(context.Background(), "call_1", json.RawMessage(args))
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	want := `{"response":{"id":1},"status":201}`
	if res.Content != want {
		t.Errorf("Content = %s; want %s", res.Content, want)
	}
	if res.IsError {
		t.Error("IsError should be false")
	}
}

func TestTryTool_Invoke_UpstreamFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"nope"}`)
	}))
	defer srv.Close()

	tool := NewTryTool(tryit.NewClient(srv.Client()))
	res, err := tool.Invoke(context.Background(), "c", json.RawMessage(`{"method":"GET","url":"`+srv.URL+`"}`))
	if err != nil {
		t.Fatalf("Invoke returned error %v; failures belong in the result", err)
	}
	want := `Error from request: {"error":"Request failed with status code 404","status":404,"data":{"message":"nope"}}`
	if res.Content != want {
		t.Errorf("Content = %s\nwant      %s", res.Content, want)
	}
}

func TestTryTool_Invoke_InvalidArgs(t *testing.T) {
	t.Parallel()

	tool := NewTryTool(tryit.NewClient(nil))
	tests := []struct {
		name string
		args string
	}{
		{"not json", `[1,2`},
		{"relative url", `{"method":"GET","url":"/pets"}`},
		{"empty method", `{"method":"","url":"https://x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res, err := tool.Invoke(context.Background(), "c", json.RawMessage(tt.args))
			if err != nil {
				t.Fatalf("Invoke: %v", err)
			}
			if !strings.HasPrefix(res.Content, tryit.ErrorPrefix) {
				t.Errorf("Content = %q; want %q prefix", res.Content, tryit.ErrorPrefix)
			}
		})
	}
}
