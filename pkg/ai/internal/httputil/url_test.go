// ABOUTME: Tests for NormalizeBaseURL across OpenAI, Ollama, and gateway-style base URLs
// ABOUTME: Table-driven; each case names the shape a user might put in settings

package httputil

import "testing"

func TestNormalizeBaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"openai default", "https://api.openai.com", "https://api.openai.com"},
		{"ollama with /v1", "http://localhost:11434/v1", "http://localhost:11434"},
		{"ollama with /v1/", "http://localhost:11434/v1/", "http://localhost:11434"},
		{"bare host and port", "localhost:11434", "http://localhost:11434"},
		{"pasted endpoint", "http://host:8000/v1/chat/completions", "http://host:8000"},
		{"gateway prefix kept", "https://gw.example.com/api/v1", "https://gw.example.com/api/v1"},
		{"gateway endpoint pasted", "https://gw.example.com/openai/chat/completions", "https://gw.example.com/openai"},
		{"query dropped", "http://host:8000/v1?x=1", "http://host:8000"},
		{"surrounding space", "  http://host:8000/  ", "http://host:8000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeBaseURL(tt.input); got != tt.want {
				t.Errorf("NormalizeBaseURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
