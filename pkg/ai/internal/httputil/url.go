// ABOUTME: Base URL normalization for OpenAI-compatible endpoints (OpenAI, Ollama, vLLM)
// ABOUTME: Accepts bare host:port and pasted endpoint URLs; the provider appends /v1/... itself

package httputil

import (
	"net/url"
	"strings"
)

// endpointSuffixes are paths users commonly paste along with the host.
// Longest first so "/v1/chat/completions" wins over "/v1".
var endpointSuffixes = []string{"/v1/chat/completions", "/chat/completions", "/v1"}

// NormalizeBaseURL returns the scheme://host[:port][/prefix] part of a base
// URL. A missing scheme defaults to http (local servers); a trailing
// endpoint path or slash is removed. Prefixes such as "/api/v1" behind a
// gateway are kept.
func NormalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return ""
	}
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}

	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return strings.TrimRight(baseURL, "/")
	}

	p := strings.TrimRight(u.Path, "/")
	for _, suffix := range endpointSuffixes {
		if p == suffix || (suffix != "/v1" && strings.HasSuffix(p, suffix)) {
			p = strings.TrimSuffix(p, suffix)
			break
		}
	}
	u.Path = p
	u.RawQuery = ""
	u.Fragment = ""
	return strings.TrimRight(u.String(), "/")
}
