// ABOUTME: Hardened HTTP client and server constructors with explicit timeouts
// ABOUTME: Server bounds only header reads so long-lived SSE streams are not cut off

package http

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// SecureHTTPClient creates an HTTP client with dial, TLS, and header timeouts.
// timeout bounds the whole exchange; zero means no overall limit.
func SecureHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 60 * time.Second,
			IdleConnTimeout:       30 * time.Second,
			MaxIdleConns:          10,
			MaxIdleConnsPerHost:   2,
		},
	}
}

// SecureHTTPServer creates an HTTP server that resists slow clients.
// ReadTimeout and WriteTimeout stay zero: either would cancel open event streams.
func SecureHTTPServer(handler http.Handler, addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}
}
