// ABOUTME: Per-subcommand flag sets built on the stdlib flag package
// ABOUTME: Parsing is separated from execution so it can be tested without side effects

package main

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

type serveArgs struct {
	port    int
	root    string
	verbose bool
}

func parseServeFlags(args []string, stderr io.Writer) (serveArgs, error) {
	var a serveArgs
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&a.port, "port", 0, "Port to listen on (default from settings or $PORT, else 3000)")
	fs.StringVar(&a.root, "root", "", "Project root for settings (default: working directory)")
	fs.BoolVar(&a.verbose, "verbose", false, "Enable debug logging")
	if err := fs.Parse(args); err != nil {
		return a, err
	}
	if fs.NArg() > 0 {
		return a, fmt.Errorf("serve: unexpected arguments %q", fs.Args())
	}
	if a.port < 0 || a.port > 65535 {
		return a, fmt.Errorf("serve: invalid port %d", a.port)
	}
	return a, nil
}

// multiFlag collects a repeatable string flag.
type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }

func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}

type chatArgs struct {
	model   string
	command string
	root    string
	refs    multiFlag
	verbose bool
	prompt  string
}

func parseChatFlags(args []string, stderr io.Writer) (chatArgs, error) {
	var a chatArgs
	fs := flag.NewFlagSet("chat", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&a.model, "model", "", "Model id, or \"auto\" to try available models in order (default from settings)")
	fs.StringVar(&a.command, "command", "", "Slash command to apply, e.g. tryAPI")
	fs.StringVar(&a.root, "root", "", "Workspace root to scan for API descriptions (default: working directory)")
	fs.Var(&a.refs, "ref", "File to attach as a reference (repeatable)")
	fs.BoolVar(&a.verbose, "verbose", false, "Enable debug logging")
	if err := fs.Parse(args); err != nil {
		return a, err
	}
	a.command = strings.TrimPrefix(a.command, "/")
	a.prompt = strings.TrimSpace(strings.Join(fs.Args(), " "))
	return a, nil
}

type callArgs struct {
	server  string
	url     string
	method  string
	token   string
	verbose bool
}

func parseCallFlags(args []string, stderr io.Writer) (callArgs, error) {
	var a callArgs
	fs := flag.NewFlagSet("call", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&a.server, "server", "http://localhost:3000/mcp", "Endpoint of a running server")
	fs.StringVar(&a.url, "url", "", "Resource URL to try")
	fs.StringVar(&a.method, "method", "GET", "HTTP method")
	fs.StringVar(&a.token, "token", "", "Bearer token sent to the server")
	fs.BoolVar(&a.verbose, "verbose", false, "Enable debug logging")
	if err := fs.Parse(args); err != nil {
		return a, err
	}
	if a.url == "" {
		return a, fmt.Errorf("call: -url is required")
	}
	return a, nil
}

type authArgs struct {
	provider string
	remove   bool
}

func parseAuthFlags(args []string, stderr io.Writer) (authArgs, error) {
	var a authArgs
	fs := flag.NewFlagSet("auth", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&a.provider, "provider", "openai", "Provider the key belongs to")
	fs.BoolVar(&a.remove, "remove", false, "Delete the stored key instead of setting one")
	if err := fs.Parse(args); err != nil {
		return a, err
	}
	a.provider = strings.ToLower(strings.TrimSpace(a.provider))
	if a.provider == "" {
		return a, fmt.Errorf("auth: -provider is required")
	}
	return a, nil
}
