// ABOUTME: CLI entry point for api-tryit: dispatches to the serve, chat, call, and version subcommands
// ABOUTME: Each subcommand owns its flag set; errors print to stderr with exit status 1

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	// termfix must be imported before any package that imports bubbletea.
	// It sets lipgloss.SetHasDarkBackground(true) in its init(), so the
	// picker never sends OSC 10/11 queries whose replies leak into stdin.
	_ "github.com/mauromedda/api-tryit-go/internal/termfix"

	"github.com/mauromedda/api-tryit-go/internal/config"
	pilog "github.com/mauromedda/api-tryit-go/internal/log"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const usage = `usage: api-tryit <command> [flags]

commands:
  serve    run the remote-procedure server on /mcp
  chat     ask the API testing assistant (interactive without a prompt)
  call     invoke try-resource on a running server
  auth     store a provider API key
  version  print version information

Run 'api-tryit <command> -h' for the flags of a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "serve":
		err = runServe(args)
	case "chat":
		err = runChat(args)
	case "call":
		err = runCall(args)
	case "auth":
		err = runAuth(args)
	case "version", "-version", "--version":
		fmt.Printf("api-tryit %s (%s) built %s\n", version, commit, date)
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}

	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// applyLogLevel sets the log level from settings; verbose forces debug.
func applyLogLevel(settings *config.Settings, verbose bool) {
	if verbose {
		pilog.SetLevel(pilog.LevelDebug)
		return
	}
	level, err := pilog.ParseLevel(settings.LogLevel)
	if err != nil {
		pilog.Warn("config: %v", err)
		return
	}
	pilog.SetLevel(level)
}

// projectRoot returns dir, or the working directory when dir is empty.
func projectRoot(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return cwd, nil
}
