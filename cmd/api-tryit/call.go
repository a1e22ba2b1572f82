// ABOUTME: call subcommand: connects to a running server and invokes try-resource once
// ABOUTME: Prints the tool text; an error result exits non-zero

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	pihttp "github.com/mauromedda/api-tryit-go/internal/http"
	pilog "github.com/mauromedda/api-tryit-go/internal/log"
	"github.com/mauromedda/api-tryit-go/internal/mcp"
)

const callTimeout = 2 * time.Minute

var errToolFailed = errors.New("try-resource reported an error")

func runCall(argv []string) error {
	args, err := parseCallFlags(argv, os.Stderr)
	if err != nil {
		return err
	}
	if args.verbose {
		pilog.SetLevel(pilog.LevelDebug)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	opts := []mcp.HTTPOption{mcp.WithHTTPClient(pihttp.SecureHTTPClient(0))}
	if args.token != "" {
		opts = append(opts, mcp.WithAuthToken(args.token))
	}
	client := mcp.NewClient(mcp.NewHTTPTransport(args.server, opts...), "api-tryit-cli", version)
	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("connecting to %s: %w", args.server, err)
	}
	defer client.Close()

	res, err := client.CallTool(ctx, mcp.TryResource, map[string]any{
		"resourceUrl": args.url,
		"method":      args.method,
	})
	if err != nil {
		return err
	}
	fmt.Println(res.Text())
	if res.IsError {
		return errToolFailed
	}
	return nil
}
