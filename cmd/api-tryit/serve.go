// ABOUTME: serve subcommand: runs the remote-procedure server behind the /mcp front end
// ABOUTME: Caps connections with netutil.LimitListener; SIGINT/SIGTERM closes every session

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/net/netutil"

	"github.com/mauromedda/api-tryit-go/internal/config"
	"github.com/mauromedda/api-tryit-go/internal/eventbus"
	pihttp "github.com/mauromedda/api-tryit-go/internal/http"
	pilog "github.com/mauromedda/api-tryit-go/internal/log"
	"github.com/mauromedda/api-tryit-go/internal/mcp"
	"github.com/mauromedda/api-tryit-go/internal/tryit"
)

const shutdownTimeout = 5 * time.Second

func runServe(argv []string) error {
	args, err := parseServeFlags(argv, os.Stderr)
	if err != nil {
		return err
	}
	root, err := projectRoot(args.root)
	if err != nil {
		return err
	}
	settings, err := config.Load(root)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyLogLevel(settings, args.verbose)
	if args.port != 0 {
		settings.Port = args.port
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := tryit.NewClient(
		pihttp.SecureHTTPClient(settings.Timeout()),
		tryit.WithResponseLimit(settings.ResponseLimit),
	)

	events := eventbus.New[eventbus.SessionEvent]()
	sessions := mcp.NewSessions(events)
	events.Subscribe(func(ev eventbus.SessionEvent) {
		pilog.Info("mcp: session %s %s (%d live)", ev.ID, ev.Kind, sessions.Len())
	})
	frontEnd := mcp.NewFrontEnd(mcp.NewServer(client), sessions, mcp.WithBaseContext(ctx))

	addr := net.JoinHostPort("", strconv.Itoa(settings.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	if settings.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, settings.MaxConnections)
	}

	srv := pihttp.SecureHTTPServer(frontEnd, addr)
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()
	pilog.Info("MCP server listening on port %d", settings.Port)

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			_ = sessions.CloseAll()
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	pilog.Info("Shutting down server...")
	if err := sessions.CloseAll(); err != nil {
		pilog.Warn("mcp: some sessions did not close cleanly")
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	pilog.Info("Server shutdown complete")
	return nil
}
