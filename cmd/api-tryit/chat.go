// ABOUTME: chat subcommand: wires providers, model registry, tools, and prompts into a terminal session
// ABOUTME: One-shot with a prompt argument; otherwise an interactive loop with history

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/mauromedda/api-tryit-go/internal/chat"
	"github.com/mauromedda/api-tryit-go/internal/config"
	"github.com/mauromedda/api-tryit-go/internal/eventbus"
	pihttp "github.com/mauromedda/api-tryit-go/internal/http"
	pilog "github.com/mauromedda/api-tryit-go/internal/log"
	"github.com/mauromedda/api-tryit-go/internal/models"
	"github.com/mauromedda/api-tryit-go/internal/prompts"
	"github.com/mauromedda/api-tryit-go/internal/telemetry"
	"github.com/mauromedda/api-tryit-go/internal/tools"
	"github.com/mauromedda/api-tryit-go/internal/tryit"
	"github.com/mauromedda/api-tryit-go/internal/workspace"
	"github.com/mauromedda/api-tryit-go/pkg/ai"
	"github.com/mauromedda/api-tryit-go/pkg/ai/provider/openai"
)

func runChat(argv []string) error {
	args, err := parseChatFlags(argv, os.Stderr)
	if err != nil {
		return err
	}
	root, err := projectRoot(args.root)
	if err != nil {
		return err
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving workspace root: %w", err)
	}

	settings, err := config.Load(root)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyLogLevel(settings, args.verbose)
	auth, err := config.LoadAuth()
	if err != nil {
		return fmt.Errorf("loading auth: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := models.NewRegistry(models.ConfigSelector{ProjectRoot: root})
	registry.RefreshAsync()

	changes := eventbus.New[eventbus.ModelsChanged]()
	unwatch := registry.Watch(changes)
	defer unwatch()
	watcher := config.NewWatcher(config.WatchedFiles(root), func() {
		changes.Publish(eventbus.ModelsChanged{Source: "settings"})
	})
	go watcher.Run(ctx)

	catalog, err := prompts.Load(config.PromptsFile(root))
	if err != nil {
		return err
	}

	client := tryit.NewClient(
		pihttp.SecureHTTPClient(settings.Timeout()),
		tryit.WithResponseLimit(settings.ResponseLimit),
	)
	participant := chat.NewParticipant(chat.Config{
		Tools:     tools.NewDefaultRegistry(client),
		Models:    registry,
		Providers: newProviders(auth),
		Catalog:   catalog,
		Root:      root,
		Workspace: workspace.Options{
			Include: settings.Workspace.Include,
			Exclude: settings.Workspace.Exclude,
		},
		Stream: ai.StreamOptions{
			MaxTokens:   settings.MaxTokens,
			Temperature: settings.Temperature,
		},
		PartialWorkspace: settings.Workspace.Partial,
	})

	model := args.model
	if model == "" {
		model = settings.Model
	}
	h := &chatHost{
		session: chat.NewSession(participant),
		term:    chat.NewTerminal(os.Stdout, os.Stderr),
		model:   model,
		refs:    args.refs,
		usage:   telemetry.NewTracker(),
		in:      os.Stdin,
		out:     os.Stdout,
	}

	if args.prompt != "" {
		return h.turn(ctx, chat.Request{Prompt: args.prompt, Command: args.command})
	}
	err = h.loop(ctx, os.Stdin, os.Stderr, args.command)
	if h.usage.Turns() > 0 {
		fmt.Fprint(os.Stderr, "Usage:\n"+h.usage.Summary())
	}
	return err
}

// newProviders registers the OpenAI-compatible provider. Local Ollama
// endpoints are called without a key.
func newProviders(auth *config.AuthStore) *ai.Providers {
	providers := ai.NewProviders()
	hc := pihttp.SecureHTTPClient(0)
	providers.Register(ai.ApiOpenAI, func(baseURL string) ai.ApiProvider {
		key := auth.GetKey("openai")
		if baseURL == config.OllamaBaseURL {
			key = ""
		}
		return openai.New(key, baseURL, openai.WithHTTPClient(hc))
	})
	return providers
}

type chatHost struct {
	session *chat.Session
	term    *chat.Terminal
	model   string
	refs    []string
	usage   *telemetry.Tracker
	in      io.Reader
	out     io.Writer
}

// turn runs one request, prints the response, and offers its buttons.
// Only selection failures end the session; other errors are printed.
func (h *chatHost) turn(ctx context.Context, req chat.Request) error {
	req.Model = h.model
	req.References = h.refs

	res, err := h.session.Ask(ctx, req, h.term)
	buttons := h.term.Flush()
	if err != nil {
		h.term.Error(err)
		if chat.IsFatal(err) || ctx.Err() != nil {
			return err
		}
		return nil
	}
	h.usage.Add(res.Model, res.Usage)
	pilog.Debug("chat: answered by %s (%d in, %d out tokens)", res.Model, res.Usage.InputTokens, res.Usage.OutputTokens)

	if len(buttons) == 0 || !h.term.Interactive() {
		return nil
	}
	btn, ok, err := chat.PickButton(buttons, h.in, h.out)
	if err != nil {
		return err
	}
	if ok && btn.Command == chat.AddToCollectionButton.Command {
		fmt.Fprint(h.out, chat.CollectionInstructions(res.Metadata.ToolCallRounds))
	}
	return nil
}

// loop reads prompts line by line until EOF, /exit, or cancellation.
func (h *chatHost) loop(ctx context.Context, in io.Reader, prompt io.Writer, defaultCommand string) error {
	fmt.Fprintln(prompt, "Ask about your API. /tryAPI <request>, /reset, /exit.")
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(prompt, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(prompt)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		req, action := parseChatLine(scanner.Text())
		switch action {
		case lineSkip:
			continue
		case lineExit:
			return nil
		case lineReset:
			h.session.Reset()
			fmt.Fprintln(prompt, "History cleared.")
			continue
		}
		if req.Command == "" {
			req.Command = defaultCommand
		}
		if err := h.turn(ctx, req); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if chat.IsFatal(err) {
				continue
			}
			return err
		}
	}
}

type lineAction int

const (
	lineAsk lineAction = iota
	lineSkip
	lineExit
	lineReset
)

// parseChatLine splits "/command rest" into a request. Built-in commands
// control the loop instead.
func parseChatLine(line string) (chat.Request, lineAction) {
	line = strings.TrimSpace(line)
	if line == "" {
		return chat.Request{}, lineSkip
	}
	if !strings.HasPrefix(line, "/") {
		return chat.Request{Prompt: line}, lineAsk
	}

	cmd, rest, _ := strings.Cut(line[1:], " ")
	switch cmd {
	case "exit", "quit":
		return chat.Request{}, lineExit
	case "reset":
		return chat.Request{}, lineReset
	case "":
		return chat.Request{Prompt: line}, lineAsk
	}
	return chat.Request{Command: cmd, Prompt: strings.TrimSpace(rest)}, lineAsk
}
