// ABOUTME: auth subcommand: stores a provider API key in the user-global auth file
// ABOUTME: Reads the key without echo on a terminal, or as one line from a pipe

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/mauromedda/api-tryit-go/internal/config"
)

func runAuth(argv []string) error {
	args, err := parseAuthFlags(argv, os.Stderr)
	if err != nil {
		return err
	}

	store, err := config.LoadAuth()
	if err != nil {
		return err
	}
	if args.remove {
		store.SetKey(args.provider, "")
		if err := store.Save(); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Removed the %s key from %s\n", args.provider, config.AuthFile())
		return nil
	}

	key, err := readSecret(os.Stdin, os.Stderr, fmt.Sprintf("%s API key: ", args.provider))
	if err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("auth: empty key")
	}
	store.SetKey(args.provider, key)
	if err := store.Save(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Saved the %s key to %s\n", args.provider, config.AuthFile())
	return nil
}

// readSecret reads one line from in, without echo when in is a terminal.
func readSecret(in io.Reader, prompt io.Writer, label string) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, label)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("reading key: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading key: %w", err)
	}
	return strings.TrimSpace(line), nil
}
