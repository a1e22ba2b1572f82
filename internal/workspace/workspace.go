// ABOUTME: Workspace document collector: finds YAML/JSON API descriptions under a root
// ABOUTME: Returns absolute path -> UTF-8 text, read concurrently; all-or-nothing by default

package workspace

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/unicode/norm"

	pilog "github.com/mauromedda/api-tryit-go/internal/log"
)

// Default patterns used when Options leaves them empty.
var (
	DefaultInclude = []string{"**/*.{yaml,yml,json}"}
	DefaultExclude = []string{"**/node_modules/**", ".vscode/**"}
)

// Snapshot maps absolute file paths to file contents.
type Snapshot map[string]string

// Paths returns the snapshot keys in sorted order.
func (s Snapshot) Paths() []string {
	paths := make([]string, 0, len(s))
	for p := range s {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// JSON returns the snapshot as a JSON object with sorted keys.
func (s Snapshot) JSON() string {
	if len(s) == 0 {
		return "{}"
	}
	// encoding/json sorts map keys.
	b, err := json.Marshal(map[string]string(s))
	if err != nil {
		return "{}"
	}
	return string(b)
}

// Options configures a collection.
type Options struct {
	Include     []string
	Exclude     []string
	Concurrency int
}

type matcher struct {
	include []*Glob
	exclude []*Glob
}

func newMatcher(opts Options) (*matcher, error) {
	inc := opts.Include
	if len(inc) == 0 {
		inc = DefaultInclude
	}
	exc := opts.Exclude
	if len(exc) == 0 {
		exc = DefaultExclude
	}
	m := &matcher{}
	for _, p := range inc {
		g, err := CompileGlob(p)
		if err != nil {
			return nil, err
		}
		m.include = append(m.include, g)
	}
	for _, p := range exc {
		g, err := CompileGlob(p)
		if err != nil {
			return nil, err
		}
		m.exclude = append(m.exclude, g)
	}
	return m, nil
}

// excludedDir reports whether a directory is pruned. A directory is pruned
// when it, or any path inside it, would match an exclude pattern.
func (m *matcher) excludedDir(rel string) bool {
	return anyMatch(m.exclude, rel) || anyMatch(m.exclude, rel+"/")
}

func (m *matcher) wantFile(rel string) bool {
	return anyMatch(m.include, rel) && !anyMatch(m.exclude, rel)
}

// Collect walks root and reads every matching file. Any read error fails
// the whole collection.
func Collect(ctx context.Context, root string, opts Options) (Snapshot, error) {
	paths, err := find(ctx, root, opts)
	if err != nil {
		return nil, err
	}

	snap := make(Snapshot, len(paths))
	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency(opts))
	for _, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			text, err := readText(p)
			if err != nil {
				return err
			}
			mu.Lock()
			snap[p] = text
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	pilog.Debug("workspace: collected %d documents under %s", len(snap), root)
	return snap, nil
}

// CollectPartial is Collect that skips unreadable files. It returns the
// files it could read and one error per file it could not.
func CollectPartial(ctx context.Context, root string, opts Options) (Snapshot, []error, error) {
	paths, err := find(ctx, root, opts)
	if err != nil {
		return nil, nil, err
	}

	snap := make(Snapshot, len(paths))
	var (
		mu   sync.Mutex
		errs []error
		g    errgroup.Group
	)
	g.SetLimit(concurrency(opts))
	for _, p := range paths {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			text, err := readText(p)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return nil
			}
			snap[p] = text
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return snap, errs, nil
}

func concurrency(opts Options) int {
	if opts.Concurrency > 0 {
		return opts.Concurrency
	}
	return runtime.GOMAXPROCS(0) * 2
}

// find returns the absolute paths of matching files, sorted.
func find(ctx context.Context, root string, opts Options) ([]string, error) {
	m, err := newMatcher(opts)
	if err != nil {
		return nil, err
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root %s: %w", root, err)
	}

	var paths []string
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if path == absRoot {
			return nil
		}
		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return err
		}
		rel = norm.NFC.String(filepath.ToSlash(rel))

		if d.IsDir() {
			if m.excludedDir(rel) {
				return fs.SkipDir
			}
			return nil
		}
		// Symlinks are not followed; regular files only.
		if !d.Type().IsRegular() {
			return nil
		}
		if m.wantFile(rel) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", absRoot, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// readText reads a file and decodes it as UTF-8, replacing invalid
// sequences with U+FFFD and dropping a leading byte order mark.
func readText(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	dec := unicode.UTF8BOM.NewDecoder()
	out, err := dec.Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", path, err)
	}
	return strings.ToValidUTF8(string(out), "\uFFFD"), nil
}
