// ABOUTME: Tests for the workspace collector: filtering, pruning, decoding, failure modes
// ABOUTME: Builds throwaway trees under t.TempDir()

package workspace

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestCollect_FiltersAndPrunes(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"openapi.yaml":                  "openapi: 3.0.0",
		"api/pets.json":                 `{"paths":{}}`,
		"api/legacy.yml":                "swagger: '2.0'",
		"README.md":                     "# readme",
		"node_modules/pkg/package.json": "{}",
		"web/node_modules/x/a.yaml":     "x: 1",
		".vscode/settings.json":         "{}",
	})

	snap, err := Collect(context.Background(), root, Options{})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	want := []string{
		filepath.Join(root, "api", "legacy.yml"),
		filepath.Join(root, "api", "pets.json"),
		filepath.Join(root, "openapi.yaml"),
	}
	got := snap.Paths()
	if len(got) != len(want) {
		t.Fatalf("paths = %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("paths[%d] = %q; want %q", i, got[i], want[i])
		}
	}
	if snap[filepath.Join(root, "openapi.yaml")] != "openapi: 3.0.0" {
		t.Errorf("content mismatch: %q", snap[filepath.Join(root, "openapi.yaml")])
	}
}

func TestCollect_EmptyWorkspace(t *testing.T) {
	t.Parallel()

	snap, err := Collect(context.Background(), t.TempDir(), Options{})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(snap) != 0 {
		t.Errorf("len = %d; want 0", len(snap))
	}
	if snap.JSON() != "{}" {
		t.Errorf("JSON() = %q; want {}", snap.JSON())
	}
}

func TestCollect_InvalidUTF8Replaced(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{"bad.json": "{\"a\":\"\xff\"}"})

	snap, err := Collect(context.Background(), root, Options{})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	got := snap[filepath.Join(root, "bad.json")]
	if got != "{\"a\":\"\uFFFD\"}" {
		t.Errorf("content = %q; want replacement character", got)
	}
}

func TestCollect_BOMStripped(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{"bom.yaml": "\xef\xbb\xbfopenapi: 3.1.0"})

	snap, err := Collect(context.Background(), root, Options{})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if got := snap[filepath.Join(root, "bom.yaml")]; got != "openapi: 3.1.0" {
		t.Errorf("content = %q", got)
	}
}

func TestCollect_CustomPatterns(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"specs/a.yaml": "a",
		"specs/b.json": "b",
		"other/c.yaml": "c",
	})

	snap, err := Collect(context.Background(), root, Options{
		Include: []string{"specs/*.yaml"},
	})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(snap) != 1 || snap[filepath.Join(root, "specs", "a.yaml")] != "a" {
		t.Errorf("snapshot = %v", snap)
	}
}

func TestCollect_NonASCIIPatterns(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"api/café/x.json":           "x",
		"api/cafe/y.json":           "y",
		"api/café/brouillon/z.json": "z",
	})

	snap, err := Collect(context.Background(), root, Options{
		Include: []string{"**/café/**/*.json"},
		Exclude: []string{"**/brouillon/**"},
	})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(snap) != 1 || snap[filepath.Join(root, "api", "café", "x.json")] != "x" {
		t.Errorf("snapshot = %v", snap)
	}
}

func TestCollect_BadPattern(t *testing.T) {
	t.Parallel()

	if _, err := Collect(context.Background(), t.TempDir(), Options{Include: []string{"{x"}}); err == nil {
		t.Error("expected error for malformed include pattern")
	}
}

func TestCollect_Canceled(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.yaml": "a"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Collect(ctx, root, Options{}); err == nil {
		t.Error("expected error from canceled context")
	}
}

func TestCollect_UnreadableFile(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits not enforced")
	}
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{"ok.yaml": "ok", "locked.yaml": "secret"})
	locked := filepath.Join(root, "locked.yaml")
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o644) })

	if _, err := Collect(context.Background(), root, Options{}); err == nil {
		t.Error("Collect should fail when any file is unreadable")
	}

	snap, errs, err := CollectPartial(context.Background(), root, Options{})
	if err != nil {
		t.Fatalf("CollectPartial: %v", err)
	}
	if len(errs) != 1 {
		t.Errorf("errs = %v; want one", errs)
	}
	if snap[filepath.Join(root, "ok.yaml")] != "ok" {
		t.Errorf("readable file missing from partial snapshot: %v", snap)
	}
}

func TestSnapshot_JSONSorted(t *testing.T) {
	t.Parallel()

	snap := Snapshot{"/b.yaml": "b", "/a.json": "{}"}
	got := snap.JSON()
	want := `{"/a.json":"{}","/b.yaml":"b"}`
	if got != want {
		t.Errorf("JSON() = %s; want %s", got, want)
	}
	var back map[string]string
	if err := json.Unmarshal([]byte(got), &back); err != nil {
		t.Fatalf("round trip: %v", err)
	}
}
