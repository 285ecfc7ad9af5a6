package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

type recorder struct {
	mu      sync.Mutex
	batches [][]Change
}

func (r *recorder) rebuild(_ context.Context, changes []Change) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, changes)
}

func (r *recorder) snapshot() [][]Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]Change(nil), r.batches...)
}

func startWatch(t *testing.T, root string, debounce time.Duration) *recorder {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	rec := &recorder{}
	go Watch(ctx, root, debounce, logger, rec.rebuild)
	time.Sleep(100 * time.Millisecond)
	return rec
}

func TestWatch_DebouncesBurst(t *testing.T) {
	root := t.TempDir()
	rec := startWatch(t, root, 300*time.Millisecond)

	for _, name := range []string{"a.md", "b.md", "c.mdx"} {
		_ = os.WriteFile(filepath.Join(root, name), []byte("---\ntitle: x\n---\n"), 0o644)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return len(rec.snapshot()) >= 1
	}, "no rebuild after changes")

	time.Sleep(500 * time.Millisecond)
	batches := rec.snapshot()
	if len(batches) != 1 {
		t.Fatalf("rebuilds = %d, want one coalesced rebuild", len(batches))
	}
	seen := map[string]bool{}
	for _, c := range batches[0] {
		seen[c.Path] = true
	}
	for _, want := range []string{"a.md", "b.md", "c.mdx"} {
		if !seen[want] {
			t.Errorf("batch %+v missing %s", batches[0], want)
		}
	}
}

func TestWatch_IgnoresNonContent(t *testing.T) {
	root := t.TempDir()
	rec := startWatch(t, root, 100*time.Millisecond)

	_ = os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644)
	time.Sleep(400 * time.Millisecond)
	if n := len(rec.snapshot()); n != 0 {
		t.Errorf("rebuilds = %d, non-content files must be ignored", n)
	}
}

func TestWatch_NewDirectoryAndDelete(t *testing.T) {
	root := t.TempDir()
	rec := startWatch(t, root, 100*time.Millisecond)

	sub := filepath.Join(root, "2024")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	p := filepath.Join(sub, "post.md")
	_ = os.WriteFile(p, []byte("x"), 0o644)

	has := func(kind, path string) bool {
		for _, b := range rec.snapshot() {
			for _, c := range b {
				if c.Kind == kind && c.Path == path {
					return true
				}
			}
		}
		return false
	}
	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return has("created", "2024/post.md") || has("updated", "2024/post.md")
	}, "file in new directory not seen")

	_ = os.Remove(p)
	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return has("deleted", "2024/post.md")
	}, "delete not seen")
}
