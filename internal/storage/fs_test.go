package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func tempRoot(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempRoot(t)
	content := []byte("---\ntitle: Hello\n---\nWorld\n")
	changed, err := s.Write("post.md", content)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !changed {
		t.Error("first write should report a change")
	}
	got, err := s.Read("post.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteUnchangedIsSkipped(t *testing.T) {
	s := tempRoot(t)
	if _, err := s.Write("same.txt", []byte("v1")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	changed, err := s.Write("same.txt", []byte("v1"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if changed {
		t.Error("identical content should not be rewritten")
	}
	changed, _ = s.Write("same.txt", []byte("v2"))
	if !changed {
		t.Error("new content should be written")
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempRoot(t)
	if _, err := s.Write("og/blog/a/b/image.png", []byte("png")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("og/blog/a/b/image.png")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "png" {
		t.Errorf("content = %q", got)
	}
}

func TestList(t *testing.T) {
	s := tempRoot(t)
	_, _ = s.Write("b.md", []byte("b"))
	_, _ = s.Write("sub/a.mdx", []byte("a"))
	_, _ = s.Write("readme.txt", []byte("not content"))
	_, _ = s.Write(".drafts/hidden.md", []byte("hidden"))

	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(items), items)
	}
	if items[0].Path != "b.md" || items[1].Path != "sub/a.mdx" {
		t.Errorf("paths = %q, %q", items[0].Path, items[1].Path)
	}
	if items[0].UpdatedAt.IsZero() {
		t.Error("modification time should be set")
	}
}

func TestPrune(t *testing.T) {
	s := tempRoot(t)
	_, _ = s.Write("keep.html", []byte("k"))
	_, _ = s.Write("blog/old/index.html", []byte("stale"))
	_, _ = s.Write("blog/new/index.html", []byte("fresh"))

	removed, err := s.Prune(map[string]struct{}{
		"keep.html":           {},
		"blog/new/index.html": {},
	})
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if len(removed) != 1 || removed[0] != "blog/old/index.html" {
		t.Errorf("removed = %v", removed)
	}
	if _, err := os.Stat(filepath.Join(s.root, "blog", "old")); !os.IsNotExist(err) {
		t.Error("empty directory should be removed")
	}
	if _, err := s.Read("blog/new/index.html"); err != nil {
		t.Errorf("kept file missing: %v", err)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempRoot(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.md",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if _, err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteLeavesNoTempFiles(t *testing.T) {
	s := tempRoot(t)
	_, _ = s.Write("atomic.html", []byte("original"))
	if _, err := s.Write("atomic.html", []byte("updated")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("atomic.html")
	if string(got) != "updated" {
		t.Errorf("expected updated content, got %q", got)
	}
	matches, _ := filepath.Glob(filepath.Join(s.root, ".quire-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "quire-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
