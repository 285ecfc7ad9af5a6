// Package testutil provides shared test helpers for content fixtures and posts.
package testutil

import (
	"strings"
	"testing"
	"time"

	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/storage"
)

// ContentDir creates a temporary content directory populated with files
// (relative path -> content) and returns its path and a storage provider.
func ContentDir(t *testing.T, files map[string]string) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	for p, c := range files {
		if _, err := store.Write(p, []byte(c)); err != nil {
			t.Fatal(err)
		}
	}
	return dir, store
}

// OutputDir creates an empty temporary output directory provider.
func OutputDir(t *testing.T) (string, *storage.FS) {
	t.Helper()
	return ContentDir(t, nil)
}

// Doc renders a minimal YAML front-matter document.
func Doc(title, date string, tags ...string) string {
	var b strings.Builder
	b.WriteString("---\ntitle: \"" + title + "\"\n")
	b.WriteString("description: \"About " + title + "\"\n")
	b.WriteString("author: Tester\n")
	b.WriteString("date: \"" + date + "\"\n")
	if len(tags) > 0 {
		b.WriteString("tags:\n")
		for _, tag := range tags {
			b.WriteString("  - \"" + tag + "\"\n")
		}
	}
	b.WriteString("---\n\nBody of " + title + ".\n")
	return b.String()
}

// Post builds an in-memory post. slug may contain "/" for nested segments;
// date is parsed as YYYY-MM-DD or RFC 3339.
func Post(t *testing.T, slug, date string, tags ...string) models.Post {
	t.Helper()
	d, err := time.Parse(time.RFC3339, date)
	if err != nil {
		d, err = time.Parse("2006-01-02", date)
		if err != nil {
			t.Fatalf("bad fixture date %q: %v", date, err)
		}
	}
	return models.Post{
		Slugs:       strings.Split(slug, "/"),
		SourcePath:  slug + ".md",
		Title:       "Post " + slug,
		Description: "About " + slug,
		Author:      "Tester",
		Date:        d,
		Tags:        tags,
		Body:        "Body of " + slug + ".",
	}
}

// Draft marks p as a draft.
func Draft(p models.Post) models.Post {
	p.Draft = true
	return p
}
