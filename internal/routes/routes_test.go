package routes

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/posts"
	"github.com/starford/quire/internal/tags"
	"github.com/starford/quire/internal/testutil"
)

var site = models.Site{Name: "Test", URL: "https://example.com/"}

func enumerate(t *testing.T, ps ...models.Post) Manifest {
	t.Helper()
	idx, err := posts.New(ps)
	if err != nil {
		t.Fatalf("posts.New: %v", err)
	}
	return Enumerate(idx, tags.New(idx), site)
}

func TestEnumerate_Params(t *testing.T) {
	m := enumerate(t,
		testutil.Post(t, "2024/launch", "2024-03-01", "Go", "Web"),
		testutil.Post(t, "intro", "2024-01-01", "go"),
		testutil.Draft(testutil.Post(t, "wip", "2024-05-01", "Secret")),
	)

	if len(m.Posts) != 2 {
		t.Fatalf("posts = %+v, draft must be excluded", m.Posts)
	}
	if !reflect.DeepEqual(m.Posts[0].Slug, []string{"2024", "launch"}) {
		t.Errorf("posts[0] = %+v", m.Posts[0])
	}
	if len(m.Images) != 2 || m.Images[0].Path != "og/blog/2024/launch/image.png" {
		t.Errorf("images = %+v", m.Images)
	}
	if len(m.Tags) != 2 || m.Tags[0].Tag != "go" || m.Tags[1].Tag != "web" {
		t.Errorf("tags = %+v", m.Tags)
	}
	if m.SiteImage.URL != "/og/site/image.png" {
		t.Errorf("site image = %+v", m.SiteImage)
	}
}

func TestEnumerate_Sitemap(t *testing.T) {
	m := enumerate(t,
		testutil.Post(t, "new", "2024-03-01", "Go"),
		testutil.Post(t, "old", "2023-01-01"),
	)
	want := []struct {
		url   string
		freq  string
		prio  float64
		dated bool
	}{
		{"https://example.com/", models.ChangeWeekly, 1.0, true},
		{"https://example.com/blog", models.ChangeWeekly, 0.9, true},
		{"https://example.com/blog/tags", models.ChangeWeekly, 0.6, true},
		{"https://example.com/about", models.ChangeYearly, 0.5, false},
		{"https://example.com/projects", models.ChangeYearly, 0.5, false},
		{"https://example.com/contact", models.ChangeYearly, 0.4, false},
		{"https://example.com/blog/tags/go", models.ChangeMonthly, 0.4, true},
		{"https://example.com/blog/new", models.ChangeYearly, 0.7, true},
		{"https://example.com/blog/old", models.ChangeYearly, 0.7, true},
	}
	if len(m.Sitemap) != len(want) {
		t.Fatalf("sitemap has %d entries, want %d", len(m.Sitemap), len(want))
	}
	for i, w := range want {
		e := m.Sitemap[i]
		if e.URL != w.url || e.ChangeFrequency != w.freq || e.Priority != w.prio || (e.LastModified != nil) != w.dated {
			t.Errorf("entry %d = %+v, want %+v", i, e, w)
		}
	}
	if got := m.Sitemap[0].LastModified.Format("2006-01-02"); got != "2024-03-01" {
		t.Errorf("home lastModified = %s, want latest post date", got)
	}
	if got := m.Sitemap[8].LastModified.Format("2006-01-02"); got != "2023-01-01" {
		t.Errorf("post lastModified = %s", got)
	}
}

func TestEnumerate_NoPosts(t *testing.T) {
	m := enumerate(t)
	if len(m.Posts) != 0 || len(m.Tags) != 0 {
		t.Errorf("manifest = %+v", m)
	}
	if len(m.Sitemap) != len(staticRoutes) {
		t.Fatalf("sitemap = %+v", m.Sitemap)
	}
	for _, e := range m.Sitemap {
		if e.LastModified != nil {
			t.Errorf("%s has lastModified without posts", e.URL)
		}
	}
}

func TestEnumerate_Idempotent(t *testing.T) {
	ps := []models.Post{
		testutil.Post(t, "a", "2024-01-01", "Go", "Rust"),
		testutil.Post(t, "b", "2024-01-01", "rust"),
	}
	first := enumerate(t, ps...)
	second := enumerate(t, ps[1], ps[0])
	if !reflect.DeepEqual(first, second) {
		t.Errorf("enumeration is not stable:\n%+v\n%+v", first, second)
	}
}

func TestAbsolute(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{"https://example.com/", "/blog", "https://example.com/blog"},
		{"https://example.com", "blog", "https://example.com/blog"},
		{"https://example.com", "https://cdn.example.com/x.png", "https://cdn.example.com/x.png"},
	}
	for _, tt := range tests {
		if got := Absolute(tt.base, tt.path); got != tt.want {
			t.Errorf("Absolute(%q, %q) = %q, want %q", tt.base, tt.path, got, tt.want)
		}
	}
}

func TestEncodeSitemap(t *testing.T) {
	m := enumerate(t, testutil.Post(t, "hello", "2024-03-01T10:00:00Z"))
	var buf bytes.Buffer
	if err := EncodeSitemap(&buf, m.Sitemap); err != nil {
		t.Fatalf("EncodeSitemap: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`,
		`<loc>https://example.com/blog/hello</loc>`,
		`<lastmod>2024-03-01T10:00:00Z</lastmod>`,
		`<changefreq>yearly</changefreq>`,
		`<priority>1.0</priority>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("sitemap missing %q:\n%s", want, out)
		}
	}
}

func TestRobots(t *testing.T) {
	got := Robots("https://example.com/")
	if !strings.Contains(got, "Sitemap: https://example.com/sitemap.xml") {
		t.Errorf("robots = %q", got)
	}
}
