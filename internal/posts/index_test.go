package posts

import (
	"errors"
	"testing"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/testutil"
)

func slugs(ps []models.Post) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Slug()
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestListAll_NewestFirst(t *testing.T) {
	idx, err := New([]models.Post{
		testutil.Post(t, "jan", "2024-01-01"),
		testutil.Post(t, "mar", "2024-03-01"),
		testutil.Post(t, "feb", "2024-02-01"),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := slugs(idx.ListAll())
	if want := []string{"mar", "feb", "jan"}; !equal(got, want) {
		t.Errorf("ListAll = %v, want %v", got, want)
	}
}

func TestListAll_InstantResolutionAndTieBreak(t *testing.T) {
	input := []models.Post{
		testutil.Post(t, "morning", "2024-05-01T08:00:00Z"),
		testutil.Post(t, "zeta", "2024-05-01T18:00:00Z"),
		testutil.Post(t, "alpha", "2024-05-01T18:00:00Z"),
	}
	idx, _ := New(input)
	want := []string{"alpha", "zeta", "morning"}
	if got := slugs(idx.ListAll()); !equal(got, want) {
		t.Errorf("ListAll = %v, want %v", got, want)
	}

	// Reversed input must produce the same order.
	reversed := []models.Post{input[2], input[1], input[0]}
	idx2, _ := New(reversed)
	if got := slugs(idx2.ListAll()); !equal(got, want) {
		t.Errorf("ListAll (reversed input) = %v, want %v", got, want)
	}
}

func TestNew_DuplicateSlug(t *testing.T) {
	_, err := New([]models.Post{
		testutil.Post(t, "same", "2024-01-01"),
		testutil.Post(t, "same", "2024-02-01"),
	})
	if !errors.Is(err, apperr.ErrDuplicateSlug) {
		t.Fatalf("err = %v, want ErrDuplicateSlug", err)
	}
}

func TestNew_DoesNotMutateInput(t *testing.T) {
	input := []models.Post{
		testutil.Post(t, "old", "2023-01-01"),
		testutil.Post(t, "new", "2024-01-01"),
	}
	_, _ = New(input)
	if input[0].Slug() != "old" {
		t.Error("input slice was reordered")
	}
}

func TestGetBySlug(t *testing.T) {
	idx, _ := New([]models.Post{
		testutil.Post(t, "hello", "2024-01-01"),
		testutil.Post(t, "2024/nested", "2024-01-02"),
	})
	p, err := idx.GetBySlug("2024/nested")
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if p.Title != "Post 2024/nested" {
		t.Errorf("title = %q", p.Title)
	}
	if _, err := idx.GetBySlug("missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, err := idx.GetBySlug("2024"); !errors.Is(err, apperr.ErrNotFound) {
		t.Error("a slug prefix must not match")
	}
	for _, s := range []string{"/2024/nested", "2024/nested/", "2024/Nested"} {
		if _, err := idx.GetBySlug(s); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("GetBySlug(%q) should require the exact slug", s)
		}
	}
}

func TestDrafts(t *testing.T) {
	input := []models.Post{
		testutil.Post(t, "public", "2024-01-01"),
		testutil.Draft(testutil.Post(t, "secret", "2024-06-01")),
	}

	idx, _ := New(input)
	if got := slugs(idx.ListAll()); !equal(got, []string{"public"}) {
		t.Errorf("ListAll = %v, drafts must be excluded", got)
	}
	if _, err := idx.GetBySlug("secret"); !errors.Is(err, apperr.ErrNotFound) {
		t.Error("draft lookup should be not found by default")
	}
	latest, ok := idx.LatestDate()
	if !ok || latest.Year() != 2024 || latest.Month() != 1 {
		t.Errorf("LatestDate = %v, drafts must not count", latest)
	}

	preview, _ := New(input, WithDrafts(true))
	if got := slugs(preview.ListAll()); !equal(got, []string{"secret", "public"}) {
		t.Errorf("preview ListAll = %v", got)
	}
	if _, err := preview.GetBySlug("secret"); err != nil {
		t.Errorf("preview draft lookup: %v", err)
	}
}

func TestURLAndImageAssetPath(t *testing.T) {
	p := testutil.Post(t, "2024/launch", "2024-01-01")
	if got := URL(p); got != "/blog/2024/launch" {
		t.Errorf("URL = %q", got)
	}
	asset := ImageAssetPath(p)
	if !equal(asset.Segments, []string{"2024", "launch", "image.png"}) {
		t.Errorf("segments = %v", asset.Segments)
	}
	if asset.Path != "og/blog/2024/launch/image.png" {
		t.Errorf("path = %q", asset.Path)
	}
	if asset.URL != "/og/blog/2024/launch/image.png" {
		t.Errorf("url = %q", asset.URL)
	}
	if again := ImageAssetPath(p); again.Path != asset.Path || again.URL != asset.URL {
		t.Error("asset path must be stable")
	}
}

func TestImageURL(t *testing.T) {
	p := testutil.Post(t, "2024/launch", "2024-01-01")
	if got := ImageURL(p); got != "/og/blog/2024/launch/image.png" {
		t.Errorf("generated ImageURL = %q", got)
	}
	p.Image = "/images/cover.jpg"
	if got := ImageURL(p); got != "/images/cover.jpg" {
		t.Errorf("front-matter ImageURL = %q", got)
	}
}

func TestLatestDate_Empty(t *testing.T) {
	idx, _ := New(nil)
	if _, ok := idx.LatestDate(); ok {
		t.Error("empty index has no latest date")
	}
	if idx.Len() != 0 || len(idx.ListAll()) != 0 {
		t.Error("empty index should list nothing")
	}
}

func TestSeries(t *testing.T) {
	part := func(p models.Post, series string, n int) models.Post {
		p.Series = series
		if n > 0 {
			p.SeriesPart = &n
		}
		return p
	}
	idx, _ := New([]models.Post{
		part(testutil.Post(t, "three", "2024-01-01"), "k8s", 3),
		part(testutil.Post(t, "one", "2024-03-01"), "k8s", 1),
		part(testutil.Post(t, "extra", "2024-01-05"), "k8s", 0),
		part(testutil.Post(t, "two", "2024-02-01"), "k8s", 2),
		part(testutil.Post(t, "other", "2024-02-01"), "go", 1),
	})
	if got := slugs(idx.Series("k8s")); !equal(got, []string{"one", "two", "three", "extra"}) {
		t.Errorf("Series = %v", got)
	}
	if got := idx.Series(""); got != nil {
		t.Errorf("empty series name = %v", got)
	}
}

func TestRelated(t *testing.T) {
	idx, _ := New([]models.Post{
		testutil.Post(t, "base", "2024-01-01", "Go", "CLI"),
		testutil.Post(t, "same-tag", "2024-02-01", "go"),
		testutil.Post(t, "other-case", "2024-03-01", "cli "),
		testutil.Post(t, "unrelated", "2024-04-01", "Rust"),
	})
	base, _ := idx.GetBySlug("base")
	if got := slugs(idx.Related(base, 0)); !equal(got, []string{"other-case", "same-tag"}) {
		t.Errorf("Related = %v", got)
	}
	if got := idx.Related(base, 1); len(got) != 1 {
		t.Errorf("Related limit = %d, want 1", len(got))
	}
}
