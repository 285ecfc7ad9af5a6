package tags

import (
	"testing"

	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/posts"
	"github.com/starford/quire/internal/testutil"
)

func aggregate(t *testing.T, ps ...models.Post) *Aggregator {
	t.Helper()
	idx, err := posts.New(ps)
	if err != nil {
		t.Fatalf("posts.New: %v", err)
	}
	return New(idx)
}

func TestAllTags_CountsAndLabels(t *testing.T) {
	a := aggregate(t,
		testutil.Post(t, "first", "2024-02-01", "Go", "go"),
		testutil.Post(t, "second", "2024-01-01", "Rust"),
	)
	got := a.AllTags()
	want := []models.Tag{
		{Label: "Go", Slug: "go", Count: 2},
		{Label: "Rust", Slug: "rust", Count: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("AllTags = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AllTags[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestPostsForTagSlug(t *testing.T) {
	a := aggregate(t,
		testutil.Post(t, "first", "2024-02-01", "Go", "go"),
		testutil.Post(t, "second", "2024-01-01", "Rust"),
	)
	got := a.PostsForTagSlug("go")
	if len(got) != 1 || got[0].Slug() != "first" {
		t.Errorf("PostsForTagSlug(go) = %+v, want only first", got)
	}
	if got := a.PostsForTagSlug("nonexistent"); got == nil || len(got) != 0 {
		t.Errorf("unknown slug should give an empty, non-nil slice, got %#v", got)
	}
}

func TestPostsForTagSlug_NewestFirst(t *testing.T) {
	a := aggregate(t,
		testutil.Post(t, "old", "2023-01-01", "go"),
		testutil.Post(t, "new", "2024-06-01", "Go"),
		testutil.Post(t, "mid", "2024-01-01", "GO "),
	)
	got := a.PostsForTagSlug("go")
	if len(got) != 3 || got[0].Slug() != "new" || got[1].Slug() != "mid" || got[2].Slug() != "old" {
		t.Errorf("order = %v %v %v", got[0].Slug(), got[1].Slug(), got[2].Slug())
	}
}

func TestAllTags_FirstSeenLabelIsNewestPost(t *testing.T) {
	a := aggregate(t,
		testutil.Post(t, "old", "2023-01-01", "golang"),
		testutil.Post(t, "new", "2024-01-01", "GoLang"),
	)
	tag, ok := a.Lookup("golang")
	if !ok {
		t.Fatal("golang tag missing")
	}
	if tag.Label != "GoLang" {
		t.Errorf("label = %q, want label of the newest post", tag.Label)
	}
}

func TestAllTags_DropsEmptySlugs(t *testing.T) {
	a := aggregate(t,
		testutil.Post(t, "a", "2024-01-01", "!!!", "", "🚀", "Go"),
		testutil.Post(t, "b", "2024-01-02"),
	)
	got := a.AllTags()
	if len(got) != 1 || got[0].Slug != "go" {
		t.Errorf("AllTags = %+v, want only go", got)
	}
	if _, ok := a.Lookup(""); ok {
		t.Error("empty slug must never be a tag")
	}
}

func TestAllTags_LocaleAwareSort(t *testing.T) {
	a := aggregate(t,
		testutil.Post(t, "a", "2024-01-01", "zebra", "Apple", "éclair", "banana", "Docker"),
	)
	var labels []string
	for _, tag := range a.AllTags() {
		labels = append(labels, tag.Label)
	}
	want := []string{"Apple", "banana", "Docker", "éclair", "zebra"}
	if len(labels) != len(want) {
		t.Fatalf("labels = %v", labels)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("labels = %v, want %v", labels, want)
			break
		}
	}
}

func TestAllTags_Deterministic(t *testing.T) {
	build := func(ps ...models.Post) []models.Tag {
		return aggregate(t, ps...).AllTags()
	}
	p1 := testutil.Post(t, "p1", "2024-01-01", "Go", "Web")
	p2 := testutil.Post(t, "p2", "2024-01-01", "go", "web", "API")
	a := build(p1, p2)
	b := build(p2, p1)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %v vs %v", a, b)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("input order changed output: %+v vs %+v", a[i], b[i])
		}
	}
}

func TestDraftsExcluded(t *testing.T) {
	a := aggregate(t,
		testutil.Post(t, "public", "2024-01-01", "Go"),
		testutil.Draft(testutil.Post(t, "draft", "2024-02-01", "Go", "Secret")),
	)
	if _, ok := a.Lookup("secret"); ok {
		t.Error("draft-only tag must not be listed")
	}
	tag, _ := a.Lookup("go")
	if tag.Count != 1 {
		t.Errorf("go count = %d, draft must not be counted", tag.Count)
	}
	if got := a.PostsForTagSlug("go"); len(got) != 1 || got[0].Slug() != "public" {
		t.Errorf("PostsForTagSlug(go) = %+v", got)
	}
}

func TestTagsForPost(t *testing.T) {
	p := testutil.Post(t, "p", "2024-01-01", "Go", "go", "", "Machine Learning", "✨")
	refs := TagsForPost(p)
	if len(refs) != 2 {
		t.Fatalf("refs = %+v", refs)
	}
	if refs[0] != (models.TagRef{Label: "Go", Slug: "go", URL: "/blog/tags/go"}) {
		t.Errorf("refs[0] = %+v", refs[0])
	}
	if refs[1].URL != "/blog/tags/machine-learning" {
		t.Errorf("refs[1] = %+v", refs[1])
	}
}
