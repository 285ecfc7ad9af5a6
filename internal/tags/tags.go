// Package tags builds the tag vocabulary and the tag/post relations of a
// post index.
package tags

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/posts"
	"github.com/starford/quire/internal/slug"
)

// Prefix is the URL prefix of tag pages.
const Prefix = "/blog/tags/"

// URL returns the tag page URL for a normalized tag slug.
func URL(tagSlug string) string {
	return Prefix + tagSlug
}

// Aggregator derives tag data from a post index. It is computed once and
// is read-only afterwards.
type Aggregator struct {
	tags   []models.Tag
	bySlug map[string]int
	posts  map[string][]models.Post
}

// New aggregates the tags of every visible post in idx. Posts are traversed
// newest first, so a tag's label is the first spelling seen in that order.
// Tags that normalize to an empty slug are ignored.
func New(idx *posts.Index) *Aggregator {
	a := &Aggregator{
		bySlug: make(map[string]int),
		posts:  make(map[string][]models.Post),
	}
	for _, p := range idx.ListAll() {
		tagged := make(map[string]bool, len(p.Tags))
		for _, raw := range p.Tags {
			s := slug.Normalize(raw)
			if s == "" {
				continue
			}
			if n, ok := a.bySlug[s]; ok {
				a.tags[n].Count++
			} else {
				a.bySlug[s] = len(a.tags)
				a.tags = append(a.tags, models.Tag{Label: raw, Slug: s, Count: 1})
			}
			if !tagged[s] {
				tagged[s] = true
				a.posts[s] = append(a.posts[s], p)
			}
		}
	}

	sortByLabel(a.tags)
	for i, t := range a.tags {
		a.bySlug[t.Slug] = i
	}
	return a
}

// sortByLabel orders tags by display label the way a reader expects:
// case and accents are ignored, ties fall back to the slug.
func sortByLabel(tags []models.Tag) {
	col := collate.New(language.English, collate.IgnoreCase, collate.IgnoreDiacritics)
	sort.SliceStable(tags, func(i, j int) bool {
		if c := col.CompareString(tags[i].Label, tags[j].Label); c != 0 {
			return c < 0
		}
		return tags[i].Slug < tags[j].Slug
	})
}

// AllTags returns the tag vocabulary sorted by label.
func (a *Aggregator) AllTags() []models.Tag {
	out := make([]models.Tag, len(a.tags))
	copy(out, a.tags)
	return out
}

// Lookup reports whether tagSlug is part of the vocabulary.
func (a *Aggregator) Lookup(tagSlug string) (models.Tag, bool) {
	n, ok := a.bySlug[tagSlug]
	if !ok {
		return models.Tag{}, false
	}
	return a.tags[n], true
}

// PostsForTagSlug returns the posts carrying tagSlug, newest first. An
// unknown slug yields an empty slice.
func (a *Aggregator) PostsForTagSlug(tagSlug string) []models.Post {
	src := a.posts[tagSlug]
	out := make([]models.Post, len(src))
	copy(out, src)
	return out
}

// TagsForPost returns the tag chips of p in front-matter order. Raw tags that
// normalize to nothing are skipped; repeated slugs keep their first spelling.
func TagsForPost(p models.Post) []models.TagRef {
	var out []models.TagRef
	seen := make(map[string]bool, len(p.Tags))
	for _, raw := range p.Tags {
		s := slug.Normalize(raw)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, models.TagRef{Label: raw, Slug: s, URL: URL(s)})
	}
	return out
}
