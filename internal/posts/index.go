// Package posts indexes a loaded post collection: lookups, chronological
// listings and the URL/asset identity of every post.
package posts

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/slug"
)

const (
	// BlogPrefix is the URL prefix of every post page.
	BlogPrefix = "/blog/"
	// ImageFile is the file name appended to a post's slug segments to form
	// its preview image asset.
	ImageFile = "image.png"
	// ImageDir is the output directory (and URL prefix) for post preview images.
	ImageDir = "og/blog"
)

// Option configures an Index.
type Option func(*Index)

// WithDrafts exposes draft posts in listings and lookups (preview builds).
func WithDrafts(enabled bool) Option {
	return func(i *Index) {
		i.drafts = enabled
	}
}

// Index is an immutable view over a post collection.
type Index struct {
	drafts bool
	all    []models.Post // sorted, drafts included
	public []models.Post // sorted, visible posts only
	bySlug map[string]int
}

// New builds an index from the loader's output. Two posts sharing a slug is a
// fatal error.
func New(posts []models.Post, opts ...Option) (*Index, error) {
	idx := &Index{bySlug: make(map[string]int, len(posts))}
	for _, opt := range opts {
		opt(idx)
	}

	all := make([]models.Post, len(posts))
	copy(all, posts)
	SortByDate(all)

	for i, p := range all {
		key := p.Slug()
		if _, dup := idx.bySlug[key]; dup {
			return nil, fmt.Errorf("posts: %w %q", apperr.ErrDuplicateSlug, key)
		}
		idx.bySlug[key] = i
		if idx.visible(p) {
			idx.public = append(idx.public, p)
		}
	}
	idx.all = all
	return idx, nil
}

func (i *Index) visible(p models.Post) bool {
	return !p.Draft || i.drafts
}

// ListAll returns every visible post, newest first.
func (i *Index) ListAll() []models.Post {
	out := make([]models.Post, len(i.public))
	copy(out, i.public)
	return out
}

// Len returns the number of visible posts.
func (i *Index) Len() int {
	return len(i.public)
}

// GetBySlug returns the post whose slug equals s exactly, or
// apperr.ErrNotFound. Drafts are only found when the index exposes drafts.
func (i *Index) GetBySlug(s string) (models.Post, error) {
	n, ok := i.bySlug[s]
	if !ok || !i.visible(i.all[n]) {
		return models.Post{}, apperr.ErrNotFound
	}
	return i.all[n], nil
}

// URL returns the canonical page URL of p.
func URL(p models.Post) string {
	return BlogPrefix + p.Slug()
}

// ImageAssetPath returns the preview image identity of p. The same value is
// used to write the image and to reference it from page metadata.
func ImageAssetPath(p models.Post) models.ImageAsset {
	segments := make([]string, 0, len(p.Slugs)+1)
	segments = append(segments, p.Slugs...)
	segments = append(segments, ImageFile)
	rel := path.Join(ImageDir, strings.Join(segments, "/"))
	return models.ImageAsset{
		Segments: segments,
		Path:     rel,
		URL:      "/" + rel,
	}
}

// ImageURL returns the preview image referenced from p's page metadata: the
// front-matter image when set, the generated asset otherwise.
func ImageURL(p models.Post) string {
	if p.Image != "" {
		return p.Image
	}
	return ImageAssetPath(p).URL
}

// LatestDate returns the newest visible post date.
func (i *Index) LatestDate() (time.Time, bool) {
	if len(i.public) == 0 {
		return time.Time{}, false
	}
	// public is sorted newest first.
	return i.public[0].Date, true
}

// Series returns the visible posts of a series ordered by part, then date.
// Posts without a part sort after numbered ones.
func (i *Index) Series(name string) []models.Post {
	if name == "" {
		return nil
	}
	var out []models.Post
	for _, p := range i.public {
		if p.Series == name {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		pa, pb := out[a].SeriesPart, out[b].SeriesPart
		switch {
		case pa != nil && pb != nil && *pa != *pb:
			return *pa < *pb
		case pa != nil && pb == nil:
			return true
		case pa == nil && pb != nil:
			return false
		}
		if !out[a].Date.Equal(out[b].Date) {
			return out[a].Date.Before(out[b].Date)
		}
		return out[a].Slug() < out[b].Slug()
	})
	return out
}

// Related returns up to limit visible posts sharing at least one normalized
// tag with p, newest first. limit <= 0 means no limit.
func (i *Index) Related(p models.Post, limit int) []models.Post {
	want := make(map[string]struct{}, len(p.Tags))
	for _, t := range p.Tags {
		if s := slug.Normalize(t); s != "" {
			want[s] = struct{}{}
		}
	}
	if len(want) == 0 {
		return nil
	}
	var out []models.Post
	for _, other := range i.public {
		if other.Slug() == p.Slug() {
			continue
		}
		for _, t := range other.Tags {
			if _, ok := want[slug.Normalize(t)]; ok {
				out = append(out, other)
				break
			}
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// SortByDate orders posts newest first. Posts with identical instants are
// ordered by slug so the result never depends on input order.
func SortByDate(posts []models.Post) {
	sort.SliceStable(posts, func(a, b int) bool {
		if !posts[a].Date.Equal(posts[b].Date) {
			return posts[a].Date.After(posts[b].Date)
		}
		return posts[a].Slug() < posts[b].Slug()
	})
}
