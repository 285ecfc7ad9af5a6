// Package routes enumerates every statically generated route of the site and
// the sitemap that advertises them.
package routes

import (
	"strings"
	"time"

	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/posts"
	"github.com/starford/quire/internal/tags"
)

// SiteImagePath is the output path of the site-wide preview image.
const SiteImagePath = "og/site/image.png"

// PostParam is the route parameter of one post page.
type PostParam struct {
	Slug []string `json:"slug"`
}

// TagParam is the route parameter of one tag page.
type TagParam struct {
	Tag string `json:"tag"`
}

// Manifest lists everything a build must emit.
type Manifest struct {
	Posts     []PostParam
	Images    []models.ImageAsset
	Tags      []TagParam
	SiteImage models.ImageAsset
	Sitemap   []models.SitemapEntry
}

type staticRoute struct {
	path     string
	freq     string
	priority float64
	dated    bool
}

var staticRoutes = []staticRoute{
	{"/", models.ChangeWeekly, 1.0, true},
	{"/blog", models.ChangeWeekly, 0.9, true},
	{"/blog/tags", models.ChangeWeekly, 0.6, true},
	{"/about", models.ChangeYearly, 0.5, false},
	{"/projects", models.ChangeYearly, 0.5, false},
	{"/contact", models.ChangeYearly, 0.4, false},
}

// Enumerate computes the route manifest. It is pure: the same index and
// aggregator always produce an identical manifest.
func Enumerate(idx *posts.Index, agg *tags.Aggregator, site models.Site) Manifest {
	all := idx.ListAll()
	vocab := agg.AllTags()

	m := Manifest{
		Posts:  make([]PostParam, 0, len(all)),
		Images: make([]models.ImageAsset, 0, len(all)),
		Tags:   make([]TagParam, 0, len(vocab)),
		SiteImage: models.ImageAsset{
			Segments: []string{"image.png"},
			Path:     SiteImagePath,
			URL:      "/" + SiteImagePath,
		},
	}
	for _, p := range all {
		m.Posts = append(m.Posts, PostParam{Slug: append([]string(nil), p.Slugs...)})
		m.Images = append(m.Images, posts.ImageAssetPath(p))
	}
	for _, t := range vocab {
		m.Tags = append(m.Tags, TagParam{Tag: t.Slug})
	}

	var latest *time.Time
	if d, ok := idx.LatestDate(); ok {
		latest = &d
	}
	base := strings.TrimRight(site.URL, "/")

	m.Sitemap = make([]models.SitemapEntry, 0, len(staticRoutes)+len(vocab)+len(all))
	for _, r := range staticRoutes {
		e := models.SitemapEntry{URL: Absolute(base, r.path), ChangeFrequency: r.freq, Priority: r.priority}
		if r.dated {
			e.LastModified = latest
		}
		m.Sitemap = append(m.Sitemap, e)
	}
	for _, t := range vocab {
		m.Sitemap = append(m.Sitemap, models.SitemapEntry{
			URL:             Absolute(base, tags.URL(t.Slug)),
			LastModified:    latest,
			ChangeFrequency: models.ChangeMonthly,
			Priority:        0.4,
		})
	}
	for _, p := range all {
		d := p.Date
		m.Sitemap = append(m.Sitemap, models.SitemapEntry{
			URL:             Absolute(base, posts.URL(p)),
			LastModified:    &d,
			ChangeFrequency: models.ChangeYearly,
			Priority:        0.7,
		})
	}
	return m
}

// Absolute joins a site-relative path onto base. Paths that already carry a
// scheme are returned untouched.
func Absolute(base, p string) string {
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return strings.TrimRight(base, "/") + p
}
