// Package render turns the content index into HTML pages using the embedded
// templates.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/starford/quire/internal/listing"
	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/routes"
	"github.com/starford/quire/internal/tags"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page template names.
const (
	PageHome     = "home.html"
	PageBlog     = "blog.html"
	PagePost     = "post.html"
	PageTags     = "tags.html"
	PageTag      = "tag.html"
	PageAbout    = "about.html"
	PageProjects = "projects.html"
	PageContact  = "contact.html"
	PageNotFound = "404.html"
)

var pageNames = []string{
	PageHome, PageBlog, PagePost, PageTags, PageTag,
	PageAbout, PageProjects, PageContact, PageNotFound,
}

// Meta is the per-page document metadata.
type Meta struct {
	Title       string
	Description string
	Path        string
	Image       string
	Type        string
	Published   time.Time
}

type page struct {
	Site       models.Site
	Meta       Meta
	Canonical  string
	ImageURL   string
	LiveReload string
	Data       any
}

// PostView is the data of a post page.
type PostView struct {
	Post      models.Post
	DateLabel string
	Article   Article
	Tags      []models.TagRef
	Series    []listing.Summary
	Related   []listing.Summary
}

// TagView is the data of a tag page.
type TagView struct {
	Tag   models.Tag
	Posts []listing.Summary
	All   []models.Tag
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLiveReload makes every page reload itself when the event stream at
// path announces a finished build.
func WithLiveReload(path string) Option {
	return func(r *Renderer) {
		r.liveReload = path
	}
}

// Renderer renders pages for one site.
type Renderer struct {
	site       models.Site
	liveReload string
	md         goldmark.Markdown
	pages      map[string]*template.Template
}

// New parses the embedded templates.
func New(site models.Site, opts ...Option) (*Renderer, error) {
	r := &Renderer{
		site:  site,
		md:    newMarkdown(),
		pages: make(map[string]*template.Template, len(pageNames)),
	}
	for _, opt := range opts {
		opt(r)
	}

	funcs := template.FuncMap{
		"iso":    func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
		"tagURL": tags.URL,
		"plural": func(n int, one, many string) string {
			if n == 1 {
				return one
			}
			return many
		},
	}
	for _, name := range pageNames {
		t, err := template.New("base.html").Funcs(funcs).ParseFS(templateFS,
			"templates/base.html", "templates/partials.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("render: parse %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

func (r *Renderer) render(name string, meta Meta, data any) ([]byte, error) {
	t, ok := r.pages[name]
	if !ok {
		return nil, fmt.Errorf("render: unknown page %q", name)
	}
	if meta.Type == "" {
		meta.Type = "website"
	}
	if meta.Image == "" {
		meta.Image = "/" + routes.SiteImagePath
	}
	if meta.Description == "" {
		meta.Description = r.site.Description
	}
	p := page{
		Site:       r.site,
		Meta:       meta,
		Canonical:  routes.Absolute(r.site.URL, meta.Path),
		ImageURL:   routes.Absolute(r.site.URL, meta.Image),
		LiveReload: r.liveReload,
		Data:       data,
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base.html", p); err != nil {
		return nil, fmt.Errorf("render: %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Home renders the landing page with the initially revealed posts.
func (r *Renderer) Home(reveal *listing.Reveal[listing.Summary]) ([]byte, error) {
	return r.render(PageHome, Meta{Path: "/"}, reveal)
}

// Blog renders the full post listing.
func (r *Renderer) Blog(items []listing.Summary) ([]byte, error) {
	return r.render(PageBlog, Meta{Title: "Blog", Path: "/blog"}, items)
}

// Post renders a single post page.
func (r *Renderer) Post(v PostView, url, image string) ([]byte, error) {
	return r.render(PagePost, Meta{
		Title:       v.Post.Title,
		Description: v.Post.Description,
		Path:        url,
		Image:       image,
		Type:        "article",
		Published:   v.Post.Date,
	}, v)
}

// Tags renders the tag index.
func (r *Renderer) Tags(all []models.Tag) ([]byte, error) {
	return r.render(PageTags, Meta{
		Title:       "Tags",
		Description: "Browse all blog tags.",
		Path:        "/blog/tags",
	}, all)
}

// Tag renders the page of one tag.
func (r *Renderer) Tag(v TagView) ([]byte, error) {
	return r.render(PageTag, Meta{
		Title:       "Tag: " + v.Tag.Label,
		Description: fmt.Sprintf("Blog posts tagged %q.", v.Tag.Label),
		Path:        tags.URL(v.Tag.Slug),
	}, v)
}

// Static renders one of the content-free pages (about, projects, contact,
// 404).
func (r *Renderer) Static(name string) ([]byte, error) {
	base := strings.TrimSuffix(name, ".html")
	meta := Meta{Title: strings.ToUpper(base[:1]) + base[1:], Path: "/" + base}
	if name == PageNotFound {
		meta = Meta{Title: "Not found", Path: "/404"}
	}
	return r.render(name, meta, nil)
}
