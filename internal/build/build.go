// Package build generates the static site from the content directory.
package build

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/starford/quire/internal/checksum"
	"github.com/starford/quire/internal/listing"
	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/ogimage"
	"github.com/starford/quire/internal/posts"
	"github.com/starford/quire/internal/render"
	"github.com/starford/quire/internal/routes"
	"github.com/starford/quire/internal/search"
	"github.com/starford/quire/internal/storage"
	"github.com/starford/quire/internal/tags"
)

// Output paths relative to the output directory.
const (
	SitemapPath   = "sitemap.xml"
	RobotsPath    = "robots.txt"
	SearchPath    = "api/search.json"
	LLMsPath      = "llms-full.txt"
	PostsDataPath = "data/posts.json"
	TagsDataPath  = "data/tags.json"
	NotFoundPath  = "404.html"
)

const relatedLimit = 3

// Options controls a build.
type Options struct {
	ContentDir string
	Site       models.Site
	PageSize   int
	OGWorkers  int
	Drafts     bool
	Clean      bool
	LiveReload string
}

// Report summarizes a finished build.
type Report struct {
	Posts       int
	Tags        int
	Files       int
	Written     int
	Images      int
	Pruned      int
	Fingerprint string
	Duration    time.Duration
}

// Builder runs builds. Concurrent calls to Run are serialized.
type Builder struct {
	mu       sync.Mutex
	content  storage.Provider
	out      storage.Provider
	opts     Options
	logger   *slog.Logger
	renderer *render.Renderer
	og       *ogimage.Generator
}

// New prepares a builder reading from content and writing to out.
func New(content, out storage.Provider, opts Options, logger *slog.Logger) (*Builder, error) {
	if opts.PageSize < 1 {
		opts.PageSize = 5
	}
	var ropts []render.Option
	if opts.LiveReload != "" {
		ropts = append(ropts, render.WithLiveReload(opts.LiveReload))
	}
	r, err := render.New(opts.Site, ropts...)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	cards, err := ogimage.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	return &Builder{
		content:  content,
		out:      out,
		opts:     opts,
		logger:   logger,
		renderer: r,
		og:       ogimage.NewGenerator(cards, out, opts.OGWorkers),
	}, nil
}

// emitter writes outputs and remembers what the build produced.
type emitter struct {
	out     storage.Provider
	keep    map[string]struct{}
	sums    map[string]string
	written int
}

func (e *emitter) write(p string, data []byte) error {
	if _, dup := e.keep[p]; dup {
		return fmt.Errorf("build: %w: %s", ErrOutputCollision, p)
	}
	changed, err := e.out.Write(p, data)
	if err != nil {
		return fmt.Errorf("build: write %s: %w", p, err)
	}
	e.keep[p] = struct{}{}
	e.sums[p] = checksum.Sum(data)
	if changed {
		e.written++
	}
	return nil
}

func (e *emitter) json(p string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("build: encode %s: %w", p, err)
	}
	return e.write(p, append(data, '\n'))
}

// Run performs a full build. A content error aborts the build before any
// output is touched.
func (b *Builder) Run(ctx context.Context) (Report, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := time.Now()
	snap, err := Load(b.content, b.opts.ContentDir, b.opts.Drafts)
	if err != nil {
		return Report{}, err
	}
	manifest := routes.Enumerate(snap.Posts, snap.Tags, b.opts.Site)

	e := &emitter{out: b.out, keep: make(map[string]struct{}), sums: make(map[string]string)}
	if err := b.pages(e, snap); err != nil {
		return Report{}, err
	}
	if err := b.feeds(e, snap, manifest); err != nil {
		return Report{}, err
	}

	jobs := b.imageJobs(snap, manifest)
	res, err := b.og.Generate(ctx, jobs)
	if err != nil {
		return Report{}, fmt.Errorf("build: images: %w", err)
	}
	for _, j := range jobs {
		e.keep[j.Asset.Path] = struct{}{}
		e.sums[j.Asset.Path] = cardSum(j.Card)
	}

	report := Report{
		Posts:   snap.Posts.Len(),
		Tags:    len(manifest.Tags),
		Files:   len(e.keep),
		Written: e.written + res.Written,
		Images:  res.Rendered,
	}
	if b.opts.Clean {
		removed, err := b.out.Prune(e.keep)
		if err != nil {
			return Report{}, fmt.Errorf("build: %w", err)
		}
		for _, p := range removed {
			b.logger.Debug("build: pruned", slog.String("path", p))
		}
		report.Pruned = len(removed)
	}
	report.Fingerprint = checksum.Fingerprint(e.sums)
	report.Duration = time.Since(start)

	b.logger.Info("build: completed",
		slog.Int("posts", report.Posts),
		slog.Int("tags", report.Tags),
		slog.Int("files", report.Files),
		slog.Int("written", report.Written),
		slog.Int("pruned", report.Pruned),
		slog.String("fingerprint", report.Fingerprint),
		slog.String("duration", report.Duration.String()))
	return report, nil
}

// pageFile maps a route path to its output file.
func pageFile(route string) string {
	return path.Join(strings.Trim(route, "/"), "index.html")
}

func (b *Builder) pages(e *emitter, snap *Snapshot) error {
	all := snap.Posts.ListAll()
	summaries := listing.Summaries(all)

	home, err := b.renderer.Home(listing.NewReveal(summaries, b.opts.PageSize))
	if err != nil {
		return err
	}
	if err := e.write(pageFile("/"), home); err != nil {
		return err
	}

	blog, err := b.renderer.Blog(summaries)
	if err != nil {
		return err
	}
	if err := e.write(pageFile("/blog"), blog); err != nil {
		return err
	}

	for _, p := range all {
		html, err := b.postPage(snap, p)
		if err != nil {
			return err
		}
		if err := e.write(pageFile(posts.URL(p)), html); err != nil {
			return err
		}
	}

	vocab := snap.Tags.AllTags()
	index, err := b.renderer.Tags(vocab)
	if err != nil {
		return err
	}
	if err := e.write(pageFile(tags.Prefix), index); err != nil {
		return err
	}
	for _, t := range vocab {
		html, err := b.renderer.Tag(render.TagView{
			Tag:   t,
			Posts: listing.Summaries(snap.Tags.PostsForTagSlug(t.Slug)),
			All:   vocab,
		})
		if err != nil {
			return err
		}
		if err := e.write(pageFile(tags.URL(t.Slug)), html); err != nil {
			return err
		}
	}

	for _, name := range []string{render.PageAbout, render.PageProjects, render.PageContact} {
		html, err := b.renderer.Static(name)
		if err != nil {
			return err
		}
		if err := e.write(pageFile(strings.TrimSuffix(name, ".html")), html); err != nil {
			return err
		}
	}
	notFound, err := b.renderer.Static(render.PageNotFound)
	if err != nil {
		return err
	}
	return e.write(NotFoundPath, notFound)
}

func (b *Builder) postPage(snap *Snapshot, p models.Post) ([]byte, error) {
	article, err := b.renderer.Markdown(p.Body)
	if err != nil {
		return nil, fmt.Errorf("build: %s: %w", p.SourcePath, err)
	}
	view := render.PostView{
		Post:      p,
		DateLabel: p.Date.Format(listing.DateLayout),
		Article:   article,
		Tags:      tags.TagsForPost(p),
		Related:   listing.Summaries(snap.Posts.Related(p, relatedLimit)),
	}
	if series := snap.Posts.Series(p.Series); len(series) > 1 {
		view.Series = listing.Summaries(series)
	}
	return b.renderer.Post(view, posts.URL(p), posts.ImageURL(p))
}

func (b *Builder) feeds(e *emitter, snap *Snapshot, m routes.Manifest) error {
	var buf bytes.Buffer
	if err := routes.EncodeSitemap(&buf, m.Sitemap); err != nil {
		return err
	}
	if err := e.write(SitemapPath, buf.Bytes()); err != nil {
		return err
	}
	if err := e.write(RobotsPath, []byte(routes.Robots(b.opts.Site.URL))); err != nil {
		return err
	}

	ix, err := search.Build(snap.Posts)
	if err != nil {
		return err
	}
	buf.Reset()
	if err := ix.Encode(&buf); err != nil {
		return err
	}
	if err := e.write(SearchPath, buf.Bytes()); err != nil {
		return err
	}

	if err := e.write(LLMsPath, []byte(LLMText(snap.Posts.ListAll()))); err != nil {
		return err
	}
	if err := e.json(PostsDataPath, listing.Summaries(snap.Posts.ListAll())); err != nil {
		return err
	}
	return e.json(TagsDataPath, snap.Tags.AllTags())
}

func (b *Builder) imageJobs(snap *Snapshot, m routes.Manifest) []ogimage.Job {
	host := strings.TrimPrefix(strings.TrimPrefix(strings.TrimRight(b.opts.Site.URL, "/"), "https://"), "http://")
	jobs := make([]ogimage.Job, 0, len(m.Images)+1)
	jobs = append(jobs, ogimage.Job{
		Asset: m.SiteImage,
		Card:  ogimage.Card{Site: b.opts.Site.Name, Title: b.opts.Site.Name, Description: b.opts.Site.Description, Host: host},
	})
	for i, p := range snap.Posts.ListAll() {
		jobs = append(jobs, ogimage.Job{
			Asset: m.Images[i],
			Card:  ogimage.Card{Site: b.opts.Site.Name, Title: p.Title, Description: p.Description, Host: host},
		})
	}
	return jobs
}

// cardSum identifies a preview image by everything drawn on it, so the build
// fingerprint changes whenever a card would render differently.
func cardSum(c ogimage.Card) string {
	return checksum.Sum([]byte(strings.Join([]string{c.Site, c.Title, c.Description, c.Host}, "\x00")))
}

// LLMText renders posts as one plain document: "# Title", a blank line and
// the Markdown body, posts separated by a blank line.
func LLMText(ps []models.Post) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = "# " + p.Title + "\n\n" + strings.TrimSpace(p.Body)
	}
	return strings.Join(parts, "\n\n")
}

// ErrOutputCollision is returned when two outputs of one build map to the
// same file.
var ErrOutputCollision = errors.New("output path produced twice")

// ErrUnsafeOutput is returned when the output directory would overlap the
// content directory.
var ErrUnsafeOutput = errors.New("output directory overlaps content directory")

// CheckDirs rejects an output directory that equals, contains or sits inside
// the content directory. Pruning the output would otherwise delete sources.
func CheckDirs(contentDir, outputDir string) error {
	c, err := filepath.Abs(contentDir)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	o, err := filepath.Abs(outputDir)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	if c == o || within(c, o) || within(o, c) {
		return fmt.Errorf("build: %w: %s", ErrUnsafeOutput, o)
	}
	return nil
}

func within(child, parent string) bool {
	return strings.HasPrefix(child, parent+string(filepath.Separator))
}
