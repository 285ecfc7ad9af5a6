// Package content loads blog posts from a storage provider.
package content

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/parser"
	"github.com/starford/quire/internal/storage"
)

// Load reads and parses every content document under dir. Posts are returned
// in source-path order. Any broken document or slug collision makes Load fail;
// all problems are reported together so one run surfaces every broken post.
func Load(store storage.Provider, dir string) ([]models.Post, error) {
	files, err := store.List(dir)
	if err != nil {
		return nil, fmt.Errorf("content: %w", err)
	}

	var (
		errs  []error
		posts = make([]models.Post, 0, len(files))
		seen  = make(map[string]string, len(files))
	)
	for _, f := range files {
		rel := strings.TrimPrefix(strings.TrimPrefix(f.Path, strings.Trim(dir, "/")), "/")
		p, err := loadOne(store, f.Path, rel)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		key := p.Slug()
		if prev, dup := seen[key]; dup {
			errs = append(errs, fmt.Errorf("content: %s: %w %q (also used by %s)", f.Path, apperr.ErrDuplicateSlug, key, prev))
			continue
		}
		seen[key] = f.Path
		posts = append(posts, p)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return posts, nil
}

func loadOne(store storage.Provider, fullPath, rel string) (models.Post, error) {
	segments, err := SlugsFromPath(rel)
	if err != nil {
		return models.Post{}, fmt.Errorf("content: %s: %w", fullPath, err)
	}
	data, err := store.Read(fullPath)
	if err != nil {
		return models.Post{}, fmt.Errorf("content: %w", err)
	}
	res, err := parser.Parse(data)
	if err != nil {
		return models.Post{}, fmt.Errorf("content: %s: %w", fullPath, err)
	}
	fm := res.Frontmatter
	return models.Post{
		Slugs:       segments,
		SourcePath:  fullPath,
		Title:       fm.Title,
		Description: fm.Description,
		Author:      fm.Author,
		Date:        fm.Date,
		Tags:        fm.Tags,
		Image:       fm.Image,
		Draft:       fm.Draft,
		Series:      fm.Series,
		SeriesPart:  fm.SeriesPart,
		Body:        res.Body,
	}, nil
}

// reservedSegment is the first slug segment owned by tag pages
// (/blog/tags/...). A post there would share an output file with a tag page.
const reservedSegment = "tags"

// SlugsFromPath derives slug segments from a content path relative to the
// content directory: "2024/hello.md" -> [2024 hello], "guide/index.mdx" ->
// [guide]. Slugs starting with "tags" are rejected.
func SlugsFromPath(rel string) ([]string, error) {
	rel = strings.Trim(path.Clean("/"+rel), "/")
	rel = strings.TrimSuffix(rel, path.Ext(rel))
	segments := strings.Split(rel, "/")
	if n := len(segments); n > 0 && segments[n-1] == "index" {
		segments = segments[:n-1]
	}
	if len(segments) == 0 || (len(segments) == 1 && segments[0] == "") {
		return nil, fmt.Errorf("cannot derive a slug from %q", rel)
	}
	for _, s := range segments {
		if s == "" || s == "." || s == ".." {
			return nil, fmt.Errorf("invalid slug segment in %q", rel)
		}
	}
	if strings.EqualFold(segments[0], reservedSegment) {
		return nil, fmt.Errorf("%w: %q is used by tag pages", apperr.ErrReservedSlug, strings.Join(segments, "/"))
	}
	return segments, nil
}
