// Package parser extracts and validates post front-matter from Markdown content.
package parser

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/quire/internal/apperr"
)

// dateLayouts are tried in order for string dates.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Frontmatter holds the typed post metadata.
type Frontmatter struct {
	Title       string
	Description string
	Author      string
	Date        time.Time
	Tags        []string
	Image       string
	Draft       bool
	Series      string
	SeriesPart  *int
}

// Validate enforces the fields a post cannot be published without.
func (f *Frontmatter) Validate() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.Title, validation.Required),
		validation.Field(&f.Date, validation.Required),
		validation.Field(&f.SeriesPart, validation.NilOrNotEmpty, validation.Min(1)),
	)
}

// Result holds the output of parsing a content document.
type Result struct {
	Frontmatter Frontmatter
	Raw         map[string]interface{}
	Body        string
}

// Parse splits YAML (---) or TOML (+++) front-matter from the body, decodes
// the known fields and validates them. Any problem is reported as
// apperr.ErrInvalidFrontmatter: a broken post must never be indexed.
func Parse(data []byte) (*Result, error) {
	raw := make(map[string]interface{})
	body, err := frontmatter.Parse(bytes.NewReader(data), &raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidFrontmatter, err)
	}

	fm, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidFrontmatter, err)
	}
	if err := fm.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidFrontmatter, err)
	}

	return &Result{
		Frontmatter: fm,
		Raw:         raw,
		Body:        strings.TrimLeft(string(body), "\n\r"),
	}, nil
}

func decode(raw map[string]interface{}) (Frontmatter, error) {
	var fm Frontmatter
	var err error

	if fm.Title, err = stringField(raw, "title"); err != nil {
		return fm, err
	}
	fm.Title = strings.TrimSpace(fm.Title)
	if fm.Description, err = stringField(raw, "description"); err != nil {
		return fm, err
	}
	if fm.Author, err = stringField(raw, "author"); err != nil {
		return fm, err
	}
	if fm.Image, err = stringField(raw, "image"); err != nil {
		return fm, err
	}
	if fm.Series, err = stringField(raw, "series"); err != nil {
		return fm, err
	}
	if fm.Date, err = dateField(raw, "date"); err != nil {
		return fm, err
	}
	if fm.Tags, err = tagsField(raw, "tags"); err != nil {
		return fm, err
	}

	if v, ok := raw["draft"]; ok && v != nil {
		b, isBool := v.(bool)
		if !isBool {
			return fm, fmt.Errorf("draft: expected boolean, got %T", v)
		}
		fm.Draft = b
	}

	if v, ok := raw["seriesPart"]; ok && v != nil {
		n, convErr := toInt(v)
		if convErr != nil {
			return fm, fmt.Errorf("seriesPart: %w", convErr)
		}
		fm.SeriesPart = &n
	}

	return fm, nil
}

func stringField(raw map[string]interface{}, key string) (string, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s: expected string, got %T", key, v)
	}
	return s, nil
}

// dateField accepts native timestamps (TOML, YAML with explicit tags) and
// strings in any of dateLayouts.
func dateField(raw map[string]interface{}, key string) (time.Time, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return time.Time{}, nil
	}
	switch d := v.(type) {
	case time.Time:
		return d, nil
	case string:
		s := strings.TrimSpace(d)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("%s: unrecognised date %q (use YYYY-MM-DD or RFC 3339)", key, d)
	default:
		return time.Time{}, fmt.Errorf("%s: expected date, got %T", key, v)
	}
}

// tagsField returns the raw tag strings in document order. Empty strings are
// kept; they are dropped later by slug normalisation.
func tagsField(raw map[string]interface{}, key string) ([]string, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil, nil
	}
	items, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s: expected a list of strings, got %T", key, v)
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%s[%d]: expected string, got %T", key, i, item)
		}
		out = append(out, s)
	}
	return out, nil
}

func toInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("expected integer, got %v", n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}
