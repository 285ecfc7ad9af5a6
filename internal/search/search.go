// Package search builds the static search index published with the site and
// answers queries against it.
package search

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/posts"
	"github.com/starford/quire/internal/tags"
)

const snippetLen = 200

// Field weights used by Query.
const (
	weightTitle       = 5
	weightTag         = 4
	weightDescription = 2
	weightContent     = 1
)

// Document is one searchable post.
type Document struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url"`
	Date        time.Time `json:"date"`
	Tags        []string  `json:"tags,omitempty"`
	Content     string    `json:"content"`
}

// Hit is one query result.
type Hit struct {
	Document Document `json:"document"`
	Score    int      `json:"score"`
	Snippet  string   `json:"snippet"`
}

// Index is the serialized search index.
type Index struct {
	Documents []Document `json:"documents"`
}

// Build indexes every visible post of idx in listing order.
func Build(idx *posts.Index) (*Index, error) {
	all := idx.ListAll()
	out := &Index{Documents: make([]Document, 0, len(all))}
	for _, p := range all {
		text, err := PlainText(p.Body)
		if err != nil {
			return nil, fmt.Errorf("search: %s: %w", p.Slug(), err)
		}
		out.Documents = append(out.Documents, newDocument(p, text))
	}
	return out, nil
}

func newDocument(p models.Post, text string) Document {
	var tagSlugs []string
	for _, ref := range tags.TagsForPost(p) {
		tagSlugs = append(tagSlugs, ref.Slug)
	}
	return Document{
		ID:          p.Slug(),
		Title:       p.Title,
		Description: p.Description,
		URL:         posts.URL(p),
		Date:        p.Date,
		Tags:        tagSlugs,
		Content:     text,
	}
}

// Encode writes the index as JSON.
func (ix *Index) Encode(w io.Writer) error {
	if err := json.NewEncoder(w).Encode(ix); err != nil {
		return fmt.Errorf("search: encode: %w", err)
	}
	return nil
}

// Decode reads an index previously written by Encode.
func Decode(r io.Reader) (*Index, error) {
	var ix Index
	if err := json.NewDecoder(r).Decode(&ix); err != nil {
		return nil, fmt.Errorf("search: decode: %w", err)
	}
	return &ix, nil
}

// Query returns documents matching every term of q, best first. Matching
// ignores case and diacritics. limit <= 0 defaults to 20.
func (ix *Index) Query(q string, limit int) []Hit {
	if limit <= 0 {
		limit = 20
	}
	terms := strings.Fields(fold(q))
	if len(terms) == 0 {
		return nil
	}

	var hits []Hit
	for _, d := range ix.Documents {
		title, desc, content := fold(d.Title), fold(d.Description), fold(d.Content)
		score := 0
		for _, term := range terms {
			s := 0
			if strings.Contains(title, term) {
				s += weightTitle
			}
			for _, tg := range d.Tags {
				if strings.Contains(tg, term) {
					s += weightTag
					break
				}
			}
			if strings.Contains(desc, term) {
				s += weightDescription
			}
			if strings.Contains(content, term) {
				s += weightContent
			}
			if s == 0 {
				score = 0
				break
			}
			score += s
		}
		if score > 0 {
			hits = append(hits, Hit{Document: d, Score: score, Snippet: snippet(d.Content)})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		if !hits[i].Document.Date.Equal(hits[j].Document.Date) {
			return hits[i].Document.Date.After(hits[j].Document.Date)
		}
		return hits[i].Document.ID < hits[j].Document.ID
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// fold lower-cases s and strips combining marks.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(out)
}

func snippet(s string) string {
	r := []rune(s)
	if len(r) <= snippetLen {
		return s
	}
	return strings.TrimSpace(string(r[:snippetLen])) + "…"
}
