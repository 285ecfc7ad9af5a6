package routes

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/starford/quire/internal/models"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// EncodeSitemap writes entries as a sitemaps.org urlset document.
func EncodeSitemap(w io.Writer, entries []models.SitemapEntry) error {
	set := urlSet{XMLNS: sitemapNS, URLs: make([]sitemapURL, 0, len(entries))}
	for _, e := range entries {
		u := sitemapURL{
			Loc:        e.URL,
			ChangeFreq: e.ChangeFrequency,
			Priority:   strconv.FormatFloat(e.Priority, 'f', 1, 64),
		}
		if e.LastModified != nil {
			u.LastMod = e.LastModified.UTC().Format(time.RFC3339)
		}
		set.URLs = append(set.URLs, u)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("routes: sitemap: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return fmt.Errorf("routes: sitemap: %w", err)
	}
	return nil
}

// Robots returns a robots.txt allowing everything and pointing at the sitemap.
func Robots(siteURL string) string {
	return "User-agent: *\nAllow: /\n\nSitemap: " + Absolute(siteURL, "/sitemap.xml") + "\n"
}
