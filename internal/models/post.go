// Package models defines the domain types for quire.
package models

import (
	"strings"
	"time"
)

// Post is a blog post loaded from a content document. Posts are immutable
// once loaded; indexes and aggregators only derive read-only projections.
type Post struct {
	Slugs       []string  `json:"slugs"`
	SourcePath  string    `json:"source_path"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Author      string    `json:"author,omitempty"`
	Date        time.Time `json:"date"`
	Tags        []string  `json:"tags,omitempty"`
	Image       string    `json:"image,omitempty"`
	Draft       bool      `json:"draft,omitempty"`
	Series      string    `json:"series,omitempty"`
	SeriesPart  *int      `json:"series_part,omitempty"`
	Body        string    `json:"-"`
}

// Slug returns the slug segments joined with "/".
func (p Post) Slug() string {
	return strings.Join(p.Slugs, "/")
}

// Tag is one entry of the tag vocabulary.
type Tag struct {
	Label string `json:"label"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

// TagRef is a tag as it appears on a single post (a tag chip).
type TagRef struct {
	Label string `json:"label"`
	Slug  string `json:"slug"`
	URL   string `json:"url"`
}

// ImageAsset identifies a generated preview image. Path is relative to the
// output directory; URL is the site-absolute path referencing it.
type ImageAsset struct {
	Segments []string `json:"segments"`
	Path     string   `json:"path"`
	URL      string   `json:"url"`
}

// Change frequencies used in sitemap entries.
const (
	ChangeWeekly  = "weekly"
	ChangeMonthly = "monthly"
	ChangeYearly  = "yearly"
)

// SitemapEntry is one <url> of the generated sitemap.
type SitemapEntry struct {
	URL             string     `json:"url"`
	LastModified    *time.Time `json:"last_modified,omitempty"`
	ChangeFrequency string     `json:"change_frequency"`
	Priority        float64    `json:"priority"`
}

// Site holds the site-wide metadata used for absolute URLs and page chrome.
type Site struct {
	Name        string    `yaml:"name" json:"name"`
	URL         string    `yaml:"url" json:"url"`
	Description string    `yaml:"description" json:"description"`
	Author      string    `yaml:"author" json:"author"`
	Intro       string    `yaml:"intro" json:"intro,omitempty"`
	Email       string    `yaml:"email" json:"email,omitempty"`
	Links       []Link    `yaml:"links" json:"links,omitempty"`
	Projects    []Project `yaml:"projects" json:"projects,omitempty"`
}

// Link is a labelled external link (social profiles, navigation).
type Link struct {
	Text string `yaml:"text" json:"text"`
	Href string `yaml:"href" json:"href"`
}

// Project is one entry of the projects page.
type Project struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	URL         string `yaml:"url" json:"url"`
}
