// Package slug maps free-form labels (tags, headings) to URL-safe identifiers.
//
// Every caller that derives a tag slug, whether for grouping, lookups or
// building tag-page URLs, must go through Normalize so the results agree.
package slug

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	disallowedRe = regexp.MustCompile(`[^\w\s-]`)
	separatorRe  = regexp.MustCompile(`[\s_-]+`)
)

// Normalize returns the canonical slug for s. An empty result means s carries
// no usable characters and callers must drop it.
//
// Steps: lower-case, trim, NFKD-decompose (accents split off their base
// letter), strip anything that is not a word character, whitespace or hyphen,
// collapse whitespace/underscore/hyphen runs into one hyphen, trim hyphens.
func Normalize(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	// Compatibility forms may decompose to upper-case letters (Ⅻ -> XII).
	s = strings.ToLower(norm.NFKD.String(s))
	s = disallowedRe.ReplaceAllString(s, "")
	s = separatorRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
