package listing

import (
	"time"

	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/posts"
	"github.com/starford/quire/internal/tags"
)

// DateLayout is the display format of listing dates ("March 1, 2024").
const DateLayout = "January 2, 2006"

// Summary is one row of a post listing.
type Summary struct {
	Title       string          `json:"title"`
	URL         string          `json:"url"`
	Date        time.Time       `json:"date"`
	DateLabel   string          `json:"dateLabel"`
	Description string          `json:"description,omitempty"`
	Tags        []models.TagRef `json:"tags,omitempty"`
}

// Summaries projects posts, keeping their order.
func Summaries(ps []models.Post) []Summary {
	out := make([]Summary, len(ps))
	for i, p := range ps {
		out[i] = Summary{
			Title:       p.Title,
			URL:         posts.URL(p),
			Date:        p.Date,
			DateLabel:   p.Date.Format(DateLayout),
			Description: p.Description,
			Tags:        tags.TagsForPost(p),
		}
	}
	return out
}
