package build

import (
	"fmt"

	"github.com/starford/quire/internal/content"
	"github.com/starford/quire/internal/posts"
	"github.com/starford/quire/internal/storage"
	"github.com/starford/quire/internal/tags"
)

// Snapshot is one consistent view of the content: the post index and the tag
// aggregation derived from it.
type Snapshot struct {
	Posts *posts.Index
	Tags  *tags.Aggregator
}

// Load reads every post under dir and derives the index and tag data.
func Load(store storage.Provider, dir string, drafts bool) (*Snapshot, error) {
	loaded, err := content.Load(store, dir)
	if err != nil {
		return nil, fmt.Errorf("build: load: %w", err)
	}
	idx, err := posts.New(loaded, posts.WithDrafts(drafts))
	if err != nil {
		return nil, fmt.Errorf("build: index: %w", err)
	}
	return &Snapshot{Posts: idx, Tags: tags.New(idx)}, nil
}
