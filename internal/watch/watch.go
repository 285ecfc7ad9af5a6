// Package watch observes the content directory and triggers rebuilds.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/quire/internal/storage"
)

// DefaultDebounce is the quiet period after the last change before a rebuild.
const DefaultDebounce = 200 * time.Millisecond

// Change is one content file event.
type Change struct {
	Kind string // "created", "updated", "deleted"
	Path string // relative to the watched root
}

// RebuildFunc is called once per burst of changes with every change seen in
// the burst, in arrival order.
type RebuildFunc func(ctx context.Context, changes []Change)

// Watch observes root recursively until ctx is cancelled. Bursts of content
// changes are coalesced: fn runs after debounce has elapsed without further
// events. New directories are added to the watch list as they appear.
func Watch(ctx context.Context, root string, debounce time.Duration, logger *slog.Logger, fn RebuildFunc) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("root", root))

	var (
		pending []Change
		timer   *time.Timer
		fire    <-chan time.Time
	)
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			fire = timer.C
			return
		}
		timer.Reset(debounce)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			timer, fire = nil, nil
			if len(pending) == 0 {
				continue
			}
			batch := pending
			pending = nil
			logger.Debug("watcher: rebuilding", slog.Int("changes", len(batch)))
			fn(ctx, batch)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
						continue
					}
					logger.Debug("watcher: watching new dir", slog.String("path", ev.Name))
					pending = append(pending, Change{Kind: "created", Path: rel(root, ev.Name)})
					schedule()
					continue
				}
			}
			if !storage.IsContent(ev.Name) {
				continue
			}
			c, ok := classify(ev)
			if !ok {
				continue
			}
			c.Path = rel(root, ev.Name)
			logger.Debug("watcher: change", slog.String("path", c.Path), slog.String("op", c.Kind))
			pending = append(pending, c)
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// classify maps an fsnotify event to a change. fsnotify reports a rename on
// the old path only; the new path arrives as a separate create.
func classify(ev fsnotify.Event) (Change, bool) {
	switch {
	case ev.Op&fsnotify.Create != 0:
		return Change{Kind: "created"}, true
	case ev.Op&fsnotify.Write != 0:
		return Change{Kind: "updated"}, true
	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		return Change{Kind: "deleted"}, true
	}
	return Change{}, false
}

func rel(root, p string) string {
	r, err := filepath.Rel(root, p)
	if err != nil {
		return p
	}
	return filepath.ToSlash(r)
}

// addDirsRecursive adds root and all its subdirectories, except hidden ones,
// to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
