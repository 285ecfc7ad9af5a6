package ogimage

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/starford/quire/internal/models"
)

// Writer is the output sink for rendered images.
type Writer interface {
	Write(path string, content []byte) (bool, error)
}

// Job pairs a card with the asset it is written to.
type Job struct {
	Asset models.ImageAsset
	Card  Card
}

// Result reports how many images were rendered and how many of them changed
// on disk.
type Result struct {
	Rendered int
	Written  int
}

// Generator renders jobs in parallel.
type Generator struct {
	renderer *Renderer
	out      Writer
	workers  int
}

// NewGenerator returns a generator writing through out. workers < 1 uses
// GOMAXPROCS.
func NewGenerator(r *Renderer, out Writer, workers int) *Generator {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Generator{renderer: r, out: out, workers: workers}
}

// Generate renders every job and writes it to its asset path. Each job writes
// only its own path. The first failure cancels the remaining jobs.
func (g *Generator) Generate(ctx context.Context, jobs []Job) (Result, error) {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)

	written := make([]bool, len(jobs))
	for i, job := range jobs {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			data, err := g.renderer.Render(job.Card)
			if err != nil {
				return fmt.Errorf("ogimage: %s: %w", job.Asset.Path, err)
			}
			changed, err := g.out.Write(job.Asset.Path, data)
			if err != nil {
				return fmt.Errorf("ogimage: %s: %w", job.Asset.Path, err)
			}
			written[i] = changed
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Result{}, err
	}

	res := Result{Rendered: len(jobs)}
	for _, w := range written {
		if w {
			res.Written++
		}
	}
	return res, nil
}
