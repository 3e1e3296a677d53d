package printer

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/kpumuk/doc-weaver/internal/doc"
)

// Job is one document to render in a batch.
type Job struct {
	Name    string
	Doc     doc.Doc
	Options Options
}

// Result is the outcome of one Job. Err holds the job's own failure; it never
// aborts the rest of the batch.
type Result struct {
	Name string
	Text string
	Err  error
}

// PrintAll renders jobs concurrently on up to workers goroutines (GOMAXPROCS when
// workers <= 0). Results are returned in job order. The returned error is non-nil
// only when ctx is canceled before every job has run.
func PrintAll(ctx context.Context, jobs []Job, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]Result, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	var canceled error
	for i := range jobs {
		if canceled = ctx.Err(); canceled != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			job := &jobs[i]
			out, err := Print(job.Doc, job.Options)
			results[i] = Result{Name: job.Name, Text: out, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, canceled
}
