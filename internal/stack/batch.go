// pattern: Imperative Shell

package stack

import (
	"context"
	"math"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"projdex/internal/project"
)

// Batch classifies every project on a pool of workers and returns a new
// slice with ProjectType filled in; projects is left untouched. A project
// whose directory cannot be inspected keeps its previous tag.
//
// progress, when non-nil, receives round(done/total*100) after each project.
// Calls are serialized, so the reported values never decrease.
func Batch(ctx context.Context, projects []project.Project, workers int, progress func(percent int)) []project.Project {
	out := project.Clone(projects)
	total := len(out)
	if total == 0 {
		return out
	}
	if workers <= 0 {
		workers = 2 * runtime.GOMAXPROCS(0)
	}

	var g errgroup.Group
	g.SetLimit(workers)

	var mu sync.Mutex
	done := 0

	for i := range out {
		g.Go(func() error {
			if ctx.Err() == nil {
				if tag, err := Detect(out[i].Path); err == nil {
					out[i].ProjectType = &tag
				}
			}

			mu.Lock()
			defer mu.Unlock()
			done++
			if progress != nil {
				progress(int(math.Round(float64(done) / float64(total) * 100)))
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}
