package core

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/huangsam/gitsize/internal/contract"
	"github.com/huangsam/gitsize/schema"
	"golang.org/x/sync/errgroup"
)

// MeasureFunc measures a single sample point.
type MeasureFunc func(ctx context.Context, point schema.SamplePoint) (schema.SizeMeasurement, error)

// ProgressFunc is called after each finished sample with the running count.
type ProgressFunc func(done, total int)

// Scheduler measures sample points in parallel on a bounded pool.
type Scheduler struct {
	Workers  int                  // Pool size; <= 0 means runtime.GOMAXPROCS(0)
	Policy   schema.FailurePolicy // What to do when one sample fails
	Progress ProgressFunc         // Optional
}

// Run measures every point and returns results in the same order as points.
//
// Under fail-fast the first failure cancels outstanding work and is returned.
// Under continue every point is attempted, failures are stored in
// SizeResult.Err, and the returned error is nil unless ctx was canceled.
func (s *Scheduler) Run(ctx context.Context, points []schema.SamplePoint, measure MeasureFunc) ([]schema.SizeResult, error) {
	results := make([]schema.SizeResult, len(points))
	for i, p := range points {
		results[i].Sample = p
	}
	if len(points) == 0 {
		return results, nil
	}

	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	failFast := s.Policy != schema.ContinueOnError

	var g *errgroup.Group
	gctx := ctx
	if failFast {
		g, gctx = errgroup.WithContext(ctx)
	} else {
		g = &errgroup.Group{}
	}
	g.SetLimit(workers)

	var mu sync.Mutex
	done := 0
	report := func() {
		if s.Progress == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		done++
		s.Progress(done, len(points))
	}

	for i, p := range points {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			m, err := measure(gctx, p)
			if err != nil {
				err = fmt.Errorf("sample %s (commit %s): %w", p.Date(), contract.ShortID(p.CommitID), err)
				if failFast {
					return err
				}
				results[i].Err = err
			} else {
				results[i].PackedBytes = m.PackedBytes
				results[i].UncompressedBytes = m.UncompressedBytes
			}
			report()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
