package detector

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// DetectAll runs Detect over frames with at most workers goroutines.
//
// Frames are independent; results are returned in ascending Seq order. The
// first error cancels the remaining frames and is returned.
func (d *Detector) DetectAll(ctx context.Context, frames []Frame, workers int) ([]Result, error) {
	results := make([]Result, len(frames))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(workers))
	for i := range frames {
		g.Go(func() error {
			result, err := d.Detect(ctx, frames[i])
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sortBySeq(results)
	return results, nil
}

// DetectOutputs runs DetectOutput over already computed outputs with at most
// workers goroutines. Results are returned in ascending Seq order.
func (d *Detector) DetectOutputs(ctx context.Context, frames []RawFrame, workers int) ([]Result, error) {
	results := make([]Result, len(frames))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(workers))
	for i := range frames {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := d.DetectOutput(frames[i])
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sortBySeq(results)
	return results, nil
}

func workerCount(workers int) int {
	if workers <= 0 {
		return runtime.NumCPU()
	}
	return workers
}

func sortBySeq(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Seq < results[j].Seq
	})
}
