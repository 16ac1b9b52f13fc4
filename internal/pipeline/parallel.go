package pipeline

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

type trajectoryResult struct {
	tr      *Trajectory
	samples []*Sample
}

// runParallel computes trajectories on cfg.Workers goroutines and hands them
// to the emitter strictly in index order. At most 2*Workers finished or
// in-flight trajectories are held in memory, one per slot of a ring indexed
// by local trajectory number.
func (g *Generator) runParallel(ctx context.Context, e *emitter) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.cfg.Workers)

	count := g.cfg.TrajCount
	// A slot is reused only after the emitter has drained it and released
	// its window token, so a dispatch never finds its slot occupied.
	ring := make([]chan trajectoryResult, 2*g.cfg.Workers)
	for i := range ring {
		ring[i] = make(chan trajectoryResult, 1)
	}
	window := make(chan struct{}, len(ring))

	dispatched := make(chan struct{})
	go func() {
		defer close(dispatched)
		for local := 0; local < count; local++ {
			if ctx.Err() != nil {
				return
			}
			select {
			case window <- struct{}{}:
			case <-ctx.Done():
				return
			}
			idx := g.cfg.TrajStart + local
			out := ring[local%len(ring)]
			eg.Go(func() error {
				res, err := g.collect(idx)
				if err != nil {
					return err
				}
				out <- res
				return nil
			})
		}
	}()

	emitErr := func() error {
		for local := 0; local < count; local++ {
			select {
			case res := <-ring[local%len(ring)]:
				e.startTrajectory(res.tr)
				for _, s := range res.samples {
					if err := ctx.Err(); err != nil {
						return err
					}
					if err := e.emit(s); err != nil {
						return err
					}
				}
				<-window
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	}()

	cancel()
	<-dispatched
	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return emitErr
}

func (g *Generator) collect(idx int) (trajectoryResult, error) {
	samples := make([]*Sample, 0, g.cfg.TSteps)
	tr, err := g.Simulate(idx, nil, func(s *Sample) error {
		samples = append(samples, s)
		return nil
	})
	return trajectoryResult{tr: tr, samples: samples}, err
}
