package engine

import (
	"context"

	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"

	"github.com/rpreen/xcsf/classifier"
	"github.com/rpreen/xcsf/population"
)

// ParallelMatch scans the population for matches against x using workers
// goroutines, fanning their per-chunk hits into one channel with
// channerics.Merge the way niceyeti-tabular's episode-generating agents feed a
// single estimator (see reinforcement.alphaMonteCarloVanillaTrain). An
// errgroup.Group supervises the chunk workers so the first worker error
// (there is none today, but Match is user-pluggable via condition.Decode)
// cancels its siblings and is returned to the caller instead of being
// silently dropped. It is an alternative to BuildMatchSet's serial scan
// for large populations; covering is still performed serially afterward,
// since covering mutates the population and the design requires insertion
// to be serialized.
func (e *Engine) ParallelMatch(ctx context.Context, x []float64, workers int) (*population.Set, error) {
	if workers < 1 {
		workers = 1
	}

	type candidate struct {
		h  population.Handle
		cl *classifier.Classifier
	}

	var all []candidate
	e.pop.Each(func(h population.Handle, cl *classifier.Classifier) {
		all = append(all, candidate{h: h, cl: cl})
	})

	chunkSize := (len(all) + workers - 1) / workers
	if chunkSize == 0 {
		chunkSize = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	done := gctx.Done()
	var chunkChans []<-chan population.Handle
	for start := 0; start < len(all); start += chunkSize {
		end := start + chunkSize
		if end > len(all) {
			end = len(all)
		}
		chunk := all[start:end]

		out := make(chan population.Handle)
		chunkChans = append(chunkChans, out)
		g.Go(func() error {
			defer close(out)
			for _, c := range chunk {
				if c.cl.Match(x) {
					select {
					case out <- c.h:
					case <-done:
						return gctx.Err()
					}
				}
			}
			return nil
		})
	}

	m := population.NewSet(e.pop)
	for h := range channerics.Merge(done, chunkChans...) {
		m.Add(h)
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for m.Len() < e.cfg.ThetaMNA {
		cl, err := classifier.Init(e.rng, e.cfg, x, e.t)
		if err != nil {
			return nil, err
		}
		e.pop.EnforceCap(e.rng)
		h := e.pop.Insert(cl)
		m.Add(h)
	}
	return m, nil
}
