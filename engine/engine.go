// Package engine implements the classifier-system loop of the design section
// 4: match-set formation with covering, fitness-weighted prediction
// aggregation, the online update rule, and the steady-state evolutionary
// algorithm with selection, crossover, mutation, subsumption, and
// deletion.
package engine

import (
	"math"

	"github.com/rpreen/xcsf/classifier"
	"github.com/rpreen/xcsf/config"
	"github.com/rpreen/xcsf/population"
	"github.com/rpreen/xcsf/rng"
	"github.com/rpreen/xcsf/xerrors"
)

// Engine owns the population, the RNG, and the logical clock, and drives
// one trial at a time. It is not safe for concurrent trial calls; the one
// operation that fans out internally (ParallelMatch, in match_parallel.go)
// still serializes its write-back into the population.
type Engine struct {
	cfg config.Config
	pop *population.Population
	rng *rng.Source
	t   int
}

// New builds an Engine with an empty population.
func New(cfg config.Config, r *rng.Source) *Engine {
	return &Engine{cfg: cfg, pop: population.New(cfg), rng: r}
}

// Population exposes the underlying store, chiefly for persistence and
// telemetry.
func (e *Engine) Population() *population.Population { return e.pop }

// Time returns the engine's logical clock.
func (e *Engine) Time() int { return e.t }

// SetTime overrides the logical clock, used by persistence.Load to restore
// the clock a saved population was captured at.
func (e *Engine) SetTime(t int) { e.t = t }

// BuildMatchSet scans the population for classifiers whose condition
// matches x, covering (the design) until coverage reaches
// theta_mna. Covering is strictly input-driven; it never consults M's
// current contents beyond its size.
func (e *Engine) BuildMatchSet(x []float64) (*population.Set, error) {
	m := population.NewSet(e.pop)
	e.pop.Each(func(h population.Handle, cl *classifier.Classifier) {
		if cl.Match(x) {
			m.Add(h)
		}
	})

	for m.Len() < e.cfg.ThetaMNA {
		cl, err := classifier.Init(e.rng, e.cfg, x, e.t)
		if err != nil {
			return nil, err
		}
		e.pop.EnforceCap(e.rng)
		h := e.pop.Insert(cl)
		m.Add(h)
	}
	if m.Len() == 0 {
		return nil, xerrors.ErrInvariant
	}
	return m, nil
}

// Aggregate implements the design: the fitness-weighted average
// of each member's prediction. If the fitness sum is degenerate (all
// zero or negative), it falls back to an unweighted mean.
func (e *Engine) Aggregate(x []float64, m *population.Set) []float64 {
	out := make([]float64, e.cfg.NumYVars)
	buf := make([]float64, e.cfg.NumYVars)
	plain := make([]float64, e.cfg.NumYVars)
	var fitSum float64
	var n float64

	m.Each(func(_ population.Handle, cl *classifier.Classifier) {
		cl.Predict(x, buf)
		for j := range out {
			out[j] += cl.Fitness * buf[j]
			plain[j] += buf[j]
		}
		fitSum += cl.Fitness
		n++
	})

	if fitSum <= 0 {
		if n == 0 {
			return out
		}
		for j := range out {
			out[j] = plain[j] / n
		}
		return out
	}
	for j := range out {
		out[j] /= fitSum
	}
	return out
}

// Update implements the design steps 1-6 over every member of m:
// experience, set-size, and error are updated per-classifier with a
// Widrow-Hoff rule once experienced, a running mean before that; accuracy
// is then derived from the fresh error and normalized across M by
// numerosity before folding into fitness.
func (e *Engine) Update(m *population.Set, x, y []float64) {
	setSize := float64(m.NumerositySum())
	beta := e.cfg.Beta
	predBuf := make([]float64, e.cfg.NumYVars)

	type member struct {
		h     population.Handle
		cl    *classifier.Classifier
		kappa float64
	}
	members := make([]member, 0, m.Len())
	var kappaNumSum float64

	m.Each(func(h population.Handle, cl *classifier.Classifier) {
		cl.Experience++

		if float64(cl.Experience) > 1/beta {
			cl.ActionSetSize += beta * (setSize - cl.ActionSetSize)
		} else {
			cl.ActionSetSize += (setSize - cl.ActionSetSize) / float64(cl.Experience)
		}

		cl.Predict(x, predBuf)
		absErr := meanAbsError(predBuf, y)
		if float64(cl.Experience) > 1/beta {
			cl.Error += beta * (absErr - cl.Error)
		} else {
			cl.Error += (absErr - cl.Error) / float64(cl.Experience)
		}

		cl.Pred.Update(x, y)

		kappa := 1.0
		if cl.Error >= e.cfg.Eps0 {
			kappa = e.cfg.Alpha * math.Pow(cl.Error/e.cfg.Eps0, -e.cfg.Nu)
		}
		members = append(members, member{h: h, cl: cl, kappa: kappa})
		kappaNumSum += kappa * float64(cl.Numerosity)
	})

	for _, mem := range members {
		kappaPrime := 0.0
		if kappaNumSum > 0 {
			kappaPrime = mem.kappa * float64(mem.cl.Numerosity) / kappaNumSum
		}
		old := mem.cl.Fitness
		mem.cl.Fitness += beta * (kappaPrime - mem.cl.Fitness)
		e.pop.RecomputeFitness(mem.h, old)
	}
}

// meanAbsError implements the per-classifier error term of the design
// section 4.5 step 3: ||y - predict||_1 / k. This is independent of the
// configured aggregate LossFunc, which only governs the scalar loss
// xcsf.Learn reports back to the caller (see config.Config.Compute's doc
// comment).
func meanAbsError(pred, y []float64) float64 {
	var sum float64
	for i := range y {
		d := y[i] - pred[i]
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return sum / float64(len(y))
}
