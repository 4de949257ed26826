package engine

import (
	"github.com/rpreen/xcsf/classifier"
	"github.com/rpreen/xcsf/config"
	"github.com/rpreen/xcsf/population"
)

// parent pairs a handle with the classifier it names, so EA offspring
// accounting can credit the right population slot without a linear scan.
type parent struct {
	h  population.Handle
	cl *classifier.Classifier
}

// MaybeRunEA implements the design's EA trigger and body. The
// clock is advanced once regardless of whether the EA actually fires,
// matching the original source's "increase EA time" happening
// unconditionally at the top of ea().
func (e *Engine) MaybeRunEA(m *population.Set) {
	e.t++
	if m.Len() == 0 || float64(e.t)-m.MeanTime() <= float64(e.cfg.ThetaEA) {
		return
	}
	m.SetTime(e.t)

	p1, p2, ok := e.selectParents(m)
	if !ok {
		return // numeric-degenerate: empty fitness sum, skip this EA step
	}

	for i := 0; i*2 < e.cfg.Lambda; i++ {
		c1 := p1.cl.Copy()
		c2 := p2.cl.Copy()

		cmod := c1.Crossover(e.rng, c2)
		m1mod := c1.Mutate(e.rng)
		m2mod := c2.Mutate(e.rng)

		initOffspringStats(e.cfg, p1.cl, p2.cl, c1, c2, cmod)

		e.addOffspring(m, p1, p2, c1, cmod, m1mod)
		e.addOffspring(m, p2, p1, c2, cmod, m2mod)
	}
	e.pop.EnforceCap(e.rng)
}

// initOffspringStats implements the design step 5.
func initOffspringStats(cfg config.Config, c1p, c2p, c1, c2 *classifier.Classifier, cmod bool) {
	if cmod {
		c1.Error = cfg.ErrReduc * (c1p.Error + c2p.Error) * 0.5
		c2.Error = c1.Error
		f1 := c1p.Fitness / float64(c1p.Numerosity)
		f2 := c2p.Fitness / float64(c2p.Numerosity)
		c1.Fitness = cfg.FitReduc * (f1 + f2) * 0.5
		c2.Fitness = c1.Fitness
	} else {
		c1.Error = cfg.ErrReduc * c1p.Error
		c2.Error = cfg.ErrReduc * c2p.Error
		c1.Fitness = cfg.FitReduc * (c1p.Fitness / float64(c1p.Numerosity))
		c2.Fitness = cfg.FitReduc * (c2p.Fitness / float64(c2p.Numerosity))
	}
}

// addOffspring implements the design step 6: discard identical
// duplicates by crediting the parent, otherwise attempt EA-subsumption
// (when enabled), otherwise insert the offspring outright.
func (e *Engine) addOffspring(m *population.Set, p, otherP parent, offspring *classifier.Classifier, cmod, mmod bool) {
	if !cmod && !mmod {
		e.pop.IncrementNumerosity(p.h)
		return
	}
	if e.cfg.EASubsumption {
		e.subsumeOrInsert(m, offspring, p, otherP)
		return
	}
	e.pop.Insert(offspring)
}

// subsumeOrInsert implements the design step 6's subsumption
// path and ea.c's ea_subsume: try each parent first, then a uniformly
// random eligible subsumer from the full set, else insert outright.
func (e *Engine) subsumeOrInsert(m *population.Set, offspring *classifier.Classifier, p1, p2 parent) {
	if p1.cl.Subsumes(offspring) {
		e.pop.IncrementNumerosity(p1.h)
		return
	}
	if p2.cl.Subsumes(offspring) {
		e.pop.IncrementNumerosity(p2.h)
		return
	}

	var candidates []population.Handle
	m.Each(func(h population.Handle, cl *classifier.Classifier) {
		if cl.Subsumes(offspring) {
			candidates = append(candidates, h)
		}
	})
	if len(candidates) > 0 {
		pick := candidates[e.rng.Intn(len(candidates))]
		e.pop.IncrementNumerosity(pick)
		return
	}
	e.pop.Insert(offspring)
}

// selectParents implements the design step 1. ok is false only on
// the numeric-degenerate roulette case of a non-positive fitness sum.
func (e *Engine) selectParents(m *population.Set) (parent, parent, bool) {
	if e.cfg.EASelectType == config.SelectTournament {
		return e.selectTournament(m), e.selectTournament(m), true
	}
	fitSum := 0.0
	m.Each(func(_ population.Handle, cl *classifier.Classifier) { fitSum += cl.Fitness })
	if fitSum <= 0 {
		return parent{}, parent{}, false
	}
	return e.selectRoulette(m, fitSum), e.selectRoulette(m, fitSum), true
}

func (e *Engine) selectRoulette(m *population.Set, fitSum float64) parent {
	draw := e.rng.Uniform(0, fitSum)
	var running float64
	var winner parent
	found := false
	m.Each(func(h population.Handle, cl *classifier.Classifier) {
		if found {
			return
		}
		running += cl.Fitness
		if running >= draw {
			winner = parent{h: h, cl: cl}
			found = true
		}
	})
	if !found {
		m.Each(func(h population.Handle, cl *classifier.Classifier) { winner = parent{h: h, cl: cl} })
	}
	return winner
}

func (e *Engine) selectTournament(m *population.Set) parent {
	for {
		var winner parent
		found := false
		m.Each(func(h population.Handle, cl *classifier.Classifier) {
			if e.rng.Bool(e.cfg.EASelectSize) && (!found || cl.Fitness > winner.cl.Fitness) {
				winner = parent{h: h, cl: cl}
				found = true
			}
		})
		if found {
			return winner
		}
	}
}
