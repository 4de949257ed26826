// Package population holds the classifier store of the design: an
// unordered collection with stable logical identity across insertion and
// removal, a configured capacity, and running counters over numerosity and
// fitness that the evolutionary algorithm and deletion both consult.
package population

import (
	"fmt"

	"github.com/rpreen/xcsf/classifier"
	"github.com/rpreen/xcsf/config"
	"github.com/rpreen/xcsf/rng"
)

// Handle is a stable reference to a population slot. It stays valid for the
// lifetime of the record it names, including across iteration with
// removal, but is never reused for a different record -- slots carry a
// generation counter so a stale handle is detectable rather than silently
// aliasing a newer occupant.
type Handle struct {
	slot int
	gen  uint32
}

type slot struct {
	cl  *classifier.Classifier
	gen uint32
	// free marks this index as available for reuse.
	free bool
}

// Population is the classifier store. Zero value is not usable; use New.
type Population struct {
	cfg   config.Config
	slots []slot
	// freeList holds indices of empty slots, LIFO, so fresh inserts reuse
	// recently-vacated space before growing.
	freeList []int
	count    int

	numerositySum Counter
	fitnessMean   Counter
}

// New returns an empty population bounded by cfg.N.
func New(cfg config.Config) *Population {
	return &Population{cfg: cfg}
}

// Cap returns the configured maximum numerosity sum.
func (p *Population) Cap() int { return p.cfg.N }

// CapConfig returns the configuration this population was built with, for
// callers (persistence, telemetry) that need dimensionality or other
// parameters without threading a second copy of the config through.
func (p *Population) CapConfig() config.Config { return p.cfg }

// Count returns the number of live records (not numerosity-weighted).
func (p *Population) Count() int { return p.count }

// NumerositySum returns Σnum over all live records.
func (p *Population) NumerositySum() int { return int(p.numerositySum.Read()) }

// MeanFitness returns the mean of fitness/numerosity over the live records,
// each record counting once (not weighted by numerosity), read from the
// running counter.
func (p *Population) MeanFitness() float64 {
	if p.count == 0 {
		return 0
	}
	return p.fitnessMean.Read() / float64(p.count)
}

// Insert adds cl to the population and returns its handle. RecomputeFitness
// must be called by the caller's mutation path whenever Fitness on an
// existing member changes, and numerosity changes go through
// IncrementNumerosity or DecrementOrRemove; Insert itself updates the
// running counters for the new member.
func (p *Population) Insert(cl *classifier.Classifier) Handle {
	var idx int
	if n := len(p.freeList); n > 0 {
		idx = p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		p.slots[idx].cl = cl
		p.slots[idx].free = false
		p.slots[idx].gen++
	} else {
		idx = len(p.slots)
		p.slots = append(p.slots, slot{cl: cl, gen: 1})
	}
	p.count++
	p.numerositySum.Add(float64(cl.Numerosity))
	p.fitnessMean.Add(cl.Fitness / float64(cl.Numerosity))
	return Handle{slot: idx, gen: p.slots[idx].gen}
}

// Get dereferences a handle, returning ok=false if the slot has since been
// removed or reused.
func (p *Population) Get(h Handle) (*classifier.Classifier, bool) {
	if h.slot < 0 || h.slot >= len(p.slots) {
		return nil, false
	}
	s := &p.slots[h.slot]
	if s.free || s.gen != h.gen {
		return nil, false
	}
	return s.cl, true
}

// Remove deletes the record at h entirely, regardless of numerosity. Use
// DecrementOrRemove to honor the design's "decrement numerosity,
// remove at zero" deletion semantics.
func (p *Population) Remove(h Handle) {
	s, ok := p.Get(h)
	if !ok {
		return
	}
	p.numerositySum.Add(-float64(s.Numerosity))
	p.fitnessMean.Add(-s.Fitness / float64(s.Numerosity))
	p.slots[h.slot].cl = nil
	p.slots[h.slot].free = true
	p.freeList = append(p.freeList, h.slot)
	p.count--
}

// DecrementOrRemove decrements the record's numerosity by one, removing it
// outright if that reaches zero, per the design's deletion step.
func (p *Population) DecrementOrRemove(h Handle) {
	cl, ok := p.Get(h)
	if !ok {
		return
	}
	oldContribution := cl.Fitness / float64(cl.Numerosity)
	p.numerositySum.Add(-1)
	cl.Numerosity--
	if cl.Numerosity <= 0 {
		p.fitnessMean.Add(-oldContribution)
		p.slots[h.slot].cl = nil
		p.slots[h.slot].free = true
		p.freeList = append(p.freeList, h.slot)
		p.count--
	} else {
		newContribution := cl.Fitness / float64(cl.Numerosity)
		p.fitnessMean.Add(newContribution - oldContribution)
	}
}

// IncrementNumerosity bumps a record's numerosity, e.g. when EA discards a
// duplicate offspring in favor of crediting its parent.
func (p *Population) IncrementNumerosity(h Handle) {
	cl, ok := p.Get(h)
	if !ok {
		return
	}
	oldContribution := cl.Fitness / float64(cl.Numerosity)
	p.numerositySum.Add(1)
	cl.Numerosity++
	newContribution := cl.Fitness / float64(cl.Numerosity)
	p.fitnessMean.Add(newContribution - oldContribution)
}

// RecomputeFitness must be called after mutating a live record's Fitness
// field directly (the online update pass does this every trial) so the
// running mean stays consistent; old is the fitness value before the
// caller's change.
func (p *Population) RecomputeFitness(h Handle, oldFitness float64) {
	cl, ok := p.Get(h)
	if !ok {
		return
	}
	p.fitnessMean.Add((cl.Fitness - oldFitness) / float64(cl.Numerosity))
}

// Each visits every live record. fn may call Remove on the handle it was
// given without disturbing the walk -- Each snapshots the slot index range
// up front and re-checks liveness per index.
func (p *Population) Each(fn func(Handle, *classifier.Classifier)) {
	n := len(p.slots)
	for i := 0; i < n; i++ {
		s := &p.slots[i]
		if s.free {
			continue
		}
		fn(Handle{slot: i, gen: s.gen}, s.cl)
	}
}

// EnforceCap runs deletion (the design) until the numerosity sum
// is at most Cap().
func (p *Population) EnforceCap(r *rng.Source) {
	for p.NumerositySum() > p.cfg.N {
		if !p.deleteOne(r) {
			return
		}
	}
}

// deleteOne selects a victim by roulette over deletion votes and removes
// one copy of it, returning false if the population is empty.
func (p *Population) deleteOne(r *rng.Source) bool {
	if p.count == 0 {
		return false
	}
	meanFit := p.MeanFitness()

	type candidate struct {
		h    Handle
		vote float64
	}
	cands := make([]candidate, 0, p.count)
	var total float64
	p.Each(func(h Handle, cl *classifier.Classifier) {
		vote := cl.ActionSetSize * float64(cl.Numerosity)
		perNum := cl.Fitness / float64(cl.Numerosity)
		if cl.Experience > p.cfg.ThetaDel && perNum < p.cfg.Delta*meanFit && perNum > 0 {
			vote *= meanFit / perNum
		}
		cands = append(cands, candidate{h: h, vote: vote})
		total += vote
	})
	if total <= 0 {
		// numeric-degenerate: fall back to uniform selection.
		pick := cands[r.Intn(len(cands))]
		p.DecrementOrRemove(pick.h)
		return true
	}
	draw := r.Uniform(0, total)
	var running float64
	for _, c := range cands {
		running += c.vote
		if running >= draw {
			p.DecrementOrRemove(c.h)
			return true
		}
	}
	p.DecrementOrRemove(cands[len(cands)-1].h)
	return true
}

func (p *Population) String() string {
	return fmt.Sprintf("population: %d records, Σnum=%d/%d, meanFit=%.5f",
		p.count, p.NumerositySum(), p.cfg.N, p.MeanFitness())
}
